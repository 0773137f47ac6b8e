package root

import (
	"github.com/spf13/cobra"
)

// rootCmd is the base command for the catalog admin CLI. Subcommands (bootstrap, genre) are attached here.
var rootCmd = &cobra.Command{
	Use:           "catalog",
	Short:         "Local library catalog admin CLI",
	Long:          "Administrative utilities for the local library catalog (schema bootstrap, genre management).",
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

// Root returns the mutable root command for wiring from subpackages.
func Root() *cobra.Command {
	return rootCmd
}
