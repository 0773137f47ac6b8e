package root

import (
	"github.com/zenGate-Global/local-library/apps/cli/cmd/bootstrap"
	"github.com/zenGate-Global/local-library/apps/cli/cmd/genre"
)

func init() {
	Root().AddCommand(bootstrap.Command())
	Root().AddCommand(genre.Command())
}
