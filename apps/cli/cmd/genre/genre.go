package genre

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/zenGate-Global/local-library/apps/cli/config"
	genresrepo "github.com/zenGate-Global/local-library/domains/genres/be/repo"
	genresservice "github.com/zenGate-Global/local-library/domains/genres/be/service"
	"github.com/zenGate-Global/local-library/platform/go/formflow"
	"github.com/zenGate-Global/local-library/platform/go/persistence"
)

// openService connects to the catalog and returns the genre service plus a release func.
// Tests replace it to run against the in-memory repository.
var openService = func(ctx context.Context, databaseURL string) (genresservice.Service, func(), error) {
	pool, err := persistence.NewPool(ctx, persistence.PoolConfig{ConnString: databaseURL})
	if err != nil {
		return nil, nil, fmt.Errorf("init pool: %w", err)
	}

	genreStore, err := persistence.NewGenreStore(ctx, pool, persistence.NewDocumentValidator())
	if err != nil {
		persistence.ClosePool(pool)
		return nil, nil, fmt.Errorf("init genre store: %w", err)
	}
	bookStore, err := persistence.NewBookStore(ctx, pool)
	if err != nil {
		persistence.ClosePool(pool)
		return nil, nil, fmt.Errorf("init book store: %w", err)
	}

	svc := genresservice.New(genresrepo.NewPostgresRepository(genreStore, bookStore))
	return svc, func() { persistence.ClosePool(pool) }, nil
}

// Command groups genre management helpers. Create and rename run the same
// submission workflow as the web forms.
func Command() *cobra.Command {
	var databaseURL string

	cmd := &cobra.Command{
		Use:   "genre",
		Short: "Manage catalog genres",
	}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Postgres connection string (defaults to $DATABASE_URL)")

	cmd.AddCommand(listCommand(&databaseURL))
	cmd.AddCommand(createCommand(&databaseURL))
	cmd.AddCommand(renameCommand(&databaseURL))
	return cmd
}

func listCommand(databaseURL *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List genres sorted by name",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, *databaseURL, func(ctx context.Context, svc genresservice.Service) error {
				genres, err := svc.List(ctx)
				if err != nil {
					return fmt.Errorf("list genres: %w", err)
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME")
				for _, g := range genres {
					fmt.Fprintf(tw, "%s\t%s\n", g.ID, html.UnescapeString(g.Name))
				}
				return tw.Flush()
			})
		},
	}
}

func createCommand(databaseURL *string) *cobra.Command {
	var name string

	c := &cobra.Command{
		Use:   "create",
		Short: "Create a genre unless one with the same name exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, *databaseURL, func(ctx context.Context, svc genresservice.Service) error {
				outcome, err := svc.Create(ctx, genresservice.Form{Name: name})
				if err != nil {
					return fmt.Errorf("create genre: %w", err)
				}
				return report(cmd, outcome)
			})
		},
	}

	c.Flags().StringVar(&name, "name", "", "genre name")
	_ = c.MarkFlagRequired("name")
	return c
}

func renameCommand(databaseURL *string) *cobra.Command {
	var (
		rawID string
		name  string
	)

	c := &cobra.Command{
		Use:   "rename",
		Short: "Rename a genre unless another genre already has the name",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(rawID)
			if err != nil {
				return fmt.Errorf("invalid genre id: %w", err)
			}

			return withService(cmd, *databaseURL, func(ctx context.Context, svc genresservice.Service) error {
				outcome, err := svc.Update(ctx, id, genresservice.Form{Name: name})
				if err != nil {
					if errors.Is(err, genresservice.ErrNotFound) {
						return fmt.Errorf("genre %s not found", id)
					}
					return fmt.Errorf("rename genre: %w", err)
				}
				return report(cmd, outcome)
			})
		},
	}

	c.Flags().StringVar(&rawID, "id", "", "genre id")
	c.Flags().StringVar(&name, "name", "", "new genre name")
	_ = c.MarkFlagRequired("id")
	_ = c.MarkFlagRequired("name")
	return c
}

func withService(cmd *cobra.Command, databaseURL string, fn func(ctx context.Context, svc genresservice.Service) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	connString, err := config.DatabaseURL(databaseURL)
	if err != nil {
		return err
	}

	svc, release, err := openService(ctx, connString)
	if err != nil {
		return err
	}
	defer release()

	return fn(ctx, svc)
}

func report(cmd *cobra.Command, outcome formflow.Outcome) error {
	out := cmd.OutOrStdout()
	// Names are stored HTML-escaped; the terminal wants them as typed.
	name := html.UnescapeString(outcome.Entity.Name)
	switch outcome.State {
	case formflow.Rejected:
		messages := make([]string, 0, len(outcome.Errors))
		for _, fe := range outcome.Errors {
			messages = append(messages, fe.Message)
		}
		return fmt.Errorf("invalid genre: %s", strings.Join(messages, "; "))
	case formflow.Redirected:
		fmt.Fprintf(out, "genre %q already exists: %s\n", name, outcome.RedirectURL)
	case formflow.Persisted:
		fmt.Fprintf(out, "saved genre %q: %s\n", name, outcome.RedirectURL)
	}
	return nil
}
