package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newMigrateCmd exists for deploy scripts: opening the database already
// applies every pending migration.
func newMigrateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.DB.PingContext(cmd.Context()); err != nil {
				return fmt.Errorf("checking database: %w", err)
			}
			fmt.Fprintf(out(cmd), "Database ready at %s\n", app.Config.Database.Path)
			return nil
		},
	}
}
