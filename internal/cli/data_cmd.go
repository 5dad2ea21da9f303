package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alexanderramin/tempo/internal/importer"
	"github.com/spf13/cobra"
)

func newImportCmd(app *App) *cobra.Command {
	var subject string
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Load tags and sessions from a JSON export (use - for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			user, err := app.asUser(ctx, subject)
			if err != nil {
				return err
			}
			var schema *importer.Schema
			if args[0] == "-" {
				schema, err = importer.ParseSchema(cmd.InOrStdin())
			} else {
				schema, err = importer.LoadSchema(args[0])
			}
			if err != nil {
				return err
			}
			res, err := importer.Apply(ctx, user.ID, schema, app.Tags, app.Sessions)
			if res != nil {
				fmt.Fprintf(out(cmd), "Imported %d sessions (%d new tags, %d existing)\n",
					res.SessionsCreated, res.TagsCreated, res.TagsReused)
			}
			return err
		},
	}
	addUserFlag(cmd, &subject)
	return cmd
}

func newExportCmd(app *App) *cobra.Command {
	var subject, path string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all tags and sessions as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			user, err := app.asUser(ctx, subject)
			if err != nil {
				return err
			}
			tags, err := app.Tags.List(ctx, user.ID)
			if err != nil {
				return err
			}
			sessions, err := app.Sessions.List(ctx, user.ID)
			if err != nil {
				return err
			}

			var w io.Writer = out(cmd)
			if path != "" {
				f, err := os.Create(path)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(importer.Export(tags, sessions))
		},
	}
	addUserFlag(cmd, &subject)
	cmd.Flags().StringVarP(&path, "out", "o", "", "Write to a file instead of stdout")
	return cmd
}
