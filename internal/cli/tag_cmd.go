package cli

import (
	"fmt"

	"github.com/alexanderramin/tempo/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newTagCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage tags",
	}
	cmd.AddCommand(
		newTagListCmd(app),
		newTagAddCmd(app),
		newTagRemoveCmd(app),
	)
	return cmd
}

func newTagListCmd(app *App) *cobra.Command {
	var subject string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tags",
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
			if len(tags) == 0 {
				fmt.Fprintln(out(cmd), formatter.Dim("No tags yet. Add one with: tempo tag add NAME --color '#1e90ff'"))
				return nil
			}
			rows := make([][]string, 0, len(tags))
			for _, t := range tags {
				rows = append(rows, []string{formatter.TruncID(t.ID), formatter.TagLabel(t), t.Color})
			}
			fmt.Fprint(out(cmd), formatter.RenderTable([]string{"ID", "TAG", "COLOR"}, rows))
			return nil
		},
	}
	addUserFlag(cmd, &subject)
	return cmd
}

func newTagAddCmd(app *App) *cobra.Command {
	var subject, color string
	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Create a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			user, err := app.asUser(ctx, subject)
			if err != nil {
				return err
			}
			tag, err := app.Tags.Create(ctx, user.ID, args[0], color)
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Created %s %s\n", formatter.TagLabel(tag), formatter.Dim(tag.ID))
			return nil
		},
	}
	addUserFlag(cmd, &subject)
	cmd.Flags().StringVar(&color, "color", "#1e90ff", "Hex display color")
	return cmd
}

func newTagRemoveCmd(app *App) *cobra.Command {
	var subject string
	cmd := &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"remove"},
		Short:   "Delete an unused tag",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			user, err := app.asUser(ctx, subject)
			if err != nil {
				return err
			}
			tagID, err := resolveTagID(ctx, app, user.ID, args[0])
			if err != nil {
				return err
			}
			if err := app.Tags.Delete(ctx, user.ID, tagID); err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), "Deleted tag", args[0])
			return nil
		},
	}
	addUserFlag(cmd, &subject)
	return cmd
}
