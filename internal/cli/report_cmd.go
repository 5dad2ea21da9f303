package cli

import (
	"fmt"

	"github.com/alexanderramin/tempo/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newHistoryCmd(app *App) *cobra.Command {
	var subject, tag string
	var days int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Completed sessions in the last N days",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			user, err := app.asUser(ctx, subject)
			if err != nil {
				return err
			}
			tagID, err := optionalTagFilter(cmd, app, user.ID, tag)
			if err != nil {
				return err
			}
			hist, err := app.Queries.History(ctx, user.ID, days, tagID)
			if err != nil {
				return err
			}
			fmt.Fprint(out(cmd), formatter.FormatHistory(hist, user.Location()))
			return nil
		},
	}
	addUserFlag(cmd, &subject)
	cmd.Flags().IntVar(&days, "days", 7, "Window size in days (1-90)")
	cmd.Flags().StringVar(&tag, "tag", "", "Only sessions with this tag (name or id)")
	return cmd
}

func newAnalyticsCmd(app *App) *cobra.Command {
	var subject, tag string
	var days int

	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Daily and per-tag totals for the last N days",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			user, err := app.asUser(ctx, subject)
			if err != nil {
				return err
			}
			tagID, err := optionalTagFilter(cmd, app, user.ID, tag)
			if err != nil {
				return err
			}
			res, err := app.Queries.Analytics(ctx, user.ID, days, tagID)
			if err != nil {
				return err
			}
			fmt.Fprint(out(cmd), formatter.FormatAnalytics(res))
			return nil
		},
	}
	addUserFlag(cmd, &subject)
	cmd.Flags().IntVar(&days, "days", 7, "Window size in days (1-90)")
	cmd.Flags().StringVar(&tag, "tag", "", "Only sessions with this tag (name or id)")
	return cmd
}

func optionalTagFilter(cmd *cobra.Command, app *App, userID, ref string) (*string, error) {
	if ref == "" {
		return nil, nil
	}
	id, err := resolveTagID(cmd.Context(), app, userID, ref)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
