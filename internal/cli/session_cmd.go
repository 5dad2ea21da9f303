package cli

import (
	"fmt"

	"github.com/alexanderramin/tempo/internal/cli/formatter"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/spf13/cobra"
)

func newSessionCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "session",
		Aliases: []string{"s"},
		Short:   "Inspect and drive sessions",
	}
	cmd.AddCommand(
		newSessionListCmd(app),
		newSessionShowCmd(app),
		newSessionStartCmd(app),
		newSessionStopCmd(app),
		newSessionBreakCmd(app),
		newSessionRemoveCmd(app),
	)
	return cmd
}

func newSessionListCmd(app *App) *cobra.Command {
	var subject string
	var scheduled, upcoming bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			user, err := app.asUser(ctx, subject)
			if err != nil {
				return err
			}
			var sessions []*domain.Session
			switch {
			case upcoming:
				sessions, err = app.Queries.Upcoming(ctx, user.ID)
			case scheduled:
				sessions, err = app.Sessions.Scheduled(ctx, user.ID)
			default:
				sessions, err = app.Sessions.List(ctx, user.ID)
			}
			if err != nil {
				return err
			}
			fmt.Fprint(out(cmd), formatter.FormatSessions(sessions, user.Location()))
			return nil
		},
	}
	addUserFlag(cmd, &subject)
	cmd.Flags().BoolVar(&scheduled, "scheduled", false, "Only scheduled sessions, soonest first")
	cmd.Flags().BoolVar(&upcoming, "upcoming", false, "Only scheduled sessions starting from now")
	cmd.MarkFlagsMutuallyExclusive("scheduled", "upcoming")
	return cmd
}

func newSessionShowCmd(app *App) *cobra.Command {
	var subject string
	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show a session with its breaks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			user, err := app.asUser(ctx, subject)
			if err != nil {
				return err
			}
			id, err := resolveSessionID(ctx, app, user.ID, args[0])
			if err != nil {
				return err
			}
			sess, err := app.Sessions.Get(ctx, user.ID, id)
			if err != nil {
				return err
			}
			fmt.Fprint(out(cmd), formatter.FormatSession(sess, user.Location()))
			return nil
		},
	}
	addUserFlag(cmd, &subject)
	return cmd
}

func newSessionStartCmd(app *App) *cobra.Command {
	var subject string
	cmd := &cobra.Command{
		Use:   "start ID",
		Short: "Start a scheduled session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			user, err := app.asUser(ctx, subject)
			if err != nil {
				return err
			}
			id, err := resolveSessionID(ctx, app, user.ID, args[0])
			if err != nil {
				return err
			}
			sess, err := app.Sessions.Start(ctx, user.ID, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "%s %s at %s\n", formatter.StatusPill(sess.Status),
				formatter.Bold(sess.Name), formatter.LocalStamp(sess.StartAt, user.Location()))
			return nil
		},
	}
	addUserFlag(cmd, &subject)
	return cmd
}

func newSessionStopCmd(app *App) *cobra.Command {
	var subject string
	cmd := &cobra.Command{
		Use:   "stop ID",
		Short: "Complete an in-progress session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			user, err := app.asUser(ctx, subject)
			if err != nil {
				return err
			}
			id, err := resolveSessionID(ctx, app, user.ID, args[0])
			if err != nil {
				return err
			}
			sess, err := app.Sessions.Stop(ctx, user.ID, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "%s %s  total %s  focus %s\n", formatter.StatusPill(sess.Status),
				formatter.Bold(sess.Name),
				formatter.FormatMinutes(sess.TotalMinutes()),
				formatter.FormatMinutes(sess.FocusMinutes()))
			return nil
		},
	}
	addUserFlag(cmd, &subject)
	return cmd
}

func newSessionBreakCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "break",
		Short: "Start or stop a break in an in-progress session",
	}

	var startSubject, breakType string
	start := &cobra.Command{
		Use:   "start ID",
		Short: "Open a break",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			user, err := app.asUser(ctx, startSubject)
			if err != nil {
				return err
			}
			id, err := resolveSessionID(ctx, app, user.ID, args[0])
			if err != nil {
				return err
			}
			b, err := app.Sessions.StartBreak(ctx, user.ID, id, breakType)
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "%s started at %s\n", formatter.BreakBadge(b.Type),
				formatter.LocalStamp(b.StartTime, user.Location()))
			return nil
		},
	}
	addUserFlag(start, &startSubject)
	start.Flags().StringVar(&breakType, "type", "SHORT", "SHORT, LONG or CUSTOM")

	var stopSubject string
	stop := &cobra.Command{
		Use:   "stop ID",
		Short: "Close the open break",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			user, err := app.asUser(ctx, stopSubject)
			if err != nil {
				return err
			}
			id, err := resolveSessionID(ctx, app, user.ID, args[0])
			if err != nil {
				return err
			}
			res, err := app.Sessions.StopBreak(ctx, user.ID, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "%s lasted %s; session break time %s\n", formatter.BreakBadge(res.Break.Type),
				formatter.FormatMinutes(res.Break.Minutes()), formatter.FormatMinutes(res.BreakTime))
			return nil
		},
	}
	addUserFlag(stop, &stopSubject)

	cmd.AddCommand(start, stop)
	return cmd
}

func newSessionRemoveCmd(app *App) *cobra.Command {
	var subject string
	cmd := &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"remove"},
		Short:   "Delete a scheduled session",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			user, err := app.asUser(ctx, subject)
			if err != nil {
				return err
			}
			id, err := resolveSessionID(ctx, app, user.ID, args[0])
			if err != nil {
				return err
			}
			if err := app.Sessions.Delete(ctx, user.ID, id); err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), "Deleted session", formatter.TruncID(id))
			return nil
		},
	}
	addUserFlag(cmd, &subject)
	return cmd
}
