package cli

import (
	"fmt"

	"github.com/alexanderramin/tempo/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newUserCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users and logins",
	}
	cmd.AddCommand(
		newUserCreateCmd(app),
		newUserLoginCmd(app),
	)
	return cmd
}

func newUserCreateCmd(app *App) *cobra.Command {
	var subject, name string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user for an identity subject (no-op when it exists)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := app.Users.Provision(cmd.Context(), subject, name)
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "User %s (%s) %s\n", formatter.Bold(user.Name), user.AuthUserID, formatter.Dim(user.ID))
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "Identity provider subject, e.g. github|42")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

// newUserLoginCmd issues an API login token. It stands in for the OAuth
// callback: the token goes in the login cookie or a Bearer header.
func newUserLoginCmd(app *App) *cobra.Command {
	var subject string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Issue an API login token for a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			user, err := app.asUser(ctx, subject)
			if err != nil {
				return err
			}
			token, expires, err := app.Logins.Issue(ctx, user.ID)
			if err != nil {
				return err
			}
			w := out(cmd)
			fmt.Fprintln(w, token)
			fmt.Fprintf(w, "%s\n", formatter.Dim(fmt.Sprintf(
				"expires %s; send as cookie %q or Authorization: Bearer",
				expires.Format("2006-01-02 15:04 MST"), app.Config.Auth.CookieName)))
			return nil
		},
	}
	addUserFlag(cmd, &subject)
	return cmd
}
