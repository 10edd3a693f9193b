package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"axiapac.com/timetrack/app"
	"axiapac.com/timetrack/security"
	"axiapac.com/timetrack/validation"
	"axiapac.com/timetrack/views"
	"github.com/spf13/cobra"
)

func newLoginCommand() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if a.Login.Mount() {
					profile, _ := a.Session.Profile()
					fmt.Fprintf(cmd.OutOrStdout(), "Already logged in as %s\n", profile.Email)
					return nil
				}

				in := bufio.NewReader(cmd.InOrStdin())
				if email == "" {
					email = prompt(cmd.OutOrStdout(), in, "Email: ")
				}
				if password == "" {
					password = os.Getenv("TIMETRACK_PASSWORD")
				}
				if password == "" {
					password = prompt(cmd.OutOrStdout(), in, "Password: ")
				}

				result, err := a.Login.Submit(ctx, validation.LoginForm{Email: email, Password: password})
				if errors.Is(err, views.ErrInvalidForm) {
					var b strings.Builder
					for _, field := range slices.Sorted(maps.Keys(result.Errors)) {
						fmt.Fprintf(&b, "\n  %s: %s", field, result.Errors[field])
					}
					return fmt.Errorf("invalid credentials:%s", b.String())
				}
				if err := report(cmd, a.Login, err); err != nil {
					return err
				}

				profile, _ := a.Session.Profile()
				fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", profile.Email, profile.Role)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (or TIMETRACK_PASSWORD)")
	return cmd
}

func prompt(w io.Writer, in *bufio.Reader, label string) string {
	fmt.Fprint(w, label)
	line, _ := in.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}

func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Header.Logout(ctx); err != nil {
					a.Logger.Warn().Err(err).Msg("server logout failed, local session cleared")
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
				return nil
			})
		},
	}
}

func newWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored profile and token claims",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, a *app.App) error {
				profile, _ := a.Session.Profile()
				token, _ := a.Session.Token()

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintf(tw, "Name\t%s\n", a.Header.Title())
				fmt.Fprintf(tw, "Email\t%s\n", profile.Email)
				fmt.Fprintf(tw, "Role\t%s\n", profile.Role)
				if next := profile.NextAction(); next != "" {
					fmt.Fprintf(tw, "Next action\t%s\n", next)
				}

				// opaque tokens are fine, only JWTs carry claims worth showing
				if info, err := security.InspectToken(token); err == nil {
					if !info.ExpiresAt.IsZero() {
						fmt.Fprintf(tw, "Token expires\t%s\n", info.ExpiresAt.In(a.Location).Format(time.RFC1123))
					}
					if info.Expired(time.Now()) {
						fmt.Fprintf(tw, "Token state\texpired\n")
					}
				}
				return tw.Flush()
			})
		},
	}
}
