package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"axiapac.com/timetrack/app"
	"axiapac.com/timetrack/config"
	"axiapac.com/timetrack/utils"
	"github.com/spf13/cobra"
)

var errNotLoggedIn = errors.New("not logged in, run `timetrack login` first")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "timetrack",
		Short:         "Punch in and out and browse attendance records",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newLoginCommand())
	cmd.AddCommand(newLogoutCommand())
	cmd.AddCommand(newWhoamiCommand())
	cmd.AddCommand(newPunchCommand())
	cmd.AddCommand(newStatusCommand())
	cmd.AddCommand(newAttendanceCommand())
	cmd.AddCommand(newAdminCommand())
	cmd.AddCommand(newUsersCommand())
	cmd.AddCommand(newArchiveCommand())
	return cmd
}

// withApp loads configuration, restores the session and hands the wired
// application to fn.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := a.Close(closeCtx); err != nil {
			a.Logger.Warn().Err(err).Msg("shutdown incomplete")
		}
	}()

	return fn(ctx, a)
}

func loadConfig(ctx context.Context) (config.Config, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return config.Load(ctx)
}

func withSession(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		if !a.Session.Active() {
			return errNotLoggedIn
		}
		return fn(ctx, a)
	})
}

type flash interface {
	Success() string
	Error() string
}

// report prints the controller's success line, or turns its error message
// into the command error.
func report(cmd *cobra.Command, f flash, err error) error {
	if err != nil {
		if msg := f.Error(); msg != "" {
			return errors.New(msg)
		}
		return err
	}
	if msg := f.Success(); msg != "" {
		fmt.Fprintln(cmd.OutOrStdout(), msg)
	}
	return nil
}

// selectDate applies a yyyy-MM-dd flag value; empty keeps today.
func selectDate(a *app.App, value string, set func(time.Time)) error {
	if value == "" {
		return nil
	}
	day, err := utils.ParseDate(value, a.Location)
	if err != nil {
		return err
	}
	set(day)
	return nil
}
