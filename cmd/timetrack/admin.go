package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"axiapac.com/timetrack/app"
	"axiapac.com/timetrack/attendance"
	v1 "axiapac.com/timetrack/timetrack/v1"
	"axiapac.com/timetrack/views"
	"github.com/spf13/cobra"
)

var errNotPrivileged = errors.New("the user management view requires the super_admin role")

// withUserManagement runs fn only when the route guard admits the user.
func withUserManagement(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	return withSession(cmd, func(ctx context.Context, a *app.App) error {
		a.Router.Navigate(views.RouteUserManagement)
		if a.Router.Current() != views.RouteUserManagement {
			return errNotPrivileged
		}
		return fn(ctx, a)
	})
}

func newAdminCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Attendance across all employees",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newAdminReportCommand())
	cmd.AddCommand(newAdminDownloadCommand())
	return cmd
}

func newAdminReportCommand() *cobra.Command {
	var (
		date     string
		sessions bool
		notify   bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show every employee's status for a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUserManagement(cmd, func(ctx context.Context, a *app.App) error {
				um := a.UserManagement
				if err := selectDate(a, date, um.SetDate); err != nil {
					return err
				}
				if err := um.Load(ctx); err != nil {
					return report(cmd, um, err)
				}
				if um.Empty() {
					fmt.Fprintln(cmd.OutOrStdout(), "No attendance records for this date.")
					return nil
				}

				if sessions {
					for _, row := range um.Rows() {
						um.Toggle(row.Record.UserID)
					}
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "NAME\tEMAIL\tFIRST IN\tLAST OUT\tTOTAL\tSESSIONS\tSTATUS")
				for _, row := range um.Rows() {
					r := row.Record
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d (%d active)\t%s\n",
						r.Name, r.Email,
						attendance.FormatClock(r.FirstPunchIn, a.Location),
						attendance.FormatClock(r.LastPunchOut, a.Location),
						attendance.FormatHours(r.TotalHours),
						row.Counts.Total, row.Counts.Active,
						row.Status,
					)
					if !row.Expanded {
						continue
					}
					for i, s := range r.Sessions {
						fmt.Fprintf(tw, "  #%d\t\t%s\t%s\t%s\t\t%s\n",
							i+1,
							attendance.FormatClock(s.PunchIn, a.Location),
							attendance.FormatClock(s.PunchOut, a.Location),
							attendance.FormatSessionDuration(s.Duration),
							attendance.SessionStatusOf(s),
						)
					}
				}
				if err := tw.Flush(); err != nil {
					return err
				}

				summary := um.Summary()
				fmt.Fprintf(cmd.OutOrStdout(), "\nPresent: %d  Absent: %d  Total: %d  Working time: %s\n",
					summary.Present, summary.Absent, summary.Total, summary.TotalWorkingTime())

				if !notify {
					return nil
				}
				notifier, err := app.Notifier(ctx, a.Config)
				if err != nil {
					return err
				}
				if notifier == nil {
					return errors.New("no notification channel configured")
				}
				body := attendance.SummaryReport(um.Date(), um.Records(), a.Location)
				if err := notifier.Info(ctx, "Attendance summary", body); err != nil {
					return fmt.Errorf("send summary: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Summary sent")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date as yyyy-MM-dd (default today)")
	cmd.Flags().BoolVar(&sessions, "sessions", false, "Expand every row into its sessions")
	cmd.Flags().BoolVar(&notify, "notify", false, "Send the summary to the configured Slack or email channel")
	return cmd
}

func newAdminDownloadCommand() *cobra.Command {
	var f downloadFlags

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download the all-employee export from the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUserManagement(cmd, func(ctx context.Context, a *app.App) error {
				return runDownload(ctx, cmd, a, a.UserManagement, f)
			})
		},
	}
	f.register(cmd)
	return cmd
}

func newUsersCommand() *cobra.Command {
	var q v1.UserQuery

	cmd := &cobra.Command{
		Use:   "users",
		Short: "List user accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUserManagement(cmd, func(ctx context.Context, a *app.App) error {
				page, err := a.Client.Users.List(ctx, q)
				if err != nil {
					return errors.New(v1.Message(err, "Failed to fetch users"))
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE")
				for _, u := range page.Users {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d users\n", len(page.Users), page.Total)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&q.Skip, "skip", 0, "Rows to skip")
	cmd.Flags().IntVar(&q.Limit, "limit", 20, "Maximum rows")
	cmd.Flags().StringVar(&q.Search, "search", "", "Filter by name or email")
	cmd.Flags().StringVar(&q.SortBy, "sort-by", "", "Sort column: id, name or email")
	cmd.Flags().StringVar(&q.SortOrder, "sort-order", "", "asc or desc")
	return cmd
}

func newArchiveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Exports archived in S3",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List archived exports",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}
			archive, err := app.Archive(ctx, cfg)
			if err != nil {
				return err
			}
			if archive == nil {
				return errors.New("no export bucket configured, set TIMETRACK_EXPORT_BUCKET")
			}
			keys, err := archive.ListFiles(ctx)
			if err != nil {
				return err
			}
			for _, key := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), key)
			}
			return nil
		},
	})
	return cmd
}
