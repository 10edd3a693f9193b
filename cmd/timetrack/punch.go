package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"axiapac.com/timetrack/app"
	"axiapac.com/timetrack/attendance"
	"axiapac.com/timetrack/model"
	"axiapac.com/timetrack/views"
	"github.com/spf13/cobra"
)

func newPunchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "punch",
		Short: "Record a punch in or punch out",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newPunchActionCommand("in", model.NextActionPunchIn))
	cmd.AddCommand(newPunchActionCommand("out", model.NextActionPunchOut))
	return cmd
}

func newPunchActionCommand(use string, action model.NextAction) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("Punch %s now", use),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, a *app.App) error {
				punch := a.Dashboard.PunchIn
				if action == model.NextActionPunchOut {
					punch = a.Dashboard.PunchOut
				}
				err := punch(ctx)
				if errors.Is(err, views.ErrActionNotAllowed) {
					profile, _ := a.Session.Profile()
					return fmt.Errorf("cannot punch %s, next action is %q", use, profile.NextAction())
				}
				return report(cmd, a.Dashboard, err)
			})
		},
	}
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show today's punch state and sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, a *app.App) error {
				controls := a.Dashboard.Controls()
				out := cmd.OutOrStdout()
				switch {
				case controls.PunchIn:
					fmt.Fprintln(out, "Ready to punch in")
				case controls.PunchOut:
					fmt.Fprintln(out, "Punched in, ready to punch out")
				default:
					fmt.Fprintln(out, "No punch action available")
				}

				if err := a.TimeTable.Load(ctx); err != nil {
					return report(cmd, a.TimeTable, err)
				}
				return printRecords(out, a, a.TimeTable.Records())
			})
		},
	}
}

// printRecords writes one line per record followed by its session intervals.
func printRecords(w io.Writer, a *app.App, records []model.AttendanceRecord) error {
	if len(records) == 0 {
		fmt.Fprintln(w, "No attendance records for this date.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tFIRST IN\tLAST OUT\tTOTAL\tSTATUS")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.Date,
			attendance.FormatClock(r.FirstPunchIn, a.Location),
			attendance.FormatClock(r.LastPunchOut, a.Location),
			attendance.FormatHours(r.TotalHours),
			attendance.StatusOf(r),
		)
		for i, s := range r.Sessions {
			fmt.Fprintf(tw, "  #%d\t%s\t%s\t%s\t%s\n",
				i+1,
				attendance.FormatClock(s.PunchIn, a.Location),
				attendance.FormatClock(s.PunchOut, a.Location),
				attendance.FormatSessionDuration(s.Duration),
				attendance.SessionStatusOf(s),
			)
		}
	}
	return tw.Flush()
}
