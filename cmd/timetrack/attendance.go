package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"axiapac.com/timetrack/app"
	"axiapac.com/timetrack/export"
	"axiapac.com/timetrack/model"
	"github.com/spf13/cobra"
)

func newAttendanceCommand() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "attendance",
		Short: "List your attendance for a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, a *app.App) error {
				if err := selectDate(a, date, a.TimeTable.SetDate); err != nil {
					return err
				}
				if err := a.TimeTable.Load(ctx); err != nil {
					return report(cmd, a.TimeTable, err)
				}
				return printRecords(cmd.OutOrStdout(), a, a.TimeTable.Records())
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date as yyyy-MM-dd (default today)")
	cmd.AddCommand(newAttendanceDownloadCommand())
	cmd.AddCommand(newAttendanceExportCommand())
	return cmd
}

type downloadFlags struct {
	date    string
	format  string
	output  string
	archive bool
}

func (f *downloadFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.date, "date", "", "Date as yyyy-MM-dd (default today)")
	cmd.Flags().StringVar(&f.format, "format", string(model.ExportCSV), "Export format: csv, excel or pdf")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Destination file (default: the server file name)")
	cmd.Flags().BoolVar(&f.archive, "archive", false, "Also upload the export to the configured S3 bucket")
}

type downloader interface {
	flash
	SetDate(day time.Time)
	Download(ctx context.Context, format model.ExportFormat, w io.Writer) (*model.ExportArtifact, error)
}

// runDownload asks the backend for an export, saves it locally and
// optionally archives a copy.
func runDownload(ctx context.Context, cmd *cobra.Command, a *app.App, d downloader, f downloadFlags) error {
	format, ok := model.ParseExportFormat(f.format)
	if !ok {
		return fmt.Errorf("unknown format %q", f.format)
	}
	if err := selectDate(a, f.date, d.SetDate); err != nil {
		return err
	}

	var buf bytes.Buffer
	artifact, err := d.Download(ctx, format, &buf)
	if err := report(cmd, d, err); err != nil {
		return err
	}

	name := f.output
	if name == "" {
		name = path.Base(artifact.FileURL)
	}
	if err := os.WriteFile(name, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", name, buf.Len())

	if !f.archive {
		return nil
	}
	return archiveExport(ctx, cmd, a, path.Base(name), format, buf.Bytes())
}

func archiveExport(ctx context.Context, cmd *cobra.Command, a *app.App, name string, format model.ExportFormat, data []byte) error {
	archive, err := app.Archive(ctx, a.Config)
	if err != nil {
		return err
	}
	if archive == nil {
		return fmt.Errorf("no export bucket configured, set TIMETRACK_EXPORT_BUCKET")
	}
	key, err := archive.UploadFile(ctx, name, export.ContentType(format), bytes.NewReader(data))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Archived to s3://%s/%s\n", a.Config.ExportBucket, key)
	return nil
}

func newAttendanceDownloadCommand() *cobra.Command {
	var f downloadFlags

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download your attendance export from the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, a *app.App) error {
				return runDownload(ctx, cmd, a, a.TimeTable, f)
			})
		},
	}
	f.register(cmd)
	return cmd
}

func newAttendanceExportCommand() *cobra.Command {
	var f downloadFlags

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render your attendance locally as csv, excel or pdf",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, a *app.App) error {
				format, ok := model.ParseExportFormat(f.format)
				if !ok {
					return fmt.Errorf("unknown format %q", f.format)
				}
				if err := selectDate(a, f.date, a.TimeTable.SetDate); err != nil {
					return err
				}
				if err := a.TimeTable.Load(ctx); err != nil {
					return report(cmd, a.TimeTable, err)
				}

				day := a.TimeTable.Date()
				var buf bytes.Buffer
				if err := export.Write(&buf, format, export.Rows(a.TimeTable.Records(), day, a.Location)); err != nil {
					return err
				}

				name := f.output
				if name == "" {
					name = fmt.Sprintf("attendance_%s.%s", day.Format("2006-01-02"), export.Extension(format))
				}
				if err := os.WriteFile(name, buf.Bytes(), 0o644); err != nil {
					return fmt.Errorf("write %s: %w", name, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", name, buf.Len())

				if f.archive {
					return archiveExport(ctx, cmd, a, path.Base(name), format, buf.Bytes())
				}
				return nil
			})
		},
	}
	f.register(cmd)
	return cmd
}
