package views

import (
	"context"
	"io"
	"time"

	"axiapac.com/timetrack/model"
	v1 "axiapac.com/timetrack/timetrack/v1"
)

// TimeTableController lists the signed-in user's own attendance.
type TimeTableController struct {
	dateScoped
	api AttendanceAPI
}

func NewTimeTableController(api AttendanceAPI, loc *time.Location, now time.Time) *TimeTableController {
	c := &TimeTableController{api: api}
	c.dateScoped.init(func(ctx context.Context, day time.Time) ([]model.AttendanceRecord, error) {
		return api.Mine(ctx, v1.MyAttendanceFor(day))
	}, loc, now)
	return c
}

// Download fetches the export of the selected date into w.
func (c *TimeTableController) Download(ctx context.Context, format model.ExportFormat, w io.Writer) (*model.ExportArtifact, error) {
	return c.download(ctx, c.api, c.api.DownloadMine, format, w)
}
