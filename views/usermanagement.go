package views

import (
	"context"
	"io"
	"time"

	"axiapac.com/timetrack/attendance"
	"axiapac.com/timetrack/model"
	v1 "axiapac.com/timetrack/timetrack/v1"
)

// UserManagementController is the aggregate view across all employees.
type UserManagementController struct {
	dateScoped
	api       AttendanceAPI
	Expansion *attendance.Expansion
}

type Row struct {
	Record   model.AttendanceRecord
	Status   attendance.Status
	Counts   attendance.SessionCounts
	Expanded bool
}

func NewUserManagementController(api AttendanceAPI, loc *time.Location, now time.Time) *UserManagementController {
	c := &UserManagementController{api: api, Expansion: attendance.NewExpansion()}
	c.dateScoped.init(func(ctx context.Context, day time.Time) ([]model.AttendanceRecord, error) {
		return api.All(ctx, v1.AllAttendanceQuery{SelectedDate: day})
	}, loc, now)
	return c
}

func (c *UserManagementController) Summary() attendance.Summary {
	return attendance.Summarize(c.Records())
}

func (c *UserManagementController) Rows() []Row {
	records := c.Records()
	rows := make([]Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, Row{
			Record:   r,
			Status:   attendance.StatusOf(r),
			Counts:   attendance.CountSessions(r.Sessions),
			Expanded: c.Expansion.Expanded(r.UserID),
		})
	}
	return rows
}

// Toggle expands or collapses a row without fetching anything.
func (c *UserManagementController) Toggle(userID int64) bool {
	return c.Expansion.Toggle(userID)
}

func (c *UserManagementController) Reset() {
	c.dateScoped.Reset()
	c.Expansion.Reset()
}

func (c *UserManagementController) Download(ctx context.Context, format model.ExportFormat, w io.Writer) (*model.ExportArtifact, error) {
	return c.download(ctx, c.api, c.api.DownloadAll, format, w)
}
