package v1

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"axiapac.com/timetrack/model"
	"axiapac.com/timetrack/utils"
)

const (
	pathPunchIn      = "/attendance/punch-in"
	pathPunchOut     = "/attendance/punch-out"
	pathMyAttendance = "/attendance/me"
	pathAttendance   = "/attendance"
	pathDownloadMine = "/attendance/download/me"
	pathDownloadAll  = "/attendance/download/all"
)

// MyAttendanceQuery scopes the caller's records to one calendar day.
type MyAttendanceQuery struct {
	Date  int
	Month int
	Year  int
}

func MyAttendanceFor(day time.Time) MyAttendanceQuery {
	return MyAttendanceQuery{Date: day.Day(), Month: int(day.Month()), Year: day.Year()}
}

func (q MyAttendanceQuery) values() url.Values {
	v := url.Values{}
	if q.Date > 0 {
		v.Set("date", strconv.Itoa(q.Date))
	}
	if q.Month > 0 {
		v.Set("month", strconv.Itoa(q.Month))
	}
	if q.Year > 0 {
		v.Set("year", strconv.Itoa(q.Year))
	}
	return v
}

type AllAttendanceQuery struct {
	SelectedDate time.Time
}

func (q AllAttendanceQuery) values() url.Values {
	v := url.Values{}
	if !q.SelectedDate.IsZero() {
		v.Set("selected_date", q.SelectedDate.Format(utils.DateLayout))
	}
	return v
}

type DownloadQuery struct {
	Format       model.ExportFormat
	SelectedDate time.Time
}

func (q DownloadQuery) values() url.Values {
	v := url.Values{}
	if q.Format != "" {
		v.Set("format", string(q.Format))
	}
	if !q.SelectedDate.IsZero() {
		v.Set("selected_date", q.SelectedDate.Format(utils.DateLayout))
	}
	return v
}

type AttendanceEndpoint struct {
	transport *Transport
}

func (ep *AttendanceEndpoint) PunchIn(ctx context.Context) error {
	return ep.punch(ctx, pathPunchIn)
}

func (ep *AttendanceEndpoint) PunchOut(ctx context.Context) error {
	return ep.punch(ctx, pathPunchOut)
}

func (ep *AttendanceEndpoint) punch(ctx context.Context, path string) error {
	resp, err := ep.transport.Post(ctx, path, nil, nil)
	if err != nil {
		return err
	}
	return expectSuccess(http.MethodPost, path, resp)
}

// Mine returns the caller's records for the queried day.
func (ep *AttendanceEndpoint) Mine(ctx context.Context, q MyAttendanceQuery) ([]model.AttendanceRecord, error) {
	resp, err := ep.transport.Get(ctx, pathMyAttendance, q.values())
	if err != nil {
		return nil, err
	}
	return decode[[]model.AttendanceRecord](http.MethodGet, pathMyAttendance, resp)
}

// All returns every user's record for the selected date. The backend
// restricts it to privileged roles.
func (ep *AttendanceEndpoint) All(ctx context.Context, q AllAttendanceQuery) ([]model.AttendanceRecord, error) {
	resp, err := ep.transport.Get(ctx, pathAttendance, q.values())
	if err != nil {
		return nil, err
	}
	return decode[[]model.AttendanceRecord](http.MethodGet, pathAttendance, resp)
}

func (ep *AttendanceEndpoint) DownloadMine(ctx context.Context, q DownloadQuery) (*model.ExportArtifact, error) {
	return ep.download(ctx, pathDownloadMine, q)
}

func (ep *AttendanceEndpoint) DownloadAll(ctx context.Context, q DownloadQuery) (*model.ExportArtifact, error) {
	return ep.download(ctx, pathDownloadAll, q)
}

func (ep *AttendanceEndpoint) download(ctx context.Context, path string, q DownloadQuery) (*model.ExportArtifact, error) {
	resp, err := ep.transport.Get(ctx, path, q.values())
	if err != nil {
		return nil, err
	}
	artifact, err := decode[model.ExportArtifact](http.MethodGet, path, resp)
	if err != nil {
		return nil, err
	}
	return &artifact, nil
}

// FetchExport streams the generated export into w.
func (ep *AttendanceEndpoint) FetchExport(ctx context.Context, artifact model.ExportArtifact, w io.Writer) (int64, error) {
	return ep.transport.Download(ctx, artifact.FileURL, w)
}
