package views

import (
	"context"
	"errors"
	"io"
	"sync"

	"axiapac.com/timetrack/model"
	"axiapac.com/timetrack/session"
	v1 "axiapac.com/timetrack/timetrack/v1"
)

type Route string

const (
	RouteLogin          Route = "/login"
	RouteDashboard      Route = "/dashboard"
	RouteUserManagement Route = "/user-management"
)

var (
	ErrBusy             = errors.New("a request is already in flight")
	ErrInvalidForm      = errors.New("form is invalid")
	ErrActionNotAllowed = errors.New("action is not allowed right now")
)

type Navigator interface {
	Navigate(route Route)
}

type AuthAPI interface {
	Login(ctx context.Context, creds v1.Credentials) (*v1.LoginResult, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*model.UserProfile, error)
}

type AttendanceAPI interface {
	PunchIn(ctx context.Context) error
	PunchOut(ctx context.Context) error
	Mine(ctx context.Context, q v1.MyAttendanceQuery) ([]model.AttendanceRecord, error)
	All(ctx context.Context, q v1.AllAttendanceQuery) ([]model.AttendanceRecord, error)
	DownloadMine(ctx context.Context, q v1.DownloadQuery) (*model.ExportArtifact, error)
	DownloadAll(ctx context.Context, q v1.DownloadQuery) (*model.ExportArtifact, error)
	FetchExport(ctx context.Context, artifact model.ExportArtifact, w io.Writer) (int64, error)
}

// Guard resolves the route a user may actually see. Without a session every
// route leads to login; the aggregate view needs a privileged role; login
// itself is skipped once a session exists.
func Guard(route Route, sess *session.Context) Route {
	profile, ok := sess.Profile()
	if !ok || !sess.Active() {
		return RouteLogin
	}
	switch route {
	case RouteLogin:
		return RouteDashboard
	case RouteUserManagement:
		if !profile.Role.Privileged() {
			return RouteDashboard
		}
	}
	return route
}

// Flash holds the dismissible messages of one view.
type Flash struct {
	mu      sync.RWMutex
	success string
	err     string
}

func (f *Flash) SetSuccess(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.success, f.err = msg, ""
}

func (f *Flash) SetError(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.success, f.err = "", msg
}

func (f *Flash) Dismiss() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.success, f.err = "", ""
}

func (f *Flash) Success() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.success
}

func (f *Flash) Error() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.err
}
