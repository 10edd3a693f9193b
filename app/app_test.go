package app

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"axiapac.com/timetrack/attendance"
	"axiapac.com/timetrack/config"
	"axiapac.com/timetrack/mockapi"
	"axiapac.com/timetrack/model"
	"axiapac.com/timetrack/session"
	v1 "axiapac.com/timetrack/timetrack/v1"
	"axiapac.com/timetrack/validation"
	"axiapac.com/timetrack/views"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	app     *App
	store   *session.MemoryStore
	backend *mockapi.Server

	mu    sync.Mutex
	clock time.Time
}

func (f *fixture) now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clock
}

func (f *fixture) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clock = f.clock.Add(d)
}

func newFixture(t *testing.T, store *session.MemoryStore) *fixture {
	t.Helper()
	f := &fixture{store: store, clock: time.Date(2025, 10, 13, 9, 0, 0, 0, time.UTC)}

	f.backend = mockapi.New(mockapi.Options{Clock: f.now})
	require.NoError(t, f.backend.Seed())
	srv := httptest.NewServer(f.backend.Handler())
	t.Cleanup(srv.Close)

	a, err := New(context.Background(), config.Config{APIBaseURL: srv.URL, TimeZone: "UTC"},
		WithStore(store),
		WithLogger(zerolog.Nop()),
		WithClock(f.now),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	f.app = a
	return f
}

func (f *fixture) login(t *testing.T, email, password string) {
	t.Helper()
	_, err := f.app.Login.Submit(context.Background(), validation.LoginForm{Email: email, Password: password})
	require.NoError(t, err)
}

func TestLoginNavigatesOnce(t *testing.T) {
	store := session.NewMemoryStore()
	f := newFixture(t, store)

	assert.Equal(t, views.RouteLogin, f.app.Start())
	assert.False(t, f.app.Login.Mount())

	f.login(t, "alice@timetrack.dev", "Alice@123")

	assert.Equal(t, views.RouteDashboard, f.app.Router.Current())
	assert.Equal(t, []views.Route{views.RouteLogin, views.RouteDashboard}, f.app.Router.History())

	token, ok := store.Get(session.KeyToken)
	assert.True(t, ok)
	assert.NotEmpty(t, token)
	user, ok := store.Get(session.KeyUser)
	assert.True(t, ok)
	assert.Contains(t, user, `"role":"employee"`)

	// a mounted login view bounces straight back
	assert.True(t, f.app.Login.Mount())
}

func TestInvalidFormNeverCallsBackend(t *testing.T) {
	f := newFixture(t, session.NewMemoryStore())
	f.app.Start()

	res, err := f.app.Login.Submit(context.Background(), validation.LoginForm{Email: "a@b.co", Password: "abcdefgh"})
	assert.ErrorIs(t, err, views.ErrInvalidForm)
	assert.False(t, res.Valid)
	assert.Equal(t, validation.MsgEmailLength, res.Errors["email"])
	assert.Equal(t, views.RouteLogin, f.app.Router.Current())
}

func TestWrongPasswordShowsMessage(t *testing.T) {
	f := newFixture(t, session.NewMemoryStore())
	f.app.Start()

	_, err := f.app.Login.Submit(context.Background(), validation.LoginForm{Email: "alice@timetrack.dev", Password: "Wrong@123"})
	require.Error(t, err)
	assert.Equal(t, "Invalid email or password", f.app.Login.Error())
	assert.Equal(t, views.RouteLogin, f.app.Router.Current())
}

func TestRestoredSessionStartsOnDashboard(t *testing.T) {
	store := session.NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), session.Session{
		Token: "persisted",
		User:  model.UserProfile{ID: 2, Email: "alice@timetrack.dev", Role: model.RoleEmployee},
	}))

	f := newFixture(t, store)
	assert.Equal(t, views.RouteDashboard, f.app.Start())

	// the stale token is rejected; the app falls back to login
	err := f.app.TimeTable.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, views.RouteLogin, f.app.Router.Current())
	_, ok := store.Get(session.KeyToken)
	assert.False(t, ok)
	_, ok = store.Get(session.KeyUser)
	assert.False(t, ok)
}

func TestPunchRefreshesProfileAndTable(t *testing.T) {
	f := newFixture(t, session.NewMemoryStore())
	ctx := context.Background()
	f.app.Start()
	f.login(t, "alice@timetrack.dev", "Alice@123")

	dash, table := f.app.Dashboard, f.app.TimeTable
	assert.Equal(t, attendance.Controls{PunchIn: true}, dash.Controls())
	assert.ErrorIs(t, dash.PunchOut(ctx), views.ErrActionNotAllowed)

	require.NoError(t, table.Sync(ctx, dash.Refresh()))
	assert.True(t, table.Empty())

	require.NoError(t, dash.PunchIn(ctx))
	assert.Equal(t, "Successfully punched in!", dash.Success())
	assert.Equal(t, int64(1), dash.Refresh())
	assert.Equal(t, attendance.Controls{PunchOut: true}, dash.Controls())

	profile, _ := f.app.Session.Profile()
	assert.Equal(t, model.NextActionPunchOut, profile.NextAction())

	require.NoError(t, table.Sync(ctx, dash.Refresh()))
	require.Len(t, table.Records(), 1)
	assert.Equal(t, attendance.StatusActive, attendance.StatusOf(table.Records()[0]))

	f.advance(90 * time.Minute)
	require.NoError(t, dash.PunchOut(ctx))
	assert.Equal(t, "Successfully punched out!", dash.Success())
	require.NoError(t, table.Sync(ctx, dash.Refresh()))
	assert.Equal(t, "1h 30m", attendance.FormatHours(table.Records()[0].TotalHours))

	var buf bytes.Buffer
	artifact, err := table.Download(ctx, model.ExportCSV, &buf)
	require.NoError(t, err)
	assert.Contains(t, artifact.FileURL, "/exports/")
	assert.Contains(t, buf.String(), "Alice Employee")
}

func TestRejectedPunchKeepsState(t *testing.T) {
	f := newFixture(t, session.NewMemoryStore())
	ctx := context.Background()
	f.app.Start()
	f.login(t, "alice@timetrack.dev", "Alice@123")

	// another device punched in meanwhile; the cached next_action is stale
	other := v1.NewClient(f.app.Config.APIBaseURL, f.app.Session)
	require.NoError(t, other.Attendance.PunchIn(ctx))

	err := f.app.Dashboard.PunchIn(ctx)
	require.Error(t, err)
	assert.Equal(t, "You have already punched in and not punched out yet.", f.app.Dashboard.Error())
	assert.Equal(t, int64(0), f.app.Dashboard.Refresh())
	assert.True(t, f.app.Session.Active())

	f.app.Dashboard.Dismiss()
	assert.Empty(t, f.app.Dashboard.Error())
}

func TestUnauthorizedMidLogout(t *testing.T) {
	store := session.NewMemoryStore()
	f := newFixture(t, store)
	f.app.Start()
	f.login(t, "alice@timetrack.dev", "Alice@123")

	profile, _ := f.app.Session.Profile()
	f.backend.RevokeToken(profile.ID)

	err := f.app.Header.Logout(context.Background())
	require.Error(t, err)
	assert.True(t, v1.IsKind(err, v1.KindUnauthorized))
	assert.Equal(t, views.RouteLogin, f.app.Router.Current())
	_, ok := store.Get(session.KeyToken)
	assert.False(t, ok)
}

func TestLogout(t *testing.T) {
	store := session.NewMemoryStore()
	f := newFixture(t, store)
	f.app.Start()
	f.login(t, "alice@timetrack.dev", "Alice@123")

	require.NoError(t, f.app.Header.Logout(context.Background()))
	assert.Equal(t, views.RouteLogin, f.app.Router.Current())
	assert.False(t, f.app.Session.Active())
}

func TestUserManagementGuard(t *testing.T) {
	f := newFixture(t, session.NewMemoryStore())
	ctx := context.Background()
	f.app.Start()
	f.login(t, "alice@timetrack.dev", "Alice@123")

	f.app.Router.Navigate(views.RouteUserManagement)
	assert.Equal(t, views.RouteDashboard, f.app.Router.Current())

	require.NoError(t, f.app.Header.Logout(ctx))
	f.login(t, "admin@timetrack.dev", "Admin@123")
	f.app.Router.Navigate(views.RouteUserManagement)
	assert.Equal(t, views.RouteUserManagement, f.app.Router.Current())

	um := f.app.UserManagement
	require.NoError(t, um.Load(ctx))
	summary := um.Summary()
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 3, summary.Absent)
	assert.Equal(t, "0h 0m", summary.TotalWorkingTime())

	rows := um.Rows()
	require.Len(t, rows, 3)
	assert.True(t, um.Toggle(rows[0].Record.UserID))
	assert.True(t, um.Rows()[0].Expanded)

	var buf bytes.Buffer
	artifact, err := um.Download(ctx, model.ExportExcel, &buf)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(artifact.FileURL, ".xlsx"))
	assert.NotZero(t, buf.Len())
}
