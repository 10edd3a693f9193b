package v1

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"axiapac.com/timetrack/model"
	"axiapac.com/timetrack/session"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T, token string) (*session.Context, *session.MemoryStore) {
	t.Helper()
	store := session.NewMemoryStore()
	sc := session.NewContext(store, zerolog.Nop())
	if token != "" {
		require.NoError(t, sc.Begin(context.Background(), token, model.UserProfile{ID: 1, Email: "a@example.com", Role: model.RoleEmployee}))
	}
	return sc, store
}

type capture struct {
	mu      sync.Mutex
	headers []http.Header
}

func (c *capture) handler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c.mu.Lock()
		c.headers = append(c.headers, r.Header.Clone())
		c.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func (c *capture) last() http.Header {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.headers[len(c.headers)-1]
}

func TestBearerHeader(t *testing.T) {
	c := &capture{}
	srv := httptest.NewServer(c.handler(http.StatusOK, `{"success":true,"status_code":200,"message":"ok","data":null}`))
	defer srv.Close()

	sc, _ := newSession(t, "tok-123")
	tr := NewTransport(srv.URL, sc)

	_, err := tr.Get(context.Background(), "/auth/me", nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", c.last().Get("Authorization"))
	assert.NotEmpty(t, c.last().Get("X-Request-ID"))

	require.NoError(t, sc.End(context.Background(), "logout"))
	_, err = tr.Get(context.Background(), "/auth/me", nil)
	require.NoError(t, err)
	_, present := c.last()["Authorization"]
	assert.False(t, present)
}

func TestUnauthorizedTearsDownSession(t *testing.T) {
	c := &capture{}
	srv := httptest.NewServer(c.handler(http.StatusUnauthorized, `{"detail":"Invalid or expired token."}`))
	defer srv.Close()

	sc, store := newSession(t, "stale")
	tr := NewTransport(srv.URL, sc)

	var events []AuthLostEvent
	tr.OnAuthenticationLost(func(e AuthLostEvent) { events = append(events, e) })

	_, err := tr.Post(context.Background(), "/attendance/punch-in", nil, nil)
	require.Error(t, err)

	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.True(t, IsKind(err, KindUnauthorized))
	assert.Equal(t, "Invalid or expired token.", Message(err, ""))

	assert.False(t, sc.Active())
	_, ok := store.Get(session.KeyToken)
	assert.False(t, ok)
	_, ok = store.Get(session.KeyUser)
	assert.False(t, ok)

	require.Len(t, events, 1)
	assert.Equal(t, "/attendance/punch-in", events[0].Path)
}

func TestUnauthorizedWithEnvelopeDetail(t *testing.T) {
	srv := httptest.NewServer((&capture{}).handler(http.StatusUnauthorized,
		`{"detail":{"success":false,"status_code":401,"message":"Invalid email or password","data":null}}`))
	defer srv.Close()

	sc, _ := newSession(t, "")
	_, err := NewTransport(srv.URL, sc).Post(context.Background(), "/auth/login", Credentials{Email: "x", Password: "y"}, nil)
	assert.Equal(t, "Invalid email or password", Message(err, ""))
}

func TestRequestErrorMessages(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{name: "envelope message", status: http.StatusBadRequest, body: `{"success":false,"status_code":400,"message":"Bad date"}`, want: "Bad date"},
		{name: "string detail", status: http.StatusNotFound, body: `{"detail":"No data to export."}`, want: "No data to export."},
		{name: "validation list", status: http.StatusUnprocessableEntity, body: `{"detail":[{"msg":"field required"}]}`, want: "field required"},
		{name: "no body", status: http.StatusInternalServerError, body: ``, want: DefaultMessage},
		{name: "html body", status: http.StatusBadGateway, body: `<html>bad gateway</html>`, want: DefaultMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer((&capture{}).handler(tt.status, tt.body))
			defer srv.Close()

			_, err := NewTransport(srv.URL, nil).Get(context.Background(), "/x", nil)
			require.Error(t, err)
			assert.True(t, IsKind(err, KindRequest))
			assert.Equal(t, tt.want, Message(err, ""))

			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
		})
	}
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewTransport(url, nil).Get(context.Background(), "/auth/me", nil)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindTransport))
	assert.Equal(t, unreachableMessage, Message(err, ""))
}

func TestRejectedPunchIsRequestError(t *testing.T) {
	srv := httptest.NewServer((&capture{}).handler(http.StatusOK,
		`{"success":false,"status_code":400,"message":"You have already punched in and not punched out yet.","data":null}`))
	defer srv.Close()

	sc, _ := newSession(t, "tok")
	client := NewClient(srv.URL, sc)
	err := client.Attendance.PunchIn(context.Background())
	require.Error(t, err)
	assert.True(t, IsKind(err, KindRequest))
	assert.Equal(t, "You have already punched in and not punched out yet.", Message(err, "Failed to punch in"))
	assert.True(t, sc.Active())
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty", body: ``},
		{name: "not json", body: `ok`},
		{name: "wrong type", body: `{"success":true,"data":{"id":"seven"}}`},
		{name: "missing role", body: `{"success":true,"data":{"id":7,"email":"a@example.com"}}`},
		{name: "unknown role", body: `{"success":true,"data":{"id":7,"email":"a@example.com","role":"owner"}}`},
		{name: "null data", body: `{"success":true,"data":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer((&capture{}).handler(http.StatusOK, tt.body))
			defer srv.Close()

			sc, _ := newSession(t, "tok")
			_, err := NewClient(srv.URL, sc).Auth.Me(context.Background())
			require.Error(t, err)
			assert.True(t, IsKind(err, KindDecode), "got %v", err)
			assert.Equal(t, unexpectedMessage, Message(err, ""))
		})
	}
}

func TestResolveURL(t *testing.T) {
	tr := NewTransport("http://api.local:8000/", nil)

	got, err := tr.ResolveURL("/exports/a.csv")
	require.NoError(t, err)
	assert.Equal(t, "http://api.local:8000/exports/a.csv", got)

	got, err = tr.ResolveURL("exports/a.csv")
	require.NoError(t, err)
	assert.Equal(t, "http://api.local:8000/exports/a.csv", got)

	got, err = tr.ResolveURL("https://cdn.example.com/a.csv")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/a.csv", got)
}

func TestDownloadSendsBearer(t *testing.T) {
	c := &capture{}
	srv := httptest.NewServer(c.handler(http.StatusOK, "Date,Name\n"))
	defer srv.Close()

	sc, _ := newSession(t, "tok")
	var buf bytes.Buffer
	n, err := NewTransport(srv.URL, sc).Download(context.Background(), "/exports/x.csv", &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)
	assert.Equal(t, "Bearer tok", c.last().Get("Authorization"))
}

func TestDownloadFromOtherHostIsAnonymous(t *testing.T) {
	storage := &capture{}
	foreign := httptest.NewServer(storage.handler(http.StatusUnauthorized, `{"detail":"signature expired"}`))
	defer foreign.Close()

	backend := httptest.NewServer(http.NotFoundHandler())
	defer backend.Close()

	sc, store := newSession(t, "secret-tok")
	tr := NewTransport(backend.URL, sc)
	lost := 0
	tr.OnAuthenticationLost(func(AuthLostEvent) { lost++ })

	var buf bytes.Buffer
	_, err := tr.Download(context.Background(), foreign.URL+"/bucket/export.csv?X-Amz-Signature=abc", &buf)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindRequest))
	assert.False(t, errors.Is(err, ErrUnauthorized))

	_, present := storage.last()["Authorization"]
	assert.False(t, present)
	assert.True(t, sc.Active())
	assert.Zero(t, lost)
	_, ok := store.Get(session.KeyToken)
	assert.True(t, ok)
}

func TestDownloadAbsoluteBackendURLKeepsBearer(t *testing.T) {
	c := &capture{}
	srv := httptest.NewServer(c.handler(http.StatusOK, "Date,Name\n"))
	defer srv.Close()

	sc, _ := newSession(t, "tok")
	var buf bytes.Buffer
	_, err := NewTransport(srv.URL, sc).Download(context.Background(), srv.URL+"/exports/x.csv", &buf)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", c.last().Get("Authorization"))
}
