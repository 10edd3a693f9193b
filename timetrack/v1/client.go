package v1

import (
	"net/http"

	"axiapac.com/timetrack/telemetry"
	"github.com/rs/zerolog"
)

type Client struct {
	Transport  *Transport
	Auth       *AuthEndpoint
	Attendance *AttendanceEndpoint
	Users      *UserEndpoint
}

type Option func(*Transport)

func WithHTTPClient(c *http.Client) Option {
	return func(t *Transport) {
		if c != nil {
			t.HTTPClient = c
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(t *Transport) { t.logger = l }
}

func WithMetrics(m *telemetry.Metrics) Option {
	return func(t *Transport) { t.metrics = m }
}

// NewClient initializes the API client
func NewClient(baseURL string, session SessionHolder, opts ...Option) *Client {
	t := NewTransport(baseURL, session)
	for _, opt := range opts {
		opt(t)
	}
	return &Client{
		Transport:  t,
		Auth:       &AuthEndpoint{transport: t},
		Attendance: &AttendanceEndpoint{transport: t},
		Users:      &UserEndpoint{transport: t},
	}
}

// OnAuthenticationLost subscribes fn to the event emitted after a 401.
func (c *Client) OnAuthenticationLost(fn func(AuthLostEvent)) {
	c.Transport.OnAuthenticationLost(fn)
}
