package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"axiapac.com/timetrack/telemetry"
	"axiapac.com/timetrack/timetrack/v1/common"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	unreachableMessage = "Unable to reach the server. Please try again."
	expiredMessage     = "Your session has expired. Please log in again."
)

// SessionHolder is the session state the transport reads tokens from and
// tears down on 401.
type SessionHolder interface {
	Token() (string, bool)
	End(ctx context.Context, reason string) error
}

// AuthLostEvent is emitted after a 401 has cleared the session.
type AuthLostEvent struct {
	Method  string
	Path    string
	Message string
	At      time.Time
}

type Response struct {
	StatusCode int
	Data       []byte
}

// Transport handles low-level HTTP and authentication
type Transport struct {
	BaseURL    string
	HTTPClient *http.Client

	session SessionHolder
	metrics *telemetry.Metrics
	logger  zerolog.Logger
	now     func() time.Time

	mu       sync.RWMutex
	authLost []func(AuthLostEvent)
}

type request struct {
	method string
	path   string
	url    string
	body   any
	token  *string
	// foreign requests leave the backend: no bearer, no 401 teardown.
	foreign bool
}

// NewTransport creates a transport with base URL and the session to authenticate with
func NewTransport(baseURL string, session SessionHolder) *Transport {
	return &Transport{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{},
		session:    session,
		logger:     zerolog.Nop(),
		now:        time.Now,
	}
}

// OnAuthenticationLost registers fn to run after any 401 tore the session down.
func (t *Transport) OnAuthenticationLost(fn func(AuthLostEvent)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.authLost = append(t.authLost, fn)
}

// helper: build full URL with query params
func (t *Transport) buildURL(path string, query url.Values) (string, error) {
	u, err := url.Parse(t.BaseURL + path)
	if err != nil {
		return "", err
	}
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// ResolveURL turns a server-relative reference such as an export file_url
// into an absolute URL under BaseURL. Absolute references are returned as is.
func (t *Transport) ResolveURL(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", ref, err)
	}
	if u.IsAbs() {
		return u.String(), nil
	}
	return t.BaseURL + "/" + strings.TrimLeft(ref, "/"), nil
}

// sameOrigin reports whether rawURL points at the backend's scheme and host.
func (t *Transport) sameOrigin(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	base, err := url.Parse(t.BaseURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, base.Scheme) && strings.EqualFold(u.Host, base.Host)
}

// Get sends a GET request
func (t *Transport) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return t.exchange(ctx, request{method: http.MethodGet, path: path}, query)
}

// Post sends a POST request with JSON body; a nil body sends none.
func (t *Transport) Post(ctx context.Context, path string, data any, query url.Values) (*Response, error) {
	return t.exchange(ctx, request{method: http.MethodPost, path: path, body: data}, query)
}

// getWithToken authenticates with token instead of the session's.
func (t *Transport) getWithToken(ctx context.Context, path, token string) (*Response, error) {
	return t.exchange(ctx, request{method: http.MethodGet, path: path, token: &token}, nil)
}

// Download streams the resource at ref (relative to BaseURL or absolute) into w.
// Only backend URLs carry the bearer token; other hosts such as presigned
// storage links are fetched anonymously.
func (t *Transport) Download(ctx context.Context, ref string, w io.Writer) (int64, error) {
	fullURL, err := t.ResolveURL(ref)
	if err != nil {
		return 0, &Error{Kind: KindRequest, Method: http.MethodGet, Path: ref, Message: "Invalid download link", Err: err}
	}

	resp, err := t.send(ctx, request{method: http.MethodGet, path: ref, url: fullURL, foreign: !t.sameOrigin(fullURL)})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, &Error{Kind: KindTransport, Method: http.MethodGet, Path: ref, Message: unreachableMessage, Err: err}
	}
	return n, nil
}

func (t *Transport) exchange(ctx context.Context, r request, query url.Values) (*Response, error) {
	fullURL, err := t.buildURL(r.path, query)
	if err != nil {
		return nil, &Error{Kind: KindRequest, Method: r.method, Path: r.path, Message: DefaultMessage, Err: err}
	}
	r.url = fullURL

	resp, err := t.send(ctx, r)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Method: r.method, Path: r.path, Message: unreachableMessage, Err: err}
	}

	return &Response{StatusCode: resp.StatusCode, Data: data}, nil
}

// send performs the request. On success the caller owns resp.Body; every
// failure comes back as *Error with the body already drained.
func (t *Transport) send(ctx context.Context, r request) (*http.Response, error) {
	var body io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return nil, &Error{Kind: KindRequest, Method: r.method, Path: r.path, Message: DefaultMessage, Err: err}
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, r.url, body)
	if err != nil {
		return nil, &Error{Kind: KindRequest, Method: r.method, Path: r.path, Message: DefaultMessage, Err: err}
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := t.token(r); token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	start := t.now()
	resp, err := t.HTTPClient.Do(req)
	elapsed := t.now().Sub(start)
	if err != nil {
		t.metrics.Observe(r.method, r.path, 0, elapsed)
		t.logger.Debug().Err(err).Str("method", r.method).Str("path", r.path).Str("request_id", requestID).Msg("request failed")
		return nil, &Error{Kind: KindTransport, Method: r.method, Path: r.path, Message: unreachableMessage, Err: err}
	}

	t.metrics.Observe(r.method, r.path, resp.StatusCode, elapsed)
	t.logger.Debug().
		Str("method", r.method).
		Str("path", r.path).
		Int("status", resp.StatusCode).
		Dur("elapsed", elapsed).
		Str("request_id", requestID).
		Msg("request")

	if resp.StatusCode < 300 {
		return resp, nil
	}

	defer resp.Body.Close()
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	message := errorText(b)

	if resp.StatusCode == http.StatusUnauthorized && !r.foreign {
		if message == "" {
			message = expiredMessage
		}
		t.authenticationLost(ctx, r, message)
		return nil, &Error{Kind: KindUnauthorized, Method: r.method, Path: r.path, StatusCode: resp.StatusCode, Message: message, Err: ErrUnauthorized}
	}

	if message == "" {
		message = DefaultMessage
	}
	return nil, &Error{Kind: KindRequest, Method: r.method, Path: r.path, StatusCode: resp.StatusCode, Message: message}
}

func (t *Transport) token(r request) string {
	if r.foreign {
		return ""
	}
	if r.token != nil {
		return *r.token
	}
	if t.session == nil {
		return ""
	}
	token, ok := t.session.Token()
	if !ok {
		return ""
	}
	return token
}

// authenticationLost clears the session and notifies subscribers. It runs for
// every 401, including one answering the logout call itself.
func (t *Transport) authenticationLost(ctx context.Context, r request, message string) {
	if t.session != nil {
		if err := t.session.End(context.WithoutCancel(ctx), "unauthorized"); err != nil {
			t.logger.Error().Err(err).Msg("failed to clear session after 401")
		}
	}
	t.logger.Warn().Str("method", r.method).Str("path", r.path).Msg("authentication lost")

	t.mu.RLock()
	subscribers := append([]func(AuthLostEvent){}, t.authLost...)
	t.mu.RUnlock()

	event := AuthLostEvent{Method: r.method, Path: r.path, Message: message, At: t.now()}
	for _, fn := range subscribers {
		fn(event)
	}
}

func errorText(b []byte) string {
	if len(bytes.TrimSpace(b)) == 0 {
		return ""
	}
	var body common.ErrorBody
	if err := json.Unmarshal(b, &body); err != nil {
		return ""
	}
	return body.Text()
}
