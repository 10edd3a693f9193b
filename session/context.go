package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"axiapac.com/timetrack/model"
	"github.com/rs/zerolog"
)

// TeardownEvent is published whenever the session is ended, whether by an
// explicit logout or a forced invalidation.
type TeardownEvent struct {
	Reason string
}

// Context is the in-memory view of the persisted session. It is created once
// at startup and handed to the gateway and the controllers.
type Context struct {
	store  Store
	logger zerolog.Logger

	mu      sync.RWMutex
	current *Session

	subMu     sync.RWMutex
	listeners []func(TeardownEvent)
}

func NewContext(store Store, logger zerolog.Logger) *Context {
	return &Context{store: store, logger: logger}
}

// Init loads whatever the store holds. A missing session is not an error.
func (c *Context) Init(ctx context.Context) error {
	s, err := c.store.Read(ctx)
	if errors.Is(err, ErrNoSession) {
		c.set(nil)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	c.set(&s)
	c.logger.Debug().Int64("user_id", s.User.ID).Msg("session restored")
	return nil
}

// Begin persists a freshly issued token and profile. The cached session only
// changes once the store accepted the pair.
func (c *Context) Begin(ctx context.Context, token string, profile model.UserProfile) error {
	if token == "" {
		return errors.New("begin session: empty token")
	}
	s := Session{Token: token, User: profile}
	if err := c.store.Save(ctx, s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	c.set(&s)
	return nil
}

// UpdateProfile replaces the profile snapshot and keeps the token.
func (c *Context) UpdateProfile(ctx context.Context, profile model.UserProfile) error {
	token, ok := c.Token()
	if !ok {
		return ErrNoSession
	}
	s := Session{Token: token, User: profile}
	if err := c.store.Save(ctx, s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	c.set(&s)
	return nil
}

func (c *Context) Token() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return "", false
	}
	return c.current.Token, true
}

func (c *Context) Profile() (model.UserProfile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return model.UserProfile{}, false
	}
	return c.current.User, true
}

func (c *Context) Active() bool {
	_, ok := c.Token()
	return ok
}

// End clears the store and the cache, then notifies teardown listeners. The
// cache is dropped even when the store fails so no further request carries
// the old token.
func (c *Context) End(ctx context.Context, reason string) error {
	err := c.store.Clear(ctx)
	c.set(nil)

	c.logger.Info().Str("reason", reason).Msg("session ended")

	c.subMu.RLock()
	listeners := append([]func(TeardownEvent){}, c.listeners...)
	c.subMu.RUnlock()
	for _, fn := range listeners {
		fn(TeardownEvent{Reason: reason})
	}

	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (c *Context) OnTeardown(fn func(TeardownEvent)) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Context) set(s *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = s
}
