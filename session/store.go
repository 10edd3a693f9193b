package session

import (
	"context"
	"errors"

	"axiapac.com/timetrack/model"
)

// Storage keys, shared by every store so a persisted session can be moved
// between them.
const (
	KeyToken = "authToken"
	KeyUser  = "userData"
)

var ErrNoSession = errors.New("no session")

// Session is the token and the profile snapshot taken at login or after the
// latest punch.
type Session struct {
	Token string
	User  model.UserProfile
}

// Store persists a Session. Save is all-or-nothing: when it fails the pair
// that was there before is still what Read returns.
type Store interface {
	Save(ctx context.Context, s Session) error
	Read(ctx context.Context) (Session, error)
	Clear(ctx context.Context) error
}
