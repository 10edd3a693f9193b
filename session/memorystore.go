package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"axiapac.com/timetrack/model"
)

// MemoryStore keeps the two keys in a map, serialized the same way the
// persistent stores do.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]string{}}
}

func (m *MemoryStore) Save(_ context.Context, s Session) error {
	user, err := json.Marshal(s.User)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[KeyToken] = s.Token
	m.values[KeyUser] = string(user)
	return nil
}

func (m *MemoryStore) Read(_ context.Context) (Session, error) {
	m.mu.RLock()
	token, hasToken := m.values[KeyToken]
	user, hasUser := m.values[KeyUser]
	m.mu.RUnlock()

	return decodePair(token, hasToken, user, hasUser)
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, KeyToken)
	delete(m.values, KeyUser)
	return nil
}

// Get exposes a raw key, the way a browser storage inspector would.
func (m *MemoryStore) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func decodePair(token string, hasToken bool, user string, hasUser bool) (Session, error) {
	if !hasToken || token == "" {
		return Session{}, ErrNoSession
	}
	s := Session{Token: token}
	if hasUser && user != "" {
		var profile model.UserProfile
		if err := json.Unmarshal([]byte(user), &profile); err != nil {
			return Session{}, fmt.Errorf("decode %s: %w", KeyUser, err)
		}
		s.User = profile
	}
	return s, nil
}
