package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"axiapac.com/timetrack/model"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var alice = model.UserProfile{
	ID:    7,
	Name:  "Alice",
	Email: "alice@example.com",
	Role:  model.RoleEmployee,
	TodayAttendance: &model.TodayAttendance{
		NextAction: model.NextActionPunchIn,
	},
}

func stores(t *testing.T) map[string]Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "session.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	dbStore, err := NewDBStore(db)
	require.NoError(t, err)

	return map[string]Store{
		"memory":    NewMemoryStore(),
		"file":      NewFileStore(filepath.Join(t.TempDir(), "session.yaml"), ""),
		"encrypted": &FileStore{Path: filepath.Join(t.TempDir(), "session.age"), Passphrase: "correct horse", WorkFactor: 10},
		"database":  dbStore,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Read(ctx)
			assert.ErrorIs(t, err, ErrNoSession)

			require.NoError(t, store.Save(ctx, Session{Token: "tok-1", User: alice}))
			got, err := store.Read(ctx)
			require.NoError(t, err)
			assert.Equal(t, "tok-1", got.Token)
			assert.Equal(t, alice, got.User)

			updated := alice
			updated.TodayAttendance = &model.TodayAttendance{NextAction: model.NextActionPunchOut}
			require.NoError(t, store.Save(ctx, Session{Token: "tok-1", User: updated}))
			got, err = store.Read(ctx)
			require.NoError(t, err)
			assert.Equal(t, model.NextActionPunchOut, got.User.NextAction())

			require.NoError(t, store.Clear(ctx))
			_, err = store.Read(ctx)
			assert.ErrorIs(t, err, ErrNoSession)

			// clearing twice is fine
			assert.NoError(t, store.Clear(ctx))
		})
	}
}

func TestEncryptedFileNeedsPassphrase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.age")

	enc := &FileStore{Path: path, Passphrase: "secret", WorkFactor: 10}
	require.NoError(t, enc.Save(ctx, Session{Token: "tok", User: alice}))

	_, err := (&FileStore{Path: path, Passphrase: "wrong", WorkFactor: 10}).Read(ctx)
	assert.Error(t, err)

	_, err = NewFileStore(path, "").Read(ctx)
	assert.Error(t, err)
}

func TestMemoryStoreKeys(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), Session{Token: "tok", User: alice}))

	token, ok := store.Get(KeyToken)
	assert.True(t, ok)
	assert.Equal(t, "tok", token)

	user, ok := store.Get(KeyUser)
	assert.True(t, ok)
	assert.Contains(t, user, `"role":"employee"`)
}

func TestDialector(t *testing.T) {
	_, err := Dialector("mysql://root:pw@tcp(localhost:3306)/timetrack")
	assert.NoError(t, err)
	_, err = Dialector("postgres://root:pw@localhost/timetrack")
	assert.NoError(t, err)

	_, err = Dialector("redis://root:pw@localhost")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "pw")
}

type failingStore struct {
	Store
	failSave  bool
	failClear bool
}

func (f *failingStore) Save(ctx context.Context, s Session) error {
	if f.failSave {
		return errors.New("disk full")
	}
	return f.Store.Save(ctx, s)
}

func (f *failingStore) Clear(ctx context.Context) error {
	if f.failClear {
		return errors.New("read-only")
	}
	return f.Store.Clear(ctx)
}

func TestContextLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, Session{Token: "persisted", User: alice}))

	sc := NewContext(store, zerolog.Nop())
	assert.False(t, sc.Active())

	require.NoError(t, sc.Init(ctx))
	token, ok := sc.Token()
	assert.True(t, ok)
	assert.Equal(t, "persisted", token)

	var reasons []string
	sc.OnTeardown(func(e TeardownEvent) { reasons = append(reasons, e.Reason) })

	require.NoError(t, sc.End(ctx, "logout"))
	assert.False(t, sc.Active())
	_, ok = sc.Profile()
	assert.False(t, ok)
	_, err := store.Read(ctx)
	assert.ErrorIs(t, err, ErrNoSession)

	// ending an absent session still notifies
	require.NoError(t, sc.End(ctx, "unauthorized"))
	assert.Equal(t, []string{"logout", "unauthorized"}, reasons)
}

func TestContextInitWithoutSession(t *testing.T) {
	sc := NewContext(NewMemoryStore(), zerolog.Nop())
	require.NoError(t, sc.Init(context.Background()))
	assert.False(t, sc.Active())
}

func TestFailedSaveKeepsPriorPair(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{Store: NewMemoryStore()}
	sc := NewContext(store, zerolog.Nop())

	require.NoError(t, sc.Begin(ctx, "first", alice))

	store.failSave = true
	other := alice
	other.ID = 99
	assert.Error(t, sc.Begin(ctx, "second", other))
	assert.Error(t, sc.UpdateProfile(ctx, other))

	token, _ := sc.Token()
	profile, _ := sc.Profile()
	assert.Equal(t, "first", token)
	assert.Equal(t, int64(7), profile.ID)

	persisted, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first", persisted.Token)
}

func TestEndDropsCacheWhenClearFails(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{Store: NewMemoryStore()}
	sc := NewContext(store, zerolog.Nop())
	require.NoError(t, sc.Begin(ctx, "tok", alice))

	store.failClear = true
	assert.Error(t, sc.End(ctx, "logout"))
	assert.False(t, sc.Active())
}

func TestUpdateProfileWithoutSession(t *testing.T) {
	sc := NewContext(NewMemoryStore(), zerolog.Nop())
	assert.ErrorIs(t, sc.UpdateProfile(context.Background(), alice), ErrNoSession)
}
