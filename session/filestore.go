package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"filippo.io/age"
	"gopkg.in/yaml.v3"
)

// FileStore keeps both keys in one YAML document. With a passphrase the
// document is encrypted with an age scrypt recipient.
type FileStore struct {
	Path       string
	Passphrase string
	// WorkFactor overrides the scrypt cost; zero keeps the age default.
	WorkFactor int
}

type fileDocument struct {
	AuthToken string `yaml:"authToken"`
	UserData  string `yaml:"userData"`
}

func NewFileStore(path, passphrase string) *FileStore {
	return &FileStore{Path: path, Passphrase: passphrase}
}

// DefaultPath is ~/.config/timetrack/session.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "timetrack", "session.yaml"), nil
}

func (f *FileStore) Save(_ context.Context, s Session) error {
	user, err := json.Marshal(s.User)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	doc, err := yaml.Marshal(fileDocument{AuthToken: s.Token, UserData: string(user)})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if f.Passphrase != "" {
		if doc, err = f.encrypt(doc); err != nil {
			return err
		}
	}
	return writeAtomic(f.Path, doc)
}

func (f *FileStore) Read(_ context.Context) (Session, error) {
	b, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("read session file: %w", err)
	}
	if f.Passphrase != "" {
		if b, err = f.decrypt(b); err != nil {
			return Session{}, err
		}
	}

	var doc fileDocument
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return Session{}, fmt.Errorf("decode session file: %w", err)
	}
	return decodePair(doc.AuthToken, true, doc.UserData, true)
}

func (f *FileStore) Clear(_ context.Context) error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

func (f *FileStore) encrypt(plain []byte) ([]byte, error) {
	recipient, err := age.NewScryptRecipient(f.Passphrase)
	if err != nil {
		return nil, fmt.Errorf("age recipient: %w", err)
	}
	if f.WorkFactor > 0 {
		recipient.SetWorkFactor(f.WorkFactor)
	}

	var out bytes.Buffer
	w, err := age.Encrypt(&out, recipient)
	if err != nil {
		return nil, fmt.Errorf("age encrypt: %w", err)
	}
	if _, err := w.Write(plain); err != nil {
		return nil, fmt.Errorf("age encrypt: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("age encrypt: %w", err)
	}
	return out.Bytes(), nil
}

func (f *FileStore) decrypt(cipher []byte) ([]byte, error) {
	identity, err := age.NewScryptIdentity(f.Passphrase)
	if err != nil {
		return nil, fmt.Errorf("age identity: %w", err)
	}
	r, err := age.Decrypt(bytes.NewReader(cipher), identity)
	if err != nil {
		return nil, fmt.Errorf("decrypt session file: %w", err)
	}
	return io.ReadAll(r)
}

// writeAtomic replaces path via a temp file in the same directory so a
// reader sees either the old pair or the new one.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write session file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}
