package roster

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// SessionKey is the fixed key the logged-in teacher is stored under.
const SessionKey = "currentTeacher"

var ErrNoSession = errors.New("not logged in")

// SessionStore is a small JSON key/value file standing in for browser local storage.
type SessionStore struct {
	path string
}

func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

// DefaultSessionPath is ~/.config/rosterctl/session.json (or the OS equivalent).
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "rosterctl", "session.json"), nil
}

func (s *SessionStore) Path() string {
	return s.path
}

func (s *SessionStore) Load() (*Session, error) {
	entries, err := s.read()
	if err != nil {
		return nil, err
	}
	raw, ok := entries[SessionKey]
	if !ok {
		return nil, ErrNoSession
	}

	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("corrupt session file %s: %w", s.path, err)
	}
	return &session, nil
}

func (s *SessionStore) Save(session *Session) error {
	entries, err := s.read()
	if err != nil {
		return err
	}

	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	entries[SessionKey] = raw

	return s.write(entries)
}

// Clear removes the session. Clearing an absent session is not an error.
func (s *SessionStore) Clear() error {
	entries, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := entries[SessionKey]; !ok {
		return nil
	}
	delete(entries, SessionKey)
	return s.write(entries)
}

func (s *SessionStore) read() (map[string]json.RawMessage, error) {
	entries := make(map[string]json.RawMessage)

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return entries, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("corrupt session file %s: %w", s.path, err)
	}
	return entries, nil
}

func (s *SessionStore) write(entries map[string]json.RawMessage) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
