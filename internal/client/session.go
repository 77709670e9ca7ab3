package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const sessionFile = "session.json"

// Session is the persisted login state of the client.
type Session struct {
	Email string `json:"email"`
	Token string `json:"token"`

	path string
}

// DefaultSessionPath returns the session location under the user's config dir,
// falling back to the working directory.
func DefaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return sessionFile
	}
	return filepath.Join(dir, "taskly", sessionFile)
}

// LoadSession reads the session at path. A missing file yields an empty session.
func LoadSession(path string) (*Session, error) {
	s := &Session{path: path}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(s); err != nil {
		return nil, fmt.Errorf("corrupt session file %s: %w", path, err)
	}
	return s, nil
}

// LoggedIn reports whether a token is stored.
func (s *Session) LoggedIn() bool { return s.Token != "" }

// Save writes the session with owner-only permissions.
func (s *Session) Save() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(s)
}

// Clear forgets the token and removes the file.
func (s *Session) Clear() error {
	s.Email, s.Token = "", ""
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
