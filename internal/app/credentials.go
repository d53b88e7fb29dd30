package app

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// CredentialStore persists the bearer token and the serialized identity
// between runs, the terminal analog of the browser's key/value storage.
//
// Corrupt or missing state always parses to signed-out; it is never an error.
type CredentialStore struct {
	dir string
}

func NewCredentialStore(dir string) *CredentialStore {
	return &CredentialStore{dir: dir}
}

// DefaultProfileDir is where credentials, config and logs live.
func DefaultProfileDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "firstdraft")
}

func (s *CredentialStore) tokenPath() string { return filepath.Join(s.dir, "token") }
func (s *CredentialStore) userPath() string  { return filepath.Join(s.dir, "user.json") }

// Load reads whatever identity survives on disk. Anything unreadable or
// malformed yields empty Credentials.
func (s *CredentialStore) Load() Credentials {
	var creds Credentials
	if data, err := os.ReadFile(s.tokenPath()); err == nil {
		creds.Token = strings.TrimSpace(string(data))
	}
	if data, err := os.ReadFile(s.userPath()); err == nil {
		var u User
		if err := json.Unmarshal(data, &u); err == nil {
			creds.User = u
		}
	}
	if !creds.SignedIn() {
		return Credentials{}
	}
	return creds
}

// Save writes the signed-in identity.
func (s *CredentialStore) Save(creds Credentials) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(s.tokenPath(), []byte(creds.Token), 0o600); err != nil {
		return err
	}
	data, err := json.Marshal(creds.User)
	if err != nil {
		return err
	}
	return os.WriteFile(s.userPath(), data, 0o600)
}

// Clear signs out by removing the persisted state.
func (s *CredentialStore) Clear() {
	_ = os.Remove(s.tokenPath())
	_ = os.Remove(s.userPath())
}
