package app

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalStore keeps the small per-profile files that survive restarts: the
// prompt history for the input box and the last known session listing. The
// session snapshot is a convenience cache; backend-sourced data always
// supersedes it.
type LocalStore struct {
	Root string
}

func NewLocalStore(root string) *LocalStore {
	if strings.TrimSpace(root) == "" {
		root = DefaultProfileDir()
	}
	return &LocalStore{Root: root}
}

type PromptHistory struct {
	Entries   []string  `json:"entries"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SessionSnapshot struct {
	Email     string        `json:"email"`
	Sessions  []ChatSession `json:"sessions"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (s *LocalStore) historyPath() string  { return filepath.Join(s.Root, "prompt_history.json") }
func (s *LocalStore) snapshotPath() string { return filepath.Join(s.Root, "sessions.json") }

func normalizePromptHistory(entries []string, max int) []string {
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if n := len(out); n > 0 && out[n-1] == entry {
			continue
		}
		out = append(out, entry)
	}
	if max > 0 && len(out) > max {
		out = out[len(out)-max:]
	}
	return out
}

func (s *LocalStore) SavePromptHistory(entries []string) error {
	history := PromptHistory{
		Entries:   normalizePromptHistory(entries, 200),
		UpdatedAt: time.Now(),
	}
	if err := os.MkdirAll(s.Root, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.historyPath(), b, 0o644)
}

func (s *LocalStore) LoadPromptHistory() ([]string, error) {
	b, err := os.ReadFile(s.historyPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, err
	}
	var history PromptHistory
	if err := json.Unmarshal(b, &history); err != nil {
		// Corrupt history is dropped, not fatal.
		return []string{}, nil
	}
	return normalizePromptHistory(history.Entries, 200), nil
}

// SaveSessionSnapshot caches the reconciled session list for offline listing.
func (s *LocalStore) SaveSessionSnapshot(email string, sessions []ChatSession) error {
	snap := SessionSnapshot{Email: email, Sessions: sessions, UpdatedAt: time.Now()}
	if err := os.MkdirAll(s.Root, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.snapshotPath(), b, 0o644)
}

// LoadSessionSnapshot returns the cached listing for the identity, or nothing
// when the cache is missing, malformed, or belongs to someone else.
func (s *LocalStore) LoadSessionSnapshot(email string) []ChatSession {
	b, err := os.ReadFile(s.snapshotPath())
	if err != nil {
		return nil
	}
	var snap SessionSnapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil
	}
	if snap.Email != email {
		return nil
	}
	return snap.Sessions
}
