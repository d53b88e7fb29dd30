package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCredentialStoreRoundTrip(t *testing.T) {
	store := NewCredentialStore(t.TempDir())

	creds := Credentials{
		User:  User{ID: "1", Name: "Uma", Email: "u@x.com"},
		Token: "tok-1",
	}
	if err := store.Save(creds); err != nil {
		t.Fatalf("save: %v", err)
	}

	got := store.Load()
	if !got.SignedIn() {
		t.Fatalf("expected signed-in credentials")
	}
	if got.Token != "tok-1" || got.User.Email != "u@x.com" {
		t.Fatalf("round trip mangled credentials: %+v", got)
	}

	store.Clear()
	if store.Load().SignedIn() {
		t.Fatalf("still signed in after clear")
	}
}

func TestCredentialStoreEmptyDirIsSignedOut(t *testing.T) {
	store := NewCredentialStore(t.TempDir())
	if store.Load().SignedIn() {
		t.Fatalf("expected signed-out state for empty dir")
	}
}

func TestCredentialStoreCorruptUserIsSignedOut(t *testing.T) {
	dir := t.TempDir()
	store := NewCredentialStore(dir)

	if err := os.WriteFile(filepath.Join(dir, "token"), []byte("tok-1"), 0o600); err != nil {
		t.Fatalf("write token: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "user.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write user: %v", err)
	}

	// Corrupt persisted state parses to absent, never an error.
	if store.Load().SignedIn() {
		t.Fatalf("corrupt identity treated as signed in")
	}
}

func TestCredentialStoreTokenWithoutUserIsSignedOut(t *testing.T) {
	dir := t.TempDir()
	store := NewCredentialStore(dir)
	if err := os.WriteFile(filepath.Join(dir, "token"), []byte("tok-1\n"), 0o600); err != nil {
		t.Fatalf("write token: %v", err)
	}
	if store.Load().SignedIn() {
		t.Fatalf("token alone must not count as signed in")
	}
}
