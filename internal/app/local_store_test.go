package app

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLocalStorePromptHistoryNormalizes(t *testing.T) {
	store := NewLocalStore(t.TempDir())

	in := []string{" first ", "", "first", "second", "second", "third"}
	if err := store.SavePromptHistory(in); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.LoadPromptHistory()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []string{"first", "second", "third"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("history mismatch: got %v want %v", got, want)
	}
}

func TestLocalStorePromptHistoryMissingFileIsEmpty(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	got, err := store.LoadPromptHistory()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty history, got %v", got)
	}
}

func TestLocalStorePromptHistoryCorruptFileIsEmpty(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir)
	if err := os.WriteFile(filepath.Join(dir, "prompt_history.json"), []byte("not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := store.LoadPromptHistory()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("corrupt history must read as empty, got %v", got)
	}
}

func TestLocalStoreSessionSnapshotRoundTrip(t *testing.T) {
	store := NewLocalStore(t.TempDir())

	sessions := []ChatSession{{SessionID: "s1", Title: "Space Opera"}, {SessionID: "s2"}}
	if err := store.SaveSessionSnapshot("u@x.com", sessions); err != nil {
		t.Fatalf("save: %v", err)
	}

	got := store.LoadSessionSnapshot("u@x.com")
	if !reflect.DeepEqual(got, sessions) {
		t.Fatalf("snapshot mismatch: got %v want %v", got, sessions)
	}

	// A different identity never sees someone else's cache.
	if other := store.LoadSessionSnapshot("other@x.com"); other != nil {
		t.Fatalf("snapshot leaked across identities: %v", other)
	}
}
