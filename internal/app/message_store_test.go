package app

import "testing"

func TestStaleLoadForSupersededSessionIsDiscarded(t *testing.T) {
	store := NewMessageStore()

	store.SetActive("a")
	store.SetActive("b")

	// A's fetch resolves after B was selected; it must not win.
	if store.Deliver("a", []ChatMessage{{ID: "1", Role: RoleUser, Content: "from a"}}) {
		t.Fatalf("stale delivery for a was applied")
	}
	if !store.Deliver("b", []ChatMessage{{ID: "2", Role: RoleUser, Content: "from b"}}) {
		t.Fatalf("delivery for the active session was dropped")
	}

	msgs := store.Messages()
	if len(msgs) != 1 || msgs[0].Content != "from b" {
		t.Fatalf("unexpected contents: %+v", msgs)
	}
}

func TestSetActiveClearsPreviousContents(t *testing.T) {
	store := NewMessageStore()
	store.SetActive("a")
	store.Deliver("a", []ChatMessage{{ID: "1"}})

	store.SetActive("b")
	if store.Len() != 0 {
		t.Fatalf("switching sessions must clear the pane")
	}
}

func TestAppendKeepsInsertionOrder(t *testing.T) {
	store := NewMessageStore()
	store.SetActive("s")

	store.Append(ChatMessage{ID: "1", Role: RoleUser, Content: "first"})
	store.Append(ChatMessage{ID: "2", Role: RoleAssistant, Content: "second"})
	store.Append(ChatMessage{ID: "3", Role: RoleUser, Content: "second"}) // same content is fine

	msgs := store.Messages()
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	for i, want := range []string{"1", "2", "3"} {
		if msgs[i].ID != want {
			t.Fatalf("order broken at %d: got %s want %s", i, msgs[i].ID, want)
		}
	}
}

func TestMessagesReturnsCopy(t *testing.T) {
	store := NewMessageStore()
	store.Append(ChatMessage{ID: "1", Content: "keep"})

	snap := store.Messages()
	snap[0].Content = "mutated"

	if store.Messages()[0].Content != "keep" {
		t.Fatalf("snapshot aliased store contents")
	}
}
