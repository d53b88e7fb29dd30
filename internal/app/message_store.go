package app

import "sync"

// MessageStore holds the messages of the currently selected session. Contents
// are replaced wholesale on session switch.
//
// Loads race with session switches: the user can select session B while A's
// fetch is still in flight. Deliver therefore compares the resolved session id
// against the live active pointer at resolution time, so a stale load for a
// superseded session is discarded (last-selected-wins).
type MessageStore struct {
	mu       sync.Mutex
	active   string
	messages []ChatMessage
}

func NewMessageStore() *MessageStore {
	return &MessageStore{}
}

// SetActive marks sessionID as the one whose messages belong in the store and
// clears the previous contents. Call before starting the fetch.
func (s *MessageStore) SetActive(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = sessionID
	s.messages = nil
}

// Deliver installs a resolved fetch result. The result is dropped when the
// session is no longer active. Reports whether the contents were applied.
func (s *MessageStore) Deliver(sessionID string, messages []ChatMessage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sessionID != s.active {
		return false
	}
	s.messages = append(s.messages[:0], messages...)
	return true
}

// Append inserts at the tail. Messages are never reordered or deduplicated.
func (s *MessageStore) Append(msg ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

// Messages returns a copy of the current contents in order.
func (s *MessageStore) Messages() []ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *MessageStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}
