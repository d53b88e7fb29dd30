package app

import (
	"sync"

	"github.com/google/uuid"
)

// SessionStore holds the ordered session list for the signed-in identity.
//
// Entries are keyed by session id in a map with a separately maintained
// ordering slice, so reconciliation never needs a linear rescan and duplicate
// ids are structurally impossible. At most one session is current at a time.
type SessionStore struct {
	mu      sync.Mutex
	byID    map[string]*ChatSession
	order   []string
	current string
	loaded  bool
}

func NewSessionStore() *SessionStore {
	return &SessionStore{byID: make(map[string]*ChatSession)}
}

// SetAll replaces the list with a backend listing and makes the head current.
// A failed listing is reported as an empty one; the store still counts as
// loaded so the UI never hangs on it.
func (s *SessionStore) SetAll(sessions []ChatSession) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byID = make(map[string]*ChatSession, len(sessions))
	s.order = s.order[:0]
	for i := range sessions {
		sess := sessions[i]
		if _, ok := s.byID[sess.SessionID]; ok {
			continue
		}
		s.byID[sess.SessionID] = &sess
		s.order = append(s.order, sess.SessionID)
	}
	s.current = ""
	if len(s.order) > 0 {
		s.current = s.order[0]
	}
	s.loaded = true
}

func (s *SessionStore) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Select moves the current pointer. The id is not required to be in the list
// yet; a provisional session created client-side is valid input.
func (s *SessionStore) Select(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = sessionID
}

// CreateProvisional mints a new session id locally, inserts an empty entry at
// the head and makes it current. No backend round trip happens here.
func (s *SessionStore) CreateProvisional() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.byID[id] = &ChatSession{SessionID: id, Provisional: true}
	s.order = append([]string{id}, s.order...)
	s.current = id
	return id
}

// Reconcile merges a backend-confirmed session id and optional title into the
// list. Unknown ids are prepended; known ids are patched in place. Applying
// the same (id, title) twice yields the same state.
func (s *SessionStore) Reconcile(sessionID, title string) {
	if sessionID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byID[sessionID]
	if !ok {
		sess = &ChatSession{SessionID: sessionID}
		s.byID[sessionID] = sess
		s.order = append([]string{sessionID}, s.order...)
	}
	sess.Provisional = false
	if title != "" {
		sess.Title = title
	}
}

// Delete removes an entry locally. If it was current, the head of what
// remains becomes current, or nothing if the list is empty. No backend
// delete call is implied.
func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[sessionID]; !ok {
		return
	}
	delete(s.byID, sessionID)
	for i, id := range s.order {
		if id == sessionID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.current == sessionID {
		s.current = ""
		if len(s.order) > 0 {
			s.current = s.order[0]
		}
	}
}

// Current returns the current session id, or "" when none is selected.
func (s *SessionStore) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// List returns the sessions in order.
func (s *SessionStore) List() []ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ChatSession, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.byID[id])
	}
	return out
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}
