package app

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of a conversation. Messages are immutable once
// created; ordering is insertion order.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"` // user|assistant
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

func NewChatMessage(role, content string) ChatMessage {
	return ChatMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// ChatSession is a sidebar entry. Provisional sessions carry a locally minted
// UUID and no title until the backend acknowledges them.
type ChatSession struct {
	SessionID   string `json:"sessionId"`
	Title       string `json:"title,omitempty"`
	Provisional bool   `json:"provisional,omitempty"`
}

// DisplayTitle is what the sidebar shows for an untitled session.
func (s ChatSession) DisplayTitle() string {
	if s.Title != "" {
		return s.Title
	}
	return "New chat"
}

// User is the signed-in identity as the backend reports it.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Credentials pair an identity with its bearer token.
type Credentials struct {
	User  User
	Token string
}

func (c Credentials) SignedIn() bool {
	return c.Token != "" && c.User.Email != ""
}
