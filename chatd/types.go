package chatd

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

const (
	titleLimit   = 30
	previewLimit = 100
)

// Message is one chat turn.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is a stored chat thread. Instances handed out by a Store are
// private copies; mutating them never affects the stored state until Save.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ConversationSummary is the list-view projection of a conversation.
type ConversationSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
	Preview      string    `json:"preview,omitempty"`
}

// NewConversation creates an empty conversation titled after the opening
// user message.
func NewConversation(firstMessage string) *Conversation {
	now := time.Now().UTC()
	return &Conversation{
		ID:        uuid.New().String(),
		Title:     TitleFor(firstMessage),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TitleFor derives a conversation title from the opening message: the first
// 30 characters, with an ellipsis when the message is longer.
func TitleFor(message string) string {
	runes := []rune(message)
	if len(runes) <= titleLimit {
		return message
	}
	return string(runes[:titleLimit]) + "..."
}

// Append adds a message and touches UpdatedAt.
func (c *Conversation) Append(role, content string) {
	now := time.Now().UTC()
	c.Messages = append(c.Messages, Message{Role: role, Content: content, Timestamp: now})
	c.UpdatedAt = now
}

// Clone returns a deep copy.
func (c *Conversation) Clone() *Conversation {
	if c == nil {
		return nil
	}
	out := *c
	out.Messages = append([]Message(nil), c.Messages...)
	return &out
}

// LastAssistantContent returns the content of the most recent assistant
// message, if any.
func (c *Conversation) LastAssistantContent() (string, bool) {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleAssistant {
			return c.Messages[i].Content, true
		}
	}
	return "", false
}

// Summary projects the conversation for list responses. The preview is the
// first 100 characters of the newest message.
func (c *Conversation) Summary() ConversationSummary {
	s := ConversationSummary{
		ID:           c.ID,
		Title:        c.Title,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
		MessageCount: len(c.Messages),
	}
	if n := len(c.Messages); n > 0 {
		s.Preview = truncateRunes(c.Messages[n-1].Content, previewLimit)
	}
	return s
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
