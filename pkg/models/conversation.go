package models

import (
	"time"

	"github.com/google/uuid"
)

// TurnRole identifies who produced a conversation turn.
type TurnRole string

const (
	TurnUser      TurnRole = "user"
	TurnAssistant TurnRole = "assistant"
)

// Conversation is an assistant chat session. Turns are append-only with
// strictly increasing timestamps; IsActive is a soft-delete flag.
type Conversation struct {
	ID        uuid.UUID `json:"id"`
	OrgID     uuid.UUID `json:"org_id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ConversationTurn is a single message within a conversation.
type ConversationTurn struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	Role           TurnRole  `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// TitleFromMessage derives a conversation title from its first user message:
// the first 50 characters, with an ellipsis when truncated.
func TitleFromMessage(message string) string {
	const maxLen = 50
	runes := []rune(message)
	if len(runes) <= maxLen {
		return message
	}
	return string(runes[:maxLen]) + "..."
}
