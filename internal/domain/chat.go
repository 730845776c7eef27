package domain

import "time"

// Sender identifies who produced a chat message
type Sender string

const (
	SenderUser   Sender = "user"
	SenderBot    Sender = "bot"
	SenderSystem Sender = "system"
)

// MessageMeta carries optional message annotations
type MessageMeta struct {
	UsedCards []CardRef `json:"used_cards,omitempty"`
	Badge     string    `json:"badge,omitempty"`
	SetID     string    `json:"set_id,omitempty"`
}

// ChatMessage is one transcript entry
type ChatMessage struct {
	From      Sender       `json:"from"`
	Text      string       `json:"text"`
	Meta      *MessageMeta `json:"meta,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// Clone returns a deep copy of the message
func (m ChatMessage) Clone() ChatMessage {
	if m.Meta != nil {
		meta := *m.Meta
		meta.UsedCards = append([]CardRef(nil), m.Meta.UsedCards...)
		m.Meta = &meta
	}
	return m
}

// ChatSnapshot is an immutable capture of the selection at chat start
type ChatSnapshot struct {
	ID        string    `json:"id"`
	IDs       []int64   `json:"ids"`
	CreatedAt time.Time `json:"created_at"`
}

// ReplyRequest is sent to the chat-reply collaborator
type ReplyRequest struct {
	Message string
	CardIDs []int64
	Cards   []CardShape
	History []ChatMessage
}

// Reply is the collaborator's grounded answer
type Reply struct {
	Answer    string    `json:"answer"`
	UsedCards []CardRef `json:"used_cards"`
}
