package workbench

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Rrens/card-workbench/internal/domain"
)

// ChatState is the derived state of a chat session
type ChatState string

const (
	ChatNoSelection ChatState = "no-selection"
	ChatReady       ChatState = "ready-to-start"
	ChatActive      ChatState = "active"
	ChatCleared     ChatState = "cleared"
)

// ChatSessionManager owns the transcript, the previous-chat buffer and
// the snapshot history.
type ChatSessionManager struct {
	messages    []domain.ChatMessage
	previous    []domain.ChatMessage
	snapshots   []domain.ChatSnapshot
	activeSetID string
	started     bool
	hideSources bool
}

// State derives the chat state from the transcript and selection size
func (m *ChatSessionManager) State(selected int) ChatState {
	switch {
	case len(m.messages) > 0:
		return ChatActive
	case selected == 0:
		return ChatNoSelection
	case len(m.previous) > 0:
		return ChatCleared
	}
	return ChatReady
}

// Started reports whether a session was ever started
func (m *ChatSessionManager) Started() bool {
	return m.started
}

// ActiveSetID is the snapshot bound to the running session
func (m *ChatSessionManager) ActiveSetID() string {
	return m.activeSetID
}

// HideSources reports the citation display toggle
func (m *ChatSessionManager) HideSources() bool {
	return m.hideSources
}

// SetHideSources toggles citation rendering; citation data is kept
func (m *ChatSessionManager) SetHideSources(hide bool) {
	m.hideSources = hide
}

// Start snapshots the selection and appends the system message that
// references it. The transcript must be empty.
func (m *ChatSessionManager) Start(selection []int64, now time.Time) (domain.ChatSnapshot, error) {
	if len(selection) == 0 {
		return domain.ChatSnapshot{}, ErrEmptySelection
	}
	if len(m.messages) > 0 {
		return domain.ChatSnapshot{}, ErrNotReady
	}

	snap := domain.ChatSnapshot{
		ID:        m.nextSnapshotID(now),
		IDs:       slices.Clone(selection),
		CreatedAt: now,
	}
	m.snapshots = append(m.snapshots, snap)
	m.activeSetID = snap.ID

	m.messages = append(m.messages, domain.ChatMessage{
		From: domain.SenderSystem,
		Text: fmt.Sprintf("Temporary expert created from %d sources", len(selection)),
		Meta: &domain.MessageMeta{
			Badge: "Built from selection " + snap.ID,
			SetID: snap.ID,
		},
		CreatedAt: now,
	})
	m.started = true
	return snap, nil
}

func (m *ChatSessionManager) nextSnapshotID(now time.Time) string {
	base := fmt.Sprintf("set-%d", now.UnixMilli())
	id := base
	for n := 2; ; n++ {
		if _, ok := m.Snapshot(id); !ok {
			return id
		}
		id = fmt.Sprintf("%s-%d", base, n)
	}
}

// RecordExchange appends a user turn and the bot reply together
func (m *ChatSessionManager) RecordExchange(text string, reply *domain.Reply, now time.Time) {
	m.messages = append(m.messages,
		domain.ChatMessage{From: domain.SenderUser, Text: text, CreatedAt: now},
		domain.ChatMessage{
			From:      domain.SenderBot,
			Text:      reply.Answer,
			Meta:      &domain.MessageMeta{UsedCards: slices.Clone(reply.UsedCards)},
			CreatedAt: now,
		},
	)
}

// Clear moves the transcript into the previous-chat buffer, overwriting it
func (m *ChatSessionManager) Clear() {
	m.previous = m.messages
	m.messages = nil
}

// Restore replays the previous-chat buffer and consumes it. It reports
// false when there is nothing to restore.
func (m *ChatSessionManager) Restore() bool {
	if len(m.previous) == 0 {
		return false
	}
	m.messages = cloneMessages(m.previous)
	m.previous = nil
	return true
}

// CanRestore reports whether the previous-chat buffer holds a transcript
func (m *ChatSessionManager) CanRestore() bool {
	return len(m.previous) > 0
}

// Messages returns a copy of the transcript
func (m *ChatSessionManager) Messages() []domain.ChatMessage {
	return cloneMessages(m.messages)
}

// Len returns the transcript length
func (m *ChatSessionManager) Len() int {
	return len(m.messages)
}

// Snapshots returns the snapshot history, oldest first
func (m *ChatSessionManager) Snapshots() []domain.ChatSnapshot {
	return slices.Clone(m.snapshots)
}

// Snapshot finds a snapshot by id
func (m *ChatSessionManager) Snapshot(id string) (domain.ChatSnapshot, bool) {
	for _, s := range m.snapshots {
		if s.ID == id {
			return s, true
		}
	}
	return domain.ChatSnapshot{}, false
}

// Export renders the transcript as plain text, one line per message
func (m *ChatSessionManager) Export() string {
	lines := make([]string, 0, len(m.messages))
	for _, msg := range m.messages {
		lines = append(lines, speaker(msg.From)+": "+m.messageText(msg))
	}
	return strings.Join(lines, "\n")
}

// CopyText returns a bot answer for the clipboard with its sources on a
// trailing paragraph. Only bot messages can be copied.
func (m *ChatSessionManager) CopyText(index int) (string, error) {
	if index < 0 || index >= len(m.messages) {
		return "", ErrMessageNotFound
	}
	msg := m.messages[index]
	if msg.From != domain.SenderBot {
		return "", ErrNotAnswer
	}
	if m.hideSources || msg.Meta == nil || len(msg.Meta.UsedCards) == 0 {
		return msg.Text, nil
	}
	return msg.Text + "\n\nSources: " + FormatSources(msg.Meta.UsedCards), nil
}

func (m *ChatSessionManager) messageText(msg domain.ChatMessage) string {
	if m.hideSources || msg.Meta == nil || len(msg.Meta.UsedCards) == 0 {
		return msg.Text
	}
	return msg.Text + " (sources: " + FormatSources(msg.Meta.UsedCards) + ")"
}

// FormatSources lists cited cards as "title (label)"
func FormatSources(cards []domain.CardRef) string {
	parts := make([]string, 0, len(cards))
	for _, c := range cards {
		parts = append(parts, fmt.Sprintf("%s (%s)", c.Title, LabelOf(c.Status)))
	}
	return strings.Join(parts, ", ")
}

func speaker(from domain.Sender) string {
	switch from {
	case domain.SenderUser:
		return "User"
	case domain.SenderBot:
		return "Expert"
	}
	return "System"
}

func cloneMessages(msgs []domain.ChatMessage) []domain.ChatMessage {
	if msgs == nil {
		return nil
	}
	out := make([]domain.ChatMessage, len(msgs))
	for i, m := range msgs {
		out[i] = m.Clone()
	}
	return out
}
