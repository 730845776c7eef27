package workbench

import (
	"strings"
	"testing"
	"time"

	"github.com/Rrens/card-workbench/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var chatNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func startedChat(t *testing.T) *ChatSessionManager {
	t.Helper()
	var m ChatSessionManager
	_, err := m.Start([]int64{1, 2}, chatNow)
	require.NoError(t, err)
	m.RecordExchange("What is the policy?", &domain.Reply{
		Answer:    "See the finance policy.",
		UsedCards: []domain.CardRef{{ID: 1, Title: "Finance policy", Status: "green"}},
	}, chatNow)
	return &m
}

func TestChatSessionManager_States(t *testing.T) {
	var m ChatSessionManager

	assert.Equal(t, ChatNoSelection, m.State(0))
	assert.Equal(t, ChatReady, m.State(2))

	_, err := m.Start([]int64{1, 2}, chatNow)
	require.NoError(t, err)
	assert.Equal(t, ChatActive, m.State(2))
	assert.Equal(t, ChatActive, m.State(0), "transcript drives the active state")

	m.Clear()
	assert.Equal(t, ChatCleared, m.State(2))
	assert.Equal(t, ChatNoSelection, m.State(0))

	assert.True(t, m.Restore())
	assert.Equal(t, ChatActive, m.State(2))
}

func TestChatSessionManager_Start(t *testing.T) {
	var m ChatSessionManager

	_, err := m.Start(nil, chatNow)
	assert.ErrorIs(t, err, ErrEmptySelection)

	snap, err := m.Start([]int64{4, 2}, chatNow)
	require.NoError(t, err)
	assert.Equal(t, "set-1714564800000", snap.ID)
	assert.Equal(t, []int64{4, 2}, snap.IDs)
	assert.True(t, m.Started())
	assert.Equal(t, snap.ID, m.ActiveSetID())

	msgs := m.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, domain.SenderSystem, msgs[0].From)
	assert.Equal(t, "Temporary expert created from 2 sources", msgs[0].Text)
	assert.Equal(t, snap.ID, msgs[0].Meta.SetID)

	_, err = m.Start([]int64{1}, chatNow)
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestChatSessionManager_SnapshotIDsAreUnique(t *testing.T) {
	var m ChatSessionManager
	first, err := m.Start([]int64{1}, chatNow)
	require.NoError(t, err)
	m.Clear()
	second, err := m.Start([]int64{2}, chatNow)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, m.Snapshots(), 2)

	got, ok := m.Snapshot(first.ID)
	assert.True(t, ok)
	assert.Equal(t, []int64{1}, got.IDs)
}

func TestChatSessionManager_ClearRestore(t *testing.T) {
	m := startedChat(t)
	before := m.Messages()

	m.Clear()
	assert.Zero(t, m.Len())
	assert.True(t, m.CanRestore())

	assert.True(t, m.Restore())
	assert.Equal(t, before, m.Messages())

	assert.False(t, m.Restore(), "second restore without clear is a no-op")
	assert.Equal(t, before, m.Messages())
}

func TestChatSessionManager_RestoreWithoutBuffer(t *testing.T) {
	var m ChatSessionManager
	assert.False(t, m.Restore())
	assert.Zero(t, m.Len())
}

func TestChatSessionManager_Export(t *testing.T) {
	m := startedChat(t)

	lines := strings.Split(m.Export(), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "System: Temporary expert created"))
	assert.Equal(t, "User: What is the policy?", lines[1])
	assert.Equal(t, "Expert: See the finance policy. (sources: Finance policy (up to date))", lines[2])

	m.SetHideSources(true)
	lines = strings.Split(m.Export(), "\n")
	assert.Equal(t, "Expert: See the finance policy.", lines[2])

	msgs := m.Messages()
	assert.Len(t, msgs[2].Meta.UsedCards, 1, "citations are kept while hidden")
}

func TestChatSessionManager_CopyText(t *testing.T) {
	m := startedChat(t)

	tests := []struct {
		name    string
		index   int
		hide    bool
		want    string
		wantErr error
	}{
		{"answer with sources", 2, false, "See the finance policy.\n\nSources: Finance policy (up to date)", nil},
		{"answer with hidden sources", 2, true, "See the finance policy.", nil},
		{"system message", 0, false, "", ErrNotAnswer},
		{"user message", 1, false, "", ErrNotAnswer},
		{"out of range", 5, false, "", ErrMessageNotFound},
		{"negative index", -1, false, "", ErrMessageNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m.SetHideSources(tt.hide)
			text, err := m.CopyText(tt.index)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, text)
		})
	}
}
