package workbench

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Rrens/card-workbench/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var sessionNow = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func testCards() []domain.Card {
	return []domain.Card{
		{ID: 1, Title: "Finance policy", Content: "covers finance rules", Status: "green", DomainID: 1, OwnerID: 10},
		{ID: 2, Title: "Finance archive", Status: "red", DomainID: 1, OwnerID: 11},
		{ID: 3, Title: "HR onboarding", Description: "finance team onboarding", Status: "active", DomainID: 2, OwnerID: 10},
		{ID: 4, Title: "Finance review", Status: "yellow", DomainID: 1, OwnerID: 11},
		{ID: 5, Title: "Finance basics", Status: "active", DomainID: 2, OwnerID: 11},
	}
}

func newTestSession(t *testing.T, source RegistrySource) (*Session, *MockCatalog, *MockResponder) {
	t.Helper()
	cat := new(MockCatalog)
	resp := new(MockResponder)
	ctx := context.Background()

	cat.On("ListDomains", ctx).Return([]domain.Domain{{ID: 1, Code: "FIN", Name: "Finance"}, {ID: 2, Code: "HR", Name: "People"}}, nil)
	cat.On("ListUsers", ctx).Return([]domain.User{{ID: 10, Name: "Ann"}, {ID: 11, Name: "Bob"}}, nil)
	cat.On("ListCards", ctx).Return(testCards(), nil)

	s := NewSession("s-1", cat, resp, Options{
		RegistrySource: source,
		Clock:          func() time.Time { return sessionNow },
	})
	return s, cat, resp
}

func loadedSession(t *testing.T) (*Session, *MockCatalog, *MockResponder) {
	t.Helper()
	s, cat, resp := newTestSession(t, RegistryFromCache)
	require.NoError(t, s.Load(context.Background()))
	return s, cat, resp
}

func TestSession_Load(t *testing.T) {
	s, cat, _ := loadedSession(t)

	st := s.State()
	assert.Equal(t, 5, st.Cards)
	assert.Equal(t, int64(10), st.CurrentUser, "first user is the fallback")
	assert.Equal(t, 5, st.Registry.Total)
	assert.Equal(t, "FIN", st.Registry.Rows[0].DomainCode)
	assert.NotEmpty(t, st.Registry.Rows[0].OwnerName)
	cat.AssertExpectations(t)
}

func TestSession_LoadPartialFailure(t *testing.T) {
	cat := new(MockCatalog)
	ctx := context.Background()
	cat.On("ListDomains", ctx).Return([]domain.Domain{}, nil)
	cat.On("ListUsers", ctx).Return(nil, errors.New("users down"))
	cat.On("ListCards", ctx).Return(testCards(), nil)

	s := NewSession("s-2", cat, new(MockResponder), Options{})
	err := s.Load(ctx)

	var collab *CollaboratorError
	require.ErrorAs(t, err, &collab)
	assert.Equal(t, "list users", collab.Op)

	st := s.State()
	assert.Equal(t, 5, st.Cards)
	assert.Len(t, st.LoadErrors, 1)
	assert.Zero(t, st.CurrentUser)
}

func TestSession_SearchQuickStart(t *testing.T) {
	s, _, _ := loadedSession(t)

	_, err := s.Search("   ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.Empty(t, s.Blocks())

	block, err := s.Search("Finance")
	require.NoError(t, err)
	assert.Len(t, block.Results, 5)
	assert.Equal(t, []int64{1, 2}, chipIDs(s.Selection()), "first two results of the first block")

	_, err = s.Search("onboarding")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, chipIDs(s.Selection()), "later blocks do not auto-select")

	blocks := s.Blocks()
	require.Len(t, blocks, 2)
	assert.Equal(t, "onboarding", blocks[0].Query)
}

func TestSession_SearchShortQueryPassesEverything(t *testing.T) {
	s, _, _ := loadedSession(t)

	block, err := s.Search("ab")
	require.NoError(t, err)
	require.Len(t, block.Results, 5)
	for _, r := range block.Results {
		assert.Zero(t, r.Score)
	}
}

func TestSession_SearchEmptyCorpus(t *testing.T) {
	s := NewSession("s-3", new(MockCatalog), new(MockResponder), Options{})
	block, err := s.Search("ab")
	require.NoError(t, err)
	assert.Empty(t, block.Results)
}

func TestSession_ChooseRecommended(t *testing.T) {
	s, _, _ := loadedSession(t)

	assert.Nil(t, s.ChooseRecommended(), "no blocks is a no-op")

	_, err := s.Search("finance")
	require.NoError(t, err)
	require.NoError(t, s.Toggle(2, true))

	got := s.ChooseRecommended()
	assert.Equal(t, []int64{1, 5, 3}, got)
	assert.Equal(t, []int64{1, 5, 3}, chipIDs(s.Selection()), "selection is replaced, not merged")

	_, err = s.Search("archive")
	require.NoError(t, err)
	assert.Empty(t, s.ChooseRecommended(), "only the latest block counts")
	assert.Empty(t, s.Selection())
}

func TestSession_ToggleUnknownCard(t *testing.T) {
	s, _, _ := loadedSession(t)

	assert.ErrorIs(t, s.Toggle(99, true), ErrCardNotFound)
	assert.NoError(t, s.Toggle(99, false))
	assert.ErrorIs(t, s.AddMany([]int64{1, 99}), ErrCardNotFound)
	assert.Empty(t, s.Selection(), "bulk add is all or nothing")
}

func TestSession_MarkAllAndClearAssistant(t *testing.T) {
	s, _, _ := loadedSession(t)
	_, err := s.Search("onboarding")
	require.NoError(t, err)
	_, err = s.Search("archive")
	require.NoError(t, err)

	s.ClearSelection()
	assert.Equal(t, 2, s.MarkAll())
	assert.ElementsMatch(t, []int64{2, 3}, chipIDs(s.Selection()))

	s.ClearAssistant()
	assert.Empty(t, s.Blocks())
	assert.Empty(t, s.Selection())
}

func TestSession_SetVisibility(t *testing.T) {
	s, _, _ := loadedSession(t)
	_, err := s.Search("finance")
	require.NoError(t, err)
	s.SetAssistantFilter(AssistantFilter{Sort: SortTitle})

	s.SetVisibility(VisibilitySelected)
	blocks := s.Blocks()
	require.Len(t, blocks, 1)
	assert.ElementsMatch(t, []int64{1, 2}, ids(blocks[0].Results))

	s.SetVisibility(VisibilityUnselected)
	assert.ElementsMatch(t, []int64{3, 4, 5}, ids(s.Blocks()[0].Results))
	assert.Equal(t, SortTitle, s.State().Filter.Sort, "other filter fields are kept")

	s.SetVisibility("")
	assert.Len(t, s.Blocks()[0].Results, 5)
}

func TestSession_Chips(t *testing.T) {
	s, _, _ := loadedSession(t)
	require.NoError(t, s.Toggle(3, true))

	chips := s.Selection()
	require.Len(t, chips, 1)
	assert.Equal(t, "HR onboarding", chips[0].Title)
	assert.Equal(t, ColorGreen, chips[0].Color)
}

func TestSession_Chat(t *testing.T) {
	s, _, resp := loadedSession(t)
	ctx := context.Background()

	assert.ErrorIs(t, s.SendMessage(ctx, "hello"), ErrEmptySelection)
	assert.Equal(t, ChatNoSelection, s.Chat().State)

	_, err := s.Search("finance")
	require.NoError(t, err)
	assert.Equal(t, ChatReady, s.Chat().State)
	assert.True(t, s.Chat().CanStart)
	assert.Equal(t, "finance", s.Chat().PrechatPrompt)

	reply := &domain.Reply{Answer: "Use the policy.", UsedCards: []domain.CardRef{{ID: 1, Title: "Finance policy", Status: "green"}}}
	resp.On("Reply", ctx, mock.MatchedBy(func(req domain.ReplyRequest) bool {
		return req.Message == "What applies?" && len(req.CardIDs) == 2 && len(req.Cards) == 2
	})).Return(reply, nil).Once()

	snap, err := s.StartChat(ctx, "What applies?")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, snap.IDs)

	view := s.Chat()
	assert.Equal(t, ChatActive, view.State)
	require.Len(t, view.Messages, 3)
	assert.Equal(t, domain.SenderSystem, view.Messages[0].From)
	assert.Equal(t, domain.SenderUser, view.Messages[1].From)
	assert.Equal(t, domain.SenderBot, view.Messages[2].From)
	assert.Equal(t, reply.UsedCards, view.Messages[2].Meta.UsedCards)
	assert.True(t, view.CanSend)

	_, err = s.StartChat(ctx, "again")
	assert.ErrorIs(t, err, ErrNotReady)

	resp.On("Reply", ctx, mock.Anything).Return(nil, errors.New("boom")).Once()
	err = s.SendMessage(ctx, "follow up")
	var collab *CollaboratorError
	require.ErrorAs(t, err, &collab)
	assert.Len(t, s.Chat().Messages, 3, "failed send leaves the transcript untouched")

	resp.AssertExpectations(t)
}

func TestSession_StartChatFailureKeepsSession(t *testing.T) {
	s, _, resp := loadedSession(t)
	ctx := context.Background()
	_, err := s.Search("finance")
	require.NoError(t, err)

	resp.On("Reply", ctx, mock.Anything).Return(nil, errors.New("offline"))

	_, err = s.StartChat(ctx, "hi")
	require.Error(t, err)

	view := s.Chat()
	require.Len(t, view.Messages, 1)
	assert.Equal(t, domain.SenderSystem, view.Messages[0].From)
	assert.Len(t, s.Snapshots(), 1)
}

func TestSession_RestoreSelection(t *testing.T) {
	s, _, resp := loadedSession(t)
	ctx := context.Background()
	_, err := s.Search("finance")
	require.NoError(t, err)

	resp.On("Reply", ctx, mock.Anything).Return(&domain.Reply{Answer: "ok"}, nil)
	snap, err := s.StartChat(ctx, "hi")
	require.NoError(t, err)

	s.ClearSelection()
	require.NoError(t, s.Toggle(4, true))

	require.NoError(t, s.RestoreSelection(snap.ID))
	assert.Equal(t, []int64{1, 2}, chipIDs(s.Selection()))

	assert.ErrorIs(t, s.RestoreSelection("set-0"), ErrSnapshotNotFound)
	assert.Equal(t, []int64{1, 2}, chipIDs(s.Selection()))
}

func TestSession_ClearRestoreChat(t *testing.T) {
	s, _, resp := loadedSession(t)
	ctx := context.Background()
	_, err := s.Search("finance")
	require.NoError(t, err)
	resp.On("Reply", ctx, mock.Anything).Return(&domain.Reply{Answer: "ok"}, nil)
	_, err = s.StartChat(ctx, "hi")
	require.NoError(t, err)

	before := s.Chat().Messages
	s.ClearChat()
	assert.Equal(t, ChatCleared, s.Chat().State)
	assert.True(t, s.RestoreChat())
	assert.Equal(t, before, s.Chat().Messages)
	assert.False(t, s.RestoreChat())
}

func TestSession_HideSources(t *testing.T) {
	s, _, resp := loadedSession(t)
	ctx := context.Background()
	_, err := s.Search("finance")
	require.NoError(t, err)
	resp.On("Reply", ctx, mock.Anything).Return(&domain.Reply{
		Answer:    "ok",
		UsedCards: []domain.CardRef{{ID: 1, Title: "Finance policy"}},
	}, nil)
	_, err = s.StartChat(ctx, "hi")
	require.NoError(t, err)

	s.SetHideSources(true)
	assert.Nil(t, s.Chat().Messages[2].Meta.UsedCards)

	s.SetHideSources(false)
	assert.Len(t, s.Chat().Messages[2].Meta.UsedCards, 1)
}

func TestSession_BusyGuard(t *testing.T) {
	s, _, resp := loadedSession(t)
	ctx := context.Background()
	_, err := s.Search("finance")
	require.NoError(t, err)

	release := make(chan struct{})
	started := make(chan struct{})
	resp.On("Reply", ctx, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(&domain.Reply{Answer: "slow"}, nil).Once()

	done := make(chan error)
	go func() {
		_, err := s.StartChat(ctx, "first")
		done <- err
	}()

	<-started
	assert.ErrorIs(t, s.SendMessage(ctx, "second"), ErrBusy)
	assert.True(t, s.Chat().Busy)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, s.Chat().Busy)
}

func TestSession_SearchBusy(t *testing.T) {
	s, _, _ := loadedSession(t)

	require.NoError(t, s.begin(ActionSearch))
	assert.Contains(t, s.State().Busy, ActionSearch)
	_, err := s.Search("finance")
	assert.ErrorIs(t, err, ErrBusy)
	assert.Empty(t, s.Blocks())

	s.end(ActionSearch)
	_, err = s.Search("finance")
	require.NoError(t, err)
	assert.Empty(t, s.State().Busy)
}

func TestSession_OpenInChat(t *testing.T) {
	s, _, _ := loadedSession(t)
	ctx := context.Background()
	require.NoError(t, s.SetView(ctx, ViewRegistry))

	block, err := s.OpenInChat(4)
	require.NoError(t, err)
	assert.Equal(t, "Finance review", block.Query)
	require.Len(t, block.Results, 1)

	_, full := block.Results[0].Card.Full()
	assert.False(t, full, "open in chat injects the minimal card shape")

	st := s.State()
	assert.Equal(t, ViewChat, st.View)
	assert.Contains(t, chipIDs(st.Selection), int64(4))

	_, err = s.OpenInChat(404)
	assert.ErrorIs(t, err, ErrCardNotFound)
}

func TestSession_RegistryFromCache(t *testing.T) {
	s, _, _ := loadedSession(t)
	ctx := context.Background()

	require.NoError(t, s.SetRegistryPageSize(ctx, 2))
	reg := s.Registry()
	assert.Equal(t, 3, reg.MaxPage)
	assert.Len(t, reg.Rows, 2)

	require.NoError(t, s.NextPage(ctx))
	require.NoError(t, s.NextPage(ctx))
	assert.ErrorIs(t, s.NextPage(ctx), ErrPageOutOfRange)
	assert.Equal(t, 3, s.Registry().Page)

	require.NoError(t, s.ApplyRegistry(ctx, RegistryFilter{OnlyMine: true}))
	reg = s.Registry()
	assert.Equal(t, 1, reg.Page)
	assert.Equal(t, 2, reg.Total)

	s.SetCurrentUser(11)
	require.NoError(t, s.ApplyRegistry(ctx, RegistryFilter{OnlyMine: true}))
	assert.Equal(t, 3, s.Registry().Total)
}

func TestSession_RegistryFromFeed(t *testing.T) {
	s, cat, _ := newTestSession(t, RegistryFromFeed)
	ctx := context.Background()

	cat.On("Feed", ctx, domain.FeedQuery{Page: 1, PageSize: 10}).
		Return(&domain.FeedPage{Items: testCards(), Total: 5}, nil).Once()
	require.NoError(t, s.Load(ctx))
	assert.Equal(t, 5, s.Registry().Total)

	cat.On("Feed", ctx, domain.FeedQuery{Page: 1, PageSize: 10, Status: "active"}).
		Return(nil, errors.New("feed down")).Once()
	err := s.ApplyRegistry(ctx, RegistryFilter{Status: "active"})

	var collab *CollaboratorError
	require.ErrorAs(t, err, &collab)
	reg := s.Registry()
	assert.Empty(t, reg.Filter.Status, "failed apply keeps the previous filter")
	assert.Equal(t, 5, reg.Total)

	cat.AssertExpectations(t)
}

func TestSession_RegistryFeedKeepsConcurrentMode(t *testing.T) {
	s, cat, _ := newTestSession(t, RegistryFromFeed)
	ctx := context.Background()

	cat.On("Feed", ctx, domain.FeedQuery{Page: 1, PageSize: 10}).
		Return(&domain.FeedPage{Items: testCards(), Total: 5}, nil).Once()
	require.NoError(t, s.Load(ctx))

	fetching := make(chan struct{})
	release := make(chan struct{})
	cat.On("Feed", ctx, domain.FeedQuery{Page: 1, PageSize: 10, Status: "active"}).
		Run(func(mock.Arguments) {
			close(fetching)
			<-release
		}).
		Return(&domain.FeedPage{Items: testCards()[2:3], Total: 1}, nil).Once()

	done := make(chan error, 1)
	go func() {
		done <- s.ApplyRegistry(ctx, RegistryFilter{Status: "active"})
	}()

	<-fetching
	s.SetRegistryMode(ModeCompact)
	s.ToggleRegistrySelected(4, true)
	assert.Equal(t, ModeCompact, s.Registry().Mode)
	close(release)
	require.NoError(t, <-done)

	reg := s.Registry()
	assert.Equal(t, ModeCompact, reg.Mode, "mode set during the fetch survives the commit")
	assert.Equal(t, []int64{4}, reg.Selected)
	assert.Equal(t, "active", reg.Filter.Status)
	assert.Equal(t, 1, reg.Total)
	cat.AssertExpectations(t)
}

func TestSession_CreateCard(t *testing.T) {
	s, cat, _ := loadedSession(t)
	ctx := context.Background()

	_, err := s.CreateCard(ctx, domain.CardCreate{Title: "  ", Content: "body"})
	assert.ErrorIs(t, err, ErrValidation)
	cat.AssertNotCalled(t, "CreateCard", mock.Anything, mock.Anything)

	in := domain.CardCreate{Title: "New card", Content: "new finance content"}
	expected := in
	expected.Normalize()
	cat.On("CreateCard", ctx, expected).Return(&domain.Card{ID: 6, Title: "New card", Content: "new finance content", Status: "draft"}, nil)

	card, err := s.CreateCard(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, int64(6), card.ID)
	assert.Equal(t, 6, s.State().Cards)
	assert.Equal(t, 6, s.Registry().Total)

	require.NoError(t, s.Toggle(6, true))
}

func TestSession_CardDetail(t *testing.T) {
	s, cat, _ := loadedSession(t)
	ctx := context.Background()

	cat.On("GetCardFull", ctx, int64(1)).Return(&domain.CardFull{Card: testCards()[0]}, nil)
	cat.On("GetCardFull", ctx, int64(2)).Return(nil, errors.New("not found"))

	full, err := s.CardDetail(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Finance policy", full.Card.Title)

	_, err = s.CardDetail(ctx, 2)
	var collab *CollaboratorError
	assert.ErrorAs(t, err, &collab)
}

func chipIDs(chips []Chip) []int64 {
	out := make([]int64, len(chips))
	for i, c := range chips {
		out[i] = c.ID
	}
	return out
}
