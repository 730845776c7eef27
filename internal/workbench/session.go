package workbench

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Rrens/card-workbench/internal/domain"
	"github.com/rs/zerolog/log"
)

// Catalog is the card API consumed by a session
type Catalog interface {
	ListDomains(ctx context.Context) ([]domain.Domain, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	ListCards(ctx context.Context) ([]domain.Card, error)
	Feed(ctx context.Context, q domain.FeedQuery) (*domain.FeedPage, error)
	GetCardFull(ctx context.Context, id int64) (*domain.CardFull, error)
	CreateCard(ctx context.Context, in domain.CardCreate) (*domain.Card, error)
}

// Responder produces grounded chat replies
type Responder interface {
	Reply(ctx context.Context, req domain.ReplyRequest) (*domain.Reply, error)
}

// View is the active workbench view
type View string

const (
	ViewChat     View = "chat"
	ViewRegistry View = "registry"
)

// Action names a network-bound user action guarded against double submit
type Action string

const (
	ActionLoad       Action = "load"
	ActionSearch     Action = "search"
	ActionChat       Action = "chat"
	ActionCreateCard Action = "create_card"
	ActionRegistry   Action = "registry"
)

// RegistrySource selects where registry rows come from
type RegistrySource string

const (
	RegistryFromCache RegistrySource = "cache"
	RegistryFromFeed  RegistrySource = "feed"
)

// Options tune a session
type Options struct {
	PageSize         int
	QuickStartCount  int
	RecommendedCount int
	RegistrySource   RegistrySource
	Clock            func() time.Time
}

func (o Options) withDefaults() Options {
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	if o.QuickStartCount <= 0 {
		o.QuickStartCount = 2
	}
	if o.RecommendedCount <= 0 {
		o.RecommendedCount = 3
	}
	if o.RegistrySource == "" {
		o.RegistrySource = RegistryFromCache
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	return o
}

// Session is the state of one workbench: the card cache, the search log,
// the selection, the chat and the registry. Every operation runs under the
// session lock; network calls release it and apply their result afterwards.
type Session struct {
	ID string

	mu        sync.Mutex
	catalog   Catalog
	responder Responder
	opts      Options

	userID     int64
	domains    []domain.Domain
	users      []domain.User
	cards      []*domain.Card
	index      map[int64]*domain.Card
	injected   map[int64]domain.CardRef
	loadErrors []string

	blocks    SearchBlockLog
	selection *SelectionSet
	filter    AssistantFilter
	chat      ChatSessionManager
	registry  *RegistryView
	view      View

	busy       map[Action]bool
	lastActive time.Time
}

// NewSession creates an empty session. Call Load to fill the card cache.
func NewSession(id string, catalog Catalog, responder Responder, opts Options) *Session {
	opts = opts.withDefaults()
	return &Session{
		ID:         id,
		catalog:    catalog,
		responder:  responder,
		opts:       opts,
		index:      make(map[int64]*domain.Card),
		injected:   make(map[int64]domain.CardRef),
		selection:  NewSelectionSet(),
		filter:     DefaultAssistantFilter(),
		registry:   NewRegistryView(opts.PageSize),
		view:       ViewChat,
		busy:       make(map[Action]bool),
		lastActive: opts.Clock(),
	}
}

// LastActive is the time of the last operation
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// SetCurrentUser fixes the user "only mine" compares against
func (s *Session) SetCurrentUser(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = id
	s.touch()
}

func (s *Session) touch() {
	s.lastActive = s.opts.Clock()
}

// currentUser falls back to the first known user; 0 when none resolves
func (s *Session) currentUser() int64 {
	if s.userID != 0 {
		return s.userID
	}
	if len(s.users) > 0 {
		return s.users[0].ID
	}
	return 0
}

func (s *Session) begin(a Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy[a] {
		return fmt.Errorf("%s: %w", a, ErrBusy)
	}
	s.busy[a] = true
	return nil
}

func (s *Session) end(a Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.busy, a)
}

// Load fetches domains, users and the card corpus. Each failed call is
// reported in the joined error while the others still apply.
func (s *Session) Load(ctx context.Context) error {
	if err := s.begin(ActionLoad); err != nil {
		return err
	}
	defer s.end(ActionLoad)

	var errs []error
	domains, err := s.catalog.ListDomains(ctx)
	if err != nil {
		errs = append(errs, &CollaboratorError{Op: "list domains", Err: err})
	}
	users, err := s.catalog.ListUsers(ctx)
	if err != nil {
		errs = append(errs, &CollaboratorError{Op: "list users", Err: err})
	}
	cards, cardsErr := s.catalog.ListCards(ctx)
	if cardsErr != nil {
		errs = append(errs, &CollaboratorError{Op: "list cards", Err: cardsErr})
	}

	s.mu.Lock()
	if domains != nil {
		s.domains = domains
	}
	if users != nil {
		s.users = users
	}
	if cardsErr == nil {
		s.setCorpus(cards)
	}
	s.loadErrors = s.loadErrors[:0]
	for _, e := range errs {
		s.loadErrors = append(s.loadErrors, e.Error())
	}
	s.touch()
	s.mu.Unlock()

	if err := s.updateRegistry(ctx, nil); err != nil {
		errs = append(errs, err)
	}

	log.Debug().
		Str("session_id", s.ID).
		Int("cards", len(cards)).
		Int("errors", len(errs)).
		Msg("workbench session loaded")

	return errors.Join(errs...)
}

func (s *Session) setCorpus(cards []domain.Card) {
	s.cards = make([]*domain.Card, 0, len(cards))
	s.index = make(map[int64]*domain.Card, len(cards))
	for i := range cards {
		s.appendCard(cards[i])
	}
}

// appendCard adds a card to the cache, filling the denormalised domain
// code and owner name from the reference lists.
func (s *Session) appendCard(c domain.Card) *domain.Card {
	if c.DomainCode == "" && c.DomainID != 0 {
		for _, d := range s.domains {
			if d.ID == c.DomainID {
				c.DomainCode = d.Code
				break
			}
		}
	}
	if c.OwnerName == "" && c.OwnerID != 0 {
		c.OwnerName = s.userName(c.OwnerID)
	}
	if c.ReviewerName == "" && c.ReviewerID != 0 {
		c.ReviewerName = s.userName(c.ReviewerID)
	}
	card := &c
	s.cards = append(s.cards, card)
	s.index[card.ID] = card
	return card
}

func (s *Session) userName(id int64) string {
	for _, u := range s.users {
		if u.ID == id {
			return u.Name
		}
	}
	return ""
}

func (s *Session) corpus() []domain.CardShape {
	shapes := make([]domain.CardShape, len(s.cards))
	for i, c := range s.cards {
		shapes[i] = c
	}
	return shapes
}

// resolve finds a card by id: the cache first, then injected references
func (s *Session) resolve(id int64) (domain.CardShape, bool) {
	if c, ok := s.index[id]; ok {
		return c, true
	}
	if r, ok := s.injected[id]; ok {
		return r, true
	}
	return nil, false
}

// Search scores the whole cached corpus and records a new block
func (s *Session) Search(query string) (domain.SearchBlock, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.SearchBlock{}, ErrEmptyQuery
	}
	if err := s.begin(ActionSearch); err != nil {
		return domain.SearchBlock{}, err
	}
	defer s.end(ActionSearch)

	s.mu.Lock()
	defer s.mu.Unlock()

	terms := Tokenize(query)
	block := s.addBlock(query, ScoreCorpus(s.corpus(), terms))

	log.Debug().
		Str("session_id", s.ID).
		Str("query", query).
		Int("terms", len(terms)).
		Int("results", len(block.Results)).
		Int("selected", s.selection.Len()).
		Msg("search block added")

	return block, nil
}

// addBlock records a block. The first block of a session that has not
// started chatting seeds the selection with its leading results.
func (s *Session) addBlock(query string, results []domain.ScoredCard) domain.SearchBlock {
	first := s.blocks.Len() == 0
	block := s.blocks.Add(query, results, s.opts.Clock())
	if first && !s.chat.Started() {
		s.selection.AddMany(leadingIDs(block.Results, s.opts.QuickStartCount))
	}
	s.touch()
	return block
}

// Blocks returns every block through the assistant filter, newest first
func (s *Session) Blocks() []BlockView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blocks.View(s.filter, s.selection)
}

// SetAssistantFilter replaces the assistant filter
func (s *Session) SetAssistantFilter(f AssistantFilter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = f.normalized()
	s.touch()
}

// SetVisibility changes only the visibility mode
func (s *Session) SetVisibility(v Visibility) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter.Visibility = v
	s.filter = s.filter.normalized()
	s.touch()
}

// ClearAssistant drops every search block and the selection
func (s *Session) ClearAssistant() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks.Reset()
	s.selection.Clear()
	s.touch()
}

// Toggle includes or excludes one card. Only known cards can be included.
func (s *Session) Toggle(id int64, included bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if included {
		if _, ok := s.resolve(id); !ok {
			return fmt.Errorf("card %d: %w", id, ErrCardNotFound)
		}
	}
	s.selection.Toggle(id, included)
	s.touch()
	return nil
}

// AddMany includes several cards at once. Nothing is added if any id is unknown.
func (s *Session) AddMany(ids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if _, ok := s.resolve(id); !ok {
			return fmt.Errorf("card %d: %w", id, ErrCardNotFound)
		}
	}
	s.selection.AddMany(ids)
	s.touch()
	return nil
}

// MarkAll selects every result of every block
func (s *Session) MarkAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.selection.AddMany(s.blocks.ResultIDs())
}

// ClearSelection empties the selection
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection.Clear()
	s.touch()
}

// ChooseRecommended replaces the selection with the best green cards of
// the latest block. It is a no-op without blocks.
func (s *Session) ChooseRecommended() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	latest, ok := s.blocks.Latest()
	if !ok {
		return nil
	}
	ids := topByRelevance(latest.Results, s.opts.RecommendedCount, func(sc domain.ScoredCard) bool {
		return isRecommendable(sc.Card.Ref().Status)
	})
	s.selection.Replace(ids)
	s.touch()
	return ids
}

// RestoreSelection replaces the selection with a stored snapshot
func (s *Session) RestoreSelection(snapshotID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.chat.Snapshot(snapshotID)
	if !ok {
		return fmt.Errorf("%s: %w", snapshotID, ErrSnapshotNotFound)
	}
	s.selection.Replace(snap.IDs)
	s.touch()
	return nil
}

// Chip is one selected card as rendered in the selection summary
type Chip struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
	Color  Color  `json:"color"`
}

const chipTitleLimit = 32

// Selection enumerates the selection in insertion order
func (s *Session) Selection() []Chip {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chips()
}

func (s *Session) chips() []Chip {
	ids := s.selection.IDs()
	chips := make([]Chip, 0, len(ids))
	for _, id := range ids {
		chip := Chip{ID: id, Title: fmt.Sprintf("Card %d", id)}
		if c, ok := s.resolve(id); ok {
			ref := c.Ref()
			chip.Title = ref.Title
			chip.Status = ref.Status
		}
		if r := []rune(chip.Title); len(r) > chipTitleLimit {
			chip.Title = string(r[:chipTitleLimit]) + "…"
		}
		chip.Color = ColorOf(chip.Status)
		chips = append(chips, chip)
	}
	return chips
}

// StartChat snapshots the selection, marks the session started and sends
// the opening message. A failed send leaves the session started.
func (s *Session) StartChat(ctx context.Context, opening string) (domain.ChatSnapshot, error) {
	opening = strings.TrimSpace(opening)
	if opening == "" {
		return domain.ChatSnapshot{}, ErrEmptyMessage
	}
	if err := s.begin(ActionChat); err != nil {
		return domain.ChatSnapshot{}, err
	}
	defer s.end(ActionChat)

	s.mu.Lock()
	snap, err := s.chat.Start(s.selection.IDs(), s.opts.Clock())
	s.touch()
	s.mu.Unlock()
	if err != nil {
		return domain.ChatSnapshot{}, err
	}

	log.Debug().
		Str("session_id", s.ID).
		Str("snapshot_id", snap.ID).
		Int("selected", len(snap.IDs)).
		Msg("chat session started")

	return snap, s.send(ctx, opening)
}

// SendMessage sends one user turn grounded on the current selection
func (s *Session) SendMessage(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}
	if err := s.begin(ActionChat); err != nil {
		return err
	}
	defer s.end(ActionChat)
	return s.send(ctx, text)
}

// send requires the chat action to be held. Messages are only appended
// once the responder succeeds.
func (s *Session) send(ctx context.Context, text string) error {
	s.mu.Lock()
	if s.selection.Len() == 0 {
		s.mu.Unlock()
		return ErrEmptySelection
	}
	req := domain.ReplyRequest{Message: text, CardIDs: s.selection.IDs(), History: s.chat.Messages()}
	for _, id := range req.CardIDs {
		if c, ok := s.resolve(id); ok {
			req.Cards = append(req.Cards, c)
		}
	}
	s.mu.Unlock()

	reply, err := s.responder.Reply(ctx, req)
	if err != nil {
		return &CollaboratorError{Op: "chat reply", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.chat.RecordExchange(text, reply, s.opts.Clock())
	s.touch()
	return nil
}

// ClearChat moves the transcript into the previous-chat buffer
func (s *Session) ClearChat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chat.Clear()
	s.touch()
}

// RestoreChat brings back the previous transcript, if any
func (s *Session) RestoreChat() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.chat.Restore()
}

// ExportChat renders the transcript as text
func (s *Session) ExportChat() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chat.Export()
}

// CopyMessage returns one message's text for the clipboard
func (s *Session) CopyMessage(index int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chat.CopyText(index)
}

// SetHideSources toggles citation display
func (s *Session) SetHideSources(hide bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chat.SetHideSources(hide)
	s.touch()
}

// Snapshots returns the snapshot history
func (s *Session) Snapshots() []domain.ChatSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chat.Snapshots()
}

// ChatView is the derived chat state
type ChatView struct {
	State         ChatState            `json:"state"`
	Messages      []domain.ChatMessage `json:"messages"`
	HideSources   bool                 `json:"hide_sources"`
	CanStart      bool                 `json:"can_start"`
	CanSend       bool                 `json:"can_send"`
	CanRestore    bool                 `json:"can_restore"`
	ActiveSetID   string               `json:"active_set_id,omitempty"`
	PrechatPrompt string               `json:"prechat_prompt,omitempty"`
	Busy          bool                 `json:"busy"`
}

// Chat returns the chat view
func (s *Session) Chat() ChatView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chatView()
}

func (s *Session) chatView() ChatView {
	selected := s.selection.Len()
	v := ChatView{
		State:       s.chat.State(selected),
		Messages:    s.chat.Messages(),
		HideSources: s.chat.HideSources(),
		CanStart:    selected > 0 && s.chat.Len() == 0,
		CanSend:     selected > 0 && s.chat.Len() > 0,
		CanRestore:  s.chat.CanRestore(),
		ActiveSetID: s.chat.ActiveSetID(),
		Busy:        s.busy[ActionChat],
	}
	if latest, ok := s.blocks.Latest(); ok {
		v.PrechatPrompt = latest.Query
	}
	if v.HideSources {
		for i := range v.Messages {
			if m := v.Messages[i].Meta; m != nil {
				m.UsedCards = nil
			}
		}
	}
	return v
}

// CardRow is a registry row with its status presentation
type CardRow struct {
	*domain.Card
	Color       Color    `json:"color"`
	StatusLabel string   `json:"status_label"`
	TagList     []string `json:"tag_list,omitempty"`
}

// RegistryState is the derived registry view
type RegistryState struct {
	Filter   RegistryFilter   `json:"filter"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Total    int              `json:"total"`
	Narrowed int              `json:"narrowed"`
	MaxPage  int              `json:"max_page"`
	CanNext  bool             `json:"can_next"`
	CanPrev  bool             `json:"can_prev"`
	Mode     PresentationMode `json:"mode"`
	Source   RegistrySource   `json:"source"`
	Rows     []CardRow        `json:"rows"`
	Selected []int64          `json:"selected"`
}

// Registry returns the registry view
func (s *Session) Registry() RegistryState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registryState()
}

func (s *Session) registryState() RegistryState {
	v := s.registry
	rows := make([]CardRow, 0, len(v.Rows()))
	for _, c := range v.Rows() {
		rows = append(rows, CardRow{
			Card:        c,
			Color:       ColorOf(c.Status),
			StatusLabel: LabelOf(c.Status),
			TagList:     c.TagList(),
		})
	}
	return RegistryState{
		Filter:   v.Filter,
		Page:     v.Page,
		PageSize: v.PageSize,
		Total:    v.Total,
		Narrowed: v.Narrowed,
		MaxPage:  v.MaxPage(),
		CanNext:  v.CanNext(),
		CanPrev:  v.CanPrev(),
		Mode:     v.Mode,
		Source:   s.opts.RegistrySource,
		Rows:     rows,
		Selected: v.SelectedIDs(),
	}
}

// updateRegistry mutates a copy of the registry state, recomputes it and
// commits only when the recompute succeeds. The feed source releases the
// lock while the page is fetched, so only the recomputed fields are
// committed and mode or checkbox changes made meanwhile survive.
func (s *Session) updateRegistry(ctx context.Context, mutate func(v *RegistryView) error) error {
	if err := s.begin(ActionRegistry); err != nil {
		return err
	}
	defer s.end(ActionRegistry)

	s.mu.Lock()
	next := *s.registry
	if mutate != nil {
		if err := mutate(&next); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	user := s.currentUser()
	if s.opts.RegistrySource != RegistryFromFeed {
		next.Recompute(s.cards, user)
		s.registry.commit(&next)
		s.touch()
		s.mu.Unlock()
		return nil
	}
	q := domain.FeedQuery{
		Page:     next.Page,
		PageSize: next.PageSize,
		DomainID: next.Filter.DomainID,
		Status:   next.Filter.Status,
		Search:   next.Filter.Search,
	}
	s.mu.Unlock()

	page, err := s.catalog.Feed(ctx, q)
	if err != nil {
		return &CollaboratorError{Op: "registry feed", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next.RecomputeFeed(page, user)
	s.registry.commit(&next)
	s.touch()
	return nil
}

// ApplyRegistry replaces the registry filter and returns to page 1
func (s *Session) ApplyRegistry(ctx context.Context, f RegistryFilter) error {
	return s.updateRegistry(ctx, func(v *RegistryView) error {
		v.Apply(f)
		return nil
	})
}

// SetRegistryPageSize changes the page size and returns to page 1
func (s *Session) SetRegistryPageSize(ctx context.Context, n int) error {
	return s.updateRegistry(ctx, func(v *RegistryView) error {
		return v.SetPageSize(n)
	})
}

// NextPage moves the registry forward one page
func (s *Session) NextPage(ctx context.Context) error {
	return s.updateRegistry(ctx, func(v *RegistryView) error {
		return v.Next()
	})
}

// PrevPage moves the registry back one page
func (s *Session) PrevPage(ctx context.Context) error {
	return s.updateRegistry(ctx, func(v *RegistryView) error {
		return v.Prev()
	})
}

// SetRegistryMode switches the registry layout
func (s *Session) SetRegistryMode(mode PresentationMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry.Mode = mode
	s.touch()
}

// ToggleRegistrySelected marks a registry row checkbox
func (s *Session) ToggleRegistrySelected(id int64, checked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry.ToggleSelected(id, checked)
	s.touch()
}

// OpenInChat turns a registry row into a one-card search block, selects
// the card and switches to the chat view.
func (s *Session) OpenInChat(id int64) (domain.SearchBlock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	card, ok := s.registry.Row(id)
	if !ok {
		card, ok = s.index[id]
	}
	if !ok {
		return domain.SearchBlock{}, fmt.Errorf("card %d: %w", id, ErrCardNotFound)
	}

	ref := card.Ref()
	if _, cached := s.index[id]; !cached {
		s.injected[id] = ref
	}
	block := s.addBlock(ref.Title, []domain.ScoredCard{{Card: ref}})
	s.selection.Toggle(id, true)
	s.view = ViewChat

	log.Debug().
		Str("session_id", s.ID).
		Int64("card_id", id).
		Msg("registry row opened in chat")

	return block, nil
}

// SetView switches the active view; the registry is recomputed on entry
func (s *Session) SetView(ctx context.Context, v View) error {
	s.mu.Lock()
	s.view = v
	s.touch()
	s.mu.Unlock()
	if v == ViewRegistry {
		return s.updateRegistry(ctx, nil)
	}
	return nil
}

// CreateCard validates and creates a card, appends it to the cache and
// refreshes the registry.
func (s *Session) CreateCard(ctx context.Context, in domain.CardCreate) (*domain.Card, error) {
	in.Normalize()
	if in.Title == "" || in.Content == "" {
		return nil, fmt.Errorf("%w: title and content are required", ErrValidation)
	}
	if err := s.begin(ActionCreateCard); err != nil {
		return nil, err
	}
	defer s.end(ActionCreateCard)

	created, err := s.catalog.CreateCard(ctx, in)
	if err != nil {
		return nil, &CollaboratorError{Op: "create card", Err: err}
	}

	s.mu.Lock()
	card := s.appendCard(*created)
	delete(s.injected, card.ID)
	s.touch()
	s.mu.Unlock()

	if err := s.updateRegistry(ctx, nil); err != nil {
		log.Warn().Err(err).Str("session_id", s.ID).Msg("registry refresh after card creation failed")
	}
	return card, nil
}

// CardDetail fetches the detail view of a card
func (s *Session) CardDetail(ctx context.Context, id int64) (*domain.CardFull, error) {
	full, err := s.catalog.GetCardFull(ctx, id)
	if err != nil {
		return nil, &CollaboratorError{Op: "card detail", Err: err}
	}
	return full, nil
}

// State is the full derived state of a session
type State struct {
	ID          string          `json:"id"`
	View        View            `json:"view"`
	CurrentUser int64           `json:"current_user,omitempty"`
	Cards       int             `json:"cards"`
	Domains     []domain.Domain `json:"domains"`
	Users       []domain.User   `json:"users"`
	Filter      AssistantFilter `json:"assistant_filter"`
	Blocks      []BlockView     `json:"blocks"`
	Selection   []Chip          `json:"selection"`
	Chat        ChatView        `json:"chat"`
	Registry    RegistryState   `json:"registry"`
	Busy        []Action        `json:"busy,omitempty"`
	LoadErrors  []string        `json:"load_errors,omitempty"`
}

// State returns every derived view at once
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		ID:          s.ID,
		View:        s.view,
		CurrentUser: s.currentUser(),
		Cards:       len(s.cards),
		Domains:     s.domains,
		Users:       s.users,
		Filter:      s.filter,
		Blocks:      s.blocks.View(s.filter, s.selection),
		Selection:   s.chips(),
		Chat:        s.chatView(),
		Registry:    s.registryState(),
		LoadErrors:  append([]string(nil), s.loadErrors...),
	}
	for _, a := range []Action{ActionLoad, ActionSearch, ActionChat, ActionCreateCard, ActionRegistry} {
		if s.busy[a] {
			st.Busy = append(st.Busy, a)
		}
	}
	return st
}
