package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Rrens/card-workbench/internal/catalog"
	"github.com/Rrens/card-workbench/internal/domain"
)

const (
	colCards    = "cards"
	colDomains  = "domains"
	colUsers    = "users"
	colSources  = "sources"
	colEvents   = "events"
	colCounters = "counters"
)

type cardDoc struct {
	ID          int64      `bson:"_id"`
	Title       string     `bson:"title"`
	Description string     `bson:"description"`
	Content     string     `bson:"content,omitempty"`
	Status      string     `bson:"status"`
	Tags        string     `bson:"tags,omitempty"`
	DomainID    *int64     `bson:"domain_id,omitempty"`
	OwnerID     *int64     `bson:"owner_id,omitempty"`
	ReviewerID  *int64     `bson:"reviewer_id,omitempty"`
	CreatedAt   *time.Time `bson:"created_at,omitempty"`
	UpdatedAt   *time.Time `bson:"updated_at,omitempty"`
}

type domainDoc struct {
	ID          int64  `bson:"_id"`
	Code        string `bson:"code"`
	Name        string `bson:"name"`
	Description string `bson:"description,omitempty"`
}

type userDoc struct {
	ID        int64      `bson:"_id"`
	Email     string     `bson:"email"`
	Name      string     `bson:"name"`
	Role      string     `bson:"role"`
	CreatedAt *time.Time `bson:"created_at,omitempty"`
}

type sourceDoc struct {
	ID       int64  `bson:"_id"`
	DomainID int64  `bson:"domain_id"`
	Title    string `bson:"title"`
	Type     string `bson:"type"`
	URI      string `bson:"uri"`
	IsActive bool   `bson:"is_active"`
}

type eventDoc struct {
	ID        int64      `bson:"_id"`
	CardID    int64      `bson:"card_id"`
	UserID    int64      `bson:"user_id,omitempty"`
	EventType string     `bson:"event_type"`
	Payload   string     `bson:"payload,omitempty"`
	CreatedAt *time.Time `bson:"created_at,omitempty"`
}

// lookups holds the reference data joined onto card documents
type lookups struct {
	domains     map[int64]domainDoc
	users       map[int64]userDoc
	sourceCount map[int64]int
	lastEvent   map[int64]time.Time
}

func (l lookups) card(d cardDoc) domain.Card {
	c := domain.Card{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Content:     d.Content,
		Status:      d.Status,
		Tags:        d.Tags,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if d.DomainID != nil {
		c.DomainID = *d.DomainID
		c.DomainCode = l.domains[c.DomainID].Code
		c.SourceCount = l.sourceCount[c.DomainID]
	}
	if d.OwnerID != nil {
		c.OwnerID = *d.OwnerID
		c.OwnerName = l.users[c.OwnerID].Name
	}
	if d.ReviewerID != nil {
		c.ReviewerID = *d.ReviewerID
		c.ReviewerName = l.users[c.ReviewerID].Name
	}
	if t, ok := l.lastEvent[d.ID]; ok {
		c.LastEventAt = &t
	}
	return c
}

// Source implements catalog.Source for a MongoDB catalog
type Source struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewSource creates a new MongoDB source
func NewSource() catalog.Source {
	return &Source{}
}

// Driver returns the backend identifier
func (s *Source) Driver() string {
	return "mongodb"
}

// URI builds the connection string
func URI(config catalog.ConnectionConfig) string {
	if config.Username != "" && config.Password != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%d", config.Username, config.Password, config.Host, config.Port)
	}
	return fmt.Sprintf("mongodb://%s:%d", config.Host, config.Port)
}

// Connect establishes connection to MongoDB
func (s *Source) Connect(ctx context.Context, config catalog.ConnectionConfig) error {
	if config.Database == "" {
		return fmt.Errorf("database name is required")
	}

	clientOpts := options.Client().ApplyURI(URI(config))
	if config.Timeout > 0 {
		clientOpts.SetConnectTimeout(config.Timeout)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return fmt.Errorf("failed to ping: %w", err)
	}

	s.client = client
	s.db = client.Database(config.Database)
	return nil
}

// Close disconnects the client
func (s *Source) Close() error {
	if s.client != nil {
		err := s.client.Disconnect(context.Background())
		s.client, s.db = nil, nil
		return err
	}
	return nil
}

// HealthCheck verifies connection is alive
func (s *Source) HealthCheck(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("not connected")
	}
	return s.client.Ping(ctx, nil)
}

func findAll[T any](ctx context.Context, col *mongo.Collection, filter any, opts ...*options.FindOptions) ([]T, error) {
	cur, err := col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	items := []T{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ListDomains returns every domain
func (s *Source) ListDomains(ctx context.Context) ([]domain.Domain, error) {
	if s.db == nil {
		return nil, fmt.Errorf("not connected")
	}
	docs, err := findAll[domainDoc](ctx, s.db.Collection(colDomains), bson.D{}, options.Find().SetSort(bson.D{{Key: "code", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	domains := make([]domain.Domain, 0, len(docs))
	for _, d := range docs {
		domains = append(domains, domain.Domain{ID: d.ID, Code: d.Code, Name: d.Name, Description: d.Description})
	}
	return domains, nil
}

// ListUsers returns every user
func (s *Source) ListUsers(ctx context.Context) ([]domain.User, error) {
	if s.db == nil {
		return nil, fmt.Errorf("not connected")
	}
	docs, err := findAll[userDoc](ctx, s.db.Collection(colUsers), bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	users := make([]domain.User, 0, len(docs))
	for _, u := range docs {
		users = append(users, domain.User{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role, CreatedAt: u.CreatedAt})
	}
	return users, nil
}

func (s *Source) loadLookups(ctx context.Context) (lookups, error) {
	l := lookups{
		domains:     map[int64]domainDoc{},
		users:       map[int64]userDoc{},
		sourceCount: map[int64]int{},
		lastEvent:   map[int64]time.Time{},
	}

	domains, err := findAll[domainDoc](ctx, s.db.Collection(colDomains), bson.D{})
	if err != nil {
		return l, fmt.Errorf("failed to load domains: %w", err)
	}
	for _, d := range domains {
		l.domains[d.ID] = d
	}

	users, err := findAll[userDoc](ctx, s.db.Collection(colUsers), bson.D{})
	if err != nil {
		return l, fmt.Errorf("failed to load users: %w", err)
	}
	for _, u := range users {
		l.users[u.ID] = u
	}

	var counts []struct {
		DomainID int64 `bson:"_id"`
		Count    int   `bson:"count"`
	}
	cur, err := s.db.Collection(colSources).Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "is_active", Value: true}}}},
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$domain_id"}, {Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}}}}},
	})
	if err != nil {
		return l, fmt.Errorf("failed to count sources: %w", err)
	}
	if err := cur.All(ctx, &counts); err != nil {
		return l, fmt.Errorf("failed to count sources: %w", err)
	}
	for _, c := range counts {
		l.sourceCount[c.DomainID] = c.Count
	}

	var last []struct {
		CardID int64     `bson:"_id"`
		Last   time.Time `bson:"last"`
	}
	cur, err = s.db.Collection(colEvents).Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$card_id"}, {Key: "last", Value: bson.D{{Key: "$max", Value: "$created_at"}}}}}},
	})
	if err != nil {
		return l, fmt.Errorf("failed to read events: %w", err)
	}
	if err := cur.All(ctx, &last); err != nil {
		return l, fmt.Errorf("failed to read events: %w", err)
	}
	for _, e := range last {
		l.lastEvent[e.CardID] = e.Last.UTC()
	}
	return l, nil
}

func (s *Source) cards(ctx context.Context, filter bson.D, opts ...*options.FindOptions) ([]domain.Card, error) {
	docs, err := findAll[cardDoc](ctx, s.db.Collection(colCards), filter, opts...)
	if err != nil {
		return nil, err
	}
	l, err := s.loadLookups(ctx)
	if err != nil {
		return nil, err
	}
	cards := make([]domain.Card, 0, len(docs))
	for _, d := range docs {
		cards = append(cards, l.card(d))
	}
	return cards, nil
}

// ListCards returns the full card corpus
func (s *Source) ListCards(ctx context.Context) ([]domain.Card, error) {
	if s.db == nil {
		return nil, fmt.Errorf("not connected")
	}
	cards, err := s.cards(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	return cards, nil
}

// FeedFilter translates the feed query into a card filter
func FeedFilter(q domain.FeedQuery) bson.D {
	filter := bson.D{}
	if q.DomainID != 0 {
		filter = append(filter, bson.E{Key: "domain_id", Value: q.DomainID})
	}
	if q.Status != "" {
		filter = append(filter, bson.E{Key: "status", Value: q.Status})
	}
	if term := strings.TrimSpace(q.Search); term != "" {
		pattern := bson.D{{Key: "$regex", Value: regexp.QuoteMeta(term)}, {Key: "$options", Value: "i"}}
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "title", Value: pattern}},
			bson.D{{Key: "description", Value: pattern}},
		}})
	}
	return filter
}

// Feed returns one server-side filtered page of cards
func (s *Source) Feed(ctx context.Context, q domain.FeedQuery) (*domain.FeedPage, error) {
	if s.db == nil {
		return nil, fmt.Errorf("not connected")
	}
	filter := FeedFilter(q)

	total, err := s.db.Collection(colCards).CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count feed: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(q.Offset())).
		SetLimit(int64(q.PageSize))
	cards, err := s.cards(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed: %w", err)
	}
	return &domain.FeedPage{Items: cards, Total: int(total), Page: q.Page, PageSize: q.PageSize}, nil
}

// GetCardFull returns the card detail view
func (s *Source) GetCardFull(ctx context.Context, id int64) (*domain.CardFull, error) {
	if s.db == nil {
		return nil, fmt.Errorf("not connected")
	}
	cards, err := s.cards(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("card %d: %w", id, catalog.ErrNotFound)
	}
	full := &domain.CardFull{Card: cards[0], Sources: []domain.Source{}, Events: []domain.Event{}}

	if full.Card.DomainID != 0 {
		var d domainDoc
		err := s.db.Collection(colDomains).FindOne(ctx, bson.D{{Key: "_id", Value: full.Card.DomainID}}).Decode(&d)
		switch {
		case err == nil:
			full.Domain = &domain.Domain{ID: d.ID, Code: d.Code, Name: d.Name, Description: d.Description}
		case !errors.Is(err, mongo.ErrNoDocuments):
			return nil, fmt.Errorf("failed to get domain: %w", err)
		}

		sources, err := findAll[sourceDoc](ctx, s.db.Collection(colSources), bson.D{{Key: "domain_id", Value: full.Card.DomainID}})
		if err != nil {
			return nil, fmt.Errorf("failed to list sources: %w", err)
		}
		for _, src := range sources {
			full.Sources = append(full.Sources, domain.Source{ID: src.ID, Title: src.Title, Type: src.Type, URI: src.URI, IsActive: src.IsActive})
		}
	}
	if full.Card.OwnerID != 0 {
		var u userDoc
		err := s.db.Collection(colUsers).FindOne(ctx, bson.D{{Key: "_id", Value: full.Card.OwnerID}}).Decode(&u)
		switch {
		case err == nil:
			full.Owner = &domain.User{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role, CreatedAt: u.CreatedAt}
		case !errors.Is(err, mongo.ErrNoDocuments):
			return nil, fmt.Errorf("failed to get owner: %w", err)
		}
	}

	events, err := findAll[eventDoc](ctx, s.db.Collection(colEvents), bson.D{{Key: "card_id", Value: id}},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	users := map[int64]string{}
	if full.Owner != nil {
		users[full.Owner.ID] = full.Owner.Name
	}
	for _, e := range events {
		name, ok := users[e.UserID]
		if !ok && e.UserID != 0 {
			var u userDoc
			if err := s.db.Collection(colUsers).FindOne(ctx, bson.D{{Key: "_id", Value: e.UserID}}).Decode(&u); err == nil {
				name = u.Name
			}
			users[e.UserID] = name
		}
		full.Events = append(full.Events, domain.Event{
			ID:        e.ID,
			UserID:    e.UserID,
			UserName:  name,
			EventType: e.EventType,
			Payload:   e.Payload,
			CreatedAt: e.CreatedAt,
		})
	}
	return full, nil
}

func (s *Source) nextID(ctx context.Context, name string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := s.db.Collection(colCounters).FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: name}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "seq", Value: 1}}}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, err
	}
	return counter.Seq, nil
}

// CreateCard inserts a card with the next sequence id
func (s *Source) CreateCard(ctx context.Context, in domain.CardCreate) (*domain.Card, error) {
	if s.db == nil {
		return nil, fmt.Errorf("not connected")
	}
	id, err := s.nextID(ctx, colCards)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate card id: %w", err)
	}

	now := time.Now().UTC()
	doc := cardDoc{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Content:     in.Content,
		Status:      in.Status,
		Tags:        in.Tags,
		DomainID:    in.DomainID,
		OwnerID:     in.OwnerID,
		CreatedAt:   &now,
		UpdatedAt:   &now,
	}
	if _, err := s.db.Collection(colCards).InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to insert card: %w", err)
	}

	cards, err := s.cards(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return nil, fmt.Errorf("failed to read back card %d: %w", id, err)
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("card %d: %w", id, catalog.ErrNotFound)
	}
	return &cards[0], nil
}
