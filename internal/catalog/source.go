package catalog

import (
	"context"
	"time"

	"github.com/Rrens/card-workbench/internal/domain"
)

// ConnectionConfig contains card catalog connection parameters
type ConnectionConfig struct {
	BaseURL  string
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string
	Path     string
	Timeout  time.Duration
}

// Source defines the interface for card catalog backends
type Source interface {
	// Driver returns the backend identifier (api, postgres, mysql, sqlite, mongodb)
	Driver() string

	// Connect establishes the connection to the backend
	Connect(ctx context.Context, config ConnectionConfig) error

	// Close closes the connection
	Close() error

	// HealthCheck verifies the backend is reachable
	HealthCheck(ctx context.Context) error

	// ListDomains returns every domain
	ListDomains(ctx context.Context) ([]domain.Domain, error)

	// ListUsers returns every user
	ListUsers(ctx context.Context) ([]domain.User, error)

	// ListCards returns the full card corpus
	ListCards(ctx context.Context) ([]domain.Card, error)

	// Feed returns one server-side filtered page of cards, newest first
	Feed(ctx context.Context, q domain.FeedQuery) (*domain.FeedPage, error)

	// GetCardFull returns a card with its domain, owner, sources and events
	GetCardFull(ctx context.Context, id int64) (*domain.CardFull, error)

	// CreateCard stores a new card
	CreateCard(ctx context.Context, in domain.CardCreate) (*domain.Card, error)
}

// SourceFactory creates a new source instance
type SourceFactory func() Source
