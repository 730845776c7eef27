package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Rrens/card-workbench/internal/catalog"
	"github.com/Rrens/card-workbench/internal/catalog/sqlstore"
	"github.com/Rrens/card-workbench/internal/domain"
)

// Source implements catalog.Source for PostgreSQL
type Source struct {
	pool    *pgxpool.Pool
	dialect sqlstore.Dialect
}

// NewSource creates a new PostgreSQL source
func NewSource() catalog.Source {
	return &Source{dialect: sqlstore.Postgres}
}

// Driver returns the backend identifier
func (s *Source) Driver() string {
	return "postgres"
}

// DSN builds the connection URL shared by the pool and the migrator
func DSN(config catalog.ConnectionConfig) string {
	sslMode := config.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		config.Username,
		config.Password,
		config.Host,
		config.Port,
		config.Database,
		sslMode,
	)
}

// Connect establishes connection to PostgreSQL
func (s *Source) Connect(ctx context.Context, config catalog.ConnectionConfig) error {
	poolConfig, err := pgxpool.ParseConfig(DSN(config))
	if err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	poolConfig.MaxConns = 5
	poolConfig.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping: %w", err)
	}

	s.pool = pool
	return nil
}

// Close closes the connection
func (s *Source) Close() error {
	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
	}
	return nil
}

// HealthCheck verifies connection is alive
func (s *Source) HealthCheck(ctx context.Context) error {
	if s.pool == nil {
		return fmt.Errorf("not connected")
	}
	return s.pool.Ping(ctx)
}

func collect[T any](ctx context.Context, pool *pgxpool.Pool, q sqlstore.Query, scan func(sqlstore.Scanner) (T, error)) ([]T, error) {
	if pool == nil {
		return nil, fmt.Errorf("not connected")
	}
	rows, err := pool.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ListDomains returns every domain
func (s *Source) ListDomains(ctx context.Context) ([]domain.Domain, error) {
	domains, err := collect(ctx, s.pool, s.dialect.ListDomains(), sqlstore.ScanDomain)
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	return domains, nil
}

// ListUsers returns every user
func (s *Source) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := collect(ctx, s.pool, s.dialect.ListUsers(), sqlstore.ScanUser)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// ListCards returns the full card corpus
func (s *Source) ListCards(ctx context.Context) ([]domain.Card, error) {
	cards, err := collect(ctx, s.pool, s.dialect.ListCards(), sqlstore.ScanCard)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	return cards, nil
}

// Feed returns one server-side filtered page of cards
func (s *Source) Feed(ctx context.Context, q domain.FeedQuery) (*domain.FeedPage, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("not connected")
	}
	count := s.dialect.FeedCount(q)
	var total int
	if err := s.pool.QueryRow(ctx, count.SQL, count.Args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count feed: %w", err)
	}

	cards, err := collect(ctx, s.pool, s.dialect.FeedPage(q), sqlstore.ScanCard)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed: %w", err)
	}
	return &domain.FeedPage{Items: cards, Total: total, Page: q.Page, PageSize: q.PageSize}, nil
}

func (s *Source) getCard(ctx context.Context, id int64) (*domain.Card, error) {
	q := s.dialect.GetCard(id)
	card, err := sqlstore.ScanCard(s.pool.QueryRow(ctx, q.SQL, q.Args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("card %d: %w", id, catalog.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return &card, nil
}

// GetCardFull returns the card detail view
func (s *Source) GetCardFull(ctx context.Context, id int64) (*domain.CardFull, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("not connected")
	}
	card, err := s.getCard(ctx, id)
	if err != nil {
		return nil, err
	}

	full := &domain.CardFull{Card: *card}

	if card.DomainID != 0 {
		q := s.dialect.GetDomain(card.DomainID)
		d, err := sqlstore.ScanDomain(s.pool.QueryRow(ctx, q.SQL, q.Args...))
		switch {
		case err == nil:
			full.Domain = &d
		case !errors.Is(err, pgx.ErrNoRows):
			return nil, fmt.Errorf("failed to get domain: %w", err)
		}
	}
	if card.OwnerID != 0 {
		q := s.dialect.GetUser(card.OwnerID)
		u, err := sqlstore.ScanUser(s.pool.QueryRow(ctx, q.SQL, q.Args...))
		switch {
		case err == nil:
			full.Owner = &u
		case !errors.Is(err, pgx.ErrNoRows):
			return nil, fmt.Errorf("failed to get owner: %w", err)
		}
	}

	if full.Sources, err = collect(ctx, s.pool, s.dialect.ListSources(card.DomainID), sqlstore.ScanSource); err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	if full.Events, err = collect(ctx, s.pool, s.dialect.ListEvents(id), sqlstore.ScanEvent); err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return full, nil
}

// CreateCard inserts a card and reads it back with its joined names
func (s *Source) CreateCard(ctx context.Context, in domain.CardCreate) (*domain.Card, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("not connected")
	}
	q := s.dialect.InsertCard(in)
	var id int64
	if err := s.pool.QueryRow(ctx, q.SQL, q.Args...).Scan(&id); err != nil {
		return nil, fmt.Errorf("failed to insert card: %w", err)
	}
	return s.getCard(ctx, id)
}
