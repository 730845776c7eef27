package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Rrens/card-workbench/internal/catalog"
	"github.com/Rrens/card-workbench/internal/domain"
)

// Store runs the catalog queries over a database/sql handle
type Store struct {
	DB      *sql.DB
	Dialect Dialect
}

// HealthCheck verifies connection is alive
func (s *Store) HealthCheck(ctx context.Context) error {
	if s.DB == nil {
		return fmt.Errorf("not connected")
	}
	return s.DB.PingContext(ctx)
}

// Close closes the connection
func (s *Store) Close() error {
	if s.DB != nil {
		err := s.DB.Close()
		s.DB = nil
		return err
	}
	return nil
}

func collect[T any](ctx context.Context, db *sql.DB, q Query, scan func(Scanner) (T, error)) ([]T, error) {
	if db == nil {
		return nil, fmt.Errorf("not connected")
	}
	rows, err := db.QueryContext(ctx, q.SQL, q.Args...)
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
func (s *Store) ListDomains(ctx context.Context) ([]domain.Domain, error) {
	domains, err := collect(ctx, s.DB, s.Dialect.ListDomains(), ScanDomain)
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	return domains, nil
}

// ListUsers returns every user
func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := collect(ctx, s.DB, s.Dialect.ListUsers(), ScanUser)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// ListCards returns the full card corpus
func (s *Store) ListCards(ctx context.Context) ([]domain.Card, error) {
	cards, err := collect(ctx, s.DB, s.Dialect.ListCards(), ScanCard)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	return cards, nil
}

// Feed returns one server-side filtered page of cards
func (s *Store) Feed(ctx context.Context, q domain.FeedQuery) (*domain.FeedPage, error) {
	if s.DB == nil {
		return nil, fmt.Errorf("not connected")
	}
	count := s.Dialect.FeedCount(q)
	var total int
	if err := s.DB.QueryRowContext(ctx, count.SQL, count.Args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count feed: %w", err)
	}

	cards, err := collect(ctx, s.DB, s.Dialect.FeedPage(q), ScanCard)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed: %w", err)
	}
	return &domain.FeedPage{Items: cards, Total: total, Page: q.Page, PageSize: q.PageSize}, nil
}

func (s *Store) getCard(ctx context.Context, id int64) (*domain.Card, error) {
	q := s.Dialect.GetCard(id)
	card, err := ScanCard(s.DB.QueryRowContext(ctx, q.SQL, q.Args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("card %d: %w", id, catalog.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return &card, nil
}

// GetCardFull returns the card detail view
func (s *Store) GetCardFull(ctx context.Context, id int64) (*domain.CardFull, error) {
	if s.DB == nil {
		return nil, fmt.Errorf("not connected")
	}
	card, err := s.getCard(ctx, id)
	if err != nil {
		return nil, err
	}

	full := &domain.CardFull{Card: *card}

	if card.DomainID != 0 {
		q := s.Dialect.GetDomain(card.DomainID)
		d, err := ScanDomain(s.DB.QueryRowContext(ctx, q.SQL, q.Args...))
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("failed to get domain: %w", err)
		}
		if err == nil {
			full.Domain = &d
		}
	}
	if card.OwnerID != 0 {
		q := s.Dialect.GetUser(card.OwnerID)
		u, err := ScanUser(s.DB.QueryRowContext(ctx, q.SQL, q.Args...))
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("failed to get owner: %w", err)
		}
		if err == nil {
			full.Owner = &u
		}
	}

	if full.Sources, err = collect(ctx, s.DB, s.Dialect.ListSources(card.DomainID), ScanSource); err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	if full.Events, err = collect(ctx, s.DB, s.Dialect.ListEvents(id), ScanEvent); err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return full, nil
}

// CreateCard inserts a card and reads it back with its joined names
func (s *Store) CreateCard(ctx context.Context, in domain.CardCreate) (*domain.Card, error) {
	if s.DB == nil {
		return nil, fmt.Errorf("not connected")
	}
	q := s.Dialect.InsertCard(in)
	res, err := s.DB.ExecContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to insert card: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read card id: %w", err)
	}
	return s.getCard(ctx, id)
}
