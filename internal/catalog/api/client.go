package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Rrens/card-workbench/internal/catalog"
	"github.com/Rrens/card-workbench/internal/domain"
)

// Source implements catalog.Source over the card REST API
type Source struct {
	baseURL string
	client  *http.Client
}

// NewSource creates a new REST catalog source
func NewSource() catalog.Source {
	return &Source{}
}

// Driver returns the backend identifier
func (s *Source) Driver() string {
	return "api"
}

// Connect configures the base URL and checks the API answers
func (s *Source) Connect(ctx context.Context, config catalog.ConnectionConfig) error {
	if config.BaseURL == "" {
		return fmt.Errorf("catalog api url is required")
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	s.baseURL = strings.TrimRight(config.BaseURL, "/")
	s.client = &http.Client{Timeout: timeout}
	return s.HealthCheck(ctx)
}

// Close releases idle connections
func (s *Source) Close() error {
	if s.client != nil {
		s.client.CloseIdleConnections()
	}
	return nil
}

// HealthCheck verifies the API is reachable
func (s *Source) HealthCheck(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("not connected")
	}
	var domains []domain.Domain
	return s.do(ctx, http.MethodGet, "/domains/", nil, &domains)
}

// ListDomains returns every domain
func (s *Source) ListDomains(ctx context.Context) ([]domain.Domain, error) {
	var domains []domain.Domain
	if err := s.do(ctx, http.MethodGet, "/domains/", nil, &domains); err != nil {
		return nil, err
	}
	return domains, nil
}

// ListUsers returns every user
func (s *Source) ListUsers(ctx context.Context) ([]domain.User, error) {
	var wire []wireUser
	if err := s.do(ctx, http.MethodGet, "/users/", nil, &wire); err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(wire))
	for _, u := range wire {
		users = append(users, u.toDomain())
	}
	return users, nil
}

// ListCards returns the full card corpus
func (s *Source) ListCards(ctx context.Context) ([]domain.Card, error) {
	var wire []wireCard
	if err := s.do(ctx, http.MethodGet, "/cards/", nil, &wire); err != nil {
		return nil, err
	}
	cards := make([]domain.Card, 0, len(wire))
	for _, c := range wire {
		cards = append(cards, c.toDomain())
	}
	return cards, nil
}

// Feed returns one server-side filtered page of cards
func (s *Source) Feed(ctx context.Context, q domain.FeedQuery) (*domain.FeedPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("page_size", strconv.Itoa(q.PageSize))
	if q.DomainID != 0 {
		params.Set("domain_id", strconv.FormatInt(q.DomainID, 10))
	}
	if q.Status != "" {
		params.Set("status", q.Status)
	}
	if q.Search != "" {
		params.Set("search", q.Search)
	}

	var wire wireFeed
	if err := s.do(ctx, http.MethodGet, "/cards/feed?"+params.Encode(), nil, &wire); err != nil {
		return nil, err
	}

	page := &domain.FeedPage{
		Items:    make([]domain.Card, 0, len(wire.Items)),
		Total:    wire.Total,
		Page:     wire.Page,
		PageSize: wire.PageSize,
	}
	for _, c := range wire.Items {
		page.Items = append(page.Items, c.toDomain())
	}
	return page, nil
}

// GetCardFull returns the card detail view
func (s *Source) GetCardFull(ctx context.Context, id int64) (*domain.CardFull, error) {
	var wire wireFull
	if err := s.do(ctx, http.MethodGet, fmt.Sprintf("/cards/%d/full", id), nil, &wire); err != nil {
		return nil, err
	}
	return wire.toDomain(), nil
}

// CreateCard posts a new card
func (s *Source) CreateCard(ctx context.Context, in domain.CardCreate) (*domain.Card, error) {
	body := wireCreate{
		Title:       in.Title,
		Description: in.Description,
		Content:     in.Content,
		DomainID:    in.DomainID,
		OwnerID:     in.OwnerID,
		Status:      in.Status,
		Tags:        in.Tags,
	}
	var wire wireCard
	if err := s.do(ctx, http.MethodPost, "/cards/", body, &wire); err != nil {
		return nil, err
	}
	card := wire.toDomain()
	return &card, nil
}

func (s *Source) do(ctx context.Context, method, path string, in, out any) error {
	if s.client == nil {
		return fmt.Errorf("not connected")
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", method, path, catalog.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s returned status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
