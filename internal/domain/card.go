package domain

import (
	"strings"
	"time"
)

// CardShape is either a full Card or a minimal CardRef. Consumers must
// handle the minimal variant: only the CardRef fields are guaranteed.
type CardShape interface {
	// Ref returns the minimal shape of the card
	Ref() CardRef

	// Full returns the full card when this is not a minimal reference
	Full() (*Card, bool)
}

// Card represents a knowledge card as served by the catalog
type Card struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Content      string     `json:"content,omitempty"`
	DomainID     int64      `json:"domain_id,omitempty"`
	DomainCode   string     `json:"domain_code,omitempty"`
	OwnerID      int64      `json:"owner_id,omitempty"`
	OwnerName    string     `json:"owner_name,omitempty"`
	ReviewerID   int64      `json:"reviewer_id,omitempty"`
	ReviewerName string     `json:"reviewer_name,omitempty"`
	Status       string     `json:"status"`
	Tags         string     `json:"tags,omitempty"`
	SourceCount  int        `json:"source_count,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
	LastEventAt  *time.Time `json:"last_event_at,omitempty"`
}

// Ref returns the minimal card shape
func (c *Card) Ref() CardRef {
	return CardRef{
		ID:          c.ID,
		Title:       c.Title,
		Status:      c.Status,
		DomainID:    c.DomainID,
		Description: c.Description,
		UpdatedAt:   c.UpdatedAt,
	}
}

// Full returns the card itself
func (c *Card) Full() (*Card, bool) {
	return c, true
}

// TagList parses the comma-joined tags into an ordered list
func (c *Card) TagList() []string {
	return ParseTags(c.Tags)
}

// CardRef is the minimal card shape injected by cross-view actions and
// cited by chat replies.
type CardRef struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	DomainID    int64      `json:"domain_id,omitempty"`
	Description string     `json:"description,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// Ref returns the reference itself
func (r CardRef) Ref() CardRef {
	return r
}

// Full always reports false for a minimal reference
func (r CardRef) Full() (*Card, bool) {
	return nil, false
}

// ParseTags splits comma-joined tag text, trimming blanks and dropping empties.
func ParseTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// Source is a document backing a card
type Source struct {
	ID       int64  `json:"id,omitempty"`
	Title    string `json:"title"`
	Type     string `json:"type"`
	URI      string `json:"uri"`
	IsActive bool   `json:"is_active"`
}

// Event is an audit entry on a card
type Event struct {
	ID        int64      `json:"id,omitempty"`
	UserID    int64      `json:"user_id,omitempty"`
	EventType string     `json:"event_type"`
	UserName  string     `json:"user_name,omitempty"`
	Payload   string     `json:"payload,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// CardFull is the detail view of a card
type CardFull struct {
	Card    Card     `json:"card"`
	Domain  *Domain  `json:"domain,omitempty"`
	Owner   *User    `json:"owner,omitempty"`
	Sources []Source `json:"sources"`
	Events  []Event  `json:"events"`
}

// CardCreate represents card creation data
type CardCreate struct {
	Title       string `json:"title" validate:"required,notblank,max=255"`
	Description string `json:"description" validate:"max=2000"`
	Content     string `json:"content" validate:"required_without=Description"`
	DomainID    *int64 `json:"domain_id,omitempty"`
	OwnerID     *int64 `json:"owner_id,omitempty"`
	Status      string `json:"status" validate:"omitempty,oneof=active draft archived green yellow red grey"`
	Tags        string `json:"tags,omitempty"`
}

// Normalize trims the text fields and applies the default status
func (c *CardCreate) Normalize() {
	c.Title = strings.TrimSpace(c.Title)
	c.Description = strings.TrimSpace(c.Description)
	c.Content = strings.TrimSpace(c.Content)
	if c.Content == "" {
		c.Content = c.Description
	}
	if c.Status == "" {
		c.Status = "draft"
	}
}

// FeedQuery holds server-side registry feed parameters
type FeedQuery struct {
	Page     int
	PageSize int
	DomainID int64
	Status   string
	Search   string
}

// Offset returns the row offset for the requested page
func (q FeedQuery) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.PageSize
}

// FeedPage is one page of the registry feed
type FeedPage struct {
	Items    []Card `json:"items"`
	Total    int    `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}
