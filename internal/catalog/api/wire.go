package api

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Rrens/card-workbench/internal/domain"
)

// wireTime accepts RFC 3339 and the zone-less ISO timestamps the card API emits
type wireTime struct {
	t *time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (w *wireTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		if string(data) == "null" {
			return nil
		}
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			w.t = &t
			return nil
		}
	}
	return fmt.Errorf("unsupported timestamp %q", s)
}

type wireRef struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// wireCard covers both the flat card shape and the feed item shape with
// nested domain and owner.
type wireCard struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Content      string   `json:"content"`
	Status       string   `json:"status"`
	Tags         string   `json:"tags"`
	DomainID     *int64   `json:"domain_id"`
	OwnerID      *int64   `json:"owner_id"`
	ReviewerID   *int64   `json:"reviewer_id"`
	OwnerName    string   `json:"owner_name"`
	ReviewerName string   `json:"reviewer_name"`
	Domain       *wireRef `json:"domain"`
	Owner        *wireRef `json:"owner"`
	Reviewer     *wireRef `json:"reviewer"`
	SourceCount  int      `json:"source_count"`
	CreatedAt    wireTime `json:"created_at"`
	UpdatedAt    wireTime `json:"updated_at"`
	LastEventAt  wireTime `json:"last_event_at"`
}

func (w wireCard) toDomain() domain.Card {
	c := domain.Card{
		ID:           w.ID,
		Title:        w.Title,
		Description:  w.Description,
		Content:      w.Content,
		Status:       w.Status,
		Tags:         w.Tags,
		OwnerName:    w.OwnerName,
		ReviewerName: w.ReviewerName,
		SourceCount:  w.SourceCount,
		CreatedAt:    w.CreatedAt.t,
		UpdatedAt:    w.UpdatedAt.t,
		LastEventAt:  w.LastEventAt.t,
	}
	if w.DomainID != nil {
		c.DomainID = *w.DomainID
	}
	if w.Domain != nil {
		c.DomainID = w.Domain.ID
		c.DomainCode = w.Domain.Code
	}
	if w.OwnerID != nil {
		c.OwnerID = *w.OwnerID
	}
	if w.Owner != nil {
		c.OwnerID = w.Owner.ID
		c.OwnerName = w.Owner.Name
	}
	if w.ReviewerID != nil {
		c.ReviewerID = *w.ReviewerID
	}
	if w.Reviewer != nil {
		c.ReviewerID = w.Reviewer.ID
		c.ReviewerName = w.Reviewer.Name
	}
	return c
}

type wireUser struct {
	ID        int64    `json:"id"`
	Email     string   `json:"email"`
	Name      string   `json:"name"`
	Role      string   `json:"role"`
	CreatedAt wireTime `json:"created_at"`
}

func (w wireUser) toDomain() domain.User {
	return domain.User{ID: w.ID, Email: w.Email, Name: w.Name, Role: w.Role, CreatedAt: w.CreatedAt.t}
}

type wireEvent struct {
	ID        int64    `json:"id"`
	EventType string   `json:"event_type"`
	Payload   string   `json:"payload"`
	CreatedAt wireTime `json:"created_at"`
	User      *wireRef `json:"user"`
}

type wireFeed struct {
	Items    []wireCard `json:"items"`
	Total    int        `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
}

type wireFull struct {
	Card    wireCard        `json:"card"`
	Domain  *domain.Domain  `json:"domain"`
	Owner   *wireUser       `json:"owner"`
	Sources []domain.Source `json:"sources"`
	Events  []wireEvent     `json:"events"`
}

func (w wireFull) toDomain() *domain.CardFull {
	full := &domain.CardFull{
		Card:    w.Card.toDomain(),
		Domain:  w.Domain,
		Sources: w.Sources,
		Events:  make([]domain.Event, 0, len(w.Events)),
	}
	if full.Sources == nil {
		full.Sources = []domain.Source{}
	}
	if w.Owner != nil {
		u := w.Owner.toDomain()
		full.Owner = &u
	}
	for _, e := range w.Events {
		ev := domain.Event{ID: e.ID, EventType: e.EventType, Payload: e.Payload, CreatedAt: e.CreatedAt.t}
		if e.User != nil {
			ev.UserID = e.User.ID
			ev.UserName = e.User.Name
		}
		full.Events = append(full.Events, ev)
	}
	return full
}

type wireCreate struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	DomainID    *int64 `json:"domain_id"`
	OwnerID     *int64 `json:"owner_id"`
	Status      string `json:"status"`
	Tags        string `json:"tags,omitempty"`
}
