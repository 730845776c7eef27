package sqlstore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Rrens/card-workbench/internal/domain"
)

// Scanner is satisfied by database/sql and pgx rows
type Scanner interface {
	Scan(dest ...any) error
}

// NullTime scans timestamps delivered either as time values or as text
type NullTime struct {
	Time  time.Time
	Valid bool
}

var textLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Scan implements sql.Scanner
func (n *NullTime) Scan(value any) error {
	n.Time, n.Valid = time.Time{}, false
	switch v := value.(type) {
	case nil:
		return nil
	case time.Time:
		n.Time, n.Valid = v.UTC(), true
		return nil
	case []byte:
		return n.parse(string(v))
	case string:
		return n.parse(v)
	default:
		return fmt.Errorf("cannot scan %T into timestamp", value)
	}
}

func (n *NullTime) parse(s string) error {
	if s == "" {
		return nil
	}
	for _, layout := range textLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			n.Time, n.Valid = t.UTC(), true
			return nil
		}
	}
	return fmt.Errorf("unsupported timestamp %q", s)
}

// Ptr returns the time or nil when NULL
func (n NullTime) Ptr() *time.Time {
	if !n.Valid {
		return nil
	}
	t := n.Time
	return &t
}

// ScanCard reads one row produced by the card column list
func ScanCard(row Scanner) (domain.Card, error) {
	var (
		c                             domain.Card
		description, content, tags    sql.NullString
		domainCode, owner, reviewer   sql.NullString
		domainID, ownerID, reviewerID sql.NullInt64
		created, updated, lastEvent   NullTime
	)
	err := row.Scan(
		&c.ID, &c.Title, &description, &content, &c.Status, &tags,
		&domainID, &domainCode, &ownerID, &owner, &reviewerID, &reviewer,
		&c.SourceCount, &created, &updated, &lastEvent,
	)
	if err != nil {
		return c, err
	}
	c.Description = description.String
	c.Content = content.String
	c.Tags = tags.String
	c.DomainID = domainID.Int64
	c.DomainCode = domainCode.String
	c.OwnerID = ownerID.Int64
	c.OwnerName = owner.String
	c.ReviewerID = reviewerID.Int64
	c.ReviewerName = reviewer.String
	c.CreatedAt = created.Ptr()
	c.UpdatedAt = updated.Ptr()
	c.LastEventAt = lastEvent.Ptr()
	return c, nil
}

// ScanDomain reads one domain row
func ScanDomain(row Scanner) (domain.Domain, error) {
	var (
		d    domain.Domain
		desc sql.NullString
	)
	if err := row.Scan(&d.ID, &d.Code, &d.Name, &desc); err != nil {
		return d, err
	}
	d.Description = desc.String
	return d, nil
}

// ScanUser reads one user row
func ScanUser(row Scanner) (domain.User, error) {
	var (
		u       domain.User
		created NullTime
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &created); err != nil {
		return u, err
	}
	u.CreatedAt = created.Ptr()
	return u, nil
}

// ScanSource reads one source row
func ScanSource(row Scanner) (domain.Source, error) {
	var s domain.Source
	err := row.Scan(&s.ID, &s.Title, &s.Type, &s.URI, &s.IsActive)
	return s, err
}

// ScanEvent reads one event row
func ScanEvent(row Scanner) (domain.Event, error) {
	var (
		e       domain.Event
		userID  sql.NullInt64
		name    sql.NullString
		payload sql.NullString
		created NullTime
	)
	if err := row.Scan(&e.ID, &userID, &name, &e.EventType, &payload, &created); err != nil {
		return e, err
	}
	e.UserID = userID.Int64
	e.UserName = name.String
	e.Payload = payload.String
	e.CreatedAt = created.Ptr()
	return e, nil
}
