// Package sqlstore holds the card catalog queries shared by the SQL backends.
package sqlstore

import (
	"fmt"
	"strings"

	"github.com/Rrens/card-workbench/internal/domain"
)

// Dialect describes the placeholder style of a SQL backend
type Dialect struct {
	Name string

	// Numbered placeholders ($1, $2) instead of question marks
	Numbered bool
}

var (
	Postgres = Dialect{Name: "postgres", Numbered: true}
	MySQL    = Dialect{Name: "mysql"}
	SQLite   = Dialect{Name: "sqlite"}
)

// Placeholder returns the n-th (1-based) bind placeholder
func (d Dialect) Placeholder(n int) string {
	if d.Numbered {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

const cardColumns = `
	c.id, c.title, c.description, c.content, c.status, c.tags,
	c.domain_id, d.code, c.owner_id, o.name, c.reviewer_id, r.name,
	(SELECT COUNT(*) FROM sources s WHERE s.domain_id = c.domain_id AND s.is_active),
	c.created_at, c.updated_at,
	(SELECT MAX(e.created_at) FROM events e WHERE e.card_id = c.id)`

const cardJoins = `
	FROM cards c
	LEFT JOIN domains d ON d.id = c.domain_id
	LEFT JOIN users o ON o.id = c.owner_id
	LEFT JOIN users r ON r.id = c.reviewer_id`

// Query is a statement with its bind arguments
type Query struct {
	SQL  string
	Args []any
}

// ListDomains lists every domain by code
func (d Dialect) ListDomains() Query {
	return Query{SQL: `SELECT id, code, name, description FROM domains ORDER BY code`}
}

// GetDomain selects one domain
func (d Dialect) GetDomain(id int64) Query {
	return Query{
		SQL:  `SELECT id, code, name, description FROM domains WHERE id = ` + d.Placeholder(1),
		Args: []any{id},
	}
}

// ListUsers lists every user by id
func (d Dialect) ListUsers() Query {
	return Query{SQL: `SELECT id, email, name, role, created_at FROM users ORDER BY id`}
}

// GetUser selects one user
func (d Dialect) GetUser(id int64) Query {
	return Query{
		SQL:  `SELECT id, email, name, role, created_at FROM users WHERE id = ` + d.Placeholder(1),
		Args: []any{id},
	}
}

// ListCards lists the full corpus by id
func (d Dialect) ListCards() Query {
	return Query{SQL: `SELECT ` + cardColumns + cardJoins + ` ORDER BY c.id`}
}

// GetCard selects one card with its joined names
func (d Dialect) GetCard(id int64) Query {
	return Query{
		SQL:  `SELECT ` + cardColumns + cardJoins + ` WHERE c.id = ` + d.Placeholder(1),
		Args: []any{id},
	}
}

func (d Dialect) feedWhere(q domain.FeedQuery) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if q.DomainID != 0 {
		args = append(args, q.DomainID)
		conds = append(conds, "c.domain_id = "+d.Placeholder(len(args)))
	}
	if q.Status != "" {
		args = append(args, q.Status)
		conds = append(conds, "c.status = "+d.Placeholder(len(args)))
	}
	if term := strings.TrimSpace(q.Search); term != "" {
		pattern := "%" + strings.ToLower(term) + "%"
		args = append(args, pattern)
		first := d.Placeholder(len(args))
		args = append(args, pattern)
		second := d.Placeholder(len(args))
		conds = append(conds, fmt.Sprintf("(LOWER(c.title) LIKE %s OR LOWER(c.description) LIKE %s)", first, second))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// FeedCount counts the cards matching the feed filters
func (d Dialect) FeedCount(q domain.FeedQuery) Query {
	where, args := d.feedWhere(q)
	return Query{SQL: `SELECT COUNT(*) FROM cards c` + where, Args: args}
}

// FeedPage selects one page of the feed, most recently updated first
func (d Dialect) FeedPage(q domain.FeedQuery) Query {
	where, args := d.feedWhere(q)
	args = append(args, q.PageSize)
	limit := d.Placeholder(len(args))
	args = append(args, q.Offset())
	offset := d.Placeholder(len(args))
	return Query{
		SQL:  `SELECT ` + cardColumns + cardJoins + where + ` ORDER BY c.updated_at DESC, c.id DESC LIMIT ` + limit + ` OFFSET ` + offset,
		Args: args,
	}
}

// ListSources lists the sources of a domain
func (d Dialect) ListSources(domainID int64) Query {
	return Query{
		SQL:  `SELECT id, title, type, uri, is_active FROM sources WHERE domain_id = ` + d.Placeholder(1) + ` ORDER BY id`,
		Args: []any{domainID},
	}
}

// ListEvents lists the audit trail of a card, newest first
func (d Dialect) ListEvents(cardID int64) Query {
	return Query{
		SQL: `SELECT e.id, e.user_id, u.name, e.event_type, e.payload, e.created_at
			FROM events e LEFT JOIN users u ON u.id = e.user_id
			WHERE e.card_id = ` + d.Placeholder(1) + ` ORDER BY e.created_at DESC, e.id DESC`,
		Args: []any{cardID},
	}
}

// InsertCard inserts a card; Postgres variants append RETURNING id.
func (d Dialect) InsertCard(in domain.CardCreate) Query {
	ph := make([]string, 7)
	for i := range ph {
		ph[i] = d.Placeholder(i + 1)
	}
	sql := `INSERT INTO cards (title, description, content, status, tags, domain_id, owner_id, created_at, updated_at)
		VALUES (` + strings.Join(ph, ", ") + `, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`
	if d.Numbered {
		sql += ` RETURNING id`
	}
	return Query{
		SQL:  sql,
		Args: []any{in.Title, in.Description, in.Content, in.Status, in.Tags, in.DomainID, in.OwnerID},
	}
}
