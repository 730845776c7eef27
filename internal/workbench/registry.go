package workbench

import (
	"cmp"
	"strings"
	"time"

	"github.com/Rrens/card-workbench/internal/domain"
)

// RegistrySort orders registry rows
type RegistrySort string

const (
	RegistrySortUpdated RegistrySort = "updated"
	RegistrySortTitle   RegistrySort = "title"
)

// PresentationMode is the registry layout
type PresentationMode string

const (
	ModeTable   PresentationMode = "table"
	ModeCompact PresentationMode = "compact"
)

// DefaultPageSize is the registry page size until the user changes it
const DefaultPageSize = 10

// RegistryFilter is the applied registry filter state
type RegistryFilter struct {
	DomainID     int64        `json:"domain_id,omitempty"`
	Status       string       `json:"status,omitempty"`
	Search       string       `json:"search,omitempty" validate:"max=200"`
	Owner        string       `json:"owner,omitempty" validate:"max=100"`
	Reviewer     string       `json:"reviewer,omitempty" validate:"max=100"`
	OnlyMine     bool         `json:"only_mine,omitempty"`
	VerifiedFrom *time.Time   `json:"verified_from,omitempty"`
	Sort         RegistrySort `json:"sort,omitempty" validate:"omitempty,oneof=updated title"`
}

// residual drops the predicates a server-side feed already applied
func (f RegistryFilter) residual() RegistryFilter {
	f.DomainID = 0
	f.Status = ""
	f.Search = ""
	return f
}

// Match applies every registry predicate. currentUser 0 means no user is
// resolvable and turns OnlyMine into a no-op.
func (f RegistryFilter) Match(c *domain.Card, currentUser int64) bool {
	if f.DomainID != 0 && c.DomainID != f.DomainID {
		return false
	}
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.Search != "" && !matchesSearch(c, f.Search) {
		return false
	}
	if f.Owner != "" && !containsFold(c.OwnerName, f.Owner) {
		return false
	}
	if f.Reviewer != "" && !containsFold(c.ReviewerName, f.Reviewer) {
		return false
	}
	if f.OnlyMine && currentUser != 0 && c.OwnerID != currentUser {
		return false
	}
	if f.VerifiedFrom != nil {
		at := registryTime(c)
		if at == nil || at.Before(*f.VerifiedFrom) {
			return false
		}
	}
	return true
}

func matchesSearch(c *domain.Card, text string) bool {
	haystack := strings.Join([]string{c.Title, c.Description, c.Tags, c.DomainCode, c.OwnerName}, " ")
	return containsFold(haystack, text)
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// registryTime is updated_at falling back to the last event
func registryTime(c *domain.Card) *time.Time {
	if c.UpdatedAt != nil {
		return c.UpdatedAt
	}
	return c.LastEventAt
}

func registryMillis(c *domain.Card) int64 {
	if t := registryTime(c); t != nil {
		return t.UnixMilli()
	}
	return 0
}

// Pipeline builds the registry filter/sort
func (f RegistryFilter) Pipeline(currentUser int64) Pipeline[*domain.Card] {
	p := Pipeline[*domain.Card]{
		Filter: func(c *domain.Card) bool { return f.Match(c, currentUser) },
	}
	if f.Sort == RegistrySortTitle {
		p.Compare = func(a, b *domain.Card) int { return compareTitles(a.Title, b.Title) }
	} else {
		p.Compare = func(a, b *domain.Card) int { return cmp.Compare(registryMillis(b), registryMillis(a)) }
	}
	return p
}

// RegistryView holds the registry filter and pagination state. Total is
// derived on every recompute. With the feed source Total and MaxPage count
// the server's matches on domain, status and search; the other predicates
// only narrow the fetched page and Narrowed counts the rows they dropped.
type RegistryView struct {
	Filter   RegistryFilter   `json:"filter"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Total    int              `json:"total"`
	Narrowed int              `json:"narrowed"`
	Mode     PresentationMode `json:"mode"`

	rows     []*domain.Card
	selected *SelectionSet
}

// NewRegistryView creates a view on page 1
func NewRegistryView(pageSize int) *RegistryView {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &RegistryView{
		Page:     1,
		PageSize: pageSize,
		Mode:     ModeTable,
		selected: NewSelectionSet(),
	}
}

// MaxPage returns the last navigable page
func (v *RegistryView) MaxPage() int {
	return MaxPage(v.Total, v.PageSize)
}

// CanNext reports whether the next page exists
func (v *RegistryView) CanNext() bool {
	return v.Page < v.MaxPage()
}

// CanPrev reports whether the previous page exists
func (v *RegistryView) CanPrev() bool {
	return v.Page > 1
}

// Apply replaces the filter state and resets to page 1
func (v *RegistryView) Apply(filter RegistryFilter) {
	v.Filter = filter
	v.Page = 1
}

// SetPageSize changes the page size and resets to page 1
func (v *RegistryView) SetPageSize(n int) error {
	if n <= 0 {
		return ErrInvalidPageSize
	}
	v.PageSize = n
	v.Page = 1
	return nil
}

// Next advances one page, refusing to move past the last page
func (v *RegistryView) Next() error {
	if !v.CanNext() {
		return ErrPageOutOfRange
	}
	v.Page++
	return nil
}

// Prev goes back one page, refusing to move before page 1
func (v *RegistryView) Prev() error {
	if !v.CanPrev() {
		return ErrPageOutOfRange
	}
	v.Page--
	return nil
}

// Recompute filters, sorts and pages the cached corpus
func (v *RegistryView) Recompute(corpus []*domain.Card, currentUser int64) {
	sorted := v.Filter.Pipeline(currentUser).Run(corpus)
	v.Total = len(sorted)
	v.Narrowed = 0
	v.rows = Paginate(sorted, v.Page, v.PageSize).Items
}

// RecomputeFeed uses a server page: the server already paged on domain,
// status and search, the remaining predicates run on the page items.
func (v *RegistryView) RecomputeFeed(page *domain.FeedPage, currentUser int64) {
	items := make([]*domain.Card, len(page.Items))
	for i := range page.Items {
		items[i] = &page.Items[i]
	}
	v.Total = page.Total
	v.rows = v.Filter.residual().Pipeline(currentUser).Run(items)
	v.Narrowed = len(items) - len(v.rows)
}

// commit takes the recomputed filter, paging and rows from next. Mode and
// the checkbox set stay as they are.
func (v *RegistryView) commit(next *RegistryView) {
	v.Filter = next.Filter
	v.Page = next.Page
	v.PageSize = next.PageSize
	v.Total = next.Total
	v.Narrowed = next.Narrowed
	v.rows = next.rows
}

// Rows returns the current page
func (v *RegistryView) Rows() []*domain.Card {
	return v.rows
}

// Row finds a card on the current page
func (v *RegistryView) Row(id int64) (*domain.Card, bool) {
	for _, c := range v.rows {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// ToggleSelected marks a row in the registry-local checkbox set
func (v *RegistryView) ToggleSelected(id int64, checked bool) {
	v.selected.Toggle(id, checked)
}

// SelectedIDs returns the registry-local checkbox set
func (v *RegistryView) SelectedIDs() []int64 {
	return v.selected.IDs()
}
