package workbench

import (
	"cmp"
	"strings"

	"github.com/Rrens/card-workbench/internal/domain"
)

// SortMode orders the assistant results of a block
type SortMode string

const (
	SortRelevance    SortMode = "relevance"
	SortTitle        SortMode = "title"
	SortVerification SortMode = "verification"
)

// Visibility restricts assistant results against the selection
type Visibility string

const (
	VisibilityAll        Visibility = "all"
	VisibilitySelected   Visibility = "selected"
	VisibilityUnselected Visibility = "unselected"
)

// AssistantFilter configures the assistant result view
type AssistantFilter struct {
	DomainID   int64      `json:"domain_id,omitempty"`
	Statuses   []string   `json:"statuses,omitempty" validate:"dive,oneof=green yellow red grey active draft archived"`
	Visibility Visibility `json:"visibility,omitempty" validate:"omitempty,oneof=all selected unselected"`
	Sort       SortMode   `json:"sort,omitempty" validate:"omitempty,oneof=relevance title verification"`
}

// DefaultAssistantFilter shows everything by relevance
func DefaultAssistantFilter() AssistantFilter {
	return AssistantFilter{Visibility: VisibilityAll, Sort: SortRelevance}
}

func (f AssistantFilter) normalized() AssistantFilter {
	if f.Visibility == "" {
		f.Visibility = VisibilityAll
	}
	if f.Sort == "" {
		f.Sort = SortRelevance
	}
	return f
}

// Pipeline builds the assistant filter/sort against the live selection
func (f AssistantFilter) Pipeline(selection *SelectionSet) Pipeline[domain.ScoredCard] {
	f = f.normalized()

	statuses := make(map[string]struct{}, len(f.Statuses))
	for _, s := range f.Statuses {
		statuses[s] = struct{}{}
	}

	return Pipeline[domain.ScoredCard]{
		Filter: func(sc domain.ScoredCard) bool {
			ref := sc.Card.Ref()
			if f.DomainID != 0 && ref.DomainID != f.DomainID {
				return false
			}
			if len(statuses) > 0 {
				if _, ok := statuses[colorKey(ref.Status)]; !ok {
					return false
				}
			}
			switch f.Visibility {
			case VisibilitySelected:
				return selection.Has(ref.ID)
			case VisibilityUnselected:
				return !selection.Has(ref.ID)
			}
			return true
		},
		Compare: compareFor(f.Sort),
	}
}

func compareFor(mode SortMode) func(a, b domain.ScoredCard) int {
	switch mode {
	case SortTitle:
		return func(a, b domain.ScoredCard) int {
			return compareTitles(a.Card.Ref().Title, b.Card.Ref().Title)
		}
	case SortVerification:
		return func(a, b domain.ScoredCard) int {
			return cmp.Compare(verifiedAt(b.Card), verifiedAt(a.Card))
		}
	}
	return compareRelevance
}

// compareRelevance orders by descending score
func compareRelevance(a, b domain.ScoredCard) int {
	return cmp.Compare(b.Score, a.Score)
}

// compareTitles is a case-insensitive lexicographic order with the raw
// title as tie-break, so the order stays total.
func compareTitles(a, b string) int {
	if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// verifiedAt is updated_at falling back to created_at, in unix millis.
// Missing timestamps count as epoch 0.
func verifiedAt(c domain.CardShape) int64 {
	if full, ok := c.Full(); ok {
		switch {
		case full.UpdatedAt != nil:
			return full.UpdatedAt.UnixMilli()
		case full.CreatedAt != nil:
			return full.CreatedAt.UnixMilli()
		}
		return 0
	}
	if ref := c.Ref(); ref.UpdatedAt != nil {
		return ref.UpdatedAt.UnixMilli()
	}
	return 0
}
