package workbench

import (
	"slices"
	"time"

	"github.com/Rrens/card-workbench/internal/domain"
)

// SearchBlockLog keeps search blocks newest first. Blocks are never
// reordered or merged once added.
type SearchBlockLog struct {
	blocks []domain.SearchBlock
}

// Add records a new block at the head of the log
func (l *SearchBlockLog) Add(query string, results []domain.ScoredCard, at time.Time) domain.SearchBlock {
	block := domain.SearchBlock{
		Query:     query,
		Results:   slices.Clone(results),
		CreatedAt: at,
	}
	l.blocks = slices.Insert(l.blocks, 0, block)
	return block
}

// Len returns the number of blocks
func (l *SearchBlockLog) Len() int {
	return len(l.blocks)
}

// Latest returns the most recent block
func (l *SearchBlockLog) Latest() (domain.SearchBlock, bool) {
	if len(l.blocks) == 0 {
		return domain.SearchBlock{}, false
	}
	return l.blocks[0], true
}

// Blocks returns the blocks newest first
func (l *SearchBlockLog) Blocks() []domain.SearchBlock {
	return slices.Clone(l.blocks)
}

// ResultIDs lists every result id across all blocks, newest block first,
// without duplicates.
func (l *SearchBlockLog) ResultIDs() []int64 {
	seen := make(map[int64]struct{})
	var ids []int64
	for _, b := range l.blocks {
		for _, r := range b.Results {
			id := r.Card.Ref().ID
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}

// Reset drops every block
func (l *SearchBlockLog) Reset() {
	l.blocks = nil
}

// BlockView is a block as displayed after the assistant filter
type BlockView struct {
	Query     string              `json:"query"`
	CreatedAt time.Time           `json:"created_at"`
	Total     int                 `json:"total"`
	Results   []domain.ScoredCard `json:"results"`
}

// View derives the displayed subset of every block, newest first
func (l *SearchBlockLog) View(filter AssistantFilter, selection *SelectionSet) []BlockView {
	p := filter.Pipeline(selection)
	views := make([]BlockView, 0, len(l.blocks))
	for _, b := range l.blocks {
		views = append(views, BlockView{
			Query:     b.Query,
			CreatedAt: b.CreatedAt,
			Total:     len(b.Results),
			Results:   p.Run(b.Results),
		})
	}
	return views
}

// leadingIDs returns the ids of the first n results in scoring order
func leadingIDs(results []domain.ScoredCard, n int) []int64 {
	ids := make([]int64, 0, n)
	for _, r := range results[:min(n, len(results))] {
		ids = append(ids, r.Card.Ref().ID)
	}
	return ids
}

// topByRelevance returns up to n ids from results, highest score first,
// keeping only cards accepted by keep.
func topByRelevance(results []domain.ScoredCard, n int, keep func(domain.ScoredCard) bool) []int64 {
	ranked := Pipeline[domain.ScoredCard]{Filter: keep, Compare: compareRelevance}.Run(results)
	ids := make([]int64, 0, n)
	for _, r := range ranked {
		if len(ids) == n {
			break
		}
		ids = append(ids, r.Card.Ref().ID)
	}
	return ids
}
