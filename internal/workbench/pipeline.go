package workbench

import "slices"

// Pipeline filters, sorts and pages a slice without mutating it.
// A nil Filter keeps everything, a nil Compare keeps input order.
type Pipeline[T any] struct {
	Filter  func(T) bool
	Compare func(a, b T) int
}

// Run returns the filtered items in stable comparator order
func (p Pipeline[T]) Run(items []T) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if p.Filter == nil || p.Filter(it) {
			out = append(out, it)
		}
	}
	if p.Compare != nil {
		slices.SortStableFunc(out, p.Compare)
	}
	return out
}

// Page is one slice of a filtered, sorted result
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// MaxPage is ceil(total/pageSize), never below 1
func MaxPage(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// Paginate slices a 1-indexed page out of items. Pages past the end are empty.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	if page < 1 {
		page = 1
	}
	result := Page[T]{
		Items:      []T{},
		Page:       page,
		PageSize:   pageSize,
		Total:      len(items),
		TotalPages: MaxPage(len(items), pageSize),
	}
	if pageSize <= 0 {
		return result
	}

	start := (page - 1) * pageSize
	if start >= len(items) {
		return result
	}
	end := min(start+pageSize, len(items))
	result.Items = append(result.Items, items[start:end]...)
	return result
}
