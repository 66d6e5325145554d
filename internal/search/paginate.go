package search

import "fmt"

// DefaultPageSize is the page size a new session starts with.
const DefaultPageSize = 50

// PageSizes are the selectable page size tiers.
var PageSizes = []int{50, 100, 250, 500, 1000}

// ValidPageSize reports whether n is one of the tiers.
func ValidPageSize(n int) error {
	for _, size := range PageSizes {
		if n == size {
			return nil
		}
	}
	return NewValidationError(fmt.Errorf("page size must be one of %v, got %d", PageSizes, n))
}

// Window is the displayed slice of a result set.
type Window[T any] struct {
	Page       int
	PageSize   int
	TotalPages int
	Total      int
	Items      []T
}

// Paginate clamps requested into [1, TotalPages] and returns the items in
// [(page-1)*pageSize, page*pageSize). TotalPages is never below 1, so an empty
// set is one empty page. A non-positive pageSize falls back to DefaultPageSize.
func Paginate[T any](items []T, pageSize, requested int) Window[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	total := len(items)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	page := requested
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	slice := make([]T, end-start)
	copy(slice, items[start:end])

	return Window[T]{
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		Total:      total,
		Items:      slice,
	}
}
