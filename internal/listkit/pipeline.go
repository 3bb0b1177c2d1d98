// Package listkit applies the filter -> sort -> paginate pipeline to
// in-memory collections. Everything here is pure: no I/O, no errors for
// malformed input, deterministic output for the same inputs.
package listkit

import "slices"

// Page is one page of results plus pagination metadata.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// Apply filters, stable-sorts and paginates items. A nil keep keeps
// everything; a nil cmp keeps the input order. page and pageSize are clamped
// to sane values so the returned slice length is always
// min(pageSize, total-(page-1)*pageSize) and never negative.
func Apply[T any](items []T, keep func(T) bool, cmp func(a, b T) int, page, pageSize int) Page[T] {
	filtered := make([]T, 0, len(items))
	for _, it := range items {
		if keep == nil || keep(it) {
			filtered = append(filtered, it)
		}
	}

	if cmp != nil {
		slices.SortStableFunc(filtered, cmp)
	}

	if pageSize < 1 {
		pageSize = 1
	}
	total := len(filtered)
	totalPages := totalPagesFor(total, pageSize)
	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return Page[T]{
		Items:      filtered[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}
}

func totalPagesFor(total, pageSize int) int {
	if total == 0 {
		return 0
	}
	pages := total / pageSize
	if total%pageSize != 0 {
		pages++
	}
	return pages
}
