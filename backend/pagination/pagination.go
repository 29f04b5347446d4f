// Package pagination holds the slice-and-count arithmetic shared by the
// batches, users-in-batch and professors-in-course listings.
package pagination

// DefaultPageSize is used when a request omits or mangles pageSize.
const DefaultPageSize = 10

// Page is one slice of a listing plus the numbers needed to render controls.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Filter returns the items the predicate keeps, in order.
func Filter[T any](items []T, keep func(T) bool) []T {
	filtered := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// TotalPages is ceil(count/pageSize) with a floor of one page, so an empty
// listing still renders as page 1 of 1.
func TotalPages(count, pageSize int) int {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	pages := (count + pageSize - 1) / pageSize
	if pages < 1 {
		pages = 1
	}
	return pages
}

// ClampPage forces page into [1, totalPages]. Callers re-clamp whenever the
// page size or the filtered count changes, so the current page never points
// at a slice that no longer exists.
func ClampPage(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// Paginate slices items for the requested page, clamping page and pageSize
// into range first.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	total := len(items)
	totalPages := TotalPages(total, pageSize)
	page = ClampPage(page, totalPages)

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return Page[T]{
		Items:      items[start:end],
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}
