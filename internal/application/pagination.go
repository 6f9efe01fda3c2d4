package application

// DefaultPageSize is the page size a list starts with and returns to on reset.
const DefaultPageSize = 10

// Page is one window over an in-memory list.
//
// A list with no items has no pages: Number and TotalPages are zero and both
// navigation directions are disabled.
type Page[T any] struct {
	Items      []T  `json:"items"`
	Number     int  `json:"page"`
	Size       int  `json:"page_size"`
	TotalPages int  `json:"total_pages"`
	TotalItems int  `json:"total_items"`
	HasPrev    bool `json:"has_prev"`
	HasNext    bool `json:"has_next"`
}

// Paginate slices items into the requested page. Page numbers outside
// [1, TotalPages] are clamped and a non-positive size falls back to
// DefaultPageSize. The returned Items never alias the input.
func Paginate[T any](items []T, page, size int) Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(items)
	result := Page[T]{Size: size, TotalItems: total, Items: []T{}}
	if total == 0 {
		return result
	}

	pages := (total + size - 1) / size
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}

	start := (page - 1) * size
	end := start + size
	if end > total {
		end = total
	}

	result.Items = append(make([]T, 0, end-start), items[start:end]...)
	result.Number = page
	result.TotalPages = pages
	result.HasPrev = page > 1
	result.HasNext = page < pages
	return result
}
