package store

// Page describes one window of a paginated collection
type Page struct {
	Number     int  `json:"page"`
	Size       int  `json:"page_size"`
	TotalPages int  `json:"total_pages"`
	TotalItems int  `json:"total"`
	HasPrev    bool `json:"has_prev"`
	HasNext    bool `json:"has_next"`
}

// Paginate slices a collection into fixed-size pages. The requested page is
// clamped to the valid range, so navigating past the last page or before the
// first is a no-op rather than an error. An empty collection still has one
// (empty) page.
func Paginate[T any](items []T, page, size int) ([]T, Page) {
	if size < 1 {
		size = 1
	}

	totalPages := (len(items) + size - 1) / size
	if totalPages < 1 {
		totalPages = 1
	}

	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * size
	end := start + size
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}

	return items[start:end], Page{
		Number:     page,
		Size:       size,
		TotalPages: totalPages,
		TotalItems: len(items),
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}
}
