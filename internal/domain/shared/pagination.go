package shared

// Filter selects one page of a sorted listing. Page is 1-based.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string // asc or desc
}

// DefaultFilter is the first page of 20, newest first
func DefaultFilter() Filter {
	return Filter{Page: 1, PageSize: 20, OrderBy: "created_at", OrderDir: "desc"}
}

// Offset returns the number of rows before the page
func (f Filter) Offset() int {
	return max(f.Page-1, 0) * f.PageSize
}

// Paginated is one page of items with the total across all pages
type Paginated[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginated wraps one page of items
func NewPaginated[T any](items []T, total int64, page, pageSize int) Paginated[T] {
	p := Paginated[T]{Items: items, Total: total, Page: page, PageSize: pageSize}
	if pageSize > 0 {
		p.TotalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return p
}
