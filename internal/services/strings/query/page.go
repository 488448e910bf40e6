package query

import "github.com/saulotoledo/strings-database/internal/platform/pagination"

// Page is one window of projections plus the size of the whole result set.
type Page struct {
	Items []Projection
	Index int
	Size  int
	Sort  []pagination.SortKey
	Total int64
}

// TotalPages returns how many pages of Size hold Total elements.
func (p Page) TotalPages() int64 {
	return pagination.TotalPages(p.Total, p.Size)
}

// First reports whether this is the first page.
func (p Page) First() bool {
	return p.Index == 0
}

// Last reports whether no page follows this one.
func (p Page) Last() bool {
	return int64(p.Index)+1 >= p.TotalPages()
}
