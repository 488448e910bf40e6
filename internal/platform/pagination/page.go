// Package pagination defines the page/sort specification shared by list
// operations and the parsers that build it at transport boundaries.
package pagination

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Direction is a sort direction.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// String returns the upper-case direction name ("ASC" or "DESC").
func (d Direction) String() string {
	if d == Descending {
		return "DESC"
	}
	return "ASC"
}

// ParseDirection parses "asc" or "desc" case-insensitively.
func ParseDirection(value string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "asc":
		return Ascending, nil
	case "desc":
		return Descending, nil
	default:
		return Ascending, fmt.Errorf("invalid sort direction: %q", value)
	}
}

// SortKey orders results by one field.
type SortKey struct {
	Field     string
	Direction Direction
}

// Spec selects one zero-based page of a result set and its ordering.
// An empty Sort means the store's natural order.
type Spec struct {
	Index int
	Size  int
	Sort  []SortKey
}

// NewSpec validates and builds a page specification.
func NewSpec(index, size int, sort []SortKey) (Spec, error) {
	if index < 0 {
		return Spec{}, fmt.Errorf("page index must be zero or greater, got %d", index)
	}
	if size < 1 {
		return Spec{}, fmt.Errorf("page size must be greater than zero, got %d", size)
	}
	for _, key := range sort {
		if strings.TrimSpace(key.Field) == "" {
			return Spec{}, errors.New("sort field is required")
		}
	}
	return Spec{Index: index, Size: size, Sort: append([]SortKey(nil), sort...)}, nil
}

// Offset returns the number of elements preceding the page. ok is false when
// the offset does not fit in an int, in which case the page is necessarily
// past the end of any result set.
func (s Spec) Offset() (offset int, ok bool) {
	if s.Size > 0 && s.Index > math.MaxInt/s.Size {
		return 0, false
	}
	return s.Index * s.Size, true
}

// Window returns the [start, end) bounds of the page within total elements.
func (s Spec) Window(total int) (start, end int) {
	offset, ok := s.Offset()
	if !ok || offset >= total {
		return total, total
	}
	end = total
	if remaining := total - offset; remaining > s.Size {
		end = offset + s.Size
	}
	return offset, end
}

// TotalPages returns how many pages of size hold total elements.
func TotalPages(total int64, size int) int64 {
	if size <= 0 || total <= 0 {
		return 0
	}
	return (total + int64(size) - 1) / int64(size)
}

// PageSizeConfig configures page size normalization.
type PageSizeConfig struct {
	Default int
	Max     int
}

// ClampPageSize applies defaults and limits for page sizes.
func ClampPageSize(value int, cfg PageSizeConfig) int {
	pageSize := value
	if pageSize <= 0 {
		pageSize = cfg.Default
	}
	if cfg.Max > 0 && pageSize > cfg.Max {
		pageSize = cfg.Max
	}
	if pageSize <= 0 {
		pageSize = 1
	}
	return pageSize
}
