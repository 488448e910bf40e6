// Package storage defines persistence contracts for string entries.
package storage

import (
	"cmp"
	"context"
	"strings"
	"time"

	"github.com/saulotoledo/strings-database/internal/platform/pagination"
)

// Sortable record fields.
const (
	FieldID        = "id"
	FieldValue     = "value"
	FieldCreatedAt = "createdAt"
)

// SortConfig accepts the sortable fields plus the snake_case spelling of
// createdAt used by AIP order_by expressions.
var SortConfig = pagination.SortConfig{
	Allowed: []string{FieldID, FieldValue, FieldCreatedAt},
	Aliases: map[string]string{"created_at": FieldCreatedAt},
}

// Record is one stored string entry. ID and CreatedAt are assigned by the
// store on Create and never change afterwards.
type Record struct {
	ID        int64
	Value     string
	CreatedAt time.Time
}

// Filter restricts a scan to records whose value contains Substring. The
// zero value matches everything.
type Filter struct {
	Substring string
	Present   bool
}

// NoFilter matches every record.
func NoFilter() Filter {
	return Filter{}
}

// Contains matches records whose value contains substring, case-sensitively.
func Contains(substring string) Filter {
	return Filter{Substring: substring, Present: true}
}

// Match reports whether value passes the filter.
func (f Filter) Match(value string) bool {
	return !f.Present || strings.Contains(value, f.Substring)
}

// ScanResult is one window of a scan plus the number of records matching
// the filter before windowing.
type ScanResult struct {
	Records []Record
	Total   int64
}

// Store persists string entries.
type Store interface {
	// Create assigns an id and creation time to record and persists it.
	Create(ctx context.Context, record Record) (Record, error)
	// Get returns the record with id; found is false when it does not exist.
	Get(ctx context.Context, id int64) (record Record, found bool, err error)
	// Scan returns the page of filtered records ordered by page.Sort, with
	// ties and the unsorted case ordered by id ascending.
	Scan(ctx context.Context, filter Filter, page pagination.Spec) (ScanResult, error)
}

// Compare orders a and b by keys, breaking ties by id ascending.
func Compare(a, b Record, keys []pagination.SortKey) int {
	for _, key := range keys {
		var c int
		switch key.Field {
		case FieldID:
			c = cmp.Compare(a.ID, b.ID)
		case FieldValue:
			c = strings.Compare(a.Value, b.Value)
		case FieldCreatedAt:
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if key.Direction == pagination.Descending {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return cmp.Compare(a.ID, b.ID)
}
