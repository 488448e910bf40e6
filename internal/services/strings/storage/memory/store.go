// Package memory provides an in-process string entry store.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/saulotoledo/strings-database/internal/platform/pagination"
	"github.com/saulotoledo/strings-database/internal/services/strings/storage"
)

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the creation time source.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// Store keeps records in insertion order; ids start at 1.
type Store struct {
	mtx     sync.RWMutex
	records []storage.Record
	nextID  int64
	clock   func() time.Time
}

// NewStore returns an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		nextID: 1,
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create appends one record.
func (s *Store) Create(ctx context.Context, record storage.Record) (storage.Record, error) {
	if err := ctx.Err(); err != nil {
		return storage.Record{}, err
	}
	s.mtx.Lock()
	defer s.mtx.Unlock()

	created := storage.Record{
		ID:        s.nextID,
		Value:     record.Value,
		CreatedAt: s.clock().UTC().Truncate(time.Millisecond),
	}
	s.nextID++
	s.records = append(s.records, created)
	return created, nil
}

// Get returns one record by id.
func (s *Store) Get(ctx context.Context, id int64) (storage.Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return storage.Record{}, false, err
	}
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	// Records are appended with increasing ids.
	idx, found := slices.BinarySearchFunc(s.records, id, func(r storage.Record, target int64) int {
		switch {
		case r.ID < target:
			return -1
		case r.ID > target:
			return 1
		}
		return 0
	})
	if !found {
		return storage.Record{}, false, nil
	}
	return s.records[idx], true, nil
}

// Scan returns one page of filtered, ordered records.
func (s *Store) Scan(ctx context.Context, filter storage.Filter, page pagination.Spec) (storage.ScanResult, error) {
	if err := ctx.Err(); err != nil {
		return storage.ScanResult{}, err
	}
	s.mtx.RLock()
	matches := make([]storage.Record, 0, len(s.records))
	for _, record := range s.records {
		if filter.Match(record.Value) {
			matches = append(matches, record)
		}
	}
	s.mtx.RUnlock()

	if len(page.Sort) > 0 {
		slices.SortFunc(matches, func(a, b storage.Record) int {
			return storage.Compare(a, b, page.Sort)
		})
	}
	start, end := page.Window(len(matches))
	return storage.ScanResult{
		Records: slices.Clone(matches[start:end]),
		Total:   int64(len(matches)),
	}, nil
}

var _ storage.Store = (*Store)(nil)
