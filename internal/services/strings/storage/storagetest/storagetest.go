// Package storagetest is the behavioral suite every storage.Store
// implementation must pass.
package storagetest

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/saulotoledo/strings-database/internal/platform/pagination"
	"github.com/saulotoledo/strings-database/internal/services/strings/storage"
)

// Factory opens an empty store. A nil clock means the store's default.
type Factory func(t *testing.T, clock func() time.Time) storage.Store

// Run executes the suite against stores produced by open.
func Run(t *testing.T, open Factory) {
	t.Helper()

	tests := []struct {
		name string
		fn   func(*testing.T, Factory)
	}{
		{"CreateAssignsIdentity", testCreateAssignsIdentity},
		{"CreateIgnoresCallerIdentity", testCreateIgnoresCallerIdentity},
		{"GetRoundTrip", testGetRoundTrip},
		{"GetMissing", testGetMissing},
		{"ScanNaturalOrder", testScanNaturalOrder},
		{"ScanFilter", testScanFilter},
		{"ScanFilterIsCaseSensitive", testScanFilterIsCaseSensitive},
		{"ScanSortByValue", testScanSortByValue},
		{"ScanSortTiesByID", testScanSortTiesByID},
		{"ScanSortMultiKey", testScanSortMultiKey},
		{"ScanPageOutOfRange", testScanPageOutOfRange},
		{"ScanPagesReconstructSequence", testScanPagesReconstructSequence},
		{"ConcurrentCreates", testConcurrentCreates},
		{"CanceledContext", testCanceledContext},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.fn(t, open)
		})
	}
}

func testCreateAssignsIdentity(t *testing.T, open Factory) {
	store := open(t, nil)
	ctx := context.Background()
	before := time.Now().UTC().Add(-time.Second)

	seen := map[int64]bool{}
	for _, value := range []string{"a", "b", "c"} {
		created, err := store.Create(ctx, storage.Record{Value: value})
		if err != nil {
			t.Fatalf("create %q: %v", value, err)
		}
		if created.Value != value {
			t.Fatalf("value = %q, want %q", created.Value, value)
		}
		if seen[created.ID] {
			t.Fatalf("duplicate id %d", created.ID)
		}
		seen[created.ID] = true
		if created.CreatedAt.IsZero() {
			t.Fatal("expected created_at to be set")
		}
		if created.CreatedAt.Before(before) || created.CreatedAt.After(time.Now().UTC()) {
			t.Fatalf("created_at %v outside call window", created.CreatedAt)
		}
	}
}

func testCreateIgnoresCallerIdentity(t *testing.T, open Factory) {
	now := time.Date(2026, time.October, 15, 9, 30, 0, 0, time.UTC)
	store := open(t, fixedClock(now))
	ctx := context.Background()

	created, err := store.Create(ctx, storage.Record{
		ID:        999,
		Value:     "spoofed",
		CreatedAt: time.Date(1999, time.January, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 999 {
		t.Fatal("store must assign its own id")
	}
	if !created.CreatedAt.Equal(now) {
		t.Fatalf("created_at = %v, want store clock %v", created.CreatedAt, now)
	}
}

func testGetRoundTrip(t *testing.T, open Factory) {
	store := open(t, fixedClock(time.Date(2026, time.October, 15, 10, 0, 0, 123_000_000, time.UTC)))
	ctx := context.Background()

	created := mustCreate(t, store, "alpha one")
	first, found, err := store.Get(ctx, created.ID)
	if err != nil || !found {
		t.Fatalf("get: found=%v err=%v", found, err)
	}
	second, found, err := store.Get(ctx, created.ID)
	if err != nil || !found {
		t.Fatalf("second get: found=%v err=%v", found, err)
	}
	if !sameRecord(first, created) || !sameRecord(second, first) {
		t.Fatalf("get = %+v then %+v, want %+v", first, second, created)
	}
}

func testGetMissing(t *testing.T, open Factory) {
	store := open(t, nil)
	mustCreate(t, store, "present")

	record, found, err := store.Get(context.Background(), 1_000_000)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if found {
		t.Fatal("expected not found")
	}
	if record != (storage.Record{}) {
		t.Fatalf("record = %+v, want zero value", record)
	}
}

func testScanNaturalOrder(t *testing.T, open Factory) {
	store := open(t, nil)
	created := createAll(t, store, "c", "a", "b")

	result := mustScan(t, store, storage.NoFilter(), spec(t, 0, 10))
	assertIDs(t, result.Records, ids(created))
	if result.Total != 3 {
		t.Fatalf("total = %d, want 3", result.Total)
	}
}

func testScanFilter(t *testing.T, open Factory) {
	store := open(t, nil)
	createAll(t, store, "alpha one", "beta two", "alpha three")

	result := mustScan(t, store, storage.Contains("alpha"), spec(t, 0, 10))
	if result.Total != 2 {
		t.Fatalf("total = %d, want 2", result.Total)
	}
	assertValues(t, result.Records, "alpha one", "alpha three")

	result = mustScan(t, store, storage.Contains("zzz"), spec(t, 0, 10))
	if result.Total != 0 || len(result.Records) != 0 {
		t.Fatalf("zzz = %d records, total %d; want none", len(result.Records), result.Total)
	}

	result = mustScan(t, store, storage.Contains(""), spec(t, 0, 10))
	if result.Total != 3 {
		t.Fatalf("empty filter total = %d, want 3", result.Total)
	}
}

func testScanFilterIsCaseSensitive(t *testing.T, open Factory) {
	store := open(t, nil)
	createAll(t, store, "Alpha", "alpha", "ALPHA", "50% off", "under_score")

	result := mustScan(t, store, storage.Contains("alpha"), spec(t, 0, 10))
	assertValues(t, result.Records, "alpha")

	// Pattern characters are literal.
	result = mustScan(t, store, storage.Contains("%"), spec(t, 0, 10))
	assertValues(t, result.Records, "50% off")
	result = mustScan(t, store, storage.Contains("_"), spec(t, 0, 10))
	assertValues(t, result.Records, "under_score")
}

func testScanSortByValue(t *testing.T, open Factory) {
	store := open(t, nil)
	created := createAll(t, store, "c", "a", "b")

	asc := mustScan(t, store, storage.NoFilter(), spec(t, 0, 10, pagination.SortKey{Field: storage.FieldValue}))
	assertIDs(t, asc.Records, []int64{created[1].ID, created[2].ID, created[0].ID})

	desc := mustScan(t, store, storage.NoFilter(), spec(t, 0, 10, pagination.SortKey{
		Field:     storage.FieldValue,
		Direction: pagination.Descending,
	}))
	assertIDs(t, desc.Records, []int64{created[0].ID, created[2].ID, created[1].ID})
}

func testScanSortTiesByID(t *testing.T, open Factory) {
	store := open(t, nil)
	created := createAll(t, store, "same", "other", "same", "same")

	result := mustScan(t, store, storage.NoFilter(), spec(t, 0, 10, pagination.SortKey{
		Field:     storage.FieldValue,
		Direction: pagination.Descending,
	}))
	assertIDs(t, result.Records, []int64{created[0].ID, created[2].ID, created[3].ID, created[1].ID})
}

func testScanSortMultiKey(t *testing.T, open Factory) {
	store := open(t, steppingClock(time.Date(2026, time.October, 15, 8, 0, 0, 0, time.UTC), time.Second))
	created := createAll(t, store, "b", "a", "b", "a")

	result := mustScan(t, store, storage.NoFilter(), spec(t, 0, 10,
		pagination.SortKey{Field: storage.FieldValue},
		pagination.SortKey{Field: storage.FieldCreatedAt, Direction: pagination.Descending},
	))
	assertIDs(t, result.Records, []int64{created[3].ID, created[1].ID, created[2].ID, created[0].ID})

	result = mustScan(t, store, storage.NoFilter(), spec(t, 0, 10,
		pagination.SortKey{Field: storage.FieldCreatedAt, Direction: pagination.Descending},
	))
	assertIDs(t, result.Records, []int64{created[3].ID, created[2].ID, created[1].ID, created[0].ID})

	result = mustScan(t, store, storage.NoFilter(), spec(t, 0, 10,
		pagination.SortKey{Field: storage.FieldID, Direction: pagination.Descending},
	))
	assertIDs(t, result.Records, []int64{created[3].ID, created[2].ID, created[1].ID, created[0].ID})
}

func testScanPageOutOfRange(t *testing.T, open Factory) {
	store := open(t, nil)
	createAll(t, store, "one", "two", "three")

	result := mustScan(t, store, storage.NoFilter(), spec(t, 5, 2))
	if len(result.Records) != 0 {
		t.Fatalf("records = %d, want 0", len(result.Records))
	}
	if result.Total != 3 {
		t.Fatalf("total = %d, want 3", result.Total)
	}
}

func testScanPagesReconstructSequence(t *testing.T, open Factory) {
	store := open(t, steppingClock(time.Date(2026, time.October, 15, 7, 0, 0, 0, time.UTC), time.Millisecond))
	var all []storage.Record
	for i := 0; i < 23; i++ {
		all = append(all, mustCreate(t, store, fmt.Sprintf("item %d %s", i%5, []string{"x", "y", "z"}[i%3])))
	}

	filters := []storage.Filter{storage.NoFilter(), storage.Contains("item 2"), storage.Contains(" y")}
	sorts := [][]pagination.SortKey{
		nil,
		{{Field: storage.FieldValue}},
		{{Field: storage.FieldValue, Direction: pagination.Descending}, {Field: storage.FieldCreatedAt}},
	}
	for _, filter := range filters {
		for _, keys := range sorts {
			var want []storage.Record
			for _, record := range all {
				if filter.Match(record.Value) {
					want = append(want, record)
				}
			}
			slices.SortFunc(want, func(a, b storage.Record) int { return storage.Compare(a, b, keys) })

			for _, size := range []int{1, 4, 7, 50} {
				var got []storage.Record
				for index := 0; ; index++ {
					result := mustScan(t, store, filter, spec(t, index, size, keys...))
					if result.Total != int64(len(want)) {
						t.Fatalf("filter %+v size %d page %d: total = %d, want %d", filter, size, index, result.Total, len(want))
					}
					if len(result.Records) == 0 {
						break
					}
					if len(result.Records) > size {
						t.Fatalf("page has %d records, size %d", len(result.Records), size)
					}
					got = append(got, result.Records...)
				}
				assertIDs(t, got, ids(want))
			}
		}
	}
}

func testConcurrentCreates(t *testing.T, open Factory) {
	store := open(t, nil)
	const workers = 16

	var wg sync.WaitGroup
	createdIDs := make(chan int64, workers)
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			created, err := store.Create(context.Background(), storage.Record{Value: fmt.Sprintf("worker %d", i)})
			if err != nil {
				errs <- err
				return
			}
			createdIDs <- created.ID
		}(i)
	}
	wg.Wait()
	close(createdIDs)
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent create: %v", err)
	}

	seen := map[int64]bool{}
	for id := range createdIDs {
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
	result := mustScan(t, store, storage.NoFilter(), spec(t, 0, 1))
	if result.Total != workers {
		t.Fatalf("total = %d, want %d", result.Total, workers)
	}
}

func testCanceledContext(t *testing.T, open Factory) {
	store := open(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.Create(ctx, storage.Record{Value: "late"}); err == nil {
		t.Fatal("expected create to fail on canceled context")
	}
	result := mustScan(t, store, storage.NoFilter(), spec(t, 0, 10))
	if result.Total != 0 {
		t.Fatalf("total = %d, want 0 after canceled create", result.Total)
	}
}

func fixedClock(now time.Time) func() time.Time {
	return func() time.Time { return now }
}

func steppingClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := next
		next = next.Add(step)
		return now
	}
}

func spec(t *testing.T, index, size int, keys ...pagination.SortKey) pagination.Spec {
	t.Helper()
	page, err := pagination.NewSpec(index, size, keys)
	if err != nil {
		t.Fatalf("page spec: %v", err)
	}
	return page
}

func mustCreate(t *testing.T, store storage.Store, value string) storage.Record {
	t.Helper()
	created, err := store.Create(context.Background(), storage.Record{Value: value})
	if err != nil {
		t.Fatalf("create %q: %v", value, err)
	}
	return created
}

func createAll(t *testing.T, store storage.Store, values ...string) []storage.Record {
	t.Helper()
	created := make([]storage.Record, 0, len(values))
	for _, value := range values {
		created = append(created, mustCreate(t, store, value))
	}
	return created
}

func mustScan(t *testing.T, store storage.Store, filter storage.Filter, page pagination.Spec) storage.ScanResult {
	t.Helper()
	result, err := store.Scan(context.Background(), filter, page)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	return result
}

func ids(records []storage.Record) []int64 {
	out := make([]int64, 0, len(records))
	for _, record := range records {
		out = append(out, record.ID)
	}
	return out
}

func sameRecord(a, b storage.Record) bool {
	return a.ID == b.ID && a.Value == b.Value && a.CreatedAt.Equal(b.CreatedAt)
}

func assertIDs(t *testing.T, records []storage.Record, want []int64) {
	t.Helper()
	if got := ids(records); !slices.Equal(got, want) {
		t.Fatalf("ids = %v, want %v", got, want)
	}
}

func assertValues(t *testing.T, records []storage.Record, want ...string) {
	t.Helper()
	got := make([]string, 0, len(records))
	for _, record := range records {
		got = append(got, record.Value)
	}
	if !slices.Equal(got, want) {
		t.Fatalf("values = %q, want %q", got, want)
	}
}
