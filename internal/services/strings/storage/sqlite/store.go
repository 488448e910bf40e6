// Package sqlite provides a SQLite-backed string storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/saulotoledo/strings-database/internal/platform/pagination"
	"github.com/saulotoledo/strings-database/internal/platform/storage/sqlmigrate"
	"github.com/saulotoledo/strings-database/internal/services/strings/storage"
	"github.com/saulotoledo/strings-database/internal/services/strings/storage/sqlite/migrations"
	"go.nhat.io/otelsql"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	_ "modernc.org/sqlite"
)

var registerDriver = sync.OnceValues(func() (string, error) {
	return otelsql.Register(
		"sqlite",
		otelsql.TraceQueryWithoutArgs(),
		otelsql.TraceRowsClose(),
		otelsql.TraceRowsAffected(),
		otelsql.WithSystem(semconv.DBSystemSqlite),
	)
})

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

// Store persists string entries in SQLite.
type Store struct {
	sqlDB *sql.DB
	clock func() time.Time
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite string store and applies embedded migrations.
func Open(path string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	driver, err := registerDriver()
	if err != nil {
		return nil, fmt.Errorf("register sqlite driver: %w", err)
	}
	cleanPath := filepath.Clean(path)
	dsn := "file:" + cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := otelsql.RecordStats(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("record sqlite stats: %w", err)
	}
	if err := sqlmigrate.Apply(context.Background(), sqlDB, sqlmigrate.SQLite, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	store := &Store{sqlDB: sqlDB, clock: time.Now}
	for _, opt := range opts {
		opt(store)
	}
	return store, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Create inserts one record with a store-assigned id and creation time.
func (s *Store) Create(ctx context.Context, record storage.Record) (storage.Record, error) {
	if err := ctx.Err(); err != nil {
		return storage.Record{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Record{}, fmt.Errorf("storage is not configured")
	}

	createdAt := s.clock().UTC().Truncate(time.Millisecond)
	var id int64
	err := s.sqlDB.QueryRowContext(
		ctx,
		`INSERT INTO strings (value, created_at) VALUES (?, ?) RETURNING id`,
		record.Value,
		toMillis(createdAt),
	).Scan(&id)
	if err != nil {
		return storage.Record{}, fmt.Errorf("create string: %w", err)
	}
	return storage.Record{ID: id, Value: record.Value, CreatedAt: createdAt}, nil
}

// Get returns one record by id.
func (s *Store) Get(ctx context.Context, id int64) (storage.Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return storage.Record{}, false, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Record{}, false, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, value, created_at FROM strings WHERE id = ?`,
		id,
	)
	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Record{}, false, nil
		}
		return storage.Record{}, false, fmt.Errorf("get string: %w", err)
	}
	return record, true, nil
}

// Scan returns one page of filtered, ordered records. The count and the
// window are read from the same snapshot.
func (s *Store) Scan(ctx context.Context, filter storage.Filter, page pagination.Spec) (storage.ScanResult, error) {
	if err := ctx.Err(); err != nil {
		return storage.ScanResult{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.ScanResult{}, fmt.Errorf("storage is not configured")
	}
	orderBy, err := orderClause(page.Sort)
	if err != nil {
		return storage.ScanResult{}, err
	}

	where := ""
	var args []any
	if filter.Present {
		where = " WHERE instr(value, ?) > 0"
		args = append(args, filter.Substring)
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return storage.ScanResult{}, fmt.Errorf("begin scan: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var total int64
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM strings`+where, args...).Scan(&total); err != nil {
		return storage.ScanResult{}, fmt.Errorf("count strings: %w", err)
	}
	result := storage.ScanResult{Records: []storage.Record{}, Total: total}
	offset, ok := page.Offset()
	if !ok || int64(offset) >= total {
		return result, nil
	}

	rows, err := tx.QueryContext(
		ctx,
		`SELECT id, value, created_at FROM strings`+where+` ORDER BY `+orderBy+` LIMIT ? OFFSET ?`,
		append(args, page.Size, offset)...,
	)
	if err != nil {
		return storage.ScanResult{}, fmt.Errorf("scan strings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return storage.ScanResult{}, fmt.Errorf("scan strings: %w", err)
		}
		result.Records = append(result.Records, record)
	}
	if err := rows.Err(); err != nil {
		return storage.ScanResult{}, fmt.Errorf("scan strings: %w", err)
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (storage.Record, error) {
	var record storage.Record
	var createdAt int64
	if err := row.Scan(&record.ID, &record.Value, &createdAt); err != nil {
		return storage.Record{}, err
	}
	record.CreatedAt = fromMillis(createdAt)
	return record, nil
}

var sortColumns = map[string]string{
	storage.FieldID:        "id",
	storage.FieldValue:     "value",
	storage.FieldCreatedAt: "created_at",
}

// orderClause renders keys against a fixed column whitelist and appends the
// id tie-break.
func orderClause(keys []pagination.SortKey) (string, error) {
	terms := make([]string, 0, len(keys)+1)
	for _, key := range keys {
		column, ok := sortColumns[key.Field]
		if !ok {
			return "", fmt.Errorf("unsupported sort field %q", key.Field)
		}
		terms = append(terms, column+" "+key.Direction.String())
	}
	terms = append(terms, "id ASC")
	return strings.Join(terms, ", "), nil
}

var _ storage.Store = (*Store)(nil)
