// Package sqlite persists obtusify call history in SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/obtuse.units/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/obtuse.units/internal/services/obtuse/storage"
	"github.com/louisbranch/obtuse.units/internal/services/obtuse/storage/filter"
	"github.com/louisbranch/obtuse.units/internal/services/obtuse/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed call history.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a history SQLite store and applies migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if _, err := sqlitemigrate.ApplyMigrations(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close releases the SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// RecordCall persists one call and returns its id.
func (s *Store) RecordCall(ctx context.Context, call storage.CallRecord) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}

	call.SeedSource = strings.TrimSpace(call.SeedSource)
	call.Code = strings.TrimSpace(call.Code)
	call.Surface = strings.TrimSpace(call.Surface)
	if call.SeedSource == "" {
		return 0, fmt.Errorf("seed source is required")
	}
	if call.Code == "" {
		return 0, fmt.Errorf("code is required")
	}
	if call.Loops < 1 {
		return 0, fmt.Errorf("loops must be at least 1")
	}
	if call.CreatedAt.IsZero() {
		call.CreatedAt = time.Now().UTC()
	}

	res, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO obtusify_calls (
	seed,
	seed_source,
	surface,
	value,
	dim_mass,
	dim_length,
	dim_time,
	dim_current,
	loops,
	min_value_order,
	max_value_order,
	max_prefixes,
	spread,
	text,
	code,
	created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		call.Seed,
		call.SeedSource,
		call.Surface,
		call.Value,
		call.Dims[0],
		call.Dims[1],
		call.Dims[2],
		call.Dims[3],
		call.Loops,
		nullInt(call.MinValueOrder),
		nullInt(call.MaxValueOrder),
		nullInt(call.MaxPrefixes),
		nullFloat(call.Spread),
		call.Text,
		call.Code,
		call.CreatedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("record call: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("record call id: %w", err)
	}
	return id, nil
}

const selectCalls = `
SELECT
	id,
	seed,
	seed_source,
	surface,
	value,
	dim_mass,
	dim_length,
	dim_time,
	dim_current,
	loops,
	min_value_order,
	max_value_order,
	max_prefixes,
	spread,
	text,
	code,
	created_at
FROM obtusify_calls
`

// GetCall returns the call with id, or storage.ErrNotFound.
func (s *Store) GetCall(ctx context.Context, id int64) (storage.CallRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.CallRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.CallRecord{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(ctx, selectCalls+"WHERE id = ?", id)
	record, err := scanCall(row)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.CallRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.CallRecord{}, fmt.Errorf("get call: %w", err)
	}
	return record, nil
}

// ListCalls lists call records matching query, newest first unless
// query.OldestFirst is set.
func (s *Store) ListCalls(ctx context.Context, query storage.CallQuery) ([]storage.CallRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if query.Limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}
	if query.Offset < 0 {
		return nil, fmt.Errorf("offset must not be negative")
	}

	cond, err := filter.ParseHistoryFilter(query.Filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrInvalidFilter, err)
	}

	stmt := selectCalls
	params := make([]any, 0, len(cond.Params)+2)
	if cond.Clause != "" {
		stmt += "WHERE " + cond.Clause + "\n"
		params = append(params, cond.Params...)
	}
	if query.OldestFirst {
		stmt += "ORDER BY created_at ASC, id ASC\n"
	} else {
		stmt += "ORDER BY created_at DESC, id DESC\n"
	}
	stmt += "LIMIT ? OFFSET ?"
	params = append(params, query.Limit, query.Offset)

	rows, err := s.sqlDB.QueryContext(ctx, stmt, params...)
	if err != nil {
		return nil, fmt.Errorf("list calls: %w", err)
	}
	defer rows.Close()

	records := make([]storage.CallRecord, 0, query.Limit)
	for rows.Next() {
		record, err := scanCall(rows)
		if err != nil {
			return nil, fmt.Errorf("scan call: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate calls: %w", err)
	}
	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCall(row scanner) (storage.CallRecord, error) {
	var (
		record                       storage.CallRecord
		minOrder, maxOrder, prefixes sql.NullInt64
		spread                       sql.NullFloat64
		createdAt                    int64
	)
	if err := row.Scan(
		&record.ID,
		&record.Seed,
		&record.SeedSource,
		&record.Surface,
		&record.Value,
		&record.Dims[0],
		&record.Dims[1],
		&record.Dims[2],
		&record.Dims[3],
		&record.Loops,
		&minOrder,
		&maxOrder,
		&prefixes,
		&spread,
		&record.Text,
		&record.Code,
		&createdAt,
	); err != nil {
		return storage.CallRecord{}, err
	}
	record.MinValueOrder = intPtr(minOrder)
	record.MaxValueOrder = intPtr(maxOrder)
	record.MaxPrefixes = intPtr(prefixes)
	if spread.Valid {
		v := spread.Float64
		record.Spread = &v
	}
	record.CreatedAt = time.UnixMilli(createdAt).UTC()
	return record, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

var _ storage.HistoryStore = (*Store)(nil)
