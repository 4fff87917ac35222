// Package sqlite provides a SQLite-backed object store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	storepkg "github.com/cirruslabs/etagd/internal/store"
	"github.com/cirruslabs/etagd/internal/store/sqlite/migrations"
	"path/filepath"
	"strings"
	"time"

	// Registers the "sqlite" database/sql driver
	_ "modernc.org/sqlite"
)

const selectRecord = `SELECT key, etag, confirmed_at FROM objects WHERE key = ?`

// SQLite persists object records in a single table keyed by the storage key.
type SQLite struct {
	db *sql.DB
}

// Open opens (creating if necessary) a SQLite database at path and applies embedded migrations.
func Open(ctx context.Context, path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := "file:" + filepath.Clean(path) +
		"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if err := migrate(ctx, db, migrations.FS); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (sqlite *SQLite) Close() error {
	return sqlite.db.Close()
}

func (sqlite *SQLite) Get(ctx context.Context, key string) (*storepkg.Record, error) {
	record, err := scanRecord(sqlite.db.QueryRowContext(ctx, selectRecord, key))
	if err != nil {
		return nil, fmt.Errorf("get object record %q: %w", key, err)
	}

	return record, nil
}

func (sqlite *SQLite) FindOrCreate(
	ctx context.Context,
	key string,
	defaults storepkg.Record,
) (*storepkg.Record, bool, error) {
	// Loses gracefully to a concurrent insert of the same key,
	// in which case we'll read the winner's row below
	result, err := sqlite.db.ExecContext(ctx,
		`INSERT INTO objects (key, etag, confirmed_at) VALUES (?, ?, ?) ON CONFLICT (key) DO NOTHING`,
		key, nullString(defaults.ETag), nullMillis(defaults.ConfirmedAt))
	if err != nil {
		return nil, false, fmt.Errorf("create object record %q: %w", key, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("create object record %q: %w", key, err)
	}

	record, err := scanRecord(sqlite.db.QueryRowContext(ctx, selectRecord, key))
	if err != nil {
		return nil, false, fmt.Errorf("find object record %q: %w", key, err)
	}

	return record, rowsAffected == 1, nil
}

func (sqlite *SQLite) Update(ctx context.Context, key string, etag string, confirmedAt time.Time) error {
	result, err := sqlite.db.ExecContext(ctx,
		`UPDATE objects SET etag = ?, confirmed_at = ? WHERE key = ?`,
		nullString(etag), nullMillis(confirmedAt), key)
	if err != nil {
		return fmt.Errorf("update object record %q: %w", key, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update object record %q: %w", key, err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("update object record %q: %w", key, storepkg.ErrNotFound)
	}

	return nil
}

func scanRecord(row *sql.Row) (*storepkg.Record, error) {
	var record storepkg.Record
	var etag sql.NullString
	var confirmedAt sql.NullInt64

	if err := row.Scan(&record.Key, &etag, &confirmedAt); err != nil {
		// Convert the error for consumer's convenience
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storepkg.ErrNotFound
		}

		return nil, err
	}

	record.ETag = etag.String

	if confirmedAt.Valid {
		record.ConfirmedAt = time.UnixMilli(confirmedAt.Int64).UTC()
	}

	return &record, nil
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}

func nullMillis(value time.Time) sql.NullInt64 {
	return sql.NullInt64{Int64: value.UTC().UnixMilli(), Valid: !value.IsZero()}
}
