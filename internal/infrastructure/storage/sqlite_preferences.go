package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"github.com/santoshbammigatti/ce-sdm-frontend/internal/ports"
)

const preferencesTable = "preferences"

const preferencesSchema = `CREATE TABLE IF NOT EXISTS preferences (
	name       TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLitePreferences keeps agent preferences (approver, last thread) in a
// local SQLite file.
type SQLitePreferences struct {
	db  *sql.DB
	now func() time.Time
}

var _ ports.PreferenceRepository = (*SQLitePreferences)(nil)

// OpenPreferences opens (and creates) the database at path.
func OpenPreferences(ctx context.Context, path string) (*SQLitePreferences, error) {
	p := filepath.Clean(strings.TrimSpace(path))
	if p == "" || p == "." {
		return nil, errors.New("missing preferences path")
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return nil, fmt.Errorf("create preferences dir: %w", err)
	}

	db, err := sql.Open("sqlite", p)
	if err != nil {
		return nil, fmt.Errorf("open preferences: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, preferencesSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init preferences schema: %w", err)
	}

	return NewSQLitePreferences(db), nil
}

// NewSQLitePreferences wraps an already initialised database.
func NewSQLitePreferences(db *sql.DB) *SQLitePreferences {
	return &SQLitePreferences{db: db, now: time.Now}
}

// Get returns the stored value and whether it exists.
func (r *SQLitePreferences) Get(ctx context.Context, key string) (string, bool, error) {
	if r.db == nil {
		return "", false, nil
	}

	query, args, err := sq.Select("value").
		From(preferencesTable).
		Where(sq.Eq{"name": key}).
		Limit(1).
		ToSql()
	if err != nil {
		return "", false, fmt.Errorf("build select: %w", err)
	}

	var value string
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select preference %s: %w", key, err)
	}
	return value, true, nil
}

// Set upserts key.
func (r *SQLitePreferences) Set(ctx context.Context, key, value string) error {
	if r.db == nil {
		return nil
	}

	query, args, err := sq.Insert(preferencesTable).
		Columns("name", "value", "updated_at").
		Values(key, value, r.now().Unix()).
		Suffix("ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert preference %s: %w", key, err)
	}
	return nil
}

// All returns every stored preference.
func (r *SQLitePreferences) All(ctx context.Context) (map[string]string, error) {
	result := map[string]string{}
	if r.db == nil {
		return result, nil
	}

	query, args, err := sq.Select("name", "value").From(preferencesTable).OrderBy("name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query preferences: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("scan preference: %w", err)
		}
		result[name] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return result, nil
}

// Close releases the database.
func (r *SQLitePreferences) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}
