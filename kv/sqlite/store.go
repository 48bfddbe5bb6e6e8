// Package sqlite implements kv.Store on a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mwantia/agentfs/kv"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database at dbPath and creates the item table.
// The dbPath can be ":memory:" for an in-memory database or a file path.
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if dbPath == ":memory:" {
		// Every connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	} else if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (ss *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv_items (
		namespace TEXT NOT NULL,
		key TEXT NOT NULL,
		value BLOB NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (namespace, key)
	);
	`

	_, err := ss.db.ExecContext(ctx, schema)
	return err
}

func (ss *SQLiteStore) Get(ctx context.Context, namespace []string, key string) (*kv.Item, error) {
	row := ss.db.QueryRowContext(ctx, `
		SELECT namespace, key, value, created_at, updated_at
		FROM kv_items WHERE namespace = ? AND key = ?
	`, kv.EncodeNamespace(namespace), key)

	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, kv.ErrNotFound
	}

	return item, err
}

func (ss *SQLiteStore) Put(ctx context.Context, namespace []string, key string, value map[string]any) error {
	buf, err := kv.MarshalValue(value)
	if err != nil {
		return err
	}

	now := time.Now().UnixNano()
	_, err = ss.db.ExecContext(ctx, `
		INSERT INTO kv_items (namespace, key, value, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (namespace, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, kv.EncodeNamespace(namespace), key, buf, now, now)

	return err
}

func (ss *SQLiteStore) Search(ctx context.Context, prefix []string, filter map[string]any, limit, offset int) ([]*kv.Item, error) {
	pivot := kv.EncodeNamespace(prefix)
	query := `
		SELECT namespace, key, value, created_at, updated_at
		FROM kv_items WHERE substr(namespace, 1, length(?)) = ?
		ORDER BY namespace, key
	`
	args := []any{pivot, pivot}

	// Without a filter the database can page directly
	paged := len(filter) == 0
	if paged {
		if limit <= 0 {
			limit = -1
		}
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, max(offset, 0))
	}

	rows, err := ss.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*kv.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}

		if kv.MatchesFilter(item.Value, filter) {
			items = append(items, item)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if paged {
		return items, nil
	}

	return kv.Paginate(items, limit, offset), nil
}

func (ss *SQLiteStore) Close() error {
	return ss.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (*kv.Item, error) {
	var namespace, key string
	var buf []byte
	var createdAt, updatedAt int64

	if err := row.Scan(&namespace, &key, &buf, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	value, err := kv.UnmarshalValue(buf)
	if err != nil {
		return nil, err
	}

	return &kv.Item{
		Namespace: kv.DecodeNamespace(namespace),
		Key:       key,
		Value:     value,
		CreatedAt: time.Unix(0, createdAt).UTC(),
		UpdatedAt: time.Unix(0, updatedAt).UTC(),
	}, nil
}
