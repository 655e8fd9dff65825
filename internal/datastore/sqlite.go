package datastore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

// schema holds every document in a single table; ids are unique across
// kinds, like a datastore key allocator.
const schema = `
CREATE TABLE IF NOT EXISTS entities (
    id   INTEGER PRIMARY KEY AUTOINCREMENT,
    kind TEXT NOT NULL,
    doc  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_entities_kind ON entities(kind);
`

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLite implements Store on a SQLite database.
type SQLite struct {
	db *sql.DB
	q  querier
}

// Open opens a SQLite-backed store and configures pragmas.
func Open(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// An in-memory database exists per connection; the pool must not
	// open a second one.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	return &SQLite{db: db, q: db}, nil
}

// EnsureSchema creates the entities table if it does not already exist.
func (s *SQLite) EnsureSchema() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Get implements Store.
func (s *SQLite) Get(ctx context.Context, kind string, id int64) (*Entity, error) {
	var doc []byte
	err := s.q.QueryRowContext(ctx,
		`SELECT doc FROM entities WHERE kind = ? AND id = ?`, kind, id,
	).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, ErrNoSuchEntity
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s/%d: %w", kind, id, err)
	}
	return &Entity{Kind: kind, ID: id, Doc: doc}, nil
}

// Put implements Store.
func (s *SQLite) Put(ctx context.Context, kind string, id int64, doc json.RawMessage) (int64, error) {
	if id == 0 {
		result, err := s.q.ExecContext(ctx,
			`INSERT INTO entities (kind, doc) VALUES (?, ?)`, kind, string(doc),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting %s: %w", kind, err)
		}
		newID, err := result.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("getting assigned id: %w", err)
		}
		return newID, nil
	}

	_, err := s.q.ExecContext(ctx,
		`INSERT INTO entities (id, kind, doc) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET kind = excluded.kind, doc = excluded.doc`,
		id, kind, string(doc),
	)
	if err != nil {
		return 0, fmt.Errorf("putting %s/%d: %w", kind, id, err)
	}
	return id, nil
}

// Delete implements Store.
func (s *SQLite) Delete(ctx context.Context, kind string, id int64) error {
	if _, err := s.q.ExecContext(ctx,
		`DELETE FROM entities WHERE kind = ? AND id = ?`, kind, id,
	); err != nil {
		return fmt.Errorf("deleting %s/%d: %w", kind, id, err)
	}
	return nil
}

// DeleteMulti implements Store.
func (s *SQLite) DeleteMulti(ctx context.Context, kind string, ids []int64) error {
	for _, id := range ids {
		if err := s.Delete(ctx, kind, id); err != nil {
			return err
		}
	}
	return nil
}

// Query implements Store.
func (s *SQLite) Query(ctx context.Context, kind, field string, value any, limit, offset int) ([]Entity, error) {
	if limit < 0 {
		limit = -1 // SQLite: no limit
	}

	var rows *sql.Rows
	var err error
	if field == "" {
		rows, err = s.q.QueryContext(ctx,
			`SELECT id, doc FROM entities WHERE kind = ?
			 ORDER BY id LIMIT ? OFFSET ?`,
			kind, limit, offset,
		)
	} else {
		rows, err = s.q.QueryContext(ctx,
			`SELECT id, doc FROM entities
			 WHERE kind = ? AND json_extract(doc, ?) = ?
			 ORDER BY id LIMIT ? OFFSET ?`,
			kind, "$."+field, value, limit, offset,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", kind, err)
	}
	defer rows.Close()

	var entities []Entity
	for rows.Next() {
		var ent Entity
		var doc []byte
		if err := rows.Scan(&ent.ID, &doc); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", kind, err)
		}
		ent.Kind = kind
		ent.Doc = doc
		entities = append(entities, ent)
	}
	return entities, rows.Err()
}

// Count implements Store.
func (s *SQLite) Count(ctx context.Context, kind, field string, value any) (int, error) {
	var n int
	var err error
	if field == "" {
		err = s.q.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM entities WHERE kind = ?`, kind,
		).Scan(&n)
	} else {
		err = s.q.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM entities WHERE kind = ? AND json_extract(doc, ?) = ?`,
			kind, "$."+field, value,
		).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", kind, err)
	}
	return n, nil
}

// Transact implements Store. Calling Transact on a store that is already
// transactional runs fn in the enclosing transaction.
func (s *SQLite) Transact(ctx context.Context, fn func(tx Store) error) error {
	if _, nested := s.q.(*sql.Tx); nested {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&SQLite{db: s.db, q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
