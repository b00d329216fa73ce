package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DefaultPollInterval is how often a SQLite feed checks for new changes.
const DefaultPollInterval = 250 * time.Millisecond

// SQLite is a Database backed by a single SQLite file. Every mutation is
// appended to a changes table; feeds poll it, so writes from other processes
// using the same file are observed.
type SQLite struct {
	db   *sql.DB
	path string

	// PollInterval is read when Changes is called.
	PollInterval time.Duration

	closeOnce sync.Once
	closed    chan struct{}
}

var _ Database = (*SQLite)(nil)

// OpenSQLite opens or creates the database file at path. The schema is
// created if it doesn't exist and parent directories are created as needed.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("store: sqlite path required")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	// One connection keeps writes ordered with the changes table.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: set busy timeout: %w", err)
	}

	s := &SQLite{
		db:           db,
		path:         path,
		PollInterval: DefaultPollInterval,
		closed:       make(chan struct{}),
	}
	if err := s.createSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}
	return s, nil
}

func (s *SQLite) createSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS docs (
			id TEXT PRIMARY KEY,
			parent_id TEXT,
			body TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_docs_parent_id ON docs(parent_id);

		CREATE TABLE IF NOT EXISTS changes (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			doc_id TEXT NOT NULL,
			deleted INTEGER NOT NULL DEFAULT 0
		);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Path is the database file.
func (s *SQLite) Path() string {
	return s.path
}

func (s *SQLite) Get(ctx context.Context, id string) (Doc, error) {
	var body string
	err := s.db.QueryRowContext(ctx, "SELECT body FROM docs WHERE id = ?", id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get %s: %w", id, err)
	}
	doc, err := decodeDoc([]byte(body))
	if err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", id, err)
	}
	return doc, nil
}

func (s *SQLite) Put(ctx context.Context, doc Doc) error {
	id, err := requireID(doc)
	if err != nil {
		return err
	}
	return s.upsert(ctx, id, doc)
}

func (s *SQLite) Post(ctx context.Context, doc Doc) (string, error) {
	stored := doc.Clone()
	if stored == nil {
		stored = Doc{}
	}
	id := uuid.New().String()
	stored[IDField] = id
	if err := s.upsert(ctx, id, stored); err != nil {
		return "", err
	}
	return id, nil
}

func (s *SQLite) upsert(ctx context.Context, id string, doc Doc) error {
	body, err := encodeDoc(doc)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", id, err)
	}
	return s.tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO docs (id, parent_id, body) VALUES (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET parent_id = excluded.parent_id, body = excluded.body
		`, id, parentColumn(doc), string(body)); err != nil {
			return fmt.Errorf("store: write %s: %w", id, err)
		}
		_, err := tx.ExecContext(ctx, "INSERT INTO changes (doc_id, deleted) VALUES (?, 0)", id)
		return err
	})
}

func (s *SQLite) Remove(ctx context.Context, doc Doc) error {
	id, err := requireID(doc)
	if err != nil {
		return err
	}
	return s.tx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM docs WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("store: remove %s: %w", id, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		_, err = tx.ExecContext(ctx, "INSERT INTO changes (doc_id, deleted) VALUES (?, 1)", id)
		return err
	})
}

func (s *SQLite) tx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Find uses the parent_id index when the selector only filters on
// parent_id and falls back to a scan otherwise. Results are ordered by id.
func (s *SQLite) Find(ctx context.Context, sel Selector) ([]Doc, error) {
	query := "SELECT body FROM docs ORDER BY id"
	var args []any
	if want, ok := sel["parent_id"]; ok && len(sel) == 1 {
		if col, indexed := parentValue(want); indexed {
			query = "SELECT body FROM docs WHERE parent_id = ? ORDER BY id"
			args = append(args, col)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: find: %w", err)
	}
	defer rows.Close()

	out := make([]Doc, 0)
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("store: scan: %w", err)
		}
		doc, err := decodeDoc([]byte(body))
		if err != nil {
			return nil, fmt.Errorf("store: decode: %w", err)
		}
		if sel.Match(doc) {
			out = append(out, doc)
		}
	}
	return out, rows.Err()
}

// Changes polls the changes table from its current head.
func (s *SQLite) Changes(ctx context.Context) (<-chan Change, error) {
	var head int64
	if err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(seq), 0) FROM changes").Scan(&head); err != nil {
		return nil, fmt.Errorf("store: read change head: %w", err)
	}
	interval := s.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	changes := make(chan Change, 64)
	go func() {
		defer close(changes)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.closed:
				return
			case <-ticker.C:
			}
			batch, next, err := s.changesSince(ctx, head)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				select {
				case changes <- Change{Err: err}:
				default:
				}
				continue
			}
			head = next
			for _, c := range batch {
				select {
				case changes <- c:
				case <-ctx.Done():
					return
				case <-s.closed:
					return
				}
			}
		}
	}()
	return changes, nil
}

func (s *SQLite) changesSince(ctx context.Context, seq int64) ([]Change, int64, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT seq, doc_id, deleted FROM changes WHERE seq > ? ORDER BY seq", seq)
	if err != nil {
		return nil, seq, fmt.Errorf("store: poll changes: %w", err)
	}
	defer rows.Close()
	var out []Change
	for rows.Next() {
		var (
			c       Change
			deleted int
		)
		if err := rows.Scan(&seq, &c.ID, &deleted); err != nil {
			return nil, seq, fmt.Errorf("store: scan change: %w", err)
		}
		c.Deleted = deleted != 0
		out = append(out, c)
	}
	return out, seq, rows.Err()
}

func (s *SQLite) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closed)
		err = s.db.Close()
	})
	return err
}

// parentColumn maps a document's parent_id to the indexed column: the id for
// string parents, "" for the false root sentinel and NULL otherwise.
func parentColumn(doc Doc) any {
	v, ok := doc["parent_id"]
	if !ok {
		return nil
	}
	col, indexed := parentValue(v)
	if !indexed {
		return nil
	}
	return col
}

func parentValue(v any) (string, bool) {
	switch p := v.(type) {
	case string:
		return p, true
	case bool:
		if !p {
			return "", true
		}
	}
	return "", false
}
