// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache maintains a local SQLite index of note metadata so that
// listing and title search work without a network round trip. The cache is
// replaced wholesale from the API response of every successful note list;
// it is an acceleration layer, never the source of truth.
package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/hackmd-cli/pkg/types"
)

const dbFile = "notes.db"

// Store manages the note cache database.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the per-user cache location,
// typically ~/.cache/hackmd/notes.db.
func DefaultPath() string {
	return filepath.Join(xdg.CacheHome, "hackmd", dbFile)
}

// Open opens or creates the cache database at path, creating the schema
// if it does not exist.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS notes (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			created_at INTEGER,
			last_changed_at INTEGER,
			publish_link TEXT,
			fetched_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notes_last_changed ON notes(last_changed_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table over titles with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='notes_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE notes_fts USING fts5(title, content=notes, content_rowid=rowid)`,
			`CREATE TRIGGER notes_ai AFTER INSERT ON notes BEGIN
				INSERT INTO notes_fts(rowid, title) VALUES (new.rowid, new.title);
			END`,
			`CREATE TRIGGER notes_ad AFTER DELETE ON notes BEGIN
				INSERT INTO notes_fts(notes_fts, rowid, title) VALUES('delete', old.rowid, old.title);
			END`,
			`CREATE TRIGGER notes_au AFTER UPDATE ON notes BEGIN
				INSERT INTO notes_fts(notes_fts, rowid, title) VALUES('delete', old.rowid, old.title);
				INSERT INTO notes_fts(rowid, title) VALUES (new.rowid, new.title);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}
	return nil
}

// Refresh replaces the cached notes with the given set in one transaction.
func (s *Store) Refresh(ctx context.Context, notes []types.Note) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM notes`); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}

	fetchedAt := time.Now().UTC().Format(time.RFC3339)
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO notes
		(id, title, created_at, last_changed_at, publish_link, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, n := range notes {
		title := n.Title
		if title == "" {
			title = "Untitled"
		}
		if _, err := stmt.ExecContext(ctx, n.ID, title, n.CreatedAt, n.LastChangedAt, n.PublishLink, fetchedAt); err != nil {
			return fmt.Errorf("caching note %s: %w", n.ID, err)
		}
	}

	return tx.Commit()
}

// List returns cached notes ordered by last change, newest first.
// A limit of 0 returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]types.Note, error) {
	query := `SELECT id, title, created_at, last_changed_at, publish_link
		FROM notes ORDER BY last_changed_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying cache: %w", err)
	}
	defer rows.Close()

	return scanNotes(rows)
}

// Search runs an FTS5 match over cached titles, best match first.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]types.Note, error) {
	match := ftsQuery(query)
	if match == "" {
		return nil, fmt.Errorf("search query is empty")
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `SELECT n.id, n.title, n.created_at, n.last_changed_at, n.publish_link
		FROM notes_fts f
		JOIN notes n ON n.rowid = f.rowid
		WHERE notes_fts MATCH ?
		ORDER BY rank
		LIMIT ?`, match, limit)
	if err != nil {
		return nil, fmt.Errorf("searching cache: %w", err)
	}
	defer rows.Close()

	return scanNotes(rows)
}

// FetchedAt returns when the cache was last refreshed, or the zero time
// for an empty cache.
func (s *Store) FetchedAt(ctx context.Context) (time.Time, error) {
	var stamp sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT max(fetched_at) FROM notes`).Scan(&stamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("querying cache age: %w", err)
	}
	if !stamp.Valid || stamp.String == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, stamp.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing cache timestamp: %w", err)
	}
	return t, nil
}

func scanNotes(rows *sql.Rows) ([]types.Note, error) {
	var notes []types.Note
	for rows.Next() {
		var n types.Note
		var publishLink sql.NullString
		if err := rows.Scan(&n.ID, &n.Title, &n.CreatedAt, &n.LastChangedAt, &publishLink); err != nil {
			return nil, fmt.Errorf("scanning note row: %w", err)
		}
		n.PublishLink = publishLink.String
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// ftsQuery quotes each whitespace-separated term so user input cannot be
// interpreted as FTS5 syntax. Terms are implicitly ANDed.
func ftsQuery(query string) string {
	fields := strings.Fields(query)
	quoted := make([]string, 0, len(fields))
	for _, f := range fields {
		quoted = append(quoted, `"`+strings.ReplaceAll(f, `"`, `""`)+`"`)
	}
	return strings.Join(quoted, " ")
}
