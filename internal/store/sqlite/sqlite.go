// Package sqlite provides the local-mode store driver. It backs development
// setups and the store compliance tests; production targets use postgres.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/salem-notes/notes-backend/internal/model"
	"github.com/salem-notes/notes-backend/internal/store"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS identities (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    subject     TEXT NOT NULL UNIQUE,
    email       TEXT,
    given_name  TEXT,
    family_name TEXT,
    created_at  TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS notes (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    owner_id   INTEGER NOT NULL REFERENCES identities (id) ON DELETE CASCADE,
    title      TEXT NOT NULL,
    content    TEXT NOT NULL,
    image_key  TEXT,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notes_owner ON notes (owner_id);
`

// Open opens (or creates) a SQLite database at the given path, enables WAL
// journal mode and foreign keys, and applies the schema. The special path
// ":memory:" opens a private in-memory database (used by tests).
func Open(path string) (*sql.DB, error) {
	var dsn string
	if path == ":memory:" {
		dsn = "file::memory:?_pragma=foreign_keys(ON)"
	} else {
		// ensure parent directory exists to avoid SQLITE_CANTOPEN errors
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// A single connection keeps an in-memory database alive and sidesteps
	// SQLITE_BUSY under concurrent writers.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// New opens the database at path and returns a store.Store backed by it.
func New(path string) (store.Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	return NewWithDB(db), nil
}

// NewWithDB wires a store around an existing connection.
func NewWithDB(db *sql.DB) store.Store { return &liteStore{db: db} }

type liteStore struct{ db *sql.DB }

func (s *liteStore) Identities() store.Identities { return &identities{db: s.db} }
func (s *liteStore) Notes() store.Notes           { return &notes{db: s.db} }

func (s *liteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// translate maps sqlite failures onto the store error contract. The modernc
// driver surfaces constraint failures as strings, so matching follows suit.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if err == sql.ErrNoRows {
		return model.ErrNotFound
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %v", model.ErrConflict, err)
	}
	if strings.Contains(msg, "FOREIGN KEY constraint failed") {
		return fmt.Errorf("%w: %v", model.ErrNotFound, err)
	}
	return err
}

// --- Identities ---

type identities struct{ db *sql.DB }

func (i *identities) Create(ctx context.Context, m *model.Identity) (*model.Identity, error) {
	now := time.Now().UTC()
	res, err := i.db.ExecContext(ctx, `
        INSERT INTO identities (subject, email, given_name, family_name, created_at)
        VALUES (?,?,?,?,?)
    `, m.Subject, m.Email, m.GivenName, m.FamilyName, now)
	if err != nil {
		return nil, translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	out := *m
	out.ID = id
	out.CreationTime = now
	return &out, nil
}

func (i *identities) GetBySubject(ctx context.Context, subject string) (*model.Identity, error) {
	var out model.Identity
	row := i.db.QueryRowContext(ctx, `
        SELECT id, subject, email, given_name, family_name, created_at
        FROM identities WHERE subject=?
    `, subject)
	if err := row.Scan(&out.ID, &out.Subject, &out.Email, &out.GivenName, &out.FamilyName, &out.CreationTime); err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

// --- Notes ---

type notes struct{ db *sql.DB }

func (n *notes) Create(ctx context.Context, m *model.Note) (*model.Note, error) {
	now := time.Now().UTC()
	res, err := n.db.ExecContext(ctx, `
        INSERT INTO notes (owner_id, title, content, image_key, created_at, updated_at)
        VALUES (?,?,?,?,?,?)
    `, m.OwnerID, m.Title, m.Content, m.ImageKey, now, now)
	if err != nil {
		return nil, translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	out := *m
	out.ID = id
	out.CreationTime = now
	out.UpdateTime = now
	return &out, nil
}

func (n *notes) GetByID(ctx context.Context, noteID int64) (*model.Note, error) {
	var out model.Note
	row := n.db.QueryRowContext(ctx, `
        SELECT id, owner_id, title, content, image_key, created_at, updated_at
        FROM notes WHERE id=?
    `, noteID)
	if err := row.Scan(&out.ID, &out.OwnerID, &out.Title, &out.Content, &out.ImageKey, &out.CreationTime, &out.UpdateTime); err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func (n *notes) ListByOwner(ctx context.Context, ownerID int64) ([]*model.Note, error) {
	rows, err := n.db.QueryContext(ctx, `
        SELECT id, owner_id, title, content, image_key, created_at, updated_at
        FROM notes WHERE owner_id=? ORDER BY created_at DESC, id DESC
    `, ownerID)
	if err != nil {
		return nil, translate(err)
	}
	defer func() { _ = rows.Close() }()
	var res []*model.Note
	for rows.Next() {
		var m model.Note
		if err := rows.Scan(&m.ID, &m.OwnerID, &m.Title, &m.Content, &m.ImageKey, &m.CreationTime, &m.UpdateTime); err != nil {
			return nil, translate(err)
		}
		res = append(res, &m)
	}
	return res, rows.Err()
}

func (n *notes) Update(ctx context.Context, m *model.Note) (*model.Note, error) {
	now := time.Now().UTC()
	res, err := n.db.ExecContext(ctx, `
        UPDATE notes SET title=?, content=?, image_key=?, updated_at=?
        WHERE id=?
    `, m.Title, m.Content, m.ImageKey, now, m.ID)
	if err != nil {
		return nil, translate(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, model.ErrNotFound
	}
	return n.GetByID(ctx, m.ID)
}

func (n *notes) Delete(ctx context.Context, noteID int64) error {
	res, err := n.db.ExecContext(ctx, `DELETE FROM notes WHERE id=?`, noteID)
	if err != nil {
		return translate(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return model.ErrNotFound
	}
	return nil
}
