package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/salem-notes/notes-backend/internal/model"
	"github.com/salem-notes/notes-backend/internal/store"
)

//go:embed schema.sql
var schemaSQL string

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies
// connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

// Bootstrap opens the database and applies the embedded schema. Statements
// are idempotent (IF NOT EXISTS) so repeated startups are safe.
func Bootstrap(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := Open(dsn)
	if err != nil {
		return nil, err
	}
	for _, stmt := range splitStatements(schemaSQL) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}
	return db, nil
}

func splitStatements(ddl string) []string {
	var out []string
	for _, p := range strings.Split(ddl, ";") {
		if stmt := strings.TrimSpace(p); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

type pgStore struct{ db *sql.DB }

func (s *pgStore) Identities() store.Identities { return &identities{db: s.db} }
func (s *pgStore) Notes() store.Notes           { return &notes{db: s.db} }

func (s *pgStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// translate maps driver errors onto the store error contract.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", model.ErrConflict, pgErr.ConstraintName)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", model.ErrNotFound, pgErr.ConstraintName)
		}
	}
	return err
}

// --- Identities ---

type identities struct{ db *sql.DB }

func (i *identities) Create(ctx context.Context, m *model.Identity) (*model.Identity, error) {
	out := *m
	row := i.db.QueryRowContext(ctx, `
        INSERT INTO identities (subject, email, given_name, family_name)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at
    `, m.Subject, m.Email, m.GivenName, m.FamilyName)
	if err := row.Scan(&out.ID, &out.CreationTime); err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func (i *identities) GetBySubject(ctx context.Context, subject string) (*model.Identity, error) {
	var out model.Identity
	row := i.db.QueryRowContext(ctx, `
        SELECT id, subject, email, given_name, family_name, created_at
        FROM identities WHERE subject=$1
    `, subject)
	if err := row.Scan(&out.ID, &out.Subject, &out.Email, &out.GivenName, &out.FamilyName, &out.CreationTime); err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

// --- Notes ---

type notes struct{ db *sql.DB }

func (n *notes) Create(ctx context.Context, m *model.Note) (*model.Note, error) {
	out := *m
	row := n.db.QueryRowContext(ctx, `
        INSERT INTO notes (owner_id, title, content, image_key)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at
    `, m.OwnerID, m.Title, m.Content, m.ImageKey)
	if err := row.Scan(&out.ID, &out.CreationTime, &out.UpdateTime); err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func (n *notes) GetByID(ctx context.Context, noteID int64) (*model.Note, error) {
	var out model.Note
	row := n.db.QueryRowContext(ctx, `
        SELECT id, owner_id, title, content, image_key, created_at, updated_at
        FROM notes WHERE id=$1
    `, noteID)
	if err := row.Scan(&out.ID, &out.OwnerID, &out.Title, &out.Content, &out.ImageKey, &out.CreationTime, &out.UpdateTime); err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func (n *notes) ListByOwner(ctx context.Context, ownerID int64) ([]*model.Note, error) {
	rows, err := n.db.QueryContext(ctx, `
        SELECT id, owner_id, title, content, image_key, created_at, updated_at
        FROM notes WHERE owner_id=$1 ORDER BY created_at DESC, id DESC
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
	out := *m
	row := n.db.QueryRowContext(ctx, `
        UPDATE notes SET title=$2, content=$3, image_key=$4, updated_at=now()
        WHERE id=$1
        RETURNING owner_id, created_at, updated_at
    `, m.ID, m.Title, m.Content, m.ImageKey)
	if err := row.Scan(&out.OwnerID, &out.CreationTime, &out.UpdateTime); err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func (n *notes) Delete(ctx context.Context, noteID int64) error {
	res, err := n.db.ExecContext(ctx, `DELETE FROM notes WHERE id=$1`, noteID)
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
