package store

import (
	"context"

	"github.com/salem-notes/notes-backend/internal/model"
)

// Store exposes persistence operations required by the core services.
// Implementations live under internal/store/<driver>/ (postgres, sqlite).
//
// Error contract: drivers translate their native failures into the model
// sentinels so services stay driver-agnostic. A lookup miss is
// model.ErrNotFound; a unique-constraint violation on insert is
// model.ErrConflict; a foreign-key miss (note referencing an absent owner)
// is model.ErrNotFound.
type Store interface {
	Identities() Identities
	Notes() Notes

	// Ping verifies connectivity; used by health checking.
	Ping(ctx context.Context) error
}

type Identities interface {
	// Create inserts a new identity and returns the stored row.
	// The subject column carries a uniqueness constraint; inserting a
	// duplicate subject returns model.ErrConflict. Callers racing to
	// provision the same subject recover by re-reading.
	Create(ctx context.Context, ident *model.Identity) (*model.Identity, error)
	GetBySubject(ctx context.Context, subject string) (*model.Identity, error)
}

type Notes interface {
	Create(ctx context.Context, n *model.Note) (*model.Note, error)
	GetByID(ctx context.Context, noteID int64) (*model.Note, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*model.Note, error)
	// Update overwrites title, content and image key in one statement and
	// bumps the update timestamp. Returns model.ErrNotFound if the row is gone.
	Update(ctx context.Context, n *model.Note) (*model.Note, error)
	Delete(ctx context.Context, noteID int64) error
}
