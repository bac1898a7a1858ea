package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/salem-notes/notes-backend/internal/model"
	"github.com/salem-notes/notes-backend/internal/store"
)

// Run exercises the store contract against an implementation. makeStore must
// return a clean, isolated store per invocation.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	subject := "sub-" + uuid.New().String()
	email := subject + "@example.test"
	given := "Ada"

	// Identities
	ident, err := s.Identities().Create(ctx, &model.Identity{Subject: subject, Email: &email, GivenName: &given})
	if err != nil {
		t.Fatalf("CreateIdentity: %v", err)
	}
	if ident.ID == 0 {
		t.Fatalf("CreateIdentity: no id assigned")
	}
	if ident.CreationTime.IsZero() {
		t.Fatalf("CreateIdentity: no creation time")
	}

	got, err := s.Identities().GetBySubject(ctx, subject)
	if err != nil || got.ID != ident.ID || got.Email == nil || *got.Email != email {
		t.Fatalf("GetBySubject: got=%+v err=%v", got, err)
	}

	// Duplicate subject must surface the conflict sentinel.
	if _, err := s.Identities().Create(ctx, &model.Identity{Subject: subject}); !errors.Is(err, model.ErrConflict) {
		t.Fatalf("duplicate subject: want ErrConflict, got %v", err)
	}

	// Unknown subject is a lookup miss.
	if _, err := s.Identities().GetBySubject(ctx, "sub-"+uuid.New().String()); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("unknown subject: want ErrNotFound, got %v", err)
	}

	// Optional claims stay absent, not defaulted.
	bare, err := s.Identities().Create(ctx, &model.Identity{Subject: "sub-" + uuid.New().String()})
	if err != nil {
		t.Fatalf("CreateIdentity bare: %v", err)
	}
	if bare.Email != nil || bare.GivenName != nil || bare.FamilyName != nil {
		t.Fatalf("bare identity should keep optional claims nil: %+v", bare)
	}

	// Notes
	key := ident.Subject + "/" + uuid.New().String() + ".png"
	n, err := s.Notes().Create(ctx, &model.Note{OwnerID: ident.ID, Title: "Groceries", Content: "Buy milk and eggs today", ImageKey: &key})
	if err != nil {
		t.Fatalf("CreateNote: %v", err)
	}
	if n.ID == 0 || n.CreationTime.IsZero() || n.UpdateTime.IsZero() {
		t.Fatalf("CreateNote: incomplete row %+v", n)
	}

	// Owner must exist.
	if _, err := s.Notes().Create(ctx, &model.Note{OwnerID: n.OwnerID + 9999, Title: "x", Content: "y"}); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("note with absent owner: want ErrNotFound, got %v", err)
	}

	gotN, err := s.Notes().GetByID(ctx, n.ID)
	if err != nil || gotN.Title != "Groceries" || gotN.ImageKey == nil || *gotN.ImageKey != key {
		t.Fatalf("GetByID: got=%+v err=%v", gotN, err)
	}

	// Listing is owner-scoped.
	lst, err := s.Notes().ListByOwner(ctx, ident.ID)
	if err != nil || len(lst) != 1 {
		t.Fatalf("ListByOwner: n=%d err=%v", len(lst), err)
	}
	if lst2, err := s.Notes().ListByOwner(ctx, bare.ID); err != nil || len(lst2) != 0 {
		t.Fatalf("ListByOwner other owner: n=%d err=%v", len(lst2), err)
	}

	// Update overwrites fields and keeps owner/creation immutable.
	n.Title = "Groceries v2"
	n.Content = "Buy milk, eggs, bread"
	n.ImageKey = nil
	upd, err := s.Notes().Update(ctx, n)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if upd.Title != "Groceries v2" || upd.ImageKey != nil {
		t.Fatalf("Update did not apply: %+v", upd)
	}
	if upd.OwnerID != ident.ID || !upd.CreationTime.Equal(gotN.CreationTime) {
		t.Fatalf("Update mutated immutable fields: %+v", upd)
	}
	if upd.UpdateTime.Before(gotN.UpdateTime) {
		t.Fatalf("Update did not advance update time: %v -> %v", gotN.UpdateTime, upd.UpdateTime)
	}

	// Update/Delete on a missing row is a lookup miss.
	missing := *n
	missing.ID = n.ID + 9999
	if _, err := s.Notes().Update(ctx, &missing); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Update missing: want ErrNotFound, got %v", err)
	}
	if err := s.Notes().Delete(ctx, n.ID+9999); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Delete missing: want ErrNotFound, got %v", err)
	}

	// Delete removes the row.
	if err := s.Notes().Delete(ctx, n.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Notes().GetByID(ctx, n.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetByID after delete: want ErrNotFound, got %v", err)
	}

	// Ping
	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
