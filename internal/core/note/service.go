// Package note contains the core business logic for the note lifecycle:
// create, list, update and delete, plus the consistency rules tying a note
// row to its attachment object.
package note

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/salem-notes/notes-backend/internal/blob"
	"github.com/salem-notes/notes-backend/internal/model"
	"github.com/salem-notes/notes-backend/internal/store"
)

// Service orchestrates note operations. Inputs are trusted: field-level
// validation (non-empty title, minimum content length) happens at the
// transport boundary before calls reach here.
type Service struct {
	store       store.Store
	attachments *blob.Lifecycle
}

// NewService creates a note service.
func NewService(st store.Store, attachments *blob.Lifecycle) *Service {
	return &Service{store: st, attachments: attachments}
}

// View pairs a note with a freshly signed attachment URL for the caller.
type View struct {
	*model.Note
	ImageURL *string `json:"imageUrl"`
}

// Create stores the optional attachment first and persists the note only
// after the upload succeeded: a note row never references a key that was not
// written. If the insert fails afterwards, the fresh object is removed
// best-effort so neither side leaks.
func (s *Service) Create(ctx context.Context, caller *model.Identity, title, content string, file *blob.Upload) (*View, error) {
	key, err := s.attachments.Store(ctx, caller.Subject, file)
	if err != nil {
		return nil, err
	}

	n := &model.Note{
		OwnerID: caller.ID,
		Title:   title,
		Content: content,
	}
	if key != "" {
		n.ImageKey = &key
	}

	created, err := s.store.Notes().Create(ctx, n)
	if err != nil {
		s.attachments.Remove(ctx, key)
		return nil, storageFault(err)
	}

	log.Info().Int64("noteID", created.ID).Int64("ownerID", caller.ID).Msg("note created")
	return s.view(ctx, created), nil
}

// List returns all notes owned by caller, newest first, each with a signed
// URL when it has an attachment. No notes yields an empty slice.
func (s *Service) List(ctx context.Context, caller *model.Identity) ([]*View, error) {
	notes, err := s.store.Notes().ListByOwner(ctx, caller.ID)
	if err != nil {
		return nil, storageFault(err)
	}
	views := make([]*View, 0, len(notes))
	for _, n := range notes {
		views = append(views, s.view(ctx, n))
	}
	return views, nil
}

// Update overwrites title and content, and replaces the attachment only when
// a new file is supplied. The new object is written before the row pointer
// swaps, and the old object is removed only after the swap succeeded, so the
// note never points at a missing object.
func (s *Service) Update(ctx context.Context, caller *model.Identity, noteID int64, title, content string, file *blob.Upload) (*View, error) {
	existing, err := s.lookupOwned(ctx, noteID, caller)
	if err != nil {
		return nil, err
	}

	newKey, err := s.attachments.Store(ctx, caller.Subject, file)
	if err != nil {
		return nil, err
	}

	next := *existing
	next.Title = title
	next.Content = content
	var oldKey string
	if newKey != "" {
		if existing.ImageKey != nil {
			oldKey = *existing.ImageKey
		}
		next.ImageKey = &newKey
	}

	saved, err := s.store.Notes().Update(ctx, &next)
	if err != nil {
		// The row swap never happened; reclaim the object written above.
		s.attachments.Remove(ctx, newKey)
		return nil, storageFault(err)
	}

	if oldKey != "" && oldKey != newKey {
		s.attachments.Remove(ctx, oldKey)
	}

	log.Info().Int64("noteID", saved.ID).Bool("attachmentReplaced", newKey != "").Msg("note updated")
	return s.view(ctx, saved), nil
}

// Delete removes the note after an ownership check. The attachment object is
// released best-effort first; the row delete is the operation of record and
// is never blocked by object-store cleanup failures.
func (s *Service) Delete(ctx context.Context, caller *model.Identity, noteID int64) error {
	existing, err := s.lookupOwned(ctx, noteID, caller)
	if err != nil {
		return err
	}

	if existing.ImageKey != nil {
		s.attachments.Remove(ctx, *existing.ImageKey)
	}

	if err := s.store.Notes().Delete(ctx, existing.ID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			// Row vanished between lookup and delete; already gone.
			return nil
		}
		return storageFault(err)
	}

	log.Info().Int64("noteID", noteID).Int64("ownerID", caller.ID).Msg("note deleted")
	return nil
}

// lookupOwned fetches the note and runs the ownership check.
func (s *Service) lookupOwned(ctx context.Context, noteID int64, caller *model.Identity) (*model.Note, error) {
	n, err := s.store.Notes().GetByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, storageFault(err)
	}
	if err := authorizeOwner(n, caller); err != nil {
		log.Warn().Int64("noteID", noteID).Int64("callerID", caller.ID).Int64("ownerID", n.OwnerID).Msg("ownership denied")
		return nil, err
	}
	return n, nil
}

// view signs the attachment URL for one note. A signing failure is logged
// and leaves the URL absent rather than failing the whole operation.
func (s *Service) view(ctx context.Context, n *model.Note) *View {
	v := &View{Note: n}
	if n.ImageKey == nil {
		return v
	}
	u, err := s.attachments.SignURL(ctx, *n.ImageKey)
	if err != nil {
		log.Warn().Err(err).Int64("noteID", n.ID).Msg("signing attachment URL failed")
		return v
	}
	v.ImageURL = &u
	return v
}

func storageFault(err error) error {
	if errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrStorageUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", model.ErrStorageUnavailable, err)
}
