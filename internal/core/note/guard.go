package note

import (
	"github.com/salem-notes/notes-backend/internal/model"
)

// authorizeOwner decides whether caller may act on n. Pure decision, no I/O.
//
// The denial stays a distinct error kind from a lookup miss so logs and
// telemetry can tell them apart; the transport layer renders both with the
// same message so a non-owner cannot confirm the note exists.
func authorizeOwner(n *model.Note, caller *model.Identity) error {
	if n.OwnerID != caller.ID {
		return model.ErrOwnershipDenied
	}
	return nil
}
