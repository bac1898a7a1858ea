// Package identity resolves verified token claims to durable local
// identities, provisioning one the first time a subject is seen.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/salem-notes/notes-backend/internal/auth"
	"github.com/salem-notes/notes-backend/internal/model"
	"github.com/salem-notes/notes-backend/internal/store"
)

// Resolver maps verified claims onto identity rows.
type Resolver struct {
	store store.Store
}

// NewResolver creates a Resolver backed by the given store.
func NewResolver(s store.Store) *Resolver { return &Resolver{store: s} }

// Resolve returns the identity for the claims' subject, provisioning it from
// the claims present right now if the subject has never been seen. Profile
// claims are captured once and never re-synced on later logins.
//
// Two first-time requests for the same subject may race to provision; the
// store's uniqueness constraint guarantees a single row, and the loser
// recovers by re-reading. At most one write happens per call.
func (r *Resolver) Resolve(ctx context.Context, claims auth.Claims) (*model.Identity, error) {
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token carries no subject", model.ErrIdentityResolution)
	}

	ident, err := r.store.Identities().GetBySubject(ctx, claims.Subject)
	if err == nil {
		return ident, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", model.ErrStorageUnavailable, err)
	}

	log.Info().Str("subject", claims.Subject).Msg("provisioning identity from token claims")
	ident, err = r.store.Identities().Create(ctx, &model.Identity{
		Subject:    claims.Subject,
		Email:      optional(claims.Email),
		GivenName:  optional(claims.GivenName),
		FamilyName: optional(claims.FamilyName),
	})
	if err == nil {
		return ident, nil
	}
	if errors.Is(err, model.ErrConflict) {
		// Lost the provisioning race; the row exists now.
		ident, err = r.store.Identities().GetBySubject(ctx, claims.Subject)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrStorageUnavailable, err)
		}
		return ident, nil
	}
	return nil, fmt.Errorf("%w: %v", model.ErrStorageUnavailable, err)
}

// optional maps an absent claim to NULL rather than an empty string.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
