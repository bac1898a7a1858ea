package auth

import (
	"context"
	"errors"
)

// LocalDevToken is the hardcoded bearer token for local development only.
const LocalDevToken = "notes_local_dev_token"

// StaticVerifier is a local-development verifier: it recognizes only
// LocalDevToken and resolves it to a fixed dev subject. Never selected when
// an OIDC issuer is configured.
type StaticVerifier struct{}

// NewStaticVerifier creates a StaticVerifier for local development.
func NewStaticVerifier() *StaticVerifier { return &StaticVerifier{} }

// Verify accepts the hardcoded token and returns fixed dev claims.
func (s *StaticVerifier) Verify(ctx context.Context, rawToken string) (*Claims, error) {
	if rawToken != LocalDevToken {
		return nil, errors.New("invalid token for local development")
	}
	return &Claims{
		Subject:    "notes-dev",
		Email:      "dev@notes.local",
		GivenName:  "Local",
		FamilyName: "Developer",
	}, nil
}
