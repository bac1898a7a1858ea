package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog/log"
)

// Claims is the verified subset of the identity token the service cares
// about. Subject is the provider's stable account id; the profile claims are
// optional and captured only at provisioning time.
type Claims struct {
	Subject    string
	Email      string
	GivenName  string
	FamilyName string
}

// ErrInvalidToken is returned for tokens that fail signature or claim checks.
var ErrInvalidToken = errors.New("invalid bearer token")

// Verifier turns a raw bearer token into verified claims.
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (*Claims, error)
}

// tokenClaims is the wire shape of the provider's JWT payload.
type tokenClaims struct {
	jwt.RegisteredClaims
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

// OIDCVerifier validates RS256 bearer tokens against the provider's JWKS,
// located via OIDC discovery. Signature verification happens here; the core
// downstream trusts the claims it receives.
type OIDCVerifier struct {
	issuer string
	jwks   *keyfunc.JWKS
}

// discoveryDoc is the subset of the OIDC discovery document we read.
type discoveryDoc struct {
	Issuer  string `json:"issuer"`
	JWKSURI string `json:"jwks_uri"`
}

// NewOIDCVerifier fetches the issuer's discovery document and starts a
// background-refreshing JWKS cache.
func NewOIDCVerifier(ctx context.Context, issuer string) (*OIDCVerifier, error) {
	wellKnown := strings.TrimRight(issuer, "/") + "/.well-known/openid-configuration"

	var doc discoveryDoc
	client := resty.New().SetTimeout(10 * time.Second)
	resp, err := client.R().SetContext(ctx).SetResult(&doc).Get(wellKnown)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("oidc discovery: %s returned %s", wellKnown, resp.Status())
	}
	if doc.JWKSURI == "" {
		return nil, fmt.Errorf("oidc discovery: no jwks_uri in %s", wellKnown)
	}

	jwks, err := keyfunc.Get(doc.JWKSURI, keyfunc.Options{
		Ctx:             ctx,
		RefreshInterval: time.Hour,
		RefreshErrorHandler: func(err error) {
			log.Warn().Err(err).Msg("JWKS refresh failed")
		},
	})
	if err != nil {
		return nil, fmt.Errorf("jwks fetch: %w", err)
	}

	log.Info().Str("issuer", issuer).Str("jwks_uri", doc.JWKSURI).Msg("OIDC verifier ready")
	return &OIDCVerifier{issuer: issuer, jwks: jwks}, nil
}

// Verify parses and validates the token and extracts the claims the service
// uses. Expiry and not-before are enforced by the jwt library defaults.
func (v *OIDCVerifier) Verify(ctx context.Context, rawToken string) (*Claims, error) {
	var tc tokenClaims
	token, err := jwt.ParseWithClaims(rawToken, &tc, v.jwks.Keyfunc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if !tc.VerifyIssuer(v.issuer, true) {
		return nil, fmt.Errorf("%w: unexpected issuer %q", ErrInvalidToken, tc.Issuer)
	}
	return &Claims{
		Subject:    tc.Subject,
		Email:      tc.Email,
		GivenName:  tc.GivenName,
		FamilyName: tc.FamilyName,
	}, nil
}
