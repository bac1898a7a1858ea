package auth

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/salem-notes/notes-backend/internal/model"
)

type contextKey string

const identityContextKey = contextKey("identity")

// IdentityResolver turns verified claims into a durable local identity,
// provisioning one on first sight. Implemented by core/identity.Resolver.
type IdentityResolver interface {
	Resolve(ctx context.Context, claims Claims) (*model.Identity, error)
}

// Middleware verifies the bearer token, resolves the caller's identity once
// per request, and injects it into the request context. Handlers downstream
// receive the identity explicitly and never consult ambient security state.
func Middleware(verifier Verifier, resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := ExtractBearerToken(r)
			if err != nil {
				unauthorized(w, err.Error())
				return
			}
			claims, err := verifier.Verify(r.Context(), token)
			if err != nil {
				log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("token verification failed")
				unauthorized(w, "invalid or expired token")
				return
			}
			ident, err := resolver.Resolve(r.Context(), *claims)
			if err != nil {
				log.Error().Stack().Err(err).Str("subject", claims.Subject).Msg("identity resolution failed")
				unauthorized(w, "could not resolve identity")
				return
			}
			ctx := context.WithValue(r.Context(), identityContextKey, ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext returns the identity placed by Middleware, or nil.
func IdentityFromContext(ctx context.Context) *model.Identity {
	ident, _ := ctx.Value(identityContextKey).(*model.Identity)
	return ident
}

// WithIdentity returns a context carrying ident; used by tests.
func WithIdentity(ctx context.Context, ident *model.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, ident)
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Unauthorized","code":401,"message":"` + msg + `"}`))
}
