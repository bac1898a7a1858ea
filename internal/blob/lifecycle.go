package blob

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/salem-notes/notes-backend/internal/model"
)

// SignedURLTTL is how long a generated read URL stays valid.
const SignedURLTTL = time.Hour

// Lifecycle owns the attachment-key lifecycle: deriving keys, writing
// objects, issuing time-limited read URLs, and best-effort removal.
type Lifecycle struct {
	objects ObjectStore
}

// NewLifecycle wraps an ObjectStore.
func NewLifecycle(objects ObjectStore) *Lifecycle {
	return &Lifecycle{objects: objects}
}

// Store writes the upload under a fresh key scoped to the owner and returns
// the key. A nil upload returns "" with no error (attachments are optional).
// The key is ownerScope/<random token><original extension>; the token is a
// v4 UUID, so no existence check precedes the write.
func (l *Lifecycle) Store(ctx context.Context, ownerScope string, up *Upload) (string, error) {
	if up == nil {
		return "", nil
	}

	key := ownerScope + "/" + uuid.New().String() + extensionOf(up.Name)

	log.Info().Str("key", key).Int64("size", up.Size).Msg("uploading attachment")
	if err := l.objects.Put(ctx, key, up.Reader, up.Size, up.ContentType); err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrUploadFailed, err)
	}
	return key, nil
}

// SignURL returns a time-limited read URL for key, or "" for an empty key.
func (l *Lifecycle) SignURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}
	u, err := l.objects.SignedGetURL(ctx, key, SignedURLTTL)
	if err != nil {
		return "", err
	}
	log.Debug().Str("key", key).Msg("generated signed URL")
	return u, nil
}

// Remove deletes the object at key, best-effort. Failures are logged and
// swallowed: cleanup must never block the user-facing operation. The
// residual risk is an orphaned object, reclaimed out of band.
func (l *Lifecycle) Remove(ctx context.Context, key string) {
	if key == "" {
		return
	}
	log.Info().Str("key", key).Msg("deleting attachment")
	if err := l.objects.Remove(ctx, key); err != nil {
		log.Error().Err(err).Str("key", key).Msg("attachment delete failed; object may be orphaned")
	}
}

// extensionOf returns the last dot-delimited suffix of name verbatim,
// including the dot, or "" when name has no extension.
func extensionOf(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return ""
	}
	return name[idx:]
}
