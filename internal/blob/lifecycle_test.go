package blob_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/salem-notes/notes-backend/internal/blob"
	"github.com/salem-notes/notes-backend/internal/blob/blobtest"
	"github.com/salem-notes/notes-backend/internal/model"
)

func TestStore_NilUploadIsAbsent(t *testing.T) {
	l := blob.NewLifecycle(blobtest.NewMemStore())

	key, err := l.Store(context.Background(), "owner-1", nil)
	if err != nil {
		t.Fatalf("nil upload: %v", err)
	}
	if key != "" {
		t.Fatalf("nil upload should yield empty key, got %q", key)
	}
}

func TestStore_KeyShape(t *testing.T) {
	mem := blobtest.NewMemStore()
	l := blob.NewLifecycle(mem)
	ctx := context.Background()

	cases := []struct {
		name    string
		wantExt string
	}{
		{"photo.png", ".png"},
		{"archive.tar.gz", ".gz"},
		{"noextension", ""},
		{"trailingdot.", "."},
	}
	for _, tc := range cases {
		up := &blob.Upload{Reader: strings.NewReader("data"), Size: 4, Name: tc.name, ContentType: "image/png"}
		key, err := l.Store(ctx, "owner-7", up)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if !strings.HasPrefix(key, "owner-7/") {
			t.Fatalf("%s: key not owner-scoped: %q", tc.name, key)
		}
		if !strings.HasSuffix(key, tc.wantExt) {
			t.Fatalf("%s: want extension %q in key %q", tc.name, tc.wantExt, key)
		}
		token := strings.TrimSuffix(strings.TrimPrefix(key, "owner-7/"), tc.wantExt)
		if len(token) != 36 {
			t.Fatalf("%s: token is not a uuid: %q", tc.name, token)
		}
		if !mem.Has(key) {
			t.Fatalf("%s: object not written", tc.name)
		}
	}
}

func TestStore_UploadFailure(t *testing.T) {
	mem := blobtest.NewMemStore()
	mem.FailPut = true
	l := blob.NewLifecycle(mem)

	up := &blob.Upload{Reader: strings.NewReader("data"), Size: 4, Name: "a.jpg"}
	_, err := l.Store(context.Background(), "owner-1", up)
	if !errors.Is(err, model.ErrUploadFailed) {
		t.Fatalf("want ErrUploadFailed, got %v", err)
	}
}

func TestSignURL(t *testing.T) {
	mem := blobtest.NewMemStore()
	l := blob.NewLifecycle(mem)
	ctx := context.Background()

	// empty key yields absent url, not an error
	u, err := l.SignURL(ctx, "")
	if err != nil || u != "" {
		t.Fatalf("empty key: url=%q err=%v", u, err)
	}

	key, err := l.Store(ctx, "owner-1", &blob.Upload{Reader: strings.NewReader("x"), Size: 1, Name: "a.png"})
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	u, err = l.SignURL(ctx, key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if !strings.Contains(u, key) {
		t.Fatalf("signed url does not reference key: %q", u)
	}
}

func TestRemove_SwallowsFailures(t *testing.T) {
	mem := blobtest.NewMemStore()
	l := blob.NewLifecycle(mem)
	ctx := context.Background()

	// missing key: no panic, no error surface
	l.Remove(ctx, "owner-1/gone.png")

	// injected backend failure is swallowed
	key, err := l.Store(ctx, "owner-1", &blob.Upload{Reader: strings.NewReader("x"), Size: 1, Name: "a.png"})
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	mem.FailRemove = true
	l.Remove(ctx, key)
	if !mem.Has(key) {
		t.Fatalf("failed remove should leave object in place")
	}

	mem.FailRemove = false
	l.Remove(ctx, key)
	if mem.Has(key) {
		t.Fatalf("remove did not delete object")
	}

	// empty key is a no-op, not a backend call
	calls := mem.RemoveCalls
	l.Remove(ctx, "")
	if mem.RemoveCalls != calls {
		t.Fatalf("empty key should not reach the backend")
	}
}
