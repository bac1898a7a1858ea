package note

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salem-notes/notes-backend/internal/blob"
	"github.com/salem-notes/notes-backend/internal/blob/blobtest"
	"github.com/salem-notes/notes-backend/internal/model"
	"github.com/salem-notes/notes-backend/internal/store"
	"github.com/salem-notes/notes-backend/internal/store/sqlite"
)

type fixture struct {
	svc   *Service
	store store.Store
	mem   *blobtest.MemStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	mem := blobtest.NewMemStore()
	return &fixture{
		svc:   NewService(st, blob.NewLifecycle(mem)),
		store: st,
		mem:   mem,
	}
}

func (f *fixture) identity(t *testing.T, subject string) *model.Identity {
	t.Helper()
	ident, err := f.store.Identities().Create(context.Background(), &model.Identity{Subject: subject})
	require.NoError(t, err)
	return ident
}

func upload(name, body string) *blob.Upload {
	return &blob.Upload{Reader: strings.NewReader(body), Size: int64(len(body)), Name: name, ContentType: "image/png"}
}

func TestCreateList_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	caller := f.identity(t, "kc-a")

	created, err := f.svc.Create(ctx, caller, "Groceries", "Buy milk and eggs today", nil)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Nil(t, created.ImageURL)

	withFile, err := f.svc.Create(ctx, caller, "Receipt", "Scanned grocery receipt", upload("receipt.jpg", "jpegbytes"))
	require.NoError(t, err)
	require.NotNil(t, withFile.ImageURL)
	require.NotNil(t, withFile.ImageKey)
	assert.True(t, f.mem.Has(*withFile.ImageKey))

	lst, err := f.svc.List(ctx, caller)
	require.NoError(t, err)
	require.Len(t, lst, 2)

	byTitle := map[string]*View{}
	for _, v := range lst {
		byTitle[v.Title] = v
	}
	require.Contains(t, byTitle, "Groceries")
	assert.Equal(t, "Buy milk and eggs today", byTitle["Groceries"].Content)
	assert.Nil(t, byTitle["Groceries"].ImageURL)
	require.Contains(t, byTitle, "Receipt")
	assert.NotNil(t, byTitle["Receipt"].ImageURL)
}

func TestList_EmptyOwnershipIsEmptyNotError(t *testing.T) {
	f := newFixture(t)
	caller := f.identity(t, "kc-a")

	lst, err := f.svc.List(context.Background(), caller)
	require.NoError(t, err)
	assert.Empty(t, lst)
}

func TestCreate_UploadFailureLeavesNoNote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	caller := f.identity(t, "kc-a")
	f.mem.FailPut = true

	_, err := f.svc.Create(ctx, caller, "Doomed", "This note must not survive", upload("x.png", "bytes"))
	assert.ErrorIs(t, err, model.ErrUploadFailed)

	lst, err := f.svc.List(ctx, caller)
	require.NoError(t, err)
	assert.Empty(t, lst, "no note row may exist after a failed upload")
}

func TestCreate_InsertFailureReclaimsObject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Owner row missing: the insert hits the foreign key after the object
	// was already written; the object must be reclaimed.
	ghost := &model.Identity{ID: 999999, Subject: "kc-ghost"}
	_, err := f.svc.Create(ctx, ghost, "Orphan", "Content long enough", upload("y.png", "bytes"))
	require.Error(t, err)
	assert.Empty(t, f.mem.Keys(), "failed insert must not leak the uploaded object")
}

func TestOwnership_CrossCallerDeniedAndInvisible(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.identity(t, "kc-alice")
	bob := f.identity(t, "kc-bob")

	n, err := f.svc.Create(ctx, alice, "Private", "Alice's private note", nil)
	require.NoError(t, err)

	// Excluded from Bob's list.
	lst, err := f.svc.List(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, lst)

	// Denied on update and delete, distinctly from not-found.
	_, err = f.svc.Update(ctx, bob, n.ID, "Stolen", "Bob rewrites history", nil)
	assert.ErrorIs(t, err, model.ErrOwnershipDenied)
	err = f.svc.Delete(ctx, bob, n.ID)
	assert.ErrorIs(t, err, model.ErrOwnershipDenied)

	// A genuinely absent note is a lookup miss.
	_, err = f.svc.Update(ctx, bob, n.ID+12345, "x", "y", nil)
	assert.ErrorIs(t, err, model.ErrNotFound)

	// Alice still sees her note untouched.
	lst, err = f.svc.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, lst, 1)
	assert.Equal(t, "Private", lst[0].Title)
}

func TestUpdate_WithoutFileKeepsAttachment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	caller := f.identity(t, "kc-a")

	created, err := f.svc.Create(ctx, caller, "Trip", "Packing list for the trip", upload("list.png", "v1"))
	require.NoError(t, err)
	origKey := *created.ImageKey

	updated, err := f.svc.Update(ctx, caller, created.ID, "Trip v2", "Packing list, now shorter", nil)
	require.NoError(t, err)
	require.NotNil(t, updated.ImageKey)
	assert.Equal(t, origKey, *updated.ImageKey, "no new file: key untouched")
	assert.Equal(t, "Trip v2", updated.Title)
	assert.True(t, f.mem.Has(origKey))
}

func TestUpdate_WithFileReplacesAndCleansOld(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	caller := f.identity(t, "kc-a")

	created, err := f.svc.Create(ctx, caller, "Trip", "Packing list for the trip", upload("list.png", "v1"))
	require.NoError(t, err)
	oldKey := *created.ImageKey

	updated, err := f.svc.Update(ctx, caller, created.ID, "Trip", "Packing list for the trip", upload("list2.png", "v2"))
	require.NoError(t, err)
	require.NotNil(t, updated.ImageKey)
	newKey := *updated.ImageKey
	assert.NotEqual(t, oldKey, newKey)

	// New content behind the new key; old object reclaimed after the swap.
	b, ok := f.mem.Get(newKey)
	require.True(t, ok)
	assert.Equal(t, "v2", string(b))
	assert.False(t, f.mem.Has(oldKey), "old attachment must be deleted after replace")
}

func TestUpdate_OldObjectSurvivesFailedCleanup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	caller := f.identity(t, "kc-a")

	created, err := f.svc.Create(ctx, caller, "Trip", "Packing list for the trip", upload("list.png", "v1"))
	require.NoError(t, err)
	oldKey := *created.ImageKey

	// Cleanup failure is swallowed; the update itself succeeds and the note
	// points at the new, existing object.
	f.mem.FailRemove = true
	updated, err := f.svc.Update(ctx, caller, created.ID, "Trip", "Packing list for the trip", upload("list2.png", "v2"))
	require.NoError(t, err)
	assert.True(t, f.mem.Has(*updated.ImageKey))
	assert.True(t, f.mem.Has(oldKey), "orphaned old object is accepted residual risk")
}

func TestDelete_RemovesRowAndObject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	caller := f.identity(t, "kc-a")

	created, err := f.svc.Create(ctx, caller, "Gone", "Will be deleted shortly", upload("img.png", "bytes"))
	require.NoError(t, err)
	key := *created.ImageKey

	require.NoError(t, f.svc.Delete(ctx, caller, created.ID))
	assert.False(t, f.mem.Has(key))

	lst, err := f.svc.List(ctx, caller)
	require.NoError(t, err)
	assert.Empty(t, lst)
}

func TestDelete_IdempotentWhenObjectAlreadyMissing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	caller := f.identity(t, "kc-a")

	created, err := f.svc.Create(ctx, caller, "Gone", "Will be deleted shortly", upload("img.png", "bytes"))
	require.NoError(t, err)

	// Object lost out of band: delete still succeeds and removes the row.
	f.mem.Drop(*created.ImageKey)
	require.NoError(t, f.svc.Delete(ctx, caller, created.ID))

	lst, err := f.svc.List(ctx, caller)
	require.NoError(t, err)
	assert.Empty(t, lst)
}

func TestDelete_ObjectCleanupFailureDoesNotBlockRowDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	caller := f.identity(t, "kc-a")

	created, err := f.svc.Create(ctx, caller, "Gone", "Will be deleted shortly", upload("img.png", "bytes"))
	require.NoError(t, err)

	f.mem.FailRemove = true
	require.NoError(t, f.svc.Delete(ctx, caller, created.ID))

	lst, err := f.svc.List(ctx, caller)
	require.NoError(t, err)
	assert.Empty(t, lst, "row delete is the operation of record")
}

func TestLifecycle_EndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	x := f.identity(t, "kc-x")

	created, err := f.svc.Create(ctx, x, "Groceries", "Buy milk and eggs today", nil)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Groceries", created.Title)
	assert.Nil(t, created.ImageURL)

	updated, err := f.svc.Update(ctx, x, created.ID, "Groceries v2", "Buy milk, eggs, bread", nil)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Groceries v2", updated.Title)
	assert.Equal(t, "Buy milk, eggs, bread", updated.Content)
	assert.Nil(t, updated.ImageURL)

	require.NoError(t, f.svc.Delete(ctx, x, created.ID))
	lst, err := f.svc.List(ctx, x)
	require.NoError(t, err)
	assert.Empty(t, lst)
}

func TestGuard_PureDecision(t *testing.T) {
	owner := &model.Identity{ID: 1}
	other := &model.Identity{ID: 2}
	n := &model.Note{ID: 10, OwnerID: 1}

	assert.NoError(t, authorizeOwner(n, owner))
	assert.ErrorIs(t, authorizeOwner(n, other), model.ErrOwnershipDenied)
}
