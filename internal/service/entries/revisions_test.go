package entries_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/entries-server/internal/service"
)

func revisionOpts(id string, extra ...service.Option[service.RevisionOptions]) []service.Option[service.RevisionOptions] {
	return append([]service.Option[service.RevisionOptions]{service.WithEntryID[service.RevisionOptions](id)}, extra...)
}

func TestRevisions_Lifecycle(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seed(t, article("a1", "first", "First Article", true))
	ctx := context.Background()

	// Edits of a published entry stay in the working copy
	_, err := f.svc.UpdateEntry(ctx, admin,
		updateOpts("articles", "a1", map[string]any{"title": "Second Draft", "slug": "first"})...)
	require.NoError(t, err)

	snapshot, err := f.svc.CreateRevision(ctx, admin, revisionOpts("a1",
		service.WithMessage[service.RevisionOptions]("checkpoint"))...)
	require.NoError(t, err)
	assert.Equal(t, service.RevisionActionRevision, snapshot.Action)
	assert.Equal(t, "Second Draft", snapshot.Attributes.Data["title"])
	assert.Equal(t, "checkpoint", snapshot.Message)
	assert.Equal(t, fixedNow, snapshot.CreatedAt)

	payload, err := f.svc.PublishEntry(ctx, admin, revisionOpts("a1")...)
	require.NoError(t, err)
	assert.Equal(t, "Second Draft", payload["title"])
	assert.Equal(t, true, payload["published"])

	live := f.entry(t, "a1")
	assert.Equal(t, "Second Draft", live.Title())
	_, err = f.store.FindWorkingCopy(ctx, "a1")
	assert.ErrorIs(t, err, service.ErrWorkingCopyNotFound)

	revisions, err := f.svc.ListRevisions(ctx, admin, revisionOpts("a1")...)
	require.NoError(t, err)
	require.Len(t, revisions, 2)
	assert.Equal(t, service.RevisionActionPublish, revisions[0].Action)
	assert.Equal(t, service.RevisionActionRevision, revisions[1].Action)
}

func TestRevisions_Restore(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	e := article("a1", "first", "First Article", true)
	f.seed(t, e)
	ctx := context.Background()

	original, err := f.svc.CreateRevision(ctx, admin, revisionOpts("a1")...)
	require.NoError(t, err)

	e.Data["title"] = "Rewritten"
	require.NoError(t, f.store.SaveEntry(ctx, e))

	payload, err := f.svc.RestoreRevision(ctx, admin, revisionOpts("a1",
		service.WithRevisionID(original.ID))...)
	require.NoError(t, err)
	// The live entry stays untouched until the working copy is published
	assert.Equal(t, "Rewritten", payload["title"])

	wc, err := f.store.FindWorkingCopy(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "First Article", wc.Data["title"])
	assert.Equal(t, "admin", wc.UserID)

	revisions, err := f.store.ListRevisions(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, revisions, 2)
	assert.Equal(t, service.RevisionActionRestore, revisions[0].Action)
	assert.Equal(t, "Restored revision "+original.ID, revisions[0].Message)

	_, err = f.svc.RestoreRevision(ctx, admin, revisionOpts("a1", service.WithRevisionID("missing"))...)
	assert.ErrorIs(t, err, service.ErrRevisionNotFound)
}

func TestRevisions_WithoutRevisions(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seed(t, post("p1", "hello-world", "Hello World", "2024-01-05", false))
	ctx := context.Background()

	_, err := f.svc.ListRevisions(ctx, editor, revisionOpts("p1")...)
	assert.ErrorIs(t, err, service.ErrRevisionsDisabled)

	_, err = f.svc.CreateRevision(ctx, editor, revisionOpts("p1")...)
	assert.ErrorIs(t, err, service.ErrRevisionsDisabled)

	payload, err := f.svc.PublishEntry(ctx, editor, revisionOpts("p1")...)
	require.NoError(t, err)
	assert.Equal(t, true, payload["published"])
	assert.True(t, f.entry(t, "p1").Published)

	revisions, err := f.store.ListRevisions(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, revisions)

	// Revisions recorded before they were disabled can still be restored
	snapshot := &service.Revision{
		ID:         "old",
		EntryID:    "p1",
		Action:     service.RevisionActionRevision,
		Attributes: service.RevisionAttributes{Slug: "hello-world", Data: map[string]any{"title": "Old Title"}},
	}
	require.NoError(t, f.store.CreateRevision(ctx, snapshot))

	payload, err = f.svc.RestoreRevision(ctx, editor, revisionOpts("p1", service.WithRevisionID("old"))...)
	require.NoError(t, err)
	assert.Equal(t, "Old Title", payload["title"])
	assert.False(t, f.entry(t, "p1").Published)
	assert.Equal(t, "editor", f.entry(t, "p1").UpdatedBy)
}

func TestRevisions_Denied(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seed(t, article("a1", "first", "First Article", false))

	_, err := f.svc.PublishEntry(context.Background(), viewer, revisionOpts("a1")...)
	assert.ErrorIs(t, err, service.ErrAuthorizationDenied)

	_, err = f.svc.PublishEntry(context.Background(), viewer, revisionOpts("missing")...)
	assert.ErrorIs(t, err, service.ErrEntryNotFound)
	assert.False(t, f.entry(t, "a1").Published)
}

func TestRevisions_SlugTakenSinceEdit(t *testing.T) {
	t.Parallel()

	t.Run("publish keeps the working copy", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.seed(t, article("a1", "first", "First Article", true))
		ctx := context.Background()

		_, err := f.svc.UpdateEntry(ctx, admin,
			updateOpts("articles", "a1", map[string]any{"title": "First Article", "slug": "taken"})...)
		require.NoError(t, err)
		f.seed(t, article("a2", "taken", "Second Article", false))

		_, err = f.svc.PublishEntry(ctx, admin, revisionOpts("a1")...)
		var verr *service.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []string{"The slug has already been taken."}, verr.Fields["slug"])

		assert.Equal(t, "first", f.entry(t, "a1").Slug)
		wc, err := f.store.FindWorkingCopy(ctx, "a1")
		require.NoError(t, err)
		assert.Equal(t, "taken", wc.Slug)
	})

	t.Run("restore without revisions leaves the entry", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.seed(t,
			post("p1", "hello-world", "Hello World", "2024-01-05", false),
			post("p2", "old-slug", "Other", "2024-01-06", false))
		ctx := context.Background()

		require.NoError(t, f.store.CreateRevision(ctx, &service.Revision{
			ID:         "old",
			EntryID:    "p1",
			Action:     service.RevisionActionRevision,
			Attributes: service.RevisionAttributes{Slug: "old-slug", Data: map[string]any{"title": "Old Title"}},
		}))

		_, err := f.svc.RestoreRevision(ctx, editor, revisionOpts("p1", service.WithRevisionID("old"))...)
		var verr *service.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "slug")

		stored := f.entry(t, "p1")
		assert.Equal(t, "hello-world", stored.Slug)
		assert.Equal(t, "Hello World", stored.Title())
	})
}

func TestUnpublishEntry(t *testing.T) {
	t.Parallel()

	t.Run("keeps the working copy and records a revision", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.seed(t, article("a1", "first", "First Article", true))
		ctx := context.Background()

		_, err := f.svc.UpdateEntry(ctx, admin,
			updateOpts("articles", "a1", map[string]any{"title": "Pending Edit", "slug": "first"})...)
		require.NoError(t, err)

		payload, err := f.svc.UnpublishEntry(ctx, admin, revisionOpts("a1",
			service.WithMessage[service.RevisionOptions]("taking it down"))...)
		require.NoError(t, err)
		assert.Equal(t, false, payload["published"])

		live := f.entry(t, "a1")
		assert.False(t, live.Published)
		assert.Equal(t, "First Article", live.Title())
		assert.Equal(t, "admin", live.UpdatedBy)

		wc, err := f.store.FindWorkingCopy(ctx, "a1")
		require.NoError(t, err)
		assert.Equal(t, "Pending Edit", wc.Data["title"])

		revisions, err := f.store.ListRevisions(ctx, "a1")
		require.NoError(t, err)
		require.Len(t, revisions, 1)
		assert.Equal(t, service.RevisionActionUnpublish, revisions[0].Action)
		assert.Equal(t, "taking it down", revisions[0].Message)
	})

	t.Run("draft is left untouched", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.seed(t, post("p1", "hello-world", "Hello World", "2024-01-05", false))

		payload, err := f.svc.UnpublishEntry(context.Background(), editor, revisionOpts("p1")...)
		require.NoError(t, err)
		assert.Equal(t, false, payload["published"])
		assert.Empty(t, f.entry(t, "p1").UpdatedBy)
	})

	t.Run("needs publish permission", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.seed(t, post("p1", "hello-world", "Hello World", "2024-01-05", true))

		_, err := f.svc.UnpublishEntry(context.Background(), viewer, revisionOpts("p1")...)
		assert.ErrorIs(t, err, service.ErrAuthorizationDenied)
		assert.True(t, f.entry(t, "p1").Published)
	})
}
