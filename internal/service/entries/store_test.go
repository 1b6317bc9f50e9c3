package entries_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/entries-server/internal/service"
)

func storeOpts(collection string, values map[string]any) []service.Option[service.StoreEntryOptions] {
	return []service.Option[service.StoreEntryOptions]{
		service.WithCollection[service.StoreEntryOptions](collection),
		service.WithValues[service.StoreEntryOptions](values),
	}
}

func TestStoreEntry_Creates(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	result, err := f.svc.StoreEntry(context.Background(), editor, storeOpts("blog", map[string]any{
		"title":     "Hello World",
		"slug":      "Hello-World",
		"body":      "line one\r\nline two",
		"tags":      "go, cms",
		"date":      "2024-03-05 14:30",
		"published": "true",
		"unknown":   "ignored",
	})...)
	require.NoError(t, err)

	assert.Equal(t, "/cp/collections/blog/entries/id-1", result.Redirect)
	assert.Equal(t, "id-1", result.Entry["id"])
	assert.Equal(t, "hello-world", result.Entry["slug"])

	stored := f.entry(t, "id-1")
	assert.Equal(t, "blog", stored.Collection)
	assert.Equal(t, "en", stored.Locale)
	assert.Equal(t, "post", stored.Blueprint)
	assert.Equal(t, "hello-world", stored.Slug)
	assert.True(t, stored.Published)
	assert.Equal(t, "2024-03-05-1430", stored.Date)
	assert.Equal(t, "editor", stored.Author)
	assert.Equal(t, "editor", stored.UpdatedBy)
	assert.Equal(t, fixedNow, stored.CreatedAt)
	assert.Equal(t, map[string]any{
		"title": "Hello World",
		"body":  "line one\nline two",
		"tags":  []string{"go", "cms"},
	}, stored.Data)

	hits, err := f.index.Search(context.Background(), "hello", "blog", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"id-1"}, hits)
}

func TestStoreEntry_Defaults(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, err := f.svc.StoreEntry(context.Background(), editor, storeOpts("blog", map[string]any{
		"title": "Untimed",
		"slug":  "untimed",
	})...)
	require.NoError(t, err)

	stored := f.entry(t, "id-1")
	assert.Equal(t, "2024-03-01-0915", stored.Date)
	assert.False(t, stored.Published)

	_, err = f.svc.StoreEntry(context.Background(), admin, storeOpts("articles", map[string]any{
		"title": "An Article",
		"slug":  "an-article",
	})...)
	require.NoError(t, err)

	article := f.entry(t, "id-2")
	assert.True(t, article.Published)
	assert.Empty(t, article.Date)
}

func TestStoreEntry_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		site   string
		values map[string]any
		fields []string
	}{
		{
			name:   "missing title and slug",
			values: map[string]any{},
			fields: []string{"title", "slug"},
		},
		{
			name:   "slug taken in the same site",
			values: map[string]any{"title": "Again", "slug": "HELLO-world"},
			fields: []string{"slug"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			f.seed(t, post("p1", "hello-world", "Hello World", "2024-01-05", true))

			_, err := f.svc.StoreEntry(context.Background(), editor, storeOpts("blog", tt.values)...)

			var verr *service.ValidationError
			require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
			assert.ErrorIs(t, err, service.ErrValidationFailed)
			for _, field := range tt.fields {
				assert.Contains(t, verr.Fields, field)
			}

			_, err = f.store.FindEntry(context.Background(), "id-1")
			assert.ErrorIs(t, err, service.ErrEntryNotFound)
		})
	}
}

func TestStoreEntry_SlugNotRestrictedToAlphaDash(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		slug string
		want string
	}{
		{name: "dot", slug: "my.post", want: "my.post"},
		{name: "inner space", slug: "My Post", want: "my post"},
		{name: "plus sign", slug: "c++", want: "c++"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			result, err := f.svc.StoreEntry(context.Background(), editor, storeOpts("blog", map[string]any{
				"title": "My Post",
				"slug":  tt.slug,
			})...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Entry["slug"])
			assert.Equal(t, tt.want, f.entry(t, "id-1").Slug)
		})
	}
}

func TestStoreEntry_SlugUniquePerSite(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seed(t, post("p1", "hello-world", "Hello World", "2024-01-05", true))

	result, err := f.svc.StoreEntry(context.Background(), editor,
		append(storeOpts("blog", map[string]any{"title": "Bonjour", "slug": "hello-world"}),
			service.WithSite[service.StoreEntryOptions]("fr"))...)
	require.NoError(t, err)
	assert.Equal(t, "fr", result.Entry["locale"])

	_, err = f.svc.StoreEntry(context.Background(), editor,
		append(storeOpts("pages", map[string]any{"title": "Nope", "slug": "nope"}),
			service.WithSite[service.StoreEntryOptions]("fr"))...)
	assert.ErrorIs(t, err, service.ErrSiteNotFound)
}

func TestStoreEntry_Structure(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seed(t, page("about", "about", "About"))
	f.seedTree(t, "en", [2]string{"about", ""})

	result, err := f.svc.StoreEntry(context.Background(), admin, storeOpts("pages", map[string]any{
		"title":  "Team",
		"slug":   "team",
		"parent": []any{"about"},
	})...)
	require.NoError(t, err)
	assert.Equal(t, "/cp/structures/pages/entries/id-1", result.Redirect)

	tree, err := f.store.FindTree(context.Background(), "pages", "en")
	require.NoError(t, err)
	assert.Equal(t, "about", tree.Parent("id-1"))
	assert.Equal(t, []string{"about", "id-1"}, tree.Flatten())

	stored := f.entry(t, "id-1")
	assert.NotContains(t, stored.Data, "parent")

	_, err = f.svc.StoreEntry(context.Background(), admin, storeOpts("pages", map[string]any{
		"title":  "Orphan",
		"slug":   "orphan",
		"parent": "ghost",
	})...)
	var verr *service.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"The selected parent does not exist."}, verr.Fields["parent"])

	_, err = f.store.FindEntry(context.Background(), "id-2")
	assert.ErrorIs(t, err, service.ErrEntryNotFound)
}

func TestStoreEntry_Revision(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, err := f.svc.StoreEntry(context.Background(), admin,
		append(storeOpts("articles", map[string]any{"title": "Versioned", "slug": "versioned", "intro": "Hi"}),
			service.WithMessage[service.StoreEntryOptions]("first draft"))...)
	require.NoError(t, err)

	revisions, err := f.store.ListRevisions(context.Background(), "id-1")
	require.NoError(t, err)
	require.Len(t, revisions, 1)
	assert.Equal(t, service.RevisionActionRevision, revisions[0].Action)
	assert.Equal(t, "first draft", revisions[0].Message)
	assert.Equal(t, "admin", revisions[0].UserID)
	assert.Equal(t, "Hi", revisions[0].Attributes.Data["intro"])
}

func TestStoreEntry_Denied(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, err := f.svc.StoreEntry(context.Background(), viewer, storeOpts("blog", map[string]any{
		"title": "Nope",
		"slug":  "nope",
	})...)
	assert.ErrorIs(t, err, service.ErrAuthorizationDenied)

	_, err = f.svc.StoreEntry(context.Background(), editor, storeOpts("missing", map[string]any{})...)
	assert.ErrorIs(t, err, service.ErrCollectionNotFound)
}
