package entries_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/entries-server/internal/service"
)

func updateOpts(collection, id string, values map[string]any) []service.Option[service.UpdateEntryOptions] {
	return []service.Option[service.UpdateEntryOptions]{
		service.WithCollection[service.UpdateEntryOptions](collection),
		service.WithEntryID[service.UpdateEntryOptions](id),
		service.WithValues[service.UpdateEntryOptions](values),
	}
}

func TestUpdateEntry_Revisions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		entry           *service.Entry
		values          map[string]any
		wantWorkingCopy bool
		wantTitle       string
		wantPublished   bool
	}{
		{
			name:            "published entry with revisions gets a working copy",
			entry:           article("a1", "first", "First Article", true),
			values:          map[string]any{"title": "Changed Title", "slug": "first"},
			wantWorkingCopy: true,
			wantTitle:       "First Article",
			wantPublished:   true,
		},
		{
			name:          "draft entry with revisions is saved directly",
			entry:         article("a1", "first", "First Article", false),
			values:        map[string]any{"title": "Changed Title", "slug": "first", "published": true},
			wantTitle:     "Changed Title",
			wantPublished: false,
		},
		{
			name:          "published entry without revisions takes the submitted flag",
			entry:         post("a1", "first", "First Post", "2024-01-05", true),
			values:        map[string]any{"title": "Changed Title", "slug": "first", "published": false},
			wantTitle:     "Changed Title",
			wantPublished: false,
		},
		{
			name:          "draft entry without revisions keeps its flag",
			entry:         post("a1", "first", "First Post", "2024-01-05", false),
			values:        map[string]any{"title": "Changed Title", "slug": "first"},
			wantTitle:     "Changed Title",
			wantPublished: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			f.seed(t, tt.entry)

			payload, err := f.svc.UpdateEntry(context.Background(), admin,
				updateOpts(tt.entry.Collection, "a1", tt.values)...)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTitle, payload["title"])

			stored := f.entry(t, "a1")
			assert.Equal(t, tt.wantTitle, stored.Title())
			assert.Equal(t, tt.wantPublished, stored.Published)

			wc, err := f.store.FindWorkingCopy(context.Background(), "a1")
			if !tt.wantWorkingCopy {
				assert.ErrorIs(t, err, service.ErrWorkingCopyNotFound)
				assert.Equal(t, "admin", stored.UpdatedBy)
				assert.Equal(t, fixedNow, stored.UpdatedAt)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Changed Title", wc.Data["title"])
			assert.Equal(t, "Original intro", wc.Data["intro"])
			assert.Equal(t, "admin", wc.UserID)
			assert.Equal(t, fixedNow, wc.UpdatedAt)
			assert.Empty(t, stored.UpdatedBy)
		})
	}
}

func TestUpdateEntry_WorkingCopyIsEdited(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seed(t, article("a1", "first", "First Article", true))

	_, err := f.svc.UpdateEntry(context.Background(), admin,
		updateOpts("articles", "a1", map[string]any{"title": "Draft One", "slug": "first", "intro": "New intro"})...)
	require.NoError(t, err)

	// The second edit starts from the working copy, not the live entry
	_, err = f.svc.UpdateEntry(context.Background(), admin,
		updateOpts("articles", "a1", map[string]any{"title": "Draft Two", "slug": "first"})...)
	require.NoError(t, err)

	wc, err := f.store.FindWorkingCopy(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "Draft Two", wc.Data["title"])
	assert.Equal(t, "New intro", wc.Data["intro"])
	assert.Equal(t, "Original intro", f.entry(t, "a1").Data["intro"])
}

func TestUpdateEntry_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		values  map[string]any
		field   string
		message string
	}{
		{
			name:    "short title",
			values:  map[string]any{"title": "Hi", "slug": "hello-world"},
			field:   "title",
			message: "The title must be at least 3 characters.",
		},
		{
			name:    "missing slug",
			values:  map[string]any{"title": "Hello again"},
			field:   "slug",
			message: "The slug field is required.",
		},
		{
			name:    "slug of another entry",
			values:  map[string]any{"title": "Hello again", "slug": "second"},
			field:   "slug",
			message: "The slug has already been taken.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			f.seed(t,
				post("p1", "hello-world", "Hello World", "2024-01-05", true),
				post("p2", "second", "Second", "2024-01-06", true),
			)

			_, err := f.svc.UpdateEntry(context.Background(), editor, updateOpts("blog", "p1", tt.values)...)
			var verr *service.ValidationError
			require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
			assert.Contains(t, verr.Fields[tt.field], tt.message)

			assert.Equal(t, "Hello World", f.entry(t, "p1").Title())
		})
	}
}

func TestUpdateEntry_KeepsOwnSlug(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seed(t, post("p1", "hello-world", "Hello World", "2024-01-05", true))

	payload, err := f.svc.UpdateEntry(context.Background(), editor,
		updateOpts("blog", "p1", map[string]any{"id": "other", "title": "Hello World", "slug": "Hello-World"})...)
	require.NoError(t, err)
	assert.Equal(t, "p1", payload["id"])
	assert.Equal(t, "hello-world", payload["slug"])
}

func TestUpdateEntry_Data(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	seeded := post("p1", "hello-world", "Hello World", "2024-01-05", true)
	seeded.Data["body"] = "Body text"
	seeded.Data["tags"] = []string{"go"}
	f.seed(t, seeded)

	_, err := f.svc.UpdateEntry(context.Background(), editor, updateOpts("blog", "p1", map[string]any{
		"title": "Hello World",
		"slug":  "hello-world",
		"tags":  nil,
		"date":  "2024-04-01 08:05",
	})...)
	require.NoError(t, err)

	stored := f.entry(t, "p1")
	assert.Equal(t, map[string]any{"title": "Hello World", "body": "Body text"}, stored.Data)
	assert.Equal(t, "2024-04-01-0805", stored.Date)

	_, err = f.svc.UpdateEntry(context.Background(), editor, updateOpts("blog", "p1", map[string]any{
		"title": "Hello World",
		"slug":  "hello-world",
		"date":  "",
	})...)
	require.NoError(t, err)
	assert.Equal(t, "2024-04-01-0805", f.entry(t, "p1").Date)
}

func TestUpdateEntry_Localization(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	root := post("p1", "hello-world", "Hello World", "2024-01-05", true)
	fr := post("p1-fr", "bonjour", "Bonjour", "2024-01-05", true)
	fr.Locale = "fr"
	fr.OriginID = "p1"
	fr.Data["tags"] = []string{"old"}
	f.seed(t, root, fr)

	_, err := f.svc.UpdateEntry(context.Background(), editor,
		append(updateOpts("blog", "p1-fr", map[string]any{
			"title": "Bonjour le monde",
			"slug":  "bonjour",
			"body":  "Corps",
			"tags":  "ignored",
		}), service.WithLocalizedFields([]string{"title", "body"}))...)
	require.NoError(t, err)

	stored := f.entry(t, "p1-fr")
	assert.Equal(t, map[string]any{"title": "Bonjour le monde", "body": "Corps"}, stored.Data)
	assert.Equal(t, "p1", stored.OriginID)
	assert.Equal(t, "Hello World", f.entry(t, "p1").Title())
}

func TestUpdateEntry_Structure(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seed(t,
		page("about", "about", "About"),
		page("team", "team", "Team"),
		page("contact", "contact", "Contact"),
	)
	f.seedTree(t, "en",
		[2]string{"about", ""},
		[2]string{"contact", ""},
		[2]string{"team", "about"},
	)

	_, err := f.svc.UpdateEntry(context.Background(), admin, updateOpts("pages", "team", map[string]any{
		"title":  "Team",
		"slug":   "team",
		"parent": []any{"contact"},
	})...)
	require.NoError(t, err)

	tree, err := f.store.FindTree(context.Background(), "pages", "en")
	require.NoError(t, err)
	assert.Equal(t, "contact", tree.Parent("team"))
	assert.NotContains(t, f.entry(t, "team").Data, "parent")

	_, err = f.svc.UpdateEntry(context.Background(), admin, updateOpts("pages", "contact", map[string]any{
		"title":  "Contact Us",
		"slug":   "contact",
		"parent": "team",
	})...)
	var verr *service.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"An entry cannot be its own parent."}, verr.Fields["parent"])
	assert.Equal(t, "Contact", f.entry(t, "contact").Title())
}

func TestUpdateEntry_Errors(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seed(t,
		post("p1", "hello-world", "Hello World", "2024-01-05", true),
		page("about", "about", "About"),
	)

	values := map[string]any{"title": "Hello World", "slug": "hello-world"}

	_, err := f.svc.UpdateEntry(context.Background(), editor, updateOpts("blog", "missing", values)...)
	assert.ErrorIs(t, err, service.ErrEntryNotFound)

	_, err = f.svc.UpdateEntry(context.Background(), admin, updateOpts("blog", "about", values)...)
	assert.ErrorIs(t, err, service.ErrEntryNotFound)

	_, err = f.svc.UpdateEntry(context.Background(), viewer, updateOpts("blog", "p1", values)...)
	assert.ErrorIs(t, err, service.ErrAuthorizationDenied)

	other := &service.ActingUser{ID: "other", Permissions: []string{"view blog entries", "edit blog entries"}}
	_, err = f.svc.UpdateEntry(context.Background(), other, updateOpts("blog", "p1", values)...)
	assert.ErrorIs(t, err, service.ErrAuthorizationDenied)
}
