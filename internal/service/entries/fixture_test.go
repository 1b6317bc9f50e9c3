package entries_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stacklok/entries-server/internal/authz"
	"github.com/stacklok/entries-server/internal/filtering"
	"github.com/stacklok/entries-server/internal/schema"
	"github.com/stacklok/entries-server/internal/search"
	"github.com/stacklok/entries-server/internal/service"
	"github.com/stacklok/entries-server/internal/service/entries"
	"github.com/stacklok/entries-server/internal/service/inmemory"
	"github.com/stacklok/entries-server/internal/structure"
)

var (
	fixedNow = time.Date(2024, 3, 1, 9, 15, 0, 0, time.UTC)

	admin  = &service.ActingUser{ID: "admin", Super: true}
	editor = &service.ActingUser{
		ID: "editor",
		Permissions: []string{
			"view blog entries", "edit blog entries", "create blog entries",
			"delete blog entries", "publish blog entries",
		},
	}
	viewer = &service.ActingUser{ID: "viewer", Permissions: []string{"view blog entries"}}
)

func testSites() []service.Site {
	return []service.Site{
		{Handle: "en", Name: "English", Locale: "en_US", URL: "https://example.com"},
		{Handle: "fr", Name: "French", Locale: "fr_FR", URL: "https://example.com/fr/"},
	}
}

func testCollections() []service.Collection {
	return []service.Collection{
		{
			Handle:     "blog",
			Title:      "Blog",
			Sites:      []string{"en", "fr"},
			Dated:      true,
			Searchable: true,
			Blueprints: []string{"post"},
			Route:      "/blog/{year}/{slug}",
		},
		{
			Handle:     "pages",
			Title:      "Pages",
			Sites:      []string{"en"},
			Structured: true,
			MaxDepth:   3,
			Blueprints: []string{"page"},
		},
		{
			Handle:           "articles",
			Title:            "Articles",
			Sites:            []string{"en"},
			Revisions:        true,
			DefaultPublished: true,
			Blueprints:       []string{"article"},
		},
	}
}

func testBlueprints() *schema.Repository {
	repo := schema.NewRepository()
	repo.Add("blog", &schema.Blueprint{
		Handle: "post",
		Title:  "Post",
		Sections: []schema.Section{{
			Handle: "main",
			Fields: []schema.FieldDef{
				{Handle: "title", Type: "text", Validate: []string{"required"}, Listable: schema.ListableTrue},
				{Handle: "body", Type: "markdown", Listable: schema.ListableHidden},
				{Handle: "tags", Type: "tags", Listable: schema.ListableTrue},
				{Handle: "hero", Type: "assets", Listable: schema.ListableFalse},
			},
		}},
	})
	repo.Add("pages", &schema.Blueprint{
		Handle: "page",
		Sections: []schema.Section{{
			Handle: "main",
			Fields: []schema.FieldDef{
				{Handle: "content", Type: "textarea", Localizable: true},
			},
		}},
	})
	repo.Add("articles", &schema.Blueprint{
		Handle: "article",
		Sections: []schema.Section{{
			Handle: "main",
			Fields: []schema.FieldDef{
				{Handle: "intro", Type: "text"},
			},
		}},
	})
	return repo
}

// fixture wires the entry service to the in-memory backends
type fixture struct {
	svc     service.EntryService
	store   *inmemory.Store
	index   *search.MemoryIndex
	catalog *inmemory.Catalog
}

func newFixture(t *testing.T, extra ...entries.Option) *fixture {
	t.Helper()

	gate, err := authz.NewCedarGate(nil)
	require.NoError(t, err)

	var ids atomic.Int64
	f := &fixture{
		store:   inmemory.New(),
		index:   search.NewMemoryIndex(),
		catalog: inmemory.NewCatalog(testSites(), testCollections()),
	}

	opts := []entries.Option{
		entries.WithCatalog(f.catalog),
		entries.WithBlueprints(testBlueprints()),
		entries.WithEntryStore(f.store),
		entries.WithStructureStore(f.store),
		entries.WithWorkingCopyStore(f.store),
		entries.WithRevisionStore(f.store),
		entries.WithSearchIndex(f.index),
		entries.WithAuthorizationGate(gate),
		entries.WithScopeRegistry(filtering.NewDefaultRegistry()),
		entries.WithCPPath("/cp"),
		entries.WithClock(func() time.Time { return fixedNow }),
		entries.WithIDGenerator(func() string { return fmt.Sprintf("id-%d", ids.Add(1)) }),
	}
	f.svc, err = entries.New(append(opts, extra...)...)
	require.NoError(t, err)
	return f
}

// seed stores entries directly and indexes them
func (f *fixture) seed(t *testing.T, list ...*service.Entry) {
	t.Helper()
	for _, e := range list {
		require.NoError(t, f.store.SaveEntry(context.Background(), e))
		require.NoError(t, f.index.Insert(context.Background(), e))
	}
}

// seedTree stores a tree for the pages collection, given as child -> parent
func (f *fixture) seedTree(t *testing.T, locale string, nodes ...[2]string) {
	t.Helper()
	tree := structure.New("pages", locale, 3)
	for _, n := range nodes {
		require.NoError(t, tree.AppendTo(n[1], n[0]))
	}
	require.NoError(t, f.store.SaveTree(context.Background(), tree))
}

func (f *fixture) entry(t *testing.T, id string) *service.Entry {
	t.Helper()
	e, err := f.store.FindEntry(context.Background(), id)
	require.NoError(t, err)
	return e
}

func post(id, slug, title, date string, published bool) *service.Entry {
	return &service.Entry{
		ID:         id,
		Collection: "blog",
		Locale:     "en",
		Slug:       slug,
		Published:  published,
		Blueprint:  "post",
		Date:       date,
		Author:     "editor",
		Data:       map[string]any{"title": title},
	}
}

func page(id, slug, title string) *service.Entry {
	return &service.Entry{
		ID:         id,
		Collection: "pages",
		Locale:     "en",
		Slug:       slug,
		Published:  true,
		Blueprint:  "page",
		Data:       map[string]any{"title": title},
	}
}

func article(id, slug, title string, published bool) *service.Entry {
	return &service.Entry{
		ID:         id,
		Collection: "articles",
		Locale:     "en",
		Slug:       slug,
		Published:  published,
		Blueprint:  "article",
		Data:       map[string]any{"title": title, "intro": "Original intro"},
	}
}

func ids(rows []*service.EntrySummary) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out
}
