package entries

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stacklok/entries-server/internal/service"
	"github.com/stacklok/entries-server/internal/service/inmemory"
)

func TestURLBuilder_Permalink(t *testing.T) {
	t.Parallel()

	u := urlBuilder{
		cp: "/cp/",
		catalog: inmemory.NewCatalog([]service.Site{
			{Handle: "en", URL: "https://example.com/"},
			{Handle: "de", URL: ""},
		}, nil),
	}

	tests := []struct {
		name  string
		route string
		entry *service.Entry
		want  string
	}{
		{
			name:  "no route",
			entry: &service.Entry{ID: "1", Slug: "a", Locale: "en"},
			want:  "",
		},
		{
			name:  "date parts",
			route: "news/{year}/{month}/{day}/{slug}",
			entry: &service.Entry{ID: "1", Slug: "launch", Locale: "en", Date: "2024-02-09-1300"},
			want:  "https://example.com/news/2024/02/09/launch",
		},
		{
			name:  "undated entry keeps placeholders",
			route: "/news/{year}/{id}",
			entry: &service.Entry{ID: "42", Slug: "x", Locale: "en"},
			want:  "https://example.com/news/{year}/42",
		},
		{
			name:  "site without url",
			route: "/{slug}",
			entry: &service.Entry{ID: "1", Slug: "hallo", Locale: "de"},
			want:  "/hallo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := &service.Collection{Handle: "news", Route: tt.route}
			assert.Equal(t, tt.want, u.permalink(c, tt.entry))
		})
	}
}

func TestURLBuilder_Paths(t *testing.T) {
	t.Parallel()

	u := urlBuilder{cp: "/cp"}
	flat := &service.Collection{Handle: "blog posts", Title: "Blog"}
	tree := &service.Collection{Handle: "pages", Title: "Pages", Structured: true}
	e := &service.Entry{ID: "a/b"}

	assert.Equal(t, "/cp/collections/blog%20posts/entries/a%2Fb", u.edit(flat, e))
	assert.Equal(t, "/cp/structures/pages/entries/a%2Fb", u.edit(tree, e))
	assert.Equal(t, "/cp/collections/pages/entries/a%2Fb", u.update(tree, e))
	assert.Equal(t, "/cp/collections/blog%20posts/entries/create/en", u.create(flat, "en"))
	assert.Equal(t, "/cp/collections/blog%20posts/entries/en", u.store(flat, "en"))
	assert.Equal(t, "/cp/structures/pages", u.show(tree))
	assert.Equal(t, "entry::a/b", reference(e))
}
