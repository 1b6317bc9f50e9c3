package inmemory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/entries-server/internal/service"
)

func TestCatalog(t *testing.T) {
	t.Parallel()

	sites := []service.Site{{Handle: "en", Name: "English"}, {Handle: "fr", Name: "French"}}
	collections := []service.Collection{
		{Handle: "blog", Title: "Blog", Sites: []string{"en", "fr"}},
		{Handle: "pages", Title: "Pages", Sites: []string{"en"}, Structured: true},
	}
	c := NewCatalog(sites, collections)

	// The catalog keeps its own copies
	collections[0].Sites[0] = "de"

	blog, err := c.FindCollection("blog")
	require.NoError(t, err)
	assert.Equal(t, []string{"en", "fr"}, blog.Sites)

	_, err = c.FindCollection("news")
	assert.ErrorIs(t, err, service.ErrCollectionNotFound)

	fr, err := c.FindSite("fr")
	require.NoError(t, err)
	assert.Equal(t, "French", fr.Name)

	_, err = c.FindSite("de")
	assert.ErrorIs(t, err, service.ErrSiteNotFound)

	assert.Len(t, c.ListCollections(), 2)
	assert.Len(t, c.ListSites(), 2)
	assert.Equal(t, "pages", c.ListCollections()[1].Handle)
}
