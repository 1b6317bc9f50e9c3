package inmemory

import (
	"fmt"
	"slices"

	"github.com/stacklok/entries-server/internal/service"
)

// Catalog serves the collections and sites read from configuration.
type Catalog struct {
	sites       []*service.Site
	collections []*service.Collection
}

var _ service.Catalog = (*Catalog)(nil)

// NewCatalog creates a catalog. The given values are copied.
func NewCatalog(sites []service.Site, collections []service.Collection) *Catalog {
	c := &Catalog{
		sites:       make([]*service.Site, 0, len(sites)),
		collections: make([]*service.Collection, 0, len(collections)),
	}
	for _, s := range sites {
		c.sites = append(c.sites, &s)
	}
	for _, col := range collections {
		col.Sites = slices.Clone(col.Sites)
		col.Blueprints = slices.Clone(col.Blueprints)
		c.collections = append(c.collections, &col)
	}
	return c
}

// FindCollection implements Catalog.FindCollection
func (c *Catalog) FindCollection(handle string) (*service.Collection, error) {
	for _, col := range c.collections {
		if col.Handle == handle {
			return col, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", service.ErrCollectionNotFound, handle)
}

// ListCollections implements Catalog.ListCollections
func (c *Catalog) ListCollections() []*service.Collection {
	return slices.Clone(c.collections)
}

// FindSite implements Catalog.FindSite
func (c *Catalog) FindSite(handle string) (*service.Site, error) {
	for _, s := range c.sites {
		if s.Handle == handle {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", service.ErrSiteNotFound, handle)
}

// ListSites implements Catalog.ListSites
func (c *Catalog) ListSites() []*service.Site {
	return slices.Clone(c.sites)
}
