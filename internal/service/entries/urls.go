package entries

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/stacklok/entries-server/internal/dates"
	"github.com/stacklok/entries-server/internal/service"
)

// urlBuilder renders the control panel URLs returned in view models. The
// paths mirror the API routes below the control panel prefix.
type urlBuilder struct {
	cp      string
	catalog service.Catalog
}

func (u urlBuilder) path(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	return strings.TrimSuffix(u.cp, "/") + "/" + strings.Join(escaped, "/")
}

func (u urlBuilder) collectionsIndex() string { return u.path("collections") }
func (u urlBuilder) structuresIndex() string  { return u.path("structures") }

func (u urlBuilder) show(c *service.Collection) string {
	if c.Structured {
		return u.path("structures", c.Handle)
	}
	return u.path("collections", c.Handle)
}

func (u urlBuilder) entriesIndex(c *service.Collection) string {
	return u.path("collections", c.Handle, "entries")
}

func (u urlBuilder) create(c *service.Collection, site string) string {
	return u.path("collections", c.Handle, "entries", "create", site)
}

func (u urlBuilder) store(c *service.Collection, site string) string {
	return u.path("collections", c.Handle, "entries", site)
}

// edit returns the edit URL, the structure route for structured collections
func (u urlBuilder) edit(c *service.Collection, e *service.Entry) string {
	if c.Structured {
		return u.path("structures", c.Handle, "entries", e.ID)
	}
	return u.path("collections", c.Handle, "entries", e.ID)
}

func (u urlBuilder) update(c *service.Collection, e *service.Entry) string {
	return u.path("collections", c.Handle, "entries", e.ID)
}

func (u urlBuilder) actions(c *service.Collection, e *service.Entry) service.EditActions {
	return service.EditActions{
		Save:           u.update(c, e),
		Publish:        u.path("entries", e.ID, "publish"),
		Revisions:      u.path("entries", e.ID, "revisions"),
		Restore:        u.path("entries", e.ID, "restore"),
		CreateRevision: u.path("entries", e.ID, "revisions"),
	}
}

// permalink renders the collection route against the entry's site URL.
// Collections without a route have no permalink.
func (u urlBuilder) permalink(c *service.Collection, e *service.Entry) string {
	if c.Route == "" {
		return ""
	}
	replacements := []string{"{slug}", e.Slug, "{id}", e.ID}
	if t, err := dates.Parse(e.Date); err == nil {
		replacements = append(replacements,
			"{year}", t.Format("2006"),
			"{month}", t.Format("01"),
			"{day}", t.Format("02"),
		)
	}
	p := strings.NewReplacer(replacements...).Replace(c.Route)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}

	site, err := u.catalog.FindSite(e.Locale)
	if err != nil || site.URL == "" {
		return p
	}
	return strings.TrimSuffix(site.URL, "/") + p
}

func (u urlBuilder) breadcrumbs(c *service.Collection) []service.Breadcrumb {
	first := service.Breadcrumb{Text: "Collections", URL: u.collectionsIndex()}
	if c.Structured {
		first = service.Breadcrumb{Text: "Structures", URL: u.structuresIndex()}
	}
	return []service.Breadcrumb{first, {Text: c.Title, URL: u.show(c)}}
}

func (u urlBuilder) summary(c *service.Collection) *service.CollectionSummary {
	return &service.CollectionSummary{
		Handle:     c.Handle,
		Title:      c.Title,
		Sites:      c.Sites,
		Structured: c.Structured,
		Dated:      c.Dated,
		Revisions:  c.Revisions,
		EntriesURL: u.entriesIndex(c),
	}
}

// reference identifies the entry in the editing UI
func reference(e *service.Entry) string {
	return fmt.Sprintf("entry::%s", e.ID)
}
