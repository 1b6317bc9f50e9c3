package service

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/stacklok/entries-server/internal/dates"
)

const (
	// SortAsc sorts in ascending order
	SortAsc = "asc"
	// SortDesc sorts in descending order
	SortDesc = "desc"

	// DefaultPerPage is the page size used when none is requested
	DefaultPerPage = 25
	// MaxPerPage is the largest accepted page size
	MaxPerPage = 500
)

// Entry statuses derived from the published flag and the date
const (
	StatusPublished = "published"
	StatusDraft     = "draft"
	StatusScheduled = "scheduled"
)

// Site is a locale the entries can be authored in.
type Site struct {
	Handle string `json:"handle" yaml:"handle"`
	Name   string `json:"name" yaml:"name"`
	Locale string `json:"locale" yaml:"locale"`
	URL    string `json:"url" yaml:"url"`
}

// Collection is a content type definition grouping entries.
type Collection struct {
	Handle           string   `json:"handle" yaml:"handle"`
	Title            string   `json:"title" yaml:"title"`
	Sites            []string `json:"sites" yaml:"sites"`
	Structured       bool     `json:"structured" yaml:"structured"`
	MaxDepth         int      `json:"maxDepth,omitempty" yaml:"maxDepth"`
	Dated            bool     `json:"dated" yaml:"dated"`
	DefaultPublished bool     `json:"defaultPublished" yaml:"defaultPublished"`
	SortField        string   `json:"sortField,omitempty" yaml:"sortField"`
	SortDirection    string   `json:"sortDirection,omitempty" yaml:"sortDirection"`
	Revisions        bool     `json:"revisions" yaml:"revisions"`
	Searchable       bool     `json:"searchable" yaml:"searchable"`
	Blueprints       []string `json:"blueprints,omitempty" yaml:"blueprints"`
	Route            string   `json:"route,omitempty" yaml:"route"`
}

// HasSite reports whether the collection is enabled for the site.
func (c *Collection) HasSite(site string) bool {
	return slices.Contains(c.Sites, site)
}

// DefaultSite returns the first site of the collection.
func (c *Collection) DefaultSite() string {
	if len(c.Sites) == 0 {
		return ""
	}
	return c.Sites[0]
}

// DefaultSort returns the configured sort, falling back to date descending
// for dated collections and title ascending otherwise.
func (c *Collection) DefaultSort() (string, string) {
	if c.SortField != "" {
		dir := c.SortDirection
		if dir == "" {
			dir = SortAsc
		}
		return c.SortField, dir
	}
	if c.Dated {
		return "date", SortDesc
	}
	return "title", SortAsc
}

// Entry is one content record of a collection in one locale.
type Entry struct {
	ID         string         `json:"id"`
	Collection string         `json:"collection"`
	Locale     string         `json:"locale"`
	Slug       string         `json:"slug"`
	Published  bool           `json:"published"`
	Blueprint  string         `json:"blueprint"`
	Data       map[string]any `json:"data"`
	Date       string         `json:"date,omitempty"`
	OriginID   string         `json:"origin,omitempty"`
	Author     string         `json:"author,omitempty"`
	UpdatedBy  string         `json:"updatedBy,omitempty"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// Title returns the title stored in the entry data.
func (e *Entry) Title() string {
	s, _ := e.Data["title"].(string)
	return s
}

// HasOrigin reports whether the entry is a localization of another entry.
func (e *Entry) HasOrigin() bool {
	return e.OriginID != ""
}

// Value returns the value of a queryable field. Known attributes resolve to
// the entry's columns, anything else to its data.
func (e *Entry) Value(field string) any {
	switch field {
	case "id":
		return e.ID
	case "collection":
		return e.Collection
	case "locale", "site":
		return e.Locale
	case "slug":
		return e.Slug
	case "published":
		return e.Published
	case "blueprint":
		return e.Blueprint
	case "date":
		return e.Date
	case "origin":
		return e.OriginID
	case "author":
		return e.Author
	case "updated_at":
		return e.UpdatedAt
	case "created_at":
		return e.CreatedAt
	}
	return e.Data[field]
}

// Status derives the publication status of the entry.
func (e *Entry) Status(dated bool, now time.Time) string {
	if !e.Published {
		return StatusDraft
	}
	if dated && e.Date != "" {
		if t, err := dates.Parse(e.Date); err == nil && t.After(now) {
			return StatusScheduled
		}
	}
	return StatusPublished
}

// Clone returns a copy whose data can be changed independently.
func (e *Entry) Clone() *Entry {
	c := *e
	c.Data = maps.Clone(e.Data)
	if c.Data == nil {
		c.Data = map[string]any{}
	}
	return &c
}

// ToPayload serializes the entry as a flat key-value structure. Data keys do
// not shadow the entry's own attributes.
func (e *Entry) ToPayload() EntryPayload {
	out := EntryPayload{}
	maps.Copy(out, e.Data)
	out["id"] = e.ID
	out["collection"] = e.Collection
	out["locale"] = e.Locale
	out["slug"] = e.Slug
	out["published"] = e.Published
	out["blueprint"] = e.Blueprint
	out["origin"] = e.OriginID
	out["author"] = e.Author
	out["updated_by"] = e.UpdatedBy
	out["updated_at"] = e.UpdatedAt
	out["title"] = e.Title()
	if e.Date != "" {
		out["date"] = e.Date
	}
	return out
}

// EntryPayload is a flat serialization of an entry.
type EntryPayload map[string]any

// WorkingCopy is an uncommitted draft of an entry.
type WorkingCopy struct {
	EntryID   string         `json:"entryId"`
	Slug      string         `json:"slug"`
	Published bool           `json:"published"`
	Date      string         `json:"date,omitempty"`
	Data      map[string]any `json:"data"`
	UserID    string         `json:"userId,omitempty"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// NewWorkingCopy snapshots the entry into a working copy.
func NewWorkingCopy(e *Entry) *WorkingCopy {
	return &WorkingCopy{
		EntryID:   e.ID,
		Slug:      e.Slug,
		Published: e.Published,
		Date:      e.Date,
		Data:      maps.Clone(e.Data),
	}
}

// ApplyTo overlays the working copy onto the entry.
func (w *WorkingCopy) ApplyTo(e *Entry) {
	e.Slug = w.Slug
	e.Published = w.Published
	e.Date = w.Date
	e.Data = maps.Clone(w.Data)
	if e.Data == nil {
		e.Data = map[string]any{}
	}
}

// Attributes returns the revision attributes held by the working copy.
func (w *WorkingCopy) Attributes() RevisionAttributes {
	return RevisionAttributes{Slug: w.Slug, Published: w.Published, Date: w.Date, Data: maps.Clone(w.Data)}
}

// RevisionAction is the kind of event a revision records
type RevisionAction string

// Revision actions
const (
	RevisionActionRevision  RevisionAction = "revision"
	RevisionActionPublish   RevisionAction = "publish"
	RevisionActionUnpublish RevisionAction = "unpublish"
	RevisionActionRestore   RevisionAction = "restore"
)

// RevisionAttributes is the snapshot of entry state kept by a revision.
type RevisionAttributes struct {
	Slug      string         `json:"slug"`
	Published bool           `json:"published"`
	Date      string         `json:"date,omitempty"`
	Data      map[string]any `json:"data"`
}

// Revision is one recorded state of an entry.
type Revision struct {
	ID         string             `json:"id"`
	EntryID    string             `json:"entryId"`
	Action     RevisionAction     `json:"action"`
	Message    string             `json:"message,omitempty"`
	UserID     string             `json:"userId,omitempty"`
	Attributes RevisionAttributes `json:"attributes"`
	CreatedAt  time.Time          `json:"createdAt"`
}

// WorkingCopy converts the revision attributes back into a working copy.
func (r *Revision) WorkingCopy() *WorkingCopy {
	return &WorkingCopy{
		EntryID:   r.EntryID,
		Slug:      r.Attributes.Slug,
		Published: r.Attributes.Published,
		Date:      r.Attributes.Date,
		Data:      maps.Clone(r.Attributes.Data),
	}
}

// ActingUser is the user on whose behalf an operation runs.
type ActingUser struct {
	ID          string         `json:"id"`
	Email       string         `json:"email,omitempty"`
	Name        string         `json:"name,omitempty"`
	Super       bool           `json:"super"`
	Permissions []string       `json:"permissions,omitempty"`
	Preferences map[string]any `json:"preferences,omitempty"`
}

// HasPermission reports whether the user holds the permission. Super users
// hold every permission.
func (u *ActingUser) HasPermission(permission string) bool {
	if u == nil {
		return false
	}
	return u.Super || slices.Contains(u.Permissions, permission)
}

// Preference looks up a dot separated preference key.
func (u *ActingUser) Preference(key string) any {
	if u == nil {
		return nil
	}
	var current any = u.Preferences
	for _, part := range strings.Split(key, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = m[part]
	}
	return current
}

// Asset is a file referenced from entry data.
type Asset struct {
	ID           string    `json:"id"`
	Container    string    `json:"container"`
	Path         string    `json:"path"`
	URL          string    `json:"url"`
	Size         int64     `json:"size"`
	MimeType     string    `json:"mimeType,omitempty"`
	LastModified time.Time `json:"lastModified"`
}

// CollectionSummary describes a collection in listings.
type CollectionSummary struct {
	Handle     string   `json:"handle"`
	Title      string   `json:"title"`
	Sites      []string `json:"sites"`
	Structured bool     `json:"structured"`
	Dated      bool     `json:"dated"`
	Revisions  bool     `json:"revisions"`
	EntriesURL string   `json:"entriesUrl"`
	CreateURL  string   `json:"createUrl,omitempty"`
}

// EntryAction is a contextual action offered for an entry in listings.
type EntryAction struct {
	Handle    string `json:"handle"`
	Title     string `json:"title"`
	Dangerous bool   `json:"dangerous,omitempty"`
}

// EntrySummary is one row of an entry listing.
type EntrySummary struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Slug      string         `json:"slug"`
	Locale    string         `json:"locale"`
	Published bool           `json:"published"`
	Status    string         `json:"status"`
	Date      string         `json:"date,omitempty"`
	Viewable  bool           `json:"viewable"`
	Editable  bool           `json:"editable"`
	EditURL   string         `json:"editUrl"`
	Permalink string         `json:"permalink,omitempty"`
	Actions   []EntryAction  `json:"actions"`
	Values    map[string]any `json:"values"`
}

// Column is a listing column derived from the blueprint.
type Column struct {
	Field    string `json:"field"`
	Label    string `json:"label"`
	Visible  bool   `json:"visible"`
	Sortable bool   `json:"sortable"`
}

// FilterSummary describes an available scope filter.
type FilterSummary struct {
	Handle string `json:"handle"`
	Title  string `json:"title"`
}

// ListingMeta carries pagination and presentation data of a listing.
type ListingMeta struct {
	Filters       []FilterSummary `json:"filters"`
	SortColumn    string          `json:"sortColumn"`
	SortDirection string          `json:"sortDirection"`
	Columns       []Column        `json:"columns"`
	Total         int             `json:"total"`
	Page          int             `json:"currentPage"`
	PerPage       int             `json:"perPage"`
	LastPage      int             `json:"lastPage"`
}

// EntryListing is a page of entry summaries.
type EntryListing struct {
	Data []*EntrySummary `json:"data"`
	Meta ListingMeta     `json:"meta"`
}

// Localization is the status of an entry family member in one site.
type Localization struct {
	Handle    string `json:"handle"`
	Name      string `json:"name"`
	Active    bool   `json:"active"`
	Exists    bool   `json:"exists"`
	Root      bool   `json:"root"`
	Origin    bool   `json:"origin"`
	Published bool   `json:"published"`
	URL       string `json:"url"`
}

// Breadcrumb is one step back towards the collection.
type Breadcrumb struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// EditActions holds the URLs the edit form posts to.
type EditActions struct {
	Save           string `json:"save"`
	Publish        string `json:"publish,omitempty"`
	Revisions      string `json:"revisions,omitempty"`
	Restore        string `json:"restore,omitempty"`
	CreateRevision string `json:"createRevision,omitempty"`
}

// EditView is the view model of the entry edit form. When Redirect is set the
// caller must send the user there instead.
type EditView struct {
	Redirect         string             `json:"-"`
	Title            string             `json:"title"`
	Reference        string             `json:"reference"`
	Editing          bool               `json:"editing"`
	Actions          EditActions        `json:"actions"`
	Values           map[string]any     `json:"values"`
	Meta             map[string]any     `json:"meta"`
	Collection       *CollectionSummary `json:"collection"`
	Blueprint        map[string]any     `json:"blueprint"`
	ReadOnly         bool               `json:"readOnly"`
	Locale           string             `json:"locale"`
	LocalizedFields  []string           `json:"localizedFields"`
	IsRoot           bool               `json:"isRoot"`
	HasOrigin        bool               `json:"hasOrigin"`
	OriginValues     map[string]any     `json:"originValues,omitempty"`
	OriginMeta       map[string]any     `json:"originMeta,omitempty"`
	Permalink        string             `json:"permalink,omitempty"`
	Localizations    []Localization     `json:"localizations"`
	HasWorkingCopy   bool               `json:"hasWorkingCopy"`
	PreloadedAssets  []*Asset           `json:"preloadedAssets"`
	RevisionsEnabled bool               `json:"revisionsEnabled"`
	Breadcrumbs      []Breadcrumb       `json:"breadcrumbs"`
}

// CreateView is the view model of the entry create form.
type CreateView struct {
	Title            string             `json:"title"`
	Actions          EditActions        `json:"actions"`
	Values           map[string]any     `json:"values"`
	Meta             map[string]any     `json:"meta"`
	Collection       *CollectionSummary `json:"collection"`
	Blueprint        map[string]any     `json:"blueprint"`
	Published        bool               `json:"published"`
	Locale           string             `json:"locale"`
	Localizations    []Localization     `json:"localizations"`
	RevisionsEnabled bool               `json:"revisionsEnabled"`
	Breadcrumbs      []Breadcrumb       `json:"breadcrumbs"`
}

// StoreResult is the created entry and where the client should go next.
type StoreResult struct {
	Entry    EntryPayload `json:"data"`
	Redirect string       `json:"redirect"`
}
