// Package service provides the business contracts of the entries API: the
// EntryService operations, their options, the domain types and the
// collaborator interfaces the coordinator depends on.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/stacklok/entries-server/internal/schema"
)

var (
	// ErrEntryNotFound is returned when an entry is not found
	ErrEntryNotFound = errors.New("entry not found")
	// ErrCollectionNotFound is returned when a collection is not found
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrSiteNotFound is returned when a site is not found or not enabled for a collection
	ErrSiteNotFound = errors.New("site not found")
	// ErrRevisionNotFound is returned when a revision is not found
	ErrRevisionNotFound = errors.New("revision not found")
	// ErrWorkingCopyNotFound is returned when an entry has no working copy
	ErrWorkingCopyNotFound = errors.New("working copy not found")
	// ErrAssetNotFound is returned when an asset cannot be resolved
	ErrAssetNotFound = errors.New("asset not found")
	// ErrAuthorizationDenied is returned when the acting user may not perform an action
	ErrAuthorizationDenied = errors.New("this action is unauthorized")
	// ErrConfiguration is returned when the collection setup cannot serve the request
	ErrConfiguration = errors.New("configuration error")
	// ErrRevisionsDisabled is returned for revision operations on collections without revisions
	ErrRevisionsDisabled = errors.New("revisions are not enabled for this collection")

	// ErrValidationFailed is wrapped by every *ValidationError
	ErrValidationFailed = schema.ErrValidationFailed
	// ErrBlueprintNotFound is returned when a blueprint does not exist for a collection
	ErrBlueprintNotFound = schema.ErrBlueprintNotFound
)

// ValidationError enumerates rule violations per field.
type ValidationError = schema.ValidationError

//go:generate mockgen -destination=mocks/mock_service.go -package=mocks -source=service.go EntryService

// EntryService defines the entry lifecycle operations
type EntryService interface {
	// CheckReadiness checks if the backing stores are ready to serve requests
	CheckReadiness(ctx context.Context) error

	// ListCollections returns the collections the user may view
	ListCollections(ctx context.Context, user *ActingUser) ([]*CollectionSummary, error)

	// ListEntries returns a page of entry summaries for a collection
	ListEntries(ctx context.Context, user *ActingUser, opts ...Option[ListEntriesOptions]) (*EntryListing, error)

	// PrepareEditView returns the edit view model of an entry
	PrepareEditView(ctx context.Context, user *ActingUser, opts ...Option[EditViewOptions]) (*EditView, error)

	// UpdateEntry validates and saves submitted values for an existing entry
	UpdateEntry(ctx context.Context, user *ActingUser, opts ...Option[UpdateEntryOptions]) (EntryPayload, error)

	// CreateEntryForm returns the view model used to create an entry
	CreateEntryForm(ctx context.Context, user *ActingUser, opts ...Option[CreateFormOptions]) (*CreateView, error)

	// StoreEntry validates and creates a new entry
	StoreEntry(ctx context.Context, user *ActingUser, opts ...Option[StoreEntryOptions]) (*StoreResult, error)

	// DeleteEntry removes an entry
	DeleteEntry(ctx context.Context, user *ActingUser, opts ...Option[DeleteEntryOptions]) error

	// ListRevisions returns the revisions of an entry, newest first
	ListRevisions(ctx context.Context, user *ActingUser, opts ...Option[RevisionOptions]) ([]*Revision, error)

	// CreateRevision snapshots the current working state of an entry
	CreateRevision(ctx context.Context, user *ActingUser, opts ...Option[RevisionOptions]) (*Revision, error)

	// PublishEntry applies the working copy to the live entry and publishes it
	PublishEntry(ctx context.Context, user *ActingUser, opts ...Option[RevisionOptions]) (EntryPayload, error)

	// UnpublishEntry takes the live entry offline, leaving any working copy alone
	UnpublishEntry(ctx context.Context, user *ActingUser, opts ...Option[RevisionOptions]) (EntryPayload, error)

	// RestoreRevision restores an entry to a previous revision
	RestoreRevision(ctx context.Context, user *ActingUser, opts ...Option[RevisionOptions]) (EntryPayload, error)
}

// Option is a function that sets an option for the ListEntriesOptions, EditViewOptions,
// UpdateEntryOptions, CreateFormOptions, StoreEntryOptions, DeleteEntryOptions or
// RevisionOptions
type Option[
	T ListEntriesOptions | EditViewOptions | UpdateEntryOptions | CreateFormOptions |
		StoreEntryOptions | DeleteEntryOptions | RevisionOptions,
] func(*T) error

// ListEntriesOptions is the options for the ListEntries operation
type ListEntriesOptions struct {
	Collection    string
	Site          string
	Search        string
	SortField     string
	SortDirection string
	Filters       []FilterRequest
	Page          int
	PerPage       int
}

// EditViewOptions is the options for the PrepareEditView operation
type EditViewOptions struct {
	Collection   string
	EntryID      string
	ViaStructure bool
}

// UpdateEntryOptions is the options for the UpdateEntry operation
type UpdateEntryOptions struct {
	Collection      string
	EntryID         string
	Values          map[string]any
	LocalizedFields []string
}

// CreateFormOptions is the options for the CreateEntryForm operation
type CreateFormOptions struct {
	Collection string
	Site       string
	Blueprint  string
	Parent     string
}

// StoreEntryOptions is the options for the StoreEntry operation
type StoreEntryOptions struct {
	Collection string
	Site       string
	Blueprint  string
	Values     map[string]any
	Message    string
}

// DeleteEntryOptions is the options for the DeleteEntry operation
type DeleteEntryOptions struct {
	EntryID string
}

// RevisionOptions is the options for the revision operations
type RevisionOptions struct {
	EntryID    string
	RevisionID string
	Message    string
}

// FilterRequest names a scope filter and the values to apply it with
type FilterRequest struct {
	Handle string         `json:"handle"`
	Values map[string]any `json:"values"`
}

// WithCollection sets the collection handle for the ListEntries, PrepareEditView,
// UpdateEntry, CreateEntryForm or StoreEntry operation
func WithCollection[
	T ListEntriesOptions | EditViewOptions | UpdateEntryOptions | CreateFormOptions | StoreEntryOptions,
](
	collection string,
) Option[T] {
	return func(o *T) error {
		if collection == "" {
			return fmt.Errorf("invalid collection: %s", collection)
		}
		switch o := any(o).(type) {
		case *ListEntriesOptions:
			o.Collection = collection
		case *EditViewOptions:
			o.Collection = collection
		case *UpdateEntryOptions:
			o.Collection = collection
		case *CreateFormOptions:
			o.Collection = collection
		case *StoreEntryOptions:
			o.Collection = collection
		default:
			return fmt.Errorf("invalid option type: %T", o)
		}
		return nil
	}
}

// WithEntryID sets the entry id for the PrepareEditView, UpdateEntry, DeleteEntry
// or revision operations
func WithEntryID[T EditViewOptions | UpdateEntryOptions | DeleteEntryOptions | RevisionOptions](id string) Option[T] {
	return func(o *T) error {
		if id == "" {
			return fmt.Errorf("invalid entry id: %s", id)
		}
		switch o := any(o).(type) {
		case *EditViewOptions:
			o.EntryID = id
		case *UpdateEntryOptions:
			o.EntryID = id
		case *DeleteEntryOptions:
			o.EntryID = id
		case *RevisionOptions:
			o.EntryID = id
		default:
			return fmt.Errorf("invalid option type: %T", o)
		}
		return nil
	}
}

// WithSite sets the site handle for the ListEntries, CreateEntryForm or StoreEntry operation
func WithSite[T ListEntriesOptions | CreateFormOptions | StoreEntryOptions](site string) Option[T] {
	return func(o *T) error {
		if site == "" {
			return fmt.Errorf("invalid site: %s", site)
		}
		switch o := any(o).(type) {
		case *ListEntriesOptions:
			o.Site = site
		case *CreateFormOptions:
			o.Site = site
		case *StoreEntryOptions:
			o.Site = site
		default:
			return fmt.Errorf("invalid option type: %T", o)
		}
		return nil
	}
}

// WithSearch sets the search term for the ListEntries operation
func WithSearch(search string) Option[ListEntriesOptions] {
	return func(o *ListEntriesOptions) error {
		if search == "" {
			return fmt.Errorf("invalid search: %s", search)
		}
		o.Search = search
		return nil
	}
}

// WithSort sets the sort field and direction for the ListEntries operation
func WithSort(field, direction string) Option[ListEntriesOptions] {
	return func(o *ListEntriesOptions) error {
		if field == "" {
			return fmt.Errorf("invalid sort field: %s", field)
		}
		switch direction {
		case "":
			direction = SortAsc
		case SortAsc, SortDesc:
		default:
			return fmt.Errorf("invalid sort direction: %s", direction)
		}
		o.SortField = field
		o.SortDirection = direction
		return nil
	}
}

// WithFilters sets the scope filters for the ListEntries operation
func WithFilters(filters ...FilterRequest) Option[ListEntriesOptions] {
	return func(o *ListEntriesOptions) error {
		for _, f := range filters {
			if f.Handle == "" {
				return fmt.Errorf("invalid filter: missing handle")
			}
		}
		o.Filters = append(o.Filters, filters...)
		return nil
	}
}

// WithPage sets the page number and page size for the ListEntries operation
func WithPage(page, perPage int) Option[ListEntriesOptions] {
	return func(o *ListEntriesOptions) error {
		if page < 1 {
			return fmt.Errorf("invalid page: %d", page)
		}
		if perPage < 1 || perPage > MaxPerPage {
			return fmt.Errorf("invalid per page: %d", perPage)
		}
		o.Page = page
		o.PerPage = perPage
		return nil
	}
}

// WithViaStructure marks a PrepareEditView request as coming from the structure route
func WithViaStructure() Option[EditViewOptions] {
	return func(o *EditViewOptions) error {
		o.ViaStructure = true
		return nil
	}
}

// WithValues sets the submitted values for the UpdateEntry or StoreEntry operation
func WithValues[T UpdateEntryOptions | StoreEntryOptions](values map[string]any) Option[T] {
	return func(o *T) error {
		if values == nil {
			return fmt.Errorf("values are required")
		}
		switch o := any(o).(type) {
		case *UpdateEntryOptions:
			o.Values = values
		case *StoreEntryOptions:
			o.Values = values
		default:
			return fmt.Errorf("invalid option type: %T", o)
		}
		return nil
	}
}

// WithLocalizedFields sets the fields a localized entry overrides for the UpdateEntry operation
func WithLocalizedFields(fields []string) Option[UpdateEntryOptions] {
	return func(o *UpdateEntryOptions) error {
		o.LocalizedFields = fields
		return nil
	}
}

// WithBlueprint sets the blueprint handle for the CreateEntryForm or StoreEntry operation
func WithBlueprint[T CreateFormOptions | StoreEntryOptions](blueprint string) Option[T] {
	return func(o *T) error {
		if blueprint == "" {
			return fmt.Errorf("invalid blueprint: %s", blueprint)
		}
		switch o := any(o).(type) {
		case *CreateFormOptions:
			o.Blueprint = blueprint
		case *StoreEntryOptions:
			o.Blueprint = blueprint
		default:
			return fmt.Errorf("invalid option type: %T", o)
		}
		return nil
	}
}

// WithParent sets the parent entry for the CreateEntryForm operation
func WithParent(parent string) Option[CreateFormOptions] {
	return func(o *CreateFormOptions) error {
		if parent == "" {
			return fmt.Errorf("invalid parent: %s", parent)
		}
		o.Parent = parent
		return nil
	}
}

// WithMessage sets the revision message for the StoreEntry or revision operations
func WithMessage[T StoreEntryOptions | RevisionOptions](message string) Option[T] {
	return func(o *T) error {
		switch o := any(o).(type) {
		case *StoreEntryOptions:
			o.Message = message
		case *RevisionOptions:
			o.Message = message
		default:
			return fmt.Errorf("invalid option type: %T", o)
		}
		return nil
	}
}

// WithRevisionID sets the revision to restore for the RestoreRevision operation
func WithRevisionID(id string) Option[RevisionOptions] {
	return func(o *RevisionOptions) error {
		if id == "" {
			return fmt.Errorf("invalid revision id: %s", id)
		}
		o.RevisionID = id
		return nil
	}
}
