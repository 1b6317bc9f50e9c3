package service

import (
	"context"

	"github.com/stacklok/entries-server/internal/schema"
	"github.com/stacklok/entries-server/internal/structure"
)

//go:generate mockgen -destination=mocks/mock_stores.go -package=mocks -source=stores.go EntryStore,StructureStore,WorkingCopyStore,RevisionStore,SearchIndex,AuthorizationGate,Scope,ScopeRegistry,AssetResolver,Catalog,BlueprintRepository

// EntryStore persists entries.
type EntryStore interface {
	// FindEntry returns the entry or ErrEntryNotFound
	FindEntry(ctx context.Context, id string) (*Entry, error)
	// SaveEntry inserts or replaces an entry
	SaveEntry(ctx context.Context, entry *Entry) error
	// DeleteEntry removes an entry. Removing an absent entry returns ErrEntryNotFound
	DeleteEntry(ctx context.Context, id string) error
	// QueryEntries runs a filtered, sorted and paginated query
	QueryEntries(ctx context.Context, query *EntryQuery) (*EntryPage, error)
	// SlugExists reports whether another entry of the collection and locale uses the slug
	SlugExists(ctx context.Context, collection, locale, slug, exceptID string) (bool, error)
	// Localizations returns the entries descending from the given origin,
	// directly or through other localizations
	Localizations(ctx context.Context, originID string) ([]*Entry, error)
	// Ping checks that the store is reachable
	Ping(ctx context.Context) error
}

// StructureStore persists structure trees.
type StructureStore interface {
	// FindTree returns the tree of a collection in a locale, empty when none was saved
	FindTree(ctx context.Context, collection, locale string) (*structure.Tree, error)
	// SaveTree replaces the stored tree
	SaveTree(ctx context.Context, tree *structure.Tree) error
}

// WorkingCopyStore persists at most one working copy per entry.
type WorkingCopyStore interface {
	// FindWorkingCopy returns the working copy or ErrWorkingCopyNotFound
	FindWorkingCopy(ctx context.Context, entryID string) (*WorkingCopy, error)
	// SaveWorkingCopy inserts or replaces the working copy of its entry
	SaveWorkingCopy(ctx context.Context, wc *WorkingCopy) error
	// DeleteWorkingCopy removes the working copy, if any
	DeleteWorkingCopy(ctx context.Context, entryID string) error
}

// RevisionStore persists revisions.
type RevisionStore interface {
	// CreateRevision appends a revision
	CreateRevision(ctx context.Context, revision *Revision) error
	// ListRevisions returns the revisions of an entry, newest first
	ListRevisions(ctx context.Context, entryID string) ([]*Revision, error)
	// FindRevision returns one revision of an entry or ErrRevisionNotFound
	FindRevision(ctx context.Context, entryID, revisionID string) (*Revision, error)
}

// SearchIndex answers full-text queries over entries.
type SearchIndex interface {
	// EnsureExists prepares the index for queries
	EnsureExists(ctx context.Context) error
	// Search returns matching entry ids, best match first
	Search(ctx context.Context, term, collection, site string) ([]string, error)
	// Insert adds or refreshes an entry
	Insert(ctx context.Context, entry *Entry) error
	// Delete removes an entry
	Delete(ctx context.Context, id string) error
}

// Action is an operation subject to authorization.
type Action string

// Authorized actions
const (
	ActionView    Action = "view"
	ActionEdit    Action = "edit"
	ActionUpdate  Action = "update"
	ActionCreate  Action = "create"
	ActionStore   Action = "store"
	ActionDelete  Action = "delete"
	ActionPublish Action = "publish"
)

// AuthorizationGate decides whether a user may perform an action on a
// collection or one of its entries. The entry is nil for collection level
// actions.
type AuthorizationGate interface {
	// Authorize returns an error wrapping ErrAuthorizationDenied on denial
	Authorize(ctx context.Context, user *ActingUser, action Action, collection *Collection, entry *Entry) error
	// Allows reports whether the action is permitted
	Allows(ctx context.Context, user *ActingUser, action Action, collection *Collection, entry *Entry) bool
}

// Scope is a named filter applied to entry queries.
type Scope interface {
	Handle() string
	Title() string
	// Apply restricts the query with the submitted values
	Apply(query *EntryQuery, values map[string]any) error
}

// ScopeRegistry resolves scope filters by handle.
type ScopeRegistry interface {
	// Find returns the scope or an error when no scope has the handle
	Find(handle string) (Scope, error)
	// ForCollection returns the scopes offered for the collection
	ForCollection(collection *Collection) []Scope
}

// AssetResolver looks up assets by id.
type AssetResolver interface {
	// Find returns the asset or an error wrapping ErrAssetNotFound
	Find(ctx context.Context, id string) (*Asset, error)
}

// Catalog gives read access to the configured collections and sites.
type Catalog interface {
	FindCollection(handle string) (*Collection, error)
	ListCollections() []*Collection
	FindSite(handle string) (*Site, error)
	ListSites() []*Site
}

// BlueprintRepository resolves the blueprints of a collection.
type BlueprintRepository interface {
	// Find returns the blueprint or an error wrapping ErrBlueprintNotFound
	Find(collection, handle string) (*schema.Blueprint, error)
	// Default returns the first preferred blueprint that exists, or the first visible one
	Default(collection string, preferred []string) (*schema.Blueprint, error)
}
