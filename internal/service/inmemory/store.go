// Package inmemory provides in-memory implementations of the entry,
// structure, working copy and revision stores.
package inmemory

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/stacklok/entries-server/internal/service"
	"github.com/stacklok/entries-server/internal/structure"
)

type treeKey struct {
	collection string
	locale     string
}

// Store keeps all persisted state in process memory. Values are copied on
// the way in and out so callers never share state with the store.
type Store struct {
	mu            sync.RWMutex // Protects all maps below
	entries       map[string]*service.Entry
	trees         map[treeKey]*structure.Tree
	workingCopies map[string]*service.WorkingCopy
	revisions     map[string][]*service.Revision
}

var (
	_ service.EntryStore       = (*Store)(nil)
	_ service.StructureStore   = (*Store)(nil)
	_ service.WorkingCopyStore = (*Store)(nil)
	_ service.RevisionStore    = (*Store)(nil)
)

// New creates an empty store.
func New() *Store {
	return &Store{
		entries:       map[string]*service.Entry{},
		trees:         map[treeKey]*structure.Tree{},
		workingCopies: map[string]*service.WorkingCopy{},
		revisions:     map[string][]*service.Revision{},
	}
}

// FindEntry implements EntryStore.FindEntry
func (s *Store) FindEntry(_ context.Context, id string) (*service.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", service.ErrEntryNotFound, id)
	}
	return e.Clone(), nil
}

// SaveEntry implements EntryStore.SaveEntry. Like the database's unique
// index, it rejects a slug already used in the collection and locale.
func (s *Store) SaveEntry(_ context.Context, entry *service.Entry) error {
	if entry.ID == "" {
		return fmt.Errorf("entry id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.slugTakenLocked(entry.Collection, entry.Locale, entry.Slug, entry.ID) {
		return fmt.Errorf("slug %q already exists in %s/%s", entry.Slug, entry.Collection, entry.Locale)
	}
	s.entries[entry.ID] = entry.Clone()
	return nil
}

// DeleteEntry implements EntryStore.DeleteEntry. The entry's revisions and
// working copy go with it.
func (s *Store) DeleteEntry(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return fmt.Errorf("%w: %s", service.ErrEntryNotFound, id)
	}
	delete(s.entries, id)
	delete(s.workingCopies, id)
	delete(s.revisions, id)
	return nil
}

// QueryEntries implements EntryStore.QueryEntries. Without a sort field,
// results restricted by IDs keep the order of the IDs.
func (s *Store) QueryEntries(_ context.Context, query *service.EntryQuery) (*service.EntryPage, error) {
	s.mu.RLock()
	matched := make([]*service.Entry, 0)
	for _, e := range s.entries {
		ok, err := query.Matches(e)
		if err != nil {
			s.mu.RUnlock()
			return nil, fmt.Errorf("failed to evaluate query: %w", err)
		}
		if ok {
			matched = append(matched, e.Clone())
		}
	}
	s.mu.RUnlock()

	switch {
	case query.SortField != "":
		service.SortEntries(matched, query.SortField, query.SortDirection)
	case query.IDs != nil:
		slices.SortFunc(matched, func(a, b *service.Entry) int {
			return cmp.Compare(slices.Index(query.IDs, a.ID), slices.Index(query.IDs, b.ID))
		})
	default:
		slices.SortFunc(matched, func(a, b *service.Entry) int { return cmp.Compare(a.ID, b.ID) })
	}

	return service.Paginate(matched, query), nil
}

// SlugExists implements EntryStore.SlugExists
func (s *Store) SlugExists(_ context.Context, collection, locale, slug, exceptID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slugTakenLocked(collection, locale, slug, exceptID), nil
}

func (s *Store) slugTakenLocked(collection, locale, slug, exceptID string) bool {
	for _, e := range s.entries {
		if e.ID != exceptID && e.Collection == collection && e.Locale == locale && e.Slug == slug {
			return true
		}
	}
	return false
}

// Localizations implements EntryStore.Localizations
func (s *Store) Localizations(_ context.Context, originID string) ([]*service.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*service.Entry
	queue := []string{originID}
	seen := map[string]bool{originID: true}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, e := range s.entries {
			if e.OriginID == current && !seen[e.ID] {
				seen[e.ID] = true
				out = append(out, e.Clone())
				queue = append(queue, e.ID)
			}
		}
	}
	slices.SortFunc(out, func(a, b *service.Entry) int {
		return cmp.Or(cmp.Compare(a.Locale, b.Locale), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

// Ping implements EntryStore.Ping
func (*Store) Ping(context.Context) error {
	return nil
}

// FindTree implements StructureStore.FindTree
func (s *Store) FindTree(_ context.Context, collection, locale string) (*structure.Tree, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if t, ok := s.trees[treeKey{collection, locale}]; ok {
		return t.Clone(), nil
	}
	return structure.New(collection, locale, 0), nil
}

// SaveTree implements StructureStore.SaveTree
func (s *Store) SaveTree(_ context.Context, tree *structure.Tree) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trees[treeKey{tree.Collection, tree.Locale}] = tree.Clone()
	return nil
}

// FindWorkingCopy implements WorkingCopyStore.FindWorkingCopy
func (s *Store) FindWorkingCopy(_ context.Context, entryID string) (*service.WorkingCopy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wc, ok := s.workingCopies[entryID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", service.ErrWorkingCopyNotFound, entryID)
	}
	return cloneWorkingCopy(wc), nil
}

// SaveWorkingCopy implements WorkingCopyStore.SaveWorkingCopy
func (s *Store) SaveWorkingCopy(_ context.Context, wc *service.WorkingCopy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workingCopies[wc.EntryID] = cloneWorkingCopy(wc)
	return nil
}

// DeleteWorkingCopy implements WorkingCopyStore.DeleteWorkingCopy
func (s *Store) DeleteWorkingCopy(_ context.Context, entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.workingCopies, entryID)
	return nil
}

// CreateRevision implements RevisionStore.CreateRevision
func (s *Store) CreateRevision(_ context.Context, revision *service.Revision) error {
	if revision.ID == "" {
		return fmt.Errorf("revision id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.revisions[revision.EntryID] = append(s.revisions[revision.EntryID], cloneRevision(revision))
	return nil
}

// ListRevisions implements RevisionStore.ListRevisions
func (s *Store) ListRevisions(_ context.Context, entryID string) ([]*service.Revision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.revisions[entryID]
	out := make([]*service.Revision, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		out = append(out, cloneRevision(list[i]))
	}
	return out, nil
}

// FindRevision implements RevisionStore.FindRevision
func (s *Store) FindRevision(_ context.Context, entryID, revisionID string) (*service.Revision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.revisions[entryID] {
		if r.ID == revisionID {
			return cloneRevision(r), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", service.ErrRevisionNotFound, revisionID)
}

func cloneWorkingCopy(wc *service.WorkingCopy) *service.WorkingCopy {
	c := *wc
	c.Data = maps.Clone(wc.Data)
	return &c
}

func cloneRevision(r *service.Revision) *service.Revision {
	c := *r
	c.Attributes.Data = maps.Clone(r.Attributes.Data)
	return &c
}
