// Package search provides an in-memory full-text index over entries.
package search

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"unicode"

	"github.com/stacklok/entries-server/internal/service"
)

type document struct {
	collection string
	site       string
	title      string
	terms      map[string]struct{}
}

// MemoryIndex is an inverted index over entry titles and string data.
type MemoryIndex struct {
	mu       sync.RWMutex
	docs     map[string]*document
	postings map[string]map[string]struct{}
}

var _ service.SearchIndex = (*MemoryIndex)(nil)

// NewMemoryIndex creates an empty index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		docs:     map[string]*document{},
		postings: map[string]map[string]struct{}{},
	}
}

// EnsureExists is a no-op for the memory index.
func (*MemoryIndex) EnsureExists(context.Context) error {
	return nil
}

// Insert indexes the entry, replacing a previous version.
func (idx *MemoryIndex) Insert(_ context.Context, e *service.Entry) error {
	doc := &document{
		collection: e.Collection,
		site:       e.Locale,
		title:      strings.ToLower(e.Title()),
		terms:      map[string]struct{}{},
	}
	for _, v := range e.Data {
		if s, ok := v.(string); ok {
			for _, term := range Tokenize(s) {
				doc.terms[term] = struct{}{}
			}
		}
	}
	for _, term := range Tokenize(e.Slug) {
		doc.terms[term] = struct{}{}
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.removeLocked(e.ID)
	idx.docs[e.ID] = doc
	for term := range doc.terms {
		if idx.postings[term] == nil {
			idx.postings[term] = map[string]struct{}{}
		}
		idx.postings[term][e.ID] = struct{}{}
	}
	return nil
}

// Delete removes the entry from the index.
func (idx *MemoryIndex) Delete(_ context.Context, id string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.removeLocked(id)
	return nil
}

func (idx *MemoryIndex) removeLocked(id string) {
	doc, ok := idx.docs[id]
	if !ok {
		return
	}
	for term := range doc.terms {
		delete(idx.postings[term], id)
		if len(idx.postings[term]) == 0 {
			delete(idx.postings, term)
		}
	}
	delete(idx.docs, id)
}

// Search returns the ids of entries matching any term of the query, ranked by
// the number of matched terms, then title.
func (idx *MemoryIndex) Search(_ context.Context, term, collection, site string) ([]string, error) {
	terms := Tokenize(term)
	if len(terms) == 0 {
		return []string{}, nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	scores := map[string]int{}
	for _, t := range terms {
		for id := range idx.postings[t] {
			doc := idx.docs[id]
			if collection != "" && doc.collection != collection {
				continue
			}
			if site != "" && doc.site != site {
				continue
			}
			scores[id]++
		}
	}

	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b string) int {
		if c := cmp.Compare(scores[b], scores[a]); c != 0 {
			return c
		}
		if c := cmp.Compare(idx.docs[a].title, idx.docs[b].title); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return ids, nil
}

// Tokenize lowercases s and splits it into unique words of letters and digits.
func Tokenize(s string) []string {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := words[:0]
	for _, w := range words {
		if !slices.Contains(out, w) {
			out = append(out, w)
		}
	}
	return out
}
