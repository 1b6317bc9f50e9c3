// Package filtering provides the scope filters applied to entry listings.
//
// A scope is a named plugin that restricts an entry query with the values a
// client submits for it. Listings resolve each requested scope by handle and
// apply them in request order; the resulting conditions are conjunctive.
//
// # Built-in Scopes
//
//   - status: {"status": "published" | "draft"}
//   - site: {"site": "<site handle>"}
//   - blueprint: {"blueprint": "<blueprint handle>"}
//   - fields: {"<field>": {"operator": "=", "value": ...}, ...}
//   - slug: {"include": ["news-*"], "exclude": ["*-draft"]}
//   - tags: {"field": "tags", "tags": ["go", "cms"]}
//
// # Slug Patterns
//
// Slug patterns use gobwas/glob, where '*' also matches across '/'. Patterns
// are validated with filepath.Match first so malformed character classes are
// rejected before they reach a store. Examples:
//
//   - "news-*" matches "news-2024", "news-archive"
//   - "post?" matches "post1" but not "posts-1"
//
// # Usage Example
//
//	registry := filtering.NewDefaultRegistry()
//	scope, err := registry.Find("status")
//	if err != nil {
//		return err
//	}
//	query := service.NewEntryQuery("blog")
//	err = scope.Apply(query, map[string]any{"status": "published"})
package filtering
