package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/stacklok/entries-server/internal/config"
	"github.com/stacklok/entries-server/internal/git"
	"github.com/stacklok/entries-server/internal/service"
	"github.com/stacklok/entries-server/internal/service/factory"
	"github.com/stacklok/entries-server/internal/service/inmemory"
	"github.com/stacklok/entries-server/internal/structure"
)

// seedEntry is one entry of an import file
type seedEntry struct {
	ID         string         `yaml:"id"`
	Collection string         `yaml:"collection"`
	Site       string         `yaml:"site"`
	Slug       string         `yaml:"slug"`
	Published  bool           `yaml:"published"`
	Blueprint  string         `yaml:"blueprint"`
	Date       string         `yaml:"date,omitempty"`
	Origin     string         `yaml:"origin,omitempty"`
	Parent     string         `yaml:"parent,omitempty"`
	Author     string         `yaml:"author,omitempty"`
	Data       map[string]any `yaml:"data"`
}

// ImportFile loads the entries of a YAML file into the stores. It returns
// the number of imported entries.
func ImportFile(ctx context.Context, cfg *config.Config, stores *factory.Stores, path string) (int, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return 0, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Import(ctx, cfg, stores, data)
}

// ImportGit loads the entries of a YAML file read from a Git repository
func ImportGit(
	ctx context.Context,
	cfg *config.Config,
	stores *factory.Stores,
	client git.Client,
	src *git.Source,
	path string,
) (int, error) {
	if src == nil {
		return 0, fmt.Errorf("git source is required")
	}
	data, err := git.ReadFile(ctx, client, src, path)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed file from %s: %w", src.URL, err)
	}
	return Import(ctx, cfg, stores, data)
}

// Import loads YAML seed entries into the stores. Entries of structured
// collections are appended to their tree under the given parent, entries of
// searchable collections are indexed. Existing entries with the same id are
// replaced. It returns the number of imported entries.
func Import(ctx context.Context, cfg *config.Config, stores *factory.Stores, data []byte) (int, error) {
	if stores == nil || stores.Entries == nil || stores.Structures == nil {
		return 0, fmt.Errorf("entry and structure stores are required")
	}

	var seeds []seedEntry
	if err := yaml.Unmarshal(data, &seeds); err != nil {
		return 0, fmt.Errorf("failed to parse seed file: %w", err)
	}

	catalog := inmemory.NewCatalog(cfg.Sites, cfg.Collections)
	now := time.Now().UTC()
	trees := map[string]*structure.Tree{}

	for i, seed := range seeds {
		c, err := catalog.FindCollection(seed.Collection)
		if err != nil {
			return i, fmt.Errorf("seed %d (%s): %w", i, seed.ID, err)
		}
		switch {
		case seed.ID == "":
			return i, fmt.Errorf("seed %d: id is required", i)
		case seed.Site == "":
			seed.Site = c.DefaultSite()
		case !c.HasSite(seed.Site):
			return i, fmt.Errorf("seed %d (%s): %w: %s", i, seed.ID, service.ErrSiteNotFound, seed.Site)
		}

		entry := &service.Entry{
			ID:         seed.ID,
			Collection: seed.Collection,
			Locale:     seed.Site,
			Slug:       seed.Slug,
			Published:  seed.Published,
			Blueprint:  seed.Blueprint,
			Data:       seed.Data,
			Date:       seed.Date,
			OriginID:   seed.Origin,
			Author:     seed.Author,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if entry.Data == nil {
			entry.Data = map[string]any{}
		}
		if err := stores.Entries.SaveEntry(ctx, entry); err != nil {
			return i, fmt.Errorf("seed %d (%s): %w", i, seed.ID, err)
		}

		if c.Structured {
			tree, err := stores.Structures.FindTree(ctx, c.Handle, entry.Locale)
			if err != nil {
				return i, err
			}
			tree.MaxDepth = c.MaxDepth
			if err := tree.Move(entry.ID, seed.Parent); err != nil {
				return i, fmt.Errorf("seed %d (%s): %w", i, seed.ID, err)
			}
			if err := stores.Structures.SaveTree(ctx, tree); err != nil {
				return i, err
			}
			slog.DebugContext(ctx, "Placed seed entry",
				"entry", entry.ID,
				"path", strings.Join(append(tree.Ancestors(entry.ID), entry.ID), "/"))
			trees[tree.Collection+"/"+tree.Locale] = tree
		}

		if c.Searchable && stores.Search != nil {
			if err := stores.Search.Insert(ctx, entry); err != nil {
				return i, fmt.Errorf("seed %d (%s): failed to index: %w", i, seed.ID, err)
			}
		}
	}

	for _, tree := range trees {
		slog.InfoContext(ctx, "Seeded structure",
			"collection", tree.Collection,
			"site", tree.Locale,
			"order", tree.Flatten())
	}
	return len(seeds), nil
}
