package factory_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/entries-server/internal/config"
	"github.com/stacklok/entries-server/internal/search"
	"github.com/stacklok/entries-server/internal/service"
	"github.com/stacklok/entries-server/internal/service/factory"
	"github.com/stacklok/entries-server/internal/service/inmemory"
)

const articleBlueprint = `
title: Article
sections:
  - handle: main
    fields:
      - handle: title
        type: text
        validate: ["required"]
`

func memoryStores() *factory.Stores {
	store := inmemory.New()
	return &factory.Stores{
		Entries:       store,
		Structures:    store,
		WorkingCopies: store,
		Revisions:     store,
		Search:        search.NewMemoryIndex(),
	}
}

func TestNewEntryService(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "blog"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blog", "article.yaml"), []byte(articleBlueprint), 0o600))

	cfg := &config.Config{
		BlueprintsDir: dir,
		Sites:         []service.Site{{Handle: "en", Name: "English", Locale: "en_US"}},
		Collections:   []service.Collection{{Handle: "blog", Title: "Blog", Sites: []string{"en"}}},
	}

	svc, err := factory.NewEntryService(context.Background(), cfg, memoryStores())
	require.NoError(t, err)
	require.NoError(t, svc.CheckReadiness(context.Background()))

	collections, err := svc.ListCollections(context.Background(), &service.ActingUser{ID: "u1", Super: true})
	require.NoError(t, err)
	require.Len(t, collections, 1)
	assert.Equal(t, "blog", collections[0].Handle)
}

func TestNewEntryService_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     *config.Config
		stores  *factory.Stores
		wantErr string
	}{
		{name: "nil config", stores: memoryStores(), wantErr: "config cannot be nil"},
		{name: "nil stores", cfg: &config.Config{}, wantErr: "stores cannot be nil"},
		{
			name:    "missing blueprints directory",
			cfg:     &config.Config{BlueprintsDir: "/does/not/exist"},
			stores:  memoryStores(),
			wantErr: "failed to load blueprints",
		},
		{
			name:    "missing policy file",
			cfg:     &config.Config{Authz: &config.AuthzConfig{PolicyFile: "/does/not/exist.cedar"}},
			stores:  memoryStores(),
			wantErr: "failed to read policy file",
		},
		{
			name:    "missing entry store",
			cfg:     &config.Config{},
			stores:  &factory.Stores{},
			wantErr: "entry store is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := factory.NewEntryService(context.Background(), tt.cfg, tt.stores)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewAssetResolver(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hero.png"), []byte("png"), 0o600))

	resolver, err := factory.NewAssetResolver(context.Background(), &config.AssetsConfig{
		Containers: []config.AssetContainerConfig{
			{Handle: "images", Local: &config.LocalContainerConfig{Dir: dir, URL: "/assets"}},
		},
	})
	require.NoError(t, err)

	asset, err := resolver.Find(context.Background(), "images::hero.png")
	require.NoError(t, err)
	assert.Equal(t, "/assets/hero.png", asset.URL)
	assert.Equal(t, int64(3), asset.Size)

	_, err = resolver.Find(context.Background(), "docs::manual.pdf")
	assert.ErrorIs(t, err, service.ErrAssetNotFound)

	_, err = factory.NewAssetResolver(context.Background(), &config.AssetsConfig{
		Containers: []config.AssetContainerConfig{{Handle: "empty"}},
	})
	assert.Error(t, err)
}
