// Package factory assembles the entry service from configuration and the
// stores selected by the storage layer.
package factory

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/stacklok/entries-server/internal/assets"
	"github.com/stacklok/entries-server/internal/authz"
	"github.com/stacklok/entries-server/internal/config"
	"github.com/stacklok/entries-server/internal/filtering"
	"github.com/stacklok/entries-server/internal/schema"
	"github.com/stacklok/entries-server/internal/service"
	"github.com/stacklok/entries-server/internal/service/entries"
	"github.com/stacklok/entries-server/internal/service/inmemory"
)

// Stores is the family of persistence components backing the entry service.
type Stores struct {
	Entries       service.EntryStore
	Structures    service.StructureStore
	WorkingCopies service.WorkingCopyStore
	Revisions     service.RevisionStore
	Search        service.SearchIndex
}

// NewEntryService creates the EntryService for the configuration. Catalog,
// blueprints, authorization gate, scopes and asset containers are built
// from cfg; extra options (tracer, metrics) are applied last.
func NewEntryService(
	ctx context.Context,
	cfg *config.Config,
	stores *Stores,
	opts ...entries.Option,
) (service.EntryService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if stores == nil {
		return nil, fmt.Errorf("stores cannot be nil")
	}

	blueprints, err := loadBlueprints(cfg.BlueprintsDir)
	if err != nil {
		return nil, err
	}

	policies, err := cfg.Authz.LoadPolicies()
	if err != nil {
		return nil, err
	}
	gate, err := authz.NewCedarGate(policies)
	if err != nil {
		return nil, fmt.Errorf("failed to create authorization gate: %w", err)
	}

	resolver, err := NewAssetResolver(ctx, &cfg.Assets)
	if err != nil {
		return nil, err
	}

	serviceOpts := []entries.Option{
		entries.WithCatalog(inmemory.NewCatalog(cfg.Sites, cfg.Collections)),
		entries.WithBlueprints(blueprints),
		entries.WithEntryStore(stores.Entries),
		entries.WithStructureStore(stores.Structures),
		entries.WithWorkingCopyStore(stores.WorkingCopies),
		entries.WithRevisionStore(stores.Revisions),
		entries.WithAuthorizationGate(gate),
		entries.WithScopeRegistry(filtering.NewDefaultRegistry()),
		entries.WithAssetResolver(resolver),
		entries.WithCPPath(cfg.Server.GetCPPath()),
	}
	if stores.Search != nil {
		serviceOpts = append(serviceOpts, entries.WithSearchIndex(stores.Search))
	}

	slog.Info("Creating entry service",
		"collections", len(cfg.Collections),
		"sites", len(cfg.Sites),
		"asset_containers", len(cfg.Assets.Containers))

	return entries.New(append(serviceOpts, opts...)...)
}

func loadBlueprints(dir string) (*schema.Repository, error) {
	if dir == "" {
		slog.Warn("No blueprints directory configured, every collection needs an explicit blueprint")
		return schema.NewRepository(), nil
	}
	repo, err := schema.LoadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load blueprints: %w", err)
	}
	return repo, nil
}

// NewAssetResolver registers one container per configured asset container
func NewAssetResolver(ctx context.Context, cfg *config.AssetsConfig) (*assets.Resolver, error) {
	resolver := assets.NewResolver()
	if cfg == nil {
		return resolver, nil
	}

	for _, c := range cfg.Containers {
		switch {
		case c.Local != nil:
			container, err := assets.NewLocalContainer(c.Local.Dir, c.Local.URL)
			if err != nil {
				return nil, fmt.Errorf("asset container %s: %w", c.Handle, err)
			}
			resolver.Register(c.Handle, container)
		case c.S3 != nil:
			client, err := newS3Client(ctx, c.S3)
			if err != nil {
				return nil, fmt.Errorf("asset container %s: %w", c.Handle, err)
			}
			container, err := assets.NewS3Container(client, c.S3.Bucket, c.S3.Prefix, c.S3.URL)
			if err != nil {
				return nil, fmt.Errorf("asset container %s: %w", c.Handle, err)
			}
			resolver.Register(c.Handle, container)
		default:
			return nil, fmt.Errorf("asset container %s has no backend", c.Handle)
		}
		slog.Debug("Registered asset container", "handle", c.Handle)
	}
	return resolver, nil
}

func newS3Client(ctx context.Context, cfg *config.S3ContainerConfig) (*s3.Client, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}
