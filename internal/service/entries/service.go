// Package entries implements the entry lifecycle service on top of the
// store, schema, structure, search and authorization collaborators.
package entries

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/entries-server/internal/schema"
	"github.com/stacklok/entries-server/internal/service"
	"github.com/stacklok/entries-server/internal/telemetry"
)

// options holds configuration options for the entry service
type options struct {
	catalog       service.Catalog
	blueprints    service.BlueprintRepository
	entries       service.EntryStore
	structures    service.StructureStore
	workingCopies service.WorkingCopyStore
	revisions     service.RevisionStore
	search        service.SearchIndex
	gate          service.AuthorizationGate
	scopes        service.ScopeRegistry
	assets        service.AssetResolver
	fieldtypes    *schema.Registry
	cpPath        string
	tracer        trace.Tracer
	metrics       *telemetry.EntryMetrics
	now           func() time.Time
	newID         func() string
}

// Option is a functional option for configuring the entry service
type Option func(*options) error

// WithCatalog sets the source of collections and sites
func WithCatalog(catalog service.Catalog) Option {
	return func(o *options) error {
		if catalog == nil {
			return fmt.Errorf("catalog is required")
		}
		o.catalog = catalog
		return nil
	}
}

// WithBlueprints sets the blueprint repository
func WithBlueprints(repo service.BlueprintRepository) Option {
	return func(o *options) error {
		if repo == nil {
			return fmt.Errorf("blueprint repository is required")
		}
		o.blueprints = repo
		return nil
	}
}

// WithEntryStore sets the entry store
func WithEntryStore(store service.EntryStore) Option {
	return func(o *options) error {
		if store == nil {
			return fmt.Errorf("entry store is required")
		}
		o.entries = store
		return nil
	}
}

// WithStructureStore sets the structure tree store
func WithStructureStore(store service.StructureStore) Option {
	return func(o *options) error {
		if store == nil {
			return fmt.Errorf("structure store is required")
		}
		o.structures = store
		return nil
	}
}

// WithWorkingCopyStore sets the working copy store
func WithWorkingCopyStore(store service.WorkingCopyStore) Option {
	return func(o *options) error {
		if store == nil {
			return fmt.Errorf("working copy store is required")
		}
		o.workingCopies = store
		return nil
	}
}

// WithRevisionStore sets the revision store
func WithRevisionStore(store service.RevisionStore) Option {
	return func(o *options) error {
		if store == nil {
			return fmt.Errorf("revision store is required")
		}
		o.revisions = store
		return nil
	}
}

// WithSearchIndex sets the index used by searchable collections.
// Without an index, searches fall back to a title match.
func WithSearchIndex(index service.SearchIndex) Option {
	return func(o *options) error {
		o.search = index
		return nil
	}
}

// WithAuthorizationGate sets the gate deciding every action
func WithAuthorizationGate(gate service.AuthorizationGate) Option {
	return func(o *options) error {
		if gate == nil {
			return fmt.Errorf("authorization gate is required")
		}
		o.gate = gate
		return nil
	}
}

// WithScopeRegistry sets the registry resolving listing filters
func WithScopeRegistry(scopes service.ScopeRegistry) Option {
	return func(o *options) error {
		if scopes == nil {
			return fmt.Errorf("scope registry is required")
		}
		o.scopes = scopes
		return nil
	}
}

// WithAssetResolver sets the resolver used to preload referenced assets
func WithAssetResolver(resolver service.AssetResolver) Option {
	return func(o *options) error {
		o.assets = resolver
		return nil
	}
}

// WithFieldtypes replaces the built-in fieldtype registry
func WithFieldtypes(registry *schema.Registry) Option {
	return func(o *options) error {
		if registry == nil {
			return fmt.Errorf("fieldtype registry is required")
		}
		o.fieldtypes = registry
		return nil
	}
}

// WithCPPath sets the prefix of the URLs returned in view models
func WithCPPath(path string) Option {
	return func(o *options) error {
		o.cpPath = path
		return nil
	}
}

// WithTracer sets the OpenTelemetry tracer for the entry service.
// If not set, tracing will be disabled (no-op).
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) error {
		o.tracer = tracer
		return nil
	}
}

// WithMetrics sets the entry metrics recorder
func WithMetrics(metrics *telemetry.EntryMetrics) Option {
	return func(o *options) error {
		o.metrics = metrics
		return nil
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(o *options) error {
		if now == nil {
			return fmt.Errorf("clock is required")
		}
		o.now = now
		return nil
	}
}

// WithIDGenerator overrides the generator of entry and revision ids
func WithIDGenerator(newID func() string) Option {
	return func(o *options) error {
		if newID == nil {
			return fmt.Errorf("id generator is required")
		}
		o.newID = newID
		return nil
	}
}

// entryService implements the EntryService interface
type entryService struct {
	catalog       service.Catalog
	blueprints    service.BlueprintRepository
	entries       service.EntryStore
	structures    service.StructureStore
	workingCopies service.WorkingCopyStore
	revisions     service.RevisionStore
	search        service.SearchIndex
	gate          service.AuthorizationGate
	scopes        service.ScopeRegistry
	assets        service.AssetResolver
	fieldtypes    *schema.Registry
	urls          urlBuilder
	tracer        trace.Tracer
	metrics       *telemetry.EntryMetrics
	now           func() time.Time
	newID         func() string
}

var _ service.EntryService = (*entryService)(nil)

// New creates a new entry service with the given options
func New(opts ...Option) (service.EntryService, error) {
	o := &options{
		fieldtypes: schema.DefaultRegistry(),
		now:        time.Now,
		newID:      uuid.NewString,
	}

	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	switch {
	case o.catalog == nil:
		return nil, fmt.Errorf("catalog is required")
	case o.blueprints == nil:
		return nil, fmt.Errorf("blueprint repository is required")
	case o.entries == nil:
		return nil, fmt.Errorf("entry store is required")
	case o.structures == nil:
		return nil, fmt.Errorf("structure store is required")
	case o.workingCopies == nil:
		return nil, fmt.Errorf("working copy store is required")
	case o.revisions == nil:
		return nil, fmt.Errorf("revision store is required")
	case o.gate == nil:
		return nil, fmt.Errorf("authorization gate is required")
	case o.scopes == nil:
		return nil, fmt.Errorf("scope registry is required")
	}

	return &entryService{
		catalog:       o.catalog,
		blueprints:    o.blueprints,
		entries:       o.entries,
		structures:    o.structures,
		workingCopies: o.workingCopies,
		revisions:     o.revisions,
		search:        o.search,
		gate:          o.gate,
		scopes:        o.scopes,
		assets:        o.assets,
		fieldtypes:    o.fieldtypes,
		urls:          urlBuilder{cp: o.cpPath, catalog: o.catalog},
		tracer:        o.tracer,
		metrics:       o.metrics,
		now:           o.now,
		newID:         o.newID,
	}, nil
}

// CheckReadiness checks if the entry store is reachable
func (s *entryService) CheckReadiness(ctx context.Context) error {
	if err := s.entries.Ping(ctx); err != nil {
		return fmt.Errorf("entry store is not ready: %w", err)
	}
	return nil
}

// ListCollections returns the collections the user may view
func (s *entryService) ListCollections(
	ctx context.Context,
	user *service.ActingUser,
) ([]*service.CollectionSummary, error) {
	ctx, span := s.startSpan(ctx, "entryService.ListCollections")
	defer span.End()

	out := make([]*service.CollectionSummary, 0)
	for _, c := range s.catalog.ListCollections() {
		if !s.gate.Allows(ctx, user, service.ActionView, c, nil) {
			continue
		}
		summary := s.urls.summary(c)
		if s.gate.Allows(ctx, user, service.ActionCreate, c, nil) {
			summary.CreateURL = s.urls.create(c, c.DefaultSite())
		}
		out = append(out, summary)
	}
	return out, nil
}

// collection resolves a collection handle
func (s *entryService) collection(handle string) (*service.Collection, error) {
	return s.catalog.FindCollection(handle)
}

// site checks that the site is enabled for the collection, defaulting to
// the collection's first site
func (s *entryService) site(c *service.Collection, handle string) (string, error) {
	if handle == "" {
		handle = c.DefaultSite()
	}
	if !c.HasSite(handle) {
		return "", fmt.Errorf("%w: %s is not enabled for %s", service.ErrSiteNotFound, handle, c.Handle)
	}
	return handle, nil
}

// entryIn loads an entry and checks that it belongs to the collection
func (s *entryService) entryIn(ctx context.Context, c *service.Collection, id string) (*service.Entry, error) {
	e, err := s.entries.FindEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Collection != c.Handle {
		return nil, fmt.Errorf("%w: %s in %s", service.ErrEntryNotFound, id, c.Handle)
	}
	return e, nil
}

// entryWithCollection loads an entry together with its collection
func (s *entryService) entryWithCollection(
	ctx context.Context,
	id string,
) (*service.Entry, *service.Collection, error) {
	e, err := s.entries.FindEntry(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	c, err := s.collection(e.Collection)
	if err != nil {
		return nil, nil, err
	}
	return e, c, nil
}

// workingState returns a copy of the entry with its working copy applied
// and whether a working copy exists
func (s *entryService) workingState(ctx context.Context, e *service.Entry) (*service.Entry, bool, error) {
	working := e.Clone()
	wc, err := s.workingCopies.FindWorkingCopy(ctx, e.ID)
	switch {
	case errors.Is(err, service.ErrWorkingCopyNotFound):
		return working, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("failed to load working copy: %w", err)
	}
	wc.ApplyTo(working)
	return working, true, nil
}

// searchable reports whether searches in the collection go to the index
func (s *entryService) searchable(c *service.Collection) bool {
	return c.Searchable && s.search != nil
}

// reindex refreshes the entry in the search index. Failures are logged,
// the stored entry stays authoritative.
func (s *entryService) reindex(ctx context.Context, c *service.Collection, e *service.Entry) {
	if !s.searchable(c) {
		return
	}
	if err := s.search.Insert(ctx, e); err != nil {
		slog.WarnContext(ctx, "Failed to index entry",
			"entry", e.ID,
			"collection", c.Handle,
			"error", err,
			"request_id", middleware.GetReqID(ctx))
	}
}

// observe records the outcome of an operation
func (s *entryService) observe(ctx context.Context, operation, collection string, start time.Time, err error) {
	s.metrics.RecordOperation(ctx, operation, collection, outcome(err), time.Since(start))
}

func outcome(err error) string {
	switch {
	case err == nil:
		return telemetry.OutcomeSuccess
	case errors.Is(err, service.ErrAuthorizationDenied):
		return telemetry.OutcomeDenied
	case errors.Is(err, service.ErrValidationFailed):
		return telemetry.OutcomeInvalid
	case errors.Is(err, service.ErrEntryNotFound),
		errors.Is(err, service.ErrCollectionNotFound),
		errors.Is(err, service.ErrSiteNotFound),
		errors.Is(err, service.ErrRevisionNotFound):
		return telemetry.OutcomeNotFound
	default:
		return telemetry.OutcomeError
	}
}
