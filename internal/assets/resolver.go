package assets

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/stacklok/entries-server/internal/service"
)

// idSeparator separates the container handle from the path in an asset id.
const idSeparator = "::"

// Container looks up files in one storage location.
type Container interface {
	// Stat returns the asset at path or an error wrapping service.ErrAssetNotFound
	Stat(ctx context.Context, path string) (*service.Asset, error)
}

// ParseID splits an asset id into its container handle and path.
func ParseID(id string) (string, string, error) {
	container, path, found := strings.Cut(id, idSeparator)
	if !found || container == "" || path == "" {
		return "", "", fmt.Errorf("%w: malformed id %q", service.ErrAssetNotFound, id)
	}
	return container, path, nil
}

// Resolver routes asset lookups to the container named in the id.
type Resolver struct {
	mu         sync.RWMutex
	containers map[string]Container
}

var _ service.AssetResolver = (*Resolver)(nil)

// NewResolver creates a resolver without containers.
func NewResolver() *Resolver {
	return &Resolver{containers: map[string]Container{}}
}

// Register adds or replaces a container.
func (r *Resolver) Register(handle string, c Container) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.containers[handle] = c
}

// Find resolves an id of the form container::path.
func (r *Resolver) Find(ctx context.Context, id string) (*service.Asset, error) {
	handle, path, err := ParseID(id)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	c, ok := r.containers[handle]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: unknown container %s", service.ErrAssetNotFound, handle)
	}

	asset, err := c.Stat(ctx, path)
	if err != nil {
		return nil, err
	}
	asset.ID = id
	asset.Container = handle
	asset.Path = path
	return asset, nil
}
