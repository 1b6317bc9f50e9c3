package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/stacklok/entries-server/internal/service"
)

// LocalContainer serves assets from a directory on disk.
type LocalContainer struct {
	root    *os.Root
	baseURL string
}

// NewLocalContainer opens dir as a container. Asset URLs are baseURL joined
// with the asset path.
func NewLocalContainer(dir, baseURL string) (*LocalContainer, error) {
	root, err := os.OpenRoot(filepath.Clean(dir))
	if err != nil {
		return nil, fmt.Errorf("failed to open asset directory %s: %w", dir, err)
	}
	return &LocalContainer{root: root, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Stat returns file metadata. Paths cannot escape the container directory.
func (c *LocalContainer) Stat(_ context.Context, p string) (*service.Asset, error) {
	if !filepath.IsLocal(filepath.FromSlash(p)) {
		return nil, fmt.Errorf("%w: %s", service.ErrAssetNotFound, p)
	}
	info, err := c.root.Stat(filepath.FromSlash(p))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", service.ErrAssetNotFound, p)
		}
		return nil, fmt.Errorf("failed to stat asset %s: %w", p, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", service.ErrAssetNotFound, p)
	}

	return &service.Asset{
		URL:          c.baseURL + "/" + (&url.URL{Path: p}).EscapedPath(),
		Size:         info.Size(),
		MimeType:     mime.TypeByExtension(path.Ext(p)),
		LastModified: info.ModTime().UTC(),
	}, nil
}

// Close releases the directory handle.
func (c *LocalContainer) Close() error {
	return c.root.Close()
}
