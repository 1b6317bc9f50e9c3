// Package git reads content files from remote Git repositories. Repositories
// are cloned into bounded in-memory filesystems and released after reading.
package git

import (
	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/cache"
)

// Source names a repository and the revision to read from
type Source struct {
	// URL is the repository URL or local path
	URL string
	// Branch is the branch to read (optional, defaults to the remote HEAD)
	Branch string
	// Tag is the tag to read (optional)
	Tag string
	// Commit is the commit to check out (optional, requires a full clone)
	Commit string
	// Auth is HTTP basic authentication (optional)
	Auth *BasicAuth
}

// BasicAuth holds HTTP basic credentials for private repositories
type BasicAuth struct {
	Username string
	Password string
}

// Checkout is a cloned repository held in memory
type Checkout struct {
	// Repository is the go-git repository instance
	Repository *git.Repository
	// Branch is the checked out branch, empty for detached checkouts
	Branch string
	// Commit is the hash of the checked out commit
	Commit string

	storerFS    billy.Filesystem
	objectCache cache.Object
}
