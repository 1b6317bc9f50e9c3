package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createRepo initialises a repository in a temp dir with one commit holding files
func createRepo(t *testing.T, files map[string]string) (string, *git.Repository) {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	commitFiles(t, repo, dir, files, "initial")
	return dir, repo
}

func commitFiles(t *testing.T, repo *git.Repository, dir string, files map[string]string, msg string) plumbing.Hash {
	t.Helper()

	wt, err := repo.Worktree()
	require.NoError(t, err)
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		_, err := wt.Add(name)
		require.NoError(t, err)
	}
	hash, err := wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{Name: "Test Author", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return hash
}

func TestClient_CloneAndReadFile(t *testing.T) {
	t.Parallel()

	dir, _ := createRepo(t, map[string]string{
		"seed/entries.yaml": "- id: home\n",
		"README.md":         "content",
	})

	c := NewClient()
	co, err := c.Clone(t.Context(), &Source{URL: dir})
	require.NoError(t, err)
	assert.Equal(t, "master", co.Branch)
	assert.Len(t, co.Commit, 40)

	data, err := c.ReadFile(co, "seed/entries.yaml")
	require.NoError(t, err)
	assert.Equal(t, "- id: home\n", string(data))

	_, err = c.ReadFile(co, "missing.yaml")
	assert.ErrorContains(t, err, "missing.yaml")

	require.NoError(t, c.Release(co))
	assert.Nil(t, co.Repository)
}

func TestClient_CloneCommit(t *testing.T) {
	t.Parallel()

	dir, repo := createRepo(t, map[string]string{"entries.yaml": "v1"})
	head, err := repo.Head()
	require.NoError(t, err)
	first := head.Hash()
	commitFiles(t, repo, dir, map[string]string{"entries.yaml": "v2"}, "second")

	data, err := ReadFile(t.Context(), NewClient(), &Source{URL: dir, Commit: first.String()}, "entries.yaml")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(data))

	data, err = ReadFile(t.Context(), NewClient(), &Source{URL: dir}, "entries.yaml")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))
}

func TestClient_CloneErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		src    *Source
		errMsg string
	}{
		{name: "nil source", src: nil, errMsg: "repository URL is required"},
		{name: "empty url", src: &Source{}, errMsg: "repository URL is required"},
		{name: "missing path", src: &Source{URL: filepath.Join(t.TempDir(), "nope")}, errMsg: "failed to clone repository"},
		{
			name: "unknown branch",
			src: func() *Source {
				dir, _ := createRepo(t, map[string]string{"a": "b"})
				return &Source{URL: dir, Branch: "does-not-exist"}
			}(),
			errMsg: "failed to clone repository",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			co, err := NewClient().Clone(t.Context(), tt.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.Nil(t, co)
		})
	}
}

func TestClient_ReleaseNil(t *testing.T) {
	t.Parallel()

	c := NewClient()
	assert.Error(t, c.Release(nil))
	assert.Error(t, c.Release(&Checkout{}))
	_, err := c.ReadFile(&Checkout{}, "a")
	assert.Error(t, err)
}

func TestLimitedFS(t *testing.T) {
	t.Parallel()

	t.Run("file count", func(t *testing.T) {
		t.Parallel()
		fs := newLimitedFS(memfs.New(), 2, 1024)
		for _, name := range []string{"a", "b"} {
			f, err := fs.Create(name)
			require.NoError(t, err)
			require.NoError(t, f.Close())
		}
		// reopening an existing file does not count
		f, err := fs.Create("a")
		require.NoError(t, err)
		require.NoError(t, f.Close())

		_, err = fs.Create("c")
		assert.ErrorIs(t, err, ErrTooManyFiles)
	})

	t.Run("total size", func(t *testing.T) {
		t.Parallel()
		fs := newLimitedFS(memfs.New(), 10, 8)
		f, err := fs.Create("a")
		require.NoError(t, err)
		_, err = f.Write([]byte("12345"))
		require.NoError(t, err)
		_, err = f.Write([]byte("6789"))
		assert.ErrorIs(t, err, ErrTooLarge)
	})
}
