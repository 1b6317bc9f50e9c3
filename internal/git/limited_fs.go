package git

import (
	"errors"
	"os"
	"sync/atomic"

	billy "github.com/go-git/go-billy/v5"
)

const (
	defaultMaxFiles      = 10 * 1000
	defaultMaxTotalBytes = 100 * 1024 * 1024
)

var (
	// ErrTooManyFiles is returned when a clone creates more files than allowed
	ErrTooManyFiles = errors.New("repository exceeds the file count limit")
	// ErrTooLarge is returned when a clone writes more bytes than allowed
	ErrTooLarge = errors.New("repository exceeds the size limit")
)

// limitedFS bounds the number of files created and the bytes written through it
type limitedFS struct {
	billy.Filesystem
	maxFiles int64
	maxBytes int64
	files    *atomic.Int64
	bytes    *atomic.Int64
}

func newLimitedFS(fs billy.Filesystem, maxFiles, maxBytes int64) *limitedFS {
	return &limitedFS{
		Filesystem: fs,
		maxFiles:   maxFiles,
		maxBytes:   maxBytes,
		files:      &atomic.Int64{},
		bytes:      &atomic.Int64{},
	}
}

func (l *limitedFS) Create(name string) (billy.File, error) {
	return l.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o666)
}

func (l *limitedFS) OpenFile(name string, flag int, perm os.FileMode) (billy.File, error) {
	if flag&os.O_CREATE != 0 {
		if _, err := l.Filesystem.Stat(name); errors.Is(err, os.ErrNotExist) {
			if l.files.Add(1) > l.maxFiles {
				return nil, ErrTooManyFiles
			}
		}
	}
	f, err := l.Filesystem.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return &limitedFile{File: f, fs: l}, nil
}

func (l *limitedFS) TempFile(dir, prefix string) (billy.File, error) {
	if l.files.Add(1) > l.maxFiles {
		return nil, ErrTooManyFiles
	}
	f, err := l.Filesystem.TempFile(dir, prefix)
	if err != nil {
		return nil, err
	}
	return &limitedFile{File: f, fs: l}, nil
}

type limitedFile struct {
	billy.File
	fs *limitedFS
}

func (f *limitedFile) Write(p []byte) (int, error) {
	if f.fs.bytes.Add(int64(len(p))) > f.fs.maxBytes {
		return 0, ErrTooLarge
	}
	return f.File.Write(p)
}
