// Package filesystem provides the photo directory backend for photozip.
// All access goes through an os.Root, so listings cannot escape the
// configured photo root.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sagarc03/photozip"
)

// Store lists photo directories under a root.
type Store struct {
	root *os.Root
	path string
}

// NewPhotoStore creates a Store over root. path is the absolute location
// of root on disk; the archiver is started there, so it must be usable as
// a working directory.
func NewPhotoStore(root *os.Root, path string) *Store {
	return &Store{root: root, path: path}
}

// Open opens dir as a photo root and returns a Store for it.
func Open(dir string) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve photo root: %w", err)
	}

	root, err := os.OpenRoot(abs)
	if err != nil {
		return nil, fmt.Errorf("open photo root: %w", err)
	}

	return NewPhotoStore(root, abs), nil
}

// Close releases the root.
func (s *Store) Close() error {
	return s.root.Close()
}

// Directories returns the immediate subdirectories of the root in name
// order. Symlinks are followed; other entries are skipped.
func (s *Store) Directories(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dirEntries, err := fs.ReadDir(s.root.FS(), ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read photo root: %w", err)
	}

	var names []string
	for _, entry := range dirEntries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if entry.Type()&fs.ModeSymlink != 0 {
			info, err := s.root.Stat(entry.Name())
			if err != nil {
				slog.Warn("skipping unreadable symlink", "name", entry.Name(), "err", err)
				continue
			}
			if !info.IsDir() {
				continue
			}
		} else if !entry.IsDir() {
			continue
		}

		names = append(names, entry.Name())
	}

	return names, nil
}

// Entries returns the names of the direct entries of dir. Returns
// photozip.ErrNotFound if dir does not exist.
func (s *Store) Entries(ctx context.Context, dir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dirEntries, err := fs.ReadDir(s.root.FS(), dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, photozip.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	names := make([]string, 0, len(dirEntries))
	for _, entry := range dirEntries {
		names = append(names, entry.Name())
	}

	return names, nil
}

// Path returns the absolute path of dir under the root.
func (s *Store) Path(dir string) string {
	return filepath.Join(s.path, dir)
}
