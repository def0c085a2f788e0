// Package local provides a FolderTree implementation over the local filesystem.
package local

import (
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path/filepath"

	"github.com/kazu-1234/MusicPlayer/internal/ports"
)

// Tree resolves folder roots into traversable trees on the local filesystem.
// URIs are absolute file paths. The platform build would replace this adapter
// with one backed by document-tree access; the scanner is oblivious either way.
type Tree struct {
	logger *slog.Logger
}

// NewTree creates a new local filesystem tree.
func NewTree(logger *slog.Logger) *Tree {
	return &Tree{logger: logger}
}

// Walk traverses the tree beneath root in recursive descent.
// Unreadable subtrees are logged and skipped; they never abort the walk.
func (t *Tree) Walk(root string, fn func(entry ports.TreeEntry) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// A bad directory is skipped, siblings continue
			if t.logger != nil {
				t.logger.Warn("skipping unreadable path",
					slog.String("path", path),
					slog.Any("error", err))
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		return fn(ports.TreeEntry{
			URI:  path,
			Name: d.Name(),
			MIME: mime.TypeByExtension(filepath.Ext(path)),
			Dir:  d.IsDir(),
		})
	})
}

// CountFiles counts files beneath root that satisfy match.
// Returns 0 when the root cannot be traversed, signalling callers to fall
// back to indeterminate progress.
func (t *Tree) CountFiles(root string, match func(entry ports.TreeEntry) bool) int {
	count := 0
	err := t.Walk(root, func(entry ports.TreeEntry) error {
		if !entry.Dir && match(entry) {
			count++
		}
		return nil
	})
	if err != nil {
		return 0
	}
	return count
}

// Open opens a byte stream for the given file URI.
func (t *Tree) Open(uri string) (io.ReadSeekCloser, error) {
	return os.Open(uri)
}

// Exists reports whether the resource behind uri is currently reachable.
func (t *Tree) Exists(uri string) bool {
	info, err := os.Stat(uri)
	return err == nil && !info.IsDir()
}

// Verify that Tree implements the FolderTree interface
var _ ports.FolderTree = (*Tree)(nil)
