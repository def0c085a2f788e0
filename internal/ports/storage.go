// Package ports define the storage-access capability used by the scanner.
package ports

import (
	"io"
)

// TreeEntry describes one file or directory found while traversing a folder root.
type TreeEntry struct {
	// URI is the stable resource identifier of the entry
	URI string

	// Name is the display file name including extension
	Name string

	// MIME is the best-effort MIME classification ("" when unknown)
	MIME string

	// Dir reports whether the entry is a directory
	Dir bool
}

// FolderTree is the interface for the storage-access capability.
// It resolves opaque folder root identifiers into traversable trees and opens
// byte streams for files. The production implementation wraps the local
// filesystem; the platform build would wrap document-tree access instead.
type FolderTree interface {
	// Walk traverses the tree beneath root in recursive descent, calling fn
	// for every entry. Traversal errors inside a subtree are logged and the
	// subtree is skipped; they never abort the walk. An error from fn aborts
	// the walk and is returned.
	Walk(root string, fn func(entry TreeEntry) error) error

	// CountFiles counts files beneath root that satisfy match, for progress
	// estimation. A zero return means the total could not be cheaply
	// determined; callers should fall back to indeterminate progress.
	CountFiles(root string, match func(entry TreeEntry) bool) int

	// Open opens a byte stream for the given file URI.
	Open(uri string) (io.ReadSeekCloser, error)

	// Exists reports whether the resource behind uri is currently reachable.
	Exists(uri string) bool
}
