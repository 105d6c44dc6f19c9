// Package contentstore lists and fetches workflow documents from a
// hierarchical content store.
package contentstore

import (
	"context"
	"errors"
)

// ErrNotExist is returned when a directory or file is missing from the store.
var ErrNotExist = errors.New("content does not exist")

// EntryType distinguishes listing entries.
type EntryType string

const (
	TypeFile EntryType = "file"
	TypeDir  EntryType = "dir"
)

// Entry is one item of a directory listing.
type Entry struct {
	Type EntryType
	// Name is the final path element.
	Name string
	// Path is slash-separated and relative to the store root.
	Path        string
	DownloadURL string
}

// Store is a read-only hierarchical content store.
type Store interface {
	// List returns the direct children of dir.
	List(ctx context.Context, dir string) ([]Entry, error)
	// Fetch returns the raw content of the file at path.
	Fetch(ctx context.Context, path string) ([]byte, error)
}
