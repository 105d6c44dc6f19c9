package contentstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
)

// Local serves content from a directory on disk.
type Local struct {
	root string
}

// NewLocal returns a Store rooted at dir.
func NewLocal(dir string) (*Local, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve content root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("content root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content root %s is not a directory", abs)
	}
	return &Local{root: abs}, nil
}

// Root returns the absolute directory the store serves.
func (l *Local) Root() string { return l.root }

func (l *Local) resolve(p string) (string, error) {
	rel := cleanPath(p)
	if rel == "" {
		return l.root, nil
	}
	if !filepath.IsLocal(filepath.FromSlash(rel)) {
		return "", fmt.Errorf("path %q escapes the content root", p)
	}
	return filepath.Join(l.root, filepath.FromSlash(rel)), nil
}

func (l *Local) List(ctx context.Context, dir string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := l.resolve(dir)
	if err != nil {
		return nil, err
	}

	dirents, err := os.ReadDir(full)
	if err != nil {
		return nil, wrapNotExist(err, dir)
	}

	base := cleanPath(dir)
	entries := make([]Entry, 0, len(dirents))
	for _, d := range dirents {
		p := path.Join(base, d.Name())
		isDir := d.IsDir()
		if d.Type()&fs.ModeSymlink != 0 {
			info, err := os.Stat(filepath.Join(full, d.Name()))
			if err != nil {
				continue
			}
			isDir = info.IsDir()
		}

		e := Entry{Type: TypeFile, Name: d.Name(), Path: p}
		if isDir {
			e.Type = TypeDir
		} else {
			e.DownloadURL = fileURL(filepath.Join(full, d.Name()))
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (l *Local) Fetch(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := l.resolve(p)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, wrapNotExist(err, p)
	}
	return data, nil
}

func wrapNotExist(err error, p string) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotExist, p)
	}
	return err
}

func fileURL(p string) string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(p)}).String()
}
