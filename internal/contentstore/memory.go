package contentstore

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
)

// Memory is an in-process Store backed by a map of file paths to content.
type Memory struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemory returns a Memory store seeded with files.
func NewMemory(files map[string]string) *Memory {
	m := &Memory{files: make(map[string][]byte, len(files))}
	for p, content := range files {
		m.files[cleanPath(p)] = []byte(content)
	}
	return m
}

// Put adds or replaces a file.
func (m *Memory) Put(p, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[cleanPath(p)] = []byte(content)
}

// Remove deletes a file.
func (m *Memory) Remove(p string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, cleanPath(p))
}

func (m *Memory) List(ctx context.Context, dir string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir = cleanPath(dir)
	prefix := ""
	if dir != "" {
		prefix = dir + "/"
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool)
	var entries []Entry
	for p := range m.files {
		rest, ok := strings.CutPrefix(p, prefix)
		if !ok || rest == "" {
			continue
		}
		name, _, isDir := strings.Cut(rest, "/")
		if seen[name] {
			continue
		}
		seen[name] = true

		full := path.Join(dir, name)
		e := Entry{Type: TypeFile, Name: name, Path: full, DownloadURL: "memory://" + full}
		if isDir {
			e.Type = TypeDir
			e.DownloadURL = ""
		}
		entries = append(entries, e)
	}

	if len(entries) == 0 && dir != "" {
		return nil, fmt.Errorf("%w: %s", ErrNotExist, dir)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (m *Memory) Fetch(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[cleanPath(p)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotExist, p)
	}
	return append([]byte(nil), data...), nil
}

// cleanPath normalizes p to a slash-separated path without leading or
// trailing slashes. The root is "".
func cleanPath(p string) string {
	p = strings.Trim(path.Clean("/"+p), "/")
	return p
}
