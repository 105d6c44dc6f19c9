package catalog

import (
	"context"
	"fmt"
	"sort"

	"github.com/liberioai/dossier/internal/contentstore"
	"github.com/liberioai/dossier/internal/workflows"
)

// Discover walks the store from root and returns every workflow document,
// sorted by path. Directories are visited at most once. A failure to list
// any directory fails the whole walk.
func Discover(ctx context.Context, store contentstore.Store, root string) ([]workflows.Ref, error) {
	var refs []workflows.Ref
	visited := make(map[string]bool)
	pending := []string{root}

	for len(pending) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dir := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		if visited[dir] {
			continue
		}
		visited[dir] = true

		entries, err := store.List(ctx, dir)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", dir, err)
		}
		for _, e := range entries {
			switch e.Type {
			case contentstore.TypeDir:
				if !visited[e.Path] {
					pending = append(pending, e.Path)
				}
			case contentstore.TypeFile:
				if name, ok := workflows.NameFromFile(e.Name); ok {
					refs = append(refs, workflows.Ref{Name: name, Path: e.Path, DownloadURL: e.DownloadURL})
				}
			}
		}
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Path < refs[j].Path })
	return refs, nil
}

// Dedupe keeps the first ref for each name, in the given order, and returns
// the refs it dropped.
func Dedupe(refs []workflows.Ref) (kept, shadowed []workflows.Ref) {
	seen := make(map[string]bool, len(refs))
	for _, r := range refs {
		if seen[r.Name] {
			shadowed = append(shadowed, r)
			continue
		}
		seen[r.Name] = true
		kept = append(kept, r)
	}
	return kept, shadowed
}
