// Package catalog discovers workflows in a content store, caches the
// result, and turns workflows into tool descriptors and invocation text.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/liberioai/dossier/internal/contentstore"
	"github.com/liberioai/dossier/internal/logger"
	"github.com/liberioai/dossier/internal/workflows"
)

// DefaultRoot is the store directory scanned for workflows.
const DefaultRoot = "workflows"

// Catalog is safe for concurrent use.
type Catalog struct {
	store   contentstore.Store
	root    string
	cache   *Cache
	refresh singleflight.Group
	log     *logrus.Entry
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithRoot sets the directory discovery starts from.
func WithRoot(root string) Option {
	return func(c *Catalog) { c.root = root }
}

// WithClock replaces time.Now for cache expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) { c.cache = NewCache(now) }
}

// WithLogger sets the log entry used for refresh and skip messages.
func WithLogger(entry *logrus.Entry) Option {
	return func(c *Catalog) { c.log = entry }
}

// New creates a Catalog over store.
func New(store contentstore.Store, opts ...Option) *Catalog {
	c := &Catalog{
		store: store,
		root:  DefaultRoot,
		cache: NewCache(nil),
		log:   logger.New("catalog"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Root returns the discovery root.
func (c *Catalog) Root() string { return c.root }

// Cache exposes the workflow list cache.
func (c *Catalog) Cache() *Cache { return c.cache }

// Workflows returns the cached workflow list, rediscovering it when the
// cache is invalid. Concurrent refreshes share one discovery pass.
func (c *Catalog) Workflows(ctx context.Context) ([]workflows.Ref, error) {
	if refs, ok := c.cache.lookup(); ok {
		return refs, nil
	}

	// The shared pass outlives any single caller's cancellation.
	flight := context.WithoutCancel(ctx)
	ch := c.refresh.DoChan(c.root, func() (any, error) {
		found, err := Discover(flight, c.store, c.root)
		if err != nil {
			return nil, err
		}
		kept, shadowed := Dedupe(found)
		for _, s := range shadowed {
			c.log.WithFields(logrus.Fields{"workflow": s.Name, "path": s.Path}).
				Warn("duplicate workflow name ignored")
		}
		fields := logrus.Fields{"root": c.root, "count": len(kept)}
		if age := c.cache.Age(); age > 0 {
			fields["previous_age"] = age.Round(time.Second).String()
		}
		c.cache.Update(kept)
		c.log.WithFields(fields).Info("workflow catalog refreshed")
		return kept, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("discover workflows: %w", res.Err)
		}
		return slices.Clone(res.Val.([]workflows.Ref)), nil
	}
}

// Invalidate forces the next Workflows call to rediscover.
func (c *Catalog) Invalidate() {
	c.cache.Update(nil)
}

// Lookup returns the ref named name.
func (c *Catalog) Lookup(ctx context.Context, name string) (workflows.Ref, error) {
	refs, err := c.Workflows(ctx)
	if err != nil {
		return workflows.Ref{}, err
	}
	for _, r := range refs {
		if r.Name == name {
			return r, nil
		}
	}
	return workflows.Ref{}, &NotFoundError{Name: name}
}

// Raw fetches the unparsed document for ref.
func (c *Catalog) Raw(ctx context.Context, ref workflows.Ref) ([]byte, error) {
	data, err := c.store.Fetch(ctx, ref.Path)
	if err != nil {
		return nil, &FetchError{Path: ref.Path, Err: err}
	}
	return data, nil
}

// Load fetches and parses the workflow document for ref.
func (c *Catalog) Load(ctx context.Context, ref workflows.Ref) (*workflows.Document, error) {
	data, err := c.Raw(ctx, ref)
	if err != nil {
		return nil, err
	}
	doc, err := workflows.ParseFrontmatter(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", ref.Path, err)
	}
	return doc, nil
}

// FetchError reports a document that could not be read from the store.
type FetchError struct {
	Path string
	Err  error
}

func (e *FetchError) Error() string { return fmt.Sprintf("fetch %s: %v", e.Path, e.Err) }

func (e *FetchError) Unwrap() error { return e.Err }

// SkipKind classifies why a workflow was left out of the tool list.
type SkipKind string

const (
	SkipFetch    SkipKind = "fetch"
	SkipParse    SkipKind = "parse"
	SkipMetadata SkipKind = "metadata"
)

// Skipped records a workflow that produced no descriptor.
type Skipped struct {
	Kind SkipKind
	Err  error
}

// ToolResult is the outcome of describing one workflow. Exactly one of
// Descriptor and Skipped is set.
type ToolResult struct {
	Ref        workflows.Ref
	Descriptor *workflows.Descriptor
	Skipped    *Skipped
}

// Describe builds a result for every cataloged workflow, in catalog order.
func (c *Catalog) Describe(ctx context.Context) ([]ToolResult, error) {
	refs, err := c.Workflows(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]ToolResult, 0, len(refs))
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results = append(results, c.describe(ctx, ref))
	}
	return results, nil
}

func (c *Catalog) describe(ctx context.Context, ref workflows.Ref) ToolResult {
	res := ToolResult{Ref: ref}
	doc, err := c.Load(ctx, ref)
	if err == nil {
		var d workflows.Descriptor
		d, err = workflows.BuildDescriptor(ref, doc)
		if err == nil {
			res.Descriptor = &d
			return res
		}
	}

	kind := SkipFetch
	switch {
	case errors.Is(err, workflows.ErrParse):
		kind = SkipParse
	case errors.Is(err, workflows.ErrMalformedMetadata):
		kind = SkipMetadata
	}
	res.Skipped = &Skipped{Kind: kind, Err: err}
	c.log.WithFields(logrus.Fields{"workflow": ref.Name, "path": ref.Path, "reason": kind}).
		WithError(err).Warn("skipping workflow")
	return res
}

// ListTools returns descriptors for every workflow that could be described.
func (c *Catalog) ListTools(ctx context.Context) ([]workflows.Descriptor, error) {
	results, err := c.Describe(ctx)
	if err != nil {
		return nil, err
	}
	tools := make([]workflows.Descriptor, 0, len(results))
	for _, r := range results {
		if r.Descriptor != nil {
			tools = append(tools, *r.Descriptor)
		}
	}
	return tools, nil
}
