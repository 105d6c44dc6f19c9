package catalog

import (
	"slices"
	"sync"
	"time"

	"github.com/liberioai/dossier/internal/workflows"
)

// CacheTTL is how long a discovered workflow list is reused.
const CacheTTL = 3600 * time.Second

// Cache holds the most recent discovery result. An empty list is never
// considered valid, so a store with no workflows is rescanned on every use.
type Cache struct {
	mu        sync.RWMutex
	workflows []workflows.Ref
	updated   time.Time
	now       func() time.Time
}

// NewCache returns an empty cache. A nil clock means time.Now.
func NewCache(now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{now: now}
}

// IsValid reports whether the cached list is non-empty and younger than CacheTTL.
func (c *Cache) IsValid() bool {
	_, ok := c.lookup()
	return ok
}

// Update replaces the cached list and stamps it with the current time.
func (c *Cache) Update(refs []workflows.Ref) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.workflows = slices.Clone(refs)
	c.updated = c.now()
}

// Workflows returns a copy of the cached list regardless of validity.
func (c *Cache) Workflows() []workflows.Ref {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.workflows)
}

// Age returns the time since the last Update, or zero if never updated.
func (c *Cache) Age() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.updated.IsZero() {
		return 0
	}
	return c.now().Sub(c.updated)
}

func (c *Cache) lookup() ([]workflows.Ref, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.workflows) == 0 || c.now().Sub(c.updated) >= CacheTTL {
		return nil, false
	}
	return slices.Clone(c.workflows), true
}
