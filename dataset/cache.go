package dataset

import (
	"context"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ============================================================================
// CACHE — Load once, reuse, invalidate explicitly
// ============================================================================
// A Cache owns the memoized tables of one data source. Load builds a table at
// most once per resource and returns the same *Table until Invalidate drops
// it. Concurrent first loads share one construction.
// ============================================================================

// Cache memoizes parsed tables per resource.
type Cache struct {
	src    fs.FS
	files  Files
	logger *zap.Logger

	mu          sync.RWMutex
	tables      map[Resource]*Table
	generations map[Resource]uint64
	builds      map[Resource]int

	group singleflight.Group
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithLogger sets the logger used for load and invalidation events.
func WithLogger(logger *zap.Logger) CacheOption {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCache creates a cache reading files from src.
func NewCache(src fs.FS, files Files, opts ...CacheOption) *Cache {
	if files == nil {
		files = DefaultFiles()
	}
	c := &Cache{
		src:         src,
		files:       files,
		logger:      zap.NewNop(),
		tables:      make(map[Resource]*Table),
		generations: make(map[Resource]uint64),
		builds:      make(map[Resource]int),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Files returns the resource → file name mapping of the cache.
func (c *Cache) Files() Files { return c.files }

// Load returns the table for res, reading and parsing it on first use.
// Failed loads are not memoized.
func (c *Cache) Load(ctx context.Context, res Resource) (*Table, error) {
	if !res.valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownResource, string(res))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	t, ok := c.tables[res]
	c.mu.RUnlock()
	if ok {
		return t, nil
	}

	ch := c.group.DoChan(string(res), func() (interface{}, error) {
		return c.build(res)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*Table), nil
	}
}

// build reads and parses res, storing the table unless an invalidation
// happened while it was being built.
func (c *Cache) build(res Resource) (*Table, error) {
	c.mu.RLock()
	if t, ok := c.tables[res]; ok {
		c.mu.RUnlock()
		return t, nil
	}
	gen := c.generations[res]
	c.mu.RUnlock()

	start := time.Now()
	name := c.files.Name(res)

	data, err := fs.ReadFile(c.src, name)
	if err != nil {
		c.logger.Warn("resource unavailable",
			zap.String("resource", string(res)), zap.String("file", name), zap.Error(err))
		return nil, unavailable(res, name, err)
	}

	t, err := ParseCSV(data, res)
	if err != nil {
		if rerr, ok := err.(*ResourceError); ok {
			rerr.Path = name
		}
		c.logger.Warn("resource unavailable",
			zap.String("resource", string(res)), zap.String("file", name), zap.Error(err))
		return nil, err
	}
	t.Path = name

	c.mu.Lock()
	if c.generations[res] == gen {
		c.tables[res] = t
	}
	c.builds[res]++
	c.mu.Unlock()

	rows, cols := t.Shape()
	c.logger.Info("resource loaded",
		zap.String("resource", string(res)),
		zap.String("file", name),
		zap.Int("rows", rows),
		zap.Int("columns", cols),
		zap.Duration("elapsed", time.Since(start)))

	return t, nil
}

// Invalidate drops the memoized tables of the given resources; with no
// arguments it drops every table.
func (c *Cache) Invalidate(resources ...Resource) {
	if len(resources) == 0 {
		resources = Resources()
	}
	c.mu.Lock()
	for _, res := range resources {
		delete(c.tables, res)
		c.generations[res]++
		c.group.Forget(string(res))
	}
	c.mu.Unlock()

	for _, res := range resources {
		c.logger.Debug("resource invalidated", zap.String("resource", string(res)))
	}
}

// InvalidateAll drops every memoized table.
func (c *Cache) InvalidateAll() { c.Invalidate() }

// Loaded lists the resources currently memoized, in display order.
func (c *Cache) Loaded() []Resource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Resource
	for _, res := range Resources() {
		if _, ok := c.tables[res]; ok {
			out = append(out, res)
		}
	}
	return out
}

// Builds reports how many times res has been constructed by this cache.
func (c *Cache) Builds(res Resource) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.builds[res]
}
