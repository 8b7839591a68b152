package sm2ec

import (
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// DefaultCacheCapacity is the number of points a TableCache tracks.
	DefaultCacheCapacity = 16
	// DefaultBuildThreshold is the use count at which a point gets a table.
	DefaultBuildThreshold = 2
)

// CacheStats is a snapshot of TableCache activity.
type CacheStats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Builds    uint64
}

type cacheEntry struct {
	// affine coordinates in Montgomery form
	x, y     fe
	count    uint64
	table    *stripeTable
	building bool
	gen      uint64
}

// TableCache remembers stripe tables for points that are multiplied more
// than once. A point is tracked on first use and gets a table once its use
// count reaches the build threshold; when all slots are taken the entry with
// the lowest count is evicted. It is safe for concurrent use.
type TableCache struct {
	mu        sync.Mutex
	entries   []cacheEntry
	threshold uint64
	gen       uint64
	stats     CacheStats

	log     *slog.Logger
	metrics *cacheMetrics
}

type CacheOption func(*TableCache)

// WithCapacity sets the number of points tracked.
func WithCapacity(n int) CacheOption {
	return func(c *TableCache) {
		if n > 0 {
			c.entries = make([]cacheEntry, n)
		}
	}
}

// WithBuildThreshold sets the use count that triggers a table build.
func WithBuildThreshold(n int) CacheOption {
	return func(c *TableCache) {
		if n > 0 {
			c.threshold = uint64(n)
		}
	}
}

// WithCacheLogger sets the logger for cache events.
func WithCacheLogger(l *slog.Logger) CacheOption {
	return func(c *TableCache) {
		if l != nil {
			c.log = l
		}
	}
}

// WithRegisterer exports the cache counters to reg.
func WithRegisterer(reg prometheus.Registerer) CacheOption {
	return func(c *TableCache) {
		c.metrics = newCacheMetrics(reg)
	}
}

func NewTableCache(opts ...CacheOption) *TableCache {
	c := &TableCache{
		entries:   make([]cacheEntry, DefaultCacheCapacity),
		threshold: DefaultBuildThreshold,
		log:       slog.New(slog.DiscardHandler),
	}
	for _, v := range opts {
		v(c)
	}
	return c
}

// Capacity returns the number of slots.
func (c *TableCache) Capacity() int {
	return len(c.entries)
}

// Len returns the number of points currently tracked.
func (c *TableCache) Len() (n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.entries {
		if c.entries[i].count > 0 {
			n++
		}
	}
	return
}

// Stats returns a snapshot of the cache counters.
func (c *TableCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Reset drops every entry.
func (c *TableCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.entries {
		c.entries[i] = cacheEntry{}
	}
	c.gen++
}

// find scans every slot and returns the index of the live entry holding
// (x, y). All slots are compared whatever the outcome.
func (c *TableCache) find(x, y *fe) (int, bool) {
	var found, idx uint64
	for i := range c.entries {
		e := &c.entries[i]
		live := ^ctEq(e.count, 0)
		m := feEqual(&e.x, x) & feEqual(&e.y, y) & live & ^found
		idx |= uint64(i) & m
		found |= m
	}
	return int(idx), found != 0
}

// victim returns the slot to reuse: the first empty one, else the one with
// the lowest count.
func (c *TableCache) victim() int {
	v := 0
	for i := range c.entries {
		if c.entries[i].count == 0 {
			return i
		}
		if c.entries[i].count < c.entries[v].count {
			v = i
		}
	}
	return v
}

// table returns the stripe table for the finite affine point p (Z = 1), or
// nil if the point has not been used often enough yet. A table is built by
// the caller that crosses the threshold, outside the lock, and published
// only if its slot still belongs to the same point.
func (c *TableCache) table(p *Point) *stripeTable {
	c.mu.Lock()
	i, ok := c.find(&p.x, &p.y)
	if ok {
		c.stats.Hits++
		c.metrics.hit()
	} else {
		c.stats.Misses++
		c.metrics.miss()
		i = c.victim()
		if c.entries[i].count > 0 {
			c.stats.Evictions++
			c.metrics.evict()
			c.log.Debug("sm2ec: table cache eviction", "slot", i, "count", c.entries[i].count)
		}
		c.gen++
		c.entries[i] = cacheEntry{x: p.x, y: p.y, gen: c.gen}
	}

	e := &c.entries[i]
	e.count++
	if e.table != nil || e.building || e.count < c.threshold {
		t := e.table
		c.mu.Unlock()
		return t
	}
	e.building = true
	gen := e.gen
	c.mu.Unlock()

	t := newStripeTable(p)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.Builds++
	c.metrics.build()
	if e := &c.entries[i]; e.gen == gen {
		e.table = t
		e.building = false
		c.log.Debug("sm2ec: table cache build", "slot", i)
	}
	return t
}
