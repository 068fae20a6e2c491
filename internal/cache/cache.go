package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TTLs by volatility of the cached read.
const (
	UserStatsTTL    = time.Minute
	ActivityListTTL = time.Minute
	AggregateTTL    = 3 * time.Minute
	RecentTTL       = 30 * time.Second
)

// Invalidation tags. Every cached entry is filed under one or more tags;
// a write invalidates whole tags instead of scanning keys.
func UserTag(userID string) string     { return "user:" + userID }
func ActivityTag(userID string) string { return "activities:" + userID }

var (
	cacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_cache_hits_total",
			Help: "Total cache hits by query kind",
		},
		[]string{"kind"},
	)
	cacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_cache_misses_total",
			Help: "Total cache misses by query kind",
		},
		[]string{"kind"},
	)
)

// InitMetrics registers the cache counters. Call once from main.
func InitMetrics() {
	prometheus.MustRegister(cacheHits)
	prometheus.MustRegister(cacheMisses)
}

type entry struct {
	value  interface{}
	expiry time.Time
	tags   []string
}

// Cache is a TTL cache of derived read queries with an explicit index
// from entity tag to the keys that depend on it. Reads and writes take no
// cross-request locks beyond the internal mutex; a stale read for up to
// one TTL window after a concurrent write is acceptable.
type Cache struct {
	mu       sync.RWMutex
	entries  map[string]*entry
	index    map[string]map[string]struct{} // tag -> set of keys
	inflight map[string]time.Time           // query name -> start time
}

func New() *Cache {
	return &Cache{
		entries:  make(map[string]*entry),
		index:    make(map[string]map[string]struct{}),
		inflight: make(map[string]time.Time),
	}
}

// Key builds a composite cache key from the query kind and its
// distinguishing parameters.
func Key(kind string, parts ...string) string {
	if len(parts) == 0 {
		return kind
	}
	return kind + ":" + strings.Join(parts, ":")
}

func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		cacheMisses.WithLabelValues(kindOf(key)).Inc()
		return nil, false
	}
	if time.Now().After(e.expiry) {
		c.removeLocked(key, e)
		cacheMisses.WithLabelValues(kindOf(key)).Inc()
		return nil, false
	}

	cacheHits.WithLabelValues(kindOf(key)).Inc()
	return e.value, true
}

// Set stores value under key for ttl, filing it under each tag for
// invalidation.
func (c *Cache) Set(key string, value interface{}, ttl time.Duration, tags ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.entries[key]; ok {
		c.removeLocked(key, old)
	}

	c.entries[key] = &entry{
		value:  value,
		expiry: time.Now().Add(ttl),
		tags:   tags,
	}
	for _, tag := range tags {
		if c.index[tag] == nil {
			c.index[tag] = make(map[string]struct{})
		}
		c.index[tag][key] = struct{}{}
	}
}

// Invalidate drops every entry filed under any of the given tags and
// returns the number of entries removed.
func (c *Cache) Invalidate(tags ...string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for _, tag := range tags {
		for key := range c.index[tag] {
			if e, ok := c.entries[key]; ok {
				c.removeLocked(key, e)
				removed++
			}
		}
	}
	return removed
}

// InvalidateUser drops every cached read that depends on the user's
// record or activities. Used after a write that changes user stats
// (new activity, achievement unlock, challenge reward).
func (c *Cache) InvalidateUser(userID string) int {
	return c.Invalidate(UserTag(userID), ActivityTag(userID))
}

// InvalidateActivities drops only activity-scoped reads for the user.
func (c *Cache) InvalidateActivities(userID string) int {
	return c.Invalidate(ActivityTag(userID))
}

// Clear empties the cache and returns how many entries were dropped.
func (c *Cache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.entries)
	c.entries = make(map[string]*entry)
	c.index = make(map[string]map[string]struct{})
	return n
}

// StartQuery marks a named query as in flight for the stats endpoint.
func (c *Cache) StartQuery(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight[name] = time.Now()
}

// EndQuery clears the in-flight marker and returns the elapsed time.
func (c *Cache) EndQuery(name string) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	start, ok := c.inflight[name]
	if !ok {
		return 0
	}
	delete(c.inflight, name)
	return time.Since(start)
}

type Stats struct {
	Size          int `json:"size"`
	ActiveQueries int `json:"activeQueries"`
}

// Stats reports live (unexpired) entry count and in-flight queries.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := time.Now()
	size := 0
	for _, e := range c.entries {
		if now.Before(e.expiry) {
			size++
		}
	}
	return Stats{Size: size, ActiveQueries: len(c.inflight)}
}

// removeLocked deletes an entry and unindexes it. Caller holds the lock.
func (c *Cache) removeLocked(key string, e *entry) {
	delete(c.entries, key)
	for _, tag := range e.tags {
		if keys, ok := c.index[tag]; ok {
			delete(keys, key)
			if len(keys) == 0 {
				delete(c.index, tag)
			}
		}
	}
}

func kindOf(key string) string {
	if i := strings.Index(key, ":"); i > 0 {
		return key[:i]
	}
	return key
}
