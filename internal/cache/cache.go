// Package cache provides a small two-tier result cache in front of
// the query processor: an in-memory LRU plus a query-result tier with
// its own TTL. There is no disk tier — the index is never persisted,
// and neither is its query cache.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

type item struct {
	data      interface{}
	expiresAt time.Time
	hits      int64
}

func (it *item) expired() bool {
	return time.Now().After(it.expiresAt)
}

// QueryCache is a two-tier cache: L1 is a small in-memory LRU for
// general lookups, L2 holds scored query results with their own TTL.
type QueryCache struct {
	l1Max int
	l1TTL time.Duration
	l1Mu  sync.RWMutex
	l1    map[string]*item
	l1LRU []string

	l2TTL time.Duration
	l2Mu  sync.RWMutex
	l2    map[string]*item

	statsMu sync.RWMutex
	stats   Stats
}

// Stats tracks hit/miss counts per tier.
type Stats struct {
	L1Hits, L1Misses int64
	L2Hits, L2Misses int64
	Evictions        int64
}

// Config configures a QueryCache.
type Config struct {
	L1MaxItems int
	L1TTL      time.Duration
	L2TTL      time.Duration
}

// DefaultConfig gives reasonable sizes and TTLs for a two-tier cache
// in front of a single-process index.
func DefaultConfig() Config {
	return Config{
		L1MaxItems: 1000,
		L1TTL:      30 * time.Minute,
		L2TTL:      5 * time.Minute,
	}
}

// New builds a QueryCache. A zero Config falls back to DefaultConfig.
func New(cfg Config) *QueryCache {
	if cfg.L1MaxItems == 0 {
		cfg = DefaultConfig()
	}
	return &QueryCache{
		l1Max: cfg.L1MaxItems,
		l1TTL: cfg.L1TTL,
		l1:    make(map[string]*item),
		l2TTL: cfg.L2TTL,
		l2:    make(map[string]*item),
	}
}

func hashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:16])
}

// Get checks L1 then L2, promoting an L2 hit into L1.
func (c *QueryCache) Get(key string) (interface{}, bool) {
	hk := hashKey(key)

	if data, ok := c.getFromL1(hk); ok {
		c.bump(&c.stats.L1Hits)
		return data, true
	}
	c.bump(&c.stats.L1Misses)

	if data, ok := c.getFromL2(hk); ok {
		c.bump(&c.stats.L2Hits)
		c.setL1(hk, data)
		return data, true
	}
	c.bump(&c.stats.L2Misses)
	return nil, false
}

// Set stores a value in L1 only.
func (c *QueryCache) Set(key string, data interface{}) {
	c.setL1(hashKey(key), data)
}

// SetQueryResult stores a scored query result in L2 (and promotes to L1).
func (c *QueryCache) SetQueryResult(query string, results interface{}) {
	hk := hashKey("query:" + query)
	c.setL2(hk, results)
	c.setL1(hk, results)
}

// GetQueryResult retrieves a cached query result.
func (c *QueryCache) GetQueryResult(query string) (interface{}, bool) {
	return c.Get("query:" + query)
}

func (c *QueryCache) getFromL1(key string) (interface{}, bool) {
	c.l1Mu.Lock()
	defer c.l1Mu.Unlock()

	it, ok := c.l1[key]
	if !ok || it.expired() {
		return nil, false
	}
	it.hits++
	c.touchLRU(key)
	return it.data, true
}

func (c *QueryCache) setL1(key string, data interface{}) {
	c.l1Mu.Lock()
	defer c.l1Mu.Unlock()

	if _, exists := c.l1[key]; exists {
		c.removeLRU(key)
	}
	c.l1[key] = &item{data: data, expiresAt: time.Now().Add(c.l1TTL)}
	c.l1LRU = append([]string{key}, c.l1LRU...)

	if len(c.l1) > c.l1Max {
		oldest := c.l1LRU[len(c.l1LRU)-1]
		delete(c.l1, oldest)
		c.l1LRU = c.l1LRU[:len(c.l1LRU)-1]
		c.bump(&c.stats.Evictions)
	}
}

func (c *QueryCache) touchLRU(key string) {
	for i, k := range c.l1LRU {
		if k == key {
			c.l1LRU = append(c.l1LRU[:i], c.l1LRU[i+1:]...)
			c.l1LRU = append([]string{key}, c.l1LRU...)
			return
		}
	}
}

func (c *QueryCache) removeLRU(key string) {
	for i, k := range c.l1LRU {
		if k == key {
			c.l1LRU = append(c.l1LRU[:i], c.l1LRU[i+1:]...)
			return
		}
	}
}

func (c *QueryCache) getFromL2(key string) (interface{}, bool) {
	c.l2Mu.RLock()
	defer c.l2Mu.RUnlock()

	it, ok := c.l2[key]
	if !ok || it.expired() {
		return nil, false
	}
	it.hits++
	return it.data, true
}

func (c *QueryCache) setL2(key string, data interface{}) {
	c.l2Mu.Lock()
	defer c.l2Mu.Unlock()
	c.l2[key] = &item{data: data, expiresAt: time.Now().Add(c.l2TTL)}
}

func (c *QueryCache) bump(counter *int64) {
	c.statsMu.Lock()
	*counter++
	c.statsMu.Unlock()
}

// GetStats returns a snapshot of hit/miss counters.
func (c *QueryCache) GetStats() Stats {
	c.statsMu.RLock()
	defer c.statsMu.RUnlock()
	return c.stats
}

// Invalidate drops the L2 entry for a query — used when the
// underlying index is rebuilt.
func (c *QueryCache) Invalidate(query string) {
	hk := hashKey("query:" + query)
	c.l2Mu.Lock()
	delete(c.l2, hk)
	c.l2Mu.Unlock()
}
