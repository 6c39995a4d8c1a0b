// Package cache keeps the last upstream value of a display mode together with
// the key and time it was fetched for.
//
// A Cache is read from the scheduler goroutine only, so two fetches for the
// same cache never run at the same time. Force may be called from anywhere.
package cache

import (
	"github.com/sirupsen/logrus"
	"sync"
	"time"
)

const (
	WeatherTTL  = 600 * time.Second
	MessagesTTL = 120 * time.Second
	StationsTTL = 24 * time.Hour

	// DefaultRetryDelay throttles fetches after a failure so that a fast
	// refreshing mode does not hammer a broken upstream.
	DefaultRetryDelay = 30 * time.Second
)

// Entry is the cached value and what it was fetched for
type Entry[K comparable, V any] struct {
	Key       K
	FetchedAt time.Time
	Value     V
	Present   bool
}

type Config struct {
	// Name is only used in log lines
	Name string

	// TTL is the maximum age of a valid entry. Zero means the entry stays
	// valid as long as its key matches.
	TTL time.Duration

	// RetryDelay is the minimum delay between two failed fetches for the same key
	RetryDelay time.Duration

	// Now replaces time.Now in tests
	Now func() time.Time
}

type Stats struct {
	Hits     int64
	Misses   int64
	Failures int64
}

type Cache[K comparable, V any] struct {
	name       string
	ttl        time.Duration
	retryDelay time.Duration
	now        func() time.Time

	entry Entry[K, V]
	stats Stats

	lastFailure    time.Time
	lastFailureKey K

	forceLock sync.Mutex
	force     bool
}

func New[K comparable, V any](cfg Config) *Cache[K, V] {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = 0
	}
	return &Cache[K, V]{
		name:       cfg.Name,
		ttl:        cfg.TTL,
		retryDelay: cfg.RetryDelay,
		now:        cfg.Now,
	}
}

// Force invalidates the cache on its next read. The flag clears itself after
// one fetch, whether it succeeds or not.
func (c *Cache[K, V]) Force() {
	c.forceLock.Lock()
	defer c.forceLock.Unlock()
	c.force = true
}

func (c *Cache[K, V]) forced() bool {
	c.forceLock.Lock()
	defer c.forceLock.Unlock()
	return c.force
}

func (c *Cache[K, V]) clearForce() {
	c.forceLock.Lock()
	defer c.forceLock.Unlock()
	c.force = false
}

// Valid reports whether the entry can be served for key without fetching
func (c *Cache[K, V]) Valid(key K) bool {
	if !c.entry.Present || c.entry.Key != key || c.forced() {
		return false
	}
	return c.ttl == 0 || c.now().Sub(c.entry.FetchedAt) < c.ttl
}

// Get returns the cached value when valid, otherwise calls fetch. When fetch
// fails the previous value is returned if there is one; ok is false when
// there is nothing to show at all.
func (c *Cache[K, V]) Get(key K, fetch func() (V, error)) (value V, ok bool) {
	if c.Valid(key) {
		c.stats.Hits++
		return c.entry.Value, true
	}

	now := c.now()
	if !c.forced() && c.retryDelay > 0 && !c.lastFailure.IsZero() && c.lastFailureKey == key && now.Sub(c.lastFailure) < c.retryDelay {
		return c.fallback()
	}

	c.stats.Misses++
	logrus.Debugf("Fetching new %s data", c.name)
	fresh, err := fetch()
	c.clearForce()
	if err != nil {
		c.stats.Failures++
		c.lastFailure = now
		c.lastFailureKey = key
		logrus.Warnf("Unable to fetch %s data: %v", c.name, err)
		return c.fallback()
	}

	c.entry = Entry[K, V]{
		Key:       key,
		FetchedAt: now,
		Value:     fresh,
		Present:   true,
	}
	c.lastFailure = time.Time{}
	return fresh, true
}

func (c *Cache[K, V]) fallback() (V, bool) {
	if c.entry.Present {
		return c.entry.Value, true
	}
	var zero V
	return zero, false
}

// Snapshot returns a copy of the current entry
func (c *Cache[K, V]) Snapshot() Entry[K, V] {
	return c.entry
}

func (c *Cache[K, V]) Stats() Stats {
	return c.stats
}
