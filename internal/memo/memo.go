// Package memo provides a bounded, single-flight memoization cache
// for expensive computations keyed by canonical request values.
//
// The cache combines an LRU (hashicorp/golang-lru) with per-key
// duplicate suppression (x/sync/singleflight): concurrent callers
// asking for the same key trigger exactly one computation and share
// its result. Failed computations are never cached, so a transient
// failure does not poison the key.
package memo

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// DefaultCapacity is the entry bound used when no capacity is
// configured. 128 distinct requests per cache covers an interactive
// session comfortably.
const DefaultCapacity = 128

// Key is the constraint for cache keys: comparable for LRU identity
// plus a canonical string form for single-flight grouping.
type Key interface {
	comparable
	CacheKey() string
}

// ComputeFunc produces the value for a key. It is invoked at most once
// per key across concurrent callers, and its error is returned to all
// of them without being cached.
type ComputeFunc[K Key, V any] func(ctx context.Context, key K) (V, error)

// TimeoutError reports a computation exceeding the configured bound.
// The computation keeps running in the background; a later request for
// the same key may still find its result cached.
type TimeoutError struct {
	Key   string
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("computation for %s exceeded %s", e.Key, e.After)
}

// Stats is a point-in-time snapshot of cache effectiveness counters.
type Stats struct {
	Hits   int64
	Misses int64
}

// Cache memoizes a ComputeFunc behind a bounded LRU.
//
// Thread-safety: all methods are safe for concurrent use. Writes for a
// given key are serialized by the single-flight group; distinct keys
// proceed independently.
type Cache[K Key, V any] struct {
	entries *lru.Cache[K, V]
	group   singleflight.Group
	compute ComputeFunc[K, V]
	timeout time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	timeout time.Duration
}

// WithTimeout bounds the wait on a single computation. Zero (the
// default) waits indefinitely, matching the original behavior.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// New creates a cache holding at most capacity entries, evicting the
// least recently used entry when full. capacity must be positive.
func New[K Key, V any](capacity int, compute ComputeFunc[K, V], opts ...Option) (*Cache[K, V], error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	entries, err := lru.New[K, V](capacity)
	if err != nil {
		return nil, fmt.Errorf("memo cache: %w", err)
	}
	return &Cache[K, V]{
		entries: entries,
		compute: compute,
		timeout: o.timeout,
	}, nil
}

// Get returns the cached value for key, computing and storing it on a
// miss. Concurrent misses for the same key share one computation.
//
// The caller's context cancels only its own wait: the in-flight
// computation continues for other waiters and, on success, still
// populates the cache. Errors from the computation are returned
// unwrapped and never cached.
func (c *Cache[K, V]) Get(ctx context.Context, key K) (V, error) {
	if v, ok := c.entries.Get(key); ok {
		c.hits.Add(1)
		return v, nil
	}
	c.misses.Add(1)

	ch := c.group.DoChan(key.CacheKey(), func() (any, error) {
		// Detached from the triggering caller: the result is shared,
		// so one caller's cancellation must not abort it.
		cctx := context.Background()
		if c.timeout > 0 {
			var cancel context.CancelFunc
			cctx, cancel = context.WithTimeout(cctx, c.timeout)
			defer cancel()
		}

		v, err := c.compute(cctx, key)
		if err != nil {
			return nil, err
		}
		c.entries.Add(key, v)
		return v, nil
	})

	var timeoutC <-chan time.Time
	if c.timeout > 0 {
		timer := time.NewTimer(c.timeout)
		defer timer.Stop()
		timeoutC = timer.C
	}

	var zero V
	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(V), nil
	case <-timeoutC:
		return zero, &TimeoutError{Key: key.CacheKey(), After: c.timeout}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Peek reports whether key is cached without recording a hit or
// updating recency.
func (c *Cache[K, V]) Peek(key K) bool {
	return c.entries.Contains(key)
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	return c.entries.Len()
}

// Stats returns a snapshot of the hit/miss counters.
func (c *Cache[K, V]) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// Purge drops every cached entry. In-flight computations are
// unaffected and will repopulate the cache on completion.
func (c *Cache[K, V]) Purge() {
	c.entries.Purge()
}
