package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/hszk-dev/megaflix/internal/infrastructure/metrics"
)

// Response is a cached upstream reply, ready to be written to a client.
type Response struct {
	Body        []byte
	ContentType string
	Status      int
}

// FetchFunc produces the value for a cache miss.
type FetchFunc func(ctx context.Context) (Response, error)

type entry struct {
	value    Response
	storedAt time.Time
	ttl      time.Duration
}

// validAt reports whether the entry is still live: now < storedAt + ttl.
func (e entry) validAt(now time.Time) bool {
	return now.Before(e.storedAt.Add(e.ttl))
}

// flightResult carries the fetched value out of the singleflight group.
type flightResult struct {
	value   Response
	fetched bool
}

// Option configures a ResponseCache.
type Option func(*ResponseCache)

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(c *ResponseCache) {
		c.now = now
	}
}

// ResponseCache is a process-local TTL cache for upstream responses.
//
// Concurrent misses for the same key are coalesced with singleflight so a
// popular key triggers a single upstream call. The mutex only guards the map;
// fetches never run while it is held. Failed fetches are not cached.
type ResponseCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	group   singleflight.Group
	now     func() time.Time
}

// NewResponseCache creates an empty cache.
func NewResponseCache(opts ...Option) *ResponseCache {
	c := &ResponseCache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrFetch returns the live value for key, calling fetch on a miss.
// The boolean result is true when the value came from fetch rather than
// from a stored entry (callers coalesced onto the same fetch also get true).
//
// The fetch runs detached from ctx cancellation so one caller going away
// does not fail every waiter on the same key; fetch is expected to bound its
// own duration.
func (c *ResponseCache) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc) (Response, bool, error) {
	if v, ok := c.lookup(key); ok {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusHit, metrics.CacheTypeMemory).Inc()
		return v, false, nil
	}
	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusMiss, metrics.CacheTypeMemory).Inc()

	fetchCtx := context.WithoutCancel(ctx)
	result, err, shared := c.group.Do(key, func() (any, error) {
		// A flight that finished between our lookup and Do may already
		// have stored the value.
		if v, ok := c.lookup(key); ok {
			return flightResult{value: v}, nil
		}

		v, err := fetch(fetchCtx)
		if err != nil {
			metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpSet, metrics.CacheStatusError, metrics.CacheTypeMemory).Inc()
			return nil, err
		}

		c.Set(key, v, ttl)
		return flightResult{value: v, fetched: true}, nil
	})

	if shared {
		metrics.SingleflightRequestsTotal.WithLabelValues(metrics.SingleflightShared).Inc()
	} else {
		metrics.SingleflightRequestsTotal.WithLabelValues(metrics.SingleflightInitiated).Inc()
	}

	if err != nil {
		return Response{}, false, err
	}

	fr := result.(flightResult)
	return fr.value, fr.fetched, nil
}

// Get returns the live value for key without fetching.
func (c *ResponseCache) Get(key string) (Response, bool) {
	return c.lookup(key)
}

// Set stores value under key, replacing any previous entry.
func (c *ResponseCache) Set(key string, value Response, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	c.mu.Lock()
	c.entries[key] = entry{value: value, storedAt: c.now(), ttl: ttl}
	c.mu.Unlock()

	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpSet, metrics.CacheStatusSuccess, metrics.CacheTypeMemory).Inc()
}

// Len returns the number of physically stored entries, expired ones included.
func (c *ResponseCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Sweep removes every expired entry and returns how many were removed.
func (c *ResponseCache) Sweep() int {
	now := c.now()

	c.mu.Lock()
	removed := 0
	for key, e := range c.entries {
		if !e.validAt(now) {
			delete(c.entries, key)
			removed++
		}
	}
	c.mu.Unlock()

	if removed > 0 {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpSweep, metrics.CacheStatusExpired, metrics.CacheTypeMemory).Add(float64(removed))
	}
	return removed
}

// Run sweeps expired entries every interval until ctx is cancelled.
func (c *ResponseCache) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := c.Sweep(); removed > 0 {
				slog.Debug("swept expired cache entries",
					"removed", removed,
					"remaining", c.Len(),
				)
			}
		}
	}
}

// lookup returns a live entry. Expired entries are deleted on the way out.
func (c *ResponseCache) lookup(key string) (Response, bool) {
	now := c.now()

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return Response{}, false
	}
	if e.validAt(now) {
		return e.value, true
	}

	c.mu.Lock()
	// Only drop the entry we saw; a concurrent Set may have replaced it.
	if cur, ok := c.entries[key]; ok && cur.storedAt.Equal(e.storedAt) {
		delete(c.entries, key)
	}
	c.mu.Unlock()

	return Response{}, false
}
