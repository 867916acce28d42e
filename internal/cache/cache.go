package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Source tells where a result came from.
type Source string

const (
	SourceCache   Source = "cache"
	SourceRemote  Source = "redis"
	SourceCompute Source = "compute"
)

// Result is the cached outcome of a successful calculation.
type Result struct {
	Sum        float64   `json:"sum"`
	Count      int       `json:"count"`
	ComputedAt time.Time `json:"computed_at"`
}

// Remote is a shared second tier consulted after a local miss.
type Remote interface {
	Get(ctx context.Context, key string) (Result, bool, error)
	Set(ctx context.Context, key string, v Result, ttl time.Duration) error
}

type item struct {
	val       Result
	expiresAt time.Time
}

// Cache provides a TTL cache with singleflight coalescing per key.
type Cache struct {
	mu     sync.RWMutex
	items  map[string]item
	ttl    time.Duration
	group  singleflight.Group
	remote Remote
	logger zerolog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithRemote adds a shared tier behind the local map.
func WithRemote(r Remote) Option { return func(c *Cache) { c.remote = r } }

// WithLogger sets the logger used for remote tier failures.
func WithLogger(l zerolog.Logger) Option { return func(c *Cache) { c.logger = l } }

func New(ttl time.Duration, opts ...Option) *Cache {
	c := &Cache{items: make(map[string]item), ttl: ttl, logger: zerolog.Nop()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Key derives a cache key from an input and the delimiter mode it was
// evaluated with.
func Key(input string, patternDelimiters bool) string {
	h := sha256.New()
	if patternDelimiters {
		h.Write([]byte{'p'})
	} else {
		h.Write([]byte{'l'})
	}
	h.Write([]byte(input))
	return "strcalc:" + hex.EncodeToString(h.Sum(nil))
}

// GetOrCompute returns a cached result if valid; otherwise it coalesces
// concurrent computations for the same key and stores the result.
// Failed computations are not cached.
func (c *Cache) GetOrCompute(ctx context.Context, key string, compute func(context.Context) (Result, error)) (Result, Source, error) {
	// fast path: local hit
	c.mu.RLock()
	it, ok := c.items[key]
	if ok && time.Now().Before(it.expiresAt) {
		v := it.val
		c.mu.RUnlock()
		return v, SourceCache, nil
	}
	c.mu.RUnlock()

	type outcome struct {
		val Result
		src Source
	}
	res, err, _ := c.group.Do(key, func() (interface{}, error) {
		if c.remote != nil {
			v, found, err := c.remote.Get(ctx, key)
			if err != nil {
				c.logger.Warn().Err(err).Str("key", key).Msg("remote cache get failed")
			} else if found {
				c.store(key, v)
				return outcome{v, SourceRemote}, nil
			}
		}
		v, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.store(key, v)
		if c.remote != nil {
			if err := c.remote.Set(ctx, key, v, c.ttl); err != nil {
				c.logger.Warn().Err(err).Str("key", key).Msg("remote cache set failed")
			}
		}
		return outcome{v, SourceCompute}, nil
	})
	if err != nil {
		return Result{}, "", err
	}
	o := res.(outcome)
	return o.val, o.src, nil
}

func (c *Cache) store(key string, v Result) {
	c.mu.Lock()
	c.items[key] = item{val: v, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// Len returns the number of items in the local tier (for tests).
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
