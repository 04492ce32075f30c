package commonnames

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/metrics"
)

// DefaultCacheTTL is how long a lookup result is cached.
const DefaultCacheTTL = time.Hour

const keyPrefix = "clover:common_name:"

// KV is the key-value store a Cache reads through. *redis.Client satisfies it.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Cache is a read-through cache in front of another Lookup. Both positive
// and negative answers are cached. When the cache is unavailable lookups go
// straight to the next Lookup.
type Cache struct {
	next   Lookup
	kv     KV
	ttl    time.Duration
	logger ectologger.Logger
}

// NewCache creates a Cache. A non-positive ttl uses DefaultCacheTTL.
func NewCache(next Lookup, kv KV, ttl time.Duration, logger ectologger.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{next: next, kv: kv, ttl: ttl, logger: logger}
}

// IsCommon implements Lookup.
func (c *Cache) IsCommon(ctx context.Context, lastName string) (bool, error) {
	name := Standardize(lastName)
	if name == "" {
		return false, nil
	}
	key := keyPrefix + name
	log := c.logger.WithContext(ctx).WithField("name", name)

	value, found, err := c.kv.Get(ctx, key)
	switch {
	case err != nil:
		metrics.RecordCommonNameLookup("cache_error")
		log.WithError(err).Warn("Common name cache read failed")
	case found:
		metrics.RecordCommonNameLookup("hit")
		return value == "1", nil
	default:
		metrics.RecordCommonNameLookup("miss")
	}

	common, err := c.next.IsCommon(ctx, name)
	if err != nil {
		return false, err
	}

	cached := "0"
	if common {
		cached = "1"
	}
	if err := c.kv.Set(ctx, key, cached, c.ttl); err != nil {
		log.WithError(err).Warn("Common name cache write failed")
	}
	return common, nil
}

// Invalidate drops the cached answer for a name.
func (c *Cache) Invalidate(ctx context.Context, name string) error {
	return c.kv.Del(ctx, keyPrefix+Standardize(name))
}
