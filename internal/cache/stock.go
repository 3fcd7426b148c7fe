// Package cache holds the Redis backed read-through cache for the stock listing.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cimillas/bloodbank/internal/domain"
)

const (
	DefaultStockKey = "bloodbank:stock:v1"
	DefaultTTL      = 30 * time.Second

	generationSuffix = ":gen"
)

// storeScript sets KEYS[1] only while the generation in KEYS[2] still equals
// the one the caller read before loading from the database.
var storeScript = redis.NewScript(`
local current = redis.call('GET', KEYS[2]) or '0'
if current ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// StockCache stores the full stock listing under a single key next to a
// generation counter that every invalidation bumps. Every Redis failure is
// logged and reported as a miss.
type StockCache struct {
	client *redis.Client
	key    string
	genKey string
	ttl    time.Duration
	logger *slog.Logger

	// dirty is set when an invalidation could not reach Redis. Until a later
	// invalidation succeeds, reads are misses and nothing is stored.
	dirty atomic.Bool
}

type Option func(*StockCache)

func WithTTL(ttl time.Duration) Option {
	return func(c *StockCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func WithKey(key string) Option {
	return func(c *StockCache) {
		if key != "" {
			c.key = key
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *StockCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewStockCache(client *redis.Client, opts ...Option) *StockCache {
	c := &StockCache{
		client: client,
		key:    DefaultStockKey,
		ttl:    DefaultTTL,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.genKey = c.key + generationSuffix
	return c
}

// Load returns the cached listing. On a miss it returns the generation to
// hand back to Store, or "" when the listing must not be stored.
func (c *StockCache) Load(ctx context.Context) ([]domain.BloodStock, string, bool) {
	if c.dirty.Load() && !c.invalidate(ctx) {
		return nil, "", false
	}

	vals, err := c.client.MGet(ctx, c.key, c.genKey).Result()
	if err != nil {
		c.logger.WarnContext(ctx, "stock cache read failed", "error", err)
		return nil, "", false
	}

	generation := "0"
	if g, ok := vals[1].(string); ok {
		generation = g
	}
	raw, ok := vals[0].(string)
	if !ok {
		return nil, generation, false
	}

	var stock []domain.BloodStock
	if err := json.Unmarshal([]byte(raw), &stock); err != nil {
		c.logger.WarnContext(ctx, "stock cache entry corrupt", "error", err)
		c.Invalidate(ctx)
		return nil, "", false
	}
	return stock, generation, true
}

// Store caches stock unless the listing was invalidated after generation was
// read.
func (c *StockCache) Store(ctx context.Context, generation string, stock []domain.BloodStock) {
	if generation == "" || c.dirty.Load() {
		return
	}
	raw, err := json.Marshal(stock)
	if err != nil {
		c.logger.WarnContext(ctx, "stock cache encode failed", "error", err)
		return
	}
	stored, err := storeScript.Run(ctx, c.client, []string{c.key, c.genKey},
		generation, raw, c.ttl.Milliseconds()).Int()
	if err != nil {
		c.logger.WarnContext(ctx, "stock cache write failed", "error", err)
		return
	}
	if stored == 0 {
		c.logger.DebugContext(ctx, "stock cache write skipped, listing changed while loading")
	}
}

// Invalidate drops the cached listing and bumps the generation so that
// listings read before this call are not stored.
func (c *StockCache) Invalidate(ctx context.Context) {
	if !c.invalidate(ctx) {
		c.dirty.Store(true)
	}
}

func (c *StockCache) invalidate(ctx context.Context) bool {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.genKey)
		pipe.Del(ctx, c.key)
		return nil
	})
	if err != nil {
		c.logger.WarnContext(ctx, "stock cache invalidate failed", "error", err)
		return false
	}
	c.dirty.Store(false)
	return true
}

// Ping reports whether Redis is reachable.
func (c *StockCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
