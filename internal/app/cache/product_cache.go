package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aiqfome/favorites-backend/internal/app/model"
	"github.com/aiqfome/favorites-backend/internal/metrics"
	"github.com/aiqfome/favorites-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// ProductCache is a TTL cache of product snapshots. A backend outage reads as
// a miss and failed writes are dropped.
type ProductCache interface {
	Get(ctx context.Context, productID uint) (*model.Product, bool)
	Set(ctx context.Context, product *model.Product)
}

type redisProductCache struct {
	client  *redis.Client
	ttl     time.Duration
	timeout time.Duration
	metrics *metrics.Metrics
}

// NewProductCache returns a Redis-backed cache. timeout bounds each call;
// zero leaves the caller's deadline alone.
func NewProductCache(client *redis.Client, ttl, timeout time.Duration, m *metrics.Metrics) ProductCache {
	return &redisProductCache{
		client:  client,
		ttl:     ttl,
		timeout: timeout,
		metrics: m,
	}
}

func productKey(productID uint) string {
	return fmt.Sprintf("product:%d", productID)
}

func (c *redisProductCache) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *redisProductCache) Get(ctx context.Context, productID uint) (*model.Product, bool) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	data, err := c.client.Get(ctx, productKey(productID)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.metrics.CacheResult(metrics.CacheMiss)
		return nil, false
	}
	if err != nil {
		c.metrics.CacheResult(metrics.CacheError)
		logger.Warn("Product cache read failed", map[string]interface{}{
			"product_id": productID,
			"error":      err.Error(),
		})
		return nil, false
	}

	var product model.Product
	if err := json.Unmarshal(data, &product); err != nil || product.ID != productID {
		c.metrics.CacheResult(metrics.CacheError)
		logger.Warn("Discarding corrupt product cache entry", map[string]interface{}{
			"product_id": productID,
		})
		return nil, false
	}

	c.metrics.CacheResult(metrics.CacheHit)
	return &product, true
}

func (c *redisProductCache) Set(ctx context.Context, product *model.Product) {
	data, err := json.Marshal(product)
	if err != nil {
		logger.Warn("Failed to encode product for cache", map[string]interface{}{
			"product_id": product.ID,
			"error":      err.Error(),
		})
		return
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := c.client.Set(ctx, productKey(product.ID), data, c.ttl).Err(); err != nil {
		logger.Warn("Product cache write failed", map[string]interface{}{
			"product_id": product.ID,
			"error":      err.Error(),
		})
	}
}
