package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aiqfome/favorites-backend/config"
	"github.com/aiqfome/favorites-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const blacklistValue = "revoked"

// Client owns the Redis connection shared by the product cache and the
// token blacklist.
type Client struct {
	rdb *redis.Client
}

// New builds a client without contacting the server
func New(cfg *config.RedisConfig) *Client {
	return &Client{
		rdb: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr(),
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

// NewFromClient wraps an existing go-redis client
func NewFromClient(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

// Ping checks connectivity. Startup continues when it fails; every Redis
// consumer treats an outage as a miss.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := c.rdb.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"addr": c.rdb.Options().Addr,
		})
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully", map[string]interface{}{
		"addr": c.rdb.Options().Addr,
		"db":   c.rdb.Options().DB,
	})
	return nil
}

// Raw exposes the underlying go-redis client
func (c *Client) Raw() *redis.Client {
	return c.rdb
}

func (c *Client) Close() error {
	logger.Info("Closing Redis connection")
	return c.rdb.Close()
}

func blacklistKey(token string) string {
	return fmt.Sprintf("blacklist:%s", token)
}

// BlacklistToken revokes a token until its own expiry
func (c *Client) BlacklistToken(ctx context.Context, token string, expiry time.Duration) error {
	if expiry <= 0 {
		return nil
	}
	logger.Debug("Adding token to blacklist", map[string]interface{}{
		"expiry": expiry.String(),
	})

	if err := c.rdb.Set(ctx, blacklistKey(token), blacklistValue, expiry).Err(); err != nil {
		logger.Error("Failed to blacklist token", err)
		return err
	}
	return nil
}

// IsTokenBlacklisted reports whether a token was revoked
func (c *Client) IsTokenBlacklisted(ctx context.Context, token string) (bool, error) {
	val, err := c.rdb.Get(ctx, blacklistKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		logger.Error("Failed to check token blacklist", err)
		return false, err
	}
	return val == blacklistValue, nil
}
