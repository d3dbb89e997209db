package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/parvesmosarof35/new-ecommerce-api/config"
)

// Cache wraps the Redis client used for read-through caching of product
// listings and details.
type Cache struct {
	client *redis.Client
}

const (
	// Cache key patterns
	ProductListPattern   = "products:*"
	ProductDetailPattern = "product:%s"
)

// New connects to Redis and verifies the connection.
func New(cfg *config.Config) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisHost + ":" + cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, err
	}
	return &Cache{client: client}, nil
}

// Set stores data in the cache as JSON.
func (c *Cache) Set(ctx context.Context, key string, data interface{}, expiration time.Duration) error {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, dataJSON, expiration).Err()
}

// Get retrieves data from the cache into dest. Returns redis.Nil when the
// key is absent.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(val), dest)
}

// Delete removes a single key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// DeleteByPattern deletes all keys matching a pattern.
func (c *Cache) DeleteByPattern(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Close releases the underlying connection.
func (c *Cache) Close() error {
	return c.client.Close()
}
