// Package redis provides a Redis-backed user-entity cache for
// deployments that want the cache shared across processes or bounded
// by expiry instead of size.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"scorewatch/core"
	"scorewatch/engine"
)

// Config holds Redis connection configuration.
type Config struct {
	Addr         string        `json:"addr" env:"SCOREWATCH_REDIS_ADDR"`
	Password     string        `json:"password,omitempty" env:"SCOREWATCH_REDIS_PASSWORD"`
	DB           int           `json:"db" env:"SCOREWATCH_REDIS_DB"`
	PoolSize     int           `json:"pool_size" env:"SCOREWATCH_REDIS_POOL_SIZE"`
	MinIdleConns int           `json:"min_idle_conns" env:"SCOREWATCH_REDIS_MIN_IDLE_CONNS"`
	DialTimeout  time.Duration `json:"dial_timeout" env:"SCOREWATCH_REDIS_DIAL_TIMEOUT"`
	ReadTimeout  time.Duration `json:"read_timeout" env:"SCOREWATCH_REDIS_READ_TIMEOUT"`
	WriteTimeout time.Duration `json:"write_timeout" env:"SCOREWATCH_REDIS_WRITE_TIMEOUT"`
	// TTL bounds how long a cached user entity lives.
	TTL time.Duration `json:"ttl" env:"SCOREWATCH_REDIS_TTL"`
}

// DefaultConfig returns sensible defaults for Redis configuration.
func DefaultConfig() Config {
	return Config{
		Addr:         "localhost:6379",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		TTL:          24 * time.Hour,
	}
}

// Cache implements engine.UserCache with JSON values under
// osu:user:{id} keys. Read and write failures degrade to cache misses;
// the batch fetcher then resolves the entity remotely.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a Redis-backed cache with the provided configuration.
func New(config Config) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Cache{client: client, ttl: config.TTL}, nil
}

// NewWithClient creates a Cache using an existing Redis client (useful
// for testing).
func NewWithClient(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}

// userKey generates the Redis key for a cached user entity.
func userKey(id int64) string {
	return fmt.Sprintf("osu:user:%d", id)
}

func (c *Cache) Get(ctx context.Context, id int64) (*core.User, bool) {
	raw, err := c.client.Get(ctx, userKey(id)).Result()
	if err != nil {
		return nil, false
	}
	var u core.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, false
	}
	return &u, true
}

func (c *Cache) Put(ctx context.Context, u *core.User) {
	if u == nil || u.ID == 0 {
		return
	}
	b, err := json.Marshal(u)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, userKey(u.ID), b, c.ttl).Err()
}

var _ engine.UserCache = (*Cache)(nil)
