// Package cache wraps an optional redis client used as a read-model cache
// for the client hydration payload. The application is fully functional with
// redis absent: a nil *Cache is a valid no-op receiver.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// Connect builds a redis-backed cache from REDIS_HOST/REDIS_PORT/
// REDIS_PASSWORD, or returns nil when REDIS_HOST is unset.
func Connect() *Cache {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		logrus.Info("REDIS_HOST not set, running without read-model cache")
		return nil
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", host, port),
		Password:     os.Getenv("REDIS_PASSWORD"),
		PoolSize:     10,
		MinIdleConns: 5,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logrus.WithError(err).Warn("Redis unreachable, running without read-model cache")
		return nil
	}
	logrus.Info("Redis connected")

	return &Cache{rdb: rdb, ttl: 5 * time.Minute}
}

// GetJSON loads key into v. Returns false on miss or when the cache is off.
func (c *Cache) GetJSON(ctx context.Context, key string, v interface{}) bool {
	if c == nil {
		return false
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		_ = c.rdb.Del(ctx, key)
		return false
	}
	return true
}

// SetJSON stores v under key with the default TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, v interface{}) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		logrus.WithError(err).Warn("cache set failed")
	}
}

// Delete drops keys, used to invalidate the read model after a mutation.
func (c *Cache) Delete(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		logrus.WithError(err).Warn("cache invalidation failed")
	}
}

// DeleteByPrefix drops every key under prefix, used when a mutation touches
// all cached scopes at once (master data is part of every snapshot).
func (c *Cache) DeleteByPrefix(ctx context.Context, prefix string) {
	if c == nil {
		return
	}
	var cursor uint64
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			logrus.WithError(err).Warn("cache scan failed")
			return
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				logrus.WithError(err).Warn("cache invalidation failed")
			}
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}
