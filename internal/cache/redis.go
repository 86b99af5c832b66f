package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

var _ Cache = &RedisCache{}

// NewRedisCache connects and pings. Keys are namespaced under prefix so
// several counters can share one Redis.
func NewRedisCache(ctx context.Context, host string, port int, ttl time.Duration, prefix string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%d", host, port),
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(err, "failed to connect to Redis")
	}

	log.WithField("addr", client.Options().Addr).Info("connected to Redis")

	return &RedisCache{
		client: client,
		ttl:    ttl,
		prefix: prefix,
	}, nil
}

func (c *RedisCache) key(k string) string {
	return c.prefix + k
}

func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) error {
	val, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err == redis.Nil {
		return ErrMiss
	}
	if err != nil {
		return errors.Wrapf(err, "redis get %s", key)
	}

	return errors.Wrap(json.Unmarshal(val, dest), "decode cached value")
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "failed to marshal value")
	}

	return errors.Wrapf(c.client.Set(ctx, c.key(key), data, c.ttl).Err(), "redis set %s", key)
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
	}
	return errors.Wrap(c.client.Del(ctx, full...).Err(), "redis del")
}

// DeleteByPrefix walks the keyspace with SCAN rather than KEYS.
func (c *RedisCache) DeleteByPrefix(ctx context.Context, prefix string) error {
	iter := c.client.Scan(ctx, 0, c.key(prefix)+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return errors.Wrap(err, "redis scan")
	}

	if len(keys) > 0 {
		return errors.Wrap(c.client.Del(ctx, keys...).Err(), "redis del")
	}
	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
