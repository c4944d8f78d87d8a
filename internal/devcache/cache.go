// Package devcache caches the device name to device type map reported by
// App/DevInfo in Redis, so short-lived clients do not ask the server on
// every start.
//
// The map of server "fcs1" lives in the hash fcs:fcs1:devtypes and expires
// after the configured TTL. A Cache satisfies setup.DevTypeSource.
package devcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Source is where the device map comes from on a cache miss, typically
// client.DevInfoSource.
type Source interface {
	DevTypes(ctx context.Context) (map[string]string, error)
}

// Logger is the logging interface used by Cache.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Key returns the Redis key holding the device map of service.
func Key(service string) string {
	return fmt.Sprintf("fcs:%s:devtypes", service)
}

// Cache is a read-through Redis cache in front of a Source.
// It is safe for concurrent use.
type Cache struct {
	rdb     *redis.Client
	service string
	source  Source
	ttl     time.Duration
	logger  Logger
}

// New creates a cache for the server named service. A zero ttl keeps the
// map until Invalidate is called.
func New(redisOpts *redis.Options, service string, source Source, ttl time.Duration) (*Cache, error) {
	if service == "" {
		return nil, errors.New("devcache: service name cannot be empty")
	}
	if source == nil {
		return nil, errors.New("devcache: source cannot be nil")
	}
	return &Cache{
		rdb:     redis.NewClient(redisOpts),
		service: service,
		source:  source,
		ttl:     ttl,
		logger:  noopLogger{},
	}, nil
}

// SetLogger sets the logger used for cache failures.
func (c *Cache) SetLogger(logger Logger) {
	c.logger = logger
}

// DevTypes returns the cached map, or reads it from the source and stores
// it. Redis failures are logged and fall back to the source.
func (c *Cache) DevTypes(ctx context.Context) (map[string]string, error) {
	key := Key(c.service)

	cached, err := c.rdb.HGetAll(ctx, key).Result()
	switch {
	case err != nil:
		c.logger.Warn("reading device map from redis failed", "key", key, "error", err)
	case len(cached) > 0:
		c.logger.Debug("device map served from cache", "key", key, "devices", len(cached))
		return cached, nil
	}

	devtypes, err := c.source.DevTypes(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.store(ctx, key, devtypes); err != nil {
		c.logger.Warn("caching device map failed", "key", key, "error", err)
	}
	return devtypes, nil
}

func (c *Cache) store(ctx context.Context, key string, devtypes map[string]string) error {
	if len(devtypes) == 0 {
		return nil
	}
	fields := make(map[string]any, len(devtypes))
	for name, devtype := range devtypes {
		fields[name] = devtype
	}

	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fields)
		if c.ttl > 0 {
			pipe.Expire(ctx, key, c.ttl)
		}
		return nil
	})
	return err
}

// Invalidate drops the cached map.
func (c *Cache) Invalidate(ctx context.Context) error {
	if err := c.rdb.Del(ctx, Key(c.service)).Err(); err != nil {
		return fmt.Errorf("devcache: invalidating %s: %w", c.service, err)
	}
	return nil
}

// Ping verifies Redis connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	return c.rdb.Close()
}
