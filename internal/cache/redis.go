package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Belphemur/MediaFetch/internal/config"
)

// keyPrefix namespaces every key written by this service.
const keyPrefix = "mediafetch:meta:"

// opTimeout bounds a single Redis round trip.
const opTimeout = 2 * time.Second

func init() {
	Register("redis", newRedisCache)
}

// redisCache keeps one string key per entry with a native TTL.
// Size is not enforced here; the server's maxmemory policy evicts instead.
type redisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

func newRedisCache(cfg ProviderConfig) (Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	logger := config.GetLogger()
	return &redisCache{
		client: client,
		ttl:    cfg.TTL,
		logger: logger.With().Str("component", "redis_cache").Logger(),
	}, nil
}

func (r *redisCache) Get(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	val, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Error().Err(err).Str("key", key).Msg("redis cache Get failed")
		}
		return nil, false
	}
	return val, true
}

func (r *redisCache) Set(key string, value []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := r.client.Set(ctx, keyPrefix+key, value, r.ttl).Err(); err != nil {
		r.logger.Error().Err(err).Str("key", key).Msg("redis cache Set failed")
	}
}

func (r *redisCache) Len() int {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	n := 0
	iter := r.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n++
	}
	if err := iter.Err(); err != nil {
		r.logger.Error().Err(err).Msg("redis cache Len failed")
		return 0
	}
	return n
}

func (r *redisCache) Close() error {
	return r.client.Close()
}
