package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"transport-simulator/internal/domain"

	"github.com/redis/go-redis/v9"
)

const routeKeyPrefix = "transport-simulator:route:"

// RedisRouteCache stores route geometry as JSON values with a TTL.
type RedisRouteCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRouteCache(client *redis.Client, ttl time.Duration) *RedisRouteCache {
	return &RedisRouteCache{client: client, ttl: ttl}
}

func routeKey(origin, destination string) string {
	return routeKeyPrefix + origin + "|" + destination
}

func (r *RedisRouteCache) Get(ctx context.Context, origin, destination string) (domain.Polyline, bool, error) {
	data, err := r.client.Get(ctx, routeKey(origin, destination)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get route cache: %w", err)
	}

	var path domain.Polyline
	if err := json.Unmarshal(data, &path); err != nil {
		return nil, false, fmt.Errorf("get route cache: decode path: %w", err)
	}
	return path, true, nil
}

func (r *RedisRouteCache) Put(ctx context.Context, origin, destination string, path domain.Polyline) error {
	if len(path) == 0 {
		return fmt.Errorf("put route cache: %w", domain.ErrEmptyPolyline)
	}

	data, err := json.Marshal(path)
	if err != nil {
		return fmt.Errorf("put route cache: encode path: %w", err)
	}

	if err := r.client.Set(ctx, routeKey(origin, destination), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("put route cache: %w", err)
	}
	return nil
}
