// Package cache keeps recently fetched observation sets in Redis so repeated
// page loads do not hit the sheet quota. Metrics are never cached; they are
// recomputed from whatever set is returned.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kjannette/avaline-backend/internal/models"
)

// Source is the store being cached.
type Source interface {
	Name() string
	FetchObservations(ctx context.Context) ([]models.Observation, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Connect creates a Redis client and pings it.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

type ObservationCache struct {
	src Source
	rdb *redis.Client
	key string
	ttl time.Duration
}

func NewObservationCache(src Source, rdb *redis.Client, ttl time.Duration) *ObservationCache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &ObservationCache{
		src: src,
		rdb: rdb,
		key: "avaline:observations:" + src.Name(),
		ttl: ttl,
	}
}

func (c *ObservationCache) Name() string { return c.src.Name() + "+redis" }

// FetchObservations serves from Redis when possible. Redis failures fall
// through to the source; source failures are returned and not cached.
func (c *ObservationCache) FetchObservations(ctx context.Context) ([]models.Observation, error) {
	b, err := c.rdb.Get(ctx, c.key).Bytes()
	switch {
	case err == nil:
		var obs []models.Observation
		if err := json.Unmarshal(b, &obs); err == nil {
			return obs, nil
		}
		fmt.Printf("[CACHE] Discarding unreadable entry %s\n", c.key)
	case !errors.Is(err, redis.Nil):
		fmt.Printf("[CACHE] Redis read failed, loading from %s: %v\n", c.src.Name(), err)
	}

	obs, err := c.src.FetchObservations(ctx)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(obs); err == nil {
		if err := c.rdb.Set(ctx, c.key, b, c.ttl).Err(); err != nil {
			fmt.Printf("[CACHE] Redis write failed: %v\n", err)
		}
	}
	return obs, nil
}

// Ping checks Redis and, if it can, the underlying source.
func (c *ObservationCache) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if p, ok := c.src.(pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (c *ObservationCache) Close() error {
	return c.rdb.Close()
}
