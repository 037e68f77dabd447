// Package redis implementa el contador de visitas sobre Redis.
package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

// DefaultVisitsKey clave del contador de visitas.
const DefaultVisitsKey = "estoque:visits"

// NewClient crea el cliente desde REDIS_URL y valida la conexión.
func NewClient(ctx context.Context, redisURL string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := goredis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// VisitCounter contador de visitas con INCR (atómico en el servidor).
type VisitCounter struct {
	rdb *goredis.Client
	key string
}

func NewVisitCounter(rdb *goredis.Client, key string) *VisitCounter {
	if key == "" {
		key = DefaultVisitsKey
	}
	return &VisitCounter{rdb: rdb, key: key}
}

func (c *VisitCounter) Get(ctx context.Context) (int64, error) {
	n, err := c.rdb.Get(ctx, c.key).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get visits: %w", err)
	}
	return n, nil
}

func (c *VisitCounter) Increment(ctx context.Context) (int64, error) {
	n, err := c.rdb.Incr(ctx, c.key).Result()
	if err != nil {
		return 0, fmt.Errorf("increment visits: %w", err)
	}
	return n, nil
}
