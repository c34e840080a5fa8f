// Package redis implementa cache.Cache sobre go-redis, para despliegues con
// más de una réplica del servicio.
package redis

import (
	"context"
	"errors"
	"time"

	rdb "github.com/redis/go-redis/v9"

	"github.com/fitpulse/identity/internal/cache"
)

type Redis struct {
	client *rdb.Client
	prefix string
}

func New(addr string, db int, prefix string) *Redis {
	if prefix == "" {
		prefix = "identity:"
	}
	return &Redis{
		client: rdb.NewClient(&rdb.Options{Addr: addr, DB: db}),
		prefix: prefix,
	}
}

var _ cache.Cache = (*Redis)(nil)

func (r *Redis) key(k string) string { return r.prefix + k }

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, rdb.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *Redis) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, r.key(key), value, ttl).Result()
}

func (r *Redis) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	k := r.key(key)
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	// set expiry on first hit
	if incr.Val() == 1 {
		_ = r.client.Expire(ctx, k, ttl).Err()
	}
	return incr.Val(), nil
}

func (r *Redis) Close() error { return r.client.Close() }

// Ping verifica la conexión.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
