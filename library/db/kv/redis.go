package kv

import (
	"context"

	errors "github.com/Laisky/errors/v2"
	"github.com/redis/go-redis/v9"
)

var _ Interface = new(Redis)

// Redis is a kv backend over a redis server.
type Redis struct {
	db *redis.Client
}

// NewRedis creates a redis-backed kv store.
func NewRedis(opt *redis.Options) *Redis {
	return &Redis{
		db: redis.NewClient(opt),
	}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.db.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errors.Wrapf(errKeyNotFound, "key %s", key)
		}
		return nil, errors.Wrapf(err, "get key %s", key)
	}

	return val, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	// records live until explicitly deleted, no expiration
	if err := r.db.Set(ctx, key, value, 0).Err(); err != nil {
		return errors.Wrapf(err, "set key %s", key)
	}

	return nil
}

func (r *Redis) Del(ctx context.Context, key string) error {
	if err := r.db.Del(ctx, key).Err(); err != nil {
		return errors.Wrapf(err, "del key %s", key)
	}

	return nil
}

func (r *Redis) Keys(ctx context.Context, prefix string) (keys []string, err error) {
	iter := r.db.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err = iter.Err(); err != nil {
		return nil, errors.Wrapf(err, "scan prefix %s", prefix)
	}

	return keys, nil
}
