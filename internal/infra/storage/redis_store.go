package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/go-redis/redis/v8"

	"hotspot-voucher-manager/internal/config"
	"hotspot-voucher-manager/internal/domain"
	"hotspot-voucher-manager/internal/domain/ports/repository"
)

var _ repository.KeyValue = (*RedisStore)(nil)

// RedisStore backs the KeyValue port with a Redis instance. Records are kept
// without TTL: vouchers live until the engine deletes them.
type RedisStore struct {
	cli *redis.Client
}

func NewRedisStore(ctx context.Context, cfg *config.RedisConfig) (*RedisStore, error) {
	opts := &redis.Options{
		Addr:     cfg.URL,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	c := redis.NewClient(opts)
	if err := c.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &RedisStore{cli: c}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.cli.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrNotFound
	}
	return val, err
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	err := s.cli.Set(ctx, key, value, 0).Err()
	if err != nil && strings.Contains(err.Error(), "OOM") {
		// maxmemory reached; the operator has to clear terminal vouchers
		return domain.ErrStorageFull
	}
	return err
}

func (s *RedisStore) Del(ctx context.Context, keys ...string) error {
	return s.cli.Del(ctx, keys...).Err()
}

func (s *RedisStore) Close() error { return s.cli.Close() }
