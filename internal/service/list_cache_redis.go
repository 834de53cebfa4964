package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisListCacheStore versions each namespace with a counter; invalidation
// bumps the counter so stale pages are never read again and simply expire.
type RedisListCacheStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisListCacheStore(client redis.UniversalClient, prefix string) *RedisListCacheStore {
	if prefix == "" {
		prefix = "crm_list_cache"
	}
	return &RedisListCacheStore{client: client, prefix: prefix}
}

func (s *RedisListCacheStore) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	version, err := s.version(ctx, namespace)
	if err != nil {
		return nil, false, err
	}
	value, err := s.client.Get(ctx, s.dataKey(namespace, version, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s *RedisListCacheStore) Set(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	version, err := s.version(ctx, namespace)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.dataKey(namespace, version, key), value, ttl).Err()
}

func (s *RedisListCacheStore) InvalidateNamespace(ctx context.Context, namespace string) error {
	return s.client.Incr(ctx, s.versionKey(namespace)).Err()
}

func (s *RedisListCacheStore) version(ctx context.Context, namespace string) (int64, error) {
	v, err := s.client.Get(ctx, s.versionKey(namespace)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (s *RedisListCacheStore) versionKey(namespace string) string {
	return fmt.Sprintf("%s:version:%s", s.prefix, namespace)
}

func (s *RedisListCacheStore) dataKey(namespace string, version int64, key string) string {
	sum := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%s:data:%s:%d:%s", s.prefix, namespace, version, hex.EncodeToString(sum[:]))
}
