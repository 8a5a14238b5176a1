package storage

import (
	"context"
	"time"

	"github.com/angelmondragon/storefront/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/redis"
)

type redisStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	SlotKey(namespace, slot string) string
	Ping(ctx context.Context) error
}

// RedisBackend stores each slot under its own key, refreshing the TTL on every write.
type RedisBackend struct {
	client redisStore
	ttl    time.Duration
}

func NewRedisBackend(client *redis.Client, ttl time.Duration) *RedisBackend {
	return &RedisBackend{client: client, ttl: ttl}
}

func (r *RedisBackend) Name() string { return config.StorageBackendRedis }

func (r *RedisBackend) Read(ctx context.Context, namespace, slot string) (string, bool, error) {
	if err := validateKey(namespace, slot); err != nil {
		return "", false, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid storage key")
	}
	value, err := r.client.Get(ctx, r.client.SlotKey(namespace, slot))
	if err != nil {
		if redis.IsNil(err) {
			return "", false, nil
		}
		return "", false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read storage slot")
	}
	return value, true, nil
}

func (r *RedisBackend) Write(ctx context.Context, namespace, slot, value string) error {
	if err := validateKey(namespace, slot); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid storage key")
	}
	if err := r.client.Set(ctx, r.client.SlotKey(namespace, slot), value, r.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write storage slot")
	}
	return nil
}

func (r *RedisBackend) Delete(ctx context.Context, namespace, slot string) error {
	if err := validateKey(namespace, slot); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid storage key")
	}
	if err := r.client.Del(ctx, r.client.SlotKey(namespace, slot)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete storage slot")
	}
	return nil
}

func (r *RedisBackend) Ping(ctx context.Context) error {
	return r.client.Ping(ctx)
}
