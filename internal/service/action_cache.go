package service

import (
	"Agora/internal/pkg/redis"
	"context"
	"time"
)

// ActionCache 交互服务依赖的缓存操作，默认实现落在 redis 上
type ActionCache interface {
	TryLock(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	UnLock(ctx context.Context, key string, value interface{})
	Incr(ctx context.Context, key string) error
	GetInt64(ctx context.Context, key string) (int64, error)
	SetWithExpiration(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

type redisActionCache struct{}

func NewRedisActionCache() ActionCache {
	return redisActionCache{}
}

func (redisActionCache) TryLock(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	return redis.TryLock(ctx, key, value, expiration, 0)
}

func (redisActionCache) UnLock(ctx context.Context, key string, value interface{}) {
	redis.UnLock(ctx, key, value)
}

func (redisActionCache) Incr(ctx context.Context, key string) error {
	return redis.Incr(ctx, key)
}

func (redisActionCache) GetInt64(ctx context.Context, key string) (int64, error) {
	return redis.GetInt64(ctx, key)
}

func (redisActionCache) SetWithExpiration(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return redis.SetWithExpiration(ctx, key, value, expiration)
}
