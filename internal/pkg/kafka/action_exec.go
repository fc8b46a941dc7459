package kafka

import (
	"Agora/internal/pkg/redis"
	"context"
	log "log/slog"
	"strconv"
)

// ActionParams 计数调整动作的参数
type ActionParams struct {
	TargetID       uint64
	CountKeyPrefix string
	DirtyKey       string
	Delta          int64
	NotifyFunc     func()
}

// ExecAction 调整缓存计数并标脏。
// 计数键未缓存时不补建，避免把过期值放大成脏数据，交给下次回源。
func ExecAction(ctx context.Context, params ActionParams) {
	key := params.CountKeyPrefix + strconv.FormatUint(params.TargetID, 10)

	exists, err := redis.Exists(ctx, key)
	if err != nil {
		log.ErrorContext(ctx, "check count key failed", "key", key, "err", err)
	} else if exists {
		if err = redis.IncrBy(ctx, key, params.Delta); err != nil {
			log.ErrorContext(ctx, "adjust count key failed", "key", key, "err", err)
		}
	}

	if params.DirtyKey != "" {
		if err = redis.SAdd(ctx, params.DirtyKey, params.TargetID); err != nil {
			log.ErrorContext(ctx, "mark dirty failed", "key", params.DirtyKey, "err", err)
		}
	}

	if params.NotifyFunc != nil {
		params.NotifyFunc()
	}
}
