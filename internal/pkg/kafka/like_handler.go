package kafka

import (
	"Agora/internal/pkg/consts"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

// LikesHandler 消费 likes 表的 binlog，同步帖子点赞缓存计数
type LikesHandler struct{}

func NewLikesHandler() *LikesHandler {
	return &LikesHandler{}
}

func (s *LikesHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("post like consumer setup")
	return nil
}

func (s *LikesHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("post like consumer cleanup")
	return nil
}

func (s *LikesHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-like consume claim")
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("topic-like process batch error", "err", err)
		return err
	}
	return nil
}

func (s *LikesHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	canalMsg, err := ToCanalMessage(msg, "likes")
	if err != nil {
		return err
	}

	// 点赞是单向操作，正常只会产生 INSERT；DELETE 兜住后台清理的情况
	switch canalMsg.Type {
	case INSERT:
		return s.handleInsert(ctx, canalMsg)
	case DELETE:
		return s.handleDelete(ctx, canalMsg)
	default:
		return nil
	}
}

func (s *LikesHandler) handleInsert(ctx context.Context, msg *CanalMessage) error {
	row := msg.Data[0]
	userID, postID := StrToUint64(row["user_id"]), StrToUint64(row["post_id"])

	ExecAction(ctx, ActionParams{
		TargetID:       postID,
		CountKeyPrefix: consts.PostLikeKey,
		DirtyKey:       consts.PostLikeDirtyKey,
		Delta:          1,
	})
	log.InfoContext(ctx, "post like inserted", "userID", userID, "postID", postID)
	return nil
}

func (s *LikesHandler) handleDelete(ctx context.Context, msg *CanalMessage) error {
	postID := StrToUint64(msg.Data[0]["post_id"])

	ExecAction(ctx, ActionParams{
		TargetID:       postID,
		CountKeyPrefix: consts.PostLikeKey,
		DirtyKey:       consts.PostLikeDirtyKey,
		Delta:          -1,
	})
	log.InfoContext(ctx, "post like removed", "postID", postID)
	return nil
}
