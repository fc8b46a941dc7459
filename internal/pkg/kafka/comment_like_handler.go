package kafka

import (
	"Agora/internal/pkg/consts"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

// CommentLikesHandler 消费 comment_likes 表的 binlog，同步评论点赞缓存计数
type CommentLikesHandler struct{}

func NewCommentLikesHandler() *CommentLikesHandler {
	return &CommentLikesHandler{}
}

func (s *CommentLikesHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("comment like consumer setup")
	return nil
}

func (s *CommentLikesHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("comment like consumer cleanup")
	return nil
}

func (s *CommentLikesHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-comment-like consume claim")
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("topic-comment-like process batch error", "err", err)
		return err
	}
	return nil
}

func (s *CommentLikesHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	canalMsg, err := ToCanalMessage(msg, "comment_likes")
	if err != nil {
		return err
	}

	switch canalMsg.Type {
	case INSERT:
		return s.handleInsert(ctx, canalMsg)
	case DELETE:
		return s.handleDelete(ctx, canalMsg)
	default:
		return nil
	}
}

func (s *CommentLikesHandler) handleInsert(ctx context.Context, msg *CanalMessage) error {
	row := msg.Data[0]
	userID, commentID := StrToUint64(row["user_id"]), StrToUint64(row["comment_id"])

	ExecAction(ctx, ActionParams{
		TargetID:       commentID,
		CountKeyPrefix: consts.CommentLikeKey,
		DirtyKey:       consts.CommentLikeDirtyKey,
		Delta:          1,
	})
	log.InfoContext(ctx, "comment like inserted", "userID", userID, "commentID", commentID)
	return nil
}

func (s *CommentLikesHandler) handleDelete(ctx context.Context, msg *CanalMessage) error {
	commentID := StrToUint64(msg.Data[0]["comment_id"])

	ExecAction(ctx, ActionParams{
		TargetID:       commentID,
		CountKeyPrefix: consts.CommentLikeKey,
		DirtyKey:       consts.CommentLikeDirtyKey,
		Delta:          -1,
	})
	log.InfoContext(ctx, "comment like removed", "commentID", commentID)
	return nil
}
