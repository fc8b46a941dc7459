package kafka

import (
	"Agora/internal/model"
	"Agora/internal/pkg/consts"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

// VotesHandler 消费 votes 表的 binlog，同步赞/踩两路缓存计数
type VotesHandler struct{}

func NewVotesHandler() *VotesHandler {
	return &VotesHandler{}
}

func (s *VotesHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("vote consumer setup")
	return nil
}

func (s *VotesHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("vote consumer cleanup")
	return nil
}

func (s *VotesHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-vote consume claim")
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("topic-vote process batch error", "err", err)
		return err
	}
	return nil
}

func (s *VotesHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	canalMsg, err := ToCanalMessage(msg, "votes")
	if err != nil {
		return err
	}

	switch canalMsg.Type {
	case INSERT:
		return s.handleInsert(ctx, canalMsg)
	case UPDATE:
		return s.handleUpdate(ctx, canalMsg)
	case DELETE:
		return s.handleDelete(ctx, canalMsg)
	default:
		return nil
	}
}

// handleInsert 新投票：对应方向 +1
func (s *VotesHandler) handleInsert(ctx context.Context, msg *CanalMessage) error {
	row := msg.Data[0]
	postID, voteType := StrToUint64(row["post_id"]), StrToInt8(row["vote_type"])

	ExecAction(ctx, ActionParams{
		TargetID:       postID,
		CountKeyPrefix: voteKeyPrefix(voteType),
		DirtyKey:       consts.PostVoteDirtyKey,
		Delta:          1,
	})
	log.InfoContext(ctx, "vote inserted", "postID", postID, "voteType", voteType)
	return nil
}

// handleUpdate 切换方向：新方向 +1，旧方向 -1
func (s *VotesHandler) handleUpdate(ctx context.Context, msg *CanalMessage) error {
	row := msg.Data[0]
	postID, newType := StrToUint64(row["post_id"]), StrToInt8(row["vote_type"])

	var oldType int8
	if len(msg.Old) > 0 {
		if v, ok := msg.Old[0]["vote_type"]; ok {
			oldType = StrToInt8(v)
		}
	}
	if oldType == newType || oldType == model.VoteNone {
		return nil
	}

	ExecAction(ctx, ActionParams{
		TargetID:       postID,
		CountKeyPrefix: voteKeyPrefix(newType),
		DirtyKey:       consts.PostVoteDirtyKey,
		Delta:          1,
	})
	ExecAction(ctx, ActionParams{
		TargetID:       postID,
		CountKeyPrefix: voteKeyPrefix(oldType),
		DirtyKey:       consts.PostVoteDirtyKey,
		Delta:          -1,
	})
	log.InfoContext(ctx, "vote switched", "postID", postID, "from", oldType, "to", newType)
	return nil
}

// handleDelete 取消投票：对应方向 -1
func (s *VotesHandler) handleDelete(ctx context.Context, msg *CanalMessage) error {
	row := msg.Data[0]
	postID, voteType := StrToUint64(row["post_id"]), StrToInt8(row["vote_type"])

	ExecAction(ctx, ActionParams{
		TargetID:       postID,
		CountKeyPrefix: voteKeyPrefix(voteType),
		DirtyKey:       consts.PostVoteDirtyKey,
		Delta:          -1,
	})
	log.InfoContext(ctx, "vote removed", "postID", postID, "voteType", voteType)
	return nil
}

func voteKeyPrefix(voteType int8) string {
	if voteType == model.VoteDown {
		return consts.PostDownvoteKey
	}
	return consts.PostUpvoteKey
}
