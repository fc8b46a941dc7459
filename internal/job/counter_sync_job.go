package job

import (
	"Agora/internal/model"
	"Agora/internal/pkg/consts"
	"Agora/internal/pkg/logger"
	"Agora/internal/pkg/redis"
	"Agora/internal/pkg/util"
	"Agora/internal/repository"
	"context"
	log "log/slog"

	"github.com/google/uuid"
)

// CounterSyncJob 用关系表的真实计数回写冗余列，消化缓存层的漂移
type CounterSyncJob struct {
	postRepo    repository.PostRepo
	commentRepo repository.CommentRepo
	actionRepo  repository.PostActionRepo
}

func NewCounterSyncJob(
	postRepo repository.PostRepo,
	commentRepo repository.CommentRepo,
	actionRepo repository.PostActionRepo,
) *CounterSyncJob {
	return &CounterSyncJob{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		actionRepo:  actionRepo,
	}
}

func (s *CounterSyncJob) Run() {
	traceID := "job-counter-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)

	s.syncPostCounters(ctx)
	s.syncCommentLikes(ctx)
}

// syncPostCounters 合并消费投票和点赞两个脏集合，一次回写帖子的三个计数列
func (s *CounterSyncJob) syncPostCounters(ctx context.Context) {
	postIDs := s.drainDirtySet(ctx, consts.PostVoteDirtyKey)
	postIDs = append(postIDs, s.drainDirtySet(ctx, consts.PostLikeDirtyKey)...)
	if len(postIDs) == 0 {
		return
	}

	seen := make(map[uint64]struct{}, len(postIDs))
	successCount := 0
	for _, pid := range postIDs {
		if _, ok := seen[pid]; ok {
			continue
		}
		seen[pid] = struct{}{}

		upvotes, err := s.actionRepo.CountVotes(ctx, pid, model.VoteUp)
		if err != nil {
			log.ErrorContext(ctx, "count upvotes error", "postID", pid, "err", err)
			continue
		}
		downvotes, err := s.actionRepo.CountVotes(ctx, pid, model.VoteDown)
		if err != nil {
			log.ErrorContext(ctx, "count downvotes error", "postID", pid, "err", err)
			continue
		}
		likes, err := s.actionRepo.CountLikes(ctx, pid)
		if err != nil {
			log.ErrorContext(ctx, "count likes error", "postID", pid, "err", err)
			continue
		}

		if err = s.postRepo.SyncCounters(ctx, pid, upvotes, downvotes, likes); err != nil {
			log.ErrorContext(ctx, "sync post counters to mysql error", "postID", pid, "err", err)
			continue
		}
		successCount++
	}

	log.InfoContext(ctx, "sync post counters success",
		"total_count", len(seen),
		"success_count", successCount)
}

func (s *CounterSyncJob) syncCommentLikes(ctx context.Context) {
	commentIDs := s.drainDirtySet(ctx, consts.CommentLikeDirtyKey)
	if len(commentIDs) == 0 {
		return
	}

	log.InfoContext(ctx, "start syncing comment likes count", "count", len(commentIDs))

	successCount := 0
	for _, cid := range commentIDs {
		count, err := s.actionRepo.CountCommentLikes(ctx, cid)
		if err != nil {
			log.ErrorContext(ctx, "count comment likes error", "commentID", cid, "err", err)
			continue
		}

		if err = s.commentRepo.SyncLikes(ctx, cid, count); err != nil {
			log.ErrorContext(ctx, "sync comment likes to mysql error", "commentID", cid, "err", err)
			continue
		}
		successCount++
	}

	log.InfoContext(ctx, "sync comment likes success",
		"total_count", len(commentIDs),
		"success_count", successCount)
}

// drainDirtySet 先改名成 processing 集合再消费，避免丢并发新增的脏标记
func (s *CounterSyncJob) drainDirtySet(ctx context.Context, dirtyKey string) []uint64 {
	processingKey := dirtyKey + ":processing"
	if err := redis.Rename(ctx, dirtyKey, processingKey); err != nil {
		return nil
	}

	members, err := redis.GetSet(ctx, processingKey)
	if err != nil {
		log.ErrorContext(ctx, "get dirty set error", "key", processingKey, "err", err)
		return nil
	}

	ids, err := util.StrSliceToUInt64Slice(members)
	if err != nil {
		log.ErrorContext(ctx, "convert dirty set to id slice error", "key", processingKey, "err", err)
		return nil
	}

	if err = redis.DeleteKey(ctx, processingKey); err != nil {
		log.ErrorContext(ctx, "delete processing set error", "key", processingKey, "err", err)
	}
	return ids
}
