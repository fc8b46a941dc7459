package service

import (
	"Agora/internal/api/dto"
	"Agora/internal/model"
	"Agora/internal/pkg/consts"
	"Agora/internal/repository"
	"context"
	"errors"
	log "log/slog"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
)

const (
	PostStatusNormal      int8 = 0
	PostStatusUnderReview int8 = 1

	// 达到该举报数后帖子转入人工审核
	reportThreshold = 50
)

const (
	cacheExpiration = 7 * 24 * time.Hour

	// 浏览增量只落库，不回填缓存，该键的缓存周期必须短
	viewCacheExpiration = 5 * time.Minute
)

type PostActionService interface {
	// Vote 方向性投票：无票则创建，同向则取消，反向则切换
	Vote(ctx context.Context, userID, postID uint64, direction int8) (*dto.VoteResultDTO, error)
	GetVoteStatus(ctx context.Context, userID, postID uint64) (int8, error)

	// LikePost 单向点赞，重复点赞是软失败，不提供取消
	LikePost(ctx context.Context, userID, postID uint64) (*dto.LikeResultDTO, error)
	IsLiked(ctx context.Context, userID, postID uint64) (bool, error)

	SavePost(ctx context.Context, userID, postID uint64) (*dto.SaveResultDTO, error)
	UnsavePost(ctx context.Context, userID, postID uint64) (*dto.SaveResultDTO, error)
	IsSaved(ctx context.Context, userID, postID uint64) (bool, error)

	ReportPost(ctx context.Context, userID, postID uint64, reason string) (*dto.ReportResultDTO, error)
	ReportComment(ctx context.Context, userID, commentID uint64, reason string) (*dto.ReportResultDTO, error)

	GetPostVoteCounts(ctx context.Context, postID uint64) (int64, int64, error)
	GetPostLikeCount(ctx context.Context, postID uint64) (int64, error)
	GetPostCommentCount(ctx context.Context, postID uint64) (int64, error)
	GetPostViewCount(ctx context.Context, postID uint64) (int64, error)
}

type postActionServiceImpl struct {
	actionRepo  repository.PostActionRepo
	postRepo    repository.PostRepo
	commentRepo repository.CommentRepo
	cache       ActionCache
}

func NewPostActionService(
	actionRepo repository.PostActionRepo,
	postRepo repository.PostRepo,
	commentRepo repository.CommentRepo,
	cache ActionCache,
) PostActionService {
	return &postActionServiceImpl{
		actionRepo:  actionRepo,
		postRepo:    postRepo,
		commentRepo: commentRepo,
		cache:       cache,
	}
}

func (s *postActionServiceImpl) Vote(ctx context.Context, userID, postID uint64, direction int8) (*dto.VoteResultDTO, error) {
	if userID == 0 {
		return nil, ErrLoginRequired
	}
	if direction != model.VoteUp && direction != model.VoteDown {
		return nil, ErrParamInvalid
	}

	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil || post == nil {
		return nil, ErrPostNotFound
	}

	existing, err := s.actionRepo.GetVote(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	var newDirection int8
	var upDelta, downDelta int

	switch {
	case existing == nil:
		vote := &model.Vote{UserID: userID, PostID: postID, VoteType: direction, CreatedAt: time.Now(), UpdatedAt: time.Now()}
		if err = s.actionRepo.CreateVote(ctx, vote); err != nil {
			if isDuplicateError(err) {
				// 并发创建撞了唯一键：读回已落库的状态作为软结果，不再调计数
				return s.currentVoteState(ctx, userID, postID)
			}
			return nil, err
		}
		newDirection = direction
		if direction == model.VoteUp {
			upDelta = 1
		} else {
			downDelta = 1
		}

	case existing.VoteType == direction:
		// 同向重复点击 → 取消投票
		if err = s.actionRepo.DeleteVote(ctx, userID, postID); err != nil {
			return nil, err
		}
		newDirection = model.VoteNone
		if direction == model.VoteUp {
			upDelta = -1
		} else {
			downDelta = -1
		}

	default:
		// 反向点击 → 原地切换方向
		if err = s.actionRepo.UpdateVoteType(ctx, userID, postID, direction); err != nil {
			return nil, err
		}
		newDirection = direction
		if direction == model.VoteUp {
			upDelta, downDelta = 1, -1
		} else {
			upDelta, downDelta = -1, 1
		}
	}

	// 计数是关系表的冗余副本：这里写失败只记日志，由对账任务修复漂移
	if err = s.postRepo.AdjustVoteCounters(ctx, postID, upDelta, downDelta); err != nil {
		log.ErrorContext(ctx, "vote counter sync failed", "postID", postID, "err", err)
	}

	res := &dto.VoteResultDTO{Direction: newDirection}
	if fresh, ferr := s.postRepo.GetPost(ctx, postID); ferr == nil && fresh != nil {
		res.Upvotes, res.Downvotes = fresh.Upvotes, fresh.Downvotes
	} else {
		res.Upvotes = clampZero(post.Upvotes + upDelta)
		res.Downvotes = clampZero(post.Downvotes + downDelta)
	}
	return res, nil
}

// currentVoteState 读回投票行与计数的当前落库状态
func (s *postActionServiceImpl) currentVoteState(ctx context.Context, userID, postID uint64) (*dto.VoteResultDTO, error) {
	res := &dto.VoteResultDTO{Direction: model.VoteNone}
	if vote, err := s.actionRepo.GetVote(ctx, userID, postID); err == nil && vote != nil {
		res.Direction = vote.VoteType
	}
	if post, err := s.postRepo.GetPost(ctx, postID); err == nil && post != nil {
		res.Upvotes, res.Downvotes = post.Upvotes, post.Downvotes
	}
	return res, nil
}

func (s *postActionServiceImpl) GetVoteStatus(ctx context.Context, userID, postID uint64) (int8, error) {
	if userID == 0 {
		return model.VoteNone, nil
	}
	vote, err := s.actionRepo.GetVote(ctx, userID, postID)
	if err != nil {
		return model.VoteNone, err
	}
	if vote == nil {
		return model.VoteNone, nil
	}
	return vote.VoteType, nil
}

func (s *postActionServiceImpl) LikePost(ctx context.Context, userID, postID uint64) (*dto.LikeResultDTO, error) {
	if userID == 0 {
		return nil, ErrLoginRequired
	}
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil || post == nil {
		return nil, ErrPostNotFound
	}

	exists, err := s.actionRepo.CheckLikeExists(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if exists {
		return &dto.LikeResultDTO{Outcome: dto.OutcomeAlreadyApplied, Likes: post.Likes}, nil
	}

	if err = s.actionRepo.CreateLike(ctx, &model.Like{UserID: userID, PostID: postID, CreatedAt: time.Now()}); err != nil {
		if isDuplicateError(err) {
			return &dto.LikeResultDTO{Outcome: dto.OutcomeAlreadyApplied, Likes: post.Likes}, nil
		}
		return nil, err
	}

	if err = s.postRepo.IncrLikes(ctx, postID); err != nil {
		log.ErrorContext(ctx, "like counter sync failed", "postID", postID, "err", err)
	}

	res := &dto.LikeResultDTO{Outcome: dto.OutcomeApplied, Likes: post.Likes + 1}
	if fresh, ferr := s.postRepo.GetPost(ctx, postID); ferr == nil && fresh != nil {
		res.Likes = fresh.Likes
	}
	return res, nil
}

func (s *postActionServiceImpl) IsLiked(ctx context.Context, userID, postID uint64) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	return s.actionRepo.CheckLikeExists(ctx, userID, postID)
}

func (s *postActionServiceImpl) SavePost(ctx context.Context, userID, postID uint64) (*dto.SaveResultDTO, error) {
	if userID == 0 {
		return nil, ErrLoginRequired
	}
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil || post == nil {
		return nil, ErrPostNotFound
	}

	exists, err := s.actionRepo.CheckBookmarkExists(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if exists {
		return &dto.SaveResultDTO{Outcome: dto.OutcomeAlreadyApplied}, nil
	}

	if err = s.actionRepo.CreateBookmark(ctx, &model.Bookmark{UserID: userID, PostID: postID, CreatedAt: time.Now()}); err != nil {
		if isDuplicateError(err) {
			return &dto.SaveResultDTO{Outcome: dto.OutcomeAlreadyApplied}, nil
		}
		return nil, err
	}
	return &dto.SaveResultDTO{Outcome: dto.OutcomeApplied}, nil
}

// UnsavePost 幂等删除，目标不存在也视为成功
func (s *postActionServiceImpl) UnsavePost(ctx context.Context, userID, postID uint64) (*dto.SaveResultDTO, error) {
	if userID == 0 {
		return nil, ErrLoginRequired
	}
	if err := s.actionRepo.DeleteBookmark(ctx, userID, postID); err != nil {
		return nil, err
	}
	return &dto.SaveResultDTO{Outcome: dto.OutcomeApplied}, nil
}

func (s *postActionServiceImpl) IsSaved(ctx context.Context, userID, postID uint64) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	return s.actionRepo.CheckBookmarkExists(ctx, userID, postID)
}

func (s *postActionServiceImpl) ReportPost(ctx context.Context, userID, postID uint64, reason string) (*dto.ReportResultDTO, error) {
	if userID == 0 {
		return nil, ErrLoginRequired
	}
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil || post == nil {
		return nil, ErrPostNotFound
	}

	lockKey := consts.ReportLock + model.ReportTargetPost + ":" + strconv.FormatUint(userID, 10) + ":" + strconv.FormatUint(postID, 10)
	set, err := s.cache.TryLock(ctx, lockKey, "1", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	if !set {
		return &dto.ReportResultDTO{Outcome: dto.OutcomeAlreadyApplied}, nil
	}

	report := &model.Report{
		UserID:     userID,
		TargetID:   postID,
		TargetType: model.ReportTargetPost,
		Reason:     reason,
		CreatedAt:  time.Now(),
	}
	if err = s.actionRepo.CreateReport(ctx, report); err != nil {
		s.cache.UnLock(ctx, lockKey, "1")
		return nil, err
	}

	countKey := consts.PostReportKey + strconv.FormatUint(postID, 10)
	_ = s.cache.Incr(ctx, countKey)
	count, _ := s.cache.GetInt64(ctx, countKey)
	if count >= reportThreshold {
		_ = s.postRepo.UpdatePostStatus(ctx, postID, PostStatusUnderReview)
	}
	return &dto.ReportResultDTO{Outcome: dto.OutcomeApplied}, nil
}

func (s *postActionServiceImpl) ReportComment(ctx context.Context, userID, commentID uint64, reason string) (*dto.ReportResultDTO, error) {
	if userID == 0 {
		return nil, ErrLoginRequired
	}
	comment, err := s.commentRepo.GetCommentByID(ctx, commentID)
	if err != nil || comment == nil {
		return nil, ErrCommentNotFound
	}

	lockKey := consts.ReportLock + model.ReportTargetComment + ":" + strconv.FormatUint(userID, 10) + ":" + strconv.FormatUint(commentID, 10)
	set, err := s.cache.TryLock(ctx, lockKey, "1", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	if !set {
		return &dto.ReportResultDTO{Outcome: dto.OutcomeAlreadyApplied}, nil
	}

	report := &model.Report{
		UserID:     userID,
		TargetID:   commentID,
		TargetType: model.ReportTargetComment,
		Reason:     reason,
		CreatedAt:  time.Now(),
	}
	if err = s.actionRepo.CreateReport(ctx, report); err != nil {
		s.cache.UnLock(ctx, lockKey, "1")
		return nil, err
	}
	return &dto.ReportResultDTO{Outcome: dto.OutcomeApplied}, nil
}

func (s *postActionServiceImpl) GetPostVoteCounts(ctx context.Context, postID uint64) (int64, int64, error) {
	up, err := s.cachedCount(ctx, consts.PostUpvoteKey, postID, cacheExpiration, func() (int64, error) {
		return s.actionRepo.CountVotes(ctx, postID, model.VoteUp)
	})
	if err != nil {
		return 0, 0, err
	}
	down, err := s.cachedCount(ctx, consts.PostDownvoteKey, postID, cacheExpiration, func() (int64, error) {
		return s.actionRepo.CountVotes(ctx, postID, model.VoteDown)
	})
	if err != nil {
		return 0, 0, err
	}
	return up, down, nil
}

func (s *postActionServiceImpl) GetPostLikeCount(ctx context.Context, postID uint64) (int64, error) {
	return s.cachedCount(ctx, consts.PostLikeKey, postID, cacheExpiration, func() (int64, error) {
		return s.actionRepo.CountLikes(ctx, postID)
	})
}

func (s *postActionServiceImpl) GetPostCommentCount(ctx context.Context, postID uint64) (int64, error) {
	return s.cachedCount(ctx, consts.PostCommentKey, postID, cacheExpiration, func() (int64, error) {
		return s.actionRepo.CountCommentsByPostID(ctx, postID)
	})
}

func (s *postActionServiceImpl) GetPostViewCount(ctx context.Context, postID uint64) (int64, error) {
	return s.cachedCount(ctx, consts.PostViewKey, postID, viewCacheExpiration, func() (int64, error) {
		post, err := s.postRepo.GetPost(ctx, postID)
		if err != nil {
			return 0, err
		}
		if post == nil {
			return 0, ErrPostNotFound
		}
		return int64(post.Views), nil
	})
}

// cachedCount 旁路缓存：未命中时回源关系表并回填
func (s *postActionServiceImpl) cachedCount(ctx context.Context, keyPrefix string, id uint64, expiration time.Duration, loader func() (int64, error)) (int64, error) {
	key := keyPrefix + strconv.FormatUint(id, 10)
	count, err := s.cache.GetInt64(ctx, key)
	if err == nil {
		return count, nil
	}
	realCount, err := loader()
	if err != nil {
		return 0, err
	}
	_ = s.cache.SetWithExpiration(ctx, key, realCount, expiration)
	return realCount, nil
}

func isDuplicateError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	return false
}

func clampZero(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
