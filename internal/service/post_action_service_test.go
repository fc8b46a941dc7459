package service

import (
	"Agora/internal/api/dto"
	"Agora/internal/model"
	"Agora/internal/pkg/consts"
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type actionFixture struct {
	postRepo    *fakePostRepo
	commentRepo *fakeCommentRepo
	actionRepo  *fakeActionRepo
	cache       *fakeActionCache
	svc         PostActionService
	post        *model.Post
}

func newActionFixture(t *testing.T) *actionFixture {
	t.Helper()
	postRepo := newFakePostRepo()
	commentRepo := newFakeCommentRepo()
	actionRepo := newFakeActionRepo(commentRepo)
	cache := newFakeActionCache()

	post := postRepo.seed(&model.Post{UserID: 100, Title: "测试帖子", Content: "这是一条足够长的正文"})

	return &actionFixture{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		actionRepo:  actionRepo,
		cache:       cache,
		svc:         NewPostActionService(actionRepo, postRepo, commentRepo, cache),
		post:        post,
	}
}

func TestVoteCreateThenToggleOff(t *testing.T) {
	f := newActionFixture(t)
	ctx := context.Background()

	res, err := f.svc.Vote(ctx, 1, f.post.ID, model.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, model.VoteUp, res.Direction)
	assert.Equal(t, 1, res.Upvotes)
	assert.Equal(t, 0, res.Downvotes)

	// 同向再点一次 → 取消
	res, err = f.svc.Vote(ctx, 1, f.post.ID, model.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, model.VoteNone, res.Direction)
	assert.Equal(t, 0, res.Upvotes)
	assert.Equal(t, 0, res.Downvotes)

	vote, err := f.actionRepo.GetVote(ctx, 1, f.post.ID)
	require.NoError(t, err)
	assert.Nil(t, vote, "取消后投票行应被删除")
}

func TestVoteSwitchDirection(t *testing.T) {
	f := newActionFixture(t)
	ctx := context.Background()

	_, err := f.svc.Vote(ctx, 1, f.post.ID, model.VoteUp)
	require.NoError(t, err)

	res, err := f.svc.Vote(ctx, 1, f.post.ID, model.VoteDown)
	require.NoError(t, err)
	assert.Equal(t, model.VoteDown, res.Direction)
	assert.Equal(t, 0, res.Upvotes)
	assert.Equal(t, 1, res.Downvotes)

	vote, err := f.actionRepo.GetVote(ctx, 1, f.post.ID)
	require.NoError(t, err)
	require.NotNil(t, vote)
	assert.Equal(t, model.VoteDown, vote.VoteType, "切换应原地改方向而不是新增行")
}

func TestVoteTwoUserSequence(t *testing.T) {
	f := newActionFixture(t)
	ctx := context.Background()

	// A 赞 → (1, 0)
	_, err := f.svc.Vote(ctx, 1, f.post.ID, model.VoteUp)
	require.NoError(t, err)

	// B 踩 → (1, 1)
	_, err = f.svc.Vote(ctx, 2, f.post.ID, model.VoteDown)
	require.NoError(t, err)

	// A 切换到踩 → (0, 2)
	res, err := f.svc.Vote(ctx, 1, f.post.ID, model.VoteDown)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Upvotes)
	assert.Equal(t, 2, res.Downvotes)

	// A 取消踩 → (0, 1)
	res, err = f.svc.Vote(ctx, 1, f.post.ID, model.VoteDown)
	require.NoError(t, err)
	assert.Equal(t, model.VoteNone, res.Direction)
	assert.Equal(t, 0, res.Upvotes)
	assert.Equal(t, 1, res.Downvotes)
}

func TestVoteCounterNeverNegative(t *testing.T) {
	f := newActionFixture(t)
	ctx := context.Background()

	// 模拟漂移：存在投票行但冗余计数是 0
	require.NoError(t, f.actionRepo.CreateVote(ctx, &model.Vote{UserID: 1, PostID: f.post.ID, VoteType: model.VoteUp}))

	res, err := f.svc.Vote(ctx, 1, f.post.ID, model.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, model.VoteNone, res.Direction)
	assert.Equal(t, 0, res.Upvotes, "递减必须在 0 处截断")
	assert.Equal(t, 0, res.Downvotes)
}

func TestVoteInvalidInput(t *testing.T) {
	f := newActionFixture(t)
	ctx := context.Background()

	_, err := f.svc.Vote(ctx, 1, f.post.ID, 0)
	assert.ErrorIs(t, err, ErrParamInvalid)

	_, err = f.svc.Vote(ctx, 1, f.post.ID, 2)
	assert.ErrorIs(t, err, ErrParamInvalid)

	_, err = f.svc.Vote(ctx, 0, f.post.ID, model.VoteUp)
	assert.ErrorIs(t, err, ErrLoginRequired)

	_, err = f.svc.Vote(ctx, 1, 9999, model.VoteUp)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestLikePostIsOneWay(t *testing.T) {
	f := newActionFixture(t)
	ctx := context.Background()

	res, err := f.svc.LikePost(ctx, 1, f.post.ID)
	require.NoError(t, err)
	assert.Equal(t, dto.OutcomeApplied, res.Outcome)
	assert.Equal(t, 1, res.Likes)

	// 重复点赞是软失败，计数不变
	res, err = f.svc.LikePost(ctx, 1, f.post.ID)
	require.NoError(t, err)
	assert.Equal(t, dto.OutcomeAlreadyApplied, res.Outcome)
	assert.Equal(t, 1, res.Likes)

	liked, err := f.svc.IsLiked(ctx, 1, f.post.ID)
	require.NoError(t, err)
	assert.True(t, liked)
}

func TestSaveUnsaveLifecycle(t *testing.T) {
	f := newActionFixture(t)
	ctx := context.Background()

	res, err := f.svc.SavePost(ctx, 1, f.post.ID)
	require.NoError(t, err)
	assert.Equal(t, dto.OutcomeApplied, res.Outcome)

	res, err = f.svc.SavePost(ctx, 1, f.post.ID)
	require.NoError(t, err)
	assert.Equal(t, dto.OutcomeAlreadyApplied, res.Outcome)

	saved, err := f.svc.IsSaved(ctx, 1, f.post.ID)
	require.NoError(t, err)
	assert.True(t, saved)

	res, err = f.svc.UnsavePost(ctx, 1, f.post.ID)
	require.NoError(t, err)
	assert.Equal(t, dto.OutcomeApplied, res.Outcome)

	// 取消收藏幂等，目标不存在也成功
	res, err = f.svc.UnsavePost(ctx, 1, f.post.ID)
	require.NoError(t, err)
	assert.Equal(t, dto.OutcomeApplied, res.Outcome)

	saved, err = f.svc.IsSaved(ctx, 1, f.post.ID)
	require.NoError(t, err)
	assert.False(t, saved)
}

func TestIsSavedAnonymous(t *testing.T) {
	f := newActionFixture(t)

	saved, err := f.svc.IsSaved(context.Background(), 0, f.post.ID)
	require.NoError(t, err)
	assert.False(t, saved, "匿名用户的收藏状态恒为 false")
}

// racingVoteRepo 模拟并发创建：读的时候还没有投票行，写的时候已被别的请求抢先落库
type racingVoteRepo struct {
	*fakeActionRepo
	raced bool
}

func (r *racingVoteRepo) GetVote(ctx context.Context, userID, postID uint64) (*model.Vote, error) {
	if !r.raced {
		return nil, nil
	}
	return r.fakeActionRepo.GetVote(ctx, userID, postID)
}

func (r *racingVoteRepo) CreateVote(ctx context.Context, vote *model.Vote) error {
	r.raced = true
	return r.fakeActionRepo.CreateVote(ctx, vote)
}

func TestVoteDuplicateRaceReturnsCurrentState(t *testing.T) {
	postRepo := newFakePostRepo()
	commentRepo := newFakeCommentRepo()
	base := newFakeActionRepo(commentRepo)
	ctx := context.Background()

	post := postRepo.seed(&model.Post{UserID: 100, Title: "测试帖子", Upvotes: 1})
	// 并发请求已先写入投票行和计数
	require.NoError(t, base.CreateVote(ctx, &model.Vote{UserID: 1, PostID: post.ID, VoteType: model.VoteUp}))

	svc := NewPostActionService(&racingVoteRepo{fakeActionRepo: base}, postRepo, commentRepo, newFakeActionCache())

	// 唯一键冲突不应报错，而是返回已落库的状态
	res, err := svc.Vote(ctx, 1, post.ID, model.VoteUp)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, model.VoteUp, res.Direction)
	assert.Equal(t, 1, res.Upvotes)
	assert.Equal(t, 0, res.Downvotes)

	// 计数不应被重复冲突的请求再调一次
	fresh, err := postRepo.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.Upvotes)
}

func TestReportPostDuplicateIsSoftOutcome(t *testing.T) {
	f := newActionFixture(t)
	ctx := context.Background()

	res, err := f.svc.ReportPost(ctx, 1, f.post.ID, "垃圾广告")
	require.NoError(t, err)
	assert.Equal(t, dto.OutcomeApplied, res.Outcome)
	assert.Len(t, f.actionRepo.reports, 1)

	// 24 小时内同一用户重复举报同一帖子是软失败，不落新行
	res, err = f.svc.ReportPost(ctx, 1, f.post.ID, "垃圾广告")
	require.NoError(t, err)
	assert.Equal(t, dto.OutcomeAlreadyApplied, res.Outcome)
	assert.Len(t, f.actionRepo.reports, 1)
}

func TestReportPostThresholdFlipsStatus(t *testing.T) {
	f := newActionFixture(t)
	ctx := context.Background()

	for i := 1; i < reportThreshold; i++ {
		_, err := f.svc.ReportPost(ctx, uint64(i), f.post.ID, "违规内容")
		require.NoError(t, err)
	}
	post, err := f.postRepo.GetPost(ctx, f.post.ID)
	require.NoError(t, err)
	assert.Equal(t, PostStatusNormal, post.Status, "未达阈值不应转入审核")

	_, err = f.svc.ReportPost(ctx, uint64(reportThreshold), f.post.ID, "违规内容")
	require.NoError(t, err)

	post, err = f.postRepo.GetPost(ctx, f.post.ID)
	require.NoError(t, err)
	assert.Equal(t, PostStatusUnderReview, post.Status)
}

// flakyReportRepo 首次写举报行失败
type flakyReportRepo struct {
	*fakeActionRepo
	failures int
}

func (r *flakyReportRepo) CreateReport(ctx context.Context, report *model.Report) error {
	if r.failures > 0 {
		r.failures--
		return errors.New("db 暂不可用")
	}
	return r.fakeActionRepo.CreateReport(ctx, report)
}

func TestReportPostLockReleasedOnInsertFailure(t *testing.T) {
	postRepo := newFakePostRepo()
	commentRepo := newFakeCommentRepo()
	base := newFakeActionRepo(commentRepo)
	cache := newFakeActionCache()
	ctx := context.Background()

	post := postRepo.seed(&model.Post{UserID: 100, Title: "测试帖子"})
	svc := NewPostActionService(&flakyReportRepo{fakeActionRepo: base, failures: 1}, postRepo, commentRepo, cache)

	_, err := svc.ReportPost(ctx, 1, post.ID, "违规内容")
	require.Error(t, err)

	// 落库失败要释放去重锁，否则用户 24 小时内无法重试
	res, err := svc.ReportPost(ctx, 1, post.ID, "违规内容")
	require.NoError(t, err)
	assert.Equal(t, dto.OutcomeApplied, res.Outcome)
	assert.Len(t, base.reports, 1)
}

func TestReportCommentDuplicateIsSoftOutcome(t *testing.T) {
	f := newActionFixture(t)
	ctx := context.Background()

	comment := f.commentRepo.seed(&model.Comment{PostID: f.post.ID, UserID: 2, Content: "测试评论"})

	res, err := f.svc.ReportComment(ctx, 1, comment.ID, "人身攻击")
	require.NoError(t, err)
	assert.Equal(t, dto.OutcomeApplied, res.Outcome)

	res, err = f.svc.ReportComment(ctx, 1, comment.ID, "人身攻击")
	require.NoError(t, err)
	assert.Equal(t, dto.OutcomeAlreadyApplied, res.Outcome)
	assert.Len(t, f.actionRepo.reports, 1)

	_, err = f.svc.ReportComment(ctx, 1, 9999, "人身攻击")
	assert.ErrorIs(t, err, ErrCommentNotFound)
}

func TestPostViewCountUsesShortCache(t *testing.T) {
	f := newActionFixture(t)
	ctx := context.Background()

	f.post.Views = 7
	f.postRepo.seed(f.post)

	count, err := f.svc.GetPostViewCount(ctx, f.post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)

	// 浏览数缓存必须用短周期，普通计数键仍用长周期
	viewKey := consts.PostViewKey + strconv.FormatUint(f.post.ID, 10)
	assert.Equal(t, viewCacheExpiration, f.cache.ttlOf(viewKey))

	_, _, err = f.svc.GetPostVoteCounts(ctx, f.post.ID)
	require.NoError(t, err)
	upKey := consts.PostUpvoteKey + strconv.FormatUint(f.post.ID, 10)
	assert.Equal(t, cacheExpiration, f.cache.ttlOf(upKey))
}

func TestGetVoteStatus(t *testing.T) {
	f := newActionFixture(t)
	ctx := context.Background()

	status, err := f.svc.GetVoteStatus(ctx, 1, f.post.ID)
	require.NoError(t, err)
	assert.Equal(t, model.VoteNone, status)

	_, err = f.svc.Vote(ctx, 1, f.post.ID, model.VoteDown)
	require.NoError(t, err)

	status, err = f.svc.GetVoteStatus(ctx, 1, f.post.ID)
	require.NoError(t, err)
	assert.Equal(t, model.VoteDown, status)
}
