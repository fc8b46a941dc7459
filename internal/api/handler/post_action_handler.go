package handler

import (
	"Agora/internal/api/dto"
	"Agora/internal/pkg/response"
	"Agora/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

type PostActionHandler struct {
	actionSvc service.PostActionService
}

func NewPostActionHandler(actionSvc service.PostActionService) *PostActionHandler {
	return &PostActionHandler{
		actionSvc: actionSvc,
	}
}

// Vote 投票：重复同向取消，反向切换
func (s *PostActionHandler) Vote(c *gin.Context) {
	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil || postID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	userID := c.GetUint64("user_id")

	var req dto.VoteReq
	if err = c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	res, err := s.actionSvc.Vote(c.Request.Context(), userID, postID, req.Direction)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// LikePost 单向点赞，不支持取消
func (s *PostActionHandler) LikePost(c *gin.Context) {
	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil || postID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	userID := c.GetUint64("user_id")

	res, err := s.actionSvc.LikePost(c.Request.Context(), userID, postID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *PostActionHandler) SavePost(c *gin.Context) {
	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil || postID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	userID := c.GetUint64("user_id")

	res, err := s.actionSvc.SavePost(c.Request.Context(), userID, postID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *PostActionHandler) UnsavePost(c *gin.Context) {
	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil || postID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	userID := c.GetUint64("user_id")

	res, err := s.actionSvc.UnsavePost(c.Request.Context(), userID, postID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *PostActionHandler) ReportPost(c *gin.Context) {
	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil || postID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	userID := c.GetUint64("user_id")

	var req dto.ReportCreateDTO
	if err = c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	res, err := s.actionSvc.ReportPost(c.Request.Context(), userID, postID, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *PostActionHandler) ReportComment(c *gin.Context) {
	commentID, err := strconv.ParseUint(c.Param("comment_id"), 10, 64)
	if err != nil || commentID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	userID := c.GetUint64("user_id")

	var req dto.ReportCreateDTO
	if err = c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	res, err := s.actionSvc.ReportComment(c.Request.Context(), userID, commentID, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// GetPostActionState 帖子详情页的全量交互状态
func (s *PostActionHandler) GetPostActionState(c *gin.Context) {
	userID := c.GetUint64("user_id")
	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil || postID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	ctx := c.Request.Context()
	state := &dto.PostActionStateDTO{}
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		state.Upvotes, state.Downvotes, _ = s.actionSvc.GetPostVoteCounts(gCtx, postID)
		return nil
	})
	g.Go(func() error {
		state.LikeCount, _ = s.actionSvc.GetPostLikeCount(gCtx, postID)
		return nil
	})
	g.Go(func() error {
		state.CommentCount, _ = s.actionSvc.GetPostCommentCount(gCtx, postID)
		return nil
	})
	g.Go(func() error {
		state.ViewCount, _ = s.actionSvc.GetPostViewCount(gCtx, postID)
		return nil
	})
	g.Go(func() error {
		if userID > 0 {
			state.VoteStatus, _ = s.actionSvc.GetVoteStatus(gCtx, userID, postID)
		}
		return nil
	})
	g.Go(func() error {
		if userID > 0 {
			state.IsSaved, _ = s.actionSvc.IsSaved(gCtx, userID, postID)
		}
		return nil
	})
	g.Go(func() error {
		if userID > 0 {
			state.IsLiked, _ = s.actionSvc.IsLiked(gCtx, userID, postID)
		}
		return nil
	})

	_ = g.Wait()
	response.Success(c, state)
}
