package handler

import (
	"Agora/internal/api/dto"
	"Agora/internal/pkg/response"
	"Agora/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentSvc service.CommentService
}

func NewCommentHandler(commentSvc service.CommentService) *CommentHandler {
	return &CommentHandler{
		commentSvc: commentSvc,
	}
}

func (s *CommentHandler) CreateComment(c *gin.Context) {
	userID := c.GetUint64("user_id")
	username := c.GetString("username")

	var req dto.CommentCreateDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	comment, err := s.commentSvc.CreateComment(c.Request.Context(), userID, username, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, comment)
}

func (s *CommentHandler) DeleteComment(c *gin.Context) {
	userID := c.GetUint64("user_id")
	commentID, err := strconv.ParseUint(c.Param("comment_id"), 10, 64)
	if err != nil || commentID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	if err = s.commentSvc.DeleteComment(c.Request.Context(), userID, commentID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *CommentHandler) LikeComment(c *gin.Context) {
	userID := c.GetUint64("user_id")
	commentID, err := strconv.ParseUint(c.Param("comment_id"), 10, 64)
	if err != nil || commentID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	res, err := s.commentSvc.LikeComment(c.Request.Context(), userID, commentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *CommentHandler) UnlikeComment(c *gin.Context) {
	userID := c.GetUint64("user_id")
	commentID, err := strconv.ParseUint(c.Param("comment_id"), 10, 64)
	if err != nil || commentID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	res, err := s.commentSvc.UnlikeComment(c.Request.Context(), userID, commentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// GetCommentTree 评论树，匿名可见，sort_by 支持 latest/likes
func (s *CommentHandler) GetCommentTree(c *gin.Context) {
	userID := c.GetUint64("user_id")
	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil || postID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	sortBy := c.DefaultQuery("sort_by", dto.CommentSortLatest)
	if sortBy != dto.CommentSortLatest && sortBy != dto.CommentSortLikes {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	tree, err := s.commentSvc.GetCommentTree(c.Request.Context(), postID, sortBy, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, tree)
}
