package repository

import (
	"Agora/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

type CommentRepo interface {
	CreateComment(ctx context.Context, comment *model.Comment) error
	GetCommentByID(ctx context.Context, commentID uint64) (*model.Comment, error)
	// GetCommentsByPostID 拉取帖子的全量评论平铺列表，树形结构由 service 构建
	GetCommentsByPostID(ctx context.Context, postID uint64) ([]*model.Comment, error)
	DeleteComment(ctx context.Context, commentID uint64) error

	// AdjustLikes 原子调整评论点赞数，递减在 0 处截断
	AdjustLikes(ctx context.Context, commentID uint64, delta int) error
	// SyncLikes 对账任务回写关系表中的真实计数
	SyncLikes(ctx context.Context, commentID uint64, likes int64) error
}

type CommentRepoImpl struct {
	db *gorm.DB
}

func NewCommentRepo(db *gorm.DB) CommentRepo {
	return &CommentRepoImpl{db}
}

func (s *CommentRepoImpl) CreateComment(ctx context.Context, comment *model.Comment) error {
	return s.db.WithContext(ctx).Create(comment).Error
}

func (s *CommentRepoImpl) GetCommentByID(ctx context.Context, commentID uint64) (*model.Comment, error) {
	var comment model.Comment
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", commentID, false).
		First(&comment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (s *CommentRepoImpl) GetCommentsByPostID(ctx context.Context, postID uint64) ([]*model.Comment, error) {
	var comments []*model.Comment
	err := s.db.WithContext(ctx).Preload("User").
		Where("post_id = ? AND is_deleted = ?", postID, false).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

func (s *CommentRepoImpl) DeleteComment(ctx context.Context, commentID uint64) error {
	return s.db.WithContext(ctx).Model(&model.Comment{}).
		Where("id = ? AND is_deleted = ?", commentID, false).
		Update("is_deleted", true).Error
}

func (s *CommentRepoImpl) AdjustLikes(ctx context.Context, commentID uint64, delta int) error {
	if delta == 0 {
		return nil
	}
	expr := gorm.Expr("likes + ?", delta)
	if delta < 0 {
		expr = gorm.Expr("GREATEST(likes - ?, 0)", -delta)
	}
	return s.db.WithContext(ctx).Model(&model.Comment{}).
		Where("id = ?", commentID).
		Update("likes", expr).Error
}

func (s *CommentRepoImpl) SyncLikes(ctx context.Context, commentID uint64, likes int64) error {
	return s.db.WithContext(ctx).Model(&model.Comment{}).
		Where("id = ?", commentID).
		Update("likes", likes).Error
}
