package repository

import (
	"Agora/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

type PostRepo interface {
	CreatePost(ctx context.Context, post *model.Post) error
	GetPost(ctx context.Context, id uint64) (*model.Post, error)
	GetPostByIds(ctx context.Context, ids []uint64) ([]*model.Post, error)
	ListPosts(ctx context.Context, limit, offset int) ([]*model.Post, error)
	UpdatePost(ctx context.Context, post *model.Post) error
	DeletePost(ctx context.Context, id uint64) error
	UpdatePostStatus(ctx context.Context, id uint64, status int8) error

	// AdjustVoteCounters 单条语句原子调整赞/踩计数，递减在 0 处截断
	AdjustVoteCounters(ctx context.Context, postID uint64, upDelta, downDelta int) error
	IncrLikes(ctx context.Context, postID uint64) error
	IncrViews(ctx context.Context, postID uint64) error
	// SyncCounters 对账任务回写关系表中的真实计数
	SyncCounters(ctx context.Context, postID uint64, upvotes, downvotes, likes int64) error
}

type PostRepoImpl struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepo {
	return &PostRepoImpl{
		db: db,
	}
}

func (s *PostRepoImpl) CreatePost(ctx context.Context, post *model.Post) error {
	return s.db.WithContext(ctx).Create(post).Error
}

func (s *PostRepoImpl) GetPost(ctx context.Context, id uint64) (*model.Post, error) {
	var post model.Post
	err := s.db.WithContext(ctx).Preload("User").
		Where("id = ? AND is_deleted = ?", id, false).
		First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *PostRepoImpl) GetPostByIds(ctx context.Context, ids []uint64) ([]*model.Post, error) {
	var posts []*model.Post
	err := s.db.WithContext(ctx).Preload("User").
		Where("id IN ? AND is_deleted = ?", ids, false).
		Find(&posts).Error
	return posts, err
}

func (s *PostRepoImpl) ListPosts(ctx context.Context, limit, offset int) ([]*model.Post, error) {
	var posts []*model.Post
	err := s.db.WithContext(ctx).Preload("User").
		Where("is_deleted = ?", false).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (s *PostRepoImpl) UpdatePost(ctx context.Context, post *model.Post) error {
	return s.db.WithContext(ctx).Model(&model.Post{}).
		Where("id = ?", post.ID).
		Updates(map[string]interface{}{
			"title":     post.Title,
			"content":   post.Content,
			"image_url": post.ImageURL,
		}).Error
}

func (s *PostRepoImpl) DeletePost(ctx context.Context, id uint64) error {
	return s.db.WithContext(ctx).Model(&model.Post{}).
		Where("id = ?", id).
		Update("is_deleted", true).Error
}

func (s *PostRepoImpl) UpdatePostStatus(ctx context.Context, id uint64, status int8) error {
	return s.db.WithContext(ctx).Model(&model.Post{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (s *PostRepoImpl) AdjustVoteCounters(ctx context.Context, postID uint64, upDelta, downDelta int) error {
	updates := map[string]interface{}{}
	switch {
	case upDelta > 0:
		updates["upvotes"] = gorm.Expr("upvotes + ?", upDelta)
	case upDelta < 0:
		updates["upvotes"] = gorm.Expr("GREATEST(upvotes - ?, 0)", -upDelta)
	}
	switch {
	case downDelta > 0:
		updates["downvotes"] = gorm.Expr("downvotes + ?", downDelta)
	case downDelta < 0:
		updates["downvotes"] = gorm.Expr("GREATEST(downvotes - ?, 0)", -downDelta)
	}
	if len(updates) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Model(&model.Post{}).
		Where("id = ?", postID).
		Updates(updates).Error
}

func (s *PostRepoImpl) IncrLikes(ctx context.Context, postID uint64) error {
	return s.db.WithContext(ctx).Model(&model.Post{}).
		Where("id = ?", postID).
		Update("likes", gorm.Expr("likes + 1")).Error
}

func (s *PostRepoImpl) IncrViews(ctx context.Context, postID uint64) error {
	return s.db.WithContext(ctx).Model(&model.Post{}).
		Where("id = ?", postID).
		Update("views", gorm.Expr("views + 1")).Error
}

func (s *PostRepoImpl) SyncCounters(ctx context.Context, postID uint64, upvotes, downvotes, likes int64) error {
	return s.db.WithContext(ctx).Model(&model.Post{}).
		Where("id = ?", postID).
		Updates(map[string]interface{}{
			"upvotes":   upvotes,
			"downvotes": downvotes,
			"likes":     likes,
		}).Error
}
