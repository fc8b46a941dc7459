package repository

import (
	"Agora/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

type PostActionRepo interface {
	GetVote(ctx context.Context, userID, postID uint64) (*model.Vote, error)
	CreateVote(ctx context.Context, vote *model.Vote) error
	UpdateVoteType(ctx context.Context, userID, postID uint64, voteType int8) error
	DeleteVote(ctx context.Context, userID, postID uint64) error
	CountVotes(ctx context.Context, postID uint64, voteType int8) (int64, error)

	CreateLike(ctx context.Context, like *model.Like) error
	CheckLikeExists(ctx context.Context, userID, postID uint64) (bool, error)
	CountLikes(ctx context.Context, postID uint64) (int64, error)

	CreateBookmark(ctx context.Context, bookmark *model.Bookmark) error
	DeleteBookmark(ctx context.Context, userID, postID uint64) error
	CheckBookmarkExists(ctx context.Context, userID, postID uint64) (bool, error)
	GetBookmarkedPostIDs(ctx context.Context, userID uint64, limit, offset int) ([]uint64, error)

	CreateCommentLike(ctx context.Context, cl *model.CommentLike) error
	// DeleteCommentLike 返回实际删除的行数，0 表示本就不存在
	DeleteCommentLike(ctx context.Context, userID, commentID uint64) (int64, error)
	CheckCommentLikeExists(ctx context.Context, userID, commentID uint64) (bool, error)
	CountCommentLikes(ctx context.Context, commentID uint64) (int64, error)
	GetLikedCommentIDs(ctx context.Context, userID uint64, commentIDs []uint64) ([]uint64, error)

	CreateReport(ctx context.Context, report *model.Report) error

	CountCommentsByPostID(ctx context.Context, postID uint64) (int64, error)
}

type PostActionRepoImpl struct {
	db *gorm.DB
}

func NewPostActionRepo(db *gorm.DB) PostActionRepo {
	return &PostActionRepoImpl{db}
}

func (s *PostActionRepoImpl) GetVote(ctx context.Context, userID, postID uint64) (*model.Vote, error) {
	var vote model.Vote
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		First(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

func (s *PostActionRepoImpl) CreateVote(ctx context.Context, vote *model.Vote) error {
	return s.db.WithContext(ctx).Create(vote).Error
}

func (s *PostActionRepoImpl) UpdateVoteType(ctx context.Context, userID, postID uint64, voteType int8) error {
	return s.db.WithContext(ctx).Model(&model.Vote{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Update("vote_type", voteType).Error
}

func (s *PostActionRepoImpl) DeleteVote(ctx context.Context, userID, postID uint64) error {
	return s.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&model.Vote{}).Error
}

func (s *PostActionRepoImpl) CountVotes(ctx context.Context, postID uint64, voteType int8) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Vote{}).
		Where("post_id = ? AND vote_type = ?", postID, voteType).
		Count(&count).Error
	return count, err
}

func (s *PostActionRepoImpl) CreateLike(ctx context.Context, like *model.Like) error {
	return s.db.WithContext(ctx).Create(like).Error
}

func (s *PostActionRepoImpl) CheckLikeExists(ctx context.Context, userID, postID uint64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	return count > 0, err
}

func (s *PostActionRepoImpl) CountLikes(ctx context.Context, postID uint64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Like{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}

func (s *PostActionRepoImpl) CreateBookmark(ctx context.Context, bookmark *model.Bookmark) error {
	return s.db.WithContext(ctx).Create(bookmark).Error
}

func (s *PostActionRepoImpl) DeleteBookmark(ctx context.Context, userID, postID uint64) error {
	return s.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&model.Bookmark{}).Error
}

func (s *PostActionRepoImpl) CheckBookmarkExists(ctx context.Context, userID, postID uint64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Bookmark{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	return count > 0, err
}

func (s *PostActionRepoImpl) GetBookmarkedPostIDs(ctx context.Context, userID uint64, limit, offset int) ([]uint64, error) {
	var postIDs []uint64
	err := s.db.WithContext(ctx).Model(&model.Bookmark{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Pluck("post_id", &postIDs).Error
	return postIDs, err
}

func (s *PostActionRepoImpl) CreateCommentLike(ctx context.Context, cl *model.CommentLike) error {
	return s.db.WithContext(ctx).Create(cl).Error
}

func (s *PostActionRepoImpl) DeleteCommentLike(ctx context.Context, userID, commentID uint64) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND comment_id = ?", userID, commentID).
		Delete(&model.CommentLike{})
	return res.RowsAffected, res.Error
}

func (s *PostActionRepoImpl) CheckCommentLikeExists(ctx context.Context, userID, commentID uint64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.CommentLike{}).
		Where("user_id = ? AND comment_id = ?", userID, commentID).
		Count(&count).Error
	return count > 0, err
}

func (s *PostActionRepoImpl) CountCommentLikes(ctx context.Context, commentID uint64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.CommentLike{}).
		Where("comment_id = ?", commentID).
		Count(&count).Error
	return count, err
}

func (s *PostActionRepoImpl) GetLikedCommentIDs(ctx context.Context, userID uint64, commentIDs []uint64) ([]uint64, error) {
	var ids []uint64
	err := s.db.WithContext(ctx).Model(&model.CommentLike{}).
		Where("user_id = ? AND comment_id IN ?", userID, commentIDs).
		Pluck("comment_id", &ids).Error
	return ids, err
}

func (s *PostActionRepoImpl) CreateReport(ctx context.Context, report *model.Report) error {
	return s.db.WithContext(ctx).Create(report).Error
}

func (s *PostActionRepoImpl) CountCommentsByPostID(ctx context.Context, postID uint64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Comment{}).
		Where("post_id = ? AND is_deleted = ?", postID, false).
		Count(&count).Error
	return count, err
}
