package repository

import (
	"Agora/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepo interface {
	GetUser(ctx context.Context, id uint64) (*model.User, error)
	// EnsureUser 首次写操作时懒创建本地用户快照，已存在则刷新用户名
	EnsureUser(ctx context.Context, id uint64, username string) error
}

type UserRepoImpl struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepo {
	return &UserRepoImpl{db}
}

func (s *UserRepoImpl) GetUser(ctx context.Context, id uint64) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserRepoImpl) EnsureUser(ctx context.Context, id uint64, username string) error {
	user := &model.User{
		ID:        id,
		Username:  username,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "updated_at"}),
	}).Create(user).Error
}
