package model

import (
	"time"
)

// Bookmark 用户收藏的帖子，纯存在性标记，不触发任何计数
type Bookmark struct {
	UserID    uint64    `gorm:"primaryKey" json:"userId"`
	PostID    uint64    `gorm:"primaryKey;index:idx_post_id" json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Bookmark) TableName() string {
	return "bookmarks"
}
