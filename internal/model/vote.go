package model

import (
	"time"
)

// 投票方向
const (
	VoteUp   int8 = 1
	VoteDown int8 = -1
	VoteNone int8 = 0
)

// Vote 用户对帖子的方向性投票，(user_id, post_id) 唯一
type Vote struct {
	UserID    uint64    `gorm:"primaryKey" json:"userId"`
	PostID    uint64    `gorm:"primaryKey;index:idx_post_id" json:"postId"`
	VoteType  int8      `gorm:"not null" json:"voteType"` // 1:赞, -1:踩
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Vote) TableName() string {
	return "votes"
}
