package model

import (
	"time"
)

type Comment struct {
	ID              uint64       `gorm:"primaryKey"`
	PostID          uint64       `gorm:"not null;index:idx_post_id" json:"postId"`
	UserID          uint64       `gorm:"not null" json:"userId"`
	Content         string       `gorm:"type:varchar(1000);not null" json:"content"`
	ParentCommentID uint64       `gorm:"not null;default:0;index:idx_parent_id" json:"parentCommentId"` // 0表示这是一级评论
	ImageURL        string       `gorm:"type:varchar(500)" json:"imageUrl"`
	LinkURL         string       `gorm:"type:varchar(500)" json:"linkUrl"`
	LinkPreview     *LinkPreview `gorm:"type:json;serializer:json" json:"linkPreview"`
	Likes           int          `gorm:"not null;default:0" json:"likes"`
	IsDeleted       bool         `gorm:"type:tinyint(1);not null;default:0" json:"isDeleted"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`

	User User `gorm:"foreignKey:UserID;references:ID"`
}

func (Comment) TableName() string {
	return "comments"
}

// LinkPreview 评论外链抓取到的 OG 元数据
type LinkPreview struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	URL         string `json:"url"`
}
