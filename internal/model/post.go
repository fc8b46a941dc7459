package model

import (
	"time"
)

type Post struct {
	ID        uint64    `gorm:"primaryKey"`
	UserID    uint64    `gorm:"not null;index:idx_user_id" json:"user_id"`
	Title     string    `gorm:"type:varchar(200);not null" json:"title"`
	Content   string    `gorm:"not null" json:"content"`
	ImageURL  string    `gorm:"type:varchar(500)" json:"image_url"`
	Upvotes   int       `gorm:"not null;default:0" json:"upvotes"`
	Downvotes int       `gorm:"not null;default:0" json:"downvotes"`
	Likes     int       `gorm:"not null;default:0" json:"likes"`
	Views     int       `gorm:"not null;default:0" json:"views"`
	Status    int8      `gorm:"not null;default:0" json:"status"` // 0:正常, 1:待人工审核
	IsDeleted bool      `gorm:"type:tinyint(1);not null;default:0" json:"is_deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 关联关系
	User User `gorm:"foreignKey:UserID;references:ID"`
}

func (Post) TableName() string {
	return "posts"
}
