package model

import (
	"time"
)

// User 本地用户快照，身份由外部认证服务签发，首次写操作时懒创建
type User struct {
	ID        uint64    `gorm:"primaryKey"`
	Username  string    `gorm:"type:varchar(50);not null"`
	AvatarURL string    `gorm:"type:varchar(500)"`
	IsBan     bool      `gorm:"type:tinyint(1);default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string {
	return "users"
}
