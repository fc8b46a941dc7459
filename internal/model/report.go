package model

import (
	"time"
)

const (
	ReportTargetPost    = "post"
	ReportTargetComment = "comment"
)

type Report struct {
	ID         uint64    `gorm:"primaryKey"`
	UserID     uint64    `gorm:"not null;index:idx_user_id" json:"userId"`
	TargetID   uint64    `gorm:"not null;index:idx_target" json:"targetId"`
	TargetType string    `gorm:"type:varchar(16);not null;index:idx_target" json:"targetType"`
	Reason     string    `gorm:"type:varchar(500);not null" json:"reason"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (Report) TableName() string {
	return "reports"
}
