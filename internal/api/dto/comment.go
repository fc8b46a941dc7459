package dto

import "time"

// 评论排序方式
const (
	CommentSortLatest = "latest"
	CommentSortLikes  = "likes"
)

// CommentCreateDTO 创建评论请求
type CommentCreateDTO struct {
	PostID          uint64 `json:"post_id" binding:"required"`
	Content         string `json:"content" binding:"required,max=1000"`
	ParentCommentID uint64 `json:"parent_comment_id"` // 0 表示一级评论
	ImageURL        string `json:"image_url" binding:"omitempty,url,max=500"`
	LinkURL         string `json:"link_url" binding:"omitempty,url,max=500"`
}

// LinkPreviewDTO 外链预览元数据
type LinkPreviewDTO struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	URL         string `json:"url"`
}

// CommentDTO 评论返回详情，Replies 只物化一层
type CommentDTO struct {
	ID              uint64          `json:"id"`
	PostID          uint64          `json:"post_id"`
	UserID          uint64          `json:"user_id"`
	Username        string          `json:"username"`
	AvatarURL       string          `json:"avatar_url"`
	Content         string          `json:"content"`
	ParentCommentID uint64          `json:"parent_comment_id"`
	ImageURL        string          `json:"image_url"`
	LinkURL         string          `json:"link_url"`
	LinkPreview     *LinkPreviewDTO `json:"link_preview"`
	Likes           int             `json:"likes"`
	IsLiked         bool            `json:"is_liked"`
	CreatedAt       string          `json:"created_at"`
	CreatedAtTime   time.Time       `json:"-"` // 排序用原始时间

	Replies []*CommentDTO `json:"replies"`
}

// CommentLikeResultDTO 评论点赞/取消点赞结果
type CommentLikeResultDTO struct {
	Outcome string `json:"outcome"`
	Likes   int    `json:"likes"`
}
