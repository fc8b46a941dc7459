package dto

// VoteReq 投票请求
type VoteReq struct {
	Direction int8 `json:"direction" binding:"required,oneof=1 -1"`
}

// VoteResultDTO 投票结果：最终方向与最新计数
type VoteResultDTO struct {
	Direction int8 `json:"direction"` // 1:赞, -1:踩, 0:已取消
	Upvotes   int  `json:"upvotes"`
	Downvotes int  `json:"downvotes"`
}

// LikeResultDTO 点赞结果
type LikeResultDTO struct {
	Outcome string `json:"outcome"`
	Likes   int    `json:"likes"`
}

// SaveResultDTO 收藏/取消收藏结果
type SaveResultDTO struct {
	Outcome string `json:"outcome"`
}

// PostActionStateDTO 帖子详情页的全量交互状态
type PostActionStateDTO struct {
	Upvotes      int64 `json:"upvotes"`
	Downvotes    int64 `json:"downvotes"`
	LikeCount    int64 `json:"like_count"`
	CommentCount int64 `json:"comment_count"`
	ViewCount    int64 `json:"view_count"`
	VoteStatus   int8  `json:"vote_status"`
	IsSaved      bool  `json:"is_saved"`
	IsLiked      bool  `json:"is_liked"`
}
