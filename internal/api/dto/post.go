package dto

// PostCreateDTO 发帖请求
type PostCreateDTO struct {
	Title    string `json:"title" binding:"required,max=200"`
	Content  string `json:"content" binding:"required,min=10,max=5000"`
	ImageURL string `json:"image_url" binding:"omitempty,url,max=500"`
}

// PostUpdateDTO 编辑帖子请求，仅作者可用
type PostUpdateDTO struct {
	Title      string `json:"title" binding:"omitempty,max=200"`
	Content    string `json:"content" binding:"omitempty,min=10,max=5000"`
	ImageURL   string `json:"image_url" binding:"omitempty,url,max=500"`
	ClearImage bool   `json:"clear_image"`
}

// PostDTO 帖子列表项
type PostDTO struct {
	ID        uint64 `json:"id"`
	UserID    uint64 `json:"user_id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	ImageURL  string `json:"image_url"`
	Upvotes   int    `json:"upvotes"`
	Downvotes int    `json:"downvotes"`
	Likes     int    `json:"likes"`
	Views     int    `json:"views"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// PostDetailDTO 帖子详情，浏览数为展示用的预增值
type PostDetailDTO struct {
	PostDTO
	VoteStatus int8 `json:"vote_status"` // 1:已赞, -1:已踩, 0:未投票
	IsSaved    bool `json:"is_saved"`
	IsLiked    bool `json:"is_liked"`
}

// PostListDTO 分页帖子列表
type PostListDTO struct {
	List    []*PostDTO `json:"list"`
	HasMore bool       `json:"has_more"`
}
