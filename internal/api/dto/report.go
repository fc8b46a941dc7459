package dto

// ReportCreateDTO 举报请求
type ReportCreateDTO struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// ReportResultDTO 举报结果
type ReportResultDTO struct {
	Outcome string `json:"outcome"`
}

// MediaUploadDTO 图片上传结果
type MediaUploadDTO struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}
