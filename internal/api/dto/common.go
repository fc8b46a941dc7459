package dto

// Response 统一返回封装
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// 操作结果状态：重复操作是正常返回值而非错误
const (
	OutcomeApplied        = "applied"
	OutcomeAlreadyApplied = "already_applied"
)
