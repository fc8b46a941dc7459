package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	NotFound            = 404
	InternalServerError = 500
)

var (
	ErrParamInvalid     = errors.New("参数错误")
	ErrLoginRequired    = errors.New("请先登录")
	ErrPostNotFound     = errors.New("帖子不存在")
	ErrCommentNotFound  = errors.New("评论不存在")
	ErrUserBan          = errors.New("用户已被封禁")
	ErrActionDuplicate  = errors.New("重复操作")
	ErrFileNotSupported = errors.New("不支持的文件类型")
	UnauthorizedError   = errors.New("权限不足")
	UnExpectedError     = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:     BadRequest,
	ErrLoginRequired:    Unauthorized,
	ErrPostNotFound:     NotFound,
	ErrCommentNotFound:  NotFound,
	ErrUserBan:          Unauthorized,
	ErrActionDuplicate:  BadRequest,
	ErrFileNotSupported: BadRequest,
	UnauthorizedError:   Unauthorized,
	UnExpectedError:     InternalServerError,
}
