package security

import (
	"github.com/golang-jwt/jwt/v5"
)

// UserClaims 外部认证服务签发的 Token 中携带的业务信息
type UserClaims struct {
	UserID   uint64 `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}
