package security

import (
	"Agora/internal/api/config"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ValidateToken 校验外部认证服务签发的 Token 并解析出 Claims
func ValidateToken(tokenString string) (*UserClaims, error) {
	claims := &UserClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("非预期的签名方法: %v", token.Header["alg"])
		}
		return []byte(config.Cfg.Auth.JWTSecret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("token 解析失败: %w", err)
	}

	if !token.Valid {
		return nil, errors.New("token 无效或已过期")
	}

	if iss, _ := claims.GetIssuer(); config.Cfg.Auth.Issuer != "" && iss != config.Cfg.Auth.Issuer {
		return nil, errors.New("token 签发方不可信")
	}

	return claims, nil
}
