package service

import "github.com/golang-jwt/jwt/v5"

// JWTClaims 访问令牌声明。令牌由外部账号系统签发，
// 引擎只校验签名与主体类型。
type JWTClaims struct {
	SubjectType string `json:"sub_type"` // admin / participant
	Code        string `json:"code"`     // 参与者推荐码（participant 主体）
	Name        string `json:"name"`     // 管理员名称（admin 主体）
	jwt.RegisteredClaims
}
