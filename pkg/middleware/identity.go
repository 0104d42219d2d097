package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/d60-Lab/social-feed/config"
)

// ContextUIDKey gin context 中已认证用户 id 的键
const ContextUIDKey = "uid"

// Identity 从请求中提取调用方身份。
// header 模式直接信任网关注入的 X-User-Uid；bearer 模式从网关已验签的
// JWT claims 里取 uid（本服务不再重复验签，验签是网关的契约）。
func Identity(cfg config.AuthConfig) gin.HandlerFunc {
	header := cfg.UIDHeader
	if header == "" {
		header = "X-User-Uid"
	}
	claim := cfg.UIDClaim
	if claim == "" {
		claim = "sub"
	}

	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetHeader(header))
		if uid == "" && cfg.Mode == "bearer" {
			uid = uidFromBearer(c.GetHeader("Authorization"), claim)
		}
		if uid != "" {
			c.Set(ContextUIDKey, uid)
		}
		c.Next()
	}
}

func uidFromBearer(authHeader, claim string) string {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(parts[1], claims); err != nil {
		return ""
	}
	if v, ok := claims[claim].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// UID 读取当前请求的用户 id，未认证返回空串
func UID(c *gin.Context) string {
	return c.GetString(ContextUIDKey)
}
