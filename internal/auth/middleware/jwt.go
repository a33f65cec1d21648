package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/media-attached-filter/internal/auth"
	apperrors "github.com/lk2023060901/media-attached-filter/internal/pkg/errors"
	"github.com/lk2023060901/media-attached-filter/internal/pkg/logger"
	"github.com/lk2023060901/media-attached-filter/internal/pkg/response"
	"go.uber.org/zap"
)

// TokenCookie 浏览器访问管理页面时携带 token 的 cookie 名
const TokenCookie = "maf_token"

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// JWTAuth JWT 认证中间件
func JWTAuth(jwtManager *auth.JWTManager, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := tokenFromRequest(c)
		if err != nil {
			response.AbortWithCode(c, apperrors.ErrUnauthorized, err.Error())
			return
		}

		claims, err := jwtManager.VerifyAccessToken(token)
		if err != nil {
			log.Warn("invalid access token",
				zap.Error(err),
				zap.String("ip", c.ClientIP()))
			response.AbortWithCode(c, apperrors.ErrUnauthorized, "invalid or expired token")
			return
		}

		// 将用户信息注入到上下文
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, claims.Role)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID))

		c.Next()
	}
}

// tokenFromRequest 优先 Authorization header，其次 cookie（管理页面直接访问）
func tokenFromRequest(c *gin.Context) (string, error) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		return auth.ExtractTokenFromHeader(authHeader)
	}
	if token, err := c.Cookie(TokenCookie); err == nil && token != "" {
		return token, nil
	}
	return "", errors.New("missing authorization")
}

// RequireRole 角色验证中间件（需要先经过 JWTAuth）
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(ctxRole)
		roleStr, _ := role.(string)
		for _, r := range roles {
			if roleStr == r {
				c.Next()
				return
			}
		}

		response.AbortWithCode(c, apperrors.ErrForbidden, "insufficient permissions")
	}
}

// GetUserID 从上下文获取用户 ID
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(ctxUserID)
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok
}

// GetRole 从上下文获取用户角色
func GetRole(c *gin.Context) (string, bool) {
	role, exists := c.Get(ctxRole)
	if !exists {
		return "", false
	}
	r, ok := role.(string)
	return r, ok
}
