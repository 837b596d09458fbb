package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"

	"conduit-backend/internal/domain"
	"conduit-backend/internal/repository"
)

// ViewerKey 是 Gin 上下文中存放查看者身份的键。
const ViewerKey = "viewer"

// ErrMissingAuthHeader 表示缺少 Authorization 头
var ErrMissingAuthHeader = errors.New("missing Authorization header")

// Auth 返回一个 Gin 中间件，用于验证 JWT token 并解析查看者身份。
// 凭据无效或缺失时请求被拒绝。
// jwtSecret: 用于验证签名的密钥，必须提供。
func Auth(jwtSecret string, users repository.UserRepository) gin.HandlerFunc {
	// 在创建中间件时就进行检查，避免运行时 panic
	if jwtSecret == "" {
		panic("JWT secret cannot be empty for Auth middleware")
	}
	if users == nil {
		panic("UserRepository cannot be nil for Auth middleware")
	}

	return func(c *gin.Context) {
		viewer, err := resolveViewer(c.Request.Context(), c, jwtSecret, users)
		if err != nil {
			if errors.Is(err, ErrMissingAuthHeader) {
				logrus.Warn("Auth middleware: Missing Authorization header")
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			} else {
				logrus.WithError(err).Warn("Auth middleware: Invalid token")
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			}
			c.Abort() // 终止请求处理链
			return
		}
		c.Set(ViewerKey, viewer)
		logrus.WithField("username", viewer.Username()).Debug("Auth middleware: User authenticated via JWT")
		c.Next()
	}
}

// OptionalAuth 返回一个 Gin 中间件，在凭据有效时解析查看者身份，
// 凭据缺失或无效时放行为匿名请求 —— 两者在后续处理中完全等价。
func OptionalAuth(jwtSecret string, users repository.UserRepository) gin.HandlerFunc {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty for OptionalAuth middleware")
	}
	if users == nil {
		panic("UserRepository cannot be nil for OptionalAuth middleware")
	}

	return func(c *gin.Context) {
		viewer, err := resolveViewer(c.Request.Context(), c, jwtSecret, users)
		if err != nil {
			// 解析失败一律按匿名处理
			viewer = domain.Anonymous()
		}
		c.Set(ViewerKey, viewer)
		c.Next()
	}
}

// ViewerFrom 从 Gin 上下文取出查看者身份；中间件未运行时返回匿名。
func ViewerFrom(c *gin.Context) domain.Viewer {
	value, exists := c.Get(ViewerKey)
	if !exists {
		return domain.Anonymous()
	}
	viewer, ok := value.(domain.Viewer)
	if !ok {
		logrus.Error("Viewer in context has unexpected type")
		return domain.Anonymous()
	}
	return viewer
}

// resolveViewer 完整地执行一次凭据解析：提取 token、验证签名、
// 按 claims 中的用户 ID 加载用户。
func resolveViewer(ctx context.Context, c *gin.Context, jwtSecret string, users repository.UserRepository) (domain.Viewer, error) {
	// 1. 从请求头提取 Token
	tokenStr, err := extractToken(c)
	if err != nil {
		return domain.Anonymous(), err
	}

	// 2. 验证 Token
	claims, err := validateToken(tokenStr, jwtSecret)
	if err != nil {
		return domain.Anonymous(), err
	}

	// 3. 从 Claims 中提取用户 ID
	userIDClaim, ok := claims["user_id"]
	if !ok {
		return domain.Anonymous(), errors.New("'user_id' claim missing in token")
	}
	// JWT 数字默认为 float64，需要安全转换为 uint
	userIDFloat, ok := userIDClaim.(float64)
	if !ok || userIDFloat <= 0 || userIDFloat != float64(uint(userIDFloat)) {
		return domain.Anonymous(), fmt.Errorf("'user_id' claim is not a valid positive integer: %v", userIDClaim)
	}

	// 4. 加载用户，token 有效但用户已删除时视为无效凭据
	user, err := users.FindByID(ctx, uint(userIDFloat))
	if err != nil {
		return domain.Anonymous(), fmt.Errorf("resolve viewer: %w", err)
	}
	return domain.Identified(user), nil
}

// extractToken 从 Gin 上下文中提取 Bearer Token
func extractToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", ErrMissingAuthHeader
	}
	// Authorization header 格式为 "Token <token>" 或 "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !(strings.EqualFold(parts[0], "Token") || strings.EqualFold(parts[0], "Bearer")) {
		return "", jwt.ErrTokenMalformed
	}
	return parts[1], nil
}

// validateToken 解析并验证 JWT token 字符串
func validateToken(tokenStr string, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		// 验证签名方法是否为 HMAC (HS256)
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token or claims type")
}
