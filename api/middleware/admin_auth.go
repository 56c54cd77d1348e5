/*
 * @module api/middleware/admin_auth
 * @description 管理员会话鉴权与登录限流中间件
 * @architecture 中间件模式 - HTTP请求拦截和验证
 * @stateFlow Token提取 -> 会话验证 -> 上下文注入 -> 下一个处理器
 * @rules 管理接口必须携带有效的Bearer Token；登录接口按客户端地址限流
 * @dependencies github.com/go-chi/render, service/session, service/rate_limiter
 * @refs api/routes.go, api/controllers/admin_controller.go
 */

package middleware

import (
	"context"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/render"

	"ra-leaderboard-service/service/rate_limiter"
	"ra-leaderboard-service/service/session"
)

// ContextKey 上下文键类型
type ContextKey string

const (
	// TokenKey Token在上下文中的键
	TokenKey ContextKey = "token"
	// SessionKey 会话在上下文中的键
	SessionKey ContextKey = "session"
)

// SessionValidator 会话校验
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*session.Session, error)
}

// AdminAuthMiddleware 管理员认证中间件
type AdminAuthMiddleware struct {
	sessions SessionValidator
}

// NewAdminAuthMiddleware 创建管理员认证中间件
func NewAdminAuthMiddleware(sessions SessionValidator) *AdminAuthMiddleware {
	return &AdminAuthMiddleware{sessions: sessions}
}

// Middleware 认证中间件处理函数
func (m *AdminAuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := BearerToken(r)
		if !ok {
			respondError(w, r, http.StatusUnauthorized, "缺少有效的Bearer Token")
			return
		}

		sess, err := m.sessions.Validate(r.Context(), token)
		if err != nil {
			respondError(w, r, http.StatusUnauthorized, "会话无效或已过期")
			return
		}

		ctx := context.WithValue(r.Context(), TokenKey, token)
		ctx = context.WithValue(ctx, SessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// BearerToken 从Authorization头中提取Token
func BearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	return token, token != ""
}

// LoginRateLimit 登录限流中间件
func LoginRateLimit(limiter rate_limiter.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "login:" + ClientIP(r)
			result, err := limiter.Allow(r.Context(), key)
			if err != nil {
				// 限流后端故障时放行
				slog.Warn("登录限流检查失败", "client", key, "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !result.Allowed {
				seconds := int(math.Ceil(result.RetryAfter.Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(max(seconds, 1)))
				respondError(w, r, http.StatusTooManyRequests, "登录尝试过于频繁，请稍后再试")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP 客户端地址，取自 RemoteAddr；代理头只经 middleware.RealIP 生效
func ClientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// GetSessionFromContext 从上下文中获取会话
func GetSessionFromContext(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(SessionKey).(*session.Session)
	return sess, ok
}

// GetTokenFromContext 从上下文中获取Token
func GetTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenKey).(string)
	return token, ok
}

// respondError 错误响应，格式与控制器统一响应一致
func respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]interface{}{
		"status": status,
		"msg":    message,
	})
}
