package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ra-leaderboard-service/service/rate_limiter"
	"ra-leaderboard-service/service/session"
)

type stubValidator struct {
	token string
}

func (s stubValidator) Validate(ctx context.Context, token string) (*session.Session, error) {
	if token != s.token {
		return nil, session.ErrSessionNotFound
	}
	return &session.Session{Token: token, User: session.AdminUser, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func protectedHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := GetSessionFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, session.AdminUser, sess.User)
		token, ok := GetTokenFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, "good", token)
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAdminAuthMiddleware(t *testing.T) {
	handler := NewAdminAuthMiddleware(stubValidator{token: "good"}).Middleware(protectedHandler(t))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"unknown token", "Bearer bad", http.StatusUnauthorized},
		{"valid token", "Bearer good", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/admin/refresh", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestLoginRateLimit(t *testing.T) {
	limiter := rate_limiter.NewLocalRateLimiter(rate_limiter.Rule{Rate: 0.01, Burst: 2})
	handler := LoginRateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/admin/login", nil)
		req.RemoteAddr = ip + ":5000"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, send("10.0.0.1").Code)

	w := send("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, send("10.0.0.2").Code)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.5:1234"
	assert.Equal(t, "192.168.1.5", ClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "192.168.1.5", ClientIP(req), "客户端自带的转发头不可信")
}

func TestLoginRateLimit_IgnoresForwardedHeader(t *testing.T) {
	limiter := rate_limiter.NewLocalRateLimiter(rate_limiter.Rule{Rate: 0.01, Burst: 1})
	handler := LoginRateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	allowed := 0
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodPost, "/admin/login", nil)
		req.RemoteAddr = "198.51.100.9:5000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code == http.StatusOK {
			allowed++
		}
	}
	assert.Equal(t, 1, allowed)
	assert.Equal(t, 1, limiter.Size())
}
