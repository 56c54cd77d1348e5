/*
 * @module service/session/session
 * @description 管理员会话：共享密码登录，签发带有效期的令牌
 * @architecture 分层架构 - 业务服务层
 * @stateFlow Login(密码) -> 签发令牌 -> Validate(令牌) -> Logout / 过期清理
 * @rules
 *   - 密码只以bcrypt哈希形式保存在内存中
 *   - 过期会话视为不存在并被删除
 * @dependencies golang.org/x/crypto/bcrypt, github.com/google/uuid
 * @refs store.go, session_cleanup.go, api/middleware/admin_auth.go
 */

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// 会话错误
var (
	ErrInvalidCredentials = errors.New("密码错误")
	ErrSessionNotFound    = errors.New("会话不存在或已过期")
)

// AdminUser 管理员用户名，只有一个共享账号
const AdminUser = "admin"

// Session 管理员会话
type Session struct {
	Token     string    `json:"token"`
	User      string    `json:"user"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired 是否已过期
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Authenticator 共享密码校验
type Authenticator struct {
	hash []byte
}

// NewAuthenticator 创建校验器，优先使用已配置的哈希
func NewAuthenticator(password, passwordHash string) (*Authenticator, error) {
	if passwordHash != "" {
		if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
			return nil, fmt.Errorf("管理员密码哈希无效: %w", err)
		}
		return &Authenticator{hash: []byte(passwordHash)}, nil
	}
	if password == "" {
		return nil, fmt.Errorf("未配置管理员密码")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("生成密码哈希失败: %w", err)
	}
	return &Authenticator{hash: hash}, nil
}

// Verify 校验密码
func (a *Authenticator) Verify(password string) bool {
	return bcrypt.CompareHashAndPassword(a.hash, []byte(password)) == nil
}

// Manager 会话管理
type Manager struct {
	store Store
	auth  *Authenticator
	ttl   time.Duration
	clock func() time.Time
}

// NewManager 创建会话管理
func NewManager(store Store, auth *Authenticator, ttl time.Duration) *Manager {
	return &Manager{store: store, auth: auth, ttl: ttl, clock: time.Now}
}

// Login 校验密码并签发会话
func (m *Manager) Login(ctx context.Context, password string) (*Session, error) {
	if !m.auth.Verify(password) {
		slog.Warn("管理员登录失败")
		return nil, ErrInvalidCredentials
	}

	now := m.clock()
	s := &Session{
		Token:     uuid.New().String(),
		User:      AdminUser,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Save(ctx, s, m.ttl); err != nil {
		return nil, fmt.Errorf("保存会话失败: %w", err)
	}
	slog.Info("管理员登录成功", "expires_at", s.ExpiresAt)
	return s, nil
}

// Validate 校验令牌
func (m *Manager) Validate(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}
	s, err := m.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if s.Expired(m.clock()) {
		if err := m.store.Delete(ctx, token); err != nil {
			slog.Warn("删除过期会话失败", "error", err)
		}
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Logout 注销会话
func (m *Manager) Logout(ctx context.Context, token string) error {
	return m.store.Delete(ctx, token)
}

// Sweep 清理过期会话
func (m *Manager) Sweep(ctx context.Context) (int, error) {
	return m.store.Sweep(ctx, m.clock())
}

// Active 有效会话数
func (m *Manager) Active(ctx context.Context) (int, error) {
	return m.store.Count(ctx, m.clock())
}
