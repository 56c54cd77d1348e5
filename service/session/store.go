/*
 * @module service/session/store
 * @description 会话存储：进程内实现与Redis实现
 * @architecture 仓储模式
 * @stateFlow Save -> Get -> Delete / Sweep
 * @rules Redis实现依赖键过期，Sweep为空操作
 * @dependencies github.com/go-redis/redis/v8
 * @refs session.go
 */

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Store 会话存储
type Store interface {
	Save(ctx context.Context, s *Session, ttl time.Duration) error
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
	Sweep(ctx context.Context, now time.Time) (int, error)
	Count(ctx context.Context, now time.Time) (int, error)
}

// MemoryStore 进程内会话存储
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore 创建进程内会话存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

// Save 保存会话
func (m *MemoryStore) Save(ctx context.Context, s *Session, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *s
	m.sessions[s.Token] = &copied
	return nil
}

// Get 获取会话
func (m *MemoryStore) Get(ctx context.Context, token string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	copied := *s
	return &copied, nil
}

// Delete 删除会话
func (m *MemoryStore) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

// Sweep 删除过期会话
func (m *MemoryStore) Sweep(ctx context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for token, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, token)
			removed++
		}
	}
	return removed, nil
}

// Count 有效会话数
func (m *MemoryStore) Count(ctx context.Context, now time.Time) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, s := range m.sessions {
		if !s.Expired(now) {
			n++
		}
	}
	return n, nil
}

// RedisStore Redis会话存储，多实例共享
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore 创建Redis会话存储
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "ra_leaderboard:session"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) key(token string) string {
	return fmt.Sprintf("%s:%s", r.prefix, token)
}

// Save 保存会话并设置过期时间
func (r *RedisStore) Save(ctx context.Context, s *Session, ttl time.Duration) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(s.Token), raw, ttl).Err()
}

// Get 获取会话
func (r *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	raw, err := r.client.Get(ctx, r.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("读取会话失败: %w", err)
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("解析会话失败: %w", err)
	}
	return &s, nil
}

// Delete 删除会话
func (r *RedisStore) Delete(ctx context.Context, token string) error {
	return r.client.Del(ctx, r.key(token)).Err()
}

// Sweep 由Redis过期机制清理
func (r *RedisStore) Sweep(ctx context.Context, now time.Time) (int, error) {
	return 0, nil
}

// Count 统计会话键数量
func (r *RedisStore) Count(ctx context.Context, now time.Time) (int, error) {
	n := 0
	iter := r.client.Scan(ctx, 0, r.prefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		n++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("统计会话失败: %w", err)
	}
	return n, nil
}
