/*
 * @module service/distributed_lock/redis_lock
 * @description 刷新锁，保证同一周期的刷新串行执行；配置Redis时跨实例生效，否则为进程内锁
 * @architecture 工具层 - 提供分布式锁能力
 * @stateFlow 获取锁(等待) -> 执行刷新 -> 释放锁/自动过期
 * @rules
 *   - Redis实现使用 SET NX，每次加锁生成独立令牌，只有持有者能释放和续期
 *   - 获取锁时等待直到成功或上下文结束
 * @dependencies github.com/go-redis/redis/v8, github.com/google/uuid
 * @refs service/leaderboard/service.go, service/init.go
 */

package distributed_lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ErrLockBusy 等待锁超时
var ErrLockBusy = errors.New("锁被占用")

// ErrLockLost 锁已过期或被其他持有者获取
var ErrLockLost = errors.New("锁不存在或已被其他实例持有")

// DistributedLock 分布式锁接口
type DistributedLock interface {
	// TryLock 尝试获取锁，成功时返回持有令牌
	TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	// Unlock 释放锁
	Unlock(ctx context.Context, key, token string) error
	// Refresh 刷新锁的过期时间
	Refresh(ctx context.Context, key, token string, ttl time.Duration) error
	// IsLocked 检查锁是否存在
	IsLocked(ctx context.Context, key string) (bool, error)
}

const unlockScript = `
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`

const refreshScript = `
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("pexpire", KEYS[1], ARGV[2])
	else
		return 0
	end
`

// RedisLock Redis分布式锁实现
type RedisLock struct {
	client *redis.Client
	prefix string
}

// NewRedisLock 创建Redis分布式锁
func NewRedisLock(client *redis.Client, prefix string) *RedisLock {
	if prefix == "" {
		prefix = "ra_leaderboard:lock"
	}
	return &RedisLock{client: client, prefix: prefix}
}

func (r *RedisLock) lockKey(key string) string {
	return fmt.Sprintf("%s:%s", r.prefix, key)
}

// TryLock 尝试获取锁
func (r *RedisLock) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.New().String()
	ok, err := r.client.SetNX(ctx, r.lockKey(key), token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("获取锁失败: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	slog.Debug("分布式锁: 成功获取锁", "key", key, "ttl", ttl)
	return token, true, nil
}

// Unlock 释放锁
func (r *RedisLock) Unlock(ctx context.Context, key, token string) error {
	result, err := r.client.Eval(ctx, unlockScript, []string{r.lockKey(key)}, token).Int64()
	if err != nil {
		return fmt.Errorf("释放锁失败: %w", err)
	}
	if result != 1 {
		slog.Warn("分布式锁: 锁不存在或已被其他实例持有", "key", key)
		return ErrLockLost
	}
	slog.Debug("分布式锁: 成功释放锁", "key", key)
	return nil
}

// Refresh 刷新锁的过期时间
func (r *RedisLock) Refresh(ctx context.Context, key, token string, ttl time.Duration) error {
	result, err := r.client.Eval(ctx, refreshScript, []string{r.lockKey(key)}, token, ttl.Milliseconds()).Int64()
	if err != nil {
		return fmt.Errorf("刷新锁失败: %w", err)
	}
	if result != 1 {
		return ErrLockLost
	}
	return nil
}

// IsLocked 检查锁是否存在
func (r *RedisLock) IsLocked(ctx context.Context, key string) (bool, error) {
	exists, err := r.client.Exists(ctx, r.lockKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("检查锁状态失败: %w", err)
	}
	return exists > 0, nil
}

// LocalLock 进程内锁，未配置Redis时使用
type LocalLock struct {
	mu    sync.Mutex
	held  map[string]localEntry
	clock func() time.Time
}

type localEntry struct {
	token   string
	expires time.Time
}

// NewLocalLock 创建进程内锁
func NewLocalLock() *LocalLock {
	return &LocalLock{held: make(map[string]localEntry), clock: time.Now}
}

// TryLock 尝试获取锁，过期的锁视为已释放
func (l *LocalLock) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if e, ok := l.held[key]; ok && now.Before(e.expires) {
		return "", false, nil
	}
	token := uuid.New().String()
	l.held[key] = localEntry{token: token, expires: now.Add(ttl)}
	return token, true, nil
}

// Unlock 释放锁
func (l *LocalLock) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.held[key]; !ok || e.token != token {
		return ErrLockLost
	}
	delete(l.held, key)
	return nil
}

// Refresh 刷新锁的过期时间
func (l *LocalLock) Refresh(ctx context.Context, key, token string, ttl time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.held[key]
	if !ok || e.token != token {
		return ErrLockLost
	}
	e.expires = l.clock().Add(ttl)
	l.held[key] = e
	return nil
}

// IsLocked 检查锁是否存在
func (l *LocalLock) IsLocked(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.held[key]
	return ok && l.clock().Before(e.expires), nil
}

// LockExecutor 带锁执行器
type LockExecutor struct {
	lock          DistributedLock
	ttl           time.Duration
	retryInterval time.Duration
	waitTimeout   time.Duration
}

// DefaultWaitTimeout 等待锁的默认上限
const DefaultWaitTimeout = 5 * time.Second

// NewLockExecutor 创建带锁执行器
func NewLockExecutor(lock DistributedLock, ttl, retryInterval time.Duration) *LockExecutor {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if retryInterval <= 0 {
		retryInterval = 200 * time.Millisecond
	}
	return &LockExecutor{lock: lock, ttl: ttl, retryInterval: retryInterval, waitTimeout: DefaultWaitTimeout}
}

// WithWaitTimeout 设置等待锁的上限，超时返回 ErrLockBusy；d<=0 表示只受调用方上下文限制
func (e *LockExecutor) WithWaitTimeout(d time.Duration) *LockExecutor {
	e.waitTimeout = d
	return e
}

// ExecuteWithLock 等待获取锁后执行函数，执行期间自动续期
func (e *LockExecutor) ExecuteWithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	token, err := e.acquire(ctx, key)
	if err != nil {
		return err
	}

	refreshCtx, cancelRefresh := context.WithCancel(ctx)
	defer cancelRefresh()

	go func() {
		ticker := time.NewTicker(e.ttl / 2)
		defer ticker.Stop()
		for {
			select {
			case <-refreshCtx.Done():
				return
			case <-ticker.C:
				if err := e.lock.Refresh(refreshCtx, key, token, e.ttl); err != nil {
					slog.Error("分布式锁: 续期失败", "key", key, "error", err)
				}
			}
		}
	}()

	defer func() {
		// 使用独立上下文释放，调用方取消时仍需清理
		unlockCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := e.lock.Unlock(unlockCtx, key, token); err != nil {
			slog.Error("分布式锁: 释放锁失败", "key", key, "error", err)
		}
	}()

	return fn(ctx)
}

// acquire 轮询获取锁，最多等待 waitTimeout
func (e *LockExecutor) acquire(ctx context.Context, key string) (string, error) {
	if e.waitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.waitTimeout)
		defer cancel()
	}
	for {
		token, ok, err := e.lock.TryLock(ctx, key, e.ttl)
		if err != nil {
			return "", err
		}
		if ok {
			return token, nil
		}

		slog.Debug("分布式锁: 锁已被持有，等待", "key", key)
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %s: %w", ErrLockBusy, key, ctx.Err())
		case <-time.After(e.retryInterval):
		}
	}
}
