/*
 * @module service/rate_limiter/rate_limiter
 * @description 管理员登录限流，按客户端地址限制尝试次数
 * @architecture 工具层 - 提供限流能力
 * @stateFlow 构造限流Key -> 计数/令牌桶 -> 判断是否超限
 * @rules
 *   - 配置Redis时使用固定窗口计数（INCR + EXPIRE），多实例共享
 *   - 未配置Redis时使用进程内令牌桶
 * @dependencies github.com/go-redis/redis/v8, golang.org/x/time/rate
 * @refs api/middleware/admin_auth.go
 */

package rate_limiter

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/time/rate"
)

// Result 限流检查结果
type Result struct {
	Allowed    bool          `json:"allowed"`
	Limit      int           `json:"limit"`
	Remaining  int           `json:"remaining"`
	RetryAfter time.Duration `json:"retry_after"`
}

// Limiter 限流器
type Limiter interface {
	Allow(ctx context.Context, key string) (*Result, error)
}

// Rule 限流规则：每秒补充 Rate 次，最多累积 Burst 次
type Rule struct {
	Rate  float64
	Burst int
}

// Window 固定窗口长度，窗口内允许 Burst 次
func (r Rule) Window() time.Duration {
	if r.Rate <= 0 {
		return time.Minute
	}
	seconds := math.Ceil(float64(r.Burst) / r.Rate)
	if seconds < 1 {
		seconds = 1
	}
	return time.Duration(seconds) * time.Second
}

// RedisRateLimiter Redis限流器
type RedisRateLimiter struct {
	client *redis.Client
	prefix string
	rule   Rule
}

// NewRedisRateLimiter 创建Redis限流器
func NewRedisRateLimiter(client *redis.Client, prefix string, rule Rule) *RedisRateLimiter {
	return &RedisRateLimiter{client: client, prefix: prefix, rule: rule}
}

// 原子计数，超限时不再增加
var fixedWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local max_requests = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])

	local current = tonumber(redis.call('GET', key) or '0')
	if current >= max_requests then
		local ttl = redis.call('TTL', key)
		if ttl < 0 then
			ttl = window
		end
		return {0, current, ttl}
	end

	local new_count = redis.call('INCR', key)
	if new_count == 1 then
		redis.call('EXPIRE', key, window)
	end
	local ttl = redis.call('TTL', key)
	if ttl < 0 then
		ttl = window
	end
	return {1, new_count, ttl}
`)

// Allow 检查并消耗一次配额
func (r *RedisRateLimiter) Allow(ctx context.Context, key string) (*Result, error) {
	window := int(r.rule.Window().Seconds())
	redisKey := r.buildKey(key, window)

	res, err := fixedWindowScript.Run(ctx, r.client, []string{redisKey}, r.rule.Burst, window).Result()
	if err != nil {
		return nil, fmt.Errorf("限流检查失败: %w", err)
	}

	values, ok := res.([]interface{})
	if !ok || len(values) != 3 {
		return nil, fmt.Errorf("限流脚本返回值异常: %v", res)
	}
	allowed := values[0].(int64) == 1
	current := int(values[1].(int64))
	ttl := time.Duration(values[2].(int64)) * time.Second

	result := &Result{
		Allowed:   allowed,
		Limit:     r.rule.Burst,
		Remaining: max(r.rule.Burst-current, 0),
	}
	if !allowed {
		result.RetryAfter = ttl
	}
	return result, nil
}

// buildKey 构造限流Key，包含当前窗口序号
func (r *RedisRateLimiter) buildKey(key string, window int) string {
	currentWindow := time.Now().Unix() / int64(window)
	return fmt.Sprintf("%s:%s:%d", r.prefix, key, currentWindow)
}

// maxLocalKeys 进程内限流器保留的客户端数上限
const maxLocalKeys = 4096

// LocalRateLimiter 进程内令牌桶限流器
type LocalRateLimiter struct {
	mu       sync.Mutex
	rule     Rule
	limiters map[string]*rate.Limiter
}

// NewLocalRateLimiter 创建进程内限流器
func NewLocalRateLimiter(rule Rule) *LocalRateLimiter {
	return &LocalRateLimiter{
		rule:     rule,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Allow 检查并消耗一个令牌
func (l *LocalRateLimiter) Allow(ctx context.Context, key string) (*Result, error) {
	now := time.Now()

	l.mu.Lock()
	limiter, ok := l.limiters[key]
	if !ok {
		if len(l.limiters) >= maxLocalKeys {
			l.prune(now)
		}
		limiter = rate.NewLimiter(rate.Limit(l.rule.Rate), l.rule.Burst)
		l.limiters[key] = limiter
	}
	l.mu.Unlock()

	reservation := limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return &Result{Allowed: false, Limit: l.rule.Burst}, nil
	}
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return &Result{Allowed: false, Limit: l.rule.Burst, RetryAfter: delay}, nil
	}

	return &Result{
		Allowed:   true,
		Limit:     l.rule.Burst,
		Remaining: int(limiter.TokensAt(now)),
	}, nil
}

// prune 移除令牌已回满的客户端，调用方持有锁
func (l *LocalRateLimiter) prune(now time.Time) {
	for key, limiter := range l.limiters {
		if limiter.TokensAt(now) >= float64(l.rule.Burst) {
			delete(l.limiters, key)
		}
	}
}

// Size 当前跟踪的客户端数
func (l *LocalRateLimiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// Reset 清空全部计数
func (l *LocalRateLimiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.limiters = make(map[string]*rate.Limiter)
}
