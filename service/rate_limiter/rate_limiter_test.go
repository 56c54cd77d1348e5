package rate_limiter

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRule_Window(t *testing.T) {
	assert.Equal(t, 10*time.Second, Rule{Rate: 0.5, Burst: 5}.Window())
	assert.Equal(t, time.Second, Rule{Rate: 100, Burst: 1}.Window())
	assert.Equal(t, time.Minute, Rule{Rate: 0, Burst: 5}.Window())
}

func TestLocalRateLimiter_BurstThenDeny(t *testing.T) {
	limiter := NewLocalRateLimiter(Rule{Rate: 0.01, Burst: 3})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := limiter.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "attempt %d", i+1)
	}

	res, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Greater(t, res.RetryAfter, time.Duration(0))

	// 其他客户端不受影响
	res, err = limiter.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	limiter.Reset()
	res, err = limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestLocalRateLimiter_PrunesIdleClients(t *testing.T) {
	limiter := NewLocalRateLimiter(Rule{Rate: 1000, Burst: 1})
	ctx := context.Background()

	for i := 0; i < maxLocalKeys+10; i++ {
		_, err := limiter.Allow(ctx, fmt.Sprintf("10.0.%d.%d", i/256, i%256))
		require.NoError(t, err)
		// 令牌在下一次请求前回满
		time.Sleep(time.Microsecond)
	}
	assert.LessOrEqual(t, limiter.Size(), maxLocalKeys)
}

func TestRedisRateLimiter_KeyFormat(t *testing.T) {
	limiter := NewRedisRateLimiter(nil, "raotm:ratelimit", Rule{Rate: 1, Burst: 1})
	key := limiter.buildKey("10.0.0.1", 60)
	assert.Regexp(t, `^raotm:ratelimit:10\.0\.0\.1:\d+$`, key)
}

// TestRedisRateLimiter 需要可用的Redis，未设置 REDIS_ADDR 时跳过
func TestRedisRateLimiter(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR 未设置，跳过Redis限流测试")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	limiter := NewRedisRateLimiter(client, fmt.Sprintf("test:ratelimit:%d", time.Now().UnixNano()), Rule{Rate: 0.05, Burst: 2})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := limiter.Allow(ctx, "client")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	}
	res, err := limiter.Allow(ctx, "client")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
}
