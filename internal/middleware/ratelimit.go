package middleware

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/yockii/notion_blog/internal/constant"
	"github.com/yockii/notion_blog/internal/service"
	"github.com/yockii/notion_blog/pkg/logger"
)

// RateLimiter 按客户端IP的固定窗口限流
type RateLimiter struct {
	maxRequests int
	duration    time.Duration
	mu          sync.Mutex
	tokens      map[string]*tokenBucket
}

type tokenBucket struct {
	tokens    int
	lastReset time.Time
}

// NewRateLimiter 创建限流器
func NewRateLimiter(maxRequests int, duration time.Duration) *RateLimiter {
	return &RateLimiter{
		maxRequests: maxRequests,
		duration:    duration,
		tokens:      make(map[string]*tokenBucket),
	}
}

// Handler 限流中间件，响应头携带 X-RateLimit-Limit / X-RateLimit-Remaining，超限时附带 Retry-After
func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		clientID := c.IP()
		remaining, resetIn, ok := rl.take(clientID)
		c.Set("X-RateLimit-Limit", strconv.Itoa(rl.maxRequests))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !ok {
			logger.Warn("rate limit exceeded",
				logger.F("clientId", clientID),
				logger.F("path", c.Path()),
			)
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(resetIn.Seconds()))))
			return c.Status(fiber.StatusTooManyRequests).JSON(service.Error(constant.ErrTooManyRequests))
		}
		return c.Next()
	}
}

// allow 检查是否允许请求
func (rl *RateLimiter) allow(clientID string) bool {
	_, _, ok := rl.take(clientID)
	return ok
}

// take 消耗一个令牌，返回剩余令牌数、距窗口重置的时长以及是否放行
func (rl *RateLimiter) take(clientID string) (int, time.Duration, bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	bucket, exists := rl.tokens[clientID]
	if !exists || now.Sub(bucket.lastReset) >= rl.duration {
		// 新客户端或窗口已过期
		bucket = &tokenBucket{tokens: rl.maxRequests, lastReset: now}
		rl.tokens[clientID] = bucket
	}

	resetIn := rl.duration - now.Sub(bucket.lastReset)
	if bucket.tokens <= 0 {
		return 0, resetIn, false
	}
	bucket.tokens--
	return bucket.tokens, resetIn, true
}

// cleanup 清理过期的令牌桶
func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for clientID, bucket := range rl.tokens {
		if now.Sub(bucket.lastReset) >= rl.duration*2 {
			delete(rl.tokens, clientID)
		}
	}
}

// StartCleanup 启动清理任务，ctx取消时退出
func (rl *RateLimiter) StartCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.cleanup()
			}
		}
	}()
}
