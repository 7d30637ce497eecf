package middleware

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/hostel-saas/pkg/logger"
	pkgredis "github.com/prohmpiriya/hostel-saas/pkg/redis"
	"github.com/prohmpiriya/hostel-saas/pkg/response"
	"go.uber.org/zap"
)

// RateLimitConfig limits each client to Limit requests per Window.
// Tokens refill continuously at Limit/Window; bursts up to Limit are allowed.
type RateLimitConfig struct {
	Limit  int
	Window time.Duration
	// RedisClient switches to a limiter shared across instances
	RedisClient *pkgredis.Client
	KeyPrefix   string
	// SkipPaths bypass limiting (health probes, metrics scrapes)
	SkipPaths       []string
	CleanupInterval time.Duration
}

// DefaultRateLimitConfig returns 100 requests per 15 minutes
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Limit:           100,
		Window:          15 * time.Minute,
		KeyPrefix:       "ratelimit:",
		CleanupInterval: time.Minute,
	}
}

func (c RateLimitConfig) ratePerSecond() float64 {
	return float64(c.Limit) / c.Window.Seconds()
}

// Limiter decides whether the client identified by key may proceed
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, remaining int, err error)
}

type bucket struct {
	mu         sync.Mutex
	tokens     float64
	lastUpdate time.Time
}

// LocalRateLimiter is an in-process token bucket per key
type LocalRateLimiter struct {
	config  RateLimitConfig
	now     func() time.Time
	buckets sync.Map
	stop    chan struct{}
	once    sync.Once
}

// NewLocalRateLimiter starts a limiter with a background sweeper for idle buckets
func NewLocalRateLimiter(config RateLimitConfig) *LocalRateLimiter {
	rl := &LocalRateLimiter{
		config: config,
		now:    time.Now,
		stop:   make(chan struct{}),
	}
	if config.CleanupInterval > 0 {
		go rl.sweep()
	}
	return rl
}

func (rl *LocalRateLimiter) Allow(_ context.Context, key string) (bool, int, error) {
	now := rl.now()
	v, _ := rl.buckets.LoadOrStore(key, &bucket{tokens: float64(rl.config.Limit), lastUpdate: now})
	b := v.(*bucket)

	b.mu.Lock()
	defer b.mu.Unlock()

	elapsed := now.Sub(b.lastUpdate).Seconds()
	b.tokens = math.Min(float64(rl.config.Limit), b.tokens+elapsed*rl.config.ratePerSecond())
	b.lastUpdate = now

	if b.tokens < 1 {
		return false, 0, nil
	}
	b.tokens--
	return true, int(b.tokens), nil
}

// A bucket idle for a whole window is full again and can be dropped.
func (rl *LocalRateLimiter) sweep() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := rl.now().Add(-rl.config.Window)
			rl.buckets.Range(func(key, value interface{}) bool {
				b := value.(*bucket)
				b.mu.Lock()
				if b.lastUpdate.Before(cutoff) {
					rl.buckets.Delete(key)
				}
				b.mu.Unlock()
				return true
			})
		case <-rl.stop:
			return
		}
	}
}

// Stop ends the sweeper goroutine
func (rl *LocalRateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

const tokenBucketScript = `
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local data = redis.call("HMGET", key, "tokens", "last_update")
local tokens = tonumber(data[1]) or burst
local last_update = tonumber(data[2]) or now

tokens = math.min(burst, tokens + math.max(0, now - last_update) * rate)

local allowed = 0
if tokens >= 1 then
    tokens = tokens - 1
    allowed = 1
end

redis.call("HSET", key, "tokens", tostring(tokens), "last_update", tostring(now))
redis.call("EXPIRE", key, ttl)
return {allowed, math.floor(tokens)}
`

// RedisRateLimiter runs the token bucket atomically in Redis
type RedisRateLimiter struct {
	config RateLimitConfig
	now    func() time.Time
}

// NewRedisRateLimiter creates a limiter backed by config.RedisClient
func NewRedisRateLimiter(config RateLimitConfig) *RedisRateLimiter {
	return &RedisRateLimiter{config: config, now: time.Now}
}

func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, int, error) {
	now := float64(rl.now().UnixNano()) / 1e9
	ttl := int(math.Ceil(rl.config.Window.Seconds()))

	values, err := rl.config.RedisClient.Eval(ctx, tokenBucketScript,
		[]string{rl.config.KeyPrefix + key},
		rl.config.ratePerSecond(),
		rl.config.Limit,
		now,
		ttl,
	).Slice()
	if err != nil {
		return false, 0, err
	}
	if len(values) != 2 {
		return false, 0, errors.New("unexpected rate limit script result")
	}

	allowed, _ := values[0].(int64)
	remaining, _ := values[1].(int64)
	return allowed == 1, int(remaining), nil
}

// RateLimiter builds the middleware, choosing Redis when a client is configured
func RateLimiter(config RateLimitConfig) gin.HandlerFunc {
	var limiter Limiter
	if config.RedisClient != nil {
		limiter = NewRedisRateLimiter(config)
	} else {
		limiter = NewLocalRateLimiter(config)
	}
	return RateLimiterWith(limiter, config)
}

// RateLimiterWith wraps an existing Limiter
func RateLimiterWith(limiter Limiter, config RateLimitConfig) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skip[p] = struct{}{}
	}
	retryAfter := int(math.Ceil(1 / config.ratePerSecond()))

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		allowed, remaining, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			// fail open
			logger.WarnCtx(c.Request.Context(), "rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				response.TooManyRequests("Too many requests from this IP, please try again later."))
			return
		}

		c.Next()
	}
}
