package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"dairyflow/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// tokenBucketScript keeps one bucket per key pair in redis.
// ARGV: rate, capacity, now (seconds), requested. Returns {allowed, remaining, reset_after}.
var tokenBucketScript = redis.NewScript(`
local tokens_key = KEYS[1]
local ts_key = KEYS[2]
local rate = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local requested = tonumber(ARGV[4])

local ttl = math.ceil(capacity / rate * 2)

local tokens = tonumber(redis.call("get", tokens_key))
if tokens == nil then tokens = capacity end
local last = tonumber(redis.call("get", ts_key))
if last == nil then last = now end

tokens = math.min(capacity, tokens + math.max(0, now - last) * rate)
if tokens < requested then
    return { 0, tokens, (requested - tokens) / rate }
end

tokens = tokens - requested
redis.call("set", tokens_key, tokens, "EX", ttl)
redis.call("set", ts_key, now, "EX", ttl)
return { 1, tokens, 0 }
`)

const idleLimiterTTL = 10 * time.Minute

type localLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles writes per caller. With a redis client the bucket is
// shared across instances; without one, or while redis is unreachable, each
// instance falls back to its own x/time/rate buckets.
type RateLimiter struct {
	rdb   redis.Scripter
	limit int

	mu        sync.Mutex
	local     map[string]*localLimiter
	lastSweep time.Time
}

func NewRateLimiter(rdb redis.Scripter, requestsPerSecond int) *RateLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 5
	}
	return &RateLimiter{
		rdb:       rdb,
		limit:     requestsPerSecond,
		local:     make(map[string]*localLimiter),
		lastSweep: time.Now(),
	}
}

// callerKey prefers the authenticated user over the client address.
func callerKey(c *gin.Context) string {
	if uid := c.GetString("user_id"); uid != "" {
		return "user:" + uid
	}
	return "ip:" + c.ClientIP()
}

func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := callerKey(c)
		c.Header("X-RateLimit-Limit", strconv.Itoa(l.limit))

		allowed, remaining, ok := l.allowRedis(c.Request.Context(), key)
		if !ok {
			allowed, remaining = l.allowLocal(key)
		}
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			abort(c, http.StatusTooManyRequests, "Too many requests")
			return
		}
		c.Next()
	}
}

// allowRedis reports ok=false when redis could not decide.
func (l *RateLimiter) allowRedis(ctx context.Context, key string) (allowed bool, remaining int, ok bool) {
	if l.rdb == nil {
		return false, 0, false
	}

	ctx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()

	prefix := "dairyflow:ratelimit:" + key
	now := float64(time.Now().UnixMicro()) / 1e6
	res, err := tokenBucketScript.Run(ctx, l.rdb,
		[]string{prefix + ":tokens", prefix + ":ts"},
		float64(l.limit), float64(l.limit), now, 1,
	).Slice()
	if err != nil || len(res) != 3 {
		logger.Warn("redis rate limit failed, switching to local fallback",
			zap.Error(err), zap.String("key", key))
		return false, 0, false
	}
	return toInt(res[0]) == 1, toInt(res[1]), true
}

func (l *RateLimiter) allowLocal(key string) (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.lastSweep) > idleLimiterTTL {
		for k, v := range l.local {
			if now.Sub(v.lastSeen) > idleLimiterTTL {
				delete(l.local, k)
			}
		}
		l.lastSweep = now
	}

	entry, ok := l.local[key]
	if !ok {
		entry = &localLimiter{limiter: rate.NewLimiter(rate.Limit(l.limit), l.limit)}
		l.local[key] = entry
	}
	entry.lastSeen = now

	allowed := entry.limiter.Allow()
	return allowed, int(entry.limiter.Tokens())
}

// toInt reads a Lua number: redis truncates floats to integers on return.
func toInt(v any) int {
	switch val := v.(type) {
	case int64:
		return int(val)
	case float64:
		return int(val)
	default:
		return 0
	}
}
