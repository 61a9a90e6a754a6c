package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/room-escape-reservation/internal/config"
)

// bucketScript refills the bucket stored at KEYS[1] for the elapsed whole
// intervals, takes one token if available and returns
// {allowed, remaining, retry_after_ms}.
var bucketScript = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill = tonumber(ARGV[3])
local interval_ms = tonumber(ARGV[4])
local ttl_s = tonumber(ARGV[5])

local tokens = tonumber(redis.call('HGET', key, 'tokens'))
local last = tonumber(redis.call('HGET', key, 'last_ms'))
if tokens == nil or last == nil then
  tokens = capacity
  last = now_ms
end

local steps = math.floor(math.max(0, now_ms - last) / interval_ms)
if steps > 0 then
  tokens = math.min(capacity, tokens + steps * refill)
  last = last + steps * interval_ms
end

local allowed = 0
local retry_ms = 0
if tokens > 0 then
  allowed = 1
  tokens = tokens - 1
else
  retry_ms = math.max(0, interval_ms - (now_ms - last))
end

redis.call('HSET', key, 'tokens', tokens, 'last_ms', last)
redis.call('EXPIRE', key, ttl_s)
return {allowed, tokens, retry_ms}
`)

type tokenBucket struct {
	cfg config.RateLimitConfig
	rdb *redis.Client
	log *zap.Logger
	now func() time.Time
}

// NewTokenBucket limits requests per key with a Redis token bucket.  It
// passes everything through when disabled or when Redis is unavailable;
// Redis errors at request time fail open too.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, log *zap.Logger) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passThrough
	}
	tb := &tokenBucket{cfg: cfg, rdb: rdb, log: log, now: time.Now}
	return tb.middleware
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

func (tb *tokenBucket) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := rateKey(tb.cfg, c)
		res, err := bucketScript.Run(c.Request().Context(), tb.rdb, []string{key},
			tb.now().UnixMilli(),
			tb.cfg.Capacity,
			tb.cfg.RefillTokens,
			tb.cfg.RefillInterval.Milliseconds(),
			int64(tb.cfg.TTL/time.Second),
		).Int64Slice()
		if err != nil || len(res) != 3 {
			tb.log.Warn("rate limit check skipped", zap.String("key", key), zap.Error(err))
			return next(c)
		}
		allowed, remaining, retryMs := res[0] == 1, res[1], res[2]

		h := c.Response().Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(tb.cfg.Capacity))
		h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		if !allowed {
			secs := int(math.Ceil(float64(retryMs) / 1000))
			h.Set("Retry-After", strconv.Itoa(secs))
			if tb.cfg.Debug {
				tb.log.Info("rate limited", zap.String("key", key), zap.Int64("retry_ms", retryMs))
			}
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"error":       "rate limit exceeded",
				"retry_after": secs,
			})
		}
		return next(c)
	}
}

// rateKey joins the prefix with the request parts named by the key
// strategy.  The default combines ip, member and route.
func rateKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	member := rateIdentity(c)
	route := c.Request().Method + " " + c.Path()

	parts := []string{cfg.Prefix}
	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip":
		parts = append(parts, "ip", ip)
	case "user":
		parts = append(parts, "user", member)
	case "route":
		parts = append(parts, "route", route)
	case "ip_user":
		parts = append(parts, "ip", ip, "user", member)
	case "user_route":
		parts = append(parts, "user", member, "route", route)
	default:
		parts = append(parts, "ip", ip, "user", member, "route", route)
	}
	return strings.Join(parts, ":")
}
