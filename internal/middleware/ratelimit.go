package middleware

import (
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/job-application-tracker/internal/config"
)

// counterScript atomically increments the per-client counter and starts the
// window on first hit.  Returns the current count and the remaining TTL in
// seconds.
var counterScript = redis.NewScript(`
    local count = redis.call('INCR', KEYS[1])
    if count == 1 then
        redis.call('PEXPIRE', KEYS[1], ARGV[1])
    end
    local ttl = redis.call('PTTL', KEYS[1])
    if ttl < 0 then ttl = 0 end
    return { count, ttl }
`)

// NewRateLimiter returns a fixed-window request limiter backed by Redis.
// Each client IP gets cfg.Limit requests per cfg.Window; exceeding the
// budget yields 429 with a Retry-After header.  When the limiter is
// disabled, Redis is unavailable or a Redis call fails mid-flight, requests
// pass through unthrottled.
func NewRateLimiter(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc {
            return func(c echo.Context) error { return next(c) }
        }
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            ip := c.RealIP()
            if ip == "" {
                ip = "unknown"
            }
            key := cfg.Prefix + ":ip:" + ip

            ctx := c.Request().Context()
            vals, err := counterScript.Run(ctx, rdb, []string{key}, cfg.Window.Milliseconds()).Int64Slice()
            if err != nil || len(vals) != 2 {
                return next(c)
            }
            count, ttlMs := vals[0], vals[1]

            remaining := int64(cfg.Limit) - count
            if remaining < 0 {
                remaining = 0
            }
            c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
            c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

            if count > int64(cfg.Limit) {
                retry := (ttlMs + 999) / 1000
                c.Response().Header().Set("Retry-After", strconv.FormatInt(retry, 10))
                return c.JSON(http.StatusTooManyRequests, echo.Map{
                    "message":     "Too many requests, please try again later",
                    "retry_after": retry,
                })
            }
            return next(c)
        }
    }
}
