package config

import (
    "os"
    "strconv"
    "time"
)

// RateLimitConfig controls the fixed-window request limiter.  Every request
// counts against a per-client window; once Limit is reached further requests
// are rejected until the window expires.
type RateLimitConfig struct {
    Enabled bool
    Limit   int           // requests allowed per window
    Window  time.Duration // window length
    Prefix  string        // Redis key namespace
}

// LoadRateLimitConfig reads rate limiter settings from the environment.  The
// defaults allow 100 requests per 15 minutes per client.
func LoadRateLimitConfig() RateLimitConfig {
    cfg := RateLimitConfig{
        Enabled: envBool("RATE_LIMIT_ENABLED", true),
        Limit:   envInt("RATE_LIMIT_MAX", 100),
        Window:  envDur("RATE_LIMIT_WINDOW", 15*time.Minute),
        Prefix:  envStr("RATE_LIMIT_PREFIX", "rl"),
    }
    if cfg.Limit < 1 {
        cfg.Limit = 1
    }
    if cfg.Window <= 0 {
        cfg.Window = time.Minute
    }
    return cfg
}

func envStr(k, d string) string {
    if v := os.Getenv(k); v != "" {
        return v
    }
    return d
}

func envBool(k string, d bool) bool {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    switch v {
    case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
        return true
    case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
        return false
    }
    return d
}

func envInt(k string, d int) int {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    if n, err := strconv.Atoi(v); err == nil {
        return n
    }
    return d
}

func envDur(k string, d time.Duration) time.Duration {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    if dur, err := time.ParseDuration(v); err == nil {
        return dur
    }
    return d
}
