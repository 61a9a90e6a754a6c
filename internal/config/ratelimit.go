package config

import "time"

// RateLimitConfig configures the token bucket in front of booking
// endpoints.  Capacity tokens refill by RefillTokens every RefillInterval.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	KeyStrategy    string
	Prefix         string
	Debug          bool
}

func loadRateLimit(e *env) RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:        e.bool("RATE_LIMIT_ENABLED", true),
		Capacity:       e.int("RATE_LIMIT_CAPACITY", 10),
		RefillTokens:   e.int("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: e.dur("RATE_LIMIT_REFILL_INTERVAL", 6*time.Second),
		TTL:            e.dur("RATE_LIMIT_TTL", 10*time.Minute),
		KeyStrategy:    e.str("RATE_LIMIT_KEY_STRATEGY", "ip_user_route"),
		Prefix:         e.str("RATE_LIMIT_PREFIX", "rl"),
		Debug:          e.bool("RATE_LIMIT_DEBUG", false),
	}
	if cfg.Capacity < 1 {
		cfg.Capacity = 1
	}
	if cfg.RefillTokens < 1 {
		cfg.RefillTokens = 1
	}
	if cfg.RefillInterval <= 0 {
		cfg.RefillInterval = time.Second
	}
	if minTTL := 5 * cfg.RefillInterval; cfg.TTL < minTTL {
		cfg.TTL = minTTL
	}
	return cfg
}
