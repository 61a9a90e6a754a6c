package config

import (
	"strings"
	"time"
)

// CacheConfig configures the Redis response cache for public listings.
// KeyStrategy picks the request parts hashed into the key: route,
// method_route, method_route_query or the default route_query.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool
	TTL          time.Duration
	KeyStrategy  string
	Prefix       string
	MaxBodyBytes int
}

func loadCache(e *env) CacheConfig {
	cfg := CacheConfig{
		Enabled:      e.bool("CACHE_ENABLED", true),
		Methods:      parseMethods(e.str("CACHE_METHODS", "GET")),
		TTL:          e.dur("CACHE_TTL", 30*time.Second),
		KeyStrategy:  e.str("CACHE_KEY_STRATEGY", "route_query"),
		Prefix:       e.str("CACHE_PREFIX", "cache"),
		MaxBodyBytes: e.int("CACHE_MAX_BODY_BYTES", 1<<20),
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	return cfg
}

func parseMethods(s string) map[string]bool {
	m := map[string]bool{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.ToUpper(strings.TrimSpace(p)); p != "" {
			m[p] = true
		}
	}
	return m
}
