// Package ratelimit throttles mutating requests with a token bucket kept in
// Redis, so every API replica draws from the same budget per client.
package ratelimit

import (
	"context"
	"fmt"
	"log"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config sizes the bucket.
type Config struct {
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	Prefix         string
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// KEYS[1] bucket; ARGV now_ms, capacity, refill_tokens, interval_ms, ttl_seconds.
var tokenBucket = redis.NewScript(`
    local key = KEYS[1]
    local now_ms = tonumber(ARGV[1])
    local capacity = tonumber(ARGV[2])
    local refill_tokens = tonumber(ARGV[3])
    local interval_ms = tonumber(ARGV[4])
    local ttl_seconds = tonumber(ARGV[5])

    local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
    local tokens = tonumber(state[1])
    local last_refill = tonumber(state[2])

    if tokens == nil or last_refill == nil then
        tokens = capacity
        last_refill = now_ms
    end

    local elapsed = math.max(0, now_ms - last_refill)
    local intervals = math.floor(elapsed / interval_ms)
    if intervals > 0 then
        tokens = math.min(capacity, tokens + (intervals * refill_tokens))
        last_refill = last_refill + (intervals * interval_ms)
    end

    local allowed = 0
    local retry_after_ms = 0
    if tokens > 0 then
        allowed = 1
        tokens = tokens - 1
    else
        retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
    end

    redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
    redis.call('EXPIRE', key, ttl_seconds)

    return { allowed, tokens, retry_after_ms }
`)

// RedisLimiter implements Limiter with a Lua token bucket.
type RedisLimiter struct {
	rdb *redis.Client
	cfg Config
	ttl time.Duration
}

// NewRedisLimiter normalizes cfg and binds it to rdb.
func NewRedisLimiter(rdb *redis.Client, cfg Config) *RedisLimiter {
	if cfg.Capacity < 1 {
		cfg.Capacity = 1
	}
	if cfg.RefillTokens < 1 {
		cfg.RefillTokens = 1
	}
	if cfg.RefillInterval <= 0 {
		cfg.RefillInterval = time.Second
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "rl"
	}
	// Long enough for an empty bucket to refill completely.
	ttl := time.Duration(cfg.Capacity/cfg.RefillTokens+1) * cfg.RefillInterval
	if ttl < time.Minute {
		ttl = time.Minute
	}
	return &RedisLimiter{rdb: rdb, cfg: cfg, ttl: ttl}
}

// Allow takes one token from the bucket named by key.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	args := []any{
		time.Now().UnixMilli(),
		l.cfg.Capacity,
		l.cfg.RefillTokens,
		l.cfg.RefillInterval.Milliseconds(),
		int64(l.ttl / time.Second),
	}
	vals, err := tokenBucket.Run(ctx, l.rdb, []string{l.cfg.Prefix + ":" + key}, args...).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit: run script: %w", err)
	}
	if len(vals) != 3 {
		return Decision{}, fmt.Errorf("ratelimit: unexpected script result %v", vals)
	}
	return Decision{
		Allowed:    vals[0] == 1,
		Remaining:  vals[1],
		RetryAfter: time.Duration(vals[2]) * time.Millisecond,
	}, nil
}

// Capacity is the bucket size, reported in X-RateLimit-Limit.
func (l *RedisLimiter) Capacity() int {
	return l.cfg.Capacity
}

// Middleware rejects requests once the caller's bucket is empty. Limiter
// failures let the request through.
func Middleware(limiter Limiter, limit int, logger *log.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := KeyFor(r)
			decision, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.Printf("ratelimit: %s: %v", key, err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(decision.Remaining, 10))
			if !decision.Allowed {
				secs := int(math.Ceil(decision.RetryAfter.Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"code":"RATE_LIMITED","message":"rate limit exceeded"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// KeyFor buckets requests by client address and method.
func KeyFor(r *http.Request) string {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	if ip == "" {
		ip = "unknown"
	}
	return strings.Join([]string{"ip", ip, "method", r.Method}, ":")
}
