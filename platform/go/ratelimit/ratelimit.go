// Package ratelimit implements a fixed-window request limiter backed by Redis, so every
// replica of the web server shares the same per-client budget.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Decision is the result of one Allow call.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	// RetryAfter is the time left in the current window.
	RetryAfter time.Duration
}

// Config bounds requests per client per window.
type Config struct {
	Max    int
	Window time.Duration
	Prefix string
}

// Limiter counts requests per key in fixed windows.
type Limiter struct {
	client *redis.Client
	cfg    Config
	now    func() time.Time
}

// New builds a Limiter from a redis URL (redis://host:port/db).
func New(ctx context.Context, redisURL string, cfg Config) (*Limiter, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewWithClient(client, cfg)
}

// NewWithClient builds a Limiter from an existing client.
func NewWithClient(client *redis.Client, cfg Config) (*Limiter, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if cfg.Max <= 0 {
		return nil, errors.New("rate limit max must be positive")
	}
	if cfg.Window <= 0 {
		return nil, errors.New("rate limit window must be positive")
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "ratelimit:"
	}
	return &Limiter{client: client, cfg: cfg, now: time.Now}, nil
}

// Allow records one request for key and reports whether it fits the current window.
func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := l.now()
	window := now.Truncate(l.cfg.Window)
	redisKey := fmt.Sprintf("%s%s:%d", l.cfg.Prefix, key, window.Unix())

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.cfg.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("increment rate counter: %w", err)
	}

	count := int(incr.Val())
	remaining := l.cfg.Max - count
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:    count <= l.cfg.Max,
		Limit:      l.cfg.Max,
		Remaining:  remaining,
		RetryAfter: window.Add(l.cfg.Window).Sub(now),
	}, nil
}

// Ping checks connectivity; used by the readiness probe.
func (l *Limiter) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (l *Limiter) Close() error {
	return l.client.Close()
}
