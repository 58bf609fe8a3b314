package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// Limiter is what the orchestration layer consumes
type Limiter interface {
	Allow(ctx context.Context, actorID string) (bool, error)
}

// TriggerLimiter caps manual workflow triggers per actor over a window,
// backed by Redis INCR with expiry.
type TriggerLimiter struct {
	client   *redis.Client
	attempts int
	window   time.Duration
	log      *logrus.Logger
}

// Config for the trigger limiter
type Config struct {
	Enabled  bool
	RedisURL string
	Attempts int
	Window   time.Duration
}

// New creates a redis-backed trigger limiter, or a noop limiter when
// rate limiting is disabled
func New(cfg Config, log *logrus.Logger) (Limiter, error) {
	if !cfg.Enabled {
		log.Info("trigger rate limiting disabled")
		return &NoopLimiter{}, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.WithFields(logrus.Fields{
		"attempts": cfg.Attempts,
		"window":   cfg.Window,
	}).Info("trigger rate limiter initialized")

	return &TriggerLimiter{
		client:   client,
		attempts: cfg.Attempts,
		window:   cfg.Window,
		log:      log,
	}, nil
}

// Allow increments the actor's trigger counter and reports whether the
// actor is still under the budget for the current window
func (l *TriggerLimiter) Allow(ctx context.Context, actorID string) (bool, error) {
	key := fmt.Sprintf("trigger_limit:%s", actorID)

	pipeline := l.client.Pipeline()
	incrCmd := pipeline.Incr(ctx, key)
	pipeline.Expire(ctx, key, l.window)
	if _, err := pipeline.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to increment trigger counter: %w", err)
	}

	count := incrCmd.Val()
	if count > int64(l.attempts) {
		l.log.WithFields(logrus.Fields{
			"actor_id": actorID,
			"count":    count,
			"limit":    l.attempts,
		}).Warn("trigger rate limit exceeded")
		return false, nil
	}
	return true, nil
}

// NoopLimiter allows everything
type NoopLimiter struct{}

// Allow always permits the trigger
func (l *NoopLimiter) Allow(ctx context.Context, actorID string) (bool, error) {
	return true, nil
}
