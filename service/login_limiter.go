// file: service/login_limiter.go

package service

import (
	"context"
	"time"

	"backups-api/logger"

	"github.com/redis/go-redis/v9"
)

// ILimiterClient is the subset of the Redis client the login limiter needs.
// This abstraction decouples the limiter from a concrete Redis connection,
// enabling easier testing and future flexibility.
type ILimiterClient interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// LoginLimiter caps login attempts per username within a sliding window.
// Redis failures fail open: a broken limiter must not lock everyone out.
type LoginLimiter struct {
	client      ILimiterClient
	maxAttempts int64
	window      time.Duration
}

func NewLoginLimiter(client ILimiterClient, maxAttempts int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{
		client:      client,
		maxAttempts: int64(maxAttempts),
		window:      window,
	}
}

func limiterKey(username string) string {
	return "login_attempts:" + username
}

// Allow records one attempt and reports whether the caller is still within
// the window cap.
func (l *LoginLimiter) Allow(ctx context.Context, username string) bool {
	key := limiterKey(username)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		logger.Log.WithError(err).Warn("Login limiter unavailable, allowing attempt")
		return true
	}

	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			logger.Log.WithError(err).Warn("Failed to set login limiter window")
		}
	}

	if count > l.maxAttempts {
		logger.Log.WithField("username", username).Warn("Login attempts exceeded for user")
		return false
	}
	return true
}

// Reset clears the attempt counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, username string) {
	if err := l.client.Del(ctx, limiterKey(username)).Err(); err != nil {
		logger.Log.WithError(err).Warn("Failed to reset login limiter counter")
	}
}
