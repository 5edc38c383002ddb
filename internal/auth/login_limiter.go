package auth

import (
	"context"
	"strings"
	"time"

	"studentrecords/internal/cache"
	apperrors "studentrecords/internal/errors"
)

const loginAttemptsKeyPrefix = "login_attempts:"

// LoginThrottle tracks failed logins per email.
type LoginThrottle interface {
	Check(ctx context.Context, email string) error
	RegisterFailure(ctx context.Context, email string)
	Reset(ctx context.Context, email string)
}

// LoginLimiter locks an email out after too many failed logins within a window.
// It fails open: with no cache or an unreachable one every login is allowed.
type LoginLimiter struct {
	cache       *cache.Client
	maxAttempts int64
	window      time.Duration
}

// Ensure LoginLimiter implements LoginThrottle
var _ LoginThrottle = (*LoginLimiter)(nil)

// NewLoginLimiter creates a limiter. maxAttempts <= 0 disables it.
func NewLoginLimiter(c *cache.Client, maxAttempts int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{cache: c, maxAttempts: int64(maxAttempts), window: window}
}

// Check fails with a throttling error once the email reached the attempt limit.
func (l *LoginLimiter) Check(ctx context.Context, email string) error {
	if l.maxAttempts <= 0 {
		return nil
	}
	if l.cache.GetInt(ctx, attemptsKey(email)) >= l.maxAttempts {
		return apperrors.TooManyRequests("Too many login attempts")
	}
	return nil
}

// RegisterFailure counts one failed login; the window starts at the first failure.
func (l *LoginLimiter) RegisterFailure(ctx context.Context, email string) {
	if l.maxAttempts <= 0 {
		return
	}
	l.cache.Incr(ctx, attemptsKey(email), l.window)
}

// Reset clears the failure count after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, email string) {
	_ = l.cache.Delete(ctx, attemptsKey(email))
}

func attemptsKey(email string) string {
	return loginAttemptsKeyPrefix + strings.ToLower(strings.TrimSpace(email))
}
