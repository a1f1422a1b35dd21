package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginAttemptRepository counts failed logins per email inside a rolling window.
type LoginAttemptRepository interface {
	Failures(ctx context.Context, email string) (int, error)
	RecordFailure(ctx context.Context, email string, window time.Duration) (int, error)
	Reset(ctx context.Context, email string) error
}

type loginAttemptRepository struct {
	client *redis.Client
}

// NewLoginAttemptRepository returns a Redis-backed implementation.
func NewLoginAttemptRepository(client *redis.Client) LoginAttemptRepository {
	return &loginAttemptRepository{client: client}
}

func loginAttemptKey(email string) string {
	return "login:failures:" + strings.ToLower(strings.TrimSpace(email))
}

func (r *loginAttemptRepository) Failures(ctx context.Context, email string) (int, error) {
	n, err := r.client.Get(ctx, loginAttemptKey(email)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// RecordFailure increments the counter; the window starts at the first failure.
// EXPIRE ... NX needs Redis 7, so the expiry is set in a second round trip.
func (r *loginAttemptRepository) RecordFailure(ctx context.Context, email string, window time.Duration) (int, error) {
	key := loginAttemptKey(email)
	pipe := r.client.Pipeline()
	incr := pipe.Incr(ctx, key)
	ttl := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	if needsExpiry(incr.Val(), ttl.Val()) {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, err
		}
	}
	return int(incr.Val()), nil
}

// needsExpiry reports whether the counter has no window yet: either it was
// just created or an earlier EXPIRE never landed.
func needsExpiry(count int64, ttl time.Duration) bool {
	return count == 1 || ttl < 0
}

func (r *loginAttemptRepository) Reset(ctx context.Context, email string) error {
	return r.client.Del(ctx, loginAttemptKey(email)).Err()
}
