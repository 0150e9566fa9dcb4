package throttle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// Cooldown reports whether an action keyed by subject may run again.
type Cooldown interface {
	// Acquire returns false while subject is still cooling down.
	Acquire(ctx context.Context, subject string) (bool, error)
	// Release lifts the cooldown early, e.g. when the guarded action failed.
	Release(ctx context.Context, subject string) error
}

// NewClient connects to Redis from a redis:// URL.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// ======================================================
// REDIS
// ======================================================

type RedisCooldown struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisCooldown(rdb *redis.Client, prefix string, ttl time.Duration) *RedisCooldown {
	return &RedisCooldown{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (c *RedisCooldown) key(subject string) string {
	return c.prefix + ":" + strings.ToLower(subject)
}

func (c *RedisCooldown) Acquire(ctx context.Context, subject string) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, c.key(subject), 1, c.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("cooldown acquire: %w", err)
	}
	return ok, nil
}

func (c *RedisCooldown) Release(ctx context.Context, subject string) error {
	if err := c.rdb.Del(ctx, c.key(subject)).Err(); err != nil {
		return fmt.Errorf("cooldown release: %w", err)
	}
	return nil
}

// ======================================================
// NOOP
// ======================================================

// Unlimited never blocks. Used when Redis is not configured.
type Unlimited struct{}

func (Unlimited) Acquire(context.Context, string) (bool, error) { return true, nil }

func (Unlimited) Release(context.Context, string) error { return nil }
