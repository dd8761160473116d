package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTimeout = 5 * time.Second

// ErrUnavailable is returned by Connect when the session server does not
// answer.
var ErrUnavailable = errors.New("redis session backend unavailable")

// Config captures the settings of the Redis server holding kiosk sessions.
type Config struct {
	Addr     string
	Password string
	DB       int
	Timeout  time.Duration
}

// NewClient builds a client for the session server. go-redis dials
// lazily, so an unreachable server only shows up on the first command.
func NewClient(cfg Config) *redis.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})
}

// Connect builds a client and pings it. The client is returned even when
// the ping fails; it keeps redialling on later commands, so callers may
// carry on and let readiness report the outage.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := NewClient(cfg)

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return client, fmt.Errorf("%w at %s: %w", ErrUnavailable, cfg.Addr, err)
	}
	return client, nil
}
