// Package redis builds the go-redis client used by the Redis provider registry.
package redis

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"idbridge/internal/platform/config"
	"idbridge/pkg/platform/sentinel"
)

const clientName = "idbridge"

type Client struct {
	*redis.Client
	prefix string
}

// New dials cfg.URL and pings once. A blank URL yields a nil client so
// callers can fall back to another registry backend.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	opts.ClientName = clientName
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	rc := redis.NewClient(opts)
	c := &Client{Client: rc, prefix: strings.TrimSuffix(cfg.KeyPrefix, ":")}
	if err := c.Health(ctx); err != nil {
		_ = rc.Close()
		return nil, err
	}
	return c, nil
}

// Key namespaces name under the configured prefix.
func (c *Client) Key(name string) string {
	if c.prefix == "" {
		return name
	}
	return c.prefix + ":" + name
}

func (c *Client) Health(ctx context.Context) error {
	if err := c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: redis ping: %v", sentinel.ErrUnavailable, err)
	}
	return nil
}
