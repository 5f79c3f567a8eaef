package config

// This file defines the Redis client constructor.  Redis backs the read-through
// user cache used by /auth/me.  When REDIS_URL is unset or the server cannot be
// reached at startup, nil is returned and callers degrade to reading the
// primary store directly.

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient parses url (redis:// or rediss://) and pings the server with
// a short timeout.  An empty url yields a nil client and no error.
func NewRedisClient(url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return client, nil
}
