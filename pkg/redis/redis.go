// Package redis builds the Redis client from options.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	redisopts "github.com/kart-io/calshare/pkg/options/redis"
)

// New creates a Redis client and verifies the connection with a ping.
func New(ctx context.Context, opts *redisopts.Options) (*redis.Client, error) {
	if opts == nil {
		opts = redisopts.NewOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr(),
		Password:     opts.Password,
		DB:           opts.Database,
		PoolSize:     opts.PoolSize,
		MinIdleConns: opts.MinIdleConns,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr(), err)
	}

	return client, nil
}
