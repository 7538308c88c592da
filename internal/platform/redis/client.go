// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package redis opens the client that holds the chapter view de-duplication
markers. Every key written through it carries a TTL, so the instance can run
without persistence.
*/
package redis

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// clientName shows up in CLIENT LIST.
const clientName = "yomira-toon"

const (
	dialTimeout  = 3 * time.Second
	ioTimeout    = time.Second
	pingTimeout  = 2 * time.Second
	poolSize     = 10
	minIdleConns = 2
)

/*
NewClient parses redisURL, applies the pool settings and pings once.

Returns:
  - *redis.Client: A client that answered the initial ping
  - error: A URL or connectivity failure
*/
func NewClient(context stdctx.Context, redisURL string, logger *slog.Logger) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}

	options.ClientName = clientName
	options.PoolSize = poolSize
	options.MinIdleConns = minIdleConns
	options.DialTimeout = dialTimeout
	options.ReadTimeout = ioTimeout
	options.WriteTimeout = ioTimeout

	client := redis.NewClient(options)
	if err := Ping(context, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("redis_client_connected",
		slog.String("addr", options.Addr),
		slog.Int("db", options.DB),
	)

	return client, nil
}

// Ping checks the client answers within pingTimeout. It backs the readiness probe.
func Ping(context stdctx.Context, client *redis.Client) error {
	pingCtx, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis: ping failed: %w", err)
	}
	return nil
}
