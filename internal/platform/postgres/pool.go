// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package postgres opens the PostgreSQL pool shared by the series, chapter
// and admin repositories.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/yomira-toon/internal/platform/constants"
)

// applicationName tags every session in pg_stat_activity.
const applicationName = "yomira-toon"

// Pool sizing. Uploads hold a connection for the whole replace transaction,
// so the ceiling is kept above the upload concurrency.
const (
	maxConns          = 20
	minConns          = 2
	maxConnLifetime   = 45 * time.Minute
	maxConnIdleTime   = 5 * time.Minute
	healthCheckPeriod = 30 * time.Second
	connectTimeout    = 5 * time.Second
	pingTimeout       = 2 * time.Second
)

/*
NewPool parses dsn, opens the pool and pings it once.

Description: Every new session gets a statement_timeout equal to the upload
request timeout, the longest budget any handler is given.

Returns:
  - *pgxpool.Pool: A pool that answered the initial ping
  - error: A DSN, connect or ping failure
*/
func NewPool(ctx context.Context, dsn string, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: invalid DSN: %w", err)
	}

	poolConfig.MaxConns = maxConns
	poolConfig.MinConns = minConns
	poolConfig.MaxConnLifetime = maxConnLifetime
	poolConfig.MaxConnIdleTime = maxConnIdleTime
	poolConfig.HealthCheckPeriod = healthCheckPeriod
	poolConfig.ConnConfig.ConnectTimeout = connectTimeout
	poolConfig.ConnConfig.RuntimeParams["application_name"] = applicationName

	statementTimeout := fmt.Sprintf("SET statement_timeout = '%dms'", constants.UploadRequestTimeout.Milliseconds())
	poolConfig.AfterConnect = func(ctx context.Context, connection *pgx.Conn) error {
		_, err := connection.Exec(ctx, statementTimeout)
		return err
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to create pool: %w", err)
	}

	if err := Ping(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("postgres_pool_connected",
		slog.String("application_name", applicationName),
		slog.Int("max_conns", int(pool.Stat().MaxConns())),
	)

	return pool, nil
}

// Ping checks the pool answers within pingTimeout. It backs the readiness probe.
func Ping(ctx context.Context, pool *pgxpool.Pool) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		return fmt.Errorf("postgres: ping failed: %w", err)
	}
	return nil
}
