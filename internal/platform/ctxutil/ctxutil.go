// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxutil stores per-request values in [context.Context]: the request
// ID, the request-scoped logger and the verified administrator claims.
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/taibuivan/yomira-toon/internal/platform/sec"
)

// contextKey is unexported so no other package can collide with these keys.
type contextKey int

const (
	keyRequestID contextKey = iota
	keyLogger
	keyClaims
)

// # Request Tracing

// WithRequestID returns a new context with the provided request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyRequestID, id)
}

// GetRequestID retrieves the request ID, or "" outside a request.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(keyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger returns a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, keyLogger, logger)
}

// GetLogger retrieves the request logger, falling back to [slog.Default].
func GetLogger(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(keyLogger).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

// # Identity

// WithClaims returns a new context carrying verified token claims.
func WithClaims(ctx context.Context, claims *sec.AuthClaims) context.Context {
	return context.WithValue(ctx, keyClaims, claims)
}

// GetClaims returns the verified claims, or nil for an anonymous request.
func GetClaims(ctx context.Context) *sec.AuthClaims {
	claims, _ := ctx.Value(keyClaims).(*sec.AuthClaims)
	return claims
}
