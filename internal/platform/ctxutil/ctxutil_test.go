// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ctxutil_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-toon/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-toon/internal/platform/sec"
)

func TestContext_RequestID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, ctxutil.GetRequestID(ctx))

	ctx = ctxutil.WithRequestID(ctx, "req-1")
	assert.Equal(t, "req-1", ctxutil.GetRequestID(ctx))
}

func TestContext_Logger(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, slog.Default(), ctxutil.GetLogger(ctx))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx = ctxutil.WithLogger(ctx, logger)
	assert.Equal(t, logger, ctxutil.GetLogger(ctx))

	// A nil logger never escapes
	assert.Equal(t, slog.Default(), ctxutil.GetLogger(ctxutil.WithLogger(ctx, nil)))
}

func TestContext_Claims(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, ctxutil.GetClaims(ctx))

	ctx = ctxutil.WithClaims(ctx, &sec.AuthClaims{UserID: "admin-1", Role: string(sec.RoleAdmin)})
	claims := ctxutil.GetClaims(ctx)
	require.NotNil(t, claims)
	assert.Equal(t, "admin-1", claims.UserID)
	assert.True(t, claims.IsAdmin())
}
