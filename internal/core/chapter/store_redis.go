// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/yomira-toon/internal/platform/constants"
)

// # Redis View Guard

// redisViewGuard implements [ViewGuard] with expiring SETNX markers.
type redisViewGuard struct {
	client *redis.Client
	window time.Duration
}

// NewRedisViewGuard returns a [ViewGuard] that counts one view per viewer per window.
func NewRedisViewGuard(client *redis.Client, window time.Duration) ViewGuard {
	return &redisViewGuard{client: client, window: window}
}

// FirstView implements [ViewGuard].
func (guard *redisViewGuard) FirstView(ctx context.Context, chapterID, viewer string) (bool, error) {
	key := constants.RedisPrefixChapterView + chapterID + ":" + viewer

	created, err := guard.client.SetNX(ctx, key, 1, guard.window).Result()
	if err != nil {
		return false, fmt.Errorf("redis: failed to record chapter view: %w", err)
	}

	return created, nil
}
