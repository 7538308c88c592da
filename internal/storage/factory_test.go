// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage_test

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-toon/internal/platform/config"
	"github.com/taibuivan/yomira-toon/internal/storage"
)

func TestNew_SelectsBackend(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		backend string
		want    string
	}{
		{"local", "local"},
		{"", "local"},
		{"cloudinary", "local"},
		{"vercel", "local"},
		{"s3", "s3"},
	}

	for _, tt := range tests {
		t.Run("backend_"+tt.backend, func(t *testing.T) {
			cfg := &config.Config{
				StorageBackend:     tt.backend,
				UploadDir:          filepath.Join(t.TempDir(), "uploads"),
				UploadPublicPrefix: "/uploads",
				S3Endpoint:         "minio.local:9000",
				S3Bucket:           "pages",
				S3PublicURL:        "http://minio.local:9000/pages",
			}

			store, err := storage.New(cfg, logger)
			require.NoError(t, err)
			assert.Equal(t, tt.want, store.Backend())
		})
	}
}

func TestNew_S3Misconfigured(t *testing.T) {
	cfg := &config.Config{StorageBackend: config.StorageS3}

	_, err := storage.New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}
