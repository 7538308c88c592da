// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"log/slog"

	"github.com/taibuivan/yomira-toon/internal/platform/config"
)

// New selects the [ImageStore] named by STORAGE_BACKEND.
//
// Unrecognized backend names resolve to the local filesystem store.
func New(cfg *config.Config, logger *slog.Logger) (ImageStore, error) {
	if !cfg.UsesLocalStorage() {
		store, err := NewS3Store(S3Options{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			UseSSL:    cfg.S3UseSSL,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("image_store_ready", slog.String("backend", store.Backend()), slog.String("bucket", cfg.S3Bucket))
		return store, nil
	}

	if cfg.StorageBackend != config.StorageLocal {
		logger.Debug("image_store_backend_unrecognized", slog.String("backend", cfg.StorageBackend))
	}

	store, err := NewLocalStore(cfg.UploadDir, cfg.UploadPublicPrefix)
	if err != nil {
		return nil, err
	}

	logger.Info("image_store_ready", slog.String("backend", store.Backend()), slog.String("root", store.Root()))
	return store, nil
}
