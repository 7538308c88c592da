// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, Storage) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Storage Backends

const (
	// StorageLocal stores page images on the local filesystem.
	StorageLocal = "local"

	// StorageS3 stores page images in an S3-compatible bucket (R2, MinIO, AWS).
	StorageS3 = "s3"
)

// # Configuration Schema

// Config holds all runtime configuration for the API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Store (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Cryptographic keys for administrator token signing
	JWTPrivKeyPath string        `env:"JWT_PRIVATE_KEY_PATH,required"`
	JWTPubKeyPath  string        `env:"JWT_PUBLIC_KEY_PATH,required"`
	AdminTokenTTL  time.Duration `env:"ADMIN_TOKEN_TTL" envDefault:"24h"`

	// StorageBackend selects the Image Store. Unknown values fall back to local.
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"local"`

	// Local filesystem storage
	UploadDir          string `env:"UPLOAD_DIR"           envDefault:"./public/uploads"`
	UploadPublicPrefix string `env:"UPLOAD_PUBLIC_PREFIX" envDefault:"/uploads"`

	// Object Storage (Cloudflare R2 / S3-compatible)
	S3Bucket    string `env:"S3_BUCKET"`
	S3Region    string `env:"S3_REGION"   envDefault:"auto"`
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3UseSSL    bool   `env:"S3_USE_SSL"  envDefault:"true"`
	S3PublicURL string `env:"S3_PUBLIC_URL"`

	// ViewDedupWindow is how long a viewer's chapter view is remembered.
	ViewDedupWindow time.Duration `env:"VIEW_DEDUP_WINDOW" envDefault:"30m"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// LogLevel is DEBUG when DEBUG is set outside production, INFO otherwise.
func (c *Config) LogLevel() slog.Level {
	if c.Debug && !c.IsProduction() {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// UsesLocalStorage reports whether page images end up on the local filesystem.
// Every value other than [StorageS3] resolves to local storage.
func (c *Config) UsesLocalStorage() bool {
	return c.StorageBackend != StorageS3
}

// AllowsOrigin reports whether a browser origin may call the API.
//
// Development accepts every origin. Otherwise the first-party domain and the
// comma-separated EXTRA_ORIGINS list are accepted.
func (c *Config) AllowsOrigin(origin string) bool {
	if c.IsDevelopment() {
		return true
	}

	if strings.HasSuffix(origin, ".yomira.app") || origin == "https://yomira.app" {
		return true
	}

	for _, extra := range strings.Split(c.ExtraOrigins, ",") {
		if extra = strings.TrimSpace(extra); extra != "" && extra == origin {
			return true
		}
	}

	return false
}
