// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, upload ceilings, and cross-cutting keys
that are shared between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Uploads: Size ceilings and the accepted image MIME types.
  - Security: JWT issuers and header names.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "yomira-toon"
	AppVersion = "0.2.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	// Uploads carry many megabytes per request so this is generous.
	DefaultReadTimeout = 2 * time.Minute

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 2 * time.Minute

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for an ordinary request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// UploadRequestTimeout is the deadline for multipart upload requests.
	UploadRequestTimeout = 90 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Uploads

const (
	// MaxImageBytes is the per-file ceiling for chapter page uploads (10 MiB).
	MaxImageBytes int64 = 10 << 20

	// MaxImagesPerUpload caps the number of files in a single upload request.
	MaxImagesPerUpload = 200

	// MaxUploadRequestBytes caps the whole multipart body.
	MaxUploadRequestBytes int64 = 512 << 20

	// MultipartMemoryBytes is how much of a multipart body is buffered in memory
	// before spilling to temporary files.
	MultipartMemoryBytes int64 = 32 << 20

	// UploadFieldName is the multipart field carrying page images.
	UploadFieldName = "images"
)

// AllowedImageTypes is the upload allow-list of image MIME types.
var AllowedImageTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
}

// # Authentication

// AuthIssuer is the 'iss' claim of administrator tokens.
const AuthIssuer = "yomira.app"

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)

// # Response Keys

// FieldImages keys the page list in an upload response.
const FieldImages = "images"

// # Redis Prefixes (Cache Taxonomy)

const (
	// RedisPrefixChapterView keys the per-viewer de-duplication markers.
	RedisPrefixChapterView = "chapter:view:"
)
