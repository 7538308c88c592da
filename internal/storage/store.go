// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package storage persists chapter page images and hands back opaque references.

A reference is the public URL of the stored bytes, shaped
`{prefix}/chapters/{chapterID}/{generatedName}`. Consumers must treat it as
opaque: only the [ImageStore] that produced it can delete it.

Backends:

  - [LocalStore]: a directory on the API host, served under UPLOAD_PUBLIC_PREFIX.
  - [S3Store]: an S3-compatible bucket (Cloudflare R2, MinIO, AWS S3).

Both backends implement every operation; neither is a stub of the other.
*/
package storage

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
)

// # Contracts

// ImageStore persists page bytes for chapters.
type ImageStore interface {
	// Store writes body into the chapter's namespace under a freshly generated
	// name derived from fileName, creating the namespace if needed.
	//
	// # Returns
	//   - The reference (public URL) of the stored object.
	Store(ctx context.Context, chapterID, fileName string, body io.Reader, size int64, contentType string) (string, error)

	// Delete removes the object behind reference. Missing objects are not an error.
	Delete(ctx context.Context, reference string) error

	// DeleteNamespace removes every object of a chapter. Missing namespaces are not an error.
	DeleteNamespace(ctx context.Context, chapterID string) error

	// List returns the references of every object currently stored for a chapter.
	List(ctx context.Context, chapterID string) ([]string, error)

	// Backend names the concrete implementation ("local", "s3").
	Backend() string
}

// # Errors

var (
	// ErrInvalidReference is returned for references this store did not produce.
	ErrInvalidReference = errors.New("storage: reference does not belong to this store")

	// ErrInvalidNamespace is returned for chapter identifiers that are unsafe as path segments.
	ErrInvalidNamespace = errors.New("storage: invalid chapter namespace")
)

// # Layout

// chaptersDir is the top-level folder (or key prefix) for chapter namespaces.
const chaptersDir = "chapters"

// namespacePattern restricts chapter IDs to safe single path segments.
var namespacePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// checkNamespace rejects chapter IDs that could escape the store's root.
func checkNamespace(chapterID string) error {
	if !namespacePattern.MatchString(chapterID) {
		return ErrInvalidNamespace
	}
	return nil
}

// PublicPrefix normalises a configured URL prefix: "" for the site root,
// otherwise "/segment[/segment...]" with no trailing slash.
func PublicPrefix(prefix string) string {
	trimmed := strings.Trim(prefix, "/")
	if trimmed == "" {
		return ""
	}
	return "/" + trimmed
}

// namespaceKey returns the relative key prefix of a chapter, e.g. "chapters/abc".
func namespaceKey(chapterID string) string {
	return chaptersDir + "/" + chapterID
}
