// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// # S3-Compatible Backend

// S3Options configures an [S3Store].
type S3Options struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool

	// PublicURL is the base URL readers fetch objects from (CDN or bucket domain).
	PublicURL string
}

// S3Store keeps page images in an S3-compatible bucket under `chapters/{chapterID}/`.
type S3Store struct {
	client    *minio.Client
	bucket    string
	publicURL string
	now       func() time.Time
}

// NewS3Store builds a client for the configured bucket. It does not contact the remote.
func NewS3Store(options S3Options) (*S3Store, error) {
	if options.Endpoint == "" || options.Bucket == "" {
		return nil, errors.New("storage: s3 endpoint and bucket are required")
	}
	if options.PublicURL == "" {
		return nil, errors.New("storage: s3 public url is required")
	}

	// minio expects a bare host, not a URL
	endpoint := strings.TrimPrefix(strings.TrimPrefix(options.Endpoint, "https://"), "http://")

	client, err := minio.New(strings.TrimSuffix(endpoint, "/"), &minio.Options{
		Creds:  credentials.NewStaticV4(options.AccessKey, options.SecretKey, ""),
		Secure: options.UseSSL,
		Region: options.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: failed to create s3 client: %w", err)
	}

	return &S3Store{
		client:    client,
		bucket:    options.Bucket,
		publicURL: strings.TrimSuffix(options.PublicURL, "/"),
		now:       time.Now,
	}, nil
}

// Backend implements [ImageStore].
func (store *S3Store) Backend() string { return "s3" }

// Store implements [ImageStore].
func (store *S3Store) Store(ctx context.Context, chapterID, fileName string, body io.Reader, size int64, contentType string) (string, error) {
	if err := checkNamespace(chapterID); err != nil {
		return "", err
	}

	name, err := GenerateFileName(fileName, contentType, store.now())
	if err != nil {
		return "", err
	}

	key := namespaceKey(chapterID) + "/" + name

	_, err = store.client.PutObject(ctx, store.bucket, key, body, size, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "public, max-age=31536000, immutable",
	})
	if err != nil {
		return "", fmt.Errorf("storage: failed to upload %s: %w", fileName, err)
	}

	return store.referenceFor(key), nil
}

// Delete implements [ImageStore]. S3 treats deleting a missing key as success.
func (store *S3Store) Delete(ctx context.Context, reference string) error {
	key, err := store.keyFor(reference)
	if err != nil {
		return err
	}

	if err := store.client.RemoveObject(ctx, store.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("storage: failed to delete %s: %w", reference, err)
	}

	return nil
}

// DeleteNamespace implements [ImageStore] by listing the prefix and batch-removing it.
func (store *S3Store) DeleteNamespace(ctx context.Context, chapterID string) error {
	if err := checkNamespace(chapterID); err != nil {
		return err
	}

	var listed []minio.ObjectInfo
	for object := range store.client.ListObjects(ctx, store.bucket, minio.ListObjectsOptions{
		Prefix:    namespaceKey(chapterID) + "/",
		Recursive: true,
	}) {
		if object.Err != nil {
			return fmt.Errorf("storage: failed to list namespace %s: %w", chapterID, object.Err)
		}
		listed = append(listed, object)
	}

	if len(listed) == 0 {
		return nil
	}

	keys := make(chan minio.ObjectInfo, len(listed))
	for _, object := range listed {
		keys <- object
	}
	close(keys)

	var removeErr error
	for failure := range store.client.RemoveObjects(ctx, store.bucket, keys, minio.RemoveObjectsOptions{}) {
		removeErr = errors.Join(removeErr, fmt.Errorf("%s: %w", failure.ObjectName, failure.Err))
	}

	if removeErr != nil {
		return fmt.Errorf("storage: failed to delete namespace %s: %w", chapterID, removeErr)
	}

	return nil
}

// List implements [ImageStore].
func (store *S3Store) List(ctx context.Context, chapterID string) ([]string, error) {
	if err := checkNamespace(chapterID); err != nil {
		return nil, err
	}

	references := []string{}
	for object := range store.client.ListObjects(ctx, store.bucket, minio.ListObjectsOptions{
		Prefix:    namespaceKey(chapterID) + "/",
		Recursive: true,
	}) {
		if object.Err != nil {
			return nil, fmt.Errorf("storage: failed to list namespace %s: %w", chapterID, object.Err)
		}
		references = append(references, store.referenceFor(object.Key))
	}

	return references, nil
}

func (store *S3Store) referenceFor(key string) string {
	return store.publicURL + "/" + key
}

// keyFor maps a public URL back to its object key.
func (store *S3Store) keyFor(reference string) (string, error) {
	key, found := strings.CutPrefix(reference, store.publicURL+"/")
	if !found {
		return "", ErrInvalidReference
	}

	segments := strings.Split(key, "/")
	if len(segments) != 3 || segments[0] != chaptersDir || checkNamespace(segments[1]) != nil || segments[2] == "" {
		return "", ErrInvalidReference
	}

	return key, nil
}
