// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"bufio"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewS3Store_RequiresSettings(t *testing.T) {
	_, err := NewS3Store(S3Options{Bucket: "pages", PublicURL: "https://cdn.example.com"})
	assert.Error(t, err)

	_, err = NewS3Store(S3Options{Endpoint: "r2.example.com", Bucket: "pages"})
	assert.Error(t, err)
}

func TestS3Store_ReferenceMapping(t *testing.T) {
	store, err := NewS3Store(S3Options{
		Endpoint:  "https://r2.example.com/",
		Bucket:    "pages",
		UseSSL:    true,
		PublicURL: "https://cdn.example.com/",
	})
	require.NoError(t, err)
	assert.Equal(t, "s3", store.Backend())

	reference := store.referenceFor("chapters/abc/1700000000000-a1b2c3.png")
	assert.Equal(t, "https://cdn.example.com/chapters/abc/1700000000000-a1b2c3.png", reference)

	key, err := store.keyFor(reference)
	require.NoError(t, err)
	assert.Equal(t, "chapters/abc/1700000000000-a1b2c3.png", key)

	for _, foreign := range []string{
		"/uploads/chapters/abc/a.png",
		"https://cdn.example.com/covers/abc/a.png",
		"https://cdn.example.com/chapters/../a.png",
		"https://cdn.example.com/chapters/abc/",
	} {
		_, err := store.keyFor(foreign)
		assert.ErrorIs(t, err, ErrInvalidReference, foreign)
	}
}

// # Fake S3 Endpoint

// fakeBucket answers the path-style object calls the store makes: PUT and
// DELETE object, ListObjectsV2 and multi-object delete.
type fakeBucket struct {
	name string

	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeBucket(t *testing.T, name string) (*fakeBucket, *httptest.Server) {
	t.Helper()
	bucket := &fakeBucket{name: name, objects: map[string][]byte{}}
	server := httptest.NewServer(bucket)
	t.Cleanup(server.Close)
	return bucket, server
}

func (bucket *fakeBucket) keys() []string {
	bucket.mu.Lock()
	defer bucket.mu.Unlock()
	return slices.Sorted(maps.Keys(bucket.objects))
}

func (bucket *fakeBucket) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	rest, found := strings.CutPrefix(request.URL.Path, "/"+bucket.name)
	if !found {
		http.Error(writer, "NoSuchBucket", http.StatusNotFound)
		return
	}
	key := strings.TrimPrefix(rest, "/")
	query := request.URL.Query()

	switch {
	case key == "" && query.Has("location"):
		writeXML(writer, `<LocationConstraint xmlns="http://s3.amazonaws.com/doc/2006-03-01/">us-east-1</LocationConstraint>`)
	case key == "" && request.Method == http.MethodGet && query.Get("list-type") == "2":
		bucket.list(writer, query.Get("prefix"))
	case key == "" && request.Method == http.MethodPost && query.Has("delete"):
		bucket.removeMany(writer, request)
	case key != "" && request.Method == http.MethodPut:
		body, err := readObjectBody(request)
		if err != nil {
			http.Error(writer, err.Error(), http.StatusBadRequest)
			return
		}
		bucket.mu.Lock()
		bucket.objects[key] = body
		bucket.mu.Unlock()
		writer.Header().Set("ETag", `"fake-etag"`)
		writer.WriteHeader(http.StatusOK)
	case key != "" && request.Method == http.MethodDelete:
		bucket.mu.Lock()
		delete(bucket.objects, key)
		bucket.mu.Unlock()
		writer.WriteHeader(http.StatusNoContent)
	default:
		http.Error(writer, "NotImplemented", http.StatusNotImplemented)
	}
}

func (bucket *fakeBucket) list(writer http.ResponseWriter, prefix string) {
	var contents strings.Builder
	count := 0
	for _, key := range bucket.keys() {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		count++
		fmt.Fprintf(&contents,
			`<Contents><Key>%s</Key><LastModified>2026-01-02T03:04:05.000Z</LastModified><ETag>"fake-etag"</ETag><Size>1</Size><StorageClass>STANDARD</StorageClass></Contents>`,
			key)
	}

	writeXML(writer, fmt.Sprintf(
		`<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/"><Name>%s</Name><Prefix>%s</Prefix><KeyCount>%d</KeyCount><MaxKeys>1000</MaxKeys><IsTruncated>false</IsTruncated>%s</ListBucketResult>`,
		bucket.name, prefix, count, contents.String()))
}

func (bucket *fakeBucket) removeMany(writer http.ResponseWriter, request *http.Request) {
	var payload struct {
		Objects []struct {
			Key string `xml:"Key"`
		} `xml:"Object"`
	}
	if err := xml.NewDecoder(request.Body).Decode(&payload); err != nil {
		http.Error(writer, err.Error(), http.StatusBadRequest)
		return
	}

	var deleted strings.Builder
	bucket.mu.Lock()
	for _, object := range payload.Objects {
		delete(bucket.objects, object.Key)
		fmt.Fprintf(&deleted, `<Deleted><Key>%s</Key></Deleted>`, object.Key)
	}
	bucket.mu.Unlock()

	writeXML(writer, `<DeleteResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">`+deleted.String()+`</DeleteResult>`)
}

func writeXML(writer http.ResponseWriter, body string) {
	writer.Header().Set("Content-Type", "application/xml")
	writer.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(writer, body)
}

// readObjectBody strips aws-chunked framing, which the client uses for
// uploads over plain HTTP.
func readObjectBody(request *http.Request) ([]byte, error) {
	chunked := strings.HasPrefix(request.Header.Get("X-Amz-Content-Sha256"), "STREAMING-") ||
		strings.Contains(request.Header.Get("Content-Encoding"), "aws-chunked")
	if !chunked {
		return io.ReadAll(request.Body)
	}

	reader := bufio.NewReader(request.Body)
	var body []byte
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		sizeField, _, _ := strings.Cut(strings.TrimRight(line, "\r\n"), ";")
		size, err := strconv.ParseInt(sizeField, 16, 64)
		if err != nil {
			return nil, err
		}
		if size == 0 {
			return body, nil
		}

		chunk := make([]byte, size)
		if _, err := io.ReadFull(reader, chunk); err != nil {
			return nil, err
		}
		body = append(body, chunk...)

		if _, err := reader.Discard(2); err != nil {
			return nil, err
		}
	}
}

func newFakeS3Store(t *testing.T) (*S3Store, *fakeBucket) {
	t.Helper()
	bucket, server := newFakeBucket(t, "pages")

	store, err := NewS3Store(S3Options{
		Endpoint:  server.URL,
		Region:    "us-east-1",
		Bucket:    "pages",
		AccessKey: "access",
		SecretKey: "secret",
		PublicURL: "https://cdn.example.com",
	})
	require.NoError(t, err)
	return store, bucket
}

const (
	s3ChapterID    = "0190a6f2-7c1e-7b3a-9f00-1234567890ab"
	s3OtherChapter = "0190a6f2-7c1e-7b3a-9f00-ba0987654321"
)

func TestS3Store_StoreAndList(t *testing.T) {
	store, bucket := newFakeS3Store(t)
	ctx := context.Background()

	empty, err := store.List(ctx, s3ChapterID)
	require.NoError(t, err)
	assert.Empty(t, empty)

	payload := []byte("\x89PNG fake page")
	reference, err := store.Store(ctx, s3ChapterID, "page.png", bytes.NewReader(payload), int64(len(payload)), "image/png")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(reference, "https://cdn.example.com/chapters/"+s3ChapterID+"/"))
	assert.True(t, strings.HasSuffix(reference, ".png"))

	key, err := store.keyFor(reference)
	require.NoError(t, err)
	require.Equal(t, []string{key}, bucket.keys())

	bucket.mu.Lock()
	assert.Equal(t, payload, bucket.objects[key])
	bucket.mu.Unlock()

	listed, err := store.List(ctx, s3ChapterID)
	require.NoError(t, err)
	assert.Equal(t, []string{reference}, listed)

	_, err = store.Store(ctx, "../escape", "page.png", bytes.NewReader(payload), int64(len(payload)), "image/png")
	assert.ErrorIs(t, err, ErrInvalidNamespace)
}

func TestS3Store_DeleteIsIdempotent(t *testing.T) {
	store, bucket := newFakeS3Store(t)
	ctx := context.Background()

	reference, err := store.Store(ctx, s3ChapterID, "a.jpg", strings.NewReader("a"), 1, "image/jpeg")
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, reference))
	assert.Empty(t, bucket.keys())

	// Already gone
	require.NoError(t, store.Delete(ctx, reference))

	err = store.Delete(ctx, "/uploads/chapters/"+s3ChapterID+"/a.jpg")
	assert.ErrorIs(t, err, ErrInvalidReference)
}

func TestS3Store_DeleteNamespace(t *testing.T) {
	store, bucket := newFakeS3Store(t)
	ctx := context.Background()

	for _, name := range []string{"a.jpg", "b.jpg"} {
		_, err := store.Store(ctx, s3ChapterID, name, strings.NewReader("x"), 1, "image/jpeg")
		require.NoError(t, err)
	}
	kept, err := store.Store(ctx, s3OtherChapter, "c.jpg", strings.NewReader("y"), 1, "image/jpeg")
	require.NoError(t, err)

	require.NoError(t, store.DeleteNamespace(ctx, s3ChapterID))

	remaining, err := store.List(ctx, s3ChapterID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
	assert.Len(t, bucket.keys(), 1)

	others, err := store.List(ctx, s3OtherChapter)
	require.NoError(t, err)
	assert.Equal(t, []string{kept}, others)

	// Empty namespace
	require.NoError(t, store.DeleteNamespace(ctx, s3ChapterID))
	assert.ErrorIs(t, store.DeleteNamespace(ctx, ""), ErrInvalidNamespace)
}
