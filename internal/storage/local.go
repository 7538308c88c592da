// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

const (
	dirPermissions  = 0o755
	filePermissions = 0o644
)

// # Local Filesystem Backend

// LocalStore keeps page images under a root directory on the API host.
//
// Files land in `{root}/chapters/{chapterID}/{name}` and are addressed as
// `{publicPrefix}/chapters/{chapterID}/{name}`.
type LocalStore struct {
	root         string
	publicPrefix string
	now          func() time.Time
}

// NewLocalStore creates the root directory if needed and returns a [LocalStore].
func NewLocalStore(root, publicPrefix string) (*LocalStore, error) {
	if root == "" {
		return nil, errors.New("storage: local root directory is required")
	}

	absoluteRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to resolve root %q: %w", root, err)
	}

	if err := os.MkdirAll(absoluteRoot, dirPermissions); err != nil {
		return nil, fmt.Errorf("storage: failed to create root %q: %w", absoluteRoot, err)
	}

	return &LocalStore{
		root:         absoluteRoot,
		publicPrefix: PublicPrefix(publicPrefix),
		now:          time.Now,
	}, nil
}

// Backend implements [ImageStore].
func (store *LocalStore) Backend() string { return "local" }

// Root returns the absolute directory the store writes into.
func (store *LocalStore) Root() string { return store.root }

// Store implements [ImageStore].
//
// Bytes are written to a temporary file inside the namespace and renamed into
// place, so readers never observe a partially written page.
func (store *LocalStore) Store(ctx context.Context, chapterID, fileName string, body io.Reader, size int64, contentType string) (string, error) {
	if err := checkNamespace(chapterID); err != nil {
		return "", err
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	directory := filepath.Join(store.root, chaptersDir, chapterID)
	if err := os.MkdirAll(directory, dirPermissions); err != nil {
		return "", fmt.Errorf("storage: failed to create namespace: %w", err)
	}

	name, err := GenerateFileName(fileName, contentType, store.now())
	if err != nil {
		return "", err
	}

	temporary, err := os.CreateTemp(directory, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("storage: failed to create temp file: %w", err)
	}
	defer func() { _ = os.Remove(temporary.Name()) }()

	written, copyErr := io.Copy(temporary, body)
	closeErr := temporary.Close()
	if copyErr != nil {
		return "", fmt.Errorf("storage: failed to write %s: %w", fileName, copyErr)
	}
	if closeErr != nil {
		return "", fmt.Errorf("storage: failed to flush %s: %w", fileName, closeErr)
	}
	if size >= 0 && written != size {
		return "", fmt.Errorf("storage: short write for %s: wrote %d of %d bytes", fileName, written, size)
	}

	if err := os.Chmod(temporary.Name(), filePermissions); err != nil {
		return "", fmt.Errorf("storage: failed to chmod %s: %w", fileName, err)
	}

	if err := os.Rename(temporary.Name(), filepath.Join(directory, name)); err != nil {
		return "", fmt.Errorf("storage: failed to commit %s: %w", fileName, err)
	}

	return store.referenceFor(chapterID, name), nil
}

// Delete implements [ImageStore].
func (store *LocalStore) Delete(ctx context.Context, reference string) error {
	filePath, err := store.pathFor(reference)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: failed to delete %s: %w", reference, err)
	}

	return nil
}

// DeleteNamespace implements [ImageStore].
func (store *LocalStore) DeleteNamespace(ctx context.Context, chapterID string) error {
	if err := checkNamespace(chapterID); err != nil {
		return err
	}

	if err := os.RemoveAll(filepath.Join(store.root, chaptersDir, chapterID)); err != nil {
		return fmt.Errorf("storage: failed to delete namespace %s: %w", chapterID, err)
	}

	return nil
}

// List implements [ImageStore]. In-flight temporary files are skipped.
func (store *LocalStore) List(ctx context.Context, chapterID string) ([]string, error) {
	if err := checkNamespace(chapterID); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(filepath.Join(store.root, chaptersDir, chapterID))
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: failed to list namespace %s: %w", chapterID, err)
	}

	references := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		references = append(references, store.referenceFor(chapterID, entry.Name()))
	}

	return references, nil
}

// referenceFor builds the public URL of a stored file. A root prefix yields
// "/chapters/...".
func (store *LocalStore) referenceFor(chapterID, name string) string {
	return store.publicPrefix + "/" + path.Join(namespaceKey(chapterID), name)
}

// pathFor maps a reference back to a file path inside the root.
func (store *LocalStore) pathFor(reference string) (string, error) {
	relative, found := strings.CutPrefix(reference, store.publicPrefix+"/")
	if !found {
		return "", ErrInvalidReference
	}

	// Expect exactly chapters/{chapterID}/{name}
	segments := strings.Split(relative, "/")
	if len(segments) != 3 || segments[0] != chaptersDir {
		return "", ErrInvalidReference
	}
	if checkNamespace(segments[1]) != nil || segments[2] == "" || segments[2] == "." || segments[2] == ".." {
		return "", ErrInvalidReference
	}

	return filepath.Join(store.root, chaptersDir, segments[1], segments[2]), nil
}
