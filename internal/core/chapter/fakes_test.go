// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-toon/internal/platform/apperr"
	"github.com/taibuivan/yomira-toon/internal/storage"
	"github.com/taibuivan/yomira-toon/pkg/uuid"
)

// # In-memory Repository

type memoryRepository struct {
	mu        sync.Mutex
	chapters  map[string]*Chapter
	images    map[string][]*Image
	appendErr error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{chapters: map[string]*Chapter{}, images: map[string][]*Image{}}
}

func (repository *memoryRepository) sorted(chapterID string) []*Image {
	images := slices.Clone(repository.images[chapterID])
	sort.SliceStable(images, func(i, j int) bool { return images[i].Order < images[j].Order })
	return images
}

func (repository *memoryRepository) copyOf(chapter *Chapter) *Chapter {
	clone := *chapter
	clone.ImageCount = len(repository.images[chapter.ID])
	return &clone
}

func (repository *memoryRepository) FindByID(ctx context.Context, id string) (*Chapter, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	chapter, ok := repository.chapters[id]
	if !ok {
		return nil, apperr.NotFound(resourceChapter)
	}
	return repository.copyOf(chapter), nil
}

func (repository *memoryRepository) FindBySeriesAndNumber(ctx context.Context, seriesID string, number int) (*Chapter, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	for _, chapter := range repository.chapters {
		if chapter.SeriesID == seriesID && chapter.Number == number {
			return repository.copyOf(chapter), nil
		}
	}
	return nil, apperr.NotFound(resourceChapter)
}

func (repository *memoryRepository) ListBySeries(ctx context.Context, seriesID string, filter Filter, limit, offset int) ([]*Chapter, int, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	matched := []*Chapter{}
	for _, chapter := range repository.chapters {
		if chapter.SeriesID != seriesID {
			continue
		}
		if filter.Status != "" && chapter.Status() != filter.Status {
			continue
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(chapter.Title), strings.ToLower(filter.Query)) {
			continue
		}
		matched = append(matched, repository.copyOf(chapter))
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].Number > matched[j].Number })
	if strings.EqualFold(filter.SortDir, "asc") {
		slices.Reverse(matched)
	}

	total := len(matched)
	if offset >= total {
		return []*Chapter{}, total, nil
	}
	return matched[offset:min(offset+limit, total)], total, nil
}

func (repository *memoryRepository) ListSummaries(ctx context.Context, seriesID string) ([]*Summary, error) {
	chapters, _, err := repository.ListBySeries(ctx, seriesID, Filter{SortDir: "asc"}, 1000, 0)
	if err != nil {
		return nil, err
	}

	summaries := make([]*Summary, 0, len(chapters))
	for _, chapter := range chapters {
		summaries = append(summaries, &Summary{ID: chapter.ID, Number: chapter.Number, Title: chapter.Title})
	}
	return summaries, nil
}

func (repository *memoryRepository) Create(ctx context.Context, chapter *Chapter) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	for _, existing := range repository.chapters {
		if existing.SeriesID == chapter.SeriesID && existing.Number == chapter.Number {
			return apperr.Conflict("Chapter already exists in this series")
		}
	}

	chapter.CreatedAt = time.Now()
	chapter.UpdatedAt = chapter.CreatedAt
	clone := *chapter
	repository.chapters[chapter.ID] = &clone
	return nil
}

func (repository *memoryRepository) UpdateStatus(ctx context.Context, chapter *Chapter) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if _, ok := repository.chapters[chapter.ID]; !ok {
		return apperr.NotFound(resourceChapter)
	}
	clone := *chapter
	repository.chapters[chapter.ID] = &clone
	return nil
}

func (repository *memoryRepository) Delete(ctx context.Context, id string) ([]*Image, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if _, ok := repository.chapters[id]; !ok {
		return nil, apperr.NotFound(resourceChapter)
	}

	removed := repository.images[id]
	delete(repository.images, id)
	delete(repository.chapters, id)
	return removed, nil
}

func (repository *memoryRepository) FindAdjacent(ctx context.Context, seriesID string, number int, direction Direction) (*Chapter, error) {
	chapters, _, _ := repository.ListBySeries(ctx, seriesID, Filter{Status: StatusPublished, SortDir: "asc"}, 1000, 0)
	if direction == Previous {
		slices.Reverse(chapters)
	}

	for _, chapter := range chapters {
		if (direction == Next && chapter.Number > number) || (direction == Previous && chapter.Number < number) {
			return chapter, nil
		}
	}
	return nil, apperr.NotFound(resourceChapter)
}

func (repository *memoryRepository) IncrementViews(ctx context.Context, id string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	chapter, ok := repository.chapters[id]
	if !ok {
		return apperr.NotFound(resourceChapter)
	}
	chapter.Views++
	return nil
}

func (repository *memoryRepository) ListImages(ctx context.Context, chapterID string) ([]*Image, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	return repository.sorted(chapterID), nil
}

func (repository *memoryRepository) AppendImages(ctx context.Context, chapterID string, images []*Image) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if repository.appendErr != nil {
		return repository.appendErr
	}
	if _, ok := repository.chapters[chapterID]; !ok {
		return apperr.NotFound(resourceChapter)
	}

	next := 0
	for _, image := range repository.images[chapterID] {
		next = max(next, image.Order+1)
	}

	for index, image := range images {
		image.ChapterID = chapterID
		image.Order = next + index
		image.CreatedAt = time.Now()
	}
	repository.images[chapterID] = append(repository.images[chapterID], images...)
	return nil
}

func (repository *memoryRepository) DeleteImage(ctx context.Context, chapterID, imageID string) (*Image, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if _, ok := repository.chapters[chapterID]; !ok {
		return nil, apperr.NotFound(resourceChapter)
	}

	images := repository.sorted(chapterID)
	index := slices.IndexFunc(images, func(image *Image) bool { return image.ID == imageID })
	if index < 0 {
		return nil, apperr.NotFound(resourceImage)
	}

	removed := images[index]
	images = slices.Delete(images, index, index+1)
	for position, image := range images {
		image.Order = position
	}
	repository.images[chapterID] = images
	return removed, nil
}

func (repository *memoryRepository) ReorderImages(ctx context.Context, chapterID string, imageIDs []string) ([]*Image, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if _, ok := repository.chapters[chapterID]; !ok {
		return nil, apperr.NotFound(resourceChapter)
	}

	current := repository.images[chapterID]
	if !sameImageSet(current, imageIDs) {
		return nil, apperr.ValidationError("Image order must list every image of the chapter exactly once")
	}

	for _, image := range current {
		image.Order = slices.Index(imageIDs, image.ID)
	}
	return repository.sorted(chapterID), nil
}

// # Collaborator Fakes

type seriesSet map[string]bool

func (set seriesSet) Exists(ctx context.Context, id string) (bool, error) { return set[id], nil }

type memoryViewGuard struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func (guard *memoryViewGuard) FirstView(ctx context.Context, chapterID, viewer string) (bool, error) {
	guard.mu.Lock()
	defer guard.mu.Unlock()

	if guard.err != nil {
		return false, guard.err
	}
	key := chapterID + ":" + viewer
	if guard.seen[key] {
		return false, nil
	}
	guard.seen[key] = true
	return true, nil
}

// countingStore records how many writes reached the wrapped store.
type countingStore struct {
	storage.ImageStore
	mu     sync.Mutex
	writes int
}

func (store *countingStore) Store(ctx context.Context, chapterID, fileName string, body io.Reader, size int64, contentType string) (string, error) {
	store.mu.Lock()
	store.writes++
	store.mu.Unlock()
	return store.ImageStore.Store(ctx, chapterID, fileName, body, size, contentType)
}

// # Fixture

type fixture struct {
	service    *Service
	repository *memoryRepository
	store      *countingStore
	views      *memoryViewGuard
	seriesID   string
	root       string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	root := filepath.Join(t.TempDir(), "uploads")
	local, err := storage.NewLocalStore(root, "/uploads")
	require.NoError(t, err)

	fx := &fixture{
		repository: newMemoryRepository(),
		store:      &countingStore{ImageStore: local},
		views:      &memoryViewGuard{seen: map[string]bool{}},
		seriesID:   uuid.New(),
		root:       root,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fx.service = NewService(fx.repository, fx.store, seriesSet{fx.seriesID: true}, fx.views, logger)
	return fx
}

// addChapter inserts a chapter straight into the repository.
func (fx *fixture) addChapter(t *testing.T, number int, published bool) *Chapter {
	t.Helper()

	chapter := &Chapter{
		ID:          uuid.New(),
		SeriesID:    fx.seriesID,
		Title:       "Chapter",
		Number:      number,
		PublishDate: time.Now(),
		IsPublished: published,
	}
	require.NoError(t, fx.repository.Create(context.Background(), chapter))
	return chapter
}

// storedFor lists what the image store holds for a chapter.
func (fx *fixture) storedFor(t *testing.T, chapterID string) []string {
	t.Helper()
	references, err := fx.store.List(context.Background(), chapterID)
	require.NoError(t, err)
	return references
}

// # Image Fixtures

func testImage() image.Image {
	canvas := image.NewPaletted(image.Rect(0, 0, 8, 12), color.Palette{color.White, color.Black})
	canvas.SetColorIndex(1, 1, 1)
	return canvas
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buffer bytes.Buffer
	require.NoError(t, png.Encode(&buffer, testImage()))
	return buffer.Bytes()
}

func jpegBytes(t *testing.T) []byte {
	t.Helper()
	var buffer bytes.Buffer
	require.NoError(t, jpeg.Encode(&buffer, testImage(), nil))
	return buffer.Bytes()
}

func gifBytes(t *testing.T) []byte {
	t.Helper()
	var buffer bytes.Buffer
	require.NoError(t, gif.Encode(&buffer, testImage(), nil))
	return buffer.Bytes()
}

// memoryUpload builds an [Upload] over data, with the declared size set to size.
func memoryUpload(name, contentType string, data []byte, size int64) Upload {
	return Upload{
		FileName:    name,
		ContentType: contentType,
		Size:        size,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

func pngUpload(t *testing.T, name string) Upload {
	data := pngBytes(t)
	return memoryUpload(name, "image/png", data, int64(len(data)))
}
