// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/yomira-toon/internal/platform/apperr"
	"github.com/taibuivan/yomira-toon/internal/platform/validate"
	"github.com/taibuivan/yomira-toon/internal/storage"
	"github.com/taibuivan/yomira-toon/pkg/pagination"
	"github.com/taibuivan/yomira-toon/pkg/pointer"
	"github.com/taibuivan/yomira-toon/pkg/uuid"
)

const (
	fieldTitle         = "title"
	fieldChapterNumber = "chapterNumber"
	fieldStatus        = "status"
	fieldScheduledAt   = "scheduledDate"
	fieldSortBy        = "sortBy"
	fieldImageIDs      = "imageIds"

	maxTitleLength = 255
)

// # Service Layer

// Service orchestrates chapters, their image catalog and the stored page bytes.
type Service struct {
	repository ChapterRepository
	store      storage.ImageStore
	series     SeriesLookup
	views      ViewGuard
	logger     *slog.Logger
	now        func() time.Time
}

// NewService constructs a new [Service] with its required collaborators.
func NewService(repository ChapterRepository, store storage.ImageStore, series SeriesLookup, views ViewGuard, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		store:      store,
		series:     series,
		views:      views,
		logger:     logger,
		now:        time.Now,
	}
}

// # Chapter Operations

// GetChapter retrieves a chapter by ID. Malformed IDs are reported as not found.
func (service *Service) GetChapter(ctx context.Context, id string) (*Chapter, error) {
	if !uuid.Valid(id) {
		return nil, apperr.NotFound(resourceChapter)
	}
	return service.repository.FindByID(ctx, id)
}

/*
GetChapterByNumber prepares a chapter for the reader.

Returns:
  - *Reading: The chapter, its ordered images and the series' chapter list
  - error: apperr.NotFound if the series has no such chapter
*/
func (service *Service) GetChapterByNumber(ctx context.Context, seriesID string, number int) (*Reading, error) {
	if !uuid.Valid(seriesID) || number < 1 {
		return nil, apperr.NotFound(resourceChapter)
	}

	chapter, err := service.repository.FindBySeriesAndNumber(ctx, seriesID, number)
	if err != nil {
		return nil, err
	}

	images, err := service.repository.ListImages(ctx, chapter.ID)
	if err != nil {
		return nil, err
	}

	chapters, err := service.repository.ListSummaries(ctx, seriesID)
	if err != nil {
		return nil, err
	}

	return &Reading{Chapter: chapter, Images: images, Chapters: chapters}, nil
}

/*
ListChapters returns a page of a series' chapters.

Returns:
  - []*Chapter: Matching chapters for the requested page
  - int: Total matching chapters
  - error: apperr.NotFound for an unknown series, validation errors for bad filters
*/
func (service *Service) ListChapters(ctx context.Context, seriesID string, filter Filter, page pagination.Params) ([]*Chapter, int, error) {
	validator := &validate.Validator{}
	if filter.Status != "" {
		validator.OneOf(fieldStatus, string(filter.Status), string(StatusPublished), string(StatusDraft), string(StatusScheduled))
	}
	if filter.SortBy != "" {
		validator.OneOf(fieldSortBy, filter.SortBy, SortByNumber, SortByCreatedAt, SortByViews)
	}
	if err := validator.Err(); err != nil {
		return nil, 0, err
	}

	if err := service.requireSeries(ctx, seriesID); err != nil {
		return nil, 0, err
	}

	return service.repository.ListBySeries(ctx, seriesID, filter, page.Limit, page.Offset())
}

// CreateInput carries the admin's new chapter.
type CreateInput struct {
	SeriesID    string
	Title       string
	Number      int
	Status      Status // Defaults to DRAFT
	PublishDate *time.Time
	ScheduledAt *time.Time
}

/*
CreateChapter registers a new chapter under a series.

Description: The status decides the stored flags: PUBLISHED sets isPublished,
SCHEDULED keeps scheduledAt, DRAFT clears both. The publish date defaults to now.

Returns:
  - *Chapter: The persisted chapter
  - error: Validation errors, apperr.NotFound for an unknown series, apperr.Conflict for a taken number
*/
func (service *Service) CreateChapter(ctx context.Context, input CreateInput) (*Chapter, error) {
	status := input.Status
	if status == "" {
		status = StatusDraft
	}

	// Business attribute validation
	validator := &validate.Validator{}
	validator.Required(fieldTitle, input.Title).MaxLen(fieldTitle, input.Title, maxTitleLength)
	validator.Min(fieldChapterNumber, input.Number, 1)
	validator.OneOf(fieldStatus, string(status), string(StatusPublished), string(StatusDraft), string(StatusScheduled))
	validator.Custom(fieldScheduledAt, status == StatusScheduled && input.ScheduledAt == nil, "Required for scheduled chapters")
	if status == StatusScheduled {
		validator.After(fieldScheduledAt, input.ScheduledAt, service.now())
	}

	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.requireSeries(ctx, input.SeriesID); err != nil {
		return nil, err
	}

	chapter := &Chapter{
		ID:          uuid.New(),
		SeriesID:    input.SeriesID,
		Title:       strings.TrimSpace(input.Title),
		Number:      input.Number,
		PublishDate: pointer.Fallback(input.PublishDate, service.now()).UTC(),
		IsPublished: status == StatusPublished,
	}
	if status == StatusScheduled {
		chapter.ScheduledAt = input.ScheduledAt
	}

	if err := service.repository.Create(ctx, chapter); err != nil {
		return nil, err
	}

	service.logger.Info("chapter_created",
		slog.String("chapter_id", chapter.ID),
		slog.String("series_id", chapter.SeriesID),
		slog.Int("number", chapter.Number),
		slog.String("status", string(chapter.Status())),
	)

	return chapter, nil
}

/*
UpdateStatus publishes, schedules or unpublishes a chapter.

Description: Scheduling without a new date keeps the chapter's current
schedule, and a new date must lie in the future; any other status clears it. PublishDate changes only when supplied.
*/
func (service *Service) UpdateStatus(ctx context.Context, id string, change StatusChange) (*Chapter, error) {
	validator := &validate.Validator{}
	validator.OneOf(fieldStatus, string(change.Status), string(StatusPublished), string(StatusDraft), string(StatusScheduled))
	if change.Status == StatusScheduled {
		validator.After(fieldScheduledAt, change.ScheduledAt, service.now())
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	chapter, err := service.GetChapter(ctx, id)
	if err != nil {
		return nil, err
	}

	chapter.IsPublished = change.Status == StatusPublished

	if change.Status == StatusScheduled {
		if change.ScheduledAt != nil {
			chapter.ScheduledAt = change.ScheduledAt
		}
		if chapter.ScheduledAt == nil {
			return nil, validate.RequiredError(fieldScheduledAt, "Required for scheduled chapters")
		}
	} else {
		chapter.ScheduledAt = nil
	}

	if change.PublishDate != nil {
		chapter.PublishDate = change.PublishDate.UTC()
	}

	if err := service.repository.UpdateStatus(ctx, chapter); err != nil {
		return nil, err
	}

	service.logger.Info("chapter_status_updated",
		slog.String("chapter_id", chapter.ID),
		slog.String("status", string(chapter.Status())),
	)

	return chapter, nil
}

/*
DeleteChapter removes a chapter, its catalog rows and its stored pages.

Description: The database is authoritative: rows go first, in one transaction.
Stored bytes are removed afterwards; failures there are logged and left for
the reconciliation sweep.
*/
func (service *Service) DeleteChapter(ctx context.Context, id string) error {
	if !uuid.Valid(id) {
		return apperr.NotFound(resourceChapter)
	}

	removed, err := service.repository.Delete(ctx, id)
	if err != nil {
		return err
	}

	// The rows are gone; finish cleanup even if the client disconnects
	cleanup := context.WithoutCancel(ctx)

	failures := 0
	for _, image := range removed {
		if err := service.store.Delete(cleanup, image.ImageURL); err != nil {
			failures++
			service.logger.Warn("chapter_image_bytes_orphaned",
				slog.String("chapter_id", id),
				slog.String("reference", image.ImageURL),
				slog.String("error", err.Error()),
			)
		}
	}

	if err := service.store.DeleteNamespace(cleanup, id); err != nil {
		failures++
		service.logger.Warn("chapter_namespace_orphaned",
			slog.String("chapter_id", id),
			slog.String("error", err.Error()),
		)
	}

	service.logger.Info("chapter_deleted",
		slog.String("chapter_id", id),
		slog.Int("images", len(removed)),
		slog.Int("storage_failures", failures),
	)

	return nil
}

// # Reader Interactions

/*
RecordView counts a read of a chapter, once per viewer per de-duplication window.

Description: When the guard is unavailable the view is counted rather than lost.

Returns:
  - bool: Whether the view was counted
*/
func (service *Service) RecordView(ctx context.Context, chapterID, viewer string) (bool, error) {
	if !uuid.Valid(chapterID) {
		return false, apperr.NotFound(resourceChapter)
	}

	first, err := service.views.FirstView(ctx, chapterID, viewer)
	if err != nil {
		service.logger.Warn("chapter_view_guard_unavailable",
			slog.String("chapter_id", chapterID),
			slog.String("error", err.Error()),
		)
		first = true
	}

	if !first {
		return false, nil
	}

	if err := service.repository.IncrementViews(ctx, chapterID); err != nil {
		return false, err
	}

	return true, nil
}

// NextChapter returns the closest published chapter after the given one.
func (service *Service) NextChapter(ctx context.Context, id string) (*Chapter, error) {
	return service.adjacent(ctx, id, Next)
}

// PreviousChapter returns the closest published chapter before the given one.
func (service *Service) PreviousChapter(ctx context.Context, id string) (*Chapter, error) {
	return service.adjacent(ctx, id, Previous)
}

func (service *Service) adjacent(ctx context.Context, id string, direction Direction) (*Chapter, error) {
	current, err := service.GetChapter(ctx, id)
	if err != nil {
		return nil, err
	}
	return service.repository.FindAdjacent(ctx, current.SeriesID, current.Number, direction)
}

// # Internal Helpers

// requireSeries fails with apperr.NotFound unless the series exists.
func (service *Service) requireSeries(ctx context.Context, seriesID string) error {
	if !uuid.Valid(seriesID) {
		return apperr.NotFound("Series")
	}

	exists, err := service.series.Exists(ctx, seriesID)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.NotFound("Series")
	}

	return nil
}
