// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/yomira-toon/internal/platform/apperr"
	"github.com/taibuivan/yomira-toon/internal/platform/constants"
	"github.com/taibuivan/yomira-toon/internal/storage"
	"github.com/taibuivan/yomira-toon/pkg/uuid"
)

// reconcileGracePeriod protects objects an in-flight upload has staged but not yet committed.
const reconcileGracePeriod = 2 * constants.UploadRequestTimeout

// # Image Catalog Operations

// ListImages returns a chapter's images in reading order. It never mutates state.
func (service *Service) ListImages(ctx context.Context, chapterID string) ([]*Image, error) {
	if _, err := service.GetChapter(ctx, chapterID); err != nil {
		return nil, err
	}
	return service.repository.ListImages(ctx, chapterID)
}

/*
UploadImages appends a batch of page images to a chapter.

Description: Runs in three phases.
 1. Validate every file (type, size, content, dimensions). Nothing is written on failure.
 2. Stage every file in the image store.
 3. Insert all catalog rows in one transaction, after the chapter's last page.

If staging or the catalog insert fails, every object staged by this call is
deleted again before the error is returned.

Returns:
  - []*Image: The created images in their assigned order
  - error: apperr.NotFound, a validation error naming the offending file, or an internal error
*/
func (service *Service) UploadImages(ctx context.Context, chapterID string, uploads []Upload) ([]*Image, error) {
	if _, err := service.GetChapter(ctx, chapterID); err != nil {
		return nil, err
	}

	// 1. Validate everything up front
	files, err := validateUploads(uploads)
	if err != nil {
		return nil, err
	}

	// 2. Stage bytes
	images := make([]*Image, 0, len(files))
	for _, file := range files {
		reference, err := service.stage(ctx, chapterID, file)
		if err != nil {
			service.compensate(ctx, chapterID, images)
			return nil, apperr.Internal(err)
		}

		images = append(images, &Image{
			ID:        uuid.New(),
			ChapterID: chapterID,
			ImageURL:  reference,
			Width:     file.width,
			Height:    file.height,
			SizeBytes: file.upload.Size,
			MimeType:  file.contentType,
		})
	}

	// 3. Commit the catalog
	if err := service.repository.AppendImages(ctx, chapterID, images); err != nil {
		service.compensate(ctx, chapterID, images)
		return nil, err
	}

	service.logger.Info("chapter_images_uploaded",
		slog.String("chapter_id", chapterID),
		slog.Int("count", len(images)),
		slog.Int("first_order", images[0].Order),
		slog.String("backend", service.store.Backend()),
	)

	return images, nil
}

// stage writes one validated file to the image store.
func (service *Service) stage(ctx context.Context, chapterID string, file *inspected) (string, error) {
	body, err := file.upload.Open()
	if err != nil {
		return "", fmt.Errorf("chapter: failed to open %s: %w", file.upload.FileName, err)
	}
	defer body.Close()

	return service.store.Store(ctx, chapterID, file.upload.FileName, body, file.upload.Size, file.contentType)
}

// compensate deletes objects staged by a failed upload.
func (service *Service) compensate(ctx context.Context, chapterID string, staged []*Image) {
	cleanup := context.WithoutCancel(ctx)

	for _, image := range staged {
		if err := service.store.Delete(cleanup, image.ImageURL); err != nil {
			service.logger.Error("chapter_upload_compensation_failed",
				slog.String("chapter_id", chapterID),
				slog.String("reference", image.ImageURL),
				slog.String("error", err.Error()),
			)
		}
	}

	service.logger.Warn("chapter_upload_rolled_back",
		slog.String("chapter_id", chapterID),
		slog.Int("staged", len(staged)),
	)
}

// DeleteImage removes one page from a chapter and then its stored bytes.
func (service *Service) DeleteImage(ctx context.Context, chapterID, imageID string) error {
	if !uuid.Valid(chapterID) {
		return apperr.NotFound(resourceChapter)
	}
	if !uuid.Valid(imageID) {
		return apperr.NotFound(resourceImage)
	}

	removed, err := service.repository.DeleteImage(ctx, chapterID, imageID)
	if err != nil {
		return err
	}

	if err := service.store.Delete(context.WithoutCancel(ctx), removed.ImageURL); err != nil {
		service.logger.Warn("chapter_image_bytes_orphaned",
			slog.String("chapter_id", chapterID),
			slog.String("reference", removed.ImageURL),
			slog.String("error", err.Error()),
		)
	}

	service.logger.Info("chapter_image_deleted",
		slog.String("chapter_id", chapterID),
		slog.String("image_id", imageID),
	)

	return nil
}

/*
ReorderImages sets a new reading order for a chapter's images.

Parameters:
  - imageIDs: Every image ID of the chapter, in the desired order

Returns:
  - []*Image: The chapter's images, ordered 0..N-1
  - error: A validation error unless imageIDs is exactly the chapter's image set
*/
func (service *Service) ReorderImages(ctx context.Context, chapterID string, imageIDs []string) ([]*Image, error) {
	if !uuid.Valid(chapterID) {
		return nil, apperr.NotFound(resourceChapter)
	}

	if len(imageIDs) == 0 {
		return nil, apperr.ValidationError("Image order is required",
			apperr.FieldError{Field: fieldImageIDs, Message: "This field is required"})
	}

	for _, id := range imageIDs {
		if !uuid.Valid(id) {
			return nil, apperr.ValidationError("Image order contains an invalid ID",
				apperr.FieldError{Field: fieldImageIDs, Message: fmt.Sprintf("%q is not a valid ID", id)})
		}
	}

	images, err := service.repository.ReorderImages(ctx, chapterID, imageIDs)
	if err != nil {
		return nil, err
	}

	service.logger.Info("chapter_images_reordered",
		slog.String("chapter_id", chapterID),
		slog.Int("count", len(images)),
	)

	return images, nil
}

// # Storage Reconciliation

// ReconcileReport summarises a reconciliation sweep of one chapter namespace.
type ReconcileReport struct {
	ChapterID string   `json:"chapterId"`
	Stored    int      `json:"stored"`
	Removed   []string `json:"removed"`
	Skipped   int      `json:"skipped"` // Unreferenced but too recent to remove
}

/*
ReconcileStorage deletes stored objects of a chapter that no catalog row references.

Description: Objects younger than the grace period are kept, since an upload
may have staged them and not yet committed its rows.
*/
func (service *Service) ReconcileStorage(ctx context.Context, chapterID string) (*ReconcileReport, error) {
	if _, err := service.GetChapter(ctx, chapterID); err != nil {
		return nil, err
	}

	images, err := service.repository.ListImages(ctx, chapterID)
	if err != nil {
		return nil, err
	}

	stored, err := service.store.List(ctx, chapterID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	referenced := make(map[string]struct{}, len(images))
	for _, image := range images {
		referenced[image.ImageURL] = struct{}{}
	}

	report := &ReconcileReport{ChapterID: chapterID, Stored: len(stored), Removed: []string{}}
	cutoff := service.now().Add(-reconcileGracePeriod)

	for _, reference := range stored {
		if _, ok := referenced[reference]; ok {
			continue
		}

		if storedAt, ok := storage.StoredAt(reference); ok && storedAt.After(cutoff) {
			report.Skipped++
			continue
		}

		if err := service.store.Delete(ctx, reference); err != nil {
			return nil, apperr.Internal(err)
		}
		report.Removed = append(report.Removed, reference)
	}

	service.logger.Info("chapter_storage_reconciled",
		slog.String("chapter_id", chapterID),
		slog.Int("stored", report.Stored),
		slog.Int("removed", len(report.Removed)),
		slog.Int("skipped", report.Skipped),
	)

	return report, nil
}

