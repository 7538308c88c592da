// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/yomira-toon/internal/platform/apperr"
	"github.com/taibuivan/yomira-toon/internal/platform/database/schema"
)

const resourceImage = "Image"

// imageColumns is the projection shared by every image read and RETURNING clause.
var imageColumns = strings.Join(schema.CoreChapterImage.Columns(), ", ")

// scanImages drains rows into images and closes them.
func scanImages(rows pgx.Rows) ([]*Image, error) {
	defer rows.Close()

	images := []*Image{}
	for rows.Next() {
		var image Image
		err := rows.Scan(
			&image.ID, &image.ChapterID, &image.ImageURL, &image.Order,
			&image.Width, &image.Height, &image.SizeBytes, &image.MimeType, &image.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan image: %w", err)
		}
		images = append(images, &image)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to iterate images: %w", err)
	}

	return images, nil
}

// listImages reads a chapter's catalog through either the pool or a transaction.
func listImages(context context.Context, db querier, chapterID string) ([]*Image, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s ASC, %s ASC`,
		imageColumns,
		schema.CoreChapterImage.Table,
		schema.CoreChapterImage.ChapterID,
		schema.CoreChapterImage.Order, schema.CoreChapterImage.ID,
	)

	rows, err := db.Query(context, query, chapterID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list images: %w", err)
	}

	return scanImages(rows)
}

// ListImages implements [ChapterRepository].
func (repository *chapterRepository) ListImages(context context.Context, chapterID string) ([]*Image, error) {
	return listImages(context, repository.pool, chapterID)
}

/*
AppendImages persists a batch of images after the chapter's last page.

Description: Holds the chapter row lock while reading the current maximum
order, then pipelines one INSERT per image with pgx.Batch. Nothing is visible
to readers until commit.
*/
func (repository *chapterRepository) AppendImages(context context.Context, chapterID string, images []*Image) error {

	// Pre-condition verification
	if len(images) == 0 {
		return nil
	}

	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin transaction: %w", err)
	}
	defer transaction.Rollback(context)

	if err := lockChapter(context, transaction, chapterID); err != nil {
		return err
	}

	// Next free position
	var nextOrder int
	nextQuery := fmt.Sprintf(`SELECT COALESCE(MAX(%s), -1) + 1 FROM %s WHERE %s = $1`,
		schema.CoreChapterImage.Order, schema.CoreChapterImage.Table, schema.CoreChapterImage.ChapterID)

	if err := transaction.QueryRow(context, nextQuery, chapterID).Scan(&nextOrder); err != nil {
		return fmt.Errorf("postgres: failed to read next image order: %w", err)
	}

	// Batch queue construction
	insert := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s
	`,
		schema.CoreChapterImage.Table,
		schema.CoreChapterImage.ID, schema.CoreChapterImage.ChapterID, schema.CoreChapterImage.ImageURL, schema.CoreChapterImage.Order,
		schema.CoreChapterImage.Width, schema.CoreChapterImage.Height, schema.CoreChapterImage.SizeBytes, schema.CoreChapterImage.MimeType,
		schema.CoreChapterImage.CreatedAt,
	)

	batch := &pgx.Batch{}
	for index, image := range images {
		image.ChapterID = chapterID
		image.Order = nextOrder + index
		batch.Queue(insert,
			image.ID, image.ChapterID, image.ImageURL, image.Order,
			image.Width, image.Height, image.SizeBytes, image.MimeType,
		)
	}

	// Send batch; results must be closed before commit
	results := transaction.SendBatch(context, batch)
	for index, image := range images {
		if err := results.QueryRow().Scan(&image.CreatedAt); err != nil {
			_ = results.Close()
			return fmt.Errorf("postgres: failed to insert image %d: %w", index, err)
		}
	}

	if err := results.Close(); err != nil {
		return fmt.Errorf("postgres: failed to close image batch: %w", err)
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres: failed to commit images: %w", err)
	}

	return nil
}

/*
DeleteImage removes a single page and renumbers the remaining pages to 0..N-1.
*/
func (repository *chapterRepository) DeleteImage(context context.Context, chapterID, imageID string) (*Image, error) {

	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to begin transaction: %w", err)
	}
	defer transaction.Rollback(context)

	if err := lockChapter(context, transaction, chapterID); err != nil {
		return nil, err
	}

	// Remove the page
	deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2 RETURNING %s`,
		schema.CoreChapterImage.Table, schema.CoreChapterImage.ID, schema.CoreChapterImage.ChapterID, imageColumns)

	rows, err := transaction.Query(context, deleteQuery, imageID, chapterID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to delete image: %w", err)
	}

	removed, err := scanImages(rows)
	if err != nil {
		return nil, err
	}
	if len(removed) == 0 {
		return nil, apperr.NotFound(resourceImage)
	}

	// Close the gap
	compact := fmt.Sprintf(`
		UPDATE %[1]s AS i
		SET %[2]s = ranked.position - 1
		FROM (
			SELECT %[3]s, ROW_NUMBER() OVER (ORDER BY %[2]s ASC, %[3]s ASC) AS position
			FROM %[1]s
			WHERE %[4]s = $1
		) AS ranked
		WHERE i.%[3]s = ranked.%[3]s AND i.%[2]s <> ranked.position - 1
	`,
		schema.CoreChapterImage.Table,
		schema.CoreChapterImage.Order,
		schema.CoreChapterImage.ID,
		schema.CoreChapterImage.ChapterID,
	)

	if _, err := transaction.Exec(context, compact, chapterID); err != nil {
		return nil, fmt.Errorf("postgres: failed to compact image order: %w", err)
	}

	if err := transaction.Commit(context); err != nil {
		return nil, fmt.Errorf("postgres: failed to commit image deletion: %w", err)
	}

	return removed[0], nil
}

/*
ReorderImages rewrites the reading order of a chapter.

Description: imageIDs must name every image of the chapter exactly once. The
position of each ID in the slice becomes its new 0-based order.
*/
func (repository *chapterRepository) ReorderImages(context context.Context, chapterID string, imageIDs []string) ([]*Image, error) {

	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to begin transaction: %w", err)
	}
	defer transaction.Rollback(context)

	if err := lockChapter(context, transaction, chapterID); err != nil {
		return nil, err
	}

	current, err := listImages(context, transaction, chapterID)
	if err != nil {
		return nil, err
	}

	if !sameImageSet(current, imageIDs) {
		return nil, apperr.ValidationError("Image order must list every image of the chapter exactly once",
			apperr.FieldError{Field: fieldImageIDs, Message: "Must match the chapter's images"})
	}

	// Positions come from the array ordinality
	update := fmt.Sprintf(`
		UPDATE %[1]s AS i
		SET %[2]s = t.position - 1
		FROM unnest($2::text[]) WITH ORDINALITY AS t(id, position)
		WHERE i.%[3]s = $1 AND i.%[4]s = t.id::uuid
	`,
		schema.CoreChapterImage.Table,
		schema.CoreChapterImage.Order,
		schema.CoreChapterImage.ChapterID,
		schema.CoreChapterImage.ID,
	)

	if _, err := transaction.Exec(context, update, chapterID, imageIDs); err != nil {
		return nil, fmt.Errorf("postgres: failed to reorder images: %w", err)
	}

	reordered, err := listImages(context, transaction, chapterID)
	if err != nil {
		return nil, err
	}

	if err := transaction.Commit(context); err != nil {
		return nil, fmt.Errorf("postgres: failed to commit image order: %w", err)
	}

	return reordered, nil
}

// sameImageSet reports whether ids names every image exactly once.
func sameImageSet(images []*Image, ids []string) bool {
	if len(images) != len(ids) {
		return false
	}

	expected := make(map[string]bool, len(images))
	for _, image := range images {
		expected[strings.ToLower(image.ID)] = true
	}

	for _, id := range ids {
		key := strings.ToLower(id)
		if !expected[key] {
			return false
		}
		delete(expected, key)
	}

	return len(expected) == 0
}

