// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import "context"

// # Chapter & Image Data Access

// ChapterRepository defines the data access contract for chapters and their image catalog.
type ChapterRepository interface {

	/*
		FindByID returns the chapter with the given ID, including its image count.

		Returns:
		  - *Chapter: Hydrated metadata
		  - error: apperr.NotFound if missing
	*/
	FindByID(ctx context.Context, id string) (*Chapter, error)

	// FindBySeriesAndNumber returns a chapter by its series-scoped number.
	FindBySeriesAndNumber(ctx context.Context, seriesID string, number int) (*Chapter, error)

	/*
		ListBySeries returns a page of a series' chapters.

		Returns:
		  - []*Chapter: Matching chapters
		  - int: Total matching chapters ignoring pagination
	*/
	ListBySeries(ctx context.Context, seriesID string, filter Filter, limit, offset int) ([]*Chapter, int, error)

	// ListSummaries returns every chapter of a series ordered by number.
	ListSummaries(ctx context.Context, seriesID string) ([]*Summary, error)

	/*
		Create persists a new chapter.

		Returns:
		  - error: apperr.Conflict when the number is taken within the series
	*/
	Create(ctx context.Context, chapter *Chapter) error

	// UpdateStatus persists publishDate, scheduledAt and isPublished.
	UpdateStatus(ctx context.Context, chapter *Chapter) error

	/*
		Delete removes the chapter's catalog rows and the chapter row in one transaction.

		Returns:
		  - []*Image: The catalog rows that were removed, for storage cleanup
		  - error: apperr.NotFound if the chapter does not exist
	*/
	Delete(ctx context.Context, id string) ([]*Image, error)

	// FindAdjacent returns the closest published chapter after or before number.
	FindAdjacent(ctx context.Context, seriesID string, number int, direction Direction) (*Chapter, error)

	// IncrementViews adds one view to the chapter and to its series.
	IncrementViews(ctx context.Context, id string) error

	// ListImages returns a chapter's images sorted ascending by order. It has no side effects.
	ListImages(ctx context.Context, chapterID string) ([]*Image, error)

	/*
		AppendImages inserts images after the chapter's current last page.

		Description: Locks the chapter row, reads max(order) and assigns
		consecutive orders to images in slice order. All rows commit together.
		The Order field of each image is set on return.
	*/
	AppendImages(ctx context.Context, chapterID string, images []*Image) error

	// DeleteImage removes one image and closes the gap it leaves in the ordering.
	DeleteImage(ctx context.Context, chapterID, imageID string) (*Image, error)

	/*
		ReorderImages rewrites the chapter's orders to follow imageIDs.

		Returns:
		  - []*Image: The chapter's images in their new order
		  - error: apperr.ValidationError unless imageIDs is exactly the chapter's image set
	*/
	ReorderImages(ctx context.Context, chapterID string, imageIDs []string) ([]*Image, error)
}

// ViewGuard remembers recent viewers so repeated reads within a window count once.
type ViewGuard interface {

	// FirstView reports whether viewer has not been seen for chapterID within the window.
	FirstView(ctx context.Context, chapterID, viewer string) (bool, error)
}

// SeriesLookup is the slice of the series domain chapters depend on.
type SeriesLookup interface {
	Exists(ctx context.Context, id string) (bool, error)
}
