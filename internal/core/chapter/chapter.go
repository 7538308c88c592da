// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package chapter manages chapters and their ordered page images.

A chapter belongs to exactly one series and owns an ordered list of page images.
Page bytes live in an [storage.ImageStore]; the catalog rows kept here map each
stored reference to its reading position.

# Core Responsibility

  - Catalog: [Image] rows ordered by a dense, 0-based `order`.
  - Upload: validate every file, stage bytes, then commit all rows in one transaction.
  - Deletion: remove rows first, then stored bytes and the chapter namespace.
  - Delivery: ordered image lists for the page-by-page reader.
*/
package chapter

import (
	"io"
	"time"
)

// # Chapter Aggregate

// Status is the publication state of a chapter as exchanged with the admin UI.
type Status string

const (
	StatusPublished Status = "PUBLISHED"
	StatusDraft     Status = "DRAFT"
	StatusScheduled Status = "SCHEDULED"
)

// Chapter is one installment of a series.
type Chapter struct {
	ID          string     `json:"id"`
	SeriesID    string     `json:"seriesId"`
	Title       string     `json:"title"`
	Number      int        `json:"chapterNumber"` // Unique within a series, starts at 1
	PublishDate time.Time  `json:"publishDate"`
	ScheduledAt *time.Time `json:"scheduledAt"` // Set only while SCHEDULED
	IsPublished bool       `json:"isPublished"`
	Views       int64      `json:"views"`
	ImageCount  int        `json:"imageCount"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Status derives the publication state from the stored flags.
func (chapter *Chapter) Status() Status {
	switch {
	case chapter.IsPublished:
		return StatusPublished
	case chapter.ScheduledAt != nil:
		return StatusScheduled
	default:
		return StatusDraft
	}
}

// Summary is the compact form used for in-reader chapter navigation.
type Summary struct {
	ID     string `json:"id"`
	Number int    `json:"chapterNumber"`
	Title  string `json:"title"`
}

// Reading is a chapter prepared for the reader: its pages and the series' chapter list.
type Reading struct {
	*Chapter
	Images   []*Image   `json:"images"`
	Chapters []*Summary `json:"chaptersList"`
}

// # Image Catalog

// Image is one page of a chapter.
type Image struct {
	ID        string    `json:"id"`
	ChapterID string    `json:"chapterId"`
	ImageURL  string    `json:"imageUrl"` // Opaque reference produced by the image store
	Order     int       `json:"order"`    // 0-based reading position
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	SizeBytes int64     `json:"sizeBytes"`
	MimeType  string    `json:"mimeType"`
	CreatedAt time.Time `json:"createdAt"`
}

// Upload is one file submitted for a chapter, independent of the transport.
type Upload struct {
	FileName    string
	ContentType string // As declared by the client
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// # Filter Criteria

// Sort keys accepted by [Filter].
const (
	SortByNumber    = "chapterNumber"
	SortByCreatedAt = "createdAt"
	SortByViews     = "views"
)

// Filter holds parameters for listing a series' chapters.
type Filter struct {
	Query   string // Case-insensitive title search
	Status  Status // Empty matches every status
	SortBy  string // One of the SortBy constants; defaults to chapter number
	SortDir string // "asc" or "desc" (default)
}

// Direction selects the neighbour returned by adjacency lookups.
type Direction int

const (
	Next Direction = iota
	Previous
)

// StatusChange is an admin request to publish, schedule, or unpublish a chapter.
type StatusChange struct {
	Status      Status
	PublishDate *time.Time
	ScheduledAt *time.Time
}
