// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package series defines the webtoon series that chapters belong to.

A series is light: title, slug, author, description and a publication status.
Its view counter is maintained by the chapter package, which bumps it in the
same transaction as the chapter's own counter.
*/
package series

import "time"

// # Domain Enums

// Status represents the publication status of a series.
type Status string

const (
	// StatusOngoing indicates the series is actively updating.
	StatusOngoing Status = "ongoing"

	// StatusCompleted indicates no further chapters are expected.
	StatusCompleted Status = "completed"

	// StatusHiatus indicates the series is paused indefinitely.
	StatusHiatus Status = "hiatus"

	// StatusCancelled indicates the series has been permanently discontinued.
	StatusCancelled Status = "cancelled"
)

// IsValid reports whether s is a recognised [Status] value.
func (s Status) IsValid() bool {
	switch s {
	case
		StatusOngoing,
		StatusCompleted,
		StatusHiatus,
		StatusCancelled:
		return true
	}
	return false
}

// # Core Entities

// Series is a serialised webtoon publication.
type Series struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"` // URL-safe identifier derived from the title
	Author      string    `json:"author"`
	Description string    `json:"description"`
	CoverURL    string    `json:"coverUrl"`
	Status      Status    `json:"status"`
	Views       int64     `json:"views"`
	IsFeatured  bool      `json:"isFeatured"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Sort keys accepted by [Filter]. "views" backs the popular listing and
// "updatedAt" the recently updated one.
const (
	SortByViews     = "views"
	SortByUpdatedAt = "updatedAt"
	SortByCreatedAt = "createdAt"
)

// Filter narrows a series listing.
type Filter struct {
	Query    string // Title or author contains, case-insensitive
	Status   Status
	Featured *bool
	SortBy   string // Empty lists featured series first, then newest
	SortDir  string // "asc" or "desc" (default)
}

// Update is a partial change to a series. Nil fields are left untouched.
type Update struct {
	Title       *string `json:"title"`
	Author      *string `json:"author"`
	Description *string `json:"description"`
	CoverURL    *string `json:"coverUrl"`
	Status      *Status `json:"status"`
	IsFeatured  *bool   `json:"isFeatured"`
}
