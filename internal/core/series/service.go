// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package series

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taibuivan/yomira-toon/internal/platform/apperr"
	"github.com/taibuivan/yomira-toon/internal/platform/validate"
	"github.com/taibuivan/yomira-toon/pkg/slug"
	"github.com/taibuivan/yomira-toon/pkg/uuid"
)

const (
	fieldTitle       = "title"
	fieldStatus      = "status"
	fieldAuthor      = "author"
	fieldDescription = "description"
	fieldSortBy      = "sortBy"
	fieldSortOrder   = "sortOrder"

	maxTitleLength       = 500
	maxAuthorLength      = 255
	maxDescriptionLength = 10000
)

// # Service Layer

// Service orchestrates the business logic for series.
type Service struct {
	repository SeriesRepository
	logger     *slog.Logger
}

// NewService constructs a new [Service] with its required repository.
func NewService(repository SeriesRepository, logger *slog.Logger) *Service {
	return &Service{repository: repository, logger: logger}
}

// # Series Lookups

/*
ListSeries retrieves a paginated and filtered collection of series.

Returns:
  - []*Series: Matching series for the requested page
  - int: Total matches, for pagination metadata
  - error: Validation errors for an unknown status, sort key or sort order
*/
func (service *Service) ListSeries(ctx context.Context, filter Filter, limit, offset int) ([]*Series, int, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, 0, validate.RequiredError(fieldStatus, "Unknown status")
	}

	validator := &validate.Validator{}
	if filter.SortBy != "" {
		validator.OneOf(fieldSortBy, filter.SortBy, SortByViews, SortByUpdatedAt, SortByCreatedAt)
	}
	if filter.SortDir != "" {
		validator.OneOf(fieldSortOrder, strings.ToLower(filter.SortDir), "asc", "desc")
	}
	if err := validator.Err(); err != nil {
		return nil, 0, err
	}

	return service.repository.List(ctx, filter, limit, offset)
}

// GetSeries fetches a series by ID. Malformed IDs are reported as not found.
func (service *Service) GetSeries(ctx context.Context, id string) (*Series, error) {
	if !uuid.Valid(id) {
		return nil, apperr.NotFound(resourceSeries)
	}
	return service.repository.FindByID(ctx, id)
}

// Exists reports whether a series with id is stored. Malformed IDs never exist.
func (service *Service) Exists(ctx context.Context, id string) (bool, error) {
	if !uuid.Valid(id) {
		return false, nil
	}
	return service.repository.Exists(ctx, id)
}

// # Series Management

// CreateInput carries the admin's new series.
type CreateInput struct {
	Title       string
	Author      string
	Description string
	CoverURL    string
	Status      Status // Defaults to ongoing
	IsFeatured  bool
}

/*
CreateSeries registers a new series.

Description: The slug is derived from the title. A title that yields no slug
characters is rejected.

Returns:
  - *Series: The persisted series
  - error: Validation errors, or apperr.Conflict for a taken slug
*/
func (service *Service) CreateSeries(ctx context.Context, input CreateInput) (*Series, error) {
	series := &Series{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(input.Title),
		Author:      strings.TrimSpace(input.Author),
		Description: input.Description,
		CoverURL:    input.CoverURL,
		Status:      input.Status,
		IsFeatured:  input.IsFeatured,
	}
	if series.Status == "" {
		series.Status = StatusOngoing
	}
	series.Slug = slug.From(series.Title)

	validator := &validate.Validator{}
	validator.Required(fieldTitle, series.Title).MaxLen(fieldTitle, series.Title, maxTitleLength)
	validator.Custom(fieldTitle, series.Title != "" && series.Slug == "", "Must contain at least one letter or digit")
	if err := service.validate(validator, series); err != nil {
		return nil, err
	}

	if err := service.repository.Create(ctx, series); err != nil {
		return nil, err
	}

	service.logger.Info("series_created",
		slog.String("series_id", series.ID),
		slog.String("slug", series.Slug),
	)
	return series, nil
}

/*
UpdateSeries applies a partial update to a series.

Description: Only non-nil fields change. The slug is stable and never
follows a title change.
*/
func (service *Service) UpdateSeries(ctx context.Context, id string, update Update) (*Series, error) {
	series, err := service.GetSeries(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		series.Title = strings.TrimSpace(*update.Title)
	}
	if update.Author != nil {
		series.Author = strings.TrimSpace(*update.Author)
	}
	if update.Description != nil {
		series.Description = *update.Description
	}
	if update.CoverURL != nil {
		series.CoverURL = *update.CoverURL
	}
	if update.Status != nil {
		series.Status = *update.Status
	}
	if update.IsFeatured != nil {
		series.IsFeatured = *update.IsFeatured
	}

	validator := &validate.Validator{}
	validator.Required(fieldTitle, series.Title).MaxLen(fieldTitle, series.Title, maxTitleLength)
	if err := service.validate(validator, series); err != nil {
		return nil, err
	}

	if err := service.repository.Update(ctx, series); err != nil {
		return nil, err
	}

	service.logger.Info("series_updated", slog.String("series_id", series.ID))
	return series, nil
}

// validate adds the rules shared by create and update and reports the result.
func (service *Service) validate(validator *validate.Validator, series *Series) error {
	validator.MaxLen(fieldAuthor, series.Author, maxAuthorLength)
	validator.MaxLen(fieldDescription, series.Description, maxDescriptionLength)
	validator.OneOf(fieldStatus, string(series.Status),
		string(StatusOngoing),
		string(StatusCompleted),
		string(StatusHiatus),
		string(StatusCancelled),
	)
	return validator.Err()
}
