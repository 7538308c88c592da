// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package series

import "context"

// # Repository Interfaces

/*
SeriesRepository defines the persistence contract for series.
*/
type SeriesRepository interface {
	// List returns a page of series matching filter and the total match count.
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Series, int, error)

	// FindByID returns the series or apperr.NotFound.
	FindByID(ctx context.Context, id string) (*Series, error)

	// Exists reports whether a series with id is stored.
	Exists(ctx context.Context, id string) (bool, error)

	// Create persists a new series. A taken slug is reported as apperr.Conflict.
	Create(ctx context.Context, series *Series) error

	// Update overwrites the mutable columns of series and refreshes UpdatedAt.
	Update(ctx context.Context, series *Series) error
}
