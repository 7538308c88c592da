// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package series

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/yomira-toon/internal/platform/apperr"
	"github.com/taibuivan/yomira-toon/internal/platform/database/schema"
	"github.com/taibuivan/yomira-toon/internal/platform/dberr"
)

const resourceSeries = "Series"

// # PostgreSQL Repository

// seriesRepository implements [SeriesRepository] using pgx.
type seriesRepository struct {
	pool *pgxpool.Pool
}

// NewSeriesRepository constructs a PostgreSQL backed series store.
func NewSeriesRepository(pool *pgxpool.Pool) SeriesRepository {
	return &seriesRepository{pool: pool}
}

var seriesSelect = fmt.Sprintf(`
	SELECT
		s.%s, s.%s, s.%s, s.%s, s.%s, s.%s,
		s.%s, s.%s, s.%s, s.%s, s.%s
	FROM %s s
`,
	schema.CoreSeries.ID, schema.CoreSeries.Title, schema.CoreSeries.Slug, schema.CoreSeries.Author, schema.CoreSeries.Description, schema.CoreSeries.CoverURL,
	schema.CoreSeries.Status, schema.CoreSeries.Views, schema.CoreSeries.IsFeatured, schema.CoreSeries.CreatedAt, schema.CoreSeries.UpdatedAt,
	schema.CoreSeries.Table,
)

// seriesTargets returns scan destinations in [seriesSelect] order.
func seriesTargets(series *Series) []any {
	return []any{
		&series.ID, &series.Title, &series.Slug, &series.Author, &series.Description, &series.CoverURL,
		&series.Status, &series.Views, &series.IsFeatured, &series.CreatedAt, &series.UpdatedAt,
	}
}

// filterClause renders the WHERE clause of a listing and its arguments.
func filterClause(filter Filter) (string, []any) {
	var clause strings.Builder
	clause.WriteString(" WHERE TRUE")

	var args []any
	argID := 1

	// Free-text search over title and author
	if filter.Query != "" {
		clause.WriteString(fmt.Sprintf(" AND (s.%s ILIKE '%%' || $%d || '%%' OR s.%s ILIKE '%%' || $%d || '%%')",
			schema.CoreSeries.Title, argID, schema.CoreSeries.Author, argID))
		args = append(args, filter.Query)
		argID++
	}

	if filter.Status != "" {
		clause.WriteString(fmt.Sprintf(" AND s.%s = $%d", schema.CoreSeries.Status, argID))
		args = append(args, filter.Status)
		argID++
	}

	if filter.Featured != nil {
		clause.WriteString(fmt.Sprintf(" AND s.%s = $%d", schema.CoreSeries.IsFeatured, argID))
		args = append(args, *filter.Featured)
	}

	return clause.String(), args
}

/*
List returns a filtered, paginated slice of series and the total count.

Description: The total is computed with COUNT(*) OVER() so a page and its
count come back in one round-trip. A page past the end has no row to carry
the window, so the total is then counted separately. Without a sort key
featured series come first, then newest.
*/
func (repository *seriesRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Series, int, error) {

	where, args := filterClause(filter)
	argID := len(args) + 1

	var queryBuilder strings.Builder
	queryBuilder.WriteString(strings.Replace(seriesSelect, "FROM", ", COUNT(*) OVER() AS total_count FROM", 1))
	queryBuilder.WriteString(where)
	queryBuilder.WriteString(orderClause(filter))
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1))

	rows, err := repository.pool.Query(context, queryBuilder.String(), append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to list series: %w", err)
	}
	defer rows.Close()

	list := []*Series{}
	var totalCount int

	for rows.Next() {
		var series Series
		if err := rows.Scan(append(seriesTargets(&series), &totalCount)...); err != nil {
			return nil, 0, fmt.Errorf("postgres: failed to scan series: %w", err)
		}
		list = append(list, &series)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to iterate series: %w", err)
	}

	// Past the last page
	if len(list) == 0 && offset > 0 {
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s s", schema.CoreSeries.Table) + where
		if err := repository.pool.QueryRow(context, countQuery, args...).Scan(&totalCount); err != nil {
			return nil, 0, fmt.Errorf("postgres: failed to count series: %w", err)
		}
	}

	return list, totalCount, nil
}

// sortColumns whitelists the sortable columns.
var sortColumns = map[string]string{
	SortByViews:     schema.CoreSeries.Views,
	SortByUpdatedAt: schema.CoreSeries.UpdatedAt,
	SortByCreatedAt: schema.CoreSeries.CreatedAt,
}

// orderClause renders the ORDER BY of a listing. Unknown keys fall back to
// the featured-then-newest order; the id breaks ties so pages stay stable.
func orderClause(filter Filter) string {
	column, ok := sortColumns[filter.SortBy]
	if !ok {
		return fmt.Sprintf(" ORDER BY s.%s DESC, s.%s DESC, s.%s ASC",
			schema.CoreSeries.IsFeatured, schema.CoreSeries.CreatedAt, schema.CoreSeries.ID)
	}

	direction := "DESC"
	if strings.EqualFold(filter.SortDir, "asc") {
		direction = "ASC"
	}
	return fmt.Sprintf(" ORDER BY s.%s %s, s.%s ASC", column, direction, schema.CoreSeries.ID)
}

// FindByID implements [SeriesRepository].
func (repository *seriesRepository) FindByID(context context.Context, id string) (*Series, error) {
	var series Series
	query := seriesSelect + fmt.Sprintf(" WHERE s.%s = $1", schema.CoreSeries.ID)

	if err := repository.pool.QueryRow(context, query, id).Scan(seriesTargets(&series)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(resourceSeries)
		}
		return nil, fmt.Errorf("postgres: failed to find series: %w", err)
	}
	return &series, nil
}

// Exists implements [SeriesRepository].
func (repository *seriesRepository) Exists(context context.Context, id string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`, schema.CoreSeries.Table, schema.CoreSeries.ID)

	var exists bool
	if err := repository.pool.QueryRow(context, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres: failed to check series: %w", err)
	}
	return exists, nil
}

// Create implements [SeriesRepository].
func (repository *seriesRepository) Create(context context.Context, series *Series) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s, %s`,
		schema.CoreSeries.Table,
		schema.CoreSeries.ID, schema.CoreSeries.Title, schema.CoreSeries.Slug, schema.CoreSeries.Author,
		schema.CoreSeries.Description, schema.CoreSeries.CoverURL, schema.CoreSeries.Status, schema.CoreSeries.IsFeatured,
		schema.CoreSeries.CreatedAt, schema.CoreSeries.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		series.ID, series.Title, series.Slug, series.Author,
		series.Description, series.CoverURL, series.Status, series.IsFeatured,
	).Scan(&series.CreatedAt, &series.UpdatedAt)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict(fmt.Sprintf("A series with slug %q already exists", series.Slug))
		}
		return fmt.Errorf("postgres: failed to create series: %w", err)
	}
	return nil
}

// Update implements [SeriesRepository].
func (repository *seriesRepository) Update(context context.Context, series *Series) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = NOW()
		WHERE %s = $1
		RETURNING %s`,
		schema.CoreSeries.Table,
		schema.CoreSeries.Title, schema.CoreSeries.Author, schema.CoreSeries.Description,
		schema.CoreSeries.CoverURL, schema.CoreSeries.Status, schema.CoreSeries.IsFeatured, schema.CoreSeries.UpdatedAt,
		schema.CoreSeries.ID,
		schema.CoreSeries.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		series.ID, series.Title, series.Author, series.Description,
		series.CoverURL, series.Status, series.IsFeatured,
	).Scan(&series.UpdatedAt)
	return dberr.Wrap(err, resourceSeries)
}
