// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package chapter provides the PostgreSQL implementation for chapter data access.

Every multi-statement write runs in a transaction that first locks the owning
chapter row (`SELECT ... FOR UPDATE`). That lock serialises uploads, reorders
and deletion per chapter, so image orders are always computed from committed
state.
*/
package chapter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/yomira-toon/internal/platform/apperr"
	"github.com/taibuivan/yomira-toon/internal/platform/database/schema"
	"github.com/taibuivan/yomira-toon/internal/platform/dberr"
)

const resourceChapter = "Chapter"

// querier is satisfied by both [pgxpool.Pool] and [pgx.Tx].
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// # PostgreSQL Repository

// chapterRepository implements [ChapterRepository] using pgx.
type chapterRepository struct {
	pool *pgxpool.Pool
}

// NewChapterRepository constructs a PostgreSQL backed chapter store.
func NewChapterRepository(pool *pgxpool.Pool) ChapterRepository {
	return &chapterRepository{pool: pool}
}

// chapterSelect is the projection shared by every chapter read, image count included.
var chapterSelect = fmt.Sprintf(`
	SELECT
		c.%s, c.%s, c.%s, c.%s, c.%s,
		c.%s, c.%s, c.%s, c.%s, c.%s,
		(SELECT COUNT(*) FROM %s i WHERE i.%s = c.%s) AS image_count
	FROM %s c
`,
	schema.CoreChapter.ID, schema.CoreChapter.SeriesID, schema.CoreChapter.Title, schema.CoreChapter.ChapterNumber, schema.CoreChapter.PublishDate,
	schema.CoreChapter.ScheduledAt, schema.CoreChapter.IsPublished, schema.CoreChapter.Views, schema.CoreChapter.CreatedAt, schema.CoreChapter.UpdatedAt,
	schema.CoreChapterImage.Table, schema.CoreChapterImage.ChapterID, schema.CoreChapter.ID,
	schema.CoreChapter.Table,
)

// chapterTargets returns scan destinations in [chapterSelect] order.
func chapterTargets(chapter *Chapter) []any {
	return []any{
		&chapter.ID, &chapter.SeriesID, &chapter.Title, &chapter.Number, &chapter.PublishDate,
		&chapter.ScheduledAt, &chapter.IsPublished, &chapter.Views, &chapter.CreatedAt, &chapter.UpdatedAt,
		&chapter.ImageCount,
	}
}

// findOne runs a single-row chapter query.
func (repository *chapterRepository) findOne(context context.Context, where string, args ...any) (*Chapter, error) {
	var chapter Chapter
	err := repository.pool.QueryRow(context, chapterSelect+where, args...).Scan(chapterTargets(&chapter)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(resourceChapter)
		}
		return nil, fmt.Errorf("postgres: failed to find chapter: %w", err)
	}
	return &chapter, nil
}

// FindByID implements [ChapterRepository].
func (repository *chapterRepository) FindByID(context context.Context, id string) (*Chapter, error) {
	return repository.findOne(context, fmt.Sprintf(" WHERE c.%s = $1", schema.CoreChapter.ID), id)
}

// FindBySeriesAndNumber implements [ChapterRepository].
func (repository *chapterRepository) FindBySeriesAndNumber(context context.Context, seriesID string, number int) (*Chapter, error) {
	return repository.findOne(context,
		fmt.Sprintf(" WHERE c.%s = $1 AND c.%s = $2", schema.CoreChapter.SeriesID, schema.CoreChapter.ChapterNumber),
		seriesID, number,
	)
}

// sortColumns whitelists the sortable columns.
var sortColumns = map[string]string{
	SortByNumber:    schema.CoreChapter.ChapterNumber,
	SortByCreatedAt: schema.CoreChapter.CreatedAt,
	SortByViews:     schema.CoreChapter.Views,
}

// filterClause renders the WHERE clause of a series listing and its arguments.
func filterClause(seriesID string, filter Filter) (string, []any) {
	var clause strings.Builder
	clause.WriteString(fmt.Sprintf(" WHERE c.%s = $1", schema.CoreChapter.SeriesID))

	args := []any{seriesID}

	// Title search
	if filter.Query != "" {
		clause.WriteString(fmt.Sprintf(" AND c.%s ILIKE '%%' || $2 || '%%'", schema.CoreChapter.Title))
		args = append(args, filter.Query)
	}

	// Status filter
	switch filter.Status {
	case StatusPublished:
		clause.WriteString(fmt.Sprintf(" AND c.%s", schema.CoreChapter.IsPublished))
	case StatusDraft:
		clause.WriteString(fmt.Sprintf(" AND NOT c.%s AND c.%s IS NULL", schema.CoreChapter.IsPublished, schema.CoreChapter.ScheduledAt))
	case StatusScheduled:
		clause.WriteString(fmt.Sprintf(" AND NOT c.%s AND c.%s IS NOT NULL", schema.CoreChapter.IsPublished, schema.CoreChapter.ScheduledAt))
	}

	return clause.String(), args
}

/*
ListBySeries retrieves a page of chapters for a series.

Description: Title search uses ILIKE; the status filter is derived from the
ispublished/scheduledat pair. The total ignores pagination and is computed
with a window function in the same round-trip, or with a separate count when
the page lies past the end.
*/
func (repository *chapterRepository) ListBySeries(context context.Context, seriesID string, filter Filter, limit, offset int) ([]*Chapter, int, error) {

	where, args := filterClause(seriesID, filter)
	argID := len(args) + 1

	// Base query with the total count window
	var queryBuilder strings.Builder
	queryBuilder.WriteString(strings.Replace(chapterSelect, "AS image_count", "AS image_count, COUNT(*) OVER() AS total_count", 1))
	queryBuilder.WriteString(where)

	// Ordering
	sortColumn, ok := sortColumns[filter.SortBy]
	if !ok {
		sortColumn = schema.CoreChapter.ChapterNumber
	}
	sortDir := "DESC"
	if strings.EqualFold(filter.SortDir, "asc") {
		sortDir = "ASC"
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY c.%s %s, c.%s ASC", sortColumn, sortDir, schema.CoreChapter.ID))
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1))

	rows, err := repository.pool.Query(context, queryBuilder.String(), append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to list chapters: %w", err)
	}
	defer rows.Close()

	chapters := []*Chapter{}
	var totalCount int

	for rows.Next() {
		var chapter Chapter
		if err := rows.Scan(append(chapterTargets(&chapter), &totalCount)...); err != nil {
			return nil, 0, fmt.Errorf("postgres: failed to scan chapter: %w", err)
		}
		chapters = append(chapters, &chapter)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to iterate chapters: %w", err)
	}

	// Past the last page
	if len(chapters) == 0 && offset > 0 {
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s c", schema.CoreChapter.Table) + where
		if err := repository.pool.QueryRow(context, countQuery, args...).Scan(&totalCount); err != nil {
			return nil, 0, fmt.Errorf("postgres: failed to count chapters: %w", err)
		}
	}

	return chapters, totalCount, nil
}

// ListSummaries implements [ChapterRepository].
func (repository *chapterRepository) ListSummaries(context context.Context, seriesID string) ([]*Summary, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s FROM %s WHERE %s = $1 ORDER BY %s ASC`,
		schema.CoreChapter.ID, schema.CoreChapter.ChapterNumber, schema.CoreChapter.Title,
		schema.CoreChapter.Table,
		schema.CoreChapter.SeriesID,
		schema.CoreChapter.ChapterNumber,
	)

	rows, err := repository.pool.Query(context, query, seriesID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list chapter summaries: %w", err)
	}
	defer rows.Close()

	summaries := []*Summary{}
	for rows.Next() {
		var summary Summary
		if err := rows.Scan(&summary.ID, &summary.Number, &summary.Title); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan chapter summary: %w", err)
		}
		summaries = append(summaries, &summary)
	}

	return summaries, rows.Err()
}

/*
Create inserts a new chapter row.

Returns:
  - error: apperr.Conflict when (series, number) is already taken
*/
func (repository *chapterRepository) Create(context context.Context, chapter *Chapter) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s, %s
	`,
		schema.CoreChapter.Table,
		schema.CoreChapter.ID, schema.CoreChapter.SeriesID, schema.CoreChapter.Title, schema.CoreChapter.ChapterNumber,
		schema.CoreChapter.PublishDate, schema.CoreChapter.ScheduledAt, schema.CoreChapter.IsPublished,
		schema.CoreChapter.CreatedAt, schema.CoreChapter.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		chapter.ID, chapter.SeriesID, chapter.Title, chapter.Number,
		chapter.PublishDate, chapter.ScheduledAt, chapter.IsPublished,
	).Scan(&chapter.CreatedAt, &chapter.UpdatedAt)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict(fmt.Sprintf("Chapter %d already exists in this series", chapter.Number))
		}
		return fmt.Errorf("postgres: failed to create chapter: %w", err)
	}

	return nil
}

// UpdateStatus implements [ChapterRepository].
func (repository *chapterRepository) UpdateStatus(context context.Context, chapter *Chapter) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $1, %s = $2, %s = $3, %s = NOW()
		WHERE %s = $4
		RETURNING %s
	`,
		schema.CoreChapter.Table,
		schema.CoreChapter.PublishDate, schema.CoreChapter.ScheduledAt, schema.CoreChapter.IsPublished, schema.CoreChapter.UpdatedAt,
		schema.CoreChapter.ID,
		schema.CoreChapter.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		chapter.PublishDate, chapter.ScheduledAt, chapter.IsPublished, chapter.ID,
	).Scan(&chapter.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound(resourceChapter)
		}
		return fmt.Errorf("postgres: failed to update chapter status: %w", err)
	}

	return nil
}

/*
Delete removes a chapter with its catalog rows.

Description: The chapter row is locked first so no upload can commit new
images between the two deletes. Removed image rows are returned so the caller
can release their stored bytes after commit.
*/
func (repository *chapterRepository) Delete(context context.Context, id string) ([]*Image, error) {

	// Begin transaction
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to begin transaction: %w", err)
	}
	defer transaction.Rollback(context)

	if err := lockChapter(context, transaction, id); err != nil {
		return nil, err
	}

	// Catalog rows first
	deleteImages := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 RETURNING %s`,
		schema.CoreChapterImage.Table, schema.CoreChapterImage.ChapterID, imageColumns)

	rows, err := transaction.Query(context, deleteImages, id)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to delete chapter images: %w", err)
	}

	removed, err := scanImages(rows)
	if err != nil {
		return nil, err
	}

	// Then the chapter itself
	deleteChapter := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.CoreChapter.Table, schema.CoreChapter.ID)
	if _, err := transaction.Exec(context, deleteChapter, id); err != nil {
		return nil, fmt.Errorf("postgres: failed to delete chapter: %w", err)
	}

	if err := transaction.Commit(context); err != nil {
		return nil, fmt.Errorf("postgres: failed to commit chapter deletion: %w", err)
	}

	return removed, nil
}

// FindAdjacent implements [ChapterRepository]. Only published chapters are candidates.
func (repository *chapterRepository) FindAdjacent(context context.Context, seriesID string, number int, direction Direction) (*Chapter, error) {
	comparison, sortDir := ">", "ASC"
	if direction == Previous {
		comparison, sortDir = "<", "DESC"
	}

	where := fmt.Sprintf(" WHERE c.%s = $1 AND c.%s AND c.%s %s $2 ORDER BY c.%s %s LIMIT 1",
		schema.CoreChapter.SeriesID,
		schema.CoreChapter.IsPublished,
		schema.CoreChapter.ChapterNumber, comparison,
		schema.CoreChapter.ChapterNumber, sortDir,
	)

	return repository.findOne(context, where, seriesID, number)
}

// IncrementViews bumps the chapter and its series in one transaction.
func (repository *chapterRepository) IncrementViews(context context.Context, id string) error {

	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin transaction: %w", err)
	}
	defer transaction.Rollback(context)

	// Chapter counter, returning the owner
	var seriesID string
	chapterQuery := fmt.Sprintf(`UPDATE %s SET %s = %s + 1 WHERE %s = $1 RETURNING %s`,
		schema.CoreChapter.Table, schema.CoreChapter.Views, schema.CoreChapter.Views, schema.CoreChapter.ID, schema.CoreChapter.SeriesID)

	if err := transaction.QueryRow(context, chapterQuery, id).Scan(&seriesID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound(resourceChapter)
		}
		return fmt.Errorf("postgres: failed to increment chapter views: %w", err)
	}

	// Series aggregate counter
	seriesQuery := fmt.Sprintf(`UPDATE %s SET %s = %s + 1 WHERE %s = $1`,
		schema.CoreSeries.Table, schema.CoreSeries.Views, schema.CoreSeries.Views, schema.CoreSeries.ID)

	if _, err := transaction.Exec(context, seriesQuery, seriesID); err != nil {
		return fmt.Errorf("postgres: failed to increment series views: %w", err)
	}

	return transaction.Commit(context)
}

// lockChapter takes the per-chapter write lock inside a transaction.
func lockChapter(context context.Context, transaction pgx.Tx, chapterID string) error {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 FOR UPDATE`,
		schema.CoreChapter.ID, schema.CoreChapter.Table, schema.CoreChapter.ID)

	var locked string
	if err := transaction.QueryRow(context, query, chapterID).Scan(&locked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound(resourceChapter)
		}
		return fmt.Errorf("postgres: failed to lock chapter: %w", err)
	}

	return nil
}
