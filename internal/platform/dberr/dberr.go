// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/yomira-toon/internal/platform/apperr"
)

// uniqueViolation is the Postgres SQLSTATE for unique constraint violations.
const uniqueViolation = "23505"

// foreignKeyViolation is the Postgres SQLSTATE for foreign key violations.
const foreignKeyViolation = "23503"

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
//
// resource names the entity for not-found and conflict messages (e.g. "Chapter").
func Wrap(err error, resource string) error {
	if err == nil {
		return nil
	}

	// Already classified upstream
	if apperr.IsAppError(err) {
		return err
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(resource)
	}

	// 2. Constraint violations
	var pgError *pgconn.PgError
	if errors.As(err, &pgError) {
		switch pgError.Code {
		case uniqueViolation:
			conflict := apperr.Conflict(resource + " already exists")
			conflict.Cause = err
			return conflict
		case foreignKeyViolation:
			notFound := apperr.NotFound(resource)
			notFound.Cause = err
			return notFound
		}
	}

	// 3. Unknown query errors become Internal Server Errors
	return apperr.Internal(err)
}

// IsUniqueViolation reports whether err is a Postgres unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgError *pgconn.PgError
	return errors.As(err, &pgError) && pgError.Code == uniqueViolation
}
