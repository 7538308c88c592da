// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/yomira-toon/internal/platform/apperr"
	"github.com/taibuivan/yomira-toon/internal/platform/database/schema"
	"github.com/taibuivan/yomira-toon/internal/platform/dberr"
)

const resourceAdmin = "Administrator"

// PostgresAdminRepository implements [AdminRepository] against users.admin.
type PostgresAdminRepository struct {
	pool *pgxpool.Pool
}

// NewAdminRepository constructs a PostgreSQL backed administrator store.
func NewAdminRepository(pool *pgxpool.Pool) *PostgresAdminRepository {
	return &PostgresAdminRepository{pool: pool}
}

/*
FindByUsername retrieves an administrator by username.

Returns:
  - *Admin: Hydrated account, password hash included
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresAdminRepository) FindByUsername(context context.Context, username string) (*Admin, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1`,
		schema.UsersAdmin.ID, schema.UsersAdmin.Username, schema.UsersAdmin.Email, schema.UsersAdmin.Name,
		schema.UsersAdmin.PasswordHash, schema.UsersAdmin.LastLoginAt, schema.UsersAdmin.CreatedAt,
		schema.UsersAdmin.Table,
		schema.UsersAdmin.Username,
	)

	admin := &Admin{}
	err := repository.pool.QueryRow(context, query, username).Scan(
		&admin.ID,
		&admin.Username,
		&admin.Email,
		&admin.Name,
		&admin.PasswordHash,
		&admin.LastLoginAt,
		&admin.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(resourceAdmin)
		}
		return nil, fmt.Errorf("postgres: failed to find administrator: %w", err)
	}

	return admin, nil
}

// Create implements [AdminRepository].
func (repository *PostgresAdminRepository) Create(context context.Context, admin *Admin) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s`,
		schema.UsersAdmin.Table,
		schema.UsersAdmin.ID, schema.UsersAdmin.Username, schema.UsersAdmin.Email, schema.UsersAdmin.Name, schema.UsersAdmin.PasswordHash,
		schema.UsersAdmin.CreatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		admin.ID, admin.Username, admin.Email, admin.Name, admin.PasswordHash,
	).Scan(&admin.CreatedAt)

	return dberr.Wrap(err, resourceAdmin)
}

// RecordLogin implements [AdminRepository].
func (repository *PostgresAdminRepository) RecordLogin(context context.Context, id string, at time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2 WHERE %s = $1`,
		schema.UsersAdmin.Table, schema.UsersAdmin.LastLoginAt, schema.UsersAdmin.ID)

	if _, err := repository.pool.Exec(context, query, id, at); err != nil {
		return fmt.Errorf("postgres: failed to record administrator login: %w", err)
	}
	return nil
}
