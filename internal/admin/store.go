// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package admin

import (
	"context"
	"time"
)

// # Repository Interfaces

// AdminRepository defines persistence for administrator accounts.
type AdminRepository interface {
	// FindByUsername returns the account or apperr.NotFound.
	FindByUsername(ctx context.Context, username string) (*Admin, error)

	// Create persists a new account. A taken username or email is apperr.Conflict.
	Create(ctx context.Context, admin *Admin) error

	// RecordLogin stamps the account's last successful login.
	RecordLogin(ctx context.Context, id string, at time.Time) error
}

// TokenProvider issues signed access tokens.
type TokenProvider interface {
	GenerateAccessToken(userID, username, role string, timeToLive time.Duration) (string, error)
}
