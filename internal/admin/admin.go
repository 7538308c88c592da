// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package admin implements administrator identity and login.

Administrators are the only authenticated principals. A successful login
returns an RS256 token carrying the admin role; every mutating chapter and
series endpoint requires it.
*/
package admin

import "time"

// # Domain Entities

// Admin is an account allowed to manage series and chapters.
type Admin struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"-"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// # Field Identifiers

const (
	FieldUsername = "username"
	FieldEmail    = "email"
	FieldPassword = "password"
)

// MinPasswordLength is enforced when an administrator is created.
const MinPasswordLength = 8
