// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// UserRole is the authorization level carried in an access token.
type UserRole string

// RoleAdmin manages series, chapters and page images. Readers are anonymous
// and carry no token.
const RoleAdmin UserRole = "admin"

var roleRank = map[UserRole]int{
	RoleAdmin: 1,
}

// AtLeast reports whether r grants everything target grants.
// An unknown role grants nothing.
func (r UserRole) AtLeast(target UserRole) bool {
	rank, known := roleRank[r]
	return known && rank >= roleRank[target]
}
