// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package uuid issues the identifiers used for series, chapters, page images
// and administrators. New identifiers are version 7, so rows inserted together
// sort together.
package uuid

import "github.com/google/uuid"

// canonicalLength is the length of the hyphenated 8-4-4-4-12 form.
const canonicalLength = 36

// New returns a fresh UUIDv7 in canonical form. It panics only when the
// system entropy source fails.
func New() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Valid reports whether s is a UUID of any version in canonical form.
// Braced and urn-prefixed spellings are rejected so path parameters map to one row.
func Valid(s string) bool {
	return len(s) == canonicalLength && uuid.Validate(s) == nil
}
