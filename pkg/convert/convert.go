// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package convert provides fault-tolerant conversions for query parameters.

Malformed input falls back to a default instead of producing an error. Do not
use it where a malformed value must be told apart from a missing one.
*/
package convert

import (
	"strconv"
	"strings"
)

// ToIntD converts a string to an int, returning def if it is empty or malformed.
func ToIntD(str string, def int) int {
	if str == "" {
		return def
	}

	if v, err := strconv.Atoi(strings.TrimSpace(str)); err == nil {
		return v
	}
	return def
}

// ToBoolPtr parses "true"/"false"/"1"/"0". Empty or malformed input yields nil,
// which callers treat as "no filter".
func ToBoolPtr(str string) *bool {
	if str == "" {
		return nil
	}

	v, err := strconv.ParseBool(strings.TrimSpace(str))
	if err != nil {
		return nil
	}
	return &v
}
