// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slug derives ASCII URL slugs for series titles
// (e.g. "Tháp Bình Minh" -> "thap-binh-minh").
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLength caps generated slugs; longer ones are cut at a hyphen where possible.
const MaxLength = 80

// stripMarks decomposes accented letters and drops the combining marks.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// From converts s into a lowercase slug of [a-z0-9] runs joined by single hyphens.
// Letters without an ASCII form are dropped; an all-symbol title yields "".
func From(s string) string {
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}

	var builder strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r == 'đ':
			r = 'd'
		case r > unicode.MaxASCII:
			pendingHyphen = builder.Len() > 0
			continue
		}

		if ('a' <= r && r <= 'z') || ('0' <= r && r <= '9') {
			if pendingHyphen {
				builder.WriteByte('-')
				pendingHyphen = false
			}
			builder.WriteRune(r)
			continue
		}
		pendingHyphen = builder.Len() > 0
	}

	return truncate(builder.String())
}

func truncate(slug string) string {
	if len(slug) <= MaxLength {
		return slug
	}

	cut := slug[:MaxLength]
	if i := strings.LastIndexByte(cut, '-'); i > MaxLength/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, "-")
}
