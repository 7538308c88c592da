// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var generatedName = regexp.MustCompile(`^1700000000123-[0-9a-z]{6}\.[a-z0-9]+$`)

func TestGenerateFileName(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	tests := []struct {
		name        string
		original    string
		contentType string
		extension   string
	}{
		{"keeps_extension", "page01.png", "image/png", ".png"},
		{"lowercases_extension", "PAGE.JPG", "image/jpeg", ".jpg"},
		{"falls_back_to_type", "scan", "image/webp", ".webp"},
		{"rejects_odd_extension", "cover.p$g", "image/gif", ".gif"},
		{"unknown_everything", "noext", "application/x-unknown", ".bin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, err := GenerateFileName(tt.original, tt.contentType, now)
			require.NoError(t, err)

			assert.Regexp(t, generatedName, name)
			assert.Truef(t, len(name) > len(tt.extension) && name[len(name)-len(tt.extension):] == tt.extension,
				"%q should end with %q", name, tt.extension)
		})
	}
}

func TestGenerateFileName_Unique(t *testing.T) {
	now := time.Now()
	seen := make(map[string]struct{}, 500)

	for range 500 {
		name, err := GenerateFileName("p.png", "image/png", now)
		require.NoError(t, err)
		_, duplicate := seen[name]
		require.False(t, duplicate, "duplicate name %s", name)
		seen[name] = struct{}{}
	}
}

func TestCheckNamespace(t *testing.T) {
	assert.NoError(t, checkNamespace("0190a6f2-7c1e-7b3a-9f00-1234567890ab"))

	for _, bad := range []string{"", "..", "a/b", "../etc", "a b", "chapter.1"} {
		assert.ErrorIs(t, checkNamespace(bad), ErrInvalidNamespace, bad)
	}
}

func TestStoredAt(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	name, err := GenerateFileName("a.png", "image/png", now)
	require.NoError(t, err)

	storedAt, ok := StoredAt("https://cdn.example.com/chapters/abc/" + name)
	require.True(t, ok)
	assert.True(t, storedAt.Equal(now))

	for _, foreign := range []string{"cover.png", "/uploads/chapters/abc/x-y.png", "-abc.png", ""} {
		_, ok := StoredAt(foreign)
		assert.False(t, ok, foreign)
	}
}
