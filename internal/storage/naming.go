// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

const (
	// tokenLength is the number of random base36 characters in a generated name.
	tokenLength = 6

	tokenAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// extensionPattern accepts short alphanumeric extensions only.
var extensionPattern = regexp.MustCompile(`^[a-z0-9]{1,8}$`)

// GenerateFileName builds the stored name `{unixMillis}-{token}.{ext}`.
//
// The extension comes from the client's file name, lowercased. When it is
// missing or unusable, the canonical extension of contentType is used instead.
func GenerateFileName(originalName, contentType string, now time.Time) (string, error) {
	token, err := randomToken(tokenLength)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s-%s.%s", strconv.FormatInt(now.UnixMilli(), 10), token, extensionFor(originalName, contentType)), nil
}

// extensionFor picks the stored file extension, without the leading dot.
func extensionFor(originalName, contentType string) string {
	extension := strings.ToLower(strings.TrimPrefix(filepath.Ext(originalName), "."))
	if extensionPattern.MatchString(extension) {
		return extension
	}

	if detected := mimetype.Lookup(contentType); detected != nil && detected.Extension() != "" {
		return strings.TrimPrefix(detected.Extension(), ".")
	}

	return "bin"
}

// StoredAt recovers the write time encoded in a generated file name.
//
// It accepts a bare name or a full reference and reports false for names this
// package did not generate.
func StoredAt(reference string) (time.Time, bool) {
	name := path.Base(reference)

	millis, _, found := strings.Cut(name, "-")
	if !found {
		return time.Time{}, false
	}

	value, err := strconv.ParseInt(millis, 10, 64)
	if err != nil || value <= 0 {
		return time.Time{}, false
	}

	return time.UnixMilli(value), true
}

// randomToken returns n characters drawn uniformly from tokenAlphabet.
func randomToken(n int) (string, error) {
	var builder strings.Builder
	builder.Grow(n)

	alphabetSize := big.NewInt(int64(len(tokenAlphabet)))
	for range n {
		index, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("storage: failed to generate file token: %w", err)
		}
		builder.WriteByte(tokenAlphabet[index.Int64()])
	}

	return builder.String(), nil
}
