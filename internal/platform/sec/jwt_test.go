// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"crypto/rand"
	"crypto/rsa"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-toon/internal/platform/sec"
)

func newKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

/*
TestTokenService_RoundTrip issues and verifies an admin token.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	key := newKey(t)
	service := sec.NewTokenServiceFromKeys(key, &key.PublicKey, "yomira.app")

	token, err := service.GenerateAccessToken("admin-1", "root", string(sec.RoleAdmin), time.Hour)
	require.NoError(t, err)

	claims, err := service.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.UserID)
	assert.True(t, claims.IsAdmin())
}

/*
TestTokenService_Rejects covers expired, foreign-key and garbage tokens.
*/
func TestTokenService_Rejects(t *testing.T) {
	key := newKey(t)
	service := sec.NewTokenServiceFromKeys(key, &key.PublicKey, "yomira.app")

	expired, err := service.GenerateAccessToken("admin-1", "root", "admin", -time.Minute)
	require.NoError(t, err)

	otherKey := newKey(t)
	forged, err := sec.NewTokenServiceFromKeys(otherKey, &otherKey.PublicKey, "yomira.app").
		GenerateAccessToken("admin-1", "root", "admin", time.Hour)
	require.NoError(t, err)

	wrongIssuer, err := sec.NewTokenServiceFromKeys(key, &key.PublicKey, "elsewhere").
		GenerateAccessToken("admin-1", "root", "admin", time.Hour)
	require.NoError(t, err)

	tests := map[string]string{
		"expired":      expired,
		"forged":       forged,
		"wrong_issuer": wrongIssuer,
		"garbage":      "not-a-jwt",
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := service.VerifyToken(token)
			assert.ErrorIs(t, err, sec.ErrInvalidToken)
		})
	}
}

func TestHashPassword(t *testing.T) {
	hash, err := sec.HashPassword("correct horse")
	require.NoError(t, err)

	assert.True(t, sec.CheckPasswordHash("correct horse", hash))
	assert.False(t, sec.CheckPasswordHash("battery staple", hash))

	_, err = sec.HashPassword(strings.Repeat("x", 73))
	assert.ErrorIs(t, err, sec.ErrPasswordTooLong)
}

func TestUserRole_AtLeast(t *testing.T) {
	assert.True(t, sec.RoleAdmin.AtLeast(sec.RoleAdmin))
	assert.False(t, sec.UserRole("reader").AtLeast(sec.RoleAdmin))
	assert.False(t, sec.UserRole("").AtLeast(sec.RoleAdmin))
}
