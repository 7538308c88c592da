// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/taibuivan/yomira-toon/internal/platform/apperr"
	"github.com/taibuivan/yomira-toon/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-toon/internal/platform/respond"
	"github.com/taibuivan/yomira-toon/internal/platform/sec"
)

// unauthorizedMessage is the single message returned for every auth failure,
// whether the token is missing, malformed, expired or forged.
const unauthorizedMessage = "Unauthorized"

// TokenVerifier checks a bearer token and returns its claims. *sec.TokenService satisfies it.
type TokenVerifier interface {
	VerifyToken(tokenStr string) (*sec.AuthClaims, error)
}

// Authenticate extracts and verifies the JWT from the Authorization header.
//
// # Flow
//  1. If the 'Authorization' header is absent, the request proceeds as anonymous.
//  2. Otherwise it must be 'Bearer <token>' and verify via [TokenVerifier].
//  3. Verified [*sec.AuthClaims] are injected into the request context.
//
// Any failure yields the same 401 body so callers cannot tell which check failed.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get("Authorization")

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Format Validation ──────────────────────────────────────────
			scheme, tokenStr, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(tokenStr) == "" {
				respond.Error(writer, request, apperr.Unauthorized(unauthorizedMessage))
				return
			}

			// ── 3. Token Verification ─────────────────────────────────────────
			claims, err := verifier.VerifyToken(strings.TrimSpace(tokenStr))
			if err != nil {
				ctxutil.GetLogger(request.Context()).DebugContext(request.Context(), "token_rejected", slog.Any("error", err))
				respond.Error(writer, request, apperr.Unauthorized(unauthorizedMessage))
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithClaims(request.Context(), claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireRole blocks requests if the caller lacks the required role.
//
// Must be registered in the router AFTER [Authenticate]. Anonymous callers and
// callers with an insufficient role receive the same 401 response.
func RequireRole(role sec.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims := ctxutil.GetClaims(request.Context())
			if claims == nil || !sec.UserRole(claims.Role).AtLeast(role) {
				respond.Error(writer, request, apperr.Unauthorized(unauthorizedMessage))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// RequireAdmin guards every mutating series, chapter and page-image route.
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(sec.RoleAdmin)(next)
}
