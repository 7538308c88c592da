// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package middleware holds the handler decorators mounted in front of the
series, chapter and admin routes.

Chain order (outermost first):

	RequestID -> StructuredLogger -> RateLimit -> PanicRecovery -> Authenticate -> CORS

Domain handlers read what these install through ctxutil and never set
correlation, logging or auth state themselves.
*/
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/taibuivan/yomira-toon/internal/platform/apperr"
	"github.com/taibuivan/yomira-toon/internal/platform/constants"
	"github.com/taibuivan/yomira-toon/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-toon/internal/platform/respond"
	"github.com/taibuivan/yomira-toon/pkg/uuid"
)

// # Request Tracing

// RequestID keeps a client-supplied X-Request-ID or issues a new one, and
// echoes it on the response.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			requestID := request.Header.Get(constants.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.New()
			}

			writer.Header().Set(constants.HeaderXRequestID, requestID)
			next.ServeHTTP(writer, request.WithContext(ctxutil.WithRequestID(request.Context(), requestID)))
		})
	}
}

// # Access Logging

// responseRecorder remembers the status and body size written downstream.
type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (recorder *responseRecorder) WriteHeader(code int) {
	recorder.status = code
	recorder.ResponseWriter.WriteHeader(code)
}

func (recorder *responseRecorder) Write(body []byte) (int, error) {
	written, err := recorder.ResponseWriter.Write(body)
	recorder.bytes += written
	return written, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (recorder *responseRecorder) Unwrap() http.ResponseWriter {
	return recorder.ResponseWriter
}

/*
StructuredLogger installs a request-scoped logger and writes one
http_request_finished entry per request.

Description: 5xx responses log at ERROR and 4xx at WARN.
*/
func StructuredLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			started := time.Now()

			requestLogger := logger.With(
				slog.String("request_id", ctxutil.GetRequestID(request.Context())),
				slog.String("method", request.Method),
				slog.String("path", request.URL.Path),
				slog.String("ip", RealIP(request)),
			)

			ctx := ctxutil.WithLogger(request.Context(), requestLogger)
			recorder := &responseRecorder{ResponseWriter: writer, status: http.StatusOK}

			next.ServeHTTP(recorder, request.WithContext(ctx))

			level := slog.LevelInfo
			switch {
			case recorder.status >= http.StatusInternalServerError:
				level = slog.LevelError
			case recorder.status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}

			attrs := []any{
				slog.Int("status", recorder.status),
				slog.Int("bytes", recorder.bytes),
				slog.Int64("latency_ms", time.Since(started).Milliseconds()),
			}
			if request.ContentLength > 0 {
				attrs = append(attrs, slog.Int64("request_bytes", request.ContentLength))
			}

			requestLogger.Log(ctx, level, "http_request_finished", attrs...)
		})
	}
}

// # Rate Limiting

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

/*
RateLimit applies a per-IP token bucket.

Description: Rejected requests get 429 RATE_LIMITED with a Retry-After header.
Idle visitors are evicted by a janitor goroutine that stops when ctx is done.
*/
func RateLimit(ctx context.Context) func(http.Handler) http.Handler {
	var mu sync.Mutex
	visitors := make(map[string]*visitor)

	go func() {
		ticker := time.NewTicker(constants.RateLimitCleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				mu.Lock()
				for ip, seen := range visitors {
					if now.Sub(seen.lastSeen) > constants.RateLimitClientTTL {
						delete(visitors, ip)
					}
				}
				mu.Unlock()
			}
		}
	}()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ip := RealIP(request)
			now := time.Now()

			mu.Lock()
			current, found := visitors[ip]
			if !found {
				current = &visitor{limiter: rate.NewLimiter(rate.Limit(constants.DefaultRateLimitRPS), constants.DefaultRateLimitBurst)}
				visitors[ip] = current
			}
			current.lastSeen = now
			reservation := current.limiter.ReserveN(now, 1)
			mu.Unlock()

			if delay := reservation.DelayFrom(now); delay > 0 {
				reservation.CancelAt(now)
				retryAfter := int(math.Ceil(delay.Seconds()))
				writer.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				respond.Error(writer, request, apperr.RateLimited(retryAfter))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// # Panic Recovery

// PanicRecovery turns a handler panic into a logged 500 INTERNAL_ERROR.
func PanicRecovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}
				if recovered == http.ErrAbortHandler {
					panic(recovered)
				}

				stack := make([]byte, 4096)
				stack = stack[:runtime.Stack(stack, false)]

				logger.ErrorContext(request.Context(), "panic_recovered",
					slog.String("request_id", ctxutil.GetRequestID(request.Context())),
					slog.Any("panic", recovered),
					slog.String("stack", string(stack)),
				)
				respond.Error(writer, request, apperr.Internal(fmt.Errorf("panic: %v", recovered)))
			}()

			next.ServeHTTP(writer, request)
		})
	}
}

// # Cross-Origin Resource Sharing

// OriginPolicy decides which browser origins may call the API.
type OriginPolicy interface {
	AllowsOrigin(origin string) bool
}

const (
	corsMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	corsHeaders = "Accept, Authorization, Content-Type, Content-Length, X-Request-ID"
)

// CORS answers preflights and tags responses for origins the policy accepts.
// Requests without an Origin header pass through untouched.
func CORS(policy OriginPolicy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			origin := request.Header.Get(constants.HeaderOrigin)
			if origin == "" {
				next.ServeHTTP(writer, request)
				return
			}

			header := writer.Header()
			header.Add("Vary", "Origin")
			if policy.AllowsOrigin(origin) {
				header.Set("Access-Control-Allow-Origin", origin)
				header.Set("Access-Control-Allow-Methods", corsMethods)
				header.Set("Access-Control-Allow-Headers", corsHeaders)
				header.Set("Access-Control-Expose-Headers", "Content-Length, X-Request-ID, Retry-After")
				header.Set("Access-Control-Allow-Credentials", "true")
				header.Set("Access-Control-Max-Age", "600")
			}

			if request.Method == http.MethodOptions {
				writer.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// # Helpers

// RealIP resolves the client address: X-Real-IP, then the first
// X-Forwarded-For hop, then the socket peer.
func RealIP(request *http.Request) string {
	if ip := request.Header.Get(constants.HeaderXRealIP); ip != "" {
		return ip
	}

	if forwarded := request.Header.Get(constants.HeaderXForwardedFor); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}

	host, _, err := net.SplitHostPort(request.RemoteAddr)
	if err != nil {
		return request.RemoteAddr
	}
	return host
}
