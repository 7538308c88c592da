// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/taibuivan/yomira-toon/internal/platform/respond"
)

// readinessCheckTimeout bounds each dependency probe.
const readinessCheckTimeout = 2 * time.Second

// HealthCheck is one named dependency probe for the /ready endpoint.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type healthHandler struct {
	checks []HealthCheck
	logger *slog.Logger
}

// NewHealthHandlers creates the /health and /ready http.HandlerFuncs.
func NewHealthHandlers(checks []HealthCheck, logger *slog.Logger) (liveness, readiness http.HandlerFunc) {
	handler := &healthHandler{checks: checks, logger: logger}
	return handler.liveness, handler.readiness
}

// liveness handles GET /health (Liveness probe).
func (handler *healthHandler) liveness(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, map[string]string{"status": "ok"})
}

type checkResult struct {
	Name  string `json:"name"`
	IsOK  bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// readiness handles GET /ready (Readiness probe). Any failed check answers 503.
func (handler *healthHandler) readiness(writer http.ResponseWriter, request *http.Request) {
	results := make([]checkResult, 0, len(handler.checks))
	isSystemReady := true

	for _, check := range handler.checks {
		ctx, cancel := context.WithTimeout(request.Context(), readinessCheckTimeout)
		err := check.Check(ctx)
		cancel()

		result := checkResult{Name: check.Name, IsOK: err == nil}
		if err != nil {
			result.Error = err.Error()
			isSystemReady = false
			handler.logger.Error("readiness_check_failed", slog.String("dependency", check.Name), slog.Any("error", err))
		}
		results = append(results, result)
	}

	payload := map[string]any{"status": "ready", "checks": results}
	if !isSystemReady {
		payload["status"] = "degraded"
		respond.JSON(writer, http.StatusServiceUnavailable, respond.SuccessEnvelope{Data: payload})
		return
	}

	respond.OK(writer, payload)
}
