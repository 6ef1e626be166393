package handler

import (
	"context"
	"net/http"
	"time"

	"roombook/pkg/contracts"
	httputil "roombook/pkg/http"
	"roombook/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

const readyCheckTimeout = 2 * time.Second

type CheckResult struct {
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Details any    `json:"details,omitempty"`
}

type HealthResponse struct {
	Status string                 `json:"status"`
	Checks map[string]CheckResult `json:"checks,omitempty"`
}

type HealthHandler struct {
	checkers []contracts.HealthChecker
	log      *logger.Logger
}

func NewHealthHandler(log *logger.Logger, checkers ...contracts.HealthChecker) *HealthHandler {
	return &HealthHandler{
		checkers: checkers,
		log:      log,
	}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Health", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
	defer cancel()

	resp := HealthResponse{
		Status: "ready",
		Checks: make(map[string]CheckResult, len(h.checkers)),
	}
	status := http.StatusOK

	for _, checker := range h.checkers {
		result := CheckResult{Status: "ok"}
		if err := checker.Check(ctx); err != nil {
			h.log.Error("Readiness check failed",
				"check", checker.Name(),
				"error", err,
				"path", r.URL.Path,
			)
			result.Status = "error"
			result.Error = err.Error()
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
		}
		if reporter, ok := checker.(contracts.DetailReporter); ok {
			result.Details = reporter.Details()
		}
		resp.Checks[checker.Name()] = result
	}

	if err := httputil.WriteJSON(w, status, resp); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}
