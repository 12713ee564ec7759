package http

import (
	"context"
	"net/http"
	"time"
)

const readinessTimeout = 5 * time.Second

// ComponentCheck pings one runtime dependency for the readiness report.
type ComponentCheck struct {
	Name  string
	Check func(context.Context) error
}

// Handler serves the operational surface. Ledger operations are consumed
// through the application service API, so HTTP carries liveness and
// readiness only.
type Handler struct {
	checks []ComponentCheck
}

func NewHandler(checks ...ComponentCheck) *Handler {
	return &Handler{checks: checks}
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "ok")
}

func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	components := make(map[string]string, len(h.checks))
	status := http.StatusOK
	for _, check := range h.checks {
		state := "ok"
		if err := check.Check(ctx); err != nil {
			state = err.Error()
			status = http.StatusServiceUnavailable
			httpLogger().WarnContext(r.Context(), "readiness check failed",
				"operation", "readiness_check",
				"outcome", "failure",
				"component", check.Name,
				"request_id", requestIDFromContext(r.Context()),
				"error", err,
			)
		}
		components[check.Name] = state
	}

	if status != http.StatusOK {
		writeJSON(w, status, map[string]any{
			"status":     "error",
			"message":    "not ready",
			"components": components,
		})
		return
	}
	writeJSON(w, status, map[string]any{
		"status":     "success",
		"message":    "ready",
		"components": components,
	})
}
