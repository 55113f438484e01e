package api

import (
	"net/http"

	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/api/respond"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/health"
)

type HealthHandler struct {
	checker health.HealthChecker
}

func NewHealthHandler(c health.HealthChecker) *HealthHandler {
	return &HealthHandler{checker: c}
}

// CheckHealth GET /api/health
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	if h.checker != nil && !h.checker.IsHealthy() {
		respond.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
