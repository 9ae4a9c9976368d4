package handler

import (
	"fmt"
	"net/http"

	"github.com/salescope/salescope/internal/dataset"
	"github.com/salescope/salescope/internal/models"
)

const version = "1.0.0"

// HealthHandler handles GET /health. The only dependency worth
// checking is the dataset: the process is useless without it, and the
// fallback interpreter being down only degrades unusual queries.
type HealthHandler struct {
	store           *dataset.Store
	fallbackEnabled bool
}

func NewHealthHandler(store *dataset.Store, fallbackEnabled bool) *HealthHandler {
	return &HealthHandler{store: store, fallbackEnabled: fallbackEnabled}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"server": "ok"}
	status := "healthy"
	code := http.StatusOK

	if h.store == nil || h.store.Len() == 0 {
		checks["dataset"] = "no records loaded"
		status = "degraded"
		code = http.StatusServiceUnavailable
	} else {
		checks["dataset"] = fmt.Sprintf("ok (%d rows)", h.store.Len())
	}

	if h.fallbackEnabled {
		checks["fallback_interpreter"] = "enabled"
	} else {
		checks["fallback_interpreter"] = "disabled"
	}

	models.WriteJSON(w, code, models.HealthResponse{
		Status:  status,
		Version: version,
		Checks:  checks,
	})
}
