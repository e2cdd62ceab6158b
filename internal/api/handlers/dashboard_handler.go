package handlers

import (
	"context"
	"net/http"

	"github.com/reviewuplift/backend/internal/api/middleware"
	"github.com/reviewuplift/backend/internal/domain/entities"
)

// DashboardService defines the stats operations used by the handler.
type DashboardService interface {
	Stats(ctx context.Context, businessID string) (*entities.BusinessStats, error)
}

// DashboardHandler serves the business dashboard numbers.
type DashboardHandler struct {
	service DashboardService
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(service DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// GetStats handles GET /api/business/dashboard
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	stats, err := h.service.Stats(r.Context(), principal.UID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}
