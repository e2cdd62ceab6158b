package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/reviewuplift/backend/internal/domain/entities"
)

// AdminService defines the platform-operator operations used by the handler.
type AdminService interface {
	ListBusinesses(ctx context.Context, limit, offset int) ([]*entities.BusinessOverview, error)
	UpdateBusinessStatus(ctx context.Context, businessID string, status entities.BusinessStatus) error
	ListUsers(ctx context.Context, limit, offset int) ([]*entities.User, error)
}

// AdminHandler serves platform oversight. The router mounts it behind the
// admin-role middleware.
type AdminHandler struct {
	service AdminService
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(service AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

func paginationParams(r *http.Request) (limit, offset int) {
	limit = 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}

// ListBusinesses handles GET /api/admin/businesses
func (h *AdminHandler) ListBusinesses(w http.ResponseWriter, r *http.Request) {
	limit, offset := paginationParams(r)

	overviews, err := h.service.ListBusinesses(r.Context(), limit, offset)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"businesses": overviews,
		"count":      len(overviews),
	})
}

type businessStatusRequest struct {
	Status entities.BusinessStatus `json:"status"`
}

// UpdateBusinessStatus handles PATCH /api/admin/businesses/{id}/status
func (h *AdminHandler) UpdateBusinessStatus(w http.ResponseWriter, r *http.Request) {
	businessID := r.PathValue("id")
	if businessID == "" {
		respondWithError(w, http.StatusBadRequest, "business ID is required")
		return
	}

	var payload businessStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := h.service.UpdateBusinessStatus(r.Context(), businessID, payload.Status); err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": string(payload.Status)})
}

// ListUsers handles GET /api/admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := paginationParams(r)

	users, err := h.service.ListUsers(r.Context(), limit, offset)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"users": users,
		"count": len(users),
	})
}
