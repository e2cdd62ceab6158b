package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/reviewuplift/backend/internal/api/middleware"
	"github.com/reviewuplift/backend/internal/domain/entities"
)

// BusinessService defines the tenant-profile operations used by the handler.
type BusinessService interface {
	Create(ctx context.Context, business *entities.Business) error
	GetByID(ctx context.Context, id string) (*entities.Business, error)
	Update(ctx context.Context, business *entities.Business) error
	Branches(ctx context.Context, businessID string) ([]entities.Branch, error)
	AddBranch(ctx context.Context, businessID string, branch entities.Branch) (*entities.Branch, error)
	UpdateBranch(ctx context.Context, businessID string, branch entities.Branch) error
	RemoveBranch(ctx context.Context, businessID, branchID string) error
}

// BusinessHandler serves the business profile and its branch settings.
type BusinessHandler struct {
	service BusinessService
}

// NewBusinessHandler creates a new business handler.
func NewBusinessHandler(service BusinessService) *BusinessHandler {
	return &BusinessHandler{service: service}
}

// GetProfile handles GET /api/business/profile
func (h *BusinessHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	business, err := h.service.GetByID(r.Context(), principal.UID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, business)
}

// CreateProfile handles POST /api/business/profile
func (h *BusinessHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var business entities.Business
	if err := json.NewDecoder(r.Body).Decode(&business); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	// The tenant row is keyed by its owner, whatever the payload says.
	business.ID = principal.UID
	business.OwnerEmail = principal.Email

	if err := h.service.Create(r.Context(), &business); err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, business)
}

// UpdateProfile handles PUT /api/business/profile
func (h *BusinessHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var business entities.Business
	if err := json.NewDecoder(r.Body).Decode(&business); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	business.ID = principal.UID

	if err := h.service.Update(r.Context(), &business); err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, business)
}

// ListBranches handles GET /api/business/branches
func (h *BusinessHandler) ListBranches(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	branches, err := h.service.Branches(r.Context(), principal.UID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"branches": branches})
}

// AddBranch handles POST /api/business/branches
func (h *BusinessHandler) AddBranch(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var branch entities.Branch
	if err := json.NewDecoder(r.Body).Decode(&branch); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	created, err := h.service.AddBranch(r.Context(), principal.UID, branch)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

// UpdateBranch handles PUT /api/business/branches/{id}
func (h *BusinessHandler) UpdateBranch(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var branch entities.Branch
	if err := json.NewDecoder(r.Body).Decode(&branch); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	branch.ID = r.PathValue("id")
	if branch.ID == "" {
		respondWithError(w, http.StatusBadRequest, "branch ID is required")
		return
	}

	if err := h.service.UpdateBranch(r.Context(), principal.UID, branch); err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, branch)
}

// RemoveBranch handles DELETE /api/business/branches/{id}
func (h *BusinessHandler) RemoveBranch(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	branchID := r.PathValue("id")
	if branchID == "" {
		respondWithError(w, http.StatusBadRequest, "branch ID is required")
		return
	}

	if err := h.service.RemoveBranch(r.Context(), principal.UID, branchID); err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
