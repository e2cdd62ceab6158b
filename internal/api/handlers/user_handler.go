package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/reviewuplift/backend/internal/api/middleware"
	"github.com/reviewuplift/backend/internal/domain/entities"
)

// UserService defines the registration operations used by the handler.
type UserService interface {
	Register(ctx context.Context, user *entities.User, adminCode string) error
	GetByID(ctx context.Context, id string) (*entities.User, error)
}

// UserHandler records principals after the identity provider has
// authenticated them.
type UserHandler struct {
	service UserService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(service UserService) *UserHandler {
	return &UserHandler{service: service}
}

type registerRequest struct {
	Username  string            `json:"username"`
	Role      entities.UserRole `json:"role"`
	AdminCode string            `json:"admin_code,omitempty"`
}

// Register handles POST /api/auth/register
//
// The caller is already authenticated; uid and email come from the token, not
// the payload.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var payload registerRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	user := &entities.User{
		ID:       principal.UID,
		Username: payload.Username,
		Email:    principal.Email,
		Role:     payload.Role,
	}

	if err := h.service.Register(r.Context(), user, payload.AdminCode); err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, user)
}

// Me handles GET /api/auth/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := h.service.GetByID(r.Context(), principal.UID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}
