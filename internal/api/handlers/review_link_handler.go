package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/reviewuplift/backend/internal/api/middleware"
	"github.com/reviewuplift/backend/internal/domain/entities"
)

// ConfigService defines the review-link configuration operations used by the
// handler.
type ConfigService interface {
	DecodeToken(token string) entities.ReviewLinkConfig
	EncodeToken(cfg entities.ReviewLinkConfig) string
	Load(ctx context.Context, businessID, token string) entities.ReviewLinkConfig
	Persist(ctx context.Context, businessID string, cfg entities.ReviewLinkConfig) (string, error)
	Reset(ctx context.Context, businessID string)
}

// LinkGenerator suggests review links from business names.
type LinkGenerator interface {
	GenerateReviewLink(businessName string) string
}

// ReviewLinkHandler serves the review-link editor: loading, persisting, and
// resetting the configuration, and minting link suggestions.
type ReviewLinkHandler struct {
	configs ConfigService
	links   LinkGenerator
}

// NewReviewLinkHandler creates a new review-link handler.
func NewReviewLinkHandler(configs ConfigService, links LinkGenerator) *ReviewLinkHandler {
	return &ReviewLinkHandler{configs: configs, links: links}
}

type configResponse struct {
	Config entities.ReviewLinkConfig `json:"config"`
	Token  string                    `json:"token"`
}

// GetConfig handles GET /api/review-link/config?token=...
//
// The editor passes its current share token if it has one; the resolved
// configuration and a token for it come back.
func (h *ReviewLinkHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	token := r.URL.Query().Get("token")
	cfg := h.configs.Load(r.Context(), principal.UID, token)

	respondWithJSON(w, http.StatusOK, configResponse{
		Config: cfg,
		Token:  h.configs.EncodeToken(cfg),
	})
}

// PutConfig handles PUT /api/review-link/config
func (h *ReviewLinkHandler) PutConfig(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var cfg entities.ReviewLinkConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	token, err := h.configs.Persist(r.Context(), principal.UID, cfg)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, configResponse{Config: cfg, Token: token})
}

// ResetConfig handles POST /api/review-link/config/reset
func (h *ReviewLinkHandler) ResetConfig(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	h.configs.Reset(r.Context(), principal.UID)
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

type generateLinkRequest struct {
	BusinessName string `json:"businessName"`
}

// GenerateLink handles POST /api/review-link/generate
func (h *ReviewLinkHandler) GenerateLink(w http.ResponseWriter, r *http.Request) {
	var payload generateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if strings.TrimSpace(payload.BusinessName) == "" {
		respondWithError(w, http.StatusBadRequest, "business name is required")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"reviewLinkUrl": h.links.GenerateReviewLink(payload.BusinessName),
	})
}

// GetPublicPage handles GET /api/public/review-page
//
// The public review page resolves what to render from the share token and/or
// business ID in the URL. This never fails: a garbage token renders defaults.
func (h *ReviewLinkHandler) GetPublicPage(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	cfg := h.configs.Load(r.Context(), query.Get("business"), query.Get("token"))
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"config": cfg})
}
