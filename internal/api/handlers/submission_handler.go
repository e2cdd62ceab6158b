package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/reviewuplift/backend/internal/api/middleware"
	"github.com/reviewuplift/backend/internal/domain/entities"
	"github.com/reviewuplift/backend/internal/domain/repositories"
)

// SubmissionService defines the moderation operations used by the handler.
type SubmissionService interface {
	GetByID(ctx context.Context, businessID, id string) (*entities.FeedbackSubmission, error)
	List(ctx context.Context, businessID string, filter repositories.SubmissionFilter) ([]*entities.FeedbackSubmission, error)
	UpdateStatus(ctx context.Context, businessID, id string, status entities.SubmissionStatus) error
	Reply(ctx context.Context, businessID, id, reply string) error
	SetReplied(ctx context.Context, businessID, id string, replied bool) error
	Delete(ctx context.Context, businessID, id string) error
}

// SubmissionHandler serves the moderation screens: a business reviewing,
// publishing, replying to, and deleting its feedback submissions.
type SubmissionHandler struct {
	service SubmissionService
}

// NewSubmissionHandler creates a new submission handler.
func NewSubmissionHandler(service SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{service: service}
}

// ListSubmissions handles GET /api/business/submissions
func (h *SubmissionHandler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	query := r.URL.Query()
	filter := repositories.SubmissionFilter{
		Status: entities.SubmissionStatus(query.Get("status")),
		Search: query.Get("search"),
		Limit:  50,
	}
	if filter.Status != "" && !entities.ValidSubmissionStatus(filter.Status) {
		respondWithError(w, http.StatusBadRequest, "invalid status filter")
		return
	}
	if v := query.Get("min_rating"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			filter.MinRating = parsed
		}
	}
	if v := query.Get("max_rating"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			filter.MaxRating = parsed
		}
	}
	if v := query.Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 200 {
			filter.Limit = parsed
		}
	}
	if v := query.Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			filter.Offset = parsed
		}
	}

	submissions, err := h.service.List(r.Context(), principal.UID, filter)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"submissions": submissions,
		"count":       len(submissions),
	})
}

// GetSubmission handles GET /api/business/submissions/{id}
func (h *SubmissionHandler) GetSubmission(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "submission ID is required")
		return
	}

	submission, err := h.service.GetByID(r.Context(), principal.UID, id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, submission)
}

type updateStatusRequest struct {
	Status entities.SubmissionStatus `json:"status"`
}

// UpdateStatus handles PATCH /api/business/submissions/{id}/status
func (h *SubmissionHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id := r.PathValue("id")
	var payload updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := h.service.UpdateStatus(r.Context(), principal.UID, id, payload.Status); err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": string(payload.Status)})
}

type replyRequest struct {
	Reply string `json:"reply"`
}

// Reply handles POST /api/business/submissions/{id}/reply
func (h *SubmissionHandler) Reply(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id := r.PathValue("id")
	var payload replyRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := h.service.Reply(r.Context(), principal.UID, id, payload.Reply); err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "replied"})
}

type setRepliedRequest struct {
	Replied bool `json:"replied"`
}

// SetReplied handles PATCH /api/business/submissions/{id}/replied
//
// Toggles the replied flag without touching the reply text, for replies
// handled outside the product (phone, in person).
func (h *SubmissionHandler) SetReplied(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id := r.PathValue("id")
	var payload setRepliedRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := h.service.SetReplied(r.Context(), principal.UID, id, payload.Replied); err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"replied": payload.Replied})
}

// DeleteSubmission handles DELETE /api/business/submissions/{id}
func (h *SubmissionHandler) DeleteSubmission(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "submission ID is required")
		return
	}

	if err := h.service.Delete(r.Context(), principal.UID, id); err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
