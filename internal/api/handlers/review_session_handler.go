package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/reviewuplift/backend/internal/domain/entities"
	"github.com/reviewuplift/backend/internal/domain/providers"
	"github.com/reviewuplift/backend/internal/infrastructure/observability"
)

const (
	// sessionRateLimit bounds how many gating actions one client may take per
	// window. High enough for honest two-click flows with changed minds.
	sessionRateLimit  = 30
	sessionRateWindow = time.Hour

	// submissionDedupWindow suppresses byte-identical feedback from the same
	// client.
	submissionDedupWindow = 24 * time.Hour
)

// ReviewSessionService defines the gating-flow operations used by the handler.
type ReviewSessionService interface {
	Start(ctx context.Context, businessID, token string) (*entities.ReviewSession, error)
	Get(ctx context.Context, id string) (*entities.ReviewSession, error)
	SelectRating(ctx context.Context, id string, rating int) (*entities.ReviewSession, *entities.ActionOutcome, error)
	LeaveReview(ctx context.Context, id string, form entities.FeedbackForm) (*entities.ReviewSession, *entities.ActionOutcome, error)
}

// ReviewSessionHandler serves the public review page's gating flow.
type ReviewSessionHandler struct {
	service ReviewSessionService
	cache   providers.CacheProvider
	metrics *observability.Metrics
	local   *localRateLimiter
	deduper *localDeduper
}

// NewReviewSessionHandler creates a new review session handler. cache and
// metrics may be nil; rate limiting then falls back to in-process state.
func NewReviewSessionHandler(service ReviewSessionService, cache providers.CacheProvider, metrics *observability.Metrics) *ReviewSessionHandler {
	return &ReviewSessionHandler{
		service: service,
		cache:   cache,
		metrics: metrics,
		local:   newLocalRateLimiter(),
		deduper: newLocalDeduper(),
	}
}

type startSessionRequest struct {
	BusinessID string `json:"business_id"`
	Token      string `json:"token"`
}

type sessionResponse struct {
	Session *entities.ReviewSession `json:"session"`
	Outcome *entities.ActionOutcome `json:"outcome,omitempty"`
}

// StartSession handles POST /api/public/review-sessions
func (h *ReviewSessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var payload startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	session, err := h.service.Start(r.Context(), payload.BusinessID, payload.Token)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, sessionResponse{Session: session})
}

// GetSession handles GET /api/public/review-sessions/{id}
func (h *ReviewSessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "session ID is required")
		return
	}

	session, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, sessionResponse{Session: session})
}

type selectRatingRequest struct {
	Rating int `json:"rating"`
}

// SelectRating handles PUT /api/public/review-sessions/{id}/rating
func (h *ReviewSessionHandler) SelectRating(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "session ID is required")
		return
	}

	var payload selectRatingRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	session, outcome, err := h.service.SelectRating(r.Context(), id, payload.Rating)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	if outcome.Effect == entities.EffectRedirect {
		observability.RecordRedirect(r.Context(), h.metrics, session.BusinessID, session.Rating)
	}
	respondWithJSON(w, http.StatusOK, sessionResponse{Session: session, Outcome: outcome})
}

type leaveReviewRequest struct {
	Form entities.FeedbackForm `json:"form"`
}

// LeaveReview handles POST /api/public/review-sessions/{id}/leave-review
func (h *ReviewSessionHandler) LeaveReview(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "session ID is required")
		return
	}

	var payload leaveReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	key := "review-session:rate:" + clientIP(r)
	allowed, retryAfter := h.allowRequest(r.Context(), key)
	if !allowed {
		w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
		respondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	// Dedup only applies to complete forms: the same feedback text from the
	// same client within the window is acknowledged but not re-recorded. The
	// fingerprint is written only once a submission is actually recorded, so
	// a failed write or a reveal click never blocks the real submit.
	dupKey := ""
	if payload.Form.Validate() == nil {
		dupKey = "review-session:dup:" + formFingerprint(payload.Form, clientIP(r))
		if h.isDuplicate(r.Context(), dupKey) {
			respondWithJSON(w, http.StatusAccepted, map[string]string{
				"status": "duplicate_ignored",
			})
			return
		}
	}

	session, outcome, err := h.service.LeaveReview(r.Context(), id, payload.Form)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	switch outcome.Effect {
	case entities.EffectSubmitted:
		if dupKey != "" {
			h.rememberSubmission(r.Context(), dupKey)
		}
		observability.RecordSubmission(r.Context(), h.metrics, session.BusinessID, session.Rating)
	case entities.EffectRedirect:
		observability.RecordRedirect(r.Context(), h.metrics, session.BusinessID, session.Rating)
	}
	respondWithJSON(w, http.StatusOK, sessionResponse{Session: session, Outcome: outcome})
}

func (h *ReviewSessionHandler) allowRequest(ctx context.Context, key string) (bool, time.Duration) {
	if h.cache == nil {
		return h.local.allow(key, sessionRateLimit, sessionRateWindow)
	}

	now := time.Now()
	state := rateLimitState{}
	if data, err := h.cache.Get(ctx, key); err == nil {
		_ = json.Unmarshal(data, &state)
	}
	if state.ResetAt.IsZero() || now.After(state.ResetAt) {
		state = rateLimitState{ResetAt: now.Add(sessionRateWindow)}
	}

	if state.Count >= sessionRateLimit {
		retryAfter := time.Until(state.ResetAt)
		if retryAfter < 0 {
			retryAfter = sessionRateWindow
		}
		return false, retryAfter
	}

	state.Count++
	data, _ := json.Marshal(state)
	// The window is anchored at the first request. Rewriting with the
	// remaining TTL keeps a steady trickle from sliding it forever.
	ttl := int(time.Until(state.ResetAt).Seconds())
	if ttl < 1 {
		ttl = 1
	}
	_ = h.cache.Set(ctx, key, data, ttl)
	return true, sessionRateWindow
}

type rateLimitState struct {
	Count   int       `json:"count"`
	ResetAt time.Time `json:"reset_at"`
}

func (h *ReviewSessionHandler) isDuplicate(ctx context.Context, key string) bool {
	if h.cache == nil {
		return h.deduper.seen(key)
	}

	exists, err := h.cache.Exists(ctx, key)
	return err == nil && exists
}

func (h *ReviewSessionHandler) rememberSubmission(ctx context.Context, key string) {
	if h.cache == nil {
		h.deduper.mark(key, submissionDedupWindow)
		return
	}
	_ = h.cache.Set(ctx, key, []byte("1"), int(submissionDedupWindow.Seconds()))
}

type localRateLimiter struct {
	mu     sync.Mutex
	states map[string]*localRateState
}

type localRateState struct {
	count   int
	resetAt time.Time
}

func newLocalRateLimiter() *localRateLimiter {
	return &localRateLimiter{
		states: make(map[string]*localRateState),
	}
}

func (l *localRateLimiter) allow(key string, limit int, window time.Duration) (bool, time.Duration) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	state, ok := l.states[key]
	if !ok || now.After(state.resetAt) {
		state = &localRateState{count: 0, resetAt: now.Add(window)}
		l.states[key] = state
	}

	if state.count >= limit {
		retryAfter := time.Until(state.resetAt)
		if retryAfter < 0 {
			retryAfter = window
		}
		return false, retryAfter
	}

	state.count++
	return true, window
}

type localDeduper struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

func newLocalDeduper() *localDeduper {
	return &localDeduper{
		entries: make(map[string]time.Time),
	}
}

func (d *localDeduper) seen(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	expiresAt, ok := d.entries[key]
	return ok && time.Now().Before(expiresAt)
}

func (d *localDeduper) mark(key string, window time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.entries[key] = time.Now().Add(window)
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return strings.TrimSpace(realIP)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}

func formFingerprint(form entities.FeedbackForm, ip string) string {
	normalized := []string{
		normalizeField(form.Name),
		normalizeField(form.Phone),
		normalizeField(form.Email),
		normalizeField(form.BranchName),
		normalizeField(form.Review),
		ip,
	}

	hash := sha256.Sum256([]byte(strings.Join(normalized, "|")))
	return hex.EncodeToString(hash[:])
}

func normalizeField(value string) string {
	trimmed := strings.TrimSpace(strings.ToLower(value))
	if trimmed == "" {
		return ""
	}
	return strings.Join(strings.Fields(trimmed), " ")
}
