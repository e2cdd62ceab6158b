package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewuplift/backend/internal/api/handlers"
	"github.com/reviewuplift/backend/internal/domain/entities"
	apperrors "github.com/reviewuplift/backend/pkg/errors"
)

type stubSessionService struct {
	sessions    map[string]*entities.ReviewSession
	leaveCalls  int
	lastForm    entities.FeedbackForm
	leaveErr    error
	leaveResult *entities.ActionOutcome
}

func newStubSessionService() *stubSessionService {
	return &stubSessionService{
		sessions:    make(map[string]*entities.ReviewSession),
		leaveResult: &entities.ActionOutcome{Effect: entities.EffectShowForm},
	}
}

func (s *stubSessionService) Start(ctx context.Context, businessID, token string) (*entities.ReviewSession, error) {
	session := &entities.ReviewSession{
		ID:         "session-1",
		BusinessID: businessID,
		State:      entities.StateUnrated,
		Config:     entities.DefaultReviewLinkConfig(),
	}
	s.sessions[session.ID] = session
	return session, nil
}

func (s *stubSessionService) Get(ctx context.Context, id string) (*entities.ReviewSession, error) {
	if session, ok := s.sessions[id]; ok {
		return session, nil
	}
	return nil, apperrors.NewNotFoundError("review session " + id + " not found")
}

func (s *stubSessionService) SelectRating(ctx context.Context, id string, rating int) (*entities.ReviewSession, *entities.ActionOutcome, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	session.Rating = rating
	session.State = entities.StateRated
	return session, &entities.ActionOutcome{Effect: entities.EffectNone}, nil
}

func (s *stubSessionService) LeaveReview(ctx context.Context, id string, form entities.FeedbackForm) (*entities.ReviewSession, *entities.ActionOutcome, error) {
	if s.leaveErr != nil {
		return nil, nil, s.leaveErr
	}
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	s.leaveCalls++
	s.lastForm = form
	return session, s.leaveResult, nil
}

func startedSession(t *testing.T, service *stubSessionService) string {
	t.Helper()
	session, err := service.Start(context.Background(), "biz-1", "")
	require.NoError(t, err)
	return session.ID
}

func TestReviewSessionHandler_StartSession(t *testing.T) {
	handler := handlers.NewReviewSessionHandler(newStubSessionService(), nil, nil)

	body := `{"business_id":"biz-1","token":""}`
	req := httptest.NewRequest("POST", "/api/public/review-sessions", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.StartSession(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var response struct {
		Session *entities.ReviewSession `json:"session"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "biz-1", response.Session.BusinessID)
	assert.Equal(t, entities.StateUnrated, response.Session.State)
}

func TestReviewSessionHandler_StartSession_BadPayload(t *testing.T) {
	handler := handlers.NewReviewSessionHandler(newStubSessionService(), nil, nil)

	req := httptest.NewRequest("POST", "/api/public/review-sessions", strings.NewReader("{broken"))
	w := httptest.NewRecorder()
	handler.StartSession(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReviewSessionHandler_GetSession_NotFound(t *testing.T) {
	handler := handlers.NewReviewSessionHandler(newStubSessionService(), nil, nil)

	req := httptest.NewRequest("GET", "/api/public/review-sessions/missing", nil)
	req.SetPathValue("id", "missing")
	w := httptest.NewRecorder()
	handler.GetSession(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReviewSessionHandler_SelectRating(t *testing.T) {
	service := newStubSessionService()
	handler := handlers.NewReviewSessionHandler(service, nil, nil)
	id := startedSession(t, service)

	req := httptest.NewRequest("PUT", "/api/public/review-sessions/"+id+"/rating", strings.NewReader(`{"rating":3}`))
	req.SetPathValue("id", id)
	w := httptest.NewRecorder()
	handler.SelectRating(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response struct {
		Session *entities.ReviewSession `json:"session"`
		Outcome *entities.ActionOutcome `json:"outcome"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, 3, response.Session.Rating)
	assert.Equal(t, entities.EffectNone, response.Outcome.Effect)
}

func TestReviewSessionHandler_LeaveReview(t *testing.T) {
	service := newStubSessionService()
	handler := handlers.NewReviewSessionHandler(service, nil, nil)
	id := startedSession(t, service)

	req := httptest.NewRequest("POST", "/api/public/review-sessions/"+id+"/leave-review", strings.NewReader(`{"form":{}}`))
	req.SetPathValue("id", id)
	req.RemoteAddr = "10.0.0.1:1234"
	w := httptest.NewRecorder()
	handler.LeaveReview(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, service.leaveCalls)
}

func TestReviewSessionHandler_LeaveReview_RateLimit(t *testing.T) {
	service := newStubSessionService()
	handler := handlers.NewReviewSessionHandler(service, nil, nil)
	id := startedSession(t, service)

	for i := 0; i < 30; i++ {
		req := httptest.NewRequest("POST", "/api/public/review-sessions/"+id+"/leave-review",
			strings.NewReader(fmt.Sprintf(`{"form":{"review":"attempt %d"}}`, i)))
		req.SetPathValue("id", id)
		req.RemoteAddr = "10.0.0.2:1234"
		w := httptest.NewRecorder()
		handler.LeaveReview(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	req := httptest.NewRequest("POST", "/api/public/review-sessions/"+id+"/leave-review", strings.NewReader(`{"form":{}}`))
	req.SetPathValue("id", id)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	handler.LeaveReview(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// A different client is unaffected.
	req2 := httptest.NewRequest("POST", "/api/public/review-sessions/"+id+"/leave-review", strings.NewReader(`{"form":{}}`))
	req2.SetPathValue("id", id)
	req2.RemoteAddr = "10.0.0.3:1234"
	w2 := httptest.NewRecorder()
	handler.LeaveReview(w2, req2)
	assert.Equal(t, http.StatusOK, w2.Code)
}

func TestReviewSessionHandler_LeaveReview_DuplicateForm(t *testing.T) {
	service := newStubSessionService()
	service.leaveResult = &entities.ActionOutcome{Effect: entities.EffectSubmitted}
	handler := handlers.NewReviewSessionHandler(service, nil, nil)
	id := startedSession(t, service)

	body := `{"form":{"name":"Ada","phone":"0800","email":"ada@example.com","branchname":"Downtown","review":"Cold coffee."}}`
	req := httptest.NewRequest("POST", "/api/public/review-sessions/"+id+"/leave-review", strings.NewReader(body))
	req.SetPathValue("id", id)
	req.RemoteAddr = "10.0.0.4:1234"
	w := httptest.NewRecorder()
	handler.LeaveReview(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req2 := httptest.NewRequest("POST", "/api/public/review-sessions/"+id+"/leave-review", strings.NewReader(body))
	req2.SetPathValue("id", id)
	req2.RemoteAddr = "10.0.0.4:1234"
	w2 := httptest.NewRecorder()
	handler.LeaveReview(w2, req2)

	assert.Equal(t, http.StatusAccepted, w2.Code)
	assert.Equal(t, 1, service.leaveCalls)

	var response map[string]string
	require.NoError(t, json.NewDecoder(w2.Body).Decode(&response))
	assert.Equal(t, "duplicate_ignored", response["status"])
}

func TestReviewSessionHandler_LeaveReview_RetryAfterFailedSubmitNotDeduped(t *testing.T) {
	service := newStubSessionService()
	handler := handlers.NewReviewSessionHandler(service, nil, nil)
	id := startedSession(t, service)

	// The first attempt fails downstream and the customer keeps the form.
	// The identical retry must reach the service, not the dedup cache.
	service.leaveResult = &entities.ActionOutcome{Effect: entities.EffectRetry, Message: "please try again"}

	body := `{"form":{"name":"Ada","phone":"0800","email":"ada@example.com","branchname":"Downtown","review":"Cold coffee."}}`
	req := httptest.NewRequest("POST", "/api/public/review-sessions/"+id+"/leave-review", strings.NewReader(body))
	req.SetPathValue("id", id)
	req.RemoteAddr = "10.0.0.6:1234"
	w := httptest.NewRecorder()
	handler.LeaveReview(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, service.leaveCalls)

	service.leaveResult = &entities.ActionOutcome{Effect: entities.EffectSubmitted}

	req2 := httptest.NewRequest("POST", "/api/public/review-sessions/"+id+"/leave-review", strings.NewReader(body))
	req2.SetPathValue("id", id)
	req2.RemoteAddr = "10.0.0.6:1234"
	w2 := httptest.NewRecorder()
	handler.LeaveReview(w2, req2)

	assert.Equal(t, http.StatusOK, w2.Code)
	assert.Equal(t, 2, service.leaveCalls)

	var response struct {
		Outcome *entities.ActionOutcome `json:"outcome"`
	}
	require.NoError(t, json.NewDecoder(w2.Body).Decode(&response))
	assert.Equal(t, entities.EffectSubmitted, response.Outcome.Effect)

	// Only now is the feedback on record, so a further echo is a duplicate.
	req3 := httptest.NewRequest("POST", "/api/public/review-sessions/"+id+"/leave-review", strings.NewReader(body))
	req3.SetPathValue("id", id)
	req3.RemoteAddr = "10.0.0.6:1234"
	w3 := httptest.NewRecorder()
	handler.LeaveReview(w3, req3)

	assert.Equal(t, http.StatusAccepted, w3.Code)
	assert.Equal(t, 2, service.leaveCalls)
}

func TestReviewSessionHandler_LeaveReview_CompleteFormOnRevealClickNotDeduped(t *testing.T) {
	service := newStubSessionService()
	handler := handlers.NewReviewSessionHandler(service, nil, nil)
	id := startedSession(t, service)

	// A client may echo the full form on the reveal click. Nothing was
	// recorded yet, so the follow-up submit must still go through.
	service.leaveResult = &entities.ActionOutcome{Effect: entities.EffectShowForm}

	body := `{"form":{"name":"Ada","phone":"0800","email":"ada@example.com","branchname":"Downtown","review":"Cold coffee."}}`
	req := httptest.NewRequest("POST", "/api/public/review-sessions/"+id+"/leave-review", strings.NewReader(body))
	req.SetPathValue("id", id)
	req.RemoteAddr = "10.0.0.7:1234"
	w := httptest.NewRecorder()
	handler.LeaveReview(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	service.leaveResult = &entities.ActionOutcome{Effect: entities.EffectSubmitted}

	req2 := httptest.NewRequest("POST", "/api/public/review-sessions/"+id+"/leave-review", strings.NewReader(body))
	req2.SetPathValue("id", id)
	req2.RemoteAddr = "10.0.0.7:1234"
	w2 := httptest.NewRecorder()
	handler.LeaveReview(w2, req2)

	assert.Equal(t, http.StatusOK, w2.Code)
	assert.Equal(t, 2, service.leaveCalls)
}

// stubCache is an in-memory CacheProvider that records the TTL of every Set.
type stubCache struct {
	store map[string][]byte
	ttls  []int
}

func newStubCache() *stubCache {
	return &stubCache{store: make(map[string][]byte)}
}

func (c *stubCache) Get(ctx context.Context, key string) ([]byte, error) {
	if value, ok := c.store[key]; ok {
		return value, nil
	}
	return nil, fmt.Errorf("key not found: %s", key)
}

func (c *stubCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	c.store[key] = value
	c.ttls = append(c.ttls, expirationSeconds)
	return nil
}

func (c *stubCache) Delete(ctx context.Context, key string) error {
	delete(c.store, key)
	return nil
}

func (c *stubCache) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := c.store[key]
	return ok, nil
}

func TestReviewSessionHandler_LeaveReview_RateWindowAnchoredAtFirstRequest(t *testing.T) {
	service := newStubSessionService()
	cache := newStubCache()
	handler := handlers.NewReviewSessionHandler(service, cache, nil)
	id := startedSession(t, service)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("POST", "/api/public/review-sessions/"+id+"/leave-review",
			strings.NewReader(fmt.Sprintf(`{"form":{"review":"attempt %d"}}`, i)))
		req.SetPathValue("id", id)
		req.RemoteAddr = "10.0.0.8:1234"
		w := httptest.NewRecorder()
		handler.LeaveReview(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	// Every write carries the same window end, so a steady trickle of
	// requests cannot push the expiry out indefinitely.
	state := struct {
		Count   int    `json:"count"`
		ResetAt string `json:"reset_at"`
	}{}
	require.NoError(t, json.Unmarshal(cache.store["review-session:rate:10.0.0.8"], &state))
	assert.Equal(t, 3, state.Count)
	assert.NotEmpty(t, state.ResetAt)

	require.Len(t, cache.ttls, 3)
	for i := 1; i < len(cache.ttls); i++ {
		assert.LessOrEqual(t, cache.ttls[i], cache.ttls[i-1])
	}
}

func TestReviewSessionHandler_LeaveReview_IncompleteFormNeverDeduped(t *testing.T) {
	service := newStubSessionService()
	handler := handlers.NewReviewSessionHandler(service, nil, nil)
	id := startedSession(t, service)

	// The first click of the two-click flow sends an empty form twice when a
	// visitor navigates back and forth. Both must reach the service.
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("POST", "/api/public/review-sessions/"+id+"/leave-review", strings.NewReader(`{"form":{}}`))
		req.SetPathValue("id", id)
		req.RemoteAddr = "10.0.0.5:1234"
		w := httptest.NewRecorder()
		handler.LeaveReview(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, 2, service.leaveCalls)
}
