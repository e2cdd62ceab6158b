package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewuplift/backend/internal/api/handlers"
	"github.com/reviewuplift/backend/internal/domain/entities"
	"github.com/reviewuplift/backend/pkg/statetoken"
)

// stubConfigService resolves tokens for real but stores configs in a map.
type stubConfigService struct {
	configs  map[string]entities.ReviewLinkConfig
	resets   []string
	persists int
}

func newStubConfigService() *stubConfigService {
	return &stubConfigService{configs: make(map[string]entities.ReviewLinkConfig)}
}

func (s *stubConfigService) DecodeToken(token string) entities.ReviewLinkConfig {
	cfg := entities.DefaultReviewLinkConfig()
	if err := statetoken.Decode(token, &cfg); err != nil {
		return entities.DefaultReviewLinkConfig()
	}
	return cfg
}

func (s *stubConfigService) EncodeToken(cfg entities.ReviewLinkConfig) string {
	return statetoken.Encode(cfg)
}

func (s *stubConfigService) Load(ctx context.Context, businessID, token string) entities.ReviewLinkConfig {
	if token != "" {
		return s.DecodeToken(token)
	}
	if cfg, ok := s.configs[businessID]; ok {
		return cfg
	}
	return entities.DefaultReviewLinkConfig()
}

func (s *stubConfigService) Persist(ctx context.Context, businessID string, cfg entities.ReviewLinkConfig) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	s.persists++
	s.configs[businessID] = cfg
	return statetoken.Encode(cfg), nil
}

func (s *stubConfigService) Reset(ctx context.Context, businessID string) {
	s.resets = append(s.resets, businessID)
	delete(s.configs, businessID)
}

type stubLinkGenerator struct{}

func (stubLinkGenerator) GenerateReviewLink(businessName string) string {
	return "https://go.reviewuplift.com/" + strings.ToLower(strings.ReplaceAll(businessName, " ", "-"))
}

func TestReviewLinkHandler_GetConfig(t *testing.T) {
	service := newStubConfigService()
	cfg := entities.DefaultReviewLinkConfig()
	cfg.BusinessName = "Demo Coffee"
	service.configs["biz-1"] = cfg
	handler := handlers.NewReviewLinkHandler(service, stubLinkGenerator{})

	req := authedRequest("GET", "/api/review-link/config", "")
	w := httptest.NewRecorder()
	handler.GetConfig(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response struct {
		Config entities.ReviewLinkConfig `json:"config"`
		Token  string                    `json:"token"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "Demo Coffee", response.Config.BusinessName)
	assert.Equal(t, "Demo Coffee", service.DecodeToken(response.Token).BusinessName)
}

func TestReviewLinkHandler_GetConfig_Unauthenticated(t *testing.T) {
	handler := handlers.NewReviewLinkHandler(newStubConfigService(), stubLinkGenerator{})

	req := httptest.NewRequest("GET", "/api/review-link/config", nil)
	w := httptest.NewRecorder()
	handler.GetConfig(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestReviewLinkHandler_PutConfig(t *testing.T) {
	service := newStubConfigService()
	handler := handlers.NewReviewLinkHandler(service, stubLinkGenerator{})

	body := `{"businessName":"Demo Coffee","isReviewGatingEnabled":false}`
	req := authedRequest("PUT", "/api/review-link/config", body)
	w := httptest.NewRecorder()
	handler.PutConfig(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, service.persists)
	stored := service.configs["biz-1"]
	assert.Equal(t, "Demo Coffee", stored.BusinessName)
	assert.False(t, stored.IsReviewGatingEnabled)

	var response struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.NotEmpty(t, response.Token)
}

func TestReviewLinkHandler_PutConfig_InvalidConfig(t *testing.T) {
	service := newStubConfigService()
	handler := handlers.NewReviewLinkHandler(service, stubLinkGenerator{})

	req := authedRequest("PUT", "/api/review-link/config", `{"rating":9}`)
	w := httptest.NewRecorder()
	handler.PutConfig(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, service.persists)
}

func TestReviewLinkHandler_ResetConfig(t *testing.T) {
	service := newStubConfigService()
	service.configs["biz-1"] = entities.DefaultReviewLinkConfig()
	handler := handlers.NewReviewLinkHandler(service, stubLinkGenerator{})

	req := authedRequest("POST", "/api/review-link/config/reset", "")
	w := httptest.NewRecorder()
	handler.ResetConfig(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"biz-1"}, service.resets)
}

func TestReviewLinkHandler_GenerateLink(t *testing.T) {
	handler := handlers.NewReviewLinkHandler(newStubConfigService(), stubLinkGenerator{})

	req := httptest.NewRequest("POST", "/api/review-link/generate", strings.NewReader(`{"businessName":"Demo Coffee"}`))
	w := httptest.NewRecorder()
	handler.GenerateLink(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "https://go.reviewuplift.com/demo-coffee", response["reviewLinkUrl"])

	req = httptest.NewRequest("POST", "/api/review-link/generate", strings.NewReader(`{"businessName":"  "}`))
	w = httptest.NewRecorder()
	handler.GenerateLink(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReviewLinkHandler_GetPublicPage(t *testing.T) {
	service := newStubConfigService()
	handler := handlers.NewReviewLinkHandler(service, stubLinkGenerator{})

	cfg := entities.DefaultReviewLinkConfig()
	cfg.BusinessName = "Token Co"
	token := statetoken.Encode(cfg)

	req := httptest.NewRequest("GET", "/api/public/review-page?token="+url.QueryEscape(token), nil)
	w := httptest.NewRecorder()
	handler.GetPublicPage(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response struct {
		Config entities.ReviewLinkConfig `json:"config"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "Token Co", response.Config.BusinessName)
}

func TestReviewLinkHandler_GetPublicPage_GarbageTokenRendersDefaults(t *testing.T) {
	handler := handlers.NewReviewLinkHandler(newStubConfigService(), stubLinkGenerator{})

	req := httptest.NewRequest("GET", "/api/public/review-page?token=garbage!!!", nil)
	w := httptest.NewRecorder()
	handler.GetPublicPage(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response struct {
		Config entities.ReviewLinkConfig `json:"config"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, entities.DefaultReviewLinkConfig(), response.Config)
}
