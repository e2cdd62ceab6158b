package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/reviewuplift/backend/internal/adapters/events"
	"github.com/reviewuplift/backend/internal/api/handlers"
	"github.com/reviewuplift/backend/internal/domain/entities"
	"github.com/reviewuplift/backend/internal/domain/providers"
)

func TestSSEHandler_StreamConfigUpdates(t *testing.T) {
	eventBus := events.NewLocalEventBus()
	defer eventBus.Close()
	handler := handlers.NewSSEHandler(eventBus)

	t.Run("should establish SSE connection", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		req := httptest.NewRequest("GET", "/api/stream/review-link/biz-1", nil)
		req.SetPathValue("id", "biz-1")
		req = req.WithContext(ctx)
		w := httptest.NewRecorder()

		done := make(chan struct{})
		go func() {
			handler.StreamConfigUpdates(w, req)
			close(done)
		}()

		time.Sleep(100 * time.Millisecond)

		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("handler did not exit after cancel")
		}

		result := w.Result()
		if result.Header.Get("Content-Type") != "text/event-stream" {
			t.Errorf("Expected Content-Type text/event-stream, got %s", result.Header.Get("Content-Type"))
		}
		if result.Header.Get("Cache-Control") != "no-cache" {
			t.Errorf("Expected Cache-Control no-cache, got %s", result.Header.Get("Cache-Control"))
		}
		if !strings.Contains(w.Body.String(), "event: connected") {
			t.Error("Expected initial connected event in stream")
		}
	})

	t.Run("should receive config events", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		req := httptest.NewRequest("GET", "/api/stream/review-link/biz-2", nil)
		req.SetPathValue("id", "biz-2")
		req = req.WithContext(ctx)
		w := httptest.NewRecorder()

		done := make(chan struct{})
		go func() {
			handler.StreamConfigUpdates(w, req)
			close(done)
		}()

		time.Sleep(100 * time.Millisecond)

		cfg := entities.DefaultReviewLinkConfig()
		cfg.BusinessName = "Demo Coffee"
		event := &entities.ConfigEvent{
			ID:         "evt-1",
			Type:       entities.ConfigEventUpdated,
			BusinessID: "biz-2",
			Config:     cfg,
			Timestamp:  time.Now().UTC(),
		}
		eventBus.Publish(context.Background(), providers.GetReviewLinkChannel("biz-2"), event)

		time.Sleep(200 * time.Millisecond)

		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("handler did not exit after cancel")
		}

		body := w.Body.String()
		if !strings.Contains(body, "event: config.updated") {
			t.Errorf("Expected config.updated event in stream, got: %s", body)
		}
		if !strings.Contains(body, "Demo Coffee") {
			t.Error("Expected event payload to carry the new config")
		}
	})

	t.Run("should return error for missing business ID", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/stream/review-link/", nil)
		w := httptest.NewRecorder()

		handler.StreamConfigUpdates(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}

func TestSSEHandler_ClientCount(t *testing.T) {
	eventBus := events.NewLocalEventBus()
	defer eventBus.Close()
	handler := handlers.NewSSEHandler(eventBus)

	if count := handler.GetClientCount(); count != 0 {
		t.Errorf("Expected 0 clients, got %d", count)
	}

	req := httptest.NewRequest("GET", "/api/stream/review-link/biz-1", nil)
	req.SetPathValue("id", "biz-1")
	w := httptest.NewRecorder()

	ctx, cancel := context.WithCancel(context.Background())
	req = req.WithContext(ctx)

	go handler.StreamConfigUpdates(w, req)
	time.Sleep(100 * time.Millisecond)

	if count := handler.GetClientCount(); count != 1 {
		t.Errorf("Expected 1 client, got %d", count)
	}

	cancel()
	time.Sleep(100 * time.Millisecond)

	if count := handler.GetClientCount(); count != 0 {
		t.Errorf("Expected 0 clients after disconnect, got %d", count)
	}
}
