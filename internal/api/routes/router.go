package routes

import (
	"net/http"

	"github.com/reviewuplift/backend/internal/api/handlers"
	"github.com/reviewuplift/backend/internal/api/middleware"
	"github.com/reviewuplift/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	reviewLinkHandler *handlers.ReviewLinkHandler
	sessionHandler    *handlers.ReviewSessionHandler
	submissionHandler *handlers.SubmissionHandler
	dashboardHandler  *handlers.DashboardHandler
	businessHandler   *handlers.BusinessHandler
	adminHandler      *handlers.AdminHandler
	userHandler       *handlers.UserHandler
	sseHandler        *handlers.SSEHandler

	auth    func(http.Handler) http.Handler
	metrics *observability.Metrics
}

// NewRouter creates a new router. tokenSecret keys the bearer-token
// verification for the authenticated surface.
func NewRouter(
	reviewLinkHandler *handlers.ReviewLinkHandler,
	sessionHandler *handlers.ReviewSessionHandler,
	submissionHandler *handlers.SubmissionHandler,
	dashboardHandler *handlers.DashboardHandler,
	businessHandler *handlers.BusinessHandler,
	adminHandler *handlers.AdminHandler,
	userHandler *handlers.UserHandler,
	sseHandler *handlers.SSEHandler,
	tokenSecret string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux: http.NewServeMux(),

		reviewLinkHandler: reviewLinkHandler,
		sessionHandler:    sessionHandler,
		submissionHandler: submissionHandler,
		dashboardHandler:  dashboardHandler,
		businessHandler:   businessHandler,
		adminHandler:      adminHandler,
		userHandler:       userHandler,
		sseHandler:        sseHandler,

		auth:    middleware.AuthMiddleware(tokenSecret),
		metrics: metrics,
	}
}

func (r *Router) protected(h http.HandlerFunc) http.Handler {
	return r.auth(h)
}

func (r *Router) adminOnly(h http.HandlerFunc) http.Handler {
	return r.auth(middleware.RequireAdmin(h))
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Public review page: token decoding and the gating flow. No auth; a
	// visitor arrives with nothing but the share link.
	r.mux.HandleFunc("GET /api/public/review-page", r.reviewLinkHandler.GetPublicPage)
	r.mux.HandleFunc("POST /api/public/review-sessions", r.sessionHandler.StartSession)
	r.mux.HandleFunc("GET /api/public/review-sessions/{id}", r.sessionHandler.GetSession)
	r.mux.HandleFunc("PUT /api/public/review-sessions/{id}/rating", r.sessionHandler.SelectRating)
	r.mux.HandleFunc("POST /api/public/review-sessions/{id}/leave-review", r.sessionHandler.LeaveReview)

	// Live preview stream. Also public: previews open in logged-out tabs.
	r.mux.Handle("GET /api/stream/review-link/{id}", http.HandlerFunc(r.sseHandler.StreamConfigUpdates))

	// Review-link editor
	r.mux.Handle("GET /api/review-link/config", r.protected(r.reviewLinkHandler.GetConfig))
	r.mux.Handle("PUT /api/review-link/config", r.protected(r.reviewLinkHandler.PutConfig))
	r.mux.Handle("POST /api/review-link/config/reset", r.protected(r.reviewLinkHandler.ResetConfig))
	r.mux.Handle("POST /api/review-link/generate", r.protected(r.reviewLinkHandler.GenerateLink))

	// Business profile and branches
	r.mux.Handle("GET /api/business/profile", r.protected(r.businessHandler.GetProfile))
	r.mux.Handle("POST /api/business/profile", r.protected(r.businessHandler.CreateProfile))
	r.mux.Handle("PUT /api/business/profile", r.protected(r.businessHandler.UpdateProfile))
	r.mux.Handle("GET /api/business/branches", r.protected(r.businessHandler.ListBranches))
	r.mux.Handle("POST /api/business/branches", r.protected(r.businessHandler.AddBranch))
	r.mux.Handle("PUT /api/business/branches/{id}", r.protected(r.businessHandler.UpdateBranch))
	r.mux.Handle("DELETE /api/business/branches/{id}", r.protected(r.businessHandler.RemoveBranch))

	// Moderation
	r.mux.Handle("GET /api/business/submissions", r.protected(r.submissionHandler.ListSubmissions))
	r.mux.Handle("GET /api/business/submissions/{id}", r.protected(r.submissionHandler.GetSubmission))
	r.mux.Handle("PATCH /api/business/submissions/{id}/status", r.protected(r.submissionHandler.UpdateStatus))
	r.mux.Handle("POST /api/business/submissions/{id}/reply", r.protected(r.submissionHandler.Reply))
	r.mux.Handle("PATCH /api/business/submissions/{id}/replied", r.protected(r.submissionHandler.SetReplied))
	r.mux.Handle("DELETE /api/business/submissions/{id}", r.protected(r.submissionHandler.DeleteSubmission))

	// Dashboard
	r.mux.Handle("GET /api/business/dashboard", r.protected(r.dashboardHandler.GetStats))

	// Registration
	r.mux.Handle("POST /api/auth/register", r.protected(r.userHandler.Register))
	r.mux.Handle("GET /api/auth/me", r.protected(r.userHandler.Me))

	// Admin oversight
	r.mux.Handle("GET /api/admin/businesses", r.adminOnly(r.adminHandler.ListBusinesses))
	r.mux.Handle("PATCH /api/admin/businesses/{id}/status", r.adminOnly(r.adminHandler.UpdateBusinessStatus))
	r.mux.Handle("GET /api/admin/users", r.adminOnly(r.adminHandler.ListUsers))

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// CORS wraps everything so headers are set on every response
	handler = middleware.CORSMiddleware(handler)

	return handler
}
