package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/reviewuplift/backend/internal/adapters/cache"
	"github.com/reviewuplift/backend/internal/adapters/database"
	"github.com/reviewuplift/backend/internal/adapters/events"
	"github.com/reviewuplift/backend/internal/adapters/search"
	"github.com/reviewuplift/backend/internal/api/handlers"
	"github.com/reviewuplift/backend/internal/api/routes"
	"github.com/reviewuplift/backend/internal/application/services"
	"github.com/reviewuplift/backend/internal/domain/providers"
	"github.com/reviewuplift/backend/internal/domain/repositories"
	"github.com/reviewuplift/backend/internal/infrastructure/clients/postgres"
	"github.com/reviewuplift/backend/internal/infrastructure/clients/redis"
	"github.com/reviewuplift/backend/internal/infrastructure/clients/typesense"
	"github.com/reviewuplift/backend/internal/infrastructure/observability"
	"github.com/reviewuplift/backend/pkg/config"
)

func main() {
	// Load .env if present; real environments set variables directly
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.App.Environment)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Printf("Warning: Failed to set up OpenTelemetry: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Printf("Error shutting down OpenTelemetry: %v", err)
				}
			}()
			log.Println("OpenTelemetry initialized successfully")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL client: %v", err)
	}
	defer pgClient.Close()
	log.Println("PostgreSQL client initialized successfully")

	// Initialize Redis client
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to initialize Redis client: %v", err)
		redisClient = nil
		// Continue without Redis - caching, shared sessions, and cross-instance
		// config events degrade to in-process equivalents
	} else {
		defer redisClient.Close()
		log.Println("Redis client initialized successfully")
	}

	// Initialize Typesense client
	typesenseClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Printf("Warning: Failed to initialize Typesense client: %v", err)
		typesenseClient = nil
	} else {
		log.Println("Typesense client initialized successfully")
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	// Initialize adapters

	baseBusinessAdapter := database.NewBusinessAdapter(pgClient)

	// Wrap with caching if Redis is available; business rows back every
	// public review-page load
	var businessRepo repositories.BusinessRepository
	if cacheProvider != nil {
		businessRepo = database.NewCachedBusinessAdapter(baseBusinessAdapter, cacheProvider)
		log.Println("Business adapter wrapped with caching layer")
	} else {
		businessRepo = baseBusinessAdapter
		log.Println("Business adapter running without cache (Redis unavailable)")
	}

	submissionRepo := database.NewSubmissionAdapter(pgClient)
	userRepo := database.NewUserAdapter(pgClient)

	var searchRepo repositories.SubmissionSearchRepository
	if typesenseClient != nil {
		adapter := search.NewTypesenseAdapter(typesenseClient)
		if err := adapter.InitSchema(context.Background()); err != nil {
			log.Printf("Warning: Failed to init Typesense schema: %v", err)
		}
		searchRepo = adapter
	}

	// Event bus for live-preview propagation; in-process fallback keeps the
	// SSE stream working on a single instance without Redis
	var eventBus providers.EventBus
	if redisClient != nil {
		eventBus = events.NewRedisEventBus(redisClient)
		log.Println("Event bus initialized successfully")
	} else {
		eventBus = events.NewLocalEventBus()
		log.Println("Event bus running in-process (Redis not available)")
	}

	// Session store: shared when Redis is up, in-process otherwise
	var sessionStore providers.SessionStore
	if cacheProvider != nil {
		sessionStore = cache.NewSessionStore(cacheProvider)
	} else {
		sessionStore = cache.NewLocalSessionStore()
	}

	// Initialize services

	configStore := services.NewConfigStore()
	configService := services.NewConfigService(configStore, businessRepo, eventBus)
	submissionService := services.NewSubmissionService(submissionRepo, searchRepo)
	sessionService := services.NewReviewSessionService(
		sessionStore,
		configService,
		submissionService,
		businessRepo,
		cfg.App.SessionTTLSecs,
	)
	businessService := services.NewBusinessService(businessRepo, cfg.App.ReviewLinkBase)
	dashboardService := services.NewDashboardService(pgClient.SQLx(), cacheProvider)
	userService := services.NewUserService(userRepo, cfg.Auth.AdminAuthCode)
	adminService := services.NewAdminService(businessRepo, userRepo)

	// Initialize handlers

	reviewLinkHandler := handlers.NewReviewLinkHandler(configService, businessService)
	sessionHandler := handlers.NewReviewSessionHandler(sessionService, cacheProvider, metrics)
	submissionHandler := handlers.NewSubmissionHandler(submissionService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	businessHandler := handlers.NewBusinessHandler(businessService)
	adminHandler := handlers.NewAdminHandler(adminService)
	userHandler := handlers.NewUserHandler(userService)
	sseHandler := handlers.NewSSEHandler(eventBus)

	// Set up router

	router := routes.NewRouter(
		reviewLinkHandler,
		sessionHandler,
		submissionHandler,
		dashboardHandler,
		businessHandler,
		adminHandler,
		userHandler,
		sseHandler,
		cfg.Auth.TokenSecret,
		metrics,
	)

	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// WriteTimeout must outlast long-lived SSE streams; rely on client
		// disconnects and idle timeout instead
		IdleTimeout: 60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	if err := eventBus.Close(); err != nil {
		log.Printf("Error closing event bus: %v", err)
	}

	log.Println("Server stopped")
}
