package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/carebridge/telemed-backend/internal/adapters/cache"
	"github.com/carebridge/telemed-backend/internal/adapters/database"
	"github.com/carebridge/telemed-backend/internal/adapters/events"
	"github.com/carebridge/telemed-backend/internal/api/handlers"
	"github.com/carebridge/telemed-backend/internal/api/routes"
	"github.com/carebridge/telemed-backend/internal/application/services"
	"github.com/carebridge/telemed-backend/internal/domain/providers"
	"github.com/carebridge/telemed-backend/internal/domain/repositories"
	"github.com/carebridge/telemed-backend/internal/infrastructure/clients/postgres"
	"github.com/carebridge/telemed-backend/internal/infrastructure/clients/redis"
	"github.com/carebridge/telemed-backend/internal/infrastructure/notifications"
	"github.com/carebridge/telemed-backend/internal/infrastructure/observability"
	"github.com/carebridge/telemed-backend/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)
	logger := observability.GetLogger()

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					logger.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			logger.Info().Msg("OpenTelemetry initialized")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	logger.Info().Msg("PostgreSQL client initialized")

	// sqlx wrapper backs the notification audit log
	auditDB := sqlx.NewDb(pgClient.DB(), "postgres")

	// Initialize Redis client; the engine degrades gracefully without it
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to initialize Redis client, continuing without cache and event bus")
		redisClient = nil
	} else {
		defer redisClient.Close()
		logger.Info().Msg("Redis client initialized")
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	// Initialize event bus for dashboard streams
	var eventBus providers.EventBus
	if redisClient != nil {
		eventBus = events.NewRedisEventBus(redisClient)
		logger.Info().Msg("event bus initialized")
	} else {
		logger.Info().Msg("event bus disabled (Redis not available)")
	}

	// Initialize adapters
	emergencyAdapter := database.NewEmergencyAdapter(pgClient, metrics)
	doctorAdapter := database.NewDoctorAdapter(pgClient)

	baseAmbulanceAdapter := database.NewAmbulanceAdapter(pgClient)
	var ambulanceAdapter repositories.AmbulanceRepository
	if cacheProvider != nil {
		ambulanceAdapter = database.NewCachedAmbulanceAdapter(baseAmbulanceAdapter, cacheProvider, metrics)
		logger.Info().Msg("ambulance adapter wrapped with caching layer")
	} else {
		ambulanceAdapter = baseAmbulanceAdapter
	}

	// Initialize SMS provider; a log-only sender stands in when the
	// gateway is not configured
	var smsProvider providers.SMSProvider
	sender, err := notifications.NewSMSGatewaySender(&cfg.SMS)
	if err != nil {
		logger.Warn().Err(err).Msg("SMS gateway not configured, using log-only sender")
		smsProvider = notifications.NewLogSender()
	} else {
		smsProvider = sender
	}

	// Initialize services
	matcher := services.NewDoctorMatcher(doctorAdapter)
	ranker := services.NewAmbulanceRanker(ambulanceAdapter)
	fanout := services.NewNotificationFanout(smsProvider, auditDB, metrics, &cfg.Dispatch)

	emergencyService := services.NewEmergencyService(
		emergencyAdapter,
		matcher,
		ranker,
		fanout,
		eventBus,
		metrics,
		cfg.Dispatch.VideoCallBaseURL,
		cfg.Dispatch.AmbulanceAlertLimit,
	)
	ambulanceService := services.NewAmbulanceAdminService(ambulanceAdapter)

	// Initialize handlers
	emergencyHandler := handlers.NewEmergencyHandler(emergencyService)
	ambulanceHandler := handlers.NewAmbulanceHandler(ambulanceService)

	var sseHandler *handlers.SSEHandler
	if eventBus != nil {
		sseHandler = handlers.NewSSEHandler(eventBus)
	}

	// Set up router
	router := routes.NewRouter(emergencyHandler, ambulanceHandler, sseHandler, metrics)
	handler := router.SetupRoutes()

	// Create HTTP server. Write timeout stays generous so SSE streams
	// are not cut off mid-connection.
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("error during server shutdown")
	}

	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			logger.Error().Err(err).Msg("error closing event bus")
		}
	}

	logger.Info().Msg("server stopped")
}
