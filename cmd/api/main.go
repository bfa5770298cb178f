// Package main is the entry point for the API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/focus-analytics/transcript-insights/internal/cache"
	"github.com/focus-analytics/transcript-insights/internal/config"
	"github.com/focus-analytics/transcript-insights/internal/fetcher"
	"github.com/focus-analytics/transcript-insights/internal/handler"
	"github.com/focus-analytics/transcript-insights/internal/middleware"
	"github.com/focus-analytics/transcript-insights/internal/service"
	"github.com/focus-analytics/transcript-insights/internal/token"
	"github.com/focus-analytics/transcript-insights/pkg/logger"
	"github.com/focus-analytics/transcript-insights/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting API server")

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", zap.Error(err))
		os.Exit(1)
	}

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "transcript-insights", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Result cache: Redis when configured, in-process otherwise
	var (
		resultCache cache.Cache
		cachePinger handler.Pinger
	)
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedis(cfg.RedisAddr, cfg.CacheTTL)
		if err != nil {
			log.Error("failed to connect to redis", zap.Error(err))
			os.Exit(1)
		}
		defer redisCache.Close()
		resultCache = redisCache
		cachePinger = redisCache
		log.Info("using redis result cache", zap.String("addr", cfg.RedisAddr))
	} else {
		resultCache = cache.NewMemory(cfg.CacheTTL)
		log.Info("using in-memory result cache")
	}

	// Initialize pipeline
	issuer := token.NewIssuer()
	transcriptFetcher := fetcher.New(cfg.PlatformHost, issuer, log)
	reportSvc := service.NewReportService(cfg.BotID, cfg.Credential(), transcriptFetcher, resultCache, log)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(cachePinger)
	reportHandler := handler.NewReportHandler(reportSvc, cfg.MaxRangeDays, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Link", "Content-Disposition", "X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// API routes with authentication
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.APIJWTSecret != "" {
			r.Use(middleware.Auth(cfg.APIJWTSecret))
		} else {
			log.Warn("API_JWT_SECRET not set, report endpoints are unauthenticated")
		}
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Route("/reports", func(r chi.Router) {
			r.Get("/", reportHandler.Get)
			r.Get("/export", reportHandler.Export)
		})
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
