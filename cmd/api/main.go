package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/saturnino-fabrica-de-software/empathia/internal/api"
	"github.com/saturnino-fabrica-de-software/empathia/internal/audit"
	"github.com/saturnino-fabrica-de-software/empathia/internal/cache"
	"github.com/saturnino-fabrica-de-software/empathia/internal/config"
	"github.com/saturnino-fabrica-de-software/empathia/internal/database"
	"github.com/saturnino-fabrica-de-software/empathia/internal/emotion"
	"github.com/saturnino-fabrica-de-software/empathia/internal/face"
	"github.com/saturnino-fabrica-de-software/empathia/internal/matching"
	"github.com/saturnino-fabrica-de-software/empathia/internal/metrics"
	"github.com/saturnino-fabrica-de-software/empathia/internal/repository"
	"github.com/saturnino-fabrica-de-software/empathia/internal/service"
	"github.com/saturnino-fabrica-de-software/empathia/internal/webhook"
	"github.com/saturnino-fabrica-de-software/empathia/internal/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("starting Empathia API",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
		slog.String("embedding_provider", cfg.EmbeddingProvider),
		slog.String("emotion_provider", cfg.EmotionProvider),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	pool, err := database.NewPool(ctx, database.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.NewMetrics(registry)
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	// Providers
	embedder, err := face.NewEmbeddingProvider(cfg)
	if err != nil {
		return fmt.Errorf("failed to create embedding provider: %w", err)
	}
	classifier, err := face.NewEmotionClassifier(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create emotion classifier: %w", err)
	}

	// Store and gallery
	employees := repository.NewEmployeeRepository(pool)
	logs := repository.NewEmotionLogRepository(pool)
	gallery := cache.NewGalleryCache(employees, cfg.GalleryCacheTTL, m)
	locks := service.NewEmployeeLocks()
	auditLogger := audit.NewSlogLogger(logger)

	// Live feed and outbound webhook
	hub := ws.NewHub(logger)
	go hub.Run(ctx)

	events := service.Fanout{hub}
	if cfg.WebhookURL != "" {
		notifier := webhook.NewNotifier(webhook.Config{
			URL:         cfg.WebhookURL,
			Secret:      cfg.WebhookSecret,
			Events:      cfg.WebhookEvents,
			MaxAttempts: cfg.WebhookMaxAttempts,
		}, logger)
		go notifier.Run(ctx)
		events = append(events, notifier)
	}

	// Matching and emotion pipeline
	bands := matching.DefaultBands()
	bands.Acceptable = cfg.AcceptanceFloor
	matcher := matching.NewMatcher(matching.NewScorer(), matching.Config{
		Threshold:     cfg.MatchThreshold,
		Dimension:     cfg.EmbeddingDimension,
		Bands:         bands,
		TopCandidates: matching.DefaultTopCandidates,
	}, logger, m)

	sampler, err := emotion.NewSampler(classifier, emotion.DefaultStrategy(cfg.EmotionBackends), logger, m)
	if err != nil {
		return fmt.Errorf("failed to create emotion sampler: %w", err)
	}

	employeeService := service.NewEmployeeService(employees, logs, embedder, gallery, locks, logger).
		WithDimension(cfg.EmbeddingDimension).
		WithAudit(auditLogger).
		WithEvents(events)
	checkinService := service.NewCheckinService(embedder, gallery, matcher, sampler, emotion.NewAggregator(),
		employees, logs, locks, logger).
		WithTargetSamples(cfg.EmotionSamples).
		WithAudit(auditLogger).
		WithEvents(events).
		WithMetrics(m)

	// Gallery gauges
	reporter := metrics.NewGalleryReporter(employees, m, cfg.EmbeddingDimension, logger, time.Minute)
	go reporter.Start(ctx)
	defer reporter.Stop()

	// Setup router
	router := api.NewRouter(logger, &api.Dependencies{
		Employees:    employeeService,
		Checkin:      checkinService,
		DB:           pool,
		Metrics:      m,
		Hub:          hub,
		MaxImageSize: cfg.MaxImageSize,
	})
	router.Setup()

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Info("shutting down server...")
	if err := router.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}

	logger.Info("server stopped")

	return nil
}
