package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/medilens/backend/config"
	"github.com/medilens/backend/internal/app"
	httpDelivery "github.com/medilens/backend/internal/delivery/http"
	"github.com/medilens/backend/internal/infrastructure/metrics"
	"github.com/medilens/backend/internal/usecase"
)

const (
	sessionSweepInterval = 5 * time.Minute
	sessionMaxIdle       = 30 * time.Minute
	shutdownTimeout      = 10 * time.Second
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := app.NewLogger(cfg.Server.Environment)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting MediLens Backend v1.0.0",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("catalog", cfg.Catalog.Type),
		zap.String("cache", cfg.Cache.Type),
		zap.String("cart_store", cfg.Cart.Store),
		zap.Bool("ocr", cfg.OCR.Enabled),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize infrastructure dependencies
	patternCatalog, err := app.Patterns(cfg)
	if err != nil {
		logger.Fatal("Failed to load medicine patterns", zap.Error(err))
	}
	logger.Info("Medicine patterns loaded", zap.Int("canonical_names", patternCatalog.Len()))

	infra, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize infrastructure", zap.Error(err))
	}
	defer infra.Close()

	extractor := app.Extractor(cfg, logger)
	if !cfg.OCR.Enabled {
		logger.Warn("OCR disabled, image analysis requests will fail with a retry hint")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewRecorder(registry)

	// Initialize usecase layer
	cartService := usecase.NewCartService(infra.Catalog, recorder, logger)
	sessions := httpDelivery.NewSessionRegistry(func() *usecase.AnalysisService {
		return usecase.NewAnalysisService(extractor, patternCatalog, infra.Catalog, recorder, logger)
	}, infra.CartStore)

	go sweepSessions(ctx, sessions, logger)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(sessions, infra.Catalog, cartService, cfg.Server.MaxUploadBytes, logger)
	router := httpDelivery.SetupRouter(cfg, handler, logger, registry)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}

func sweepSessions(ctx context.Context, sessions *httpDelivery.SessionRegistry, logger *zap.Logger) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Sweep(sessionMaxIdle); n > 0 {
				logger.Debug("Idle sessions swept", zap.Int("removed", n), zap.Int("live", sessions.Len()))
			}
		}
	}
}
