package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/saturnino-fabrica-de-software/facescan/internal/analysis"
	"github.com/saturnino-fabrica-de-software/facescan/internal/api"
	"github.com/saturnino-fabrica-de-software/facescan/internal/audit"
	"github.com/saturnino-fabrica-de-software/facescan/internal/config"
	"github.com/saturnino-fabrica-de-software/facescan/internal/face"
	"github.com/saturnino-fabrica-de-software/facescan/internal/live"
	"github.com/saturnino-fabrica-de-software/facescan/internal/service"
	"github.com/saturnino-fabrica-de-software/facescan/internal/session"
	"github.com/saturnino-fabrica-de-software/facescan/internal/ws"
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
	logger := config.NewLogger(cfg)
	slog.SetDefault(logger)

	logger.Info("starting facescan API",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
		slog.String("detector", cfg.Detector),
		slog.String("landmarks", cfg.Landmarks),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Providers
	detector, err := face.NewDetector(ctx, cfg)
	if err != nil {
		return err
	}
	predictor, err := face.NewPredictor(cfg)
	if err != nil {
		return err
	}

	analyzer := analysis.NewAnalyzer(detector, predictor, logger)
	processor := live.NewProcessor(analyzer, live.Config{
		MaxFrameBytes: cfg.MaxFrameBytes,
		Mirror:        cfg.MirrorFrames,
	}, logger)

	// Sessions
	store := session.NewStore(cfg.SessionTTL, logger)
	hub := ws.NewHub()
	svc := service.NewSessionService(store, analyzer, processor, hub, logger).
		WithAudit(audit.NewSlogLogger(logger), cfg.Detector)

	reaper := session.NewReaper(store, svc.Expire, logger, cfg.SessionSweepInterval)
	reaperCtx, cancelReaper := context.WithCancel(context.Background())
	defer cancelReaper()
	go reaper.Run(reaperCtx)

	// Setup router
	router := api.NewRouter(logger, &api.Dependencies{
		Service:       svc,
		Sessions:      store,
		Hub:           hub,
		DetectorName:  cfg.Detector,
		LandmarksName: cfg.Landmarks,
		AnalyzeRate:   cfg.AnalyzeRate,
		AnalyzeBurst:  cfg.AnalyzeBurst,
		MaxFrameBytes: cfg.MaxFrameBytes,
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

	logger.Info("shutting down server...")
	cancelReaper()

	done := make(chan error, 1)
	go func() { done <- router.Shutdown() }()

	select {
	case err := <-done:
		if err != nil {
			logger.Error("shutdown error", slog.Any("error", err))
		}
	case <-time.After(10 * time.Second):
		logger.Warn("shutdown timed out")
	}

	logger.Info("server stopped", slog.Int("open_sessions", store.Len()))

	return nil
}
