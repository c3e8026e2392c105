package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	httpadapter "github.com/cinderwatch/wildfire-detect-service/internal/adapter/http"
	kafkaadapter "github.com/cinderwatch/wildfire-detect-service/internal/adapter/kafka"
	"github.com/cinderwatch/wildfire-detect-service/internal/config"
	"github.com/cinderwatch/wildfire-detect-service/internal/domain"
	"github.com/cinderwatch/wildfire-detect-service/internal/observability"
	"github.com/cinderwatch/wildfire-detect-service/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Detection profile (TUNING_FILE, optional; defaults compiled in).
	tuning, err := config.LoadTuning(cfg.TuningFile)
	if err != nil {
		logger.Error("failed to load tuning profile", "error", err, "path", cfg.TuningFile)
		os.Exit(1)
	}
	conditionerCfg, scoringPolicy, err := tuning.Configs()
	if err != nil {
		logger.Error("invalid tuning profile", "error", err, "path", cfg.TuningFile)
		os.Exit(1)
	}
	if cfg.TuningFile != "" {
		logger.Info("tuning profile loaded", "path", cfg.TuningFile,
			"emission_mode", scoringPolicy.EmissionMode, "wind_mode", scoringPolicy.WindMode)
	}

	// Per-reading score tracing is verbose; gate it on debug logging.
	var observer domain.ScoreObserver
	if strings.EqualFold(cfg.LogLevel, "debug") {
		observer = observability.NewScoreLogObserver(logger)
		logger.Info("per-reading score tracing enabled")
	}

	detector, err := domain.NewDetector(conditionerCfg, scoringPolicy, observer)
	if err != nil {
		logger.Error("failed to build detector", "error", err)
		os.Exit(1)
	}

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(detector, logger)

	p, err := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize, cfg.DedupeCacheSize)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}

	srv, err := httpadapter.NewServer(cfg.HTTPAddr, detector, p, logger)
	if err != nil {
		logger.Error("failed to build http server", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start detection pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
