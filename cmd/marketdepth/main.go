package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rickgao/marketdepth/internal/archive"
	"github.com/rickgao/marketdepth/internal/config"
	"github.com/rickgao/marketdepth/internal/database"
	"github.com/rickgao/marketdepth/internal/metrics"
	"github.com/rickgao/marketdepth/internal/pipeline"
	"github.com/rickgao/marketdepth/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/marketdepth.local.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting marketdepth",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	perf := metrics.New(time.Now())

	var writer *archive.Writer
	if cfg.Archive.Enabled {
		logger.Info("connecting to archive database",
			"host", cfg.Archive.DB.Host,
			"database", cfg.Archive.DB.Name,
		)
		pool, err := database.Connect(ctx, cfg.DatabaseConfig())
		if err != nil {
			logger.Error("failed to connect to archive database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		writer = archive.NewWriter(cfg.ArchiveConfig(), pool, logger)
	}

	metricsAddr := fmt.Sprintf(":%d", cfg.Metrics.Port)
	metricsRegistry := metrics.NewRegistry(perf, cfg.Metrics.Path, logger)
	go func() {
		if err := metricsRegistry.Serve(metricsAddr); err != nil {
			logger.Error("metrics server stopped", "error", err)
		}
	}()

	p := pipeline.New(cfg.PipelineConfig())
	if err := p.Initialise(pipeline.Deps{
		BusConfig:    cfg.BusConfig(),
		BookConfig:   cfg.BookConfig(),
		CodecConfig:  cfg.CodecConfig(),
		RouterConfig: cfg.RouterConfig(),
		Archive:      writer,
		Metrics:      perf,
		Logger:       logger,
	}); err != nil {
		logger.Error("failed to initialise pipeline", "error", err)
		os.Exit(1)
	}

	logger.Info("marketdepth running",
		"input_topic", cfg.Processor.InputTopic,
		"metrics_addr", metricsAddr,
		"archive_enabled", cfg.Archive.Enabled,
	)

	runErr := p.Run(ctx)
	if runErr != nil {
		logger.Error("pipeline run stopped with error", "error", runErr)
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	if err := p.Stop(stopCtx); err != nil {
		logger.Error("pipeline stop failed", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := metricsRegistry.Shutdown(shutdownCtx); err != nil {
		logger.Warn("metrics server shutdown failed", "error", err)
	}

	if runErr != nil {
		os.Exit(1)
	}
	logger.Info("marketdepth stopped")
}
