package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Belphemur/MediaFetch/internal/cache"
	"github.com/Belphemur/MediaFetch/internal/config"
	"github.com/Belphemur/MediaFetch/internal/cookies"
	"github.com/Belphemur/MediaFetch/internal/download"
	"github.com/Belphemur/MediaFetch/internal/health"
	"github.com/Belphemur/MediaFetch/internal/metadata"
	"github.com/Belphemur/MediaFetch/internal/metrics"
	"github.com/Belphemur/MediaFetch/internal/progress"
	"github.com/Belphemur/MediaFetch/internal/reporting"
	"github.com/Belphemur/MediaFetch/internal/retention"
	"github.com/Belphemur/MediaFetch/internal/server"
	"github.com/Belphemur/MediaFetch/internal/ytdlp"
)

// shutdownGrace bounds how long open requests, downloads included, may run after a signal.
const shutdownGrace = 30 * time.Second

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := loadConfig()
	logger := config.GetLogger()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.Info().
		Str("version", version).
		Str("cookie_mode", cfg.Cookies.Mode).
		Int("max_files", cfg.Retention.MaxFiles).
		Int("server_port", cfg.Server.Port).
		Str("server_address", cfg.Server.Address).
		Dur("request_delay", cfg.RequestDelay()).
		Str("cache_provider", cfg.Cache.Provider).
		Msg("Application started with configuration")

	if err := reporting.Init(cfg, version); err != nil {
		logger.Error().Err(err).Msg("Failed to initialise Sentry, continuing without error reporting")
	}
	defer reporting.Flush(2 * time.Second)

	for _, dir := range []string{cfg.DownloadsDir, cfg.UploadsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Fatal().Err(err).Str("dir", dir).Msg("Failed to create directory")
		}
	}

	runner := ytdlp.NewExecRunner(cfg.Ytdlp.Binary)
	if err := runner.Available(); err != nil {
		logger.Warn().Err(err).Str("binary", cfg.Ytdlp.Binary).Msg("yt-dlp not found, requests will fail until it is installed")
	}

	metaCache, err := cache.FromConfig(cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("provider", cfg.Cache.Provider).Msg("Failed to create metadata cache")
	}
	defer func() {
		if err := metaCache.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close metadata cache")
		}
	}()

	provisioner := cookies.New(cfg)
	broadcaster := progress.NewBroadcaster(progress.DefaultBuffer)
	fetcher := metadata.NewFetcher(runner, metaCache, metadata.Options{
		Delay:     cfg.RequestDelay(),
		Timeout:   cfg.MetadataTimeout(),
		ForceIPv4: cfg.Ytdlp.ForceIPv4,
	})
	orchestrator := download.NewOrchestrator(download.Dependencies{
		Runner:       runner,
		Titles:       fetcher,
		Cookies:      provisioner,
		Progress:     broadcaster,
		Retention:    retention.NewManager(),
		DownloadsDir: cfg.DownloadsDir,
		MaxFiles:     cfg.Retention.MaxFiles,
		ForceIPv4:    cfg.Ytdlp.ForceIPv4,
	})

	deps := server.Dependencies{
		Orchestrator:   orchestrator,
		Details:        fetcher,
		Cookies:        provisioner,
		Progress:       broadcaster,
		MaxUploadBytes: cfg.Cookies.MaxUploadBytes,
		StaticDir:      cfg.Server.StaticDir,
		Logger:         logger,
	}
	if cfg.Cookies.Mode == config.CookieModeUpload {
		deps.Uploads = cookies.NewUploadStore(cfg.UploadsDir, cfg.Cookies.MaxUploadBytes)
	}
	httpServer := server.NewHTTPServer(cfg, server.New(deps).Handler())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start Prometheus metrics HTTP server
	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewHTTPServer(cfg.Server.Address, cfg.Metrics.Port)
		go func() {
			logger.Info().Str("address", metricsServer.Addr).Msg("Starting Prometheus metrics HTTP server")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal().Err(err).Msg("Failed to serve metrics")
			}
		}()
		defer func() {
			if err := metricsServer.Shutdown(context.Background()); err != nil {
				logger.Error().Err(err).Msg("Failed to shutdown metrics server")
			}
		}()
	}

	if cfg.GRPC.Enabled {
		healthServer := health.NewGRPCServer(runner.Available)
		address := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.GRPC.Port)
		listener, err := net.Listen("tcp", address)
		if err != nil {
			logger.Fatal().Err(err).Str("address", address).Msg("Failed to create gRPC listener")
		}
		go healthServer.Watch(ctx, 30*time.Second)
		go func() {
			logger.Info().Str("address", address).Msg("Starting gRPC health server")
			if err := healthServer.Serve(listener); err != nil {
				logger.Error().Err(err).Msg("gRPC health server stopped")
			}
		}()
		defer healthServer.Shutdown()
	}

	listener, err := net.Listen("tcp", httpServer.Addr)
	if err != nil {
		logger.Fatal().Err(err).Str("address", httpServer.Addr).Msg("Failed to create HTTP listener")
	}

	logger.Info().Str("address", httpServer.Addr).Msg("Starting HTTP server")
	err = serve(ctx, httpServer, listener, shutdownGrace, func() {
		logger.Info().Msg("Received shutdown signal")
		// Ends the open SSE streams so they do not hold up the drain.
		broadcaster.Close()
	})
	if err != nil {
		logger.Error().Err(err).Msg("HTTP server did not stop cleanly")
		return
	}

	logger.Info().Msg("Server stopped gracefully")
}

// loadConfig applies a .env file, if any, before reading configuration again so
// values from it take effect.
func loadConfig() (*config.Config, error) {
	if err := godotenv.Load(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config.GetConfig(), nil
		}
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return config.Reload()
}
