package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/netlens/netsummary"
	"github.com/netlens/netsummary/internal/config"
	"github.com/netlens/netsummary/internal/errortypes"
	"github.com/netlens/netsummary/internal/logger"
)

func main() {
	configPath := flag.String("config", config.DefaultConfigFilename, "path to the configuration file")
	flag.Parse()

	// Initialize logging first thing
	appLogger := setupLogging()

	appLogger.Info("NetSummary MCP Server - Starting...")

	// Load configuration
	cfg, err := config.LoadConfigWithPath(*configPath)
	if err != nil {
		errortypes.LogError(appLogger, err)
		appLogger.Error("Failed to load configuration")
		os.Exit(1)
	}

	// Reconfigure logging based on config
	if cfg.Logging.Level != "" || cfg.Logging.Format != "" {
		appLogger = logger.FromSettings(cfg.Logging.Level, cfg.Logging.Format, nil)
		logger.SetDefault(appLogger)
		appLogger.Info("Logging configured", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	}

	// Build the service
	srv, err := netsummary.NewServer(netsummary.ServerOptions{
		Config: cfg,
		Logger: appLogger,
	})
	if err != nil {
		errortypes.LogError(appLogger, err)
		appLogger.Error("Failed to initialize NetSummary server")
		os.Exit(1)
	}

	// Handle graceful shutdown
	setupSignalHandler(srv, appLogger)

	// Start the MCP server (this will block until server is terminated)
	appLogger.Info("Starting MCP server...")
	if err := srv.Start(); err != nil {
		err = errortypes.InternalError(err, "MCP server failed")
		errortypes.LogError(appLogger, err)
		appLogger.Error("Failed to start MCP server")
		os.Exit(1)
	}
}

// setupLogging configures and returns the application logger
func setupLogging() *slog.Logger {
	cfg := logger.DefaultConfig()

	// Try to get log level from environment variable
	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		cfg.Level = logger.ParseLevel(levelStr)
	}

	appLogger := logger.New(cfg)
	logger.SetDefault(appLogger)

	return appLogger
}

// setupSignalHandler sets up a signal handler for graceful shutdown.
func setupSignalHandler(srv *netsummary.Server, log *slog.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Info("Received shutdown signal, terminating gracefully...")

		if err := srv.Stop(); err != nil {
			err = errortypes.InternalError(err, "Error stopping service during shutdown")
			errortypes.LogError(log, err)
		} else {
			log.Info("Service stopped successfully")
		}

		log.Info("Shutdown complete")
		os.Exit(0)
	}()
}
