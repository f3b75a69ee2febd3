package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"exposure-platform/internal/config"
	"exposure-platform/internal/handlers"
	"exposure-platform/internal/repository"
	"exposure-platform/internal/services"
	"exposure-platform/pkg/database"
	"exposure-platform/pkg/logging"
	"exposure-platform/pkg/metrics"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logLevel, _ := logging.ParseLevel(cfg.Logging.Level)
	logger := logging.NewStructuredLogger("study-api", version, logLevel)

	ctx := context.Background()
	logger.Info(ctx, "[STARTUP] Starting exposure study API server", logging.Fields{
		"version":     version,
		"server_host": cfg.Server.Host,
		"server_port": cfg.Server.Port,
		"db_driver":   cfg.Database.Driver,
		"db_name":     cfg.Database.Database,
	})

	// Initialize metrics collector
	metricsCollector := metrics.NewCollector(cfg.Metrics.Namespace, prometheus.DefaultRegisterer)

	// Initialize database
	db, err := database.Open(ctx, cfg.DatabaseConfig(), logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to connect to database", logging.Fields{}, err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		applied, err := db.Migrate(ctx, database.Up)
		if err != nil {
			logger.Fatal(ctx, "[STARTUP_ERROR] Failed to migrate database", logging.Fields{}, err)
		}
		logger.Info(ctx, "[STARTUP] Database schema is current", logging.Fields{
			"applied": applied,
		})
	}

	// Initialize repository
	recordRepo := repository.NewRecordRepository(db, logger, metricsCollector)

	// Initialize services
	catalog := cfg.Catalog()
	studyService := services.NewStudyService(recordRepo, nil, catalog, logger, metricsCollector)
	convertService := services.NewConvertService(metricsCollector)

	// Initialize handlers
	studyHandler := handlers.NewStudyHandler(studyService, convertService, logger, metricsCollector)
	eventHub := handlers.NewEventHub(cfg.Events.BufferSize, cfg.Events.PingInterval, logger, metricsCollector)
	eventHub.Attach(studyService)
	defer eventHub.Close()

	// Setup router
	router := mux.NewRouter()

	// Register routes
	studyHandler.RegisterRoutes(router)
	eventHub.RegisterRoutes(router)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info(ctx, "[SERVER_START] HTTP server listening", logging.Fields{
			"address": server.Addr,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "[SERVER_ERROR] Server failed", logging.Fields{}, err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "[SHUTDOWN] Shutting down server...", logging.Fields{})

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Websocket connections are hijacked and not tracked by Shutdown.
	eventHub.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "[SHUTDOWN_ERROR] Server forced to shutdown", logging.Fields{}, err)
	}

	logger.Info(ctx, "[SHUTDOWN_COMPLETE] Server stopped", logging.Fields{})
}
