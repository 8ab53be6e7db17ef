// Package main initializes and starts the grant-tracking HTTP server,
// setting up configuration, logging, the database connection, repositories,
// services and handlers.
package main

import (
	"cmp"
	"context"
	"fmt"
	"time"

	nethttp "net/http"

	"github.com/beaconfund/granttrack/internal/config"
	"github.com/beaconfund/granttrack/internal/db"
	"github.com/beaconfund/granttrack/internal/logger"
	"github.com/beaconfund/granttrack/internal/repository"
	"github.com/beaconfund/granttrack/internal/server/handler/http"
	"github.com/beaconfund/granttrack/internal/service"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()
	addr := options.Addr
	dbName := options.DatabaseDSN

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init("info"); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	// Initialize PostgreSQL connection.
	postgresDB, err := db.InitPostgres(dbName)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	// Prune closed applications in the background.
	db.StartClosedApplicationCleaner(context.Background(), postgresDB,
		time.Hour,        // interval
		180*24*time.Hour, // retention: 180 days
		zapLogger,
	)

	// Initialize the record repository and the tracking service.
	recordRepo := repository.NewPostgresRecordRepository(postgresDB)
	trackingService := service.NewTrackingService(recordRepo, zapLogger)

	// Create HTTP handlers for intake, passkey and tracking endpoints.
	applicationHandler := &http.ApplicationHandler{Service: trackingService}
	passkeyHandler := &http.PasskeyHandler{Service: trackingService}
	trackingHandler := &http.TrackingHandler{Service: trackingService}

	// Build the router with middleware and routes.
	router := http.NewRouter(applicationHandler, passkeyHandler, trackingHandler, zapLogger)

	server := &nethttp.Server{
		Addr:    addr,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
