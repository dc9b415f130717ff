package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"phlock/api"
	"phlock/application"
	"phlock/config"
	"phlock/database"
	"phlock/infrastructure"
	"phlock/infrastructure/observability"
)

// Run initializes and starts the curation engine
func Run(ctx context.Context) error {
	log.Println("Starting curation engine...")

	// Load configuration
	cfg := config.Get()

	// Initialize metrics
	if err := observability.InitializeGlobalMetrics(ctx, cfg); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Apply pending migrations
	log.Println("Applying database migrations...")
	if err := database.MigrateUp(); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	// Initialize NATS connection
	log.Println("Connecting to NATS...")
	natsClient := infrastructure.NewNATSClient(cfg.NATSServers)
	if err := natsClient.Connect(); err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	log.Println("NATS connection established successfully")

	// Initialize event publisher and ensure the event stream exists
	eventPublisher := infrastructure.NewNATSEventPublisher(natsClient, infrastructure.NewEventSubjectMapper())
	if err := eventPublisher.EnsureDomainEventStream(); err != nil {
		return fmt.Errorf("failed to ensure event stream: %w", err)
	}

	// Initialize unit of work factory
	log.Println("Initializing unit of work factory...")
	uowFactory := infrastructure.NewUnitOfWorkFactory(db, eventPublisher)
	log.Println("Unit of work factory initialized successfully")

	// Start the day boundary worker
	log.Printf("Starting day boundary worker (boundary hour %d UTC)...", cfg.BoundaryHour)
	boundaryWorker := application.NewDayBoundaryWorker(uowFactory)
	if err := boundaryWorker.Start(cfg.BoundaryHour); err != nil {
		return fmt.Errorf("failed to start day boundary worker: %w", err)
	}

	// Start the API server
	log.Printf("Starting API server on %s...", cfg.HTTPAddr)
	server := api.NewServer(cfg, uowFactory, boundaryWorker)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	// Wait for context cancellation or a server failure
	log.Printf("Curation engine is running in %s mode...", cfg.Environment)
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("API server failed: %w", err)
		}
	}

	// Cleanup resources
	log.Println("Shutting down curation engine...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Stop accepting requests and drain in-flight ones
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down API server: %v", err)
	}

	// Let an in-progress boundary run finish
	boundaryWorker.Stop()

	// Close NATS connection
	if err := natsClient.Close(); err != nil {
		log.Printf("Error closing NATS connection: %v", err)
	}

	// Flush metrics
	if err := observability.ShutdownGlobalMetrics(shutdownCtx); err != nil {
		log.Printf("Error shutting down metrics: %v", err)
	}

	// Close database connection
	log.Println("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Println("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Println("Shutdown completed")
	}

	return nil
}
