package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mikey/news-credibility/internal/di"
	"go.uber.org/zap"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(c di.Components) error {
	logger := c.Logger
	defer logger.Sync()

	// Start the frontend
	if err := c.Frontend.Start(); err != nil {
		logger.Error("Failed to start frontend", zap.Error(err))
		return err
	}

	// Start the training exporter if enabled
	if c.Exporter != nil {
		if err := c.Exporter.Start(); err != nil {
			logger.Error("Failed to start training exporter", zap.Error(err))
			return err
		}
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	// Stop the frontend
	if err := c.Frontend.Stop(); err != nil {
		logger.Error("Failed to stop frontend", zap.Error(err))
	}

	if c.Exporter != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := c.Exporter.Stop(ctx); err != nil {
			logger.Error("Failed to stop training exporter", zap.Error(err))
		}
		cancel()
	}

	// Stop the cache if needed
	if stopper, ok := c.Cache.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	if err := c.Repo.Close(); err != nil {
		logger.Error("Failed to close store", zap.Error(err))
	}

	logger.Info("Shutdown complete")
	return nil
}
