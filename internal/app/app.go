// Package app wires the storage backends, acquisition stations, and REST
// server into one daemon.
package app

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/rpelletier/meteopi/internal/controllers/restserver"
	"github.com/rpelletier/meteopi/internal/log"
	"github.com/rpelletier/meteopi/internal/managers"
	"github.com/rpelletier/meteopi/pkg/config"
)

// App represents the main application
type App struct {
	config *config.ConfigData
	logger *zap.SugaredLogger
}

// New creates a new application instance
func New(cfg *config.ConfigData, logger *zap.SugaredLogger) *App {
	return &App{
		config: cfg,
		logger: logger,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	storageManager, err := managers.NewStorageManager(ctx, &wg, a.config)
	if err != nil {
		return err
	}

	stationManager, err := managers.NewStationManager(ctx, &wg, a.config, storageManager.ReadingDistributor, a.logger)
	if err != nil {
		return err
	}
	if err := stationManager.StartStations(); err != nil {
		return err
	}

	restServer, err := restserver.NewController(ctx, &wg, a.config.REST, storageManager.ReadStore, a.logger)
	if err != nil {
		return err
	}
	if err := restServer.StartController(); err != nil {
		return err
	}

	log.Info("Application started successfully")

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	cancel()

	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}
