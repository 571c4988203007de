package app

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/GoArmGo/GalleryApp/internal/config"
	"github.com/GoArmGo/GalleryApp/internal/core/ports"
	"github.com/GoArmGo/GalleryApp/internal/database/client"
	"github.com/GoArmGo/GalleryApp/internal/handler"
	"github.com/GoArmGo/GalleryApp/internal/rabbitmq"
	"github.com/GoArmGo/GalleryApp/internal/usecase"
)

// Run modes. The same binary serves HTTP or consumes one of the enrichment
// queues, selected by the -mode flag.
const (
	ModeServer       = "server"
	ModeVisionWorker = "vision-worker"
	ModeEXIFWorker   = "exif-worker"
)

// App bundles the wired application and runs it in the selected mode.
type App struct {
	Config   *config.Config
	logger   *slog.Logger
	db       *client.Client
	rabbit   *rabbitmq.Client
	handler  *handler.GalleryHandler
	enricher usecase.Enricher
	consumer ports.EnrichmentConsumer
}

// NewApp creates a new App from wired dependencies.
func NewApp(
	cfg *config.Config,
	logger *slog.Logger,
	db *client.Client,
	rabbit *rabbitmq.Client,
	galleryHandler *handler.GalleryHandler,
	enricher usecase.Enricher,
	consumer ports.EnrichmentConsumer,
) *App {
	return &App{
		Config:   cfg,
		logger:   logger,
		db:       db,
		rabbit:   rabbit,
		handler:  galleryHandler,
		enricher: enricher,
		consumer: consumer,
	}
}

// LoggerIns exposes the application logger.
func (a *App) LoggerIns() *slog.Logger {
	return a.logger
}

// Run starts the application in the given mode and blocks until a shutdown
// signal arrives.
func (a *App) Run(ctx context.Context, mode string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.logger.Info("starting", "mode", mode)

	var err error
	switch mode {
	case ModeServer:
		err = runServer(ctx, a.Config, a.handler, a.logger)
	case ModeVisionWorker, ModeEXIFWorker:
		err = runWorker(ctx, mode, a.enricher, a.consumer, a.logger)
	default:
		err = fmt.Errorf("unknown mode %q (use %s, %s or %s)",
			mode, ModeServer, ModeVisionWorker, ModeEXIFWorker)
	}
	if err != nil {
		return err
	}

	a.logger.Info("shutting down")
	if closeErr := a.Shutdown(); closeErr != nil {
		a.logger.Error("error during shutdown", "error", closeErr)
	}
	a.logger.Info("shutdown complete")
	return nil
}

// Shutdown closes the application's resources.
func (a *App) Shutdown() error {
	if a.rabbit != nil {
		a.rabbit.Close()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}
	return nil
}
