package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/GalleryApp/internal/core/ports"
	"github.com/GoArmGo/GalleryApp/internal/messaging/payloads"
	"github.com/GoArmGo/GalleryApp/internal/usecase"
)

// runWorker consumes one enrichment queue until ctx is cancelled. The vision
// worker class runs detection and OCR (GPU pool); the exif class parses
// camera metadata (CPU pool).
func runWorker(ctx context.Context, mode string, enricher usecase.Enricher, consumer ports.EnrichmentConsumer, logger *slog.Logger) error {
	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	var err error
	switch mode {
	case ModeVisionWorker:
		err = consumer.StartConsumingVisionTasks(workerCtx, func(ctx context.Context, payload payloads.PictureTaskPayload) error {
			return enricher.ProcessPictureVision(ctx, payload.PictureID)
		})
	case ModeEXIFWorker:
		err = consumer.StartConsumingEXIFTasks(workerCtx, func(ctx context.Context, payload payloads.PictureTaskPayload) error {
			return enricher.ExtractPictureEXIF(ctx, payload.PictureID)
		})
	default:
		return fmt.Errorf("unknown worker mode %q", mode)
	}
	if err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}

	logger.Info("worker started, waiting for tasks", "mode", mode)
	<-ctx.Done()

	logger.Info("worker stopping", "mode", mode)
	cancelWorker()
	// give in-flight handlers a moment to ack before the connection closes
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped", "mode", mode)
	return nil
}
