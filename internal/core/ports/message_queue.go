package ports

import (
	"context"

	"github.com/GoArmGo/GalleryApp/internal/messaging/payloads"
)

// EnrichmentPublisher dispatches enrichment tasks for a picture. Ingestion
// publishes one task to each worker class; the two queues are independent and
// no ordering holds between them.
type EnrichmentPublisher interface {
	// PublishVisionTask enqueues the detection+text job (GPU pool).
	PublishVisionTask(ctx context.Context, payload payloads.PictureTaskPayload) error
	// PublishEXIFTask enqueues the EXIF extraction job (CPU pool).
	PublishEXIFTask(ctx context.Context, payload payloads.PictureTaskPayload) error
}

// EnrichmentConsumer is used by workers to receive enrichment tasks.
// A handler error requeues the message; success acks it.
type EnrichmentConsumer interface {
	StartConsumingVisionTasks(ctx context.Context, handler func(context.Context, payloads.PictureTaskPayload) error) error
	StartConsumingEXIFTasks(ctx context.Context, handler func(context.Context, payloads.PictureTaskPayload) error) error
}
