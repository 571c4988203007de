package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/GalleryApp/internal/core/ports"
	"github.com/GoArmGo/GalleryApp/internal/domain"
	"github.com/GoArmGo/GalleryApp/internal/exif"
	"github.com/google/uuid"
)

// enrichUseCase implements Enricher. Both jobs are written to be safely
// re-runnable: a redelivered message converges to the same stored state.
type enrichUseCase struct {
	pictures   ports.PictureStorage
	albums     ports.AlbumStorage
	files      ports.FileStorage
	ledger     TagLedger
	detector   ports.ObjectDetector
	recognizer ports.TextRecognizer
	logger     *slog.Logger
}

// NewEnricher creates a new Enricher.
func NewEnricher(
	pictures ports.PictureStorage,
	albums ports.AlbumStorage,
	files ports.FileStorage,
	ledger TagLedger,
	detector ports.ObjectDetector,
	recognizer ports.TextRecognizer,
	logger *slog.Logger,
) Enricher {
	return &enrichUseCase{
		pictures:   pictures,
		albums:     albums,
		files:      files,
		ledger:     ledger,
		detector:   detector,
		recognizer: recognizer,
		logger:     logger,
	}
}

// loadLivePicture fetches the picture and its bytes. It returns (nil, nil,
// nil) when the picture is gone or soft deleted, or when the object is
// missing from storage: enrichment of a removed asset is a no-op, not a
// failure worth requeueing.
func (uc *enrichUseCase) loadLivePicture(ctx context.Context, pictureID uuid.UUID) (*domain.Picture, []byte, error) {
	picture, err := uc.pictures.GetLivePictureByID(ctx, pictureID)
	if err != nil {
		return nil, nil, fmt.Errorf("usecase: failed to load picture %s: %w", pictureID, err)
	}
	if picture == nil {
		uc.logger.Info("skipping enrichment of missing or deleted picture", "picture_id", pictureID)
		return nil, nil, nil
	}

	data, err := uc.files.Get(ctx, picture.StorageKey)
	if err != nil {
		if errors.Is(err, ports.ErrObjectNotFound) {
			uc.logger.Warn("skipping enrichment, object missing from storage",
				"picture_id", pictureID, "key", picture.StorageKey)
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("usecase: failed to fetch object %s: %w", picture.StorageKey, err)
	}
	return picture, data, nil
}

// ProcessPictureVision runs object detection and text recognition, replaces
// the detection-sourced links and overwrites the OCR text.
func (uc *enrichUseCase) ProcessPictureVision(ctx context.Context, pictureID uuid.UUID) error {
	picture, data, err := uc.loadLivePicture(ctx, pictureID)
	if err != nil || picture == nil {
		return err
	}

	// Model failures degrade to an empty result instead of failing the job:
	// the replace below then clears stale detections, which is the correct
	// converged state for an image the models cannot process.
	labels, err := uc.detector.Detect(ctx, data)
	if err != nil {
		uc.logger.Error("object detection failed", "picture_id", pictureID, "error", err)
		labels = nil
	}
	text, err := uc.recognizer.Recognize(ctx, data)
	if err != nil {
		uc.logger.Error("text recognition failed", "picture_id", pictureID, "error", err)
		text = ""
	}

	if err := uc.ledger.ReplaceSourceLinks(ctx, pictureID, domain.SourceDetection, labels); err != nil {
		return err
	}
	if err := uc.pictures.UpdateOCRText(ctx, pictureID, text); err != nil {
		return fmt.Errorf("usecase: failed to store ocr text for picture %s: %w", pictureID, err)
	}

	uc.logger.Info("vision enrichment finished",
		"picture_id", pictureID, "labels", len(labels), "ocr_chars", len(text))
	return nil
}

// ExtractPictureEXIF parses camera metadata, merges it into the picture and
// album blobs, sets the capture timestamp and replaces the exif-sourced links.
func (uc *enrichUseCase) ExtractPictureEXIF(ctx context.Context, pictureID uuid.UUID) error {
	picture, data, err := uc.loadLivePicture(ctx, pictureID)
	if err != nil || picture == nil {
		return err
	}

	meta, err := exif.Parse(bytes.NewReader(data))
	if err != nil || meta.Empty() {
		// No EXIF segment (screenshots, stripped exports) is the common case,
		// not an error.
		uc.logger.Info("no usable exif metadata", "picture_id", pictureID)
		return nil
	}

	fields := meta.Fields()
	if err := uc.pictures.MergeEXIFData(ctx, pictureID, fields); err != nil {
		return fmt.Errorf("usecase: failed to merge exif data for picture %s: %w", pictureID, err)
	}
	if err := uc.albums.MergeEXIFMetadata(ctx, picture.AlbumID, fields); err != nil {
		return fmt.Errorf("usecase: failed to merge exif metadata for album %s: %w", picture.AlbumID, err)
	}

	if takenAt, ok := meta.TakenAt(); ok {
		if err := uc.pictures.SetTakenAt(ctx, pictureID, takenAt); err != nil {
			return fmt.Errorf("usecase: failed to set taken_at for picture %s: %w", pictureID, err)
		}
	}

	if derived := meta.DerivedTags(); len(derived) > 0 {
		if err := uc.ledger.ReplaceSourceLinks(ctx, pictureID, domain.SourceEXIF, derived); err != nil {
			return err
		}
	}

	uc.logger.Info("exif enrichment finished",
		"picture_id", pictureID, "fields", len(fields))
	return nil
}
