package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/GoArmGo/GalleryApp/internal/archive"
	"github.com/GoArmGo/GalleryApp/internal/core/ports"
	"github.com/GoArmGo/GalleryApp/internal/domain"
	"github.com/GoArmGo/GalleryApp/internal/imaging"
	"github.com/GoArmGo/GalleryApp/internal/messaging/payloads"
	"github.com/google/uuid"
)

// storageExtensions are the extensions kept verbatim in storage keys; anything
// else falls back to jpg so keys stay predictable for the edge proxy.
var storageExtensions = map[string]struct{}{
	"jpg": {}, "jpeg": {}, "png": {}, "gif": {}, "webp": {}, "heic": {}, "heif": {},
}

// ingestUseCase implements PictureIngestor.
type ingestUseCase struct {
	pictures  ports.PictureStorage
	albums    ports.AlbumStorage
	files     ports.FileStorage
	ledger    TagLedger
	publisher ports.EnrichmentPublisher
	logger    *slog.Logger
}

// NewPictureIngestor creates a new PictureIngestor.
func NewPictureIngestor(
	pictures ports.PictureStorage,
	albums ports.AlbumStorage,
	files ports.FileStorage,
	ledger TagLedger,
	publisher ports.EnrichmentPublisher,
	logger *slog.Logger,
) PictureIngestor {
	return &ingestUseCase{
		pictures:  pictures,
		albums:    albums,
		files:     files,
		ledger:    ledger,
		publisher: publisher,
		logger:    logger,
	}
}

// IngestPicture stores the image, creates the row, attaches user tags and
// dispatches the enrichment tasks.
func (uc *ingestUseCase) IngestPicture(ctx context.Context, albumID uuid.UUID, filename string, data []byte, contentType string, tagNames []string) (*domain.Picture, error) {
	if len(data) == 0 {
		return nil, ErrEmptyUpload
	}

	album, err := uc.albums.GetAlbumByID(ctx, albumID)
	if err != nil {
		return nil, fmt.Errorf("usecase: failed to resolve album %s: %w", albumID, err)
	}
	if album == nil || album.IsDeleted() {
		return nil, ErrAlbumNotFound
	}

	// Dimensions come from the image header only; undecodable headers leave
	// them unset rather than failing the upload.
	var width, height *int
	if w, h, ok := imaging.Dimensions(data); ok {
		width, height = &w, &h
	}

	if contentType == "" {
		contentType = contentTypeFor(filename)
	}

	pictureID := uuid.New()
	storageKey := fmt.Sprintf("pictures/%s/%s.%s", albumID, strings.ReplaceAll(pictureID.String(), "-", ""), storageExtension(filename))

	// Write-then-link: the object must exist before any row references it.
	if _, err := uc.files.Put(ctx, storageKey, data, contentType); err != nil {
		return nil, fmt.Errorf("usecase: failed to store object for picture %s: %w", pictureID, err)
	}

	now := time.Now()
	picture := &domain.Picture{
		ID:         pictureID,
		AlbumID:    albumID,
		Title:      strings.TrimSuffix(path.Base(filename), path.Ext(filename)),
		StorageKey: storageKey,
		FileSize:   int64(len(data)),
		MimeType:   contentType,
		Width:      width,
		Height:     height,
		EXIFData:   domain.JSONMap{},
		UploadedAt: now,
		UpdatedAt:  now,
	}
	if err := uc.pictures.CreatePicture(ctx, picture); err != nil {
		// The row never existed, so remove the object instead of leaking it.
		if delErr := uc.files.Delete(ctx, storageKey); delErr != nil {
			uc.logger.Error("failed to clean up object after insert failure",
				"storage_key", storageKey, "error", delErr)
		}
		return nil, fmt.Errorf("usecase: failed to save picture %s: %w", pictureID, err)
	}

	for _, name := range tagNames {
		if strings.TrimSpace(name) == "" {
			continue
		}
		if _, _, err := uc.ledger.AddLink(ctx, pictureID, name, domain.SourceUser); err != nil {
			return nil, err
		}
	}

	uc.dispatchEnrichment(ctx, pictureID)

	uc.logger.Info("picture ingested",
		"id", pictureID, "album_id", albumID, "size", len(data), "key", storageKey)
	return picture, nil
}

// IngestArchive extracts qualifying images from an archive and ingests each
// as a separate picture. The archive is fully extracted before the first
// picture is created, so a bad archive ingests nothing.
func (uc *ingestUseCase) IngestArchive(ctx context.Context, albumID uuid.UUID, filename string, data []byte, tagNames []string) ([]domain.Picture, error) {
	entries, err := archive.ExtractImages(data, filename)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrEmptyUpload
	}

	pictures := make([]domain.Picture, 0, len(entries))
	for _, entry := range entries {
		picture, err := uc.IngestPicture(ctx, albumID, entry.Name, entry.Data, contentTypeFor(entry.Name), tagNames)
		if err != nil {
			return nil, fmt.Errorf("usecase: failed to ingest archive entry %q: %w", entry.Name, err)
		}
		pictures = append(pictures, *picture)
	}

	uc.logger.Info("archive ingested",
		"album_id", albumID, "archive", filename, "pictures", len(pictures))
	return pictures, nil
}

// dispatchEnrichment publishes one task per worker class. Publish failures
// only log: the picture is already persisted and the jobs can be re-enqueued.
func (uc *ingestUseCase) dispatchEnrichment(ctx context.Context, pictureID uuid.UUID) {
	payload := payloads.PictureTaskPayload{PictureID: pictureID}
	if err := uc.publisher.PublishVisionTask(ctx, payload); err != nil {
		uc.logger.Error("failed to publish vision task", "picture_id", pictureID, "error", err)
	}
	if err := uc.publisher.PublishEXIFTask(ctx, payload); err != nil {
		uc.logger.Error("failed to publish exif task", "picture_id", pictureID, "error", err)
	}
}

// storageExtension returns the lowercased extension to keep in the storage
// key, defaulting to jpg for anything outside the accepted set.
func storageExtension(filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if _, ok := storageExtensions[ext]; ok {
		return ext
	}
	return "jpg"
}

// contentTypeFor guesses a MIME type from the filename, defaulting to
// image/jpeg.
func contentTypeFor(filename string) string {
	if ct := mime.TypeByExtension(path.Ext(filename)); ct != "" {
		return ct
	}
	return "image/jpeg"
}
