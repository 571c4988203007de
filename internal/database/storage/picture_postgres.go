package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/GalleryApp/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PicturePostgresStorage implements ports.PictureStorage with GORM.
type PicturePostgresStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewPicturePostgresStorage creates a new PicturePostgresStorage.
func NewPicturePostgresStorage(db *gorm.DB, logger *slog.Logger) *PicturePostgresStorage {
	return &PicturePostgresStorage{db: db, logger: logger}
}

// CreatePicture inserts a new picture row. The storage object for
// picture.StorageKey is expected to exist already.
func (s *PicturePostgresStorage) CreatePicture(ctx context.Context, picture *domain.Picture) error {
	start := time.Now()

	if picture.ID == uuid.Nil {
		picture.ID = uuid.New()
	}
	if picture.EXIFData == nil {
		picture.EXIFData = domain.JSONMap{}
	}

	result := s.db.WithContext(ctx).Create(picture)
	if result.Error != nil {
		s.logger.Error("failed to save picture", "storage_key", picture.StorageKey, "error", result.Error)
		return fmt.Errorf("failed to save picture: %w", result.Error)
	}

	s.logger.Info("picture saved successfully",
		"id", picture.ID,
		"album_id", picture.AlbumID,
		"storage_key", picture.StorageKey,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// GetPictureByID returns the picture or nil when it does not exist.
func (s *PicturePostgresStorage) GetPictureByID(ctx context.Context, id uuid.UUID) (*domain.Picture, error) {
	var picture domain.Picture
	result := s.db.WithContext(ctx).First(&picture, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get picture by id: %w", result.Error)
	}
	return &picture, nil
}

// GetLivePictureByID returns the picture only when it is not soft deleted.
func (s *PicturePostgresStorage) GetLivePictureByID(ctx context.Context, id uuid.UUID) (*domain.Picture, error) {
	var picture domain.Picture
	result := s.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&picture)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get live picture by id: %w", result.Error)
	}
	return &picture, nil
}

// UpdateOCRText overwrites the OCR text; empty string is a valid value.
func (s *PicturePostgresStorage) UpdateOCRText(ctx context.Context, id uuid.UUID, text string) error {
	result := s.db.WithContext(ctx).Model(&domain.Picture{}).
		Where("id = ?", id).
		UpdateColumn("ocr_text", text)
	if result.Error != nil {
		return fmt.Errorf("failed to update ocr text for picture %s: %w", id, result.Error)
	}
	return nil
}

// MergeEXIFData merges fields into the stored blob under a row lock so two
// concurrent merges cannot drop each other's keys.
func (s *PicturePostgresStorage) MergeEXIFData(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var picture domain.Picture
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&picture, "id = ?", id)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("failed to lock picture %s for exif merge: %w", id, result.Error)
		}

		merged := picture.EXIFData.Merge(domain.JSONMap(fields))
		if err := tx.Model(&domain.Picture{}).
			Where("id = ?", id).
			UpdateColumn("exif_data", merged).Error; err != nil {
			return fmt.Errorf("failed to merge exif data for picture %s: %w", id, err)
		}
		return nil
	})
}

// SetTakenAt sets the EXIF-derived capture timestamp.
func (s *PicturePostgresStorage) SetTakenAt(ctx context.Context, id uuid.UUID, takenAt time.Time) error {
	result := s.db.WithContext(ctx).Model(&domain.Picture{}).
		Where("id = ?", id).
		UpdateColumn("taken_at", takenAt)
	if result.Error != nil {
		return fmt.Errorf("failed to set taken_at for picture %s: %w", id, result.Error)
	}
	return nil
}

// ListPicturesByAlbum returns live pictures of an album, newest first.
func (s *PicturePostgresStorage) ListPicturesByAlbum(ctx context.Context, albumID uuid.UUID, page, perPage int) ([]domain.Picture, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}

	var pictures []domain.Picture
	result := s.db.WithContext(ctx).
		Where("album_id = ? AND deleted_at IS NULL", albumID).
		Order("uploaded_at DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&pictures)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list pictures for album %s: %w", albumID, result.Error)
	}
	return pictures, nil
}

// SoftDeletePicture marks the picture deleted.
func (s *PicturePostgresStorage) SoftDeletePicture(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Model(&domain.Picture{}).
		Where("id = ? AND deleted_at IS NULL", id).
		UpdateColumn("deleted_at", time.Now())
	if result.Error != nil {
		return fmt.Errorf("failed to soft delete picture %s: %w", id, result.Error)
	}
	return nil
}

// RestorePicture clears the soft-delete mark.
func (s *PicturePostgresStorage) RestorePicture(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Model(&domain.Picture{}).
		Where("id = ?", id).
		UpdateColumn("deleted_at", nil)
	if result.Error != nil {
		return fmt.Errorf("failed to restore picture %s: %w", id, result.Error)
	}
	return nil
}
