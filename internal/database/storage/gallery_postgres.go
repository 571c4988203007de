package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/GalleryApp/internal/domain"
	"github.com/GoArmGo/GalleryApp/internal/util"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GalleryPostgresStorage implements ports.GalleryStorage with GORM.
type GalleryPostgresStorage struct {
	db     *gorm.DB
	tags   *TagLedgerStorage
	logger *slog.Logger
}

// NewGalleryPostgresStorage creates a new GalleryPostgresStorage.
func NewGalleryPostgresStorage(db *gorm.DB, tags *TagLedgerStorage, logger *slog.Logger) *GalleryPostgresStorage {
	return &GalleryPostgresStorage{db: db, tags: tags, logger: logger}
}

// CreateGallery inserts a new gallery row.
func (s *GalleryPostgresStorage) CreateGallery(ctx context.Context, gallery *domain.Gallery) error {
	if gallery.ID == uuid.Nil {
		gallery.ID = uuid.New()
	}
	if gallery.GalleryType == "" {
		gallery.GalleryType = domain.GalleryPrivate
	}
	result := s.db.WithContext(ctx).Create(gallery)
	if result.Error != nil {
		s.logger.Error("failed to save gallery", "owner_id", gallery.OwnerID, "error", result.Error)
		return fmt.Errorf("failed to save gallery: %w", result.Error)
	}
	s.logger.Info("gallery saved successfully", "id", gallery.ID, "owner_id", gallery.OwnerID)
	return nil
}

// GetGalleryByID returns the gallery or nil when it does not exist.
func (s *GalleryPostgresStorage) GetGalleryByID(ctx context.Context, id uuid.UUID) (*domain.Gallery, error) {
	var gallery domain.Gallery
	result := s.db.WithContext(ctx).First(&gallery, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get gallery by id: %w", result.Error)
	}
	return &gallery, nil
}

// ShareGallery grants a user access, updating can_edit on repeat shares.
func (s *GalleryPostgresStorage) ShareGallery(ctx context.Context, galleryID, userID uuid.UUID, canEdit bool) error {
	share := domain.GalleryShare{
		GalleryID: galleryID,
		UserID:    userID,
		CanEdit:   canEdit,
		SharedAt:  time.Now(),
	}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "gallery_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"can_edit"}),
		}).
		Create(&share)
	if result.Error != nil {
		return fmt.Errorf("failed to share gallery %s with user %s: %w", galleryID, userID, result.Error)
	}
	return nil
}

// UnshareGallery revokes a user's access; absent shares are a no-op.
func (s *GalleryPostgresStorage) UnshareGallery(ctx context.Context, galleryID, userID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("gallery_id = ? AND user_id = ?", galleryID, userID).
		Delete(&domain.GalleryShare{})
	if result.Error != nil {
		return fmt.Errorf("failed to unshare gallery %s from user %s: %w", galleryID, userID, result.Error)
	}
	return nil
}

// AddTag adds a tag to the gallery's membership set.
func (s *GalleryPostgresStorage) AddTag(ctx context.Context, galleryID uuid.UUID, tagName string) error {
	tag, _, err := s.tags.GetOrCreateTag(ctx, tagName)
	if err != nil {
		return err
	}

	link := domain.GalleryTag{GalleryID: galleryID, TagID: tag.ID}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&link)
	if result.Error != nil {
		return fmt.Errorf("failed to add tag %q to gallery %s: %w", tagName, galleryID, result.Error)
	}
	if result.RowsAffected > 0 {
		return s.tags.IncrementUsage(ctx, tag.ID)
	}
	return nil
}

// RemoveTag removes a tag from the gallery's set; unknown tags are a no-op.
func (s *GalleryPostgresStorage) RemoveTag(ctx context.Context, galleryID uuid.UUID, tagName string) error {
	tag, err := s.tags.GetTagBySlug(ctx, util.Slugify(tagName))
	if err != nil {
		return err
	}
	if tag == nil {
		return nil
	}

	result := s.db.WithContext(ctx).
		Where("gallery_id = ? AND tag_id = ?", galleryID, tag.ID).
		Delete(&domain.GalleryTag{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove tag %q from gallery %s: %w", tagName, galleryID, result.Error)
	}
	if result.RowsAffected > 0 {
		return s.tags.DecrementUsage(ctx, tag.ID)
	}
	return nil
}
