package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/GalleryApp/internal/domain"
	"github.com/GoArmGo/GalleryApp/internal/util"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AlbumPostgresStorage implements ports.AlbumStorage with GORM. Album tags
// are a plain membership set (no per-source provenance) but go through the
// same tag registry and usage accounting.
type AlbumPostgresStorage struct {
	db     *gorm.DB
	tags   *TagLedgerStorage
	logger *slog.Logger
}

// NewAlbumPostgresStorage creates a new AlbumPostgresStorage.
func NewAlbumPostgresStorage(db *gorm.DB, tags *TagLedgerStorage, logger *slog.Logger) *AlbumPostgresStorage {
	return &AlbumPostgresStorage{db: db, tags: tags, logger: logger}
}

// CreateAlbum inserts a new album row.
func (s *AlbumPostgresStorage) CreateAlbum(ctx context.Context, album *domain.Album) error {
	if album.ID == uuid.Nil {
		album.ID = uuid.New()
	}
	if album.EXIFMetadata == nil {
		album.EXIFMetadata = domain.JSONMap{}
	}
	result := s.db.WithContext(ctx).Create(album)
	if result.Error != nil {
		s.logger.Error("failed to save album", "gallery_id", album.GalleryID, "error", result.Error)
		return fmt.Errorf("failed to save album: %w", result.Error)
	}
	s.logger.Info("album saved successfully", "id", album.ID, "gallery_id", album.GalleryID)
	return nil
}

// GetAlbumByID returns the album or nil when it does not exist.
func (s *AlbumPostgresStorage) GetAlbumByID(ctx context.Context, id uuid.UUID) (*domain.Album, error) {
	var album domain.Album
	result := s.db.WithContext(ctx).First(&album, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get album by id: %w", result.Error)
	}
	return &album, nil
}

// MergeEXIFMetadata merges fields into the album's aggregated blob under a
// row lock.
func (s *AlbumPostgresStorage) MergeEXIFMetadata(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var album domain.Album
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&album, "id = ?", id)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("failed to lock album %s for exif merge: %w", id, result.Error)
		}

		merged := album.EXIFMetadata.Merge(domain.JSONMap(fields))
		if err := tx.Model(&domain.Album{}).
			Where("id = ?", id).
			UpdateColumn("exif_metadata", merged).Error; err != nil {
			return fmt.Errorf("failed to merge exif metadata for album %s: %w", id, err)
		}
		return nil
	})
}

// AddTag adds a tag to the album's membership set, incrementing usage only
// when the membership is new.
func (s *AlbumPostgresStorage) AddTag(ctx context.Context, albumID uuid.UUID, tagName string) error {
	tag, _, err := s.tags.GetOrCreateTag(ctx, tagName)
	if err != nil {
		return err
	}

	link := domain.AlbumTag{AlbumID: albumID, TagID: tag.ID}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&link)
	if result.Error != nil {
		return fmt.Errorf("failed to add tag %q to album %s: %w", tagName, albumID, result.Error)
	}
	if result.RowsAffected > 0 {
		return s.tags.IncrementUsage(ctx, tag.ID)
	}
	return nil
}

// RemoveTag removes a tag from the album's set. Unknown tags and absent
// memberships are silent no-ops.
func (s *AlbumPostgresStorage) RemoveTag(ctx context.Context, albumID uuid.UUID, tagName string) error {
	tag, err := s.tags.GetTagBySlug(ctx, util.Slugify(tagName))
	if err != nil {
		return err
	}
	if tag == nil {
		return nil
	}

	result := s.db.WithContext(ctx).
		Where("album_id = ? AND tag_id = ?", albumID, tag.ID).
		Delete(&domain.AlbumTag{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove tag %q from album %s: %w", tagName, albumID, result.Error)
	}
	if result.RowsAffected > 0 {
		return s.tags.DecrementUsage(ctx, tag.ID)
	}
	return nil
}
