package storage

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"

	"github.com/GoArmGo/GalleryApp/internal/core/ports"
	"github.com/GoArmGo/GalleryApp/internal/domain"
	"github.com/GoArmGo/GalleryApp/internal/util"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TagLedgerStorage implements ports.LedgerStore on PostgreSQL with GORM.
// Usage counters are only ever touched through single-statement atomic
// updates; the replace operation is serialized per (picture, source) with a
// transaction-scoped advisory lock.
type TagLedgerStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewTagLedgerStorage creates a new TagLedgerStorage.
func NewTagLedgerStorage(db *gorm.DB, logger *slog.Logger) *TagLedgerStorage {
	return &TagLedgerStorage{db: db, logger: logger}
}

// GetOrCreateTag resolves rawName to its canonical tag. Identity is the slug:
// names differing only by case or surrounding whitespace resolve to the same
// row. A fresh tag starts with usage_count = 0; creation does not imply use.
func (s *TagLedgerStorage) GetOrCreateTag(ctx context.Context, rawName string) (*domain.Tag, bool, error) {
	name := util.NormalizeTagName(rawName)
	slug := util.Slugify(rawName)
	if slug == "" {
		return nil, false, fmt.Errorf("tag name %q normalizes to an empty slug", rawName)
	}

	tag := domain.Tag{
		ID:   uuid.New(),
		Name: name,
		Slug: slug,
	}
	// Idempotent insert keyed on the slug; a concurrent creator wins and we
	// fall through to the fetch.
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "slug"}}, DoNothing: true}).
		Create(&tag)
	if result.Error != nil {
		return nil, false, fmt.Errorf("failed to create tag %q: %w", name, result.Error)
	}
	if result.RowsAffected > 0 {
		return &tag, true, nil
	}

	existing, err := s.GetTagBySlug(ctx, slug)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, fmt.Errorf("tag %q vanished after conflict", slug)
	}
	return existing, false, nil
}

// GetTagBySlug returns the tag or nil when absent.
func (s *TagLedgerStorage) GetTagBySlug(ctx context.Context, slug string) (*domain.Tag, error) {
	var tag domain.Tag
	result := s.db.WithContext(ctx).Where("slug = ?", slug).First(&tag)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get tag by slug %q: %w", slug, result.Error)
	}
	return &tag, nil
}

// IncrementUsage atomically bumps the usage counter.
func (s *TagLedgerStorage) IncrementUsage(ctx context.Context, tagID uuid.UUID) error {
	result := s.db.WithContext(ctx).Model(&domain.Tag{}).
		Where("id = ?", tagID).
		UpdateColumn("usage_count", gorm.Expr("usage_count + 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to increment usage for tag %s: %w", tagID, result.Error)
	}
	return nil
}

// DecrementUsage atomically lowers the usage counter, flooring at zero.
func (s *TagLedgerStorage) DecrementUsage(ctx context.Context, tagID uuid.UUID) error {
	result := s.db.WithContext(ctx).Model(&domain.Tag{}).
		Where("id = ? AND usage_count > 0", tagID).
		UpdateColumn("usage_count", gorm.Expr("usage_count - 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to decrement usage for tag %s: %w", tagID, result.Error)
	}
	return nil
}

// CreateLink inserts the provenance triple, reporting whether a new row was
// created. An existing triple is left untouched.
func (s *TagLedgerStorage) CreateLink(ctx context.Context, pictureID, tagID uuid.UUID, source domain.TagSource) (bool, error) {
	link := domain.PictureTag{PictureID: pictureID, TagID: tagID, Source: source}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&link)
	if result.Error != nil {
		return false, fmt.Errorf("failed to create tag link (%s, %s, %s): %w", pictureID, tagID, source, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// DeleteLink removes the provenance triple, reporting whether a row existed.
func (s *TagLedgerStorage) DeleteLink(ctx context.Context, pictureID, tagID uuid.UUID, source domain.TagSource) (bool, error) {
	result := s.db.WithContext(ctx).
		Where("picture_id = ? AND tag_id = ? AND source = ?", pictureID, tagID, source).
		Delete(&domain.PictureTag{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete tag link (%s, %s, %s): %w", pictureID, tagID, source, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// LinksBySource returns the tags one source attached to a picture, in link
// creation order.
func (s *TagLedgerStorage) LinksBySource(ctx context.Context, pictureID uuid.UUID, source domain.TagSource) ([]domain.Tag, error) {
	var tags []domain.Tag
	result := s.db.WithContext(ctx).Model(&domain.Tag{}).
		Joins("JOIN picture_tags ON picture_tags.tag_id = tags.id").
		Where("picture_tags.picture_id = ? AND picture_tags.source = ?", pictureID, source).
		Order("picture_tags.created_at ASC").
		Find(&tags)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list tags for picture %s source %s: %w", pictureID, source, result.Error)
	}
	return tags, nil
}

// AllTags returns the deduplicated tags of a picture across all sources,
// ordered by first link creation.
func (s *TagLedgerStorage) AllTags(ctx context.Context, pictureID uuid.UUID) ([]domain.Tag, error) {
	var tags []domain.Tag
	result := s.db.WithContext(ctx).Model(&domain.Tag{}).
		Joins("JOIN picture_tags ON picture_tags.tag_id = tags.id").
		Where("picture_tags.picture_id = ?", pictureID).
		Group("tags.id").
		Order("MIN(picture_tags.created_at) ASC").
		Find(&tags)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list tags for picture %s: %w", pictureID, result.Error)
	}
	return tags, nil
}

// WithSourceLock runs fn inside a transaction holding a pg advisory lock
// derived from the (picture, source) pair. The lock is released when the
// transaction ends, so two concurrent replaces of the same partition
// serialize while different partitions proceed in parallel.
func (s *TagLedgerStorage) WithSourceLock(ctx context.Context, pictureID uuid.UUID, source domain.TagSource, fn func(ports.LedgerStore) error) error {
	key := sourceLockKey(pictureID, source)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", key).Error; err != nil {
			return fmt.Errorf("failed to acquire source lock: %w", err)
		}
		return fn(&TagLedgerStorage{db: tx, logger: s.logger})
	})
}

// sourceLockKey hashes the (picture, source) pair into the signed 64-bit key
// space pg_advisory_xact_lock expects.
func sourceLockKey(pictureID uuid.UUID, source domain.TagSource) int64 {
	h := fnv.New64a()
	h.Write(pictureID[:])
	h.Write([]byte(source))
	return int64(h.Sum64())
}
