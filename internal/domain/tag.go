package domain

import (
	"time"

	"github.com/google/uuid"
)

// TagSource identifies who asserted a tag on a picture. The same tag may be
// linked to the same picture by several sources independently.
type TagSource string

const (
	// SourceUser marks tags added manually by a user.
	SourceUser TagSource = "user"
	// SourceDetection marks tags produced by the object-detection job.
	SourceDetection TagSource = "detection"
	// SourceEXIF marks tags derived from embedded EXIF metadata.
	SourceEXIF TagSource = "exif"
)

// Valid reports whether s is one of the known sources.
func (s TagSource) Valid() bool {
	switch s {
	case SourceUser, SourceDetection, SourceEXIF:
		return true
	}
	return false
}

// Tag is the canonical, deduplicated label entity shared by galleries, albums
// and pictures. Identity is the slug; the name is the normalized display form.
// UsageCount tracks the number of live links referencing the tag and is only
// mutated through atomic storage-level increments/decrements.
type Tag struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name" gorm:"uniqueIndex"`
	Slug       string    `json:"slug" gorm:"uniqueIndex"`
	UsageCount int64     `json:"usage_count"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Tag) TableName() string {
	return "tags"
}

// PictureTag is the provenance link between a Picture and a Tag. The triple
// (picture, tag, source) is unique: a source cannot duplicate its own link,
// but different sources track the same tag independently.
type PictureTag struct {
	PictureID uuid.UUID `json:"picture_id" gorm:"primaryKey"`
	TagID     uuid.UUID `json:"tag_id" gorm:"primaryKey"`
	Source    TagSource `json:"source" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
}

func (PictureTag) TableName() string {
	return "picture_tags"
}

// AlbumTag is the plain membership link between an Album and a Tag
// (no per-source provenance).
type AlbumTag struct {
	AlbumID uuid.UUID `json:"album_id" gorm:"primaryKey"`
	TagID   uuid.UUID `json:"tag_id" gorm:"primaryKey"`
}

func (AlbumTag) TableName() string {
	return "album_tags"
}

// GalleryTag is the plain membership link between a Gallery and a Tag.
type GalleryTag struct {
	GalleryID uuid.UUID `json:"gallery_id" gorm:"primaryKey"`
	TagID     uuid.UUID `json:"tag_id" gorm:"primaryKey"`
}

func (GalleryTag) TableName() string {
	return "gallery_tags"
}
