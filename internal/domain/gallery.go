package domain

import (
	"time"

	"github.com/google/uuid"
)

// GalleryType controls gallery visibility.
type GalleryType string

const (
	GalleryPrivate GalleryType = "private"
	GalleryPublic  GalleryType = "public"
)

// Gallery is the top-level container for albums,
// corresponds to the galleries table.
type Gallery struct {
	ID          uuid.UUID   `json:"id"`
	OwnerID     uuid.UUID   `json:"owner_id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	GalleryType GalleryType `json:"gallery_type"`
	IsFavorite  bool        `json:"is_favorite"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	DeletedAt   *time.Time  `json:"deleted_at"`
}

func (Gallery) TableName() string {
	return "galleries"
}

// IsDeleted reports whether the gallery is soft deleted.
func (g *Gallery) IsDeleted() bool {
	return g.DeletedAt != nil
}

// GalleryShare grants another user access to a gallery,
// corresponds to the gallery_shares table.
type GalleryShare struct {
	GalleryID uuid.UUID `json:"gallery_id" gorm:"primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"primaryKey"`
	CanEdit   bool      `json:"can_edit"`
	SharedAt  time.Time `json:"shared_at"`
}

func (GalleryShare) TableName() string {
	return "gallery_shares"
}

// Album groups pictures within a gallery,
// corresponds to the albums table.
//
// EXIFMetadata aggregates metadata extracted from the album's pictures and is
// merged field-by-field, never replaced wholesale.
type Album struct {
	ID           uuid.UUID  `json:"id"`
	GalleryID    uuid.UUID  `json:"gallery_id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	EXIFMetadata JSONMap    `json:"exif_metadata" gorm:"type:jsonb"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at"`
}

func (Album) TableName() string {
	return "albums"
}

// IsDeleted reports whether the album is soft deleted.
func (a *Album) IsDeleted() bool {
	return a.DeletedAt != nil
}
