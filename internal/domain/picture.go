package domain

import (
	"time"

	"github.com/google/uuid"
)

// Picture represents one image asset inside an album,
// corresponds to the pictures table.
//
// StorageKey is the opaque, immutable reference to the binary object in the
// file storage; it is assigned once at ingestion. Width/Height stay nil when
// the image header could not be decoded. OCRText and EXIFData start empty and
// are filled in by the enrichment jobs.
type Picture struct {
	ID          uuid.UUID `json:"id"`
	AlbumID     uuid.UUID `json:"album_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`

	StorageKey string `json:"storage_key" gorm:"uniqueIndex"`
	FileSize   int64  `json:"file_size"`
	MimeType   string `json:"mime_type"`
	Width      *int   `json:"width"`
	Height     *int   `json:"height"`

	OCRText  string  `json:"ocr_text"`
	EXIFData JSONMap `json:"exif_data" gorm:"type:jsonb"`

	IsFavorite bool       `json:"is_favorite"`
	TakenAt    *time.Time `json:"taken_at"`
	UploadedAt time.Time  `json:"uploaded_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"deleted_at"`
}

func (Picture) TableName() string {
	return "pictures"
}

// IsDeleted reports whether the picture is soft deleted.
func (p *Picture) IsDeleted() bool {
	return p.DeletedAt != nil
}
