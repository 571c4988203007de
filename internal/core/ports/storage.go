package ports

import (
	"context"
	"time"

	"github.com/GoArmGo/GalleryApp/internal/domain"
	"github.com/google/uuid"
)

// PictureStorage defines persistence for picture rows.
type PictureStorage interface {
	// CreatePicture inserts a new picture row. The storage object referenced
	// by picture.StorageKey must already exist (write-then-link ordering).
	CreatePicture(ctx context.Context, picture *domain.Picture) error

	// GetPictureByID returns the picture or nil when it does not exist.
	GetPictureByID(ctx context.Context, id uuid.UUID) (*domain.Picture, error)

	// GetLivePictureByID returns the picture only when it exists and is not
	// soft deleted; nil otherwise.
	GetLivePictureByID(ctx context.Context, id uuid.UUID) (*domain.Picture, error)

	// UpdateOCRText overwrites the picture's OCR text. An empty string is a
	// valid overwrite meaning "no text found".
	UpdateOCRText(ctx context.Context, id uuid.UUID, text string) error

	// MergeEXIFData merges fields into the picture's EXIF blob without
	// dropping keys that only exist in the stored value.
	MergeEXIFData(ctx context.Context, id uuid.UUID, fields map[string]any) error

	// SetTakenAt sets the capture timestamp derived from EXIF.
	SetTakenAt(ctx context.Context, id uuid.UUID, takenAt time.Time) error

	// ListPicturesByAlbum returns live pictures of an album, newest first.
	ListPicturesByAlbum(ctx context.Context, albumID uuid.UUID, page, perPage int) ([]domain.Picture, error)

	// SoftDeletePicture marks the picture deleted; RestorePicture clears it.
	SoftDeletePicture(ctx context.Context, id uuid.UUID) error
	RestorePicture(ctx context.Context, id uuid.UUID) error
}

// AlbumStorage defines persistence for albums.
type AlbumStorage interface {
	CreateAlbum(ctx context.Context, album *domain.Album) error
	// GetAlbumByID returns the album or nil when it does not exist.
	GetAlbumByID(ctx context.Context, id uuid.UUID) (*domain.Album, error)
	// MergeEXIFMetadata merges fields into the album's aggregated EXIF blob.
	MergeEXIFMetadata(ctx context.Context, id uuid.UUID, fields map[string]any) error
	// AddTag / RemoveTag maintain the album's plain tag membership set,
	// adjusting the tag usage counter once per membership change.
	AddTag(ctx context.Context, albumID uuid.UUID, tagName string) error
	RemoveTag(ctx context.Context, albumID uuid.UUID, tagName string) error
}

// GalleryStorage defines persistence for galleries and their shares.
type GalleryStorage interface {
	CreateGallery(ctx context.Context, gallery *domain.Gallery) error
	// GetGalleryByID returns the gallery or nil when it does not exist.
	GetGalleryByID(ctx context.Context, id uuid.UUID) (*domain.Gallery, error)
	ShareGallery(ctx context.Context, galleryID, userID uuid.UUID, canEdit bool) error
	UnshareGallery(ctx context.Context, galleryID, userID uuid.UUID) error
	AddTag(ctx context.Context, galleryID uuid.UUID, tagName string) error
	RemoveTag(ctx context.Context, galleryID uuid.UUID, tagName string) error
}

// UserStorage defines the minimal user access the gallery needs.
type UserStorage interface {
	GetOrCreateSystemUser(ctx context.Context) (uuid.UUID, error)
}
