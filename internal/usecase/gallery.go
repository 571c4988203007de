package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/GoArmGo/GalleryApp/internal/domain"
	"github.com/GoArmGo/GalleryApp/internal/signing"
	"github.com/google/uuid"
)

var (
	// ErrAlbumNotFound is returned when an ingestion targets an album that
	// does not exist.
	ErrAlbumNotFound = errors.New("usecase: album not found")
	// ErrPictureNotFound is returned when a lookup targets a picture that
	// does not exist or is soft deleted.
	ErrPictureNotFound = errors.New("usecase: picture not found")
	// ErrEmptyUpload is returned for zero-byte uploads and for archives that
	// contain no qualifying image entries.
	ErrEmptyUpload = errors.New("usecase: upload contains no image data")
	// ErrInvalidSource is returned when a tag operation names an unknown
	// provenance source.
	ErrInvalidSource = errors.New("usecase: invalid tag source")
)

// TagLedger is the business interface of the tag-provenance ledger. Every
// mutation keeps the usage-count invariant: a tag's usage_count equals the
// number of live links (picture, album and gallery memberships) referencing
// it, and never goes below zero.
type TagLedger interface {
	// AddLink attaches a tag to a picture on behalf of source. Adding a link
	// that already exists is a no-op that reports created=false.
	AddLink(ctx context.Context, pictureID uuid.UUID, name string, source domain.TagSource) (*domain.Tag, bool, error)

	// RemoveLink detaches a tag from a picture for one source only; links the
	// other sources hold are untouched. Removing an absent link is a silent
	// no-op.
	RemoveLink(ctx context.Context, pictureID uuid.UUID, name string, source domain.TagSource) error

	// ReplaceSourceLinks atomically replaces the full set of links one source
	// holds on a picture with the given names. Names that only differ in
	// normalization count as the same tag. Replaying the same set is a no-op.
	ReplaceSourceLinks(ctx context.Context, pictureID uuid.UUID, source domain.TagSource, names []string) error

	// LinksBySource returns the tags source attached to the picture, in link
	// creation order.
	LinksBySource(ctx context.Context, pictureID uuid.UUID, source domain.TagSource) ([]domain.Tag, error)

	// AllTags returns the picture's tags across all sources, deduplicated.
	AllTags(ctx context.Context, pictureID uuid.UUID) ([]domain.Tag, error)

	// TagsBySource returns the picture's tags grouped per provenance source.
	TagsBySource(ctx context.Context, pictureID uuid.UUID) (map[domain.TagSource][]domain.Tag, error)
}

// PictureIngestor handles uploads: single images and archive batches.
type PictureIngestor interface {
	// IngestPicture stores the image bytes, creates the picture row, attaches
	// the user-provided tags and dispatches the enrichment tasks. The binary
	// write happens before the row insert; a failed insert cleans the object
	// up so no orphan row can point at a missing object.
	IngestPicture(ctx context.Context, albumID uuid.UUID, filename string, data []byte, contentType string, tagNames []string) (*domain.Picture, error)

	// IngestArchive extracts the qualifying images from an uploaded archive
	// and ingests each one as a separate picture. Extraction is all-or-nothing:
	// an oversized or unreadable archive ingests nothing.
	IngestArchive(ctx context.Context, albumID uuid.UUID, filename string, data []byte, tagNames []string) ([]domain.Picture, error)
}

// Enricher implements the asynchronous enrichment jobs the workers run.
type Enricher interface {
	// ProcessPictureVision runs object detection and text recognition over the
	// stored image, replaces the detection-sourced tag links and overwrites
	// the OCR text. Deleted pictures and missing objects are silent no-ops.
	ProcessPictureVision(ctx context.Context, pictureID uuid.UUID) error

	// ExtractPictureEXIF parses camera metadata from the stored image, merges
	// it into the picture's (and its album's) metadata blobs, sets the capture
	// timestamp and replaces the exif-sourced tag links. Images without
	// parseable EXIF are a silent no-op.
	ExtractPictureEXIF(ctx context.Context, pictureID uuid.UUID) error
}

// AccessGate issues and checks time-bounded signed URLs for picture objects.
type AccessGate interface {
	// SignedPictureURL returns a signed download URL for a live picture,
	// valid for ttl (the configured default when ttl <= 0).
	SignedPictureURL(ctx context.Context, pictureID uuid.UUID, ttl time.Duration) (*signing.SignedURL, error)

	// VerifyAccess checks a presented signature for a resource path, as the
	// edge proxy would. Expired or tampered requests fail closed.
	VerifyAccess(uriPath, signature string, expiresAt int64) bool
}
