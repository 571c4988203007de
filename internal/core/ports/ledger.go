package ports

import (
	"context"

	"github.com/GoArmGo/GalleryApp/internal/domain"
	"github.com/google/uuid"
)

// LedgerStore provides the storage primitives the tag-provenance ledger is
// built on. Implementations guarantee that every primitive is atomic; the
// ledger composes them inside WithSourceLock sections.
type LedgerStore interface {
	// GetOrCreateTag resolves rawName to its canonical tag, creating it with
	// usage_count = 0 when absent. Idempotent, keyed on the slug.
	GetOrCreateTag(ctx context.Context, rawName string) (*domain.Tag, bool, error)

	// GetTagBySlug returns the tag or nil when it does not exist.
	GetTagBySlug(ctx context.Context, slug string) (*domain.Tag, error)

	// IncrementUsage / DecrementUsage atomically adjust a tag's usage
	// counter. Decrement floors at zero and never underflows.
	IncrementUsage(ctx context.Context, tagID uuid.UUID) error
	DecrementUsage(ctx context.Context, tagID uuid.UUID) error

	// CreateLink inserts the (picture, tag, source) triple, reporting whether
	// a new row was created (false when the link already existed).
	CreateLink(ctx context.Context, pictureID, tagID uuid.UUID, source domain.TagSource) (bool, error)

	// DeleteLink removes the triple, reporting whether a row was deleted.
	DeleteLink(ctx context.Context, pictureID, tagID uuid.UUID, source domain.TagSource) (bool, error)

	// LinksBySource returns the tags a source attached to a picture.
	LinksBySource(ctx context.Context, pictureID uuid.UUID, source domain.TagSource) ([]domain.Tag, error)

	// AllTags returns the tags attached to a picture across all sources,
	// deduplicated, ordered by link creation.
	AllTags(ctx context.Context, pictureID uuid.UUID) ([]domain.Tag, error)

	// WithSourceLock runs fn inside a transaction serialized per
	// (picture, source) pair. Concurrent calls for the same pair block each
	// other; different pairs proceed in parallel. fn receives a LedgerStore
	// bound to the transaction.
	WithSourceLock(ctx context.Context, pictureID uuid.UUID, source domain.TagSource, fn func(LedgerStore) error) error
}
