package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/GalleryApp/internal/core/ports"
	"github.com/GoArmGo/GalleryApp/internal/domain"
	"github.com/GoArmGo/GalleryApp/internal/util"
	"github.com/google/uuid"
)

// tagLedger implements TagLedger on top of the atomic LedgerStore primitives.
// Multi-step mutations run inside WithSourceLock so concurrent writers for the
// same (picture, source) pair serialize instead of interleaving.
type tagLedger struct {
	store  ports.LedgerStore
	logger *slog.Logger
}

// NewTagLedger creates a new TagLedger.
func NewTagLedger(store ports.LedgerStore, logger *slog.Logger) TagLedger {
	return &tagLedger{store: store, logger: logger}
}

// AddLink attaches a tag to a picture on behalf of source.
func (l *tagLedger) AddLink(ctx context.Context, pictureID uuid.UUID, name string, source domain.TagSource) (*domain.Tag, bool, error) {
	if !source.Valid() {
		return nil, false, fmt.Errorf("%w: %q", ErrInvalidSource, source)
	}

	var tag *domain.Tag
	var created bool
	err := l.store.WithSourceLock(ctx, pictureID, source, func(tx ports.LedgerStore) error {
		t, _, err := tx.GetOrCreateTag(ctx, name)
		if err != nil {
			return err
		}
		linked, err := tx.CreateLink(ctx, pictureID, t.ID, source)
		if err != nil {
			return err
		}
		if linked {
			if err := tx.IncrementUsage(ctx, t.ID); err != nil {
				return err
			}
		}
		tag, created = t, linked
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("usecase: failed to add tag %q to picture %s: %w", name, pictureID, err)
	}
	return tag, created, nil
}

// RemoveLink detaches a tag from a picture for one source only.
func (l *tagLedger) RemoveLink(ctx context.Context, pictureID uuid.UUID, name string, source domain.TagSource) error {
	if !source.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSource, source)
	}

	err := l.store.WithSourceLock(ctx, pictureID, source, func(tx ports.LedgerStore) error {
		tag, err := tx.GetTagBySlug(ctx, util.Slugify(name))
		if err != nil {
			return err
		}
		if tag == nil {
			return nil
		}
		deleted, err := tx.DeleteLink(ctx, pictureID, tag.ID, source)
		if err != nil {
			return err
		}
		if deleted {
			return tx.DecrementUsage(ctx, tag.ID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("usecase: failed to remove tag %q from picture %s: %w", name, pictureID, err)
	}
	return nil
}

// ReplaceSourceLinks atomically replaces the full set of links one source
// holds on a picture. Links whose tag is kept in the new set survive
// untouched, so their usage counters are not churned.
func (l *tagLedger) ReplaceSourceLinks(ctx context.Context, pictureID uuid.UUID, source domain.TagSource, names []string) error {
	if !source.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSource, source)
	}

	// Dedupe up front on slug identity, keeping first-seen order.
	desired := make([]string, 0, len(names))
	desiredSlugs := domain.NewTagSet()
	for _, name := range names {
		if desiredSlugs.Add(util.Slugify(name)) {
			desired = append(desired, name)
		}
	}

	err := l.store.WithSourceLock(ctx, pictureID, source, func(tx ports.LedgerStore) error {
		current, err := tx.LinksBySource(ctx, pictureID, source)
		if err != nil {
			return err
		}

		for _, tag := range current {
			if desiredSlugs.Contains(tag.Slug) {
				continue
			}
			deleted, err := tx.DeleteLink(ctx, pictureID, tag.ID, source)
			if err != nil {
				return err
			}
			if deleted {
				if err := tx.DecrementUsage(ctx, tag.ID); err != nil {
					return err
				}
			}
		}

		for _, name := range desired {
			tag, _, err := tx.GetOrCreateTag(ctx, name)
			if err != nil {
				return err
			}
			linked, err := tx.CreateLink(ctx, pictureID, tag.ID, source)
			if err != nil {
				return err
			}
			if linked {
				if err := tx.IncrementUsage(ctx, tag.ID); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("usecase: failed to replace %s tags on picture %s: %w", source, pictureID, err)
	}

	l.logger.Debug("source tag links replaced",
		"picture_id", pictureID, "source", source, "count", len(desired))
	return nil
}

// LinksBySource returns the tags source attached to the picture.
func (l *tagLedger) LinksBySource(ctx context.Context, pictureID uuid.UUID, source domain.TagSource) ([]domain.Tag, error) {
	if !source.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSource, source)
	}
	tags, err := l.store.LinksBySource(ctx, pictureID, source)
	if err != nil {
		return nil, fmt.Errorf("usecase: failed to list %s tags of picture %s: %w", source, pictureID, err)
	}
	return tags, nil
}

// AllTags returns the picture's tags across all sources, deduplicated.
func (l *tagLedger) AllTags(ctx context.Context, pictureID uuid.UUID) ([]domain.Tag, error) {
	tags, err := l.store.AllTags(ctx, pictureID)
	if err != nil {
		return nil, fmt.Errorf("usecase: failed to list tags of picture %s: %w", pictureID, err)
	}
	return tags, nil
}

// TagsBySource returns the picture's tags grouped per provenance source.
// Sources with no links are absent from the map.
func (l *tagLedger) TagsBySource(ctx context.Context, pictureID uuid.UUID) (map[domain.TagSource][]domain.Tag, error) {
	grouped := make(map[domain.TagSource][]domain.Tag)
	for _, source := range []domain.TagSource{domain.SourceUser, domain.SourceDetection, domain.SourceEXIF} {
		tags, err := l.store.LinksBySource(ctx, pictureID, source)
		if err != nil {
			return nil, fmt.Errorf("usecase: failed to group tags of picture %s: %w", pictureID, err)
		}
		if len(tags) > 0 {
			grouped[source] = tags
		}
	}
	return grouped, nil
}
