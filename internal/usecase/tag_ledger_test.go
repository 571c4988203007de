package usecase

import (
	"context"
	"testing"

	"github.com/GoArmGo/GalleryApp/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tagNames(tags []domain.Tag) []string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return names
}

func TestAddLinkIsIdempotent(t *testing.T) {
	store := newFakeLedgerStore()
	ledger := NewTagLedger(store, testLogger())
	pictureID := uuid.New()

	tag, created, err := ledger.AddLink(context.Background(), pictureID, "Sunset", domain.SourceUser)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "sunset", tag.Name)
	assert.Equal(t, "sunset", tag.Slug)

	_, created, err = ledger.AddLink(context.Background(), pictureID, "  SUNSET ", domain.SourceUser)
	require.NoError(t, err)
	assert.False(t, created, "normalized duplicates must not create a second link")

	assert.Equal(t, int64(1), store.usage("sunset"))
}

func TestSourcesTrackTheSameTagIndependently(t *testing.T) {
	store := newFakeLedgerStore()
	ledger := NewTagLedger(store, testLogger())
	pictureID := uuid.New()

	_, _, err := ledger.AddLink(context.Background(), pictureID, "dog", domain.SourceUser)
	require.NoError(t, err)
	_, _, err = ledger.AddLink(context.Background(), pictureID, "dog", domain.SourceDetection)
	require.NoError(t, err)

	assert.Equal(t, int64(2), store.usage("dog"), "each source link counts")

	// Removing the detection link leaves the user link alone.
	require.NoError(t, ledger.RemoveLink(context.Background(), pictureID, "dog", domain.SourceDetection))
	assert.Equal(t, int64(1), store.usage("dog"))

	userTags, err := ledger.LinksBySource(context.Background(), pictureID, domain.SourceUser)
	require.NoError(t, err)
	assert.Equal(t, []string{"dog"}, tagNames(userTags))

	detTags, err := ledger.LinksBySource(context.Background(), pictureID, domain.SourceDetection)
	require.NoError(t, err)
	assert.Empty(t, detTags)
}

func TestRemoveLinkAbsentIsNoOp(t *testing.T) {
	store := newFakeLedgerStore()
	ledger := NewTagLedger(store, testLogger())

	err := ledger.RemoveLink(context.Background(), uuid.New(), "never-added", domain.SourceUser)
	assert.NoError(t, err)
	assert.Equal(t, int64(-1), store.usage("never-added"), "removal must not create the tag")
}

func TestReplaceSourceLinks(t *testing.T) {
	store := newFakeLedgerStore()
	ledger := NewTagLedger(store, testLogger())
	pictureID := uuid.New()
	ctx := context.Background()

	// A user tag that must survive detection replacement.
	_, _, err := ledger.AddLink(ctx, pictureID, "vacation", domain.SourceUser)
	require.NoError(t, err)

	require.NoError(t, ledger.ReplaceSourceLinks(ctx, pictureID, domain.SourceDetection, []string{"cat", "tree"}))
	assert.Equal(t, int64(1), store.usage("cat"))
	assert.Equal(t, int64(1), store.usage("tree"))

	// The model changed its mind on redelivery.
	require.NoError(t, ledger.ReplaceSourceLinks(ctx, pictureID, domain.SourceDetection, []string{"dog"}))

	detTags, err := ledger.LinksBySource(ctx, pictureID, domain.SourceDetection)
	require.NoError(t, err)
	assert.Equal(t, []string{"dog"}, tagNames(detTags))

	assert.Equal(t, int64(0), store.usage("cat"), "dropped links release their usage")
	assert.Equal(t, int64(0), store.usage("tree"))
	assert.Equal(t, int64(1), store.usage("dog"))

	userTags, err := ledger.LinksBySource(ctx, pictureID, domain.SourceUser)
	require.NoError(t, err)
	assert.Equal(t, []string{"vacation"}, tagNames(userTags), "other sources stay untouched")
}

func TestReplaceSourceLinksIsIdempotent(t *testing.T) {
	store := newFakeLedgerStore()
	ledger := NewTagLedger(store, testLogger())
	pictureID := uuid.New()
	ctx := context.Background()

	require.NoError(t, ledger.ReplaceSourceLinks(ctx, pictureID, domain.SourceDetection, []string{"cat", "dog"}))
	require.NoError(t, ledger.ReplaceSourceLinks(ctx, pictureID, domain.SourceDetection, []string{"cat", "dog"}))

	assert.Equal(t, int64(1), store.usage("cat"))
	assert.Equal(t, int64(1), store.usage("dog"))
}

func TestReplaceSourceLinksDedupesNormalizedNames(t *testing.T) {
	store := newFakeLedgerStore()
	ledger := NewTagLedger(store, testLogger())
	pictureID := uuid.New()

	err := ledger.ReplaceSourceLinks(context.Background(), pictureID, domain.SourceUser,
		[]string{"Sunset ", "sunset", "SUN_SET", ""})
	require.NoError(t, err)

	tags, err := ledger.LinksBySource(context.Background(), pictureID, domain.SourceUser)
	require.NoError(t, err)
	// "Sunset" and "sunset" share a slug; "SUN_SET" slugifies to sun-set.
	assert.Len(t, tags, 2)
	assert.Equal(t, int64(1), store.usage("sunset"))
}

func TestReplaceSourceLinksWithEmptySetClears(t *testing.T) {
	store := newFakeLedgerStore()
	ledger := NewTagLedger(store, testLogger())
	pictureID := uuid.New()
	ctx := context.Background()

	require.NoError(t, ledger.ReplaceSourceLinks(ctx, pictureID, domain.SourceDetection, []string{"cat"}))
	require.NoError(t, ledger.ReplaceSourceLinks(ctx, pictureID, domain.SourceDetection, nil))

	tags, err := ledger.LinksBySource(ctx, pictureID, domain.SourceDetection)
	require.NoError(t, err)
	assert.Empty(t, tags)
	assert.Equal(t, int64(0), store.usage("cat"))
}

func TestTagsBySource(t *testing.T) {
	store := newFakeLedgerStore()
	ledger := NewTagLedger(store, testLogger())
	pictureID := uuid.New()
	ctx := context.Background()

	_, _, err := ledger.AddLink(ctx, pictureID, "beach", domain.SourceUser)
	require.NoError(t, err)
	require.NoError(t, ledger.ReplaceSourceLinks(ctx, pictureID, domain.SourceEXIF, []string{"make:canon", "gps"}))

	grouped, err := ledger.TagsBySource(ctx, pictureID)
	require.NoError(t, err)
	assert.Equal(t, []string{"beach"}, tagNames(grouped[domain.SourceUser]))
	assert.Equal(t, []string{"make:canon", "gps"}, tagNames(grouped[domain.SourceEXIF]))
	assert.NotContains(t, grouped, domain.SourceDetection)

	all, err := ledger.AllTags(ctx, pictureID)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestInvalidSourceIsRejected(t *testing.T) {
	ledger := NewTagLedger(newFakeLedgerStore(), testLogger())
	pictureID := uuid.New()

	_, _, err := ledger.AddLink(context.Background(), pictureID, "cat", domain.TagSource("robot"))
	assert.ErrorIs(t, err, ErrInvalidSource)

	err = ledger.ReplaceSourceLinks(context.Background(), pictureID, domain.TagSource(""), []string{"cat"})
	assert.ErrorIs(t, err, ErrInvalidSource)
}
