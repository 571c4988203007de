package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/GalleryApp/internal/core/ports"
	"github.com/GoArmGo/GalleryApp/internal/signing"
	"github.com/google/uuid"
)

// accessGate implements AccessGate. It resolves pictures to storage keys and
// delegates the cryptography to the signer; deleted pictures are not signable.
type accessGate struct {
	pictures   ports.PictureStorage
	signer     *signing.Signer
	defaultTTL time.Duration
	logger     *slog.Logger
}

// NewAccessGate creates a new AccessGate.
func NewAccessGate(pictures ports.PictureStorage, signer *signing.Signer, defaultTTL time.Duration, logger *slog.Logger) AccessGate {
	return &accessGate{
		pictures:   pictures,
		signer:     signer,
		defaultTTL: defaultTTL,
		logger:     logger,
	}
}

// SignedPictureURL returns a signed download URL for a live picture.
func (g *accessGate) SignedPictureURL(ctx context.Context, pictureID uuid.UUID, ttl time.Duration) (*signing.SignedURL, error) {
	picture, err := g.pictures.GetLivePictureByID(ctx, pictureID)
	if err != nil {
		return nil, fmt.Errorf("usecase: failed to load picture %s: %w", pictureID, err)
	}
	if picture == nil {
		return nil, ErrPictureNotFound
	}

	if ttl <= 0 {
		ttl = g.defaultTTL
	}
	signed, err := g.signer.Sign(picture.StorageKey, ttl)
	if err != nil {
		return nil, fmt.Errorf("usecase: failed to sign url for picture %s: %w", pictureID, err)
	}

	g.logger.Debug("signed picture url issued",
		"picture_id", pictureID, "expires_at", signed.ExpiresAt)
	return signed, nil
}

// VerifyAccess checks a presented signature for a resource path.
func (g *accessGate) VerifyAccess(uriPath, signature string, expiresAt int64) bool {
	return g.signer.Verify("", signature, expiresAt, uriPath)
}
