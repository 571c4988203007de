package usecase

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/GoArmGo/GalleryApp/internal/signing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAccessEnv(t *testing.T) (*fakePictureStorage, AccessGate) {
	t.Helper()
	pictures := newFakePictureStorage()
	signer, err := signing.New("test-secret", "/media", signing.AlgorithmMD5)
	require.NoError(t, err)
	gate := NewAccessGate(pictures, signer, time.Hour, testLogger())
	return pictures, gate
}

func TestSignedPictureURL(t *testing.T) {
	pictures, gate := newAccessEnv(t)
	env := newEnrichEnv()
	env.pictures = pictures
	picture := env.seedPicture(t, []byte("image bytes"))

	signed, err := gate.SignedPictureURL(context.Background(), picture.ID, 0)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(signed.URL, "/media/"+picture.StorageKey+"?st="))
	assert.Equal(t, int64(3600), signed.ExpiresIn, "zero ttl falls back to the default")
	assert.Greater(t, signed.ExpiresAt, time.Now().Unix())

	// The issued URL verifies the way the edge proxy would check it.
	path, query, ok := strings.Cut(signed.URL, "?")
	require.True(t, ok)
	params := parseQuery(t, query)
	assert.True(t, gate.VerifyAccess(path, params["st"], signed.ExpiresAt))
	assert.False(t, gate.VerifyAccess(path, params["st"], signed.ExpiresAt+1),
		"a shifted expiry invalidates the signature")
	assert.False(t, gate.VerifyAccess(path+"x", params["st"], signed.ExpiresAt),
		"a different path invalidates the signature")
}

func TestSignedPictureURLUnknownPicture(t *testing.T) {
	_, gate := newAccessEnv(t)
	_, err := gate.SignedPictureURL(context.Background(), uuid.New(), time.Minute)
	assert.ErrorIs(t, err, ErrPictureNotFound)
}

func TestSignedPictureURLDeletedPicture(t *testing.T) {
	pictures, gate := newAccessEnv(t)
	env := newEnrichEnv()
	env.pictures = pictures
	picture := env.seedPicture(t, []byte("image bytes"))
	require.NoError(t, pictures.SoftDeletePicture(context.Background(), picture.ID))

	_, err := gate.SignedPictureURL(context.Background(), picture.ID, time.Minute)
	assert.ErrorIs(t, err, ErrPictureNotFound)
}

func parseQuery(t *testing.T, query string) map[string]string {
	t.Helper()
	params := make(map[string]string)
	for _, pair := range strings.Split(query, "&") {
		key, value, ok := strings.Cut(pair, "=")
		require.True(t, ok)
		params[key] = value
	}
	return params
}

func TestSignedURLExpiryMatchesQuery(t *testing.T) {
	pictures, gate := newAccessEnv(t)
	env := newEnrichEnv()
	env.pictures = pictures
	picture := env.seedPicture(t, []byte("image bytes"))

	signed, err := gate.SignedPictureURL(context.Background(), picture.ID, 2*time.Minute)
	require.NoError(t, err)

	_, query, _ := strings.Cut(signed.URL, "?")
	params := parseQuery(t, query)
	assert.Equal(t, strconv.FormatInt(signed.ExpiresAt, 10), params["e"])
	assert.Equal(t, int64(120), signed.ExpiresIn)
}
