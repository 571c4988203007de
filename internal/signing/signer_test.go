package signing

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSigner(t *testing.T, algorithm string) *Signer {
	t.Helper()
	s, err := New("test-secret", "/media", algorithm)
	require.NoError(t, err)
	return s
}

// extractParams pulls st and e back out of a signed URL.
func extractParams(t *testing.T, signed string) (sig string, expires int64) {
	t.Helper()
	u, err := url.Parse(signed)
	require.NoError(t, err)
	sig = u.Query().Get("st")
	expires, err = strconv.ParseInt(u.Query().Get("e"), 10, 64)
	require.NoError(t, err)
	return sig, expires
}

func TestSignVerifyRoundTrip(t *testing.T) {
	for _, algorithm := range []string{AlgorithmMD5, AlgorithmSHA256} {
		t.Run(algorithm, func(t *testing.T) {
			s := newTestSigner(t, algorithm)
			key := "pictures/abc123/deadbeef.jpg"

			signed, err := s.Sign(key, time.Hour)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(signed.URL, "/media/pictures/abc123/deadbeef.jpg?"))

			sig, expires := extractParams(t, signed.URL)
			assert.Equal(t, signed.ExpiresAt, expires)
			assert.True(t, s.Verify(key, sig, expires))
		})
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	s := newTestSigner(t, AlgorithmMD5)
	key := "pictures/a/b.jpg"

	signed, err := s.Sign(key, time.Hour)
	require.NoError(t, err)
	sig, expires := extractParams(t, signed.URL)

	// jump past expiry; strict comparison, no grace period
	s.now = func() time.Time { return time.Unix(expires+1, 0) }
	assert.False(t, s.Verify(key, sig, expires))

	// exactly at expiry is still valid
	s.now = func() time.Time { return time.Unix(expires, 0) }
	assert.True(t, s.Verify(key, sig, expires))
}

func TestVerifyRejectsTampering(t *testing.T) {
	s := newTestSigner(t, AlgorithmMD5)
	key := "pictures/a/b.jpg"

	signed, err := s.Sign(key, time.Hour)
	require.NoError(t, err)
	sig, expires := extractParams(t, signed.URL)

	// flip one character of the signature
	flipped := []byte(sig)
	if flipped[0] == 'A' {
		flipped[0] = 'B'
	} else {
		flipped[0] = 'A'
	}
	assert.False(t, s.Verify(key, string(flipped), expires))

	// altered expiry invalidates the original signature
	assert.False(t, s.Verify(key, sig, expires+60))

	// different key invalidates as well
	assert.False(t, s.Verify("pictures/a/other.jpg", sig, expires))
}

func TestVerifyWithExplicitURIPath(t *testing.T) {
	s := newTestSigner(t, AlgorithmMD5)
	key := "pictures/a/b.jpg"

	signed, err := s.Sign(key, time.Hour)
	require.NoError(t, err)
	sig, expires := extractParams(t, signed.URL)

	assert.True(t, s.Verify(key, sig, expires, "/media/pictures/a/b.jpg"))
	assert.False(t, s.Verify(key, sig, expires, "/media/pictures/a/c.jpg"))
}

func TestSignatureIsByteExactForProxy(t *testing.T) {
	// nginx secure_link_md5 computes md5("$uri$expires$secret"); the emitted
	// signature must reproduce that construction exactly.
	s := newTestSigner(t, AlgorithmMD5)
	s.now = func() time.Time { return time.Unix(1_700_000_000, 0) }

	signed, err := s.Sign("photo.jpg", 3600*time.Second)
	require.NoError(t, err)

	expires := int64(1_700_000_000 + 3600)
	assert.Equal(t, fmt.Sprintf("/media/photo.jpg?st=%s&e=%d", s.signature("/media/photo.jpg", expires), expires), signed.URL)
	assert.Equal(t, expires, signed.ExpiresAt)
	assert.Equal(t, int64(3600), signed.ExpiresIn)
}

func TestKeyPercentEncoding(t *testing.T) {
	s := newTestSigner(t, AlgorithmMD5)
	signed, err := s.Sign("pictures/al bum/x y.jpg", time.Hour)
	require.NoError(t, err)
	assert.Contains(t, signed.URL, "/media/pictures/al%20bum/x%20y.jpg?")
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New("", "/media", AlgorithmMD5)
	assert.ErrorIs(t, err, ErrNoSecret)

	_, err = New("secret", "/media", "sha1")
	assert.Error(t, err)
}
