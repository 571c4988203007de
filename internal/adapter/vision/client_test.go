package vision

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/GoArmGo/GalleryApp/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(detectorURL, recognizerURL string) *Client {
	cfg := &config.Config{}
	cfg.Vision.DetectorURL = detectorURL
	cfg.Vision.RecognizerURL = recognizerURL
	cfg.Vision.Timeout = 5 * time.Second
	return NewClient(cfg)
}

func TestDetectDedupesLabels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, []byte("image bytes"), body)
		w.Write([]byte(`{"detections":[
			{"label":"dog","confidence":0.97},
			{"label":"dog","confidence":0.71},
			{"label":" car ","confidence":0.88},
			{"label":"","confidence":0.5}
		]}`))
	}))
	defer srv.Close()

	labels, err := newTestClient(srv.URL, "").Detect(context.Background(), []byte("image bytes"))
	require.NoError(t, err)
	assert.Equal(t, []string{"dog", "car"}, labels)
}

func TestDetectBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, "").Detect(context.Background(), []byte("x"))
	assert.ErrorContains(t, err, "status 503")
}

func TestDetectDisabledBackend(t *testing.T) {
	labels, err := newTestClient("", "").Detect(context.Background(), []byte("x"))
	require.NoError(t, err)
	assert.Nil(t, labels)
}

func TestRecognizeJoinsLines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"lines":["STOP","one way"]}`))
	}))
	defer srv.Close()

	text, err := newTestClient("", srv.URL).Recognize(context.Background(), []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "STOP\none way", text)
}

func TestRecognizeNoText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"lines":[]}`))
	}))
	defer srv.Close()

	text, err := newTestClient("", srv.URL).Recognize(context.Background(), []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "", text)
}
