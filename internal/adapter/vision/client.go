// Package vision adapts HTTP inference backends (object detection and text
// recognition) to the ports.ObjectDetector and ports.TextRecognizer
// interfaces. An unconfigured backend returns empty results, which lets the
// enrichment job run without the GPU services in development.
package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/GoArmGo/GalleryApp/internal/config"
	"github.com/GoArmGo/GalleryApp/internal/domain"
)

// Client calls the inference backends over HTTP. Requests post the raw image
// bytes; responses are JSON.
type Client struct {
	httpClient    *http.Client
	detectorURL   string
	recognizerURL string
}

// NewClient creates a new vision Client from the application config.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		httpClient:    &http.Client{Timeout: cfg.Vision.Timeout},
		detectorURL:   cfg.Vision.DetectorURL,
		recognizerURL: cfg.Vision.RecognizerURL,
	}
}

// post sends the image to endpoint and decodes the JSON response into out.
func (c *Client) post(ctx context.Context, endpoint string, image []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(image))
	if err != nil {
		return fmt.Errorf("vision: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("vision: request to %s failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("vision: %s returned status %d: %s", endpoint, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("vision: failed to decode response from %s: %w", endpoint, err)
	}
	return nil
}

// Detect implements ports.ObjectDetector. Repeated labels collapse to one,
// keeping first-detection order.
func (c *Client) Detect(ctx context.Context, image []byte) ([]string, error) {
	if c.detectorURL == "" {
		return nil, nil
	}

	var result detectResponse
	if err := c.post(ctx, c.detectorURL, image, &result); err != nil {
		return nil, err
	}

	labels := domain.NewTagSet()
	for _, d := range result.Detections {
		labels.Add(strings.TrimSpace(d.Label))
	}
	if labels.Len() == 0 {
		return nil, nil
	}
	return labels.Names(), nil
}

// Recognize implements ports.TextRecognizer, joining recognized lines with
// newlines.
func (c *Client) Recognize(ctx context.Context, image []byte) (string, error) {
	if c.recognizerURL == "" {
		return "", nil
	}

	var result recognizeResponse
	if err := c.post(ctx, c.recognizerURL, image, &result); err != nil {
		return "", err
	}
	return strings.Join(result.Lines, "\n"), nil
}
