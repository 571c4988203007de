// Package imaging probes image headers for pixel dimensions without decoding
// the full bitmap.
package imaging

import (
	"bytes"
	"image"

	// header decoders for the formats accepted at ingestion
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Dimensions reads just enough of data to determine pixel width and height.
// ok is false when the header cannot be decoded (unknown format, truncated
// bytes, HEIC/HEIF); callers store the bytes anyway and leave the dimensions
// unset.
func Dimensions(data []byte) (width, height int, ok bool) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, false
	}
	return cfg.Width, cfg.Height, true
}
