package ports

import "context"

// ObjectDetector runs object detection over image bytes and returns the
// deduplicated, ordered list of detected class labels.
type ObjectDetector interface {
	Detect(ctx context.Context, image []byte) ([]string, error)
}

// TextRecognizer runs text recognition over image bytes and returns the
// recognized lines joined by newlines. An empty string means no text found.
type TextRecognizer interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}
