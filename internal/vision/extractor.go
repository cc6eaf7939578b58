// Package vision provides face detection and embedding extraction.
// The pipeline depends only on the Extractor interface; the ONNX
// implementation below is one provider of it.
package vision

import "context"

// Face is one detected face: its identity embedding and bounding box
// (x1, y1, x2, y2 in source-image pixels).
type Face struct {
	Embedding []float32  `json:"embedding"`
	BBox      [4]float32 `json:"bbox"`
}

// Extractor turns raw image bytes into detected faces. Deterministic for a
// given model version; an image with no faces yields an empty slice and a
// nil error: zero faces is an outcome, not a failure.
type Extractor interface {
	Extract(ctx context.Context, imageData []byte) ([]Face, error)
}
