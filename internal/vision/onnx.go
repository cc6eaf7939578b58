package vision

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"
	"path/filepath"

	_ "image/png"

	"github.com/MarkCarsonDev/PhotoBomb/internal/config"
)

// ONNXExtractor implements Extractor with the detector + embedder pair.
type ONNXExtractor struct {
	detector *Detector
	embedder *Embedder
}

// NewONNXExtractor loads both models from the configured models directory.
func NewONNXExtractor(cfg config.VisionConfig) (*ONNXExtractor, error) {
	detPath := filepath.Join(cfg.ModelsDir, "det_10g.onnx")
	embPath := filepath.Join(cfg.ModelsDir, "face_encoder.onnx")

	slog.Info("loading detection model", "path", detPath)
	det, err := NewDetector(detPath, float32(cfg.DetectionThreshold))
	if err != nil {
		return nil, fmt.Errorf("load detector: %w", err)
	}

	slog.Info("loading encoder model", "path", embPath, "dim", cfg.EmbeddingDim)
	emb, err := NewEmbedder(embPath, cfg.EmbeddingDim)
	if err != nil {
		det.Close()
		return nil, fmt.Errorf("load embedder: %w", err)
	}

	return &ONNXExtractor{detector: det, embedder: emb}, nil
}

// Extract decodes the image, detects all faces and embeds each one. Faces
// are returned in detection order; an image with no faces returns an empty
// slice, not an error.
func (x *ONNXExtractor) Extract(ctx context.Context, imageData []byte) ([]Face, error) {
	img, err := decodeImage(imageData)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	origW := bounds.Dx()
	origH := bounds.Dy()

	detInput := preprocessForDetection(img, x.detector.inputW, x.detector.inputH)
	detections, err := x.detector.Detect(detInput, origW, origH)
	if err != nil {
		return nil, fmt.Errorf("detect: %w", err)
	}

	faces := make([]Face, 0, len(detections))
	for _, det := range detections {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		crop := cropFace(img, det.BBox)
		if crop == nil {
			continue
		}

		embInput := preprocessForEmbedding(crop, x.embedder.inputW, x.embedder.inputH)
		embedding, err := x.embedder.Embed(embInput)
		if err != nil {
			return nil, fmt.Errorf("embed face at %v: %w", det.BBox, err)
		}

		faces = append(faces, Face{Embedding: embedding, BBox: det.BBox})
	}

	return faces, nil
}

func (x *ONNXExtractor) Close() {
	if x.detector != nil {
		x.detector.Close()
	}
	if x.embedder != nil {
		x.embedder.Close()
	}
}

func decodeImage(data []byte) (image.Image, error) {
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err == nil {
		return img, nil
	}
	img, _, err = image.Decode(bytes.NewReader(data))
	return img, err
}
