package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/MarkCarsonDev/PhotoBomb/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// PhotoStore is the photo record store the pipeline depends on. The core
// never holds authoritative photo state beyond one pipeline run.
type PhotoStore interface {
	Create(ctx context.Context, photo *models.Photo) error
	Get(ctx context.Context, id uuid.UUID) (*models.Photo, error)
	ListAll(ctx context.Context) ([]*models.Photo, error)
	ListByAuthor(ctx context.Context, authorUID string) ([]*models.Photo, error)
	// UpdateEmbeddings persists the extraction outcome for a photo as a
	// single overwrite: the new state plus its vectors (nil for faceless).
	UpdateEmbeddings(ctx context.Context, id uuid.UUID, state models.EmbeddingState, embeddings [][]float32) error
}

// AccountStore is the account record store. This service mutates only the
// canonical embedding and the predicted-photo set; everything else belongs
// to the registration flow.
type AccountStore interface {
	Get(ctx context.Context, uid string) (*models.Account, error)
	ListAll(ctx context.Context) ([]*models.Account, error)
	SetCanonicalEmbedding(ctx context.Context, uid string, embedding []float32) error
	// ReplacePredicted overwrites the predicted set wholesale
	// (last-writer-wins, no partial merges).
	ReplacePredicted(ctx context.Context, uid string, photoIDs []uuid.UUID) error
	// ReplaceConfirmed overwrites the confirmed set wholesale. Used by the
	// confirm/reject API surface, never by the reconciler.
	ReplaceConfirmed(ctx context.Context, uid string, photoIDs []uuid.UUID) error
}

// BlobStore fetches and stores raw image bytes by key.
type BlobStore interface {
	GetObject(ctx context.Context, key string) ([]byte, error)
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
}
