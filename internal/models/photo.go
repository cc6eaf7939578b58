package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EmbeddingState tracks face extraction for a photo. The three states are
// disjoint and explicit: a photo that was processed and contains no faces
// is Faceless, never Pending, so the pipeline can tell "nothing to do"
// apart from "not yet attempted".
type EmbeddingState string

const (
	// StatePending means face extraction has not run (or failed and must be retried).
	StatePending EmbeddingState = "pending"
	// StateFaceless means extraction ran and found zero faces. Terminal.
	StateFaceless EmbeddingState = "faceless"
	// StateReady means extraction ran and produced at least one embedding. Terminal.
	StateReady EmbeddingState = "ready"
)

func (s EmbeddingState) Valid() bool {
	switch s {
	case StatePending, StateFaceless, StateReady:
		return true
	}
	return false
}

// Resolved reports whether extraction has completed, regardless of outcome.
func (s EmbeddingState) Resolved() bool {
	return s == StateFaceless || s == StateReady
}

var (
	ErrMissingFileKey    = errors.New("photo requires a file key")
	ErrMissingAuthor     = errors.New("verification photo requires an author uid")
	ErrEmptyEmbeddings   = errors.New("ready photo must carry at least one embedding")
	ErrAlreadyProcessed  = errors.New("photo embeddings are write-once")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// Photo is one uploaded image. Embeddings are attached exactly once;
// everything else is immutable after construction.
type Photo struct {
	ID             uuid.UUID      `json:"id" db:"id"`
	FileKey        string         `json:"file_key" db:"file_key"`
	AuthorUID      string         `json:"author_uid,omitempty" db:"author_uid"`
	IsVerification bool           `json:"is_verification_photo" db:"is_verification_photo"`
	UploadedAt     time.Time      `json:"upload_timestamp" db:"upload_timestamp"`
	FaceState      EmbeddingState `json:"face_state" db:"face_state"`
	Embeddings     [][]float32    `json:"face_embeddings,omitempty" db:"-"`
}

// NewPhoto creates a freshly ingested photo in the pending state.
func NewPhoto(fileKey, authorUID string, isVerification bool) (*Photo, error) {
	p := &Photo{
		ID:             uuid.New(),
		FileKey:        fileKey,
		AuthorUID:      authorUID,
		IsVerification: isVerification,
		UploadedAt:     time.Now().UTC(),
		FaceState:      StatePending,
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// HydratePhoto rebuilds a photo from its stored record. Invalid records are
// rejected here rather than surfacing later inside the clustering run.
func HydratePhoto(id uuid.UUID, fileKey, authorUID string, isVerification bool,
	uploadedAt time.Time, state EmbeddingState, embeddings [][]float32) (*Photo, error) {

	p := &Photo{
		ID:             id,
		FileKey:        fileKey,
		AuthorUID:      authorUID,
		IsVerification: isVerification,
		UploadedAt:     uploadedAt,
		FaceState:      state,
		Embeddings:     embeddings,
	}
	if !state.Valid() {
		return nil, fmt.Errorf("photo %s: unknown face state %q", id, state)
	}
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("photo %s: %w", id, err)
	}
	return p, nil
}

func (p *Photo) validate() error {
	if p.FileKey == "" {
		return ErrMissingFileKey
	}
	if p.IsVerification && p.AuthorUID == "" {
		return ErrMissingAuthor
	}
	// An empty embedding list is never a valid terminal state: zero faces
	// is expressed as StateFaceless.
	if p.FaceState == StateReady && len(p.Embeddings) == 0 {
		return ErrEmptyEmbeddings
	}
	if p.FaceState != StateReady && len(p.Embeddings) > 0 {
		return fmt.Errorf("state %q cannot carry embeddings", p.FaceState)
	}
	if len(p.Embeddings) > 0 {
		dim := len(p.Embeddings[0])
		for i, emb := range p.Embeddings {
			if len(emb) != dim {
				return fmt.Errorf("%w: vector %d has %d elements, want %d",
					ErrDimensionMismatch, i, len(emb), dim)
			}
		}
	}
	return nil
}

// AttachEmbeddings records the extractor output. Zero faces moves the photo
// to faceless; anything else moves it to ready. Write-once.
func (p *Photo) AttachEmbeddings(embeddings [][]float32) error {
	if p.FaceState != StatePending {
		return ErrAlreadyProcessed
	}
	if len(embeddings) == 0 {
		p.FaceState = StateFaceless
		return nil
	}
	dim := len(embeddings[0])
	for i, emb := range embeddings {
		if len(emb) != dim {
			return fmt.Errorf("%w: vector %d has %d elements, want %d",
				ErrDimensionMismatch, i, len(emb), dim)
		}
	}
	p.Embeddings = embeddings
	p.FaceState = StateReady
	return nil
}
