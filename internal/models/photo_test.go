package models

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewPhoto(t *testing.T) {
	tests := []struct {
		name           string
		fileKey        string
		authorUID      string
		isVerification bool
		wantErr        error
	}{
		{"regular photo", "photos/a.jpg", "", false, nil},
		{"regular photo with author", "photos/a.jpg", "alice", false, nil},
		{"verification photo", "photos/v.jpg", "alice", true, nil},
		{"missing file key", "", "alice", false, ErrMissingFileKey},
		{"verification without author", "photos/v.jpg", "", true, ErrMissingAuthor},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewPhoto(tc.fileKey, tc.authorUID, tc.isVerification)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("NewPhoto error = %v; want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewPhoto failed: %v", err)
			}
			if p.FaceState != StatePending {
				t.Errorf("new photo state = %q; want pending", p.FaceState)
			}
			if p.ID == uuid.Nil {
				t.Error("new photo has no id")
			}
		})
	}
}

func TestEmbeddingStateValid(t *testing.T) {
	for _, s := range []EmbeddingState{StatePending, StateFaceless, StateReady} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	for _, s := range []EmbeddingState{"", "done", "PENDING"} {
		if s.Valid() {
			t.Errorf("%q should be invalid", s)
		}
	}
}

func TestEmbeddingStateResolved(t *testing.T) {
	if StatePending.Resolved() {
		t.Error("pending must not be resolved")
	}
	if !StateFaceless.Resolved() || !StateReady.Resolved() {
		t.Error("faceless and ready are resolved states")
	}
}

func TestAttachEmbeddings(t *testing.T) {
	t.Run("faces move photo to ready", func(t *testing.T) {
		p, _ := NewPhoto("photos/a.jpg", "", false)
		if err := p.AttachEmbeddings([][]float32{{1, 2}, {3, 4}}); err != nil {
			t.Fatalf("attach failed: %v", err)
		}
		if p.FaceState != StateReady {
			t.Errorf("state = %q; want ready", p.FaceState)
		}
		if len(p.Embeddings) != 2 {
			t.Errorf("embeddings = %d; want 2", len(p.Embeddings))
		}
	})

	t.Run("zero faces move photo to faceless", func(t *testing.T) {
		p, _ := NewPhoto("photos/a.jpg", "", false)
		if err := p.AttachEmbeddings(nil); err != nil {
			t.Fatalf("attach failed: %v", err)
		}
		if p.FaceState != StateFaceless {
			t.Errorf("state = %q; want faceless", p.FaceState)
		}
		if len(p.Embeddings) != 0 {
			t.Error("faceless photo must carry no embeddings")
		}
	})

	t.Run("write-once", func(t *testing.T) {
		p, _ := NewPhoto("photos/a.jpg", "", false)
		if err := p.AttachEmbeddings([][]float32{{1}}); err != nil {
			t.Fatal(err)
		}
		if err := p.AttachEmbeddings([][]float32{{2}}); !errors.Is(err, ErrAlreadyProcessed) {
			t.Errorf("second attach error = %v; want ErrAlreadyProcessed", err)
		}
	})

	t.Run("mixed dimensions rejected", func(t *testing.T) {
		p, _ := NewPhoto("photos/a.jpg", "", false)
		err := p.AttachEmbeddings([][]float32{{1, 2}, {3}})
		if !errors.Is(err, ErrDimensionMismatch) {
			t.Errorf("attach error = %v; want ErrDimensionMismatch", err)
		}
		if p.FaceState != StatePending {
			t.Errorf("failed attach changed state to %q", p.FaceState)
		}
	})
}

func TestHydratePhoto(t *testing.T) {
	now := time.Now().UTC()
	id := uuid.New()

	tests := []struct {
		name       string
		state      EmbeddingState
		embeddings [][]float32
		wantOK     bool
	}{
		{"pending without embeddings", StatePending, nil, true},
		{"faceless without embeddings", StateFaceless, nil, true},
		{"ready with embeddings", StateReady, [][]float32{{1, 2}}, true},
		{"ready with empty list", StateReady, nil, false},
		{"pending with embeddings", StatePending, [][]float32{{1}}, false},
		{"unknown state", EmbeddingState("processed"), nil, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := HydratePhoto(id, "photos/a.jpg", "", false, now, tc.state, tc.embeddings)
			if tc.wantOK && err != nil {
				t.Errorf("HydratePhoto failed: %v", err)
			}
			if !tc.wantOK && err == nil {
				t.Error("HydratePhoto should have failed")
			}
		})
	}
}
