package models

import (
	"testing"

	"github.com/google/uuid"
)

func TestConfirmPrediction(t *testing.T) {
	photo := uuid.New()
	acc := &Account{
		UID:             "alice",
		ConfirmedPhotos: NewPhotoSet(),
		PredictedPhotos: NewPhotoSet(photo),
	}

	if !acc.ConfirmPrediction(photo) {
		t.Fatal("confirming a predicted photo should succeed")
	}
	if acc.PredictedPhotos.Contains(photo) {
		t.Error("confirmed photo still predicted")
	}
	if !acc.ConfirmedPhotos.Contains(photo) {
		t.Error("confirmed photo missing from confirmed set")
	}

	// Confirming again is a no-op failure, not a panic.
	if acc.ConfirmPrediction(photo) {
		t.Error("confirming twice should report false")
	}
}

func TestConfirmPredictionUnknownPhoto(t *testing.T) {
	acc := &Account{UID: "alice", PredictedPhotos: NewPhotoSet()}
	if acc.ConfirmPrediction(uuid.New()) {
		t.Error("confirming a photo that was never predicted should fail")
	}
}

func TestRejectPrediction(t *testing.T) {
	photo := uuid.New()
	acc := &Account{
		UID:             "alice",
		ConfirmedPhotos: NewPhotoSet(),
		PredictedPhotos: NewPhotoSet(photo),
	}

	if !acc.RejectPrediction(photo) {
		t.Fatal("rejecting a predicted photo should succeed")
	}
	if acc.PredictedPhotos.Contains(photo) {
		t.Error("rejected photo still predicted")
	}
	if acc.ConfirmedPhotos.Contains(photo) {
		t.Error("rejection must not confirm the photo")
	}
	if acc.RejectPrediction(photo) {
		t.Error("rejecting twice should report false")
	}
}

func TestReplacePredictionsKeepsSetsDisjoint(t *testing.T) {
	confirmed := uuid.New()
	fresh := uuid.New()
	acc := &Account{
		UID:             "alice",
		ConfirmedPhotos: NewPhotoSet(confirmed),
		PredictedPhotos: NewPhotoSet(uuid.New()),
	}

	acc.ReplacePredictions([]uuid.UUID{confirmed, fresh})

	if acc.PredictedPhotos.Contains(confirmed) {
		t.Error("confirmed photo leaked into predictions")
	}
	if !acc.PredictedPhotos.Contains(fresh) {
		t.Error("new prediction missing")
	}
	if len(acc.PredictedPhotos) != 1 {
		t.Errorf("predicted size = %d; want 1", len(acc.PredictedPhotos))
	}
}

func TestReplacePredictionsEmpty(t *testing.T) {
	acc := &Account{
		UID:             "alice",
		PredictedPhotos: NewPhotoSet(uuid.New(), uuid.New()),
	}

	acc.ReplacePredictions(nil)
	if len(acc.PredictedPhotos) != 0 {
		t.Errorf("predicted size = %d; want 0 after wholesale clear", len(acc.PredictedPhotos))
	}
}

func TestHasCanonicalEmbedding(t *testing.T) {
	acc := &Account{UID: "alice"}
	if acc.HasCanonicalEmbedding() {
		t.Error("fresh account should have no canonical embedding")
	}
	acc.FaceEmbedding = []float32{0.1, 0.2}
	if !acc.HasCanonicalEmbedding() {
		t.Error("account with vector should report a canonical embedding")
	}
}

func TestPhotoSet(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	s := NewPhotoSet(a, a, b)

	if len(s) != 2 {
		t.Errorf("set size = %d; want 2 (duplicates collapse)", len(s))
	}
	if !s.Contains(a) || !s.Contains(b) {
		t.Error("set missing members")
	}
	if s.Contains(uuid.New()) {
		t.Error("set contains a stranger")
	}
	if ids := s.IDs(); len(ids) != 2 {
		t.Errorf("IDs() returned %d entries; want 2", len(ids))
	}
}
