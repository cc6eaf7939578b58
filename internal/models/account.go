package models

import (
	"github.com/google/uuid"
)

// Account is a registered user. Accounts are created by the external
// registration flow; this service only touches the canonical face embedding
// and the predicted-photo set.
type Account struct {
	UID             string    `json:"uid" db:"uid"`
	Email           string    `json:"email" db:"email"`
	FaceEmbedding   []float32 `json:"face_embedding,omitempty" db:"face_embedding"`
	ConfirmedPhotos PhotoSet  `json:"confirmed_photos" db:"confirmed_photos"`
	PredictedPhotos PhotoSet  `json:"predicted_photos" db:"predicted_photos"`
}

// PhotoSet is an unordered set of photo identifiers.
type PhotoSet map[uuid.UUID]struct{}

func NewPhotoSet(ids ...uuid.UUID) PhotoSet {
	s := make(PhotoSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s PhotoSet) Contains(id uuid.UUID) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the members in unspecified order.
func (s PhotoSet) IDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	return ids
}

// HasCanonicalEmbedding reports whether the account's own face is known.
func (a *Account) HasCanonicalEmbedding() bool {
	return len(a.FaceEmbedding) > 0
}

// ConfirmPrediction moves a photo from predicted to confirmed. Returns false
// when the photo was not currently predicted.
func (a *Account) ConfirmPrediction(photoID uuid.UUID) bool {
	if !a.PredictedPhotos.Contains(photoID) {
		return false
	}
	delete(a.PredictedPhotos, photoID)
	if a.ConfirmedPhotos == nil {
		a.ConfirmedPhotos = NewPhotoSet()
	}
	a.ConfirmedPhotos[photoID] = struct{}{}
	return true
}

// RejectPrediction drops a photo from the predicted set. The next
// reconciliation pass may suggest it again; only confirmation is sticky.
func (a *Account) RejectPrediction(photoID uuid.UUID) bool {
	if !a.PredictedPhotos.Contains(photoID) {
		return false
	}
	delete(a.PredictedPhotos, photoID)
	return true
}

// ReplacePredictions overwrites the predicted set wholesale, dropping any id
// that is already confirmed so the two sets stay disjoint.
func (a *Account) ReplacePredictions(photoIDs []uuid.UUID) {
	next := make(PhotoSet, len(photoIDs))
	for _, id := range photoIDs {
		if a.ConfirmedPhotos.Contains(id) {
			continue
		}
		next[id] = struct{}{}
	}
	a.PredictedPhotos = next
}
