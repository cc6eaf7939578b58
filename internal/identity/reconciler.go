package identity

import (
	"github.com/google/uuid"

	"github.com/MarkCarsonDev/PhotoBomb/internal/models"
)

// Predicted computes the suggestion set for a bound cluster: the cluster's
// photo ids minus the account's confirmed photos, in cluster order. The
// result replaces the account's predicted set wholesale, which makes
// reconciliation idempotent and keeps predicted ∩ confirmed empty by
// construction. An empty result is meaningful: it clears stale predictions.
func Predicted(clusterPhotoIDs []uuid.UUID, confirmed models.PhotoSet) []uuid.UUID {
	predicted := make([]uuid.UUID, 0, len(clusterPhotoIDs))
	for _, id := range clusterPhotoIDs {
		if confirmed.Contains(id) {
			continue
		}
		predicted = append(predicted, id)
	}
	return predicted
}
