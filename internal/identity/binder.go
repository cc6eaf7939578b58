// Package identity turns embedding clusters into per-account photo
// suggestions: it binds clusters to verified accounts and reconciles each
// bound cluster against the account's confirmed photos.
package identity

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/MarkCarsonDev/PhotoBomb/internal/cluster"
	"github.com/MarkCarsonDev/PhotoBomb/internal/models"
	"github.com/MarkCarsonDev/PhotoBomb/internal/observability"
)

// Binding associates one cluster with the account whose verification photo
// it contains.
type Binding struct {
	AccountUID string
	// VerificationPhotoID is the photo that established the binding; its
	// first embedding seeds the account's canonical embedding.
	VerificationPhotoID uuid.UUID
	Cluster             cluster.Cluster
}

// ResolveBindings labels clusters with their owning accounts. The first
// verification-photo member in cluster member order wins; that order is the
// corpus input order, so resolution is deterministic for a fixed corpus.
// A cluster holding verification photos from two different accounts is a
// conflict: it is logged and counted, and the first account keeps the
// cluster. Clusters with no verification photo are skipped; their photos
// are suggested to nobody.
func ResolveBindings(clusters []cluster.Cluster, photos map[uuid.UUID]*models.Photo) []Binding {
	var bindings []Binding

	for _, cl := range clusters {
		var bound *Binding
		for _, member := range cl.Members {
			photo, ok := photos[member.PhotoID]
			if !ok || !photo.IsVerification {
				continue
			}
			if photo.AuthorUID == "" {
				// Rejected at hydration normally; don't bind on bad data.
				continue
			}

			if bound == nil {
				bindings = append(bindings, Binding{
					AccountUID:          photo.AuthorUID,
					VerificationPhotoID: photo.ID,
					Cluster:             cl,
				})
				bound = &bindings[len(bindings)-1]
				continue
			}

			if photo.AuthorUID != bound.AccountUID {
				observability.BindingConflicts.Inc()
				slog.Warn("cluster contains verification photos from multiple accounts",
					"cluster", cl.Label,
					"bound_account", bound.AccountUID,
					"conflicting_account", photo.AuthorUID,
					"conflicting_photo", photo.ID,
				)
			}
		}
	}

	return bindings
}

// PhotoIDs returns the distinct photo ids in a cluster, in first-appearance
// order. A photo with several faces in one cluster counts once.
func PhotoIDs(cl cluster.Cluster) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(cl.Members))
	var ids []uuid.UUID
	for _, m := range cl.Members {
		if _, ok := seen[m.PhotoID]; ok {
			continue
		}
		seen[m.PhotoID] = struct{}{}
		ids = append(ids, m.PhotoID)
	}
	return ids
}
