package identity

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MarkCarsonDev/PhotoBomb/internal/cluster"
	"github.com/MarkCarsonDev/PhotoBomb/internal/config"
	"github.com/MarkCarsonDev/PhotoBomb/internal/models"
	"github.com/MarkCarsonDev/PhotoBomb/internal/observability"
	"github.com/MarkCarsonDev/PhotoBomb/internal/storage"
	"github.com/MarkCarsonDev/PhotoBomb/internal/vision"
)

// Notifier receives the outcome of a reconciliation pass for one account.
// Implemented by the queue producer; nil disables notifications.
type Notifier interface {
	SuggestionsUpdated(ctx context.Context, accountUID string, predicted []uuid.UUID) error
}

// Pipeline drives the full flow for one photo change:
// attach embeddings → cluster the corpus → bind clusters → reconcile
// suggestions. Attachment is serialized per photo id; the cluster+bind+
// reconcile section is one critical section per process, so concurrent
// photo changes cannot interleave half-written predicted sets.
type Pipeline struct {
	photos    storage.PhotoStore
	accounts  storage.AccountStore
	blobs     storage.BlobStore
	extractor vision.Extractor
	params    cluster.Params
	notifier  Notifier

	runMu sync.Mutex // serializes cluster+bind+reconcile

	// Per-photo serialization uses a fixed set of lock stripes indexed
	// by photo id. Distinct photos may share a stripe, which only costs
	// contention; memory stays constant no matter how many photos pass
	// through.
	photoLocks [photoLockStripes]sync.Mutex
}

const photoLockStripes = 64

func NewPipeline(
	photos storage.PhotoStore,
	accounts storage.AccountStore,
	blobs storage.BlobStore,
	extractor vision.Extractor,
	cfg config.ClusteringConfig,
	notifier Notifier,
) *Pipeline {
	return &Pipeline{
		photos:    photos,
		accounts:  accounts,
		blobs:     blobs,
		extractor: extractor,
		params:    cluster.Params{Epsilon: cfg.Epsilon, MinSamples: cfg.MinSamples},
		notifier:  notifier,
	}
}

// OnPhotoChange is the single entry point, invoked whenever a photo record
// is created or modified. It attaches embeddings if the photo is still
// pending, then runs a full reclustering pass. Extraction failures leave
// the photo pending and propagate to the caller; the pipeline never retries
// on its own.
func (p *Pipeline) OnPhotoChange(ctx context.Context, photoID uuid.UUID) error {
	if err := p.attachEmbeddings(ctx, photoID); err != nil {
		return fmt.Errorf("attach embeddings for %s: %w", photoID, err)
	}
	if err := p.Recluster(ctx); err != nil {
		return fmt.Errorf("recluster after %s: %w", photoID, err)
	}
	return nil
}

// attachEmbeddings runs face extraction for a pending photo and persists the
// outcome. Zero faces is persisted as the faceless state, never left absent.
func (p *Pipeline) attachEmbeddings(ctx context.Context, photoID uuid.UUID) error {
	lock := p.lockFor(photoID)
	lock.Lock()
	defer lock.Unlock()

	photo, err := p.photos.Get(ctx, photoID)
	if err != nil {
		return fmt.Errorf("load photo: %w", err)
	}
	if photo.FaceState.Resolved() {
		return nil // embeddings are write-once
	}

	data, err := p.blobs.GetObject(ctx, photo.FileKey)
	if err != nil {
		observability.PhotosProcessed.WithLabelValues("failed").Inc()
		return fmt.Errorf("fetch image %s: %w", photo.FileKey, err)
	}

	faces, err := p.extractor.Extract(ctx, data)
	if err != nil {
		observability.PhotosProcessed.WithLabelValues("failed").Inc()
		return fmt.Errorf("extract faces: %w", err)
	}

	embeddings := make([][]float32, len(faces))
	for i, f := range faces {
		embeddings[i] = f.Embedding
	}
	if err := photo.AttachEmbeddings(embeddings); err != nil {
		return err
	}

	if err := p.photos.UpdateEmbeddings(ctx, photoID, photo.FaceState, photo.Embeddings); err != nil {
		return fmt.Errorf("persist embeddings: %w", err)
	}

	observability.PhotosProcessed.WithLabelValues(string(photo.FaceState)).Inc()
	observability.FacesExtracted.Add(float64(len(faces)))
	slog.Info("embeddings attached", "photo", photoID, "faces", len(faces), "state", photo.FaceState)
	return nil
}

// Recluster runs one full cluster→bind→reconcile pass over the corpus.
// The pass is globally serialized; reruns over an unchanged corpus converge
// to identical predicted sets.
func (p *Pipeline) Recluster(ctx context.Context) error {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	start := time.Now()
	defer func() {
		observability.ClusteringDuration.Observe(time.Since(start).Seconds())
		observability.ClusteringRuns.Inc()
	}()

	photos, err := p.photos.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}

	photoByID := make(map[uuid.UUID]*models.Photo, len(photos))
	var corpus []cluster.Photo
	for _, photo := range photos {
		photoByID[photo.ID] = photo
		if photo.FaceState == models.StateReady {
			corpus = append(corpus, cluster.Photo{ID: photo.ID, Embeddings: photo.Embeddings})
		} else if photo.IsVerification && photo.FaceState == models.StateFaceless {
			// The account cannot be bound until a re-submission yields a face.
			slog.Warn("verification photo has no detectable face",
				"photo", photo.ID, "account", photo.AuthorUID)
		}
	}

	clusters, err := cluster.Run(cluster.CorpusPoints(corpus), p.params)
	if err != nil {
		// Contract violation (e.g. mixed dimensions): abort with nothing
		// written, no account state was touched yet.
		return fmt.Errorf("cluster corpus: %w", err)
	}

	bindings := ResolveBindings(clusters, photoByID)
	observability.ClustersBound.Set(float64(len(bindings)))
	observability.ClustersUnbound.Set(float64(len(clusters) - len(bindings)))

	for _, binding := range bindings {
		if err := p.reconcileBinding(ctx, binding, photoByID); err != nil {
			return err
		}
	}

	slog.Info("clustering pass complete",
		"photos", len(photos),
		"clusters", len(clusters),
		"bound", len(bindings),
		"duration", time.Since(start).String(),
	)
	return nil
}

// reconcileBinding updates one account from its bound cluster: canonical
// embedding if still unset, then the predicted set.
func (p *Pipeline) reconcileBinding(ctx context.Context, binding Binding, photos map[uuid.UUID]*models.Photo) error {
	account, err := p.accounts.Get(ctx, binding.AccountUID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			slog.Warn("bound account does not exist, skipping",
				"account", binding.AccountUID, "cluster", binding.Cluster.Label)
			return nil
		}
		return fmt.Errorf("load account %s: %w", binding.AccountUID, err)
	}

	if !account.HasCanonicalEmbedding() {
		verif := photos[binding.VerificationPhotoID]
		if verif != nil && len(verif.Embeddings) > 0 {
			if err := p.accounts.SetCanonicalEmbedding(ctx, account.UID, verif.Embeddings[0]); err != nil {
				return fmt.Errorf("set canonical embedding for %s: %w", account.UID, err)
			}
		}
	}

	predicted := Predicted(PhotoIDs(binding.Cluster), account.ConfirmedPhotos)
	if err := p.accounts.ReplacePredicted(ctx, account.UID, predicted); err != nil {
		return fmt.Errorf("replace predicted for %s: %w", account.UID, err)
	}
	observability.SuggestionsComputed.Add(float64(len(predicted)))

	if p.notifier != nil {
		if err := p.notifier.SuggestionsUpdated(ctx, account.UID, predicted); err != nil {
			// Notification loss is tolerable: the next pass converges.
			slog.Warn("notify suggestions", "account", account.UID, "error", err)
		}
	}
	return nil
}

func (p *Pipeline) lockFor(photoID uuid.UUID) *sync.Mutex {
	return &p.photoLocks[stripeIndex(photoID)]
}

// stripeIndex folds the uuid into a stripe slot with FNV-1a.
func stripeIndex(id uuid.UUID) uint32 {
	h := fnv.New32a()
	h.Write(id[:])
	return h.Sum32() % photoLockStripes
}
