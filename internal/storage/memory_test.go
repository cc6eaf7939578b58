package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/MarkCarsonDev/PhotoBomb/internal/models"
)

func pendingPhoto(t *testing.T, uploadedAt time.Time) *models.Photo {
	t.Helper()
	id := uuid.New()
	p, err := models.HydratePhoto(id, "photos/"+id.String()+".jpg", "", false,
		uploadedAt, models.StatePending, nil)
	if err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	return p
}

func TestMemoryPhotoStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryPhotoStore()

	photo := pendingPhoto(t, time.Now().UTC())
	if err := store.Create(ctx, photo); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.Get(ctx, photo.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != photo.ID || got.FaceState != models.StatePending {
		t.Errorf("got %+v; want stored photo", got)
	}

	if _, err := store.Get(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("get unknown = %v; want ErrNotFound", err)
	}
}

func TestMemoryPhotoStoreListOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryPhotoStore()

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	later := pendingPhoto(t, base.Add(time.Hour))
	earlier := pendingPhoto(t, base)
	for _, p := range []*models.Photo{later, earlier} {
		if err := store.Create(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	photos, err := store.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(photos) != 2 {
		t.Fatalf("len = %d; want 2", len(photos))
	}
	if photos[0].ID != earlier.ID {
		t.Error("list must order by upload time")
	}
}

func TestMemoryPhotoStoreUpdateEmbeddings(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryPhotoStore()

	photo := pendingPhoto(t, time.Now().UTC())
	if err := store.Create(ctx, photo); err != nil {
		t.Fatal(err)
	}

	emb := [][]float32{{1, 2, 3}}
	if err := store.UpdateEmbeddings(ctx, photo.ID, models.StateReady, emb); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, _ := store.Get(ctx, photo.ID)
	if got.FaceState != models.StateReady || len(got.Embeddings) != 1 {
		t.Errorf("got state=%q embeddings=%d; want ready with 1 vector", got.FaceState, len(got.Embeddings))
	}

	if err := store.UpdateEmbeddings(ctx, uuid.New(), models.StateReady, emb); !errors.Is(err, ErrNotFound) {
		t.Errorf("update unknown = %v; want ErrNotFound", err)
	}
}

func TestMemoryPhotoStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryPhotoStore()

	photo := pendingPhoto(t, time.Now().UTC())
	if err := store.Create(ctx, photo); err != nil {
		t.Fatal(err)
	}
	if err := store.UpdateEmbeddings(ctx, photo.ID, models.StateReady, [][]float32{{1}}); err != nil {
		t.Fatal(err)
	}

	first, _ := store.Get(ctx, photo.ID)
	first.Embeddings[0][0] = 99

	second, _ := store.Get(ctx, photo.ID)
	if second.Embeddings[0][0] == 99 {
		t.Error("store leaked internal embedding slice to callers")
	}
}

func TestMemoryPhotoStoreErrorInjection(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryPhotoStore()
	injected := errors.New("boom")
	store.ListError = injected

	if _, err := store.ListAll(ctx); !errors.Is(err, injected) {
		t.Errorf("ListAll error = %v; want injected error", err)
	}
}

func TestMemoryAccountStoreReplaceSets(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryAccountStore()
	store.Put(&models.Account{
		UID:             "alice",
		ConfirmedPhotos: models.NewPhotoSet(),
		PredictedPhotos: models.NewPhotoSet(uuid.New()),
	})

	next := []uuid.UUID{uuid.New(), uuid.New()}
	if err := store.ReplacePredicted(ctx, "alice", next); err != nil {
		t.Fatalf("replace predicted: %v", err)
	}

	acc, _ := store.Get(ctx, "alice")
	if len(acc.PredictedPhotos) != 2 {
		t.Errorf("predicted size = %d; want wholesale replacement with 2", len(acc.PredictedPhotos))
	}
	for _, id := range next {
		if !acc.PredictedPhotos.Contains(id) {
			t.Errorf("predicted missing %v", id)
		}
	}

	if err := store.ReplacePredicted(ctx, "alice", nil); err != nil {
		t.Fatalf("clear predicted: %v", err)
	}
	acc, _ = store.Get(ctx, "alice")
	if len(acc.PredictedPhotos) != 0 {
		t.Error("nil replacement must clear the set")
	}

	if err := store.ReplacePredicted(ctx, "ghost", next); !errors.Is(err, ErrNotFound) {
		t.Errorf("replace for unknown account = %v; want ErrNotFound", err)
	}
}

func TestMemoryAccountStoreCanonicalEmbedding(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryAccountStore()
	store.Put(&models.Account{UID: "alice"})

	if err := store.SetCanonicalEmbedding(ctx, "alice", []float32{0.5, 0.5}); err != nil {
		t.Fatalf("set embedding: %v", err)
	}

	acc, _ := store.Get(ctx, "alice")
	if !acc.HasCanonicalEmbedding() {
		t.Error("embedding not stored")
	}
}

func TestMemoryBlobStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryBlobStore()

	if err := store.PutObject(ctx, "photos/a.jpg", []byte{1, 2, 3}, "image/jpeg"); err != nil {
		t.Fatalf("put: %v", err)
	}

	data, err := store.GetObject(ctx, "photos/a.jpg")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(data) != 3 {
		t.Errorf("data = %v; want 3 bytes", data)
	}

	if _, err := store.GetObject(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("get unknown = %v; want ErrNotFound", err)
	}
}
