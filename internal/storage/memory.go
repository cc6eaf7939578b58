package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/MarkCarsonDev/PhotoBomb/internal/models"
)

// MemoryPhotoStore is a mutex-guarded in-memory PhotoStore used in tests
// and local development. Supports error injection per operation.
type MemoryPhotoStore struct {
	mu     sync.RWMutex
	photos map[uuid.UUID]*models.Photo

	GetError    error
	ListError   error
	UpdateError error
}

func NewMemoryPhotoStore() *MemoryPhotoStore {
	return &MemoryPhotoStore{photos: make(map[uuid.UUID]*models.Photo)}
}

func (m *MemoryPhotoStore) Create(ctx context.Context, photo *models.Photo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.photos[photo.ID] = clonePhoto(photo)
	return nil
}

func (m *MemoryPhotoStore) Get(ctx context.Context, id uuid.UUID) (*models.Photo, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	photo, ok := m.photos[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clonePhoto(photo), nil
}

func (m *MemoryPhotoStore) ListAll(ctx context.Context) ([]*models.Photo, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	photos := make([]*models.Photo, 0, len(m.photos))
	for _, p := range m.photos {
		photos = append(photos, clonePhoto(p))
	}
	sortPhotos(photos)
	return photos, nil
}

func (m *MemoryPhotoStore) ListByAuthor(ctx context.Context, authorUID string) ([]*models.Photo, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var photos []*models.Photo
	for _, p := range m.photos {
		if p.AuthorUID == authorUID {
			photos = append(photos, clonePhoto(p))
		}
	}
	sortPhotos(photos)
	return photos, nil
}

func (m *MemoryPhotoStore) UpdateEmbeddings(ctx context.Context, id uuid.UUID, state models.EmbeddingState, embeddings [][]float32) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	photo, ok := m.photos[id]
	if !ok {
		return ErrNotFound
	}
	photo.FaceState = state
	photo.Embeddings = cloneEmbeddings(embeddings)
	return nil
}

// sortPhotos orders by upload time then id, matching the Postgres queries.
func sortPhotos(photos []*models.Photo) {
	sort.Slice(photos, func(i, j int) bool {
		if photos[i].UploadedAt.Equal(photos[j].UploadedAt) {
			return photos[i].ID.String() < photos[j].ID.String()
		}
		return photos[i].UploadedAt.Before(photos[j].UploadedAt)
	})
}

func clonePhoto(p *models.Photo) *models.Photo {
	cp := *p
	cp.Embeddings = cloneEmbeddings(p.Embeddings)
	return &cp
}

func cloneEmbeddings(embeddings [][]float32) [][]float32 {
	if embeddings == nil {
		return nil
	}
	out := make([][]float32, len(embeddings))
	for i, e := range embeddings {
		out[i] = append([]float32(nil), e...)
	}
	return out
}

// MemoryAccountStore is the in-memory AccountStore counterpart.
type MemoryAccountStore struct {
	mu       sync.RWMutex
	accounts map[string]*models.Account

	GetError              error
	ListError             error
	ReplacePredictedError error
	ReplaceConfirmedError error
}

func NewMemoryAccountStore() *MemoryAccountStore {
	return &MemoryAccountStore{accounts: make(map[string]*models.Account)}
}

// Put seeds an account, standing in for the external registration flow.
func (m *MemoryAccountStore) Put(account *models.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.UID] = cloneAccount(account)
}

func (m *MemoryAccountStore) Get(ctx context.Context, uid string) (*models.Account, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	acc, ok := m.accounts[uid]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneAccount(acc), nil
}

func (m *MemoryAccountStore) ListAll(ctx context.Context) ([]*models.Account, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	accounts := make([]*models.Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		accounts = append(accounts, cloneAccount(a))
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].UID < accounts[j].UID })
	return accounts, nil
}

func (m *MemoryAccountStore) SetCanonicalEmbedding(ctx context.Context, uid string, embedding []float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[uid]
	if !ok {
		return ErrNotFound
	}
	acc.FaceEmbedding = append([]float32(nil), embedding...)
	return nil
}

func (m *MemoryAccountStore) ReplacePredicted(ctx context.Context, uid string, photoIDs []uuid.UUID) error {
	if m.ReplacePredictedError != nil {
		return m.ReplacePredictedError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[uid]
	if !ok {
		return ErrNotFound
	}
	acc.PredictedPhotos = models.NewPhotoSet(photoIDs...)
	return nil
}

func (m *MemoryAccountStore) ReplaceConfirmed(ctx context.Context, uid string, photoIDs []uuid.UUID) error {
	if m.ReplaceConfirmedError != nil {
		return m.ReplaceConfirmedError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[uid]
	if !ok {
		return ErrNotFound
	}
	acc.ConfirmedPhotos = models.NewPhotoSet(photoIDs...)
	return nil
}

func cloneAccount(a *models.Account) *models.Account {
	cp := *a
	cp.FaceEmbedding = append([]float32(nil), a.FaceEmbedding...)
	cp.ConfirmedPhotos = models.NewPhotoSet(a.ConfirmedPhotos.IDs()...)
	cp.PredictedPhotos = models.NewPhotoSet(a.PredictedPhotos.IDs()...)
	return &cp
}

// MemoryBlobStore is an in-memory BlobStore for tests.
type MemoryBlobStore struct {
	mu      sync.RWMutex
	objects map[string][]byte

	GetError error
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{objects: make(map[string][]byte)}
}

func (m *MemoryBlobStore) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryBlobStore) GetObject(ctx context.Context, key string) ([]byte, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}
