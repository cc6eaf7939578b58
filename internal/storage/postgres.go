package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/MarkCarsonDev/PhotoBomb/internal/config"
	"github.com/MarkCarsonDev/PhotoBomb/internal/models"
)

// NewPostgresPool connects to Postgres and verifies the connection.
func NewPostgresPool(cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return pool, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// --- Photos ---

// PostgresPhotoStore implements PhotoStore. Photo metadata lives in the
// photos table; embeddings live in photo_faces as pgvector rows keyed by
// (photo_id, face_index).
type PostgresPhotoStore struct {
	pool *pgxpool.Pool
}

func NewPostgresPhotoStore(pool *pgxpool.Pool) *PostgresPhotoStore {
	return &PostgresPhotoStore{pool: pool}
}

func (s *PostgresPhotoStore) Create(ctx context.Context, photo *models.Photo) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO photos (id, file_key, author_uid, is_verification_photo, face_state, uploaded_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		photo.ID, photo.FileKey, photo.AuthorUID, photo.IsVerification, string(photo.FaceState), photo.UploadedAt)
	if err != nil {
		return fmt.Errorf("create photo: %w", err)
	}
	return nil
}

func (s *PostgresPhotoStore) Get(ctx context.Context, id uuid.UUID) (*models.Photo, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, file_key, author_uid, is_verification_photo, face_state, uploaded_at
		 FROM photos WHERE id = $1`, id)

	photo, err := s.scanPhoto(ctx, row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get photo: %w", err)
	}
	return photo, nil
}

func (s *PostgresPhotoStore) ListAll(ctx context.Context) ([]*models.Photo, error) {
	return s.list(ctx,
		`SELECT id, file_key, author_uid, is_verification_photo, face_state, uploaded_at
		 FROM photos ORDER BY uploaded_at, id`)
}

func (s *PostgresPhotoStore) ListByAuthor(ctx context.Context, authorUID string) ([]*models.Photo, error) {
	return s.list(ctx,
		`SELECT id, file_key, author_uid, is_verification_photo, face_state, uploaded_at
		 FROM photos WHERE author_uid = $1 ORDER BY uploaded_at, id`, authorUID)
}

func (s *PostgresPhotoStore) list(ctx context.Context, query string, args ...any) ([]*models.Photo, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	defer rows.Close()

	var photos []*models.Photo
	for rows.Next() {
		photo, err := s.scanPhoto(ctx, rows)
		if err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		photos = append(photos, photo)
	}
	return photos, rows.Err()
}

func (s *PostgresPhotoStore) scanPhoto(ctx context.Context, row rowScanner) (*models.Photo, error) {
	var (
		id             uuid.UUID
		fileKey        string
		authorUID      string
		isVerification bool
		state          string
		uploadedAt     time.Time
	)
	if err := row.Scan(&id, &fileKey, &authorUID, &isVerification, &state, &uploadedAt); err != nil {
		return nil, err
	}

	var embeddings [][]float32
	if models.EmbeddingState(state) == models.StateReady {
		var err error
		embeddings, err = s.loadFaces(ctx, id)
		if err != nil {
			return nil, err
		}
	}

	return models.HydratePhoto(id, fileKey, authorUID, isVerification,
		uploadedAt, models.EmbeddingState(state), embeddings)
}

func (s *PostgresPhotoStore) loadFaces(ctx context.Context, photoID uuid.UUID) ([][]float32, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT embedding FROM photo_faces WHERE photo_id = $1 ORDER BY face_index`, photoID)
	if err != nil {
		return nil, fmt.Errorf("load faces: %w", err)
	}
	defer rows.Close()

	var embeddings [][]float32
	for rows.Next() {
		var vec pgvector.Vector
		if err := rows.Scan(&vec); err != nil {
			return nil, fmt.Errorf("scan face: %w", err)
		}
		embeddings = append(embeddings, vec.Slice())
	}
	return embeddings, rows.Err()
}

// UpdateEmbeddings replaces a photo's faces and state in one transaction so
// readers never observe a ready photo without its vectors.
func (s *PostgresPhotoStore) UpdateEmbeddings(ctx context.Context, id uuid.UUID, state models.EmbeddingState, embeddings [][]float32) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE photos SET face_state = $1 WHERE id = $2`, string(state), id)
	if err != nil {
		return fmt.Errorf("update photo state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM photo_faces WHERE photo_id = $1`, id); err != nil {
		return fmt.Errorf("clear faces: %w", err)
	}
	for idx, emb := range embeddings {
		vec := pgvector.NewVector(emb)
		if _, err := tx.Exec(ctx,
			`INSERT INTO photo_faces (photo_id, face_index, embedding) VALUES ($1, $2, $3)`,
			id, idx, vec); err != nil {
			return fmt.Errorf("insert face %d: %w", idx, err)
		}
	}

	return tx.Commit(ctx)
}

// --- Accounts ---

// PostgresAccountStore implements AccountStore. Confirmed/predicted photo
// sets are uuid[] columns replaced wholesale (last-writer-wins, no merges).
type PostgresAccountStore struct {
	pool *pgxpool.Pool
}

func NewPostgresAccountStore(pool *pgxpool.Pool) *PostgresAccountStore {
	return &PostgresAccountStore{pool: pool}
}

func (s *PostgresAccountStore) Get(ctx context.Context, uid string) (*models.Account, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT uid, email, face_embedding, confirmed_photos, predicted_photos
		 FROM accounts WHERE uid = $1`, uid)

	acc, err := scanAccount(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return acc, nil
}

func (s *PostgresAccountStore) ListAll(ctx context.Context) ([]*models.Account, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT uid, email, face_embedding, confirmed_photos, predicted_photos
		 FROM accounts ORDER BY uid`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var (
		acc       models.Account
		vec       *pgvector.Vector
		confirmed []uuid.UUID
		predicted []uuid.UUID
	)
	if err := row.Scan(&acc.UID, &acc.Email, &vec, &confirmed, &predicted); err != nil {
		return nil, err
	}
	if vec != nil {
		acc.FaceEmbedding = vec.Slice()
	}
	acc.ConfirmedPhotos = models.NewPhotoSet(confirmed...)
	acc.PredictedPhotos = models.NewPhotoSet(predicted...)
	return &acc, nil
}

func (s *PostgresAccountStore) SetCanonicalEmbedding(ctx context.Context, uid string, embedding []float32) error {
	vec := pgvector.NewVector(embedding)
	tag, err := s.pool.Exec(ctx,
		`UPDATE accounts SET face_embedding = $1 WHERE uid = $2`, vec, uid)
	if err != nil {
		return fmt.Errorf("set canonical embedding: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresAccountStore) ReplacePredicted(ctx context.Context, uid string, photoIDs []uuid.UUID) error {
	if photoIDs == nil {
		photoIDs = []uuid.UUID{}
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE accounts SET predicted_photos = $1 WHERE uid = $2`, photoIDs, uid)
	if err != nil {
		return fmt.Errorf("replace predicted: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresAccountStore) ReplaceConfirmed(ctx context.Context, uid string, photoIDs []uuid.UUID) error {
	if photoIDs == nil {
		photoIDs = []uuid.UUID{}
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE accounts SET confirmed_photos = $1 WHERE uid = $2`, photoIDs, uid)
	if err != nil {
		return fmt.Errorf("replace confirmed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
