package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// migrations are applied in order at startup. The vector dimension is bound
// by the extractor model (128 for the dlib-style encoder).
var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS vector`,

	`CREATE TABLE IF NOT EXISTS photos (
		id UUID PRIMARY KEY,
		file_key TEXT NOT NULL,
		author_uid TEXT NOT NULL DEFAULT '',
		is_verification_photo BOOLEAN NOT NULL DEFAULT FALSE,
		face_state TEXT NOT NULL DEFAULT 'pending',
		uploaded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS photo_faces (
		photo_id UUID NOT NULL REFERENCES photos(id) ON DELETE CASCADE,
		face_index INT NOT NULL,
		embedding VECTOR(128) NOT NULL,
		PRIMARY KEY (photo_id, face_index)
	)`,

	`CREATE TABLE IF NOT EXISTS accounts (
		uid TEXT PRIMARY KEY,
		email TEXT NOT NULL DEFAULT '',
		face_embedding VECTOR(128),
		confirmed_photos UUID[] NOT NULL DEFAULT '{}',
		predicted_photos UUID[] NOT NULL DEFAULT '{}'
	)`,

	`CREATE INDEX IF NOT EXISTS idx_photos_author ON photos(author_uid)`,
	`CREATE INDEX IF NOT EXISTS idx_photos_state ON photos(face_state)`,
}

// Migrate applies the schema. Safe to run on every startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
