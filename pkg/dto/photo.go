package dto

import "github.com/google/uuid"

type UploadPhotoResponse struct {
	ID             uuid.UUID `json:"id"`
	FileKey        string    `json:"file_key"`
	AuthorUID      string    `json:"author_uid"`
	IsVerification bool      `json:"is_verification"`
	EmbeddingState string    `json:"embedding_state"`
	UploadedAt     string    `json:"uploaded_at"`
}

type PhotoResponse struct {
	ID             uuid.UUID `json:"id"`
	FileKey        string    `json:"file_key"`
	AuthorUID      string    `json:"author_uid"`
	IsVerification bool      `json:"is_verification"`
	EmbeddingState string    `json:"embedding_state"`
	FaceCount      int       `json:"face_count"`
	UploadedAt     string    `json:"uploaded_at"`
}

type PhotoListResponse struct {
	Photos []PhotoResponse `json:"photos"`
	Total  int             `json:"total"`
}
