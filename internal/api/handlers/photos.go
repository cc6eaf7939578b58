package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MarkCarsonDev/PhotoBomb/internal/models"
	"github.com/MarkCarsonDev/PhotoBomb/internal/storage"
	"github.com/MarkCarsonDev/PhotoBomb/pkg/dto"
)

const maxUploadSize = 20 << 20 // 20 MiB

// Publisher notifies the worker side that a photo changed.
type Publisher interface {
	PublishPhotoChange(ctx context.Context, photoID uuid.UUID) error
}

type PhotoHandler struct {
	photos   storage.PhotoStore
	accounts storage.AccountStore
	blobs    storage.BlobStore
	producer Publisher
}

func NewPhotoHandler(photos storage.PhotoStore, accounts storage.AccountStore, blobs storage.BlobStore, producer Publisher) *PhotoHandler {
	return &PhotoHandler{photos: photos, accounts: accounts, blobs: blobs, producer: producer}
}

// Upload handles POST /v1/photos. Multipart form with a "file" part plus
// optional "author_uid".
func (h *PhotoHandler) Upload(c *gin.Context) {
	authorUID := c.PostForm("author_uid")
	h.ingest(c, authorUID, false)
}

// UploadVerification handles POST /v1/accounts/:uid/verification. The photo
// is bound to the account in the path and flagged as a verification photo.
func (h *PhotoHandler) UploadVerification(c *gin.Context) {
	uid := c.Param("uid")

	if _, err := h.accounts.Get(c.Request.Context(), uid); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.ingest(c, uid, true)
}

func (h *PhotoHandler) ingest(c *gin.Context, authorUID string, isVerification bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
		return
	}
	if fileHeader.Size > maxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is not an image"})
		return
	}

	ext := filepath.Ext(fileHeader.Filename)
	if ext == "" {
		ext = ".jpg"
	}
	key := fmt.Sprintf("photos/%s%s", uuid.New().String(), ext)

	photo, err := models.NewPhoto(key, authorUID, isVerification)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.blobs.PutObject(c.Request.Context(), key, data, contentType); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := h.photos.Create(c.Request.Context(), photo); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// The upload is durable at this point. A failed publish only delays
	// processing until the next full recluster, so log and keep going.
	if err := h.producer.PublishPhotoChange(c.Request.Context(), photo.ID); err != nil {
		slog.Warn("publish photo change failed", "photo_id", photo.ID, "error", err)
	}

	c.JSON(http.StatusCreated, dto.UploadPhotoResponse{
		ID:             photo.ID,
		FileKey:        photo.FileKey,
		AuthorUID:      photo.AuthorUID,
		IsVerification: photo.IsVerification,
		EmbeddingState: string(photo.FaceState),
		UploadedAt:     photo.UploadedAt.UTC().Format(time.RFC3339),
	})
}

func (h *PhotoHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid photo id"})
		return
	}

	photo, err := h.photos.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "photo not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, photoResponse(photo))
}

func (h *PhotoHandler) List(c *gin.Context) {
	var (
		photos []*models.Photo
		err    error
	)
	if author := c.Query("author_uid"); author != "" {
		photos, err = h.photos.ListByAuthor(c.Request.Context(), author)
	} else {
		photos, err = h.photos.ListAll(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.PhotoResponse, 0, len(photos))
	for _, p := range photos {
		resp = append(resp, photoResponse(p))
	}

	c.JSON(http.StatusOK, dto.PhotoListResponse{Photos: resp, Total: len(resp)})
}

// Download streams the original image bytes back to the client.
func (h *PhotoHandler) Download(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid photo id"})
		return
	}

	photo, err := h.photos.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "photo not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	data, err := h.blobs.GetObject(c.Request.Context(), photo.FileKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Data(http.StatusOK, http.DetectContentType(data), data)
}

func photoResponse(p *models.Photo) dto.PhotoResponse {
	return dto.PhotoResponse{
		ID:             p.ID,
		FileKey:        p.FileKey,
		AuthorUID:      p.AuthorUID,
		IsVerification: p.IsVerification,
		EmbeddingState: string(p.FaceState),
		FaceCount:      len(p.Embeddings),
		UploadedAt:     p.UploadedAt.UTC().Format(time.RFC3339),
	}
}
