package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MarkCarsonDev/PhotoBomb/internal/models"
	"github.com/MarkCarsonDev/PhotoBomb/internal/storage"
	"github.com/MarkCarsonDev/PhotoBomb/pkg/dto"
)

func newAccountRouter(t *testing.T, accounts *storage.MemoryAccountStore) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := NewAccountHandler(accounts)
	r := gin.New()
	r.GET("/v1/accounts/:uid", h.Get)
	r.GET("/v1/accounts/:uid/predictions", h.ListPredictions)
	r.POST("/v1/accounts/:uid/predictions/confirm", h.Confirm)
	r.POST("/v1/accounts/:uid/predictions/reject", h.Reject)
	return r
}

func postJSON(t *testing.T, router *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetAccount(t *testing.T) {
	accounts := storage.NewMemoryAccountStore()
	accounts.Put(&models.Account{
		UID:             "alice",
		Email:           "alice@example.com",
		FaceEmbedding:   []float32{0.1},
		ConfirmedPhotos: models.NewPhotoSet(),
		PredictedPhotos: models.NewPhotoSet(),
	})
	router := newAccountRouter(t, accounts)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/accounts/alice", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}

	var resp dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.UID != "alice" || !resp.Verified {
		t.Errorf("response = %+v; want verified alice", resp)
	}
}

func TestGetAccountNotFound(t *testing.T) {
	router := newAccountRouter(t, storage.NewMemoryAccountStore())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/accounts/ghost", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d; want 404", rec.Code)
	}
}

func TestListPredictions(t *testing.T) {
	photo := uuid.New()
	accounts := storage.NewMemoryAccountStore()
	accounts.Put(&models.Account{
		UID:             "alice",
		ConfirmedPhotos: models.NewPhotoSet(),
		PredictedPhotos: models.NewPhotoSet(photo),
	})
	router := newAccountRouter(t, accounts)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/accounts/alice/predictions", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}

	var resp dto.PredictionListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 1 || resp.Predicted[0] != photo {
		t.Errorf("predictions = %+v; want [%v]", resp, photo)
	}
}

func TestConfirmPredictionEndpoint(t *testing.T) {
	photo := uuid.New()
	accounts := storage.NewMemoryAccountStore()
	accounts.Put(&models.Account{
		UID:             "alice",
		ConfirmedPhotos: models.NewPhotoSet(),
		PredictedPhotos: models.NewPhotoSet(photo),
	})
	router := newAccountRouter(t, accounts)

	rec := postJSON(t, router, "/v1/accounts/alice/predictions/confirm",
		dto.ConfirmPredictionRequest{PhotoID: photo})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200: %s", rec.Code, rec.Body.String())
	}

	var resp dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.ConfirmedPhotos) != 1 || resp.ConfirmedPhotos[0] != photo {
		t.Errorf("confirmed = %v; want [%v]", resp.ConfirmedPhotos, photo)
	}
	if len(resp.PredictedPhotos) != 0 {
		t.Errorf("predicted = %v; want empty", resp.PredictedPhotos)
	}

	// The change must be persisted, not just reflected in the response.
	acc, err := accounts.Get(context.Background(), "alice")
	if err != nil {
		t.Fatal(err)
	}
	if !acc.ConfirmedPhotos.Contains(photo) || acc.PredictedPhotos.Contains(photo) {
		t.Errorf("stored account not updated: confirmed=%v predicted=%v",
			acc.ConfirmedPhotos.IDs(), acc.PredictedPhotos.IDs())
	}
}

// A confirm where the second write fails must never leave the photo in
// both sets. With the predicted set pruned first, a failed confirmed write
// leaves the photo in neither; the next clustering pass re-suggests it.
func TestConfirmPartialFailureKeepsSetsDisjoint(t *testing.T) {
	photo := uuid.New()
	accounts := storage.NewMemoryAccountStore()
	accounts.Put(&models.Account{
		UID:             "alice",
		ConfirmedPhotos: models.NewPhotoSet(),
		PredictedPhotos: models.NewPhotoSet(photo),
	})
	accounts.ReplaceConfirmedError = errors.New("write failed")
	router := newAccountRouter(t, accounts)

	rec := postJSON(t, router, "/v1/accounts/alice/predictions/confirm",
		dto.ConfirmPredictionRequest{PhotoID: photo})

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d; want 500", rec.Code)
	}

	acc, err := accounts.Get(context.Background(), "alice")
	if err != nil {
		t.Fatal(err)
	}
	if acc.ConfirmedPhotos.Contains(photo) && acc.PredictedPhotos.Contains(photo) {
		t.Fatalf("photo %s is in both confirmed and predicted after failed write", photo)
	}
	if acc.ConfirmedPhotos.Contains(photo) {
		t.Errorf("confirmed write reported failure but persisted %s", photo)
	}
	if acc.PredictedPhotos.Contains(photo) {
		t.Errorf("photo %s still predicted; prune must happen before confirm", photo)
	}
}

func TestConfirmUnpredictedPhoto(t *testing.T) {
	accounts := storage.NewMemoryAccountStore()
	accounts.Put(&models.Account{
		UID:             "alice",
		ConfirmedPhotos: models.NewPhotoSet(),
		PredictedPhotos: models.NewPhotoSet(),
	})
	router := newAccountRouter(t, accounts)

	rec := postJSON(t, router, "/v1/accounts/alice/predictions/confirm",
		dto.ConfirmPredictionRequest{PhotoID: uuid.New()})

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d; want 409", rec.Code)
	}
}

func TestRejectPredictionEndpoint(t *testing.T) {
	photo := uuid.New()
	accounts := storage.NewMemoryAccountStore()
	accounts.Put(&models.Account{
		UID:             "alice",
		ConfirmedPhotos: models.NewPhotoSet(),
		PredictedPhotos: models.NewPhotoSet(photo),
	})
	router := newAccountRouter(t, accounts)

	rec := postJSON(t, router, "/v1/accounts/alice/predictions/reject",
		dto.RejectPredictionRequest{PhotoID: photo})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200: %s", rec.Code, rec.Body.String())
	}

	var resp dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.PredictedPhotos) != 0 {
		t.Errorf("predicted = %v; want empty after reject", resp.PredictedPhotos)
	}
	if len(resp.ConfirmedPhotos) != 0 {
		t.Errorf("reject must not confirm; confirmed = %v", resp.ConfirmedPhotos)
	}
}

func TestConfirmBadRequest(t *testing.T) {
	router := newAccountRouter(t, storage.NewMemoryAccountStore())

	req := httptest.NewRequest("POST", "/v1/accounts/alice/predictions/confirm",
		bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d; want 400", rec.Code)
	}
}
