package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MarkCarsonDev/PhotoBomb/internal/models"
	"github.com/MarkCarsonDev/PhotoBomb/internal/storage"
	"github.com/MarkCarsonDev/PhotoBomb/pkg/dto"
)

type AccountHandler struct {
	accounts storage.AccountStore
}

func NewAccountHandler(accounts storage.AccountStore) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

func (h *AccountHandler) Get(c *gin.Context) {
	account, ok := h.load(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, accountResponse(account))
}

func (h *AccountHandler) ListPredictions(c *gin.Context) {
	account, ok := h.load(c)
	if !ok {
		return
	}

	predicted := account.PredictedPhotos.IDs()
	c.JSON(http.StatusOK, dto.PredictionListResponse{
		AccountUID: account.UID,
		Predicted:  predicted,
		Total:      len(predicted),
	})
}

// Confirm handles POST /v1/accounts/:uid/predictions/confirm. The photo
// moves from the predicted set to the confirmed set and stays out of future
// suggestions for this account.
func (h *AccountHandler) Confirm(c *gin.Context) {
	var req dto.ConfirmPredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, ok := h.load(c)
	if !ok {
		return
	}

	if !account.ConfirmPrediction(req.PhotoID) {
		c.JSON(http.StatusConflict, gin.H{"error": "photo is not currently predicted for this account"})
		return
	}

	// Remove from predicted before adding to confirmed. If the second write
	// fails the photo is in neither set, which keeps the sets disjoint and
	// self-corrects on the next clustering pass; the reverse order could
	// leave it in both.
	ctx := c.Request.Context()
	if err := h.accounts.ReplacePredicted(ctx, account.UID, account.PredictedPhotos.IDs()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := h.accounts.ReplaceConfirmed(ctx, account.UID, account.ConfirmedPhotos.IDs()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, accountResponse(account))
}

// Reject handles POST /v1/accounts/:uid/predictions/reject. The photo is
// dropped from the predicted set only; a later clustering run may suggest
// it again.
func (h *AccountHandler) Reject(c *gin.Context) {
	var req dto.RejectPredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, ok := h.load(c)
	if !ok {
		return
	}

	if !account.RejectPrediction(req.PhotoID) {
		c.JSON(http.StatusConflict, gin.H{"error": "photo is not currently predicted for this account"})
		return
	}

	if err := h.accounts.ReplacePredicted(c.Request.Context(), account.UID, account.PredictedPhotos.IDs()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, accountResponse(account))
}

func (h *AccountHandler) load(c *gin.Context) (*models.Account, bool) {
	uid := c.Param("uid")
	account, err := h.accounts.Get(c.Request.Context(), uid)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	return account, true
}

func accountResponse(a *models.Account) dto.AccountResponse {
	return dto.AccountResponse{
		UID:             a.UID,
		Email:           a.Email,
		Verified:        a.HasCanonicalEmbedding(),
		ConfirmedPhotos: a.ConfirmedPhotos.IDs(),
		PredictedPhotos: a.PredictedPhotos.IDs(),
	}
}
