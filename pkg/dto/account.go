package dto

import "github.com/google/uuid"

type AccountResponse struct {
	UID             string      `json:"uid"`
	Email           string      `json:"email"`
	Verified        bool        `json:"verified"`
	ConfirmedPhotos []uuid.UUID `json:"confirmed_photos"`
	PredictedPhotos []uuid.UUID `json:"predicted_photos"`
}

type PredictionListResponse struct {
	AccountUID string      `json:"account_uid"`
	Predicted  []uuid.UUID `json:"predicted"`
	Total      int         `json:"total"`
}

type ConfirmPredictionRequest struct {
	PhotoID uuid.UUID `json:"photo_id" binding:"required"`
}

type RejectPredictionRequest struct {
	PhotoID uuid.UUID `json:"photo_id" binding:"required"`
}

// WSEvent is a WebSocket message for real-time suggestion delivery.
type WSEvent struct {
	Type       string      `json:"type"` // suggestions_updated
	AccountUID string      `json:"account_uid"`
	Predicted  []uuid.UUID `json:"predicted"`
	UpdatedAt  string      `json:"updated_at"`
}
