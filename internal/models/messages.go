package models

import (
	"time"

	"github.com/google/uuid"
)

// PhotoChange is the message published to NATS when a photo record is
// created or modified; the worker reacts by running the pipeline.
type PhotoChange struct {
	PhotoID   uuid.UUID `json:"photo_id"`
	ChangedAt time.Time `json:"changed_at"`
}

// SuggestionEvent is published after a reconciliation pass rewrites an
// account's predicted set. The API consumes it for WebSocket broadcast.
type SuggestionEvent struct {
	AccountUID string      `json:"account_uid"`
	Predicted  []uuid.UUID `json:"predicted_photos"`
	UpdatedAt  time.Time   `json:"updated_at"`
}
