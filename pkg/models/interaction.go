package models

import (
	"time"

	"github.com/google/uuid"
)

// InteractionEvent is an append-only record of one user action. The
// category is the item's category at event time; rows are never mutated so
// interest scores can be recomputed from scratch if needed.
type InteractionEvent struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id" validate:"required"`
	ItemID    string    `json:"item_id" db:"item_id" validate:"required"`
	Category  string    `json:"category" db:"category"`
	Action    string    `json:"action" db:"action" validate:"required"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
}

type TrackInteractionRequest struct {
	UserID string `json:"user_id" validate:"required"`
	ItemID string `json:"item_id" validate:"required"`
	Action string `json:"action" validate:"required,oneof=view click like share comment"`
}
