package models

import (
	"time"
)

type Vent struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	// User ID (empty for guest vents)
	UserID string `json:"user_id,omitempty"`

	// Message content
	Message string `json:"message"`
}
