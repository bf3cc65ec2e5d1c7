package models

import (
	"time"

	"github.com/google/uuid"
)

// Booking records a visit type selected on the booking page.
type Booking struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}
