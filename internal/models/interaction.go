package models

import (
	"time"

	"github.com/google/uuid"
)

// Interaction action kinds.
const (
	ActionView = "view"
)

// Interaction is one row of the append-only activity log. Repeat actions by
// the same user on the same question each get their own row; nothing
// deduplicates them.
type Interaction struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"userId"`
	QuestionID uuid.UUID `json:"questionId"`
	Action     string    `json:"action"`
	CreatedAt  time.Time `json:"createdAt"`
}
