package models

import (
	"time"

	"github.com/google/uuid"
)

// Tag groups questions by topic. Tags are created implicitly the first time
// a question references them; Questions is a back-reference, not ownership.
type Tag struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	QuestionCount int       `json:"questionCount"`
	CreatedAt     time.Time `json:"createdAt"`
}
