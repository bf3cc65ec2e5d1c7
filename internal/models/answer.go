package models

import (
	"time"

	"github.com/google/uuid"
)

// Answer represents an answer to a question.
type Answer struct {
	ID         uuid.UUID  `json:"id"`
	Content    string     `json:"content"`
	Author     *AuthorRef `json:"author,omitempty"`
	QuestionID uuid.UUID  `json:"questionId"`
	Upvotes    int        `json:"upvotes"`
	CreatedAt  time.Time  `json:"createdAt"`
}
