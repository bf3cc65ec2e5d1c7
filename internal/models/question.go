package models

import (
	"time"

	"github.com/google/uuid"
)

// TagRef is the minimal tag projection attached to populated questions.
type TagRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Question represents a question post. Author and Tags are populated with
// their fixed minimal projections when the question is loaded for display;
// dangling references are skipped, not repaired.
type Question struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Author      *AuthorRef `json:"author,omitempty"`
	Tags        []TagRef   `json:"tags"`
	Views       int64      `json:"views"`
	Upvotes     int        `json:"upvotes"`
	AnswerCount int        `json:"answerCount"`
	CreatedAt   time.Time  `json:"createdAt"`
}
