package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a platform member. Accounts are created on first sign-in
// from the external identity provider; ExternalID is that provider's subject.
type User struct {
	ID         uuid.UUID   `json:"id"`
	ExternalID string      `json:"externalId"`
	Name       string      `json:"name"`
	Username   string      `json:"username"`
	Email      string      `json:"email"`
	Picture    string      `json:"picture"`
	Bio        string      `json:"bio"`
	Saved      []uuid.UUID `json:"saved"` // IDs of saved questions
	CreatedAt  time.Time   `json:"createdAt"`
}

// UserInfo bundles a user with their contribution totals for profile pages.
type UserInfo struct {
	User           *User `json:"user"`
	TotalQuestions int64 `json:"totalQuestions"`
	TotalAnswers   int64 `json:"totalAnswers"`
}

// AuthorRef is the minimal author projection attached to populated
// questions and answers: enough to render a byline, nothing more.
type AuthorRef struct {
	ID         uuid.UUID `json:"id"`
	ExternalID string    `json:"externalId"`
	Name       string    `json:"name"`
	Picture    string    `json:"picture"`
}
