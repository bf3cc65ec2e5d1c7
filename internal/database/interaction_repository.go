// internal/database/interaction_repository.go
package database

import (
	"context"
	"time"

	"med-overflow/internal/models"
	"med-overflow/internal/utils"

	"github.com/google/uuid"
)

// InteractionDocument represents the MongoDB schema for one activity-log row
type InteractionDocument struct {
	ID         string    `bson:"_id"`
	UserID     string    `bson:"user"`
	QuestionID string    `bson:"question"`
	Action     string    `bson:"action"`
	CreatedAt  time.Time `bson:"createdAt"`
}

// RecordView bumps the question's view counter and, when an acting user is
// known, appends a "view" interaction row. Every call appends a fresh row:
// the log is append-only and repeat views by the same user are not
// deduplicated.
func (m *MongoDB) RecordView(ctx context.Context, questionID uuid.UUID, userID *uuid.UUID) error {
	if err := m.IncrementQuestionViews(ctx, questionID); err != nil {
		return err
	}

	if userID == nil {
		return nil
	}

	doc := InteractionDocument{
		ID:         uuid.New().String(),
		UserID:     userID.String(),
		QuestionID: questionID.String(),
		Action:     models.ActionView,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := m.Interactions.InsertOne(ctx, doc); err != nil {
		return utils.NewQueryFailedError("record view interaction", err)
	}

	return nil
}
