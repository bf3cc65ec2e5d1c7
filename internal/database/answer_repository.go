// internal/database/answer_repository.go
package database

import (
	"context"
	"fmt"
	"time"

	"med-overflow/internal/models"
	"med-overflow/internal/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// AnswerDocument represents the MongoDB schema for an answer
type AnswerDocument struct {
	ID         string    `bson:"_id"`
	Content    string    `bson:"content"`
	AuthorID   string    `bson:"author"`
	QuestionID string    `bson:"question"`
	Upvotes    int       `bson:"upvotes"`
	CreatedAt  time.Time `bson:"createdAt"`
}

// CreateAnswerParams carries the fields needed to post an answer.
type CreateAnswerParams struct {
	Content    string
	AuthorID   uuid.UUID
	QuestionID uuid.UUID
}

// CreateAnswer inserts an answer and bumps the question's answer count.
// Fails with NotFound when the question does not exist.
func (m *MongoDB) CreateAnswer(ctx context.Context, params CreateAnswerParams) (*models.Answer, error) {
	result, err := m.Questions.UpdateOne(ctx,
		bson.M{"_id": params.QuestionID.String()},
		bson.M{"$inc": bson.M{"answerCount": 1}},
	)
	if err != nil {
		return nil, utils.NewQueryFailedError("bump question answer count", err)
	}
	if result.MatchedCount == 0 {
		return nil, utils.NewNotFoundError("question")
	}

	doc := AnswerDocument{
		ID:         uuid.New().String(),
		Content:    params.Content,
		AuthorID:   params.AuthorID.String(),
		QuestionID: params.QuestionID.String(),
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := m.Answers.InsertOne(ctx, doc); err != nil {
		return nil, utils.NewQueryFailedError("create answer", err)
	}

	answers, err := m.populateAnswers(ctx, []AnswerDocument{doc})
	if err != nil {
		return nil, err
	}
	return &answers[0], nil
}

// ListAnswersByQuestion returns one page of a question's answers, most voted
// first. Fails with NotFound when the question does not exist.
func (m *MongoDB) ListAnswersByQuestion(ctx context.Context, questionID uuid.UUID, page, pageSize int) ([]models.Answer, bool, error) {
	err := m.Questions.FindOne(ctx, bson.M{"_id": questionID.String()},
		options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if err == mongo.ErrNoDocuments {
		return nil, false, utils.NewNotFoundError("question")
	}
	if err != nil {
		return nil, false, utils.NewQueryFailedError("get question", err)
	}

	skip, limit, size := pageWindow(page, pageSize)

	opts := options.Find().
		SetSort(bson.D{{Key: "upvotes", Value: -1}, {Key: "createdAt", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := m.Answers.Find(ctx, bson.M{"question": questionID.String()}, opts)
	if err != nil {
		return nil, false, utils.NewQueryFailedError("list answers", err)
	}
	defer cursor.Close(ctx)

	var docs []AnswerDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, false, utils.NewQueryFailedError("decode answers", err)
	}

	docs, isNext := trimPage(docs, size)

	answers, err := m.populateAnswers(ctx, docs)
	if err != nil {
		return nil, false, err
	}
	return answers, isNext, nil
}

// populateAnswers resolves author references for a batch of answer
// documents. Dangling authors are left nil.
func (m *MongoDB) populateAnswers(ctx context.Context, docs []AnswerDocument) ([]models.Answer, error) {
	authorIDs := make([]string, 0, len(docs))
	for _, doc := range docs {
		authorIDs = append(authorIDs, doc.AuthorID)
	}

	authors, err := m.authorRefs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	answers := make([]models.Answer, 0, len(docs))
	for _, doc := range docs {
		answer, err := documentToAnswer(&doc)
		if err != nil {
			m.logger.Warn("skipping malformed answer document", zap.String("id", doc.ID), zap.Error(err))
			continue
		}
		if author, ok := authors[doc.AuthorID]; ok {
			answer.Author = &author
		}
		answers = append(answers, *answer)
	}

	return answers, nil
}

// documentToAnswer converts a MongoDB document to an Answer model.
func documentToAnswer(doc *AnswerDocument) (*models.Answer, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid answer ID: %w", err)
	}
	questionID, err := uuid.Parse(doc.QuestionID)
	if err != nil {
		return nil, fmt.Errorf("invalid question ID on answer: %w", err)
	}

	return &models.Answer{
		ID:         id,
		Content:    doc.Content,
		QuestionID: questionID,
		Upvotes:    doc.Upvotes,
		CreatedAt:  doc.CreatedAt,
	}, nil
}
