// internal/database/user_repository.go
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

// UserDocument represents the MongoDB schema for a user
type UserDocument struct {
	ID         string    `bson:"_id"`
	ExternalID string    `bson:"externalId"` // Identity-provider subject
	Name       string    `bson:"name"`
	Username   string    `bson:"username"`
	Email      string    `bson:"email"`
	Picture    string    `bson:"picture"`
	Bio        string    `bson:"bio"`
	Saved      []string  `bson:"saved"` // Saved question IDs
	CreatedAt  time.Time `bson:"createdAt"`
}

// SyncUserParams carries the profile fields delivered by the identity
// provider on sign-in.
type SyncUserParams struct {
	ExternalID string
	Name       string
	Username   string
	Email      string
	Picture    string
}

// UpdateUserParams carries the mutable profile fields; nil means unchanged.
type UpdateUserParams struct {
	Name    *string
	Bio     *string
	Picture *string
}

// SyncUser creates the user on first sign-in or refreshes the profile fields
// on subsequent ones.
func (m *MongoDB) SyncUser(ctx context.Context, params SyncUserParams) (*models.User, error) {
	filter := bson.M{"externalId": params.ExternalID}
	update := bson.M{
		"$set": bson.M{
			"name":     params.Name,
			"username": params.Username,
			"email":    params.Email,
			"picture":  params.Picture,
		},
		"$setOnInsert": bson.M{
			"_id":       uuid.New().String(),
			"saved":     []string{},
			"createdAt": time.Now().UTC(),
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc UserDocument
	if err := m.Users.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return nil, utils.NewQueryFailedError("sync user", err)
	}
	return documentToUser(&doc)
}

// GetUserByExternalID retrieves a user by their identity-provider subject.
func (m *MongoDB) GetUserByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	doc, err := m.findUserDoc(ctx, externalID)
	if err != nil {
		return nil, err
	}
	return documentToUser(doc)
}

// UpdateUser applies a partial profile update and returns the updated user.
func (m *MongoDB) UpdateUser(ctx context.Context, externalID string, params UpdateUserParams) (*models.User, error) {
	set := bson.M{}
	if params.Name != nil {
		set["name"] = *params.Name
	}
	if params.Bio != nil {
		set["bio"] = *params.Bio
	}
	if params.Picture != nil {
		set["picture"] = *params.Picture
	}
	if len(set) == 0 {
		return m.GetUserByExternalID(ctx, externalID)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc UserDocument
	err := m.Users.FindOneAndUpdate(ctx, bson.M{"externalId": externalID}, bson.M{"$set": set}, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewNotFoundError("user")
	}
	if err != nil {
		return nil, utils.NewQueryFailedError("update user", err)
	}
	return documentToUser(&doc)
}

// DeleteUser removes a user and their authored content as a sequential saga:
// resolve the user, sweep their questions (each with its own dependents),
// sweep their interactions, then delete the user record. There is no
// transaction around the steps; a failure part-way leaves the completed
// steps applied and the rest orphaned.
func (m *MongoDB) DeleteUser(ctx context.Context, externalID string) (*models.User, error) {
	doc, err := m.findUserDoc(ctx, externalID)
	if err != nil {
		return nil, err
	}

	cursor, err := m.Questions.Find(ctx,
		bson.M{"author": doc.ID},
		options.Find().SetProjection(bson.M{"_id": 1}),
	)
	if err != nil {
		return nil, utils.NewQueryFailedError("list user questions", err)
	}

	var questionIDs []string
	for cursor.Next(ctx) {
		var q struct {
			ID string `bson:"_id"`
		}
		if err := cursor.Decode(&q); err != nil {
			cursor.Close(ctx)
			return nil, utils.NewQueryFailedError("decode user question", err)
		}
		questionIDs = append(questionIDs, q.ID)
	}
	if err := cursor.Err(); err != nil {
		cursor.Close(ctx)
		return nil, utils.NewQueryFailedError("iterate user questions", err)
	}
	cursor.Close(ctx)

	for _, idStr := range questionIDs {
		questionID, err := uuid.Parse(idStr)
		if err != nil {
			m.logger.Warn("skipping question with malformed ID during user delete", zap.String("id", idStr))
			continue
		}
		if err := m.DeleteQuestion(ctx, questionID); err != nil && !utils.IsErrorCode(err, utils.ErrNotFound) {
			return nil, err
		}
	}

	if _, err := m.Interactions.DeleteMany(ctx, bson.M{"user": doc.ID}); err != nil {
		return nil, utils.NewQueryFailedError("delete user interactions", err)
	}

	result, err := m.Users.DeleteOne(ctx, bson.M{"_id": doc.ID})
	if err != nil {
		return nil, utils.NewQueryFailedError("delete user", err)
	}
	if result.DeletedCount == 0 {
		return nil, utils.NewNotFoundError("user")
	}

	m.logger.Info("deleted user with authored content",
		zap.String("externalId", externalID),
		zap.Int("questions", len(questionIDs)),
	)

	return documentToUser(doc)
}

// ListUsers returns one page of users matching the search string plus
// whether a further page exists.
func (m *MongoDB) ListUsers(ctx context.Context, searchQuery string, mode SortMode, page, pageSize int) ([]models.User, bool, error) {
	skip, limit, size := pageWindow(page, pageSize)

	opts := options.Find().SetSkip(skip).SetLimit(limit)
	if sortSpec := sortForUsers(mode); sortSpec != nil {
		opts.SetSort(sortSpec)
	}

	cursor, err := m.Users.Find(ctx, regexFilter("name", searchQuery), opts)
	if err != nil {
		return nil, false, utils.NewQueryFailedError("list users", err)
	}
	defer cursor.Close(ctx)

	var docs []UserDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, false, utils.NewQueryFailedError("decode users", err)
	}

	docs, isNext := trimPage(docs, size)

	users := make([]models.User, 0, len(docs))
	for i := range docs {
		user, err := documentToUser(&docs[i])
		if err != nil {
			m.logger.Warn("skipping malformed user document", zap.String("id", docs[i].ID))
			continue
		}
		users = append(users, *user)
	}

	return users, isNext, nil
}

// ToggleSaveQuestion adds the question to the user's saved list, or removes
// it if it is already there. Returns whether the question is saved after the
// call.
func (m *MongoDB) ToggleSaveQuestion(ctx context.Context, externalID string, questionID uuid.UUID) (bool, error) {
	doc, err := m.findUserDoc(ctx, externalID)
	if err != nil {
		return false, err
	}

	idStr := questionID.String()
	saved := false
	for _, s := range doc.Saved {
		if s == idStr {
			saved = true
			break
		}
	}

	var update bson.M
	if saved {
		update = bson.M{"$pull": bson.M{"saved": idStr}}
	} else {
		update = bson.M{"$addToSet": bson.M{"saved": idStr}}
	}

	if _, err := m.Users.UpdateOne(ctx, bson.M{"_id": doc.ID}, update); err != nil {
		return false, utils.NewQueryFailedError("toggle saved question", err)
	}

	return !saved, nil
}

// GetSavedQuestions returns one page of the user's saved questions,
// optionally narrowed by a title search, newest first.
func (m *MongoDB) GetSavedQuestions(ctx context.Context, externalID, searchQuery string, page, pageSize int) ([]models.Question, bool, error) {
	doc, err := m.findUserDoc(ctx, externalID)
	if err != nil {
		return nil, false, err
	}

	skip, limit, size := pageWindow(page, pageSize)

	filter := withFilter(bson.M{"_id": bson.M{"$in": doc.Saved}}, "title", searchQuery)
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := m.Questions.Find(ctx, filter, opts)
	if err != nil {
		return nil, false, utils.NewQueryFailedError("list saved questions", err)
	}
	defer cursor.Close(ctx)

	var docs []QuestionDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, false, utils.NewQueryFailedError("decode saved questions", err)
	}

	docs, isNext := trimPage(docs, size)

	questions, err := m.populateQuestions(ctx, docs)
	if err != nil {
		return nil, false, err
	}
	return questions, isNext, nil
}

// GetUserInfo returns the user together with their contribution totals.
func (m *MongoDB) GetUserInfo(ctx context.Context, externalID string) (*models.UserInfo, error) {
	doc, err := m.findUserDoc(ctx, externalID)
	if err != nil {
		return nil, err
	}

	user, err := documentToUser(doc)
	if err != nil {
		return nil, err
	}

	totalQuestions, err := m.Questions.CountDocuments(ctx, bson.M{"author": doc.ID})
	if err != nil {
		return nil, utils.NewQueryFailedError("count user questions", err)
	}
	totalAnswers, err := m.Answers.CountDocuments(ctx, bson.M{"author": doc.ID})
	if err != nil {
		return nil, utils.NewQueryFailedError("count user answers", err)
	}

	return &models.UserInfo{
		User:           user,
		TotalQuestions: totalQuestions,
		TotalAnswers:   totalAnswers,
	}, nil
}

// GetUserQuestions returns one page of the user's authored questions,
// most viewed and most voted first.
func (m *MongoDB) GetUserQuestions(ctx context.Context, externalID string, page, pageSize int) ([]models.Question, bool, error) {
	doc, err := m.findUserDoc(ctx, externalID)
	if err != nil {
		return nil, false, err
	}

	skip, limit, size := pageWindow(page, pageSize)

	opts := options.Find().
		SetSort(bson.D{{Key: "views", Value: -1}, {Key: "upvotes", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := m.Questions.Find(ctx, bson.M{"author": doc.ID}, opts)
	if err != nil {
		return nil, false, utils.NewQueryFailedError("list user questions", err)
	}
	defer cursor.Close(ctx)

	var docs []QuestionDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, false, utils.NewQueryFailedError("decode user questions", err)
	}

	docs, isNext := trimPage(docs, size)

	questions, err := m.populateQuestions(ctx, docs)
	if err != nil {
		return nil, false, err
	}
	return questions, isNext, nil
}

// GetUserAnswers returns one page of the user's answers, most voted first.
func (m *MongoDB) GetUserAnswers(ctx context.Context, externalID string, page, pageSize int) ([]models.Answer, bool, error) {
	doc, err := m.findUserDoc(ctx, externalID)
	if err != nil {
		return nil, false, err
	}

	skip, limit, size := pageWindow(page, pageSize)

	opts := options.Find().
		SetSort(bson.D{{Key: "upvotes", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := m.Answers.Find(ctx, bson.M{"author": doc.ID}, opts)
	if err != nil {
		return nil, false, utils.NewQueryFailedError("list user answers", err)
	}
	defer cursor.Close(ctx)

	var docs []AnswerDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, false, utils.NewQueryFailedError("decode user answers", err)
	}

	docs, isNext := trimPage(docs, size)

	answers, err := m.populateAnswers(ctx, docs)
	if err != nil {
		return nil, false, err
	}
	return answers, isNext, nil
}

// findUserDoc resolves a user document by external ID, mapping a miss to
// NotFound.
func (m *MongoDB) findUserDoc(ctx context.Context, externalID string) (*UserDocument, error) {
	var doc UserDocument
	err := m.Users.FindOne(ctx, bson.M{"externalId": externalID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewNotFoundError("user")
	}
	if err != nil {
		return nil, utils.NewQueryFailedError("get user", err)
	}
	return &doc, nil
}

// documentToUser converts a MongoDB document to a User model.
func documentToUser(doc *UserDocument) (*models.User, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID in database: %w", err)
	}

	saved := make([]uuid.UUID, 0, len(doc.Saved))
	for _, idStr := range doc.Saved {
		questionID, err := uuid.Parse(idStr)
		if err != nil {
			continue
		}
		saved = append(saved, questionID)
	}

	return &models.User{
		ID:         id,
		ExternalID: doc.ExternalID,
		Name:       doc.Name,
		Username:   doc.Username,
		Email:      doc.Email,
		Picture:    doc.Picture,
		Bio:        doc.Bio,
		Saved:      saved,
		CreatedAt:  doc.CreatedAt,
	}, nil
}
