// internal/database/question_repository.go
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

// QuestionDocument represents the MongoDB schema for a question
type QuestionDocument struct {
	ID          string    `bson:"_id"`
	Title       string    `bson:"title"`
	Content     string    `bson:"content"`
	AuthorID    string    `bson:"author"`
	TagIDs      []string  `bson:"tags"`
	Views       int64     `bson:"views"`
	Upvotes     int       `bson:"upvotes"`
	AnswerCount int       `bson:"answerCount"`
	CreatedAt   time.Time `bson:"createdAt"`
}

// CreateQuestionParams carries the fields needed to post a question.
type CreateQuestionParams struct {
	Title    string
	Content  string
	AuthorID uuid.UUID
	Tags     []string // tag names; missing tags are created implicitly
}

// CreateQuestion inserts a question and attaches its tags, creating tags
// that do not exist yet and adding the question to each tag's back-reference
// list.
func (m *MongoDB) CreateQuestion(ctx context.Context, params CreateQuestionParams) (*models.Question, error) {
	doc := QuestionDocument{
		ID:        uuid.New().String(),
		Title:     params.Title,
		Content:   params.Content,
		AuthorID:  params.AuthorID.String(),
		TagIDs:    make([]string, 0, len(params.Tags)),
		CreatedAt: time.Now().UTC(),
	}

	if _, err := m.Questions.InsertOne(ctx, doc); err != nil {
		return nil, utils.NewQueryFailedError("create question", err)
	}

	for _, name := range params.Tags {
		tagID, err := m.upsertTag(ctx, name, doc.ID)
		if err != nil {
			return nil, err
		}
		doc.TagIDs = append(doc.TagIDs, tagID)
	}

	_, err := m.Questions.UpdateOne(ctx,
		bson.M{"_id": doc.ID},
		bson.M{"$set": bson.M{"tags": doc.TagIDs}},
	)
	if err != nil {
		return nil, utils.NewQueryFailedError("attach question tags", err)
	}

	questions, err := m.populateQuestions(ctx, []QuestionDocument{doc})
	if err != nil {
		return nil, err
	}
	return &questions[0], nil
}

// GetQuestion retrieves a single question by ID, populated for display.
func (m *MongoDB) GetQuestion(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	var doc QuestionDocument
	err := m.Questions.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewNotFoundError("question")
	}
	if err != nil {
		return nil, utils.NewQueryFailedError("get question", err)
	}

	questions, err := m.populateQuestions(ctx, []QuestionDocument{doc})
	if err != nil {
		return nil, err
	}
	return &questions[0], nil
}

// ListQuestions returns one page of questions matching the search string,
// ordered by the given mode, plus whether a further page exists.
func (m *MongoDB) ListQuestions(ctx context.Context, searchQuery string, mode SortMode, page, pageSize int) ([]models.Question, bool, error) {
	skip, limit, size := pageWindow(page, pageSize)

	opts := options.Find().SetSkip(skip).SetLimit(limit)
	if sort := sortForQuestions(mode); sort != nil {
		opts.SetSort(sort)
	}

	cursor, err := m.Questions.Find(ctx, regexFilter("title", searchQuery), opts)
	if err != nil {
		return nil, false, utils.NewQueryFailedError("list questions", err)
	}
	defer cursor.Close(ctx)

	var docs []QuestionDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, false, utils.NewQueryFailedError("decode questions", err)
	}

	docs, isNext := trimPage(docs, size)

	questions, err := m.populateQuestions(ctx, docs)
	if err != nil {
		return nil, false, err
	}
	return questions, isNext, nil
}

// DeleteQuestion removes a question and sweeps its dependents: answers,
// interactions, tag back-references and saved-list entries. The steps run
// sequentially without a transaction; a failure part-way leaves the earlier
// steps applied.
func (m *MongoDB) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	idStr := id.String()

	result, err := m.Questions.DeleteOne(ctx, bson.M{"_id": idStr})
	if err != nil {
		return utils.NewQueryFailedError("delete question", err)
	}
	if result.DeletedCount == 0 {
		return utils.NewNotFoundError("question")
	}

	if _, err := m.Answers.DeleteMany(ctx, bson.M{"question": idStr}); err != nil {
		return utils.NewQueryFailedError("delete question answers", err)
	}
	if _, err := m.Interactions.DeleteMany(ctx, bson.M{"question": idStr}); err != nil {
		return utils.NewQueryFailedError("delete question interactions", err)
	}
	if _, err := m.Tags.UpdateMany(ctx, bson.M{}, bson.M{"$pull": bson.M{"questions": idStr}}); err != nil {
		return utils.NewQueryFailedError("detach question from tags", err)
	}
	if _, err := m.Users.UpdateMany(ctx, bson.M{}, bson.M{"$pull": bson.M{"saved": idStr}}); err != nil {
		return utils.NewQueryFailedError("detach question from saved lists", err)
	}

	return nil
}

// IncrementQuestionViews bumps the view counter by one.
func (m *MongoDB) IncrementQuestionViews(ctx context.Context, id uuid.UUID) error {
	result, err := m.Questions.UpdateOne(ctx,
		bson.M{"_id": id.String()},
		bson.M{"$inc": bson.M{"views": 1}},
	)
	if err != nil {
		return utils.NewQueryFailedError("increment question views", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewNotFoundError("question")
	}
	return nil
}

// populateQuestions resolves author and tag references for a batch of
// question documents with the fixed minimal projections: tags as {id, name},
// authors as {id, externalId, name, picture}. References that no longer
// resolve are dropped from the result, not repaired.
func (m *MongoDB) populateQuestions(ctx context.Context, docs []QuestionDocument) ([]models.Question, error) {
	authorIDs := make([]string, 0, len(docs))
	tagIDs := make([]string, 0)
	for _, doc := range docs {
		authorIDs = append(authorIDs, doc.AuthorID)
		tagIDs = append(tagIDs, doc.TagIDs...)
	}

	authors, err := m.authorRefs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	tags, err := m.tagRefs(ctx, tagIDs)
	if err != nil {
		return nil, err
	}

	questions := make([]models.Question, 0, len(docs))
	for _, doc := range docs {
		question, err := documentToQuestion(&doc)
		if err != nil {
			m.logger.Warn("skipping malformed question document", zap.String("id", doc.ID), zap.Error(err))
			continue
		}

		if author, ok := authors[doc.AuthorID]; ok {
			question.Author = &author
		}
		for _, tagID := range doc.TagIDs {
			if tag, ok := tags[tagID]; ok {
				question.Tags = append(question.Tags, tag)
			}
		}

		questions = append(questions, *question)
	}

	return questions, nil
}

// authorRefs fetches the minimal author projection for a set of user IDs.
func (m *MongoDB) authorRefs(ctx context.Context, ids []string) (map[string]models.AuthorRef, error) {
	refs := make(map[string]models.AuthorRef)
	if len(ids) == 0 {
		return refs, nil
	}

	cursor, err := m.Users.Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"_id": 1, "externalId": 1, "name": 1, "picture": 1}),
	)
	if err != nil {
		return nil, utils.NewQueryFailedError("resolve question authors", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc struct {
			ID         string `bson:"_id"`
			ExternalID string `bson:"externalId"`
			Name       string `bson:"name"`
			Picture    string `bson:"picture"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, utils.NewQueryFailedError("decode question author", err)
		}
		id, err := uuid.Parse(doc.ID)
		if err != nil {
			m.logger.Warn("skipping author with malformed ID", zap.String("id", doc.ID))
			continue
		}
		refs[doc.ID] = models.AuthorRef{
			ID:         id,
			ExternalID: doc.ExternalID,
			Name:       doc.Name,
			Picture:    doc.Picture,
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, utils.NewQueryFailedError("iterate question authors", err)
	}

	return refs, nil
}

// tagRefs fetches the minimal tag projection for a set of tag IDs.
func (m *MongoDB) tagRefs(ctx context.Context, ids []string) (map[string]models.TagRef, error) {
	refs := make(map[string]models.TagRef)
	if len(ids) == 0 {
		return refs, nil
	}

	cursor, err := m.Tags.Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"_id": 1, "name": 1}),
	)
	if err != nil {
		return nil, utils.NewQueryFailedError("resolve question tags", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc struct {
			ID   string `bson:"_id"`
			Name string `bson:"name"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, utils.NewQueryFailedError("decode question tag", err)
		}
		id, err := uuid.Parse(doc.ID)
		if err != nil {
			m.logger.Warn("skipping tag with malformed ID", zap.String("id", doc.ID))
			continue
		}
		refs[doc.ID] = models.TagRef{ID: id, Name: doc.Name}
	}
	if err := cursor.Err(); err != nil {
		return nil, utils.NewQueryFailedError("iterate question tags", err)
	}

	return refs, nil
}

// documentToQuestion converts a MongoDB document to a Question model without
// populating its references.
func documentToQuestion(doc *QuestionDocument) (*models.Question, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid question ID: %w", err)
	}

	return &models.Question{
		ID:          id,
		Title:       doc.Title,
		Content:     doc.Content,
		Views:       doc.Views,
		Upvotes:     doc.Upvotes,
		AnswerCount: doc.AnswerCount,
		CreatedAt:   doc.CreatedAt,
	}, nil
}
