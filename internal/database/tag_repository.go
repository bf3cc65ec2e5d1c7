// internal/database/tag_repository.go
package database

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"time"

	"med-overflow/internal/models"
	"med-overflow/internal/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TagDocument represents the MongoDB schema for a tag
type TagDocument struct {
	ID          string    `bson:"_id"`
	Name        string    `bson:"name"`
	Description string    `bson:"description"`
	QuestionIDs []string  `bson:"questions"`
	CreatedAt   time.Time `bson:"createdAt"`
}

// upsertTag finds a tag by case-insensitive exact name, creating it if it
// does not exist, and records the question in its back-reference list.
// Returns the tag's ID.
func (m *MongoDB) upsertTag(ctx context.Context, name, questionID string) (string, error) {
	filter := bson.M{"name": bson.M{
		"$regex": primitive.Regex{Pattern: "^" + regexp.QuoteMeta(name) + "$", Options: "i"},
	}}
	update := bson.M{
		"$setOnInsert": bson.M{
			"_id":       uuid.New().String(),
			"name":      name,
			"createdAt": time.Now().UTC(),
		},
		"$addToSet": bson.M{"questions": questionID},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc TagDocument
	if err := m.Tags.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return "", utils.NewQueryFailedError("upsert tag "+name, err)
	}
	return doc.ID, nil
}

// ListTags returns one page of tags matching the search string plus whether
// a further page exists. The popular mode orders by how many questions carry
// the tag, which needs an aggregation because the count lives in an array.
func (m *MongoDB) ListTags(ctx context.Context, searchQuery string, mode SortMode, page, pageSize int) ([]models.Tag, bool, error) {
	skip, limit, size := pageWindow(page, pageSize)

	var docs []tagWithCount
	if mode == SortPopular {
		pipeline := []bson.M{
			{"$match": regexFilter("name", searchQuery)},
			{"$addFields": bson.M{"questionCount": bson.M{"$size": bson.M{"$ifNull": []interface{}{"$questions", []string{}}}}}},
			{"$sort": bson.D{{Key: "questionCount", Value: -1}}},
			{"$skip": skip},
			{"$limit": limit},
		}

		cursor, err := m.Tags.Aggregate(ctx, pipeline)
		if err != nil {
			return nil, false, utils.NewQueryFailedError("list popular tags", err)
		}
		defer cursor.Close(ctx)

		if err := cursor.All(ctx, &docs); err != nil {
			return nil, false, utils.NewQueryFailedError("decode popular tags", err)
		}
	} else {
		opts := options.Find().SetSkip(skip).SetLimit(limit)
		if sortSpec := sortForTags(mode); sortSpec != nil {
			opts.SetSort(sortSpec)
		}

		cursor, err := m.Tags.Find(ctx, regexFilter("name", searchQuery), opts)
		if err != nil {
			return nil, false, utils.NewQueryFailedError("list tags", err)
		}
		defer cursor.Close(ctx)

		if err := cursor.All(ctx, &docs); err != nil {
			return nil, false, utils.NewQueryFailedError("decode tags", err)
		}
	}

	docs, isNext := trimPage(docs, size)

	tags := make([]models.Tag, 0, len(docs))
	for _, doc := range docs {
		tag, err := doc.toModel()
		if err != nil {
			m.logger.Warn("skipping malformed tag document")
			continue
		}
		tags = append(tags, *tag)
	}

	return tags, isNext, nil
}

// GetQuestionsByTag returns the tag's title and one page of its questions,
// optionally narrowed by a title search, newest first. Fails with NotFound
// when the tag does not exist; an empty page is not the same thing.
func (m *MongoDB) GetQuestionsByTag(ctx context.Context, tagID uuid.UUID, searchQuery string, page, pageSize int) (string, []models.Question, bool, error) {
	var tagDoc TagDocument
	err := m.Tags.FindOne(ctx, bson.M{"_id": tagID.String()}).Decode(&tagDoc)
	if err == mongo.ErrNoDocuments {
		return "", nil, false, utils.NewNotFoundError("tag")
	}
	if err != nil {
		return "", nil, false, utils.NewQueryFailedError("get tag", err)
	}

	skip, limit, size := pageWindow(page, pageSize)

	filter := withFilter(bson.M{"_id": bson.M{"$in": tagDoc.QuestionIDs}}, "title", searchQuery)
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := m.Questions.Find(ctx, filter, opts)
	if err != nil {
		return "", nil, false, utils.NewQueryFailedError("list tag questions", err)
	}
	defer cursor.Close(ctx)

	var docs []QuestionDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return "", nil, false, utils.NewQueryFailedError("decode tag questions", err)
	}

	docs, isNext := trimPage(docs, size)

	questions, err := m.populateQuestions(ctx, docs)
	if err != nil {
		return "", nil, false, err
	}

	return tagDoc.Name, questions, isNext, nil
}

// PopularTags returns the five tags attached to the most questions.
func (m *MongoDB) PopularTags(ctx context.Context) ([]models.Tag, error) {
	pipeline := []bson.M{
		{"$addFields": bson.M{"questionCount": bson.M{"$size": bson.M{"$ifNull": []interface{}{"$questions", []string{}}}}}},
		{"$sort": bson.D{{Key: "questionCount", Value: -1}}},
		{"$limit": 5},
	}

	cursor, err := m.Tags.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, utils.NewQueryFailedError("get popular tags", err)
	}
	defer cursor.Close(ctx)

	var docs []tagWithCount
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, utils.NewQueryFailedError("decode popular tags", err)
	}

	tags := make([]models.Tag, 0, len(docs))
	for _, doc := range docs {
		tag, err := doc.toModel()
		if err != nil {
			continue
		}
		tags = append(tags, *tag)
	}
	return tags, nil
}

// TopTagsForUser returns the tags that occur most often on the questions the
// user has viewed, most frequent first, capped at three. Fails with NotFound
// when the user does not exist.
func (m *MongoDB) TopTagsForUser(ctx context.Context, externalID string) ([]models.Tag, error) {
	user, err := m.findUserDoc(ctx, externalID)
	if err != nil {
		return nil, err
	}

	cursor, err := m.Interactions.Find(ctx,
		bson.M{"user": user.ID},
		options.Find().SetProjection(bson.M{"question": 1}),
	)
	if err != nil {
		return nil, utils.NewQueryFailedError("list user interactions", err)
	}
	defer cursor.Close(ctx)

	questionIDs := make([]string, 0)
	for cursor.Next(ctx) {
		var doc struct {
			QuestionID string `bson:"question"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, utils.NewQueryFailedError("decode user interaction", err)
		}
		questionIDs = append(questionIDs, doc.QuestionID)
	}
	if err := cursor.Err(); err != nil {
		return nil, utils.NewQueryFailedError("iterate user interactions", err)
	}

	if len(questionIDs) == 0 {
		return []models.Tag{}, nil
	}

	qCursor, err := m.Questions.Find(ctx,
		bson.M{"_id": bson.M{"$in": questionIDs}},
		options.Find().SetProjection(bson.M{"tags": 1}),
	)
	if err != nil {
		return nil, utils.NewQueryFailedError("list interacted questions", err)
	}
	defer qCursor.Close(ctx)

	counts := make(map[string]int)
	for qCursor.Next(ctx) {
		var doc struct {
			TagIDs []string `bson:"tags"`
		}
		if err := qCursor.Decode(&doc); err != nil {
			return nil, utils.NewQueryFailedError("decode interacted question", err)
		}
		for _, tagID := range doc.TagIDs {
			counts[tagID]++
		}
	}
	if err := qCursor.Err(); err != nil {
		return nil, utils.NewQueryFailedError("iterate interacted questions", err)
	}

	tagIDs := make([]string, 0, len(counts))
	for tagID := range counts {
		tagIDs = append(tagIDs, tagID)
	}
	sort.Slice(tagIDs, func(i, j int) bool { return counts[tagIDs[i]] > counts[tagIDs[j]] })
	if len(tagIDs) > 3 {
		tagIDs = tagIDs[:3]
	}

	refs, err := m.tagRefs(ctx, tagIDs)
	if err != nil {
		return nil, err
	}

	tags := make([]models.Tag, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		if ref, ok := refs[tagID]; ok {
			tags = append(tags, models.Tag{ID: ref.ID, Name: ref.Name, QuestionCount: counts[tagID]})
		}
	}
	return tags, nil
}

// tagWithCount decodes both plain tag documents and aggregation output that
// carries a computed questionCount field.
type tagWithCount struct {
	TagDocument   `bson:",inline"`
	QuestionCount *int `bson:"questionCount"`
}

func (doc *tagWithCount) toModel() (*models.Tag, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid tag ID: %w", err)
	}

	count := len(doc.QuestionIDs)
	if doc.QuestionCount != nil {
		count = *doc.QuestionCount
	}

	return &models.Tag{
		ID:            id,
		Name:          doc.Name,
		Description:   doc.Description,
		QuestionCount: count,
		CreatedAt:     doc.CreatedAt,
	}, nil
}
