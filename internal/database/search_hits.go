// internal/database/search_hits.go
//
// Per-collection lookups backing the cross-collection search. Each returns
// lightweight hits: the designated text field plus the identifier the
// search result should navigate to.
package database

import (
	"context"

	"med-overflow/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SearchHit is one raw match from a single collection.
type SearchHit struct {
	Title string
	ID    string
}

// SearchQuestions matches question titles; the hit ID is the question's own.
func (m *MongoDB) SearchQuestions(ctx context.Context, query string, limit int64) ([]SearchHit, error) {
	return m.searchHits(ctx, m.Questions, "title", query, limit, "title", "_id")
}

// SearchTags matches tag names; the hit ID is the tag's own.
func (m *MongoDB) SearchTags(ctx context.Context, query string, limit int64) ([]SearchHit, error) {
	return m.searchHits(ctx, m.Tags, "name", query, limit, "name", "_id")
}

// SearchUsers matches user names; the hit ID is the user's external identity,
// which is what profile routes key on.
func (m *MongoDB) SearchUsers(ctx context.Context, query string, limit int64) ([]SearchHit, error) {
	return m.searchHits(ctx, m.Users, "name", query, limit, "name", "externalId")
}

// SearchAnswers matches answer content; the hit ID is the parent question,
// since answers have no page of their own.
func (m *MongoDB) SearchAnswers(ctx context.Context, query string, limit int64) ([]SearchHit, error) {
	return m.searchHits(ctx, m.Answers, "content", query, limit, "content", "question")
}

func (m *MongoDB) searchHits(ctx context.Context, coll *mongo.Collection, searchField, query string, limit int64, titleField, idField string) ([]SearchHit, error) {
	opts := options.Find().
		SetLimit(limit).
		SetProjection(bson.M{titleField: 1, idField: 1})

	cursor, err := coll.Find(ctx, regexFilter(searchField, query), opts)
	if err != nil {
		return nil, utils.NewQueryFailedError("search "+coll.Name(), err)
	}
	defer cursor.Close(ctx)

	var hits []SearchHit
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, utils.NewQueryFailedError("decode "+coll.Name()+" search hit", err)
		}
		hit := SearchHit{}
		if title, ok := doc[titleField].(string); ok {
			hit.Title = title
		}
		if id, ok := doc[idField].(string); ok {
			hit.ID = id
		}
		hits = append(hits, hit)
	}
	if err := cursor.Err(); err != nil {
		return nil, utils.NewQueryFailedError("iterate "+coll.Name()+" search hits", err)
	}

	return hits, nil
}
