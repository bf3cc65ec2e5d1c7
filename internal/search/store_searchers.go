package search

import (
	"context"

	"med-overflow/internal/database"
)

// hitSource is the slice of the store a strategy needs: one per-collection
// lookup returning raw hits.
type hitSource func(ctx context.Context, query string, limit int64) ([]database.SearchHit, error)

// storeSearcher adapts a per-collection lookup into a Searcher, attaching
// the type tag and deriving the display title.
type storeSearcher struct {
	entityType string
	source     hitSource
	// title derives the display title from the matched hit and the query.
	title func(hit database.SearchHit, query string) string
}

func (s *storeSearcher) Type() string { return s.entityType }

func (s *storeSearcher) Search(ctx context.Context, query string, limit int64) ([]Result, error) {
	hits, err := s.source(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		results = append(results, Result{
			Title: s.title(hit, query),
			Type:  s.entityType,
			ID:    hit.ID,
		})
	}
	return results, nil
}

func fieldTitle(hit database.SearchHit, _ string) string { return hit.Title }

func answerTitle(_ database.SearchHit, query string) string { return AnswerTitle(query) }

// StoreSearchers builds the four per-type strategies over the document
// store, in the fixed order an unrestricted search reports them: question,
// tag, user, answer.
func StoreSearchers(db *database.MongoDB) []Searcher {
	return []Searcher{
		&storeSearcher{entityType: TypeQuestion, source: db.SearchQuestions, title: fieldTitle},
		&storeSearcher{entityType: TypeTag, source: db.SearchTags, title: fieldTitle},
		&storeSearcher{entityType: TypeUser, source: db.SearchUsers, title: fieldTitle},
		&storeSearcher{entityType: TypeAnswer, source: db.SearchAnswers, title: answerTitle},
	}
}
