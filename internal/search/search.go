// Package search fans a single free-text query out across the entity
// collections and normalizes the heterogeneous matches into one result
// shape. It is a best-effort preview search: no ranking, no stemming, just
// case-insensitive substring matches per collection.
package search

import (
	"context"
	"fmt"
	"strings"

	"med-overflow/internal/utils"

	"go.uber.org/zap"
)

// Result types, in the order an unrestricted search reports them.
const (
	TypeQuestion = "question"
	TypeTag      = "tag"
	TypeUser     = "user"
	TypeAnswer   = "answer"
)

const (
	// globalCap bounds each type's contribution to an unrestricted search,
	// keeping the "everything" preview small and stable.
	globalCap = 2
	// scopedCap bounds a search restricted to a single type.
	scopedCap = 8
)

// Result is one normalized search result.
type Result struct {
	Title string `json:"title"`
	Type  string `json:"type"`
	ID    string `json:"id"`
}

// Searcher is one per-type search strategy.
type Searcher interface {
	// Type names the entity type this strategy covers.
	Type() string
	// Search returns up to limit normalized results for the query.
	Search(ctx context.Context, query string, limit int64) ([]Result, error)
}

// Engine iterates a fixed, ordered list of per-type strategies.
type Engine struct {
	searchers []Searcher
	logger    *zap.Logger
}

// NewEngine creates a search engine over the given strategies. The order of
// the slice is the order an unrestricted search concatenates results in.
func NewEngine(logger *zap.Logger, searchers ...Searcher) *Engine {
	return &Engine{searchers: searchers, logger: logger}
}

// Search runs the query. With an empty searchType every strategy contributes
// up to two results, concatenated in strategy order. With a searchType only
// that strategy runs, with the larger cap; an unrecognized type fails before
// any query executes.
func (e *Engine) Search(ctx context.Context, query, searchType string) ([]Result, error) {
	searchType = strings.ToLower(strings.TrimSpace(searchType))

	if searchType == "" {
		results := make([]Result, 0, globalCap*len(e.searchers))
		for _, s := range e.searchers {
			hits, err := s.Search(ctx, query, globalCap)
			if err != nil {
				e.logger.Error("global search failed", zap.String("type", s.Type()), zap.Error(err))
				return nil, err
			}
			results = append(results, hits...)
		}
		return results, nil
	}

	for _, s := range e.searchers {
		if s.Type() == searchType {
			hits, err := s.Search(ctx, query, scopedCap)
			if err != nil {
				e.logger.Error("scoped search failed", zap.String("type", searchType), zap.Error(err))
				return nil, err
			}
			return hits, nil
		}
	}

	return nil, utils.NewInvalidSearchTypeError(searchType)
}

// AnswerTitle synthesizes the display title for an answer result. Answer
// content is too long to preview, so the title references the query instead.
func AnswerTitle(query string) string {
	return fmt.Sprintf("Answers containing %s", query)
}
