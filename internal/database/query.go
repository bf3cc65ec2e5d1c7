// internal/database/query.go
//
// Query-engine primitives shared by the entity repositories: text filters,
// the named sort modes, and the over-fetch-by-one pagination window.
package database

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SortMode names one of the closed set of listing orders.
type SortMode string

const (
	SortRecent    SortMode = "recent"
	SortOld       SortMode = "old"
	SortName      SortMode = "name"
	SortMostVoted SortMode = "most_voted"
	SortPopular   SortMode = "popular"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// regexFilter builds a case-insensitive substring predicate against field.
// An empty query matches all records.
func regexFilter(field, query string) bson.M {
	if query == "" {
		return bson.M{}
	}
	return bson.M{field: bson.M{
		"$regex": primitive.Regex{Pattern: query, Options: "i"},
	}}
}

// withFilter merges a regex predicate into an existing filter.
func withFilter(filter bson.M, field, query string) bson.M {
	if query == "" {
		return filter
	}
	filter[field] = bson.M{"$regex": primitive.Regex{Pattern: query, Options: "i"}}
	return filter
}

// sortForQuestions maps a sort mode to a question sort spec. Unknown modes
// fall through to the store's default order (nil).
func sortForQuestions(mode SortMode) bson.D {
	switch mode {
	case SortRecent:
		return bson.D{{Key: "createdAt", Value: -1}}
	case SortOld:
		return bson.D{{Key: "createdAt", Value: 1}}
	case SortName:
		return bson.D{{Key: "title", Value: 1}}
	case SortMostVoted:
		return bson.D{{Key: "upvotes", Value: -1}}
	case SortPopular:
		return bson.D{{Key: "views", Value: -1}}
	default:
		return nil
	}
}

// sortForTags maps a sort mode to a tag sort spec. The popular mode is
// handled separately because it orders by the size of the questions array.
func sortForTags(mode SortMode) bson.D {
	switch mode {
	case SortRecent:
		return bson.D{{Key: "createdAt", Value: -1}}
	case SortOld:
		return bson.D{{Key: "createdAt", Value: 1}}
	case SortName:
		return bson.D{{Key: "name", Value: 1}}
	default:
		return nil
	}
}

// sortForUsers maps a sort mode to a user sort spec.
func sortForUsers(mode SortMode) bson.D {
	switch mode {
	case SortRecent:
		return bson.D{{Key: "createdAt", Value: -1}}
	case SortOld:
		return bson.D{{Key: "createdAt", Value: 1}}
	case SortName:
		return bson.D{{Key: "name", Value: 1}}
	default:
		return nil
	}
}

// pageWindow converts a 1-based page into skip/limit values. The limit is one
// past the page size so the caller can tell whether a further page exists.
// Out-of-range inputs are clamped rather than rejected.
func pageWindow(page, pageSize int) (skip int64, limit int64, size int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return int64(page-1) * int64(pageSize), int64(pageSize) + 1, pageSize
}

// trimPage drops the over-fetched record and reports whether it was there.
// isNext is derived here and never stored.
func trimPage[T any](docs []T, pageSize int) ([]T, bool) {
	if len(docs) > pageSize {
		return docs[:pageSize], true
	}
	return docs, false
}
