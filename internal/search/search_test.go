package search

import (
	"context"
	"fmt"
	"testing"

	"med-overflow/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeSearcher records calls and serves canned results.
type fakeSearcher struct {
	entityType string
	total      int
	calls      int
	lastLimit  int64
}

func (f *fakeSearcher) Type() string { return f.entityType }

func (f *fakeSearcher) Search(_ context.Context, query string, limit int64) ([]Result, error) {
	f.calls++
	f.lastLimit = limit

	n := f.total
	if int64(n) > limit {
		n = int(limit)
	}
	results := make([]Result, 0, n)
	for i := 0; i < n; i++ {
		results = append(results, Result{
			Title: fmt.Sprintf("%s match %d for %s", f.entityType, i, query),
			Type:  f.entityType,
			ID:    fmt.Sprintf("%s-%d", f.entityType, i),
		})
	}
	return results, nil
}

func newFakeEngine(totals map[string]int) (*Engine, map[string]*fakeSearcher) {
	fakes := map[string]*fakeSearcher{}
	order := []string{TypeQuestion, TypeTag, TypeUser, TypeAnswer}
	searchers := make([]Searcher, 0, len(order))
	for _, typ := range order {
		f := &fakeSearcher{entityType: typ, total: totals[typ]}
		fakes[typ] = f
		searchers = append(searchers, f)
	}
	return NewEngine(zap.NewNop(), searchers...), fakes
}

func TestUnrestrictedSearchCapsAndOrder(t *testing.T) {
	engine, _ := newFakeEngine(map[string]int{
		TypeQuestion: 5,
		TypeTag:      5,
		TypeUser:     5,
		TypeAnswer:   5,
	})

	results, err := engine.Search(context.Background(), "flu", "")
	require.NoError(t, err)

	// Never more than 2 per type, concatenated question, tag, user, answer.
	require.Len(t, results, 8)
	wantOrder := []string{
		TypeQuestion, TypeQuestion,
		TypeTag, TypeTag,
		TypeUser, TypeUser,
		TypeAnswer, TypeAnswer,
	}
	for i, result := range results {
		assert.Equal(t, wantOrder[i], result.Type, "result %d out of order", i)
	}
}

func TestUnrestrictedSearchSkipsEmptyTypes(t *testing.T) {
	engine, _ := newFakeEngine(map[string]int{
		TypeQuestion: 1,
		TypeAnswer:   2,
	})

	results, err := engine.Search(context.Background(), "flu", "")
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, TypeQuestion, results[0].Type)
	assert.Equal(t, TypeAnswer, results[1].Type)
	assert.Equal(t, TypeAnswer, results[2].Type)
}

func TestUnrestrictedSearchNoMatchesIsEmptyNotError(t *testing.T) {
	engine, _ := newFakeEngine(map[string]int{})

	results, err := engine.Search(context.Background(), "zzz-no-such-thing", "")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRestrictedSearchUsesLargerCap(t *testing.T) {
	engine, fakes := newFakeEngine(map[string]int{TypeTag: 20})

	results, err := engine.Search(context.Background(), "flu", "tag")
	require.NoError(t, err)

	assert.Len(t, results, 8)
	assert.Equal(t, int64(8), fakes[TypeTag].lastLimit)

	// Only the requested type's strategy runs.
	assert.Equal(t, 1, fakes[TypeTag].calls)
	assert.Equal(t, 0, fakes[TypeQuestion].calls)
	assert.Equal(t, 0, fakes[TypeUser].calls)
	assert.Equal(t, 0, fakes[TypeAnswer].calls)
}

func TestRestrictedSearchNormalizesType(t *testing.T) {
	engine, fakes := newFakeEngine(map[string]int{TypeUser: 1})

	results, err := engine.Search(context.Background(), "pat", "  User ")
	require.NoError(t, err)

	assert.Len(t, results, 1)
	assert.Equal(t, 1, fakes[TypeUser].calls)
}

func TestInvalidSearchTypeFailsBeforeAnyQuery(t *testing.T) {
	engine, fakes := newFakeEngine(map[string]int{
		TypeQuestion: 5,
		TypeTag:      5,
	})

	results, err := engine.Search(context.Background(), "flu", "subreddit")
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrInvalidSearchType))
	assert.Nil(t, results)

	for typ, fake := range fakes {
		assert.Equal(t, 0, fake.calls, "strategy %s must not execute", typ)
	}
}

func TestAnswerTitleReferencesQuery(t *testing.T) {
	assert.Equal(t, "Answers containing chest pain", AnswerTitle("chest pain"))
}
