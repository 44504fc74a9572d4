package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/stacks/pkg/classify"
)

var testItems = []classify.SearchItem{
	{ID: "item_1", Title: "The Rise of LLMs", Show: "Tech Weekly"},
	{ID: "item_2", Title: "Sleep Science", Show: "Health Hour"},
	{ID: "item_3", Title: "Scaling Startups", Show: "Tech Weekly"},
}

func TestSubstringMatchSkipsRanker(t *testing.T) {
	ranker := &classify.ScriptedRanker{}
	r := NewRouter(ranker, time.Second, nil)

	results, method, err := r.Search(context.Background(), "tech", testItems)
	require.NoError(t, err)
	assert.Equal(t, MethodSubstring, method)
	require.Len(t, results, 2)
	assert.Equal(t, "item_1", results[0].ItemID)
	assert.Equal(t, "item_3", results[1].ItemID)
	assert.Empty(t, ranker.Queries) // substring pass answered
}

func TestSubstringMatchesShowName(t *testing.T) {
	r := NewRouter(nil, time.Second, nil)
	results, _, err := r.Search(context.Background(), "HEALTH", testItems)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "item_2", results[0].ItemID)
}

func TestRankedFallback(t *testing.T) {
	ranker := &classify.ScriptedRanker{Ranked: []classify.RankedItem{
		{ItemID: "item_2", Score: 3},
		{ItemID: "item_1", Score: 5},
		{ItemID: "item_bogus", Score: 4},
	}}
	r := NewRouter(ranker, time.Second, nil)

	results, method, err := r.Search(context.Background(), "wellbeing", testItems)
	require.NoError(t, err)
	assert.Equal(t, MethodRanked, method)
	assert.Equal(t, []string{"wellbeing"}, ranker.Queries)

	// Highest score first; invented IDs are dropped.
	require.Len(t, results, 2)
	assert.Equal(t, "item_1", results[0].ItemID)
	assert.Equal(t, 5, results[0].Score)
	assert.Equal(t, "item_2", results[1].ItemID)
}

func TestRankedStableOnEqualScores(t *testing.T) {
	ranker := &classify.ScriptedRanker{Ranked: []classify.RankedItem{
		{ItemID: "item_3", Score: 3},
		{ItemID: "item_1", Score: 3},
	}}
	r := NewRouter(ranker, time.Second, nil)

	results, _, err := r.Search(context.Background(), "zzz", testItems)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "item_3", results[0].ItemID)
	assert.Equal(t, "item_1", results[1].ItemID)
}

func TestRankerErrorIsDistinctFromNoResults(t *testing.T) {
	ranker := &classify.ScriptedRanker{Err: classify.Transportf("down")}
	r := NewRouter(ranker, time.Second, nil)

	results, _, err := r.Search(context.Background(), "zzz", testItems)
	assert.Nil(t, results)
	assert.ErrorIs(t, err, ErrRankerUnavailable)

	// An empty ranking is a real answer, not an error.
	okRanker := &classify.ScriptedRanker{}
	r = NewRouter(okRanker, time.Second, nil)
	results, _, err = r.Search(context.Background(), "zzz", testItems)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestNilRanker(t *testing.T) {
	r := NewRouter(nil, time.Second, nil)
	_, _, err := r.Search(context.Background(), "zzz", testItems)
	assert.ErrorIs(t, err, ErrRankerUnavailable)
}

func TestEmptyQuery(t *testing.T) {
	ranker := &classify.ScriptedRanker{}
	r := NewRouter(ranker, time.Second, nil)
	results, _, err := r.Search(context.Background(), "   ", testItems)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, ranker.Queries)
}
