package openai

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/stacks/pkg/classify"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "bare json", in: `{"a":1}`, want: `{"a":1}`},
		{name: "json fence", in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "plain fence", in: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "padded", in: "  ```json\n{\"a\":1}\n```  ", want: `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripFences(tt.in))
		})
	}
}

func TestParsePlacement(t *testing.T) {
	p, err := parsePlacement(`{"category_id": "abc12345"}`)
	require.NoError(t, err)
	assert.Equal(t, "abc12345", p.CategoryID)
	assert.Nil(t, p.NewCategory)

	p, err = parsePlacement("```json\n{\"new_category\": {\"name\": \"Tech\", \"emoji\": \"💻\"}}\n```")
	require.NoError(t, err)
	require.NotNil(t, p.NewCategory)
	assert.Equal(t, "Tech", p.NewCategory.Name)
}

func TestParsePlacementMalformed(t *testing.T) {
	for _, raw := range []string{"not json", "{}", `{"something_else": true}`} {
		_, err := parsePlacement(raw)
		require.Error(t, err, raw)
		var ce *classify.CollaboratorError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, classify.ReasonMalformed, ce.Reason)
	}
}

func TestParseOps(t *testing.T) {
	raw := "```json\n" + `[
		{"op": "merge", "source_ids": ["a1", "b2"], "target_id": "c3"},
		{"op": "move", "id": "d4", "parent_id": null},
		{"op": "move_items", "item_ids": ["item_1"], "to_id": "c3"}
	]` + "\n```"

	ops, err := parseOps(raw)
	require.NoError(t, err)
	require.Len(t, ops, 3)
	assert.Equal(t, []string{"a1", "b2"}, ops[0].SourceIDs)
	assert.Nil(t, ops[1].ParentID)
	assert.Equal(t, "c3", ops[2].ToID)
}

func TestParseRankedClampsScores(t *testing.T) {
	ranked, err := parseRanked(`[
		{"item_id": "a", "score": 9},
		{"item_id": "b", "score": 0},
		{"item_id": "", "score": 3},
		{"item_id": "c", "score": 4}
	]`)
	require.NoError(t, err)
	require.Len(t, ranked, 3)
	assert.Equal(t, 5, ranked[0].Score)
	assert.Equal(t, 1, ranked[1].Score)
	assert.Equal(t, "c", ranked[2].ItemID)
}

func TestTokenizerFallback(t *testing.T) {
	var tok *Tokenizer
	assert.Equal(t, 2, tok.Count("12345678"))
	assert.Equal(t, 0, tok.Remaining(1, "12345678"))
}
