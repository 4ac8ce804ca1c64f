package kb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevenshteinIdentical(t *testing.T) {
	assert.Equal(t, 0, levenshtein("webhook", "webhook"))
}

func TestLevenshteinSingleEdit(t *testing.T) {
	assert.Equal(t, 1, levenshtein("webhook", "webhok"))
}

func TestLevenshteinEmptyStrings(t *testing.T) {
	assert.Equal(t, 3, levenshtein("", "abc"))
	assert.Equal(t, 3, levenshtein("abc", ""))
}

func TestSimilarTypesKnownAliasShortcut(t *testing.T) {
	s := openTestStore(t)
	results, err := s.similarTypes("mongo", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "vendor-db.mongoDb", results[0].Type)
	assert.Equal(t, 1.0, results[0].Score)
}

func TestSimilarTypesScoresAboveFloor(t *testing.T) {
	s := openTestStore(t)
	results, err := s.similarTypes("webhok", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.GreaterOrEqual(t, r.Score, SuggestionFloor)
	}
	assert.Equal(t, "vendor-base.webhook", results[0].Type)
}

func TestSimilarTypesNoiseReturnsEmpty(t *testing.T) {
	s := openTestStore(t)
	results, err := s.similarTypes("zzzzzzzzzzzzqqqqqq", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}
