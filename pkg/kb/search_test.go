package kb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchORFindsAnyTermMatch(t *testing.T) {
	s := openTestStore(t)
	results, err := s.Search("postgres spreadsheet", SearchModeOR, 10)
	require.NoError(t, err)
	assert.NotEmpty(t, results)
}

func TestSearchANDRequiresAllTerms(t *testing.T) {
	s := openTestStore(t)
	results, err := s.Search("chat model", SearchModeAND, 10)
	require.NoError(t, err)
	for _, r := range results {
		assert.Equal(t, "vendor-ai.lmChatOpenAi", r.Type)
	}
}

func TestSearchFuzzyCorrectsTypo(t *testing.T) {
	s := openTestStore(t)
	results, err := s.Search("httprequset", SearchModeFuzzy, 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "vendor-base.httpRequest", results[0].Type)
}

func TestSearchEmptyQueryReturnsNil(t *testing.T) {
	s := openTestStore(t)
	results, err := s.Search("   ", SearchModeOR, 10)
	require.NoError(t, err)
	assert.Nil(t, results)
}

func TestSearchRespectsLimit(t *testing.T) {
	s := openTestStore(t)
	results, err := s.Search("node", SearchModeOR, 2)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(results), 2)
}
