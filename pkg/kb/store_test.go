package kb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenSeedsEmptyStore(t *testing.T) {
	s := openTestStore(t)
	d, err := s.Lookup("vendor-base.webhook")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "Webhook", d.DisplayName)
}

func TestLookupUnknownTypeReturnsNil(t *testing.T) {
	s := openTestStore(t)
	d, err := s.Lookup("vendor-base.doesNotExist")
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestLookupDecodesNestedFields(t *testing.T) {
	s := openTestStore(t)
	d, err := s.Lookup("vendor-base.httpRequest")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.NotEmpty(t, d.Properties)
	assert.NotEmpty(t, d.BreakingChanges)
	assert.Contains(t, d.Credentials, "httpHeaderAuth")
}

func TestExpandAliasResolvesShortForm(t *testing.T) {
	s := openTestStore(t)
	full, ok := s.ExpandAlias("webhook")
	require.True(t, ok)
	assert.Equal(t, "vendor-base.webhook", full)
}

func TestExpandAliasResolvesFullTypePassthrough(t *testing.T) {
	s := openTestStore(t)
	full, ok := s.ExpandAlias("vendor-base.set")
	require.True(t, ok)
	assert.Equal(t, "vendor-base.set", full)
}

func TestExpandAliasUnknownReturnsFalse(t *testing.T) {
	s := openTestStore(t)
	_, ok := s.ExpandAlias("totally-unknown-thing")
	assert.False(t, ok)
}
