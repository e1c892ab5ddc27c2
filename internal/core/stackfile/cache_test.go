package stackfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Parse Cache Tests
// =============================================================================

func TestCache_HitOnIdenticalContent(t *testing.T) {
	c := NewCache()

	first, err := c.Parse("Stackfile", minimalStackfile)
	require.NoError(t, err)
	second, err := c.Parse("Stackfile", minimalStackfile)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	hits, misses := c.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
	assert.Equal(t, 1, c.Len())
}

func TestCache_HandsOutIndependentClones(t *testing.T) {
	c := NewCache()

	first, err := c.Parse("Stackfile", minimalStackfile)
	require.NoError(t, err)

	// Simulate analyzer mutation of the first result.
	first.Services[0].Name = "mutated"
	first.Services[0].Image = "mutated"

	second, err := c.Parse("Stackfile", minimalStackfile)
	require.NoError(t, err)

	assert.Equal(t, "web", second.Services[0].Name)
	assert.Equal(t, "nginx:1.25", second.Services[0].Image)
}

func TestCache_DifferentContentParsesSeparately(t *testing.T) {
	c := NewCache()

	_, err := c.Parse("a", minimalStackfile)
	require.NoError(t, err)
	_, err = c.Parse("b", fullStackfile)
	require.NoError(t, err)

	hits, misses := c.Stats()
	assert.Equal(t, 0, hits)
	assert.Equal(t, 2, misses)
	assert.Equal(t, 2, c.Len())
}

func TestCache_FailedParseNotCached(t *testing.T) {
	c := NewCache()

	_, err := c.Parse("bad", "DEPLOYMENT-ID only\n")
	require.Error(t, err)

	assert.Equal(t, 0, c.Len())
	_, misses := c.Stats()
	assert.Equal(t, 0, misses)
}
