package embedding

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbed_Deterministic(t *testing.T) {
	e := NewEmbedder(0)

	first := e.Embed("Life expectancy at birth increased to 73.3 years")
	second := e.Embed("Life expectancy at birth increased to 73.3 years")

	require.Equal(t, first, second, "same text must yield the identical vector")

	// A fresh embedder with the same configuration agrees, which is what
	// makes index rebuilds bit-stable across process restarts.
	other := NewEmbedder(DefaultDimension).Embed("Life expectancy at birth increased to 73.3 years")
	assert.Equal(t, first, other)
}

func TestEmbed_FixedDimension(t *testing.T) {
	e := NewEmbedder(128)

	for _, text := range []string{"", "one", "a much longer sentence with many more tokens than the first"} {
		assert.Len(t, e.Embed(text), 128)
	}
}

func TestEmbed_L2Normalized(t *testing.T) {
	e := NewEmbedder(0)

	vec := e.Embed("tables narrative pages citations")
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5)
}

func TestEmbed_EmptyTextIsZeroVector(t *testing.T) {
	e := NewEmbedder(0)

	for _, v := range e.Embed("   \n\t ") {
		require.Zero(t, v)
	}
}

func TestEmbed_CaseInsensitiveTokens(t *testing.T) {
	e := NewEmbedder(0)

	assert.Equal(t, e.Embed("Life Expectancy"), e.Embed("life expectancy"))
}

func TestVersion_EncodesConfiguration(t *testing.T) {
	assert.Equal(t, "hashing-v1-384", NewEmbedder(0).Version())
	assert.NotEqual(t, NewEmbedder(128).Version(), NewEmbedder(384).Version(),
		"different dimensions must stamp different versions")
}
