// Package embedding provides the deterministic offline embedder used at both
// ingestion and query time. Vectors are a pure function of the input text and
// the embedder configuration, so index rebuilds are bit-stable and no network
// access is required.
package embedding

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// DefaultDimension is the vector size produced by the default configuration.
const DefaultDimension = 384

// algorithmName identifies the embedding scheme. It is part of the version
// stamp: changing the tokenization or bucketing requires bumping it.
const algorithmName = "hashing-v1"

// Embedder maps text to a fixed-length vector via hashed bag-of-tokens:
// each lowercase whitespace-separated token is bucketed by the first four
// bytes of its SHA-256 digest, and the resulting counts are L2-normalized.
// This is an offline substitute for a learned embedding; it makes no claim
// that near-duplicate inputs land near each other.
type Embedder struct {
	dimension int
	version   string
}

// NewEmbedder creates an embedder with the given dimension.
// If dimension is <= 0, DefaultDimension (384) is used.
func NewEmbedder(dimension int) *Embedder {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &Embedder{
		dimension: dimension,
		version:   fmt.Sprintf("%s-%d", algorithmName, dimension),
	}
}

// Dimension returns the length of every vector this embedder produces.
func (e *Embedder) Dimension() int {
	return e.dimension
}

// Version returns the configuration stamp written into every indexed record.
// Retrieval compares this stamp against the stored one and fails fast on
// mismatch instead of silently mixing incompatible vectors.
func (e *Embedder) Version() string {
	return e.version
}

// Embed converts text to its vector. Text with no tokens (empty or
// whitespace-only) yields the zero vector.
func (e *Embedder) Embed(text string) []float32 {
	vec := make([]float32, e.dimension)

	tokens := strings.Fields(strings.ToLower(text))
	for _, tok := range tokens {
		digest := sha256.Sum256([]byte(tok))
		idx := binary.LittleEndian.Uint32(digest[:4]) % uint32(e.dimension)
		vec[idx]++
	}

	// L2 normalize so cosine similarity is meaningful.
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if norm := math.Sqrt(sum); norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}

	return vec
}

// EmbedAll embeds a batch of texts, preserving order.
func (e *Embedder) EmbedAll(texts []string) [][]float32 {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = e.Embed(text)
	}
	return vectors
}
