package hashing

import (
	"context"
	"hash/fnv"

	"offerletter/internal/embedding"
)

// Embedder maps text into a fixed-dimension vector by feature hashing of
// unigrams and bigrams. It needs no corpus preparation and no network, and
// the same text always yields the same vector.
type Embedder struct {
	dimension int
}

// NewEmbedder returns a hashing embedder. A non-positive dimension falls
// back to embedding.DefaultDimension.
func NewEmbedder(dimension int) *Embedder {
	if dimension <= 0 {
		dimension = embedding.DefaultDimension
	}
	return &Embedder{dimension: dimension}
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "hashing" }

// Prepare is a no-op; the feature space is fixed.
func (e *Embedder) Prepare(_ []string) error { return nil }

// Dimension returns the fixed vector size.
func (e *Embedder) Dimension() int { return e.dimension }

// Embed returns the L2-normalized hashed feature vector for text.
func (e *Embedder) Embed(_ context.Context, text string) ([]float64, error) {
	vec := make([]float64, e.dimension)
	tokens := embedding.Tokenize(text)
	for i, tok := range tokens {
		e.add(vec, tok, 1.0)
		if i > 0 {
			e.add(vec, tokens[i-1]+" "+tok, 0.5)
		}
	}
	embedding.Normalize(vec)
	return vec, nil
}

// add folds one feature into vec. The sign bit keeps collisions from
// always adding up.
func (e *Embedder) add(vec []float64, feature string, weight float64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()
	idx := int(sum % uint64(e.dimension))
	if sum&(1<<63) != 0 {
		weight = -weight
	}
	vec[idx] += weight
}
