package tfidf

import (
	"context"
	"errors"
	"math"
	"sort"

	"offerletter/internal/embedding"
)

// Embedder implements a TF-IDF vectorizer over the policy chunks.
// Prepare builds a sorted vocabulary and smoothed IDF weights from the
// corpus; it must finish before Embed is called concurrently.
type Embedder struct {
	vocabulary map[string]int
	idf        []float64
	prepared   bool
}

// NewEmbedder creates an unprepared TF-IDF embedder.
func NewEmbedder() *Embedder {
	return &Embedder{vocabulary: make(map[string]int)}
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "tfidf" }

// Prepare builds the vocabulary and IDF values from the provided corpus.
func (e *Embedder) Prepare(corpus []string) error {
	if len(corpus) == 0 {
		return errors.New("empty corpus for TF-IDF prepare")
	}
	df := make(map[string]int)
	for _, text := range corpus {
		for tok := range embedding.TokenSet(text) {
			df[tok]++
		}
	}
	if len(df) == 0 {
		return errors.New("no tokens found in policy corpus")
	}
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	n := float64(len(corpus))
	vocab := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	for i, term := range terms {
		vocab[term] = i
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	e.vocabulary = vocab
	e.idf = idf
	e.prepared = true
	return nil
}

// Dimension returns the vocabulary size, known only after Prepare.
func (e *Embedder) Dimension() int { return len(e.idf) }

// Embed computes the L2-normalized TF-IDF vector for text. Tokens outside
// the vocabulary are ignored, so unseen text yields a zero vector.
func (e *Embedder) Embed(_ context.Context, text string) ([]float64, error) {
	if !e.prepared {
		return nil, errors.New("tfidf embedder not prepared")
	}
	vec := make([]float64, len(e.idf))
	counts := make(map[int]int)
	total := 0
	for _, tok := range embedding.Tokenize(text) {
		if idx, ok := e.vocabulary[tok]; ok {
			counts[idx]++
			total++
		}
	}
	if total == 0 {
		return vec, nil
	}
	for idx, c := range counts {
		vec[idx] = float64(c) / float64(total) * e.idf[idx]
	}
	embedding.Normalize(vec)
	return vec, nil
}
