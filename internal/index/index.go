// Package index builds a similarity index over policy chunks and answers
// nearest-neighbour queries against it.
package index

import (
	"context"
	"fmt"
	"math"
	"sort"

	"offerletter/internal/domain"
	"offerletter/internal/embedding"
	oerrors "offerletter/internal/errors"
)

// DefaultTopK is the number of passages retrieved when the caller passes k <= 0.
const DefaultTopK = 6

// Index is a built, read-only similarity index. It is safe for concurrent
// Query calls once Build has returned.
type Index struct {
	embedder domain.Embedder
	store    domain.VectorStore
	chunks   []domain.Chunk
}

// Build embeds every chunk and loads it into store. The store is reset
// first, so the index always reflects exactly the given chunks. Chunks are
// expected to carry distinct IDs in ascending order.
func Build(ctx context.Context, embedder domain.Embedder, store domain.VectorStore, chunks []domain.Chunk) (*Index, error) {
	if len(chunks) == 0 {
		return nil, oerrors.NewEmptyIndex()
	}
	corpus := make([]string, len(chunks))
	for i, c := range chunks {
		corpus[i] = c.Text
	}
	if err := embedder.Prepare(corpus); err != nil {
		return nil, fmt.Errorf("prepare %s embedder: %w", embedder.Name(), err)
	}
	vectors := make([][]float64, len(chunks))
	for i, c := range chunks {
		vec, err := embedder.Embed(ctx, c.Text)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d: %w", c.ID, err)
		}
		vectors[i] = vec
	}
	dim := embedder.Dimension()
	if dim == 0 {
		dim = len(vectors[0])
	}
	if err := store.Init(ctx, dim); err != nil {
		return nil, fmt.Errorf("init vector store: %w", err)
	}
	if err := store.Upsert(ctx, chunks, vectors); err != nil {
		return nil, fmt.Errorf("upsert chunks: %w", err)
	}
	owned := make([]domain.Chunk, len(chunks))
	copy(owned, chunks)
	return &Index{embedder: embedder, store: store, chunks: owned}, nil
}

// Len reports the number of indexed chunks.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.chunks)
}

// Query returns up to k chunks ordered by descending similarity, ties going
// to the earlier chunk. When the query shares no vocabulary with the index
// the ranking falls back to lexical token overlap.
func (ix *Index) Query(ctx context.Context, text string, k int) ([]domain.SearchResult, error) {
	if ix.Len() == 0 {
		return nil, oerrors.NewNotReady("similarity index")
	}
	if k <= 0 {
		k = DefaultTopK
	}
	vec, err := ix.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if embedding.IsZero(vec) {
		return ix.lexicalSearch(text, k), nil
	}
	res, err := ix.search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	allZero := true
	for _, r := range res {
		if r.Score > 1e-9 {
			allZero = false
			break
		}
	}
	if allZero {
		return ix.lexicalSearch(text, k), nil
	}
	return res, nil
}

// search fetches more than k hits from the store, widening the request
// while the hit after the cut-off still ties the k-th, so the chunk-ID
// tie-break holds whatever order the store returns equal scores in.
func (ix *Index) search(ctx context.Context, vec []float64, k int) ([]domain.SearchResult, error) {
	want := k + 1
	for {
		res, err := ix.store.Search(ctx, vec, want)
		if err != nil {
			return nil, err
		}
		sortResults(res)
		if len(res) <= k {
			return res, nil
		}
		if len(res) < want || want >= len(ix.chunks) || res[len(res)-1].Score < res[k-1].Score {
			return res[:k], nil
		}
		want *= 2
	}
}

// sortResults applies the index ordering regardless of what the backing
// store returned: score descending, then chunk ID ascending.
func sortResults(res []domain.SearchResult) {
	sort.SliceStable(res, func(i, j int) bool {
		if res[i].Score != res[j].Score {
			return res[i].Score > res[j].Score
		}
		return res[i].Chunk.ID < res[j].Chunk.ID
	})
}

func (ix *Index) lexicalSearch(query string, k int) []domain.SearchResult {
	qset := embedding.TokenSet(query)
	res := make([]domain.SearchResult, len(ix.chunks))
	for i, c := range ix.chunks {
		res[i] = domain.SearchResult{Chunk: c, Score: ochiai(qset, c.Text)}
	}
	sortResults(res)
	if k < len(res) {
		res = res[:k]
	}
	return res
}

// ochiai is |A∩B| / sqrt(|A||B|) over distinct tokens.
func ochiai(qset map[string]struct{}, text string) float64 {
	tset := embedding.TokenSet(text)
	if len(qset) == 0 || len(tset) == 0 {
		return 0
	}
	inter := 0
	for t := range tset {
		if _, ok := qset[t]; ok {
			inter++
		}
	}
	return float64(inter) / math.Sqrt(float64(len(qset))*float64(len(tset)))
}
