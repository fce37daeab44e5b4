package index

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"offerletter/internal/domain"
	"offerletter/internal/embedding/hashing"
	"offerletter/internal/embedding/tfidf"
	oerrors "offerletter/internal/errors"
	"offerletter/internal/vectorstore/memory"
)

func policyChunks() []domain.Chunk {
	texts := []struct {
		src  domain.SourceTag
		text string
	}{
		{domain.SourceLeave, "Band L3 employees receive 18 days of annual leave including earned, sick and casual leave."},
		{domain.SourceLeave, "Engineering teams work from office at least three days a week; sprint reviews are in-office."},
		{domain.SourceLeave, "Sick leave beyond two consecutive days requires a medical certificate."},
		{domain.SourceTravel, "Travel policy: hotel cap and per diem depend on band; L5 may fly business class."},
		{domain.SourceTravel, "International travel requires approval from the manager and director."},
	}
	out := make([]domain.Chunk, len(texts))
	for i, t := range texts {
		out[i] = domain.Chunk{ID: i, DocumentID: string(t.src), Source: t.src, Text: t.text, Index: i}
	}
	return out
}

func build(t *testing.T, emb domain.Embedder) *Index {
	t.Helper()
	ix, err := Build(context.Background(), emb, memory.NewStorage(), policyChunks())
	require.NoError(t, err)
	return ix
}

func TestBuild_EmptyChunks(t *testing.T) {
	_, err := Build(context.Background(), hashing.NewEmbedder(0), memory.NewStorage(), nil)
	require.Error(t, err)
	assert.True(t, oerrors.Is(err, oerrors.ErrEmptyIndex))
}

func TestQuery_NotReady(t *testing.T) {
	var ix *Index
	_, err := ix.Query(context.Background(), "leave", 3)
	assert.True(t, oerrors.Is(err, oerrors.ErrNotReady))

	_, err = (&Index{}).Query(context.Background(), "leave", 3)
	assert.True(t, oerrors.Is(err, oerrors.ErrNotReady))
}

func TestQuery_RanksRelevantChunkFirst(t *testing.T) {
	for _, emb := range []domain.Embedder{hashing.NewEmbedder(384), tfidf.NewEmbedder()} {
		t.Run(emb.Name(), func(t *testing.T) {
			ix := build(t, emb)
			assert.Equal(t, 5, ix.Len())

			res, err := ix.Query(context.Background(), "hotel cap per diem business class", 2)
			require.NoError(t, err)
			require.Len(t, res, 2)
			assert.Equal(t, 3, res[0].Chunk.ID)
			assert.Equal(t, domain.SourceTravel, res[0].Chunk.Source)
			assert.GreaterOrEqual(t, res[0].Score, res[1].Score)
		})
	}
}

func TestQuery_Deterministic(t *testing.T) {
	ix := build(t, hashing.NewEmbedder(384))
	q := "band L3 department Engineering leave policy travel policy salary benefits"

	first, err := ix.Query(context.Background(), q, 6)
	require.NoError(t, err)
	second, err := ix.Query(context.Background(), q, 6)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, first, 5)
}

func TestQuery_DefaultK(t *testing.T) {
	ix := build(t, hashing.NewEmbedder(384))
	res, err := ix.Query(context.Background(), "leave", 0)
	require.NoError(t, err)
	assert.Len(t, res, 5)
}

func TestQuery_LexicalFallbackWithStableTies(t *testing.T) {
	ix := build(t, tfidf.NewEmbedder())
	// No token of the query is in the vocabulary, so every score is zero
	// and ordering falls back to chunk order.
	res, err := ix.Query(context.Background(), "spaceship", 3)
	require.NoError(t, err)
	require.Len(t, res, 3)
	for i, r := range res {
		assert.Equal(t, i, r.Chunk.ID)
		assert.Zero(t, r.Score)
	}
}

func TestSortResults_TiesByChunkID(t *testing.T) {
	res := []domain.SearchResult{
		{Chunk: domain.Chunk{ID: 7}, Score: 0.5},
		{Chunk: domain.Chunk{ID: 2}, Score: 0.5},
		{Chunk: domain.Chunk{ID: 9}, Score: 0.9},
	}
	sortResults(res)
	assert.Equal(t, []int{9, 2, 7}, []int{res[0].Chunk.ID, res[1].Chunk.ID, res[2].Chunk.ID})
}

func TestQuery_ConcurrentReaders(t *testing.T) {
	ix := build(t, hashing.NewEmbedder(384))
	want, err := ix.Query(context.Background(), "medical certificate", 3)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := ix.Query(context.Background(), "medical certificate", 3)
			assert.NoError(t, err)
			assert.Equal(t, want, got)
		}()
	}
	wg.Wait()
}

type failingEmbedder struct{}

func (failingEmbedder) Name() string             { return "failing" }
func (failingEmbedder) Prepare(_ []string) error { return nil }
func (failingEmbedder) Dimension() int           { return 4 }
func (failingEmbedder) Embed(context.Context, string) ([]float64, error) {
	return nil, errors.New("model offline")
}

func TestBuild_EmbedFailure(t *testing.T) {
	_, err := Build(context.Background(), failingEmbedder{}, memory.NewStorage(), policyChunks())
	assert.ErrorContains(t, err, "model offline")
}

// reversedStore scores every chunk the same and returns them in
// descending ID order, truncated to topK.
type reversedStore struct {
	chunks   []domain.Chunk
	requests []int
}

func (s *reversedStore) Init(context.Context, int) error { return nil }
func (s *reversedStore) Clear(context.Context) error     { return nil }
func (s *reversedStore) Upsert(_ context.Context, chunks []domain.Chunk, _ [][]float64) error {
	s.chunks = append(s.chunks, chunks...)
	return nil
}
func (s *reversedStore) Search(_ context.Context, _ []float64, topK int) ([]domain.SearchResult, error) {
	s.requests = append(s.requests, topK)
	var res []domain.SearchResult
	for i := len(s.chunks) - 1; i >= 0 && len(res) < topK; i-- {
		res = append(res, domain.SearchResult{Chunk: s.chunks[i], Score: 0.5})
	}
	return res, nil
}

func TestQuery_TiesAtCutoffGoToLowerIDs(t *testing.T) {
	chunks := append(policyChunks(), policyChunks()...)
	for i := range chunks {
		chunks[i].ID = i
	}
	store := &reversedStore{}
	ix, err := Build(context.Background(), hashing.NewEmbedder(0), store, chunks)
	require.NoError(t, err)

	res, err := ix.Query(context.Background(), "annual leave for band L3", 3)
	require.NoError(t, err)
	require.Len(t, res, 3)
	for i, r := range res {
		assert.Equal(t, i, r.Chunk.ID)
	}
	assert.Equal(t, []int{4, 8, 16}, store.requests)
}

func TestQuery_StopsWideningPastATie(t *testing.T) {
	store := &reversedStore{}
	ix, err := Build(context.Background(), hashing.NewEmbedder(0), store, policyChunks())
	require.NoError(t, err)

	res, err := ix.Query(context.Background(), "annual leave for band L3", 10)
	require.NoError(t, err)
	assert.Len(t, res, 5)
	assert.Equal(t, []int{11}, store.requests)
}
