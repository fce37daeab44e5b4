package domain

import "context"

// SourceTag names which policy document a chunk came from.
type SourceTag string

const (
	SourceLeave  SourceTag = "leave"
	SourceTravel SourceTag = "travel"
)

// Document is a policy document loaded as raw text.
type Document struct {
	ID      string
	Path    string
	Source  SourceTag
	Content string
}

// Chunk is a fixed-size window of a policy document used for indexing.
// ID is global across all documents of one ingestion run; Index is the
// position inside its own document.
type Chunk struct {
	ID         int
	DocumentID string
	Source     SourceTag
	Text       string
	Index      int
}

// SearchResult represents a matching chunk with a relevance score.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}

// VectorStore persists vectors and supports similarity search.
type VectorStore interface {
	Init(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, chunks []Chunk, vectors [][]float64) error
	Search(ctx context.Context, vector []float64, topK int) ([]SearchResult, error)
	Clear(ctx context.Context) error
}
