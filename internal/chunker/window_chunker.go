package chunker

import (
	"strconv"

	"offerletter/internal/domain"
	oerrors "offerletter/internal/errors"
)

const (
	DefaultSize    = 800
	DefaultOverlap = 100
)

// Split cuts text into windows of size characters, each starting
// size-overlap characters after the previous one. The last window may be
// shorter. Offsets are counted in runes so multi-byte text is never split
// inside a character.
func Split(text string, size, overlap int) ([]string, error) {
	if err := validate(size, overlap); err != nil {
		return nil, err
	}
	runes := []rune(text)
	if len(runes) == 0 {
		return nil, nil
	}
	step := size - overlap
	var out []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return out, nil
}

func validate(size, overlap int) error {
	if size <= 0 {
		return oerrors.NewConfig("chunk size must be positive, got " + strconv.Itoa(size))
	}
	if overlap < 0 {
		return oerrors.NewConfig("chunk overlap must not be negative, got " + strconv.Itoa(overlap))
	}
	if overlap >= size {
		return oerrors.NewConfig("chunk overlap " + strconv.Itoa(overlap) + " must be smaller than size " + strconv.Itoa(size))
	}
	return nil
}

// WindowChunker splits documents into fixed-size overlapping character windows.
type WindowChunker struct {
	size    int
	overlap int
}

// NewWindowChunker validates the window parameters up front so a bad
// configuration fails at startup rather than at ingestion.
func NewWindowChunker(size, overlap int) (*WindowChunker, error) {
	if err := validate(size, overlap); err != nil {
		return nil, err
	}
	return &WindowChunker{size: size, overlap: overlap}, nil
}

// Chunk returns the document's windows in order. IDs are left at zero; the
// caller numbers chunks across documents.
func (c *WindowChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	parts, err := Split(document.Content, c.size, c.overlap)
	if err != nil {
		return nil, err
	}
	chunks := make([]domain.Chunk, 0, len(parts))
	for i, text := range parts {
		chunks = append(chunks, domain.Chunk{
			DocumentID: document.ID,
			Source:     document.Source,
			Text:       text,
			Index:      i,
		})
	}
	return chunks, nil
}
