// Package chunker splits document text into fixed-size, overlapping
// windows of whitespace tokens. Chunking is deliberately simple and
// language-agnostic: no sentence awareness, no randomness, no I/O, so
// chunk boundaries are exactly reproducible from (text, size, overlap).
package chunker

import (
	"fmt"
	"strings"

	"github.com/veritas-labs/ragstore/internal/core/domain"
)

// DefaultChunkSize is the default number of tokens per chunk.
const DefaultChunkSize = 500

// DefaultChunkOverlap is the default number of overlapping tokens.
const DefaultChunkOverlap = 50

// Chunker produces overlapping token-window chunks.
type Chunker struct {
	chunkSize int
	overlap   int
}

// New creates a chunker, validating its parameters immediately rather
// than at first use: chunkSize must be positive and overlap must satisfy
// 0 <= overlap < chunkSize.
func New(chunkSize, overlap int) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidInput, chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("%w: chunk overlap must be in [0, chunk size), got %d with size %d",
			domain.ErrInvalidInput, overlap, chunkSize)
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}, nil
}

// ChunkSize returns the configured window size in tokens.
func (c *Chunker) ChunkSize() int { return c.chunkSize }

// Overlap returns the configured overlap in tokens.
func (c *Chunker) Overlap() int { return c.overlap }

// Chunk splits text into chunks for docID. Each chunk carries a
// zero-based sequential position and inherits baseMetadata plus the
// page number when given. Empty or whitespace-only input yields an
// empty slice, not an error.
func (c *Chunker) Chunk(text, docID string, baseMetadata map[string]any, page *int) ([]*domain.Chunk, error) {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return nil, nil
	}

	step := c.chunkSize - c.overlap

	chunks := make([]*domain.Chunk, 0, (len(tokens)+step-1)/step)
	position := 0

	for start := 0; start < len(tokens); start += step {
		end := start + c.chunkSize
		if end > len(tokens) {
			end = len(tokens)
		}
		covered := end == len(tokens)

		metadata := make(map[string]any, len(baseMetadata)+2)
		for k, v := range baseMetadata {
			metadata[k] = v
		}
		metadata["position"] = position
		if page != nil {
			metadata["page"] = *page
		}

		chunk, err := domain.NewChunk(docID, strings.Join(tokens[start:end], " "), position, page, metadata)
		if err != nil {
			return nil, fmt.Errorf("building chunk %d: %w", position, err)
		}
		chunks = append(chunks, chunk)
		position++

		// Once a window reaches the end of the text, a further step
		// would only re-emit tokens the last chunk already covers.
		if covered {
			break
		}
	}

	return chunks, nil
}
