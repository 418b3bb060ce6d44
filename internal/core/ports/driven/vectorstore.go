package driven

import (
	"context"

	"github.com/veritas-labs/ragstore/internal/core/domain"
)

// VectorStore persists chunk text, embedding and metadata, and answers
// similarity queries. It is the single source of truth for chunks.
//
// Search is exact brute-force cosine over the stored vectors; the
// corpus scale does not warrant an approximate index.
type VectorStore interface {
	// Add persists chunks. Chunks without an embedding are skipped
	// with a warning, not an error.
	Add(ctx context.Context, chunks []*domain.Chunk) error

	// Search returns up to topK results ordered by descending cosine
	// similarity (normalised to [0,1]), ties broken by chunk ID so
	// repeated queries are deterministic. The filter restricts
	// candidates to chunks whose metadata exactly matches every
	// key/value pair.
	Search(ctx context.Context, query []float32, topK int, filter map[string]any) ([]domain.SearchResult, error)

	// DeleteByDoc removes every chunk belonging to the document.
	// A document with zero chunks is a no-op, not an error.
	DeleteByDoc(ctx context.Context, docID string) error

	// Clear removes all chunks.
	Clear(ctx context.Context) error

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}
