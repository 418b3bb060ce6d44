package domain

import (
	"fmt"
	"strings"
)

// Query and result bounds.
const (
	// MaxQueryLength bounds the accepted query text.
	MaxQueryLength = 1000

	// MaxTopK bounds the number of requested results.
	MaxTopK = 100

	// DefaultTopK is used when a query does not specify a limit.
	DefaultTopK = 5

	// DefaultSimilarityThreshold is the default minimum similarity
	// for a result to be considered relevant.
	DefaultSimilarityThreshold = 0.3
)

// SearchQuery is a validated search request.
type SearchQuery struct {
	// Text is the natural-language query.
	Text string

	// TopK is the maximum number of results to return.
	TopK int

	// Threshold is the minimum similarity score. Negative means
	// "use the service default".
	Threshold float64

	// Filter restricts candidates to chunks whose metadata exactly
	// matches every given key/value pair (AND semantics, equality only).
	Filter map[string]any
}

// Validate checks the query bounds. An empty query is valid here and
// short-circuits to zero results at the retriever.
func (q SearchQuery) Validate() error {
	if len(q.Text) > MaxQueryLength {
		return fmt.Errorf("%w: query exceeds %d characters", ErrInvalidInput, MaxQueryLength)
	}
	if q.TopK < 0 || q.TopK > MaxTopK {
		return fmt.Errorf("%w: top_k must be in 1..%d, got %d", ErrInvalidInput, MaxTopK, q.TopK)
	}
	if q.Threshold > 1 {
		return fmt.Errorf("%w: similarity threshold must be at most 1.0, got %v", ErrInvalidInput, q.Threshold)
	}
	return nil
}

// IsEmpty reports whether the query carries no searchable text.
func (q SearchQuery) IsEmpty() bool {
	return strings.TrimSpace(q.Text) == ""
}

// SearchResult represents a single search hit. Results are ephemeral;
// they are constructed per-query and never persisted.
type SearchResult struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// DocID is the owning document.
	DocID string

	// Text is the chunk content.
	Text string

	// Similarity is the cosine similarity normalised to [0, 1].
	Similarity float64

	// SourceDoc is the display name of the owning document.
	SourceDoc string

	// Page is the source page number, if known.
	Page *int

	// Position is the chunk's ordinal within the document.
	Position int

	// Metadata contains the chunk metadata as stored.
	Metadata map[string]any
}

// Validate enforces the score range invariant.
func (r SearchResult) Validate() error {
	if r.Similarity < 0 || r.Similarity > 1 {
		return fmt.Errorf("%w: similarity score must be in [0, 1], got %v", ErrInvalidInput, r.Similarity)
	}
	return nil
}
