package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/veritas-labs/ragstore/internal/core/domain"
	"github.com/veritas-labs/ragstore/internal/core/ports/driven"
	"github.com/veritas-labs/ragstore/internal/logger"
)

// Retriever answers natural-language queries: it embeds the query,
// searches the vector store, and applies the caller's relevance
// threshold on top of whatever the store returned.
type Retriever struct {
	embedder         *EmbeddingService
	store            driven.VectorStore
	defaultThreshold float64
}

// NewRetriever creates a retriever. A non-positive defaultThreshold
// selects the standard default.
func NewRetriever(embedder *EmbeddingService, store driven.VectorStore, defaultThreshold float64) *Retriever {
	if defaultThreshold <= 0 {
		defaultThreshold = domain.DefaultSimilarityThreshold
	}
	return &Retriever{embedder: embedder, store: store, defaultThreshold: defaultThreshold}
}

// Retrieve returns the chunks most similar to the query, ordered by
// descending similarity. An empty query returns no results without
// touching the embedding backend; an all-zero query vector would match
// everything at the same score, which is never what the caller wants.
func (r *Retriever) Retrieve(ctx context.Context, query domain.SearchQuery) ([]domain.SearchResult, error) {
	if query.IsEmpty() {
		logger.Debug("Empty query, returning no results")
		return []domain.SearchResult{}, nil
	}
	if err := query.Validate(); err != nil {
		return nil, err
	}

	topK := query.TopK
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	threshold := query.Threshold
	if threshold < 0 {
		threshold = r.defaultThreshold
	}
	logger.Debug("Retrieve: topK=%d threshold=%.2f filter=%v", topK, threshold, query.Filter)

	vector, err := r.embedder.Embed(ctx, query.Text)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	candidates, err := r.store.Search(ctx, vector, topK, query.Filter)
	if err != nil {
		return nil, fmt.Errorf("searching store: %w", err)
	}

	// The store's retrieval width and the caller's relevance bar are
	// separate knobs; re-filter and re-sort here.
	results := make([]domain.SearchResult, 0, len(candidates))
	for _, c := range candidates {
		if c.Similarity >= threshold {
			results = append(results, c)
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].ChunkID < results[j].ChunkID
	})

	logger.Debug("Retrieve: %d candidates, %d above threshold", len(candidates), len(results))
	return results, nil
}
