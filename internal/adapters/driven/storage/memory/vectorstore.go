// Package memory provides an in-memory vector store. It mirrors the
// SQLite store's search semantics exactly and is used for tests and
// throwaway sessions where persistence is unwanted.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/veritas-labs/ragstore/internal/core/domain"
	"github.com/veritas-labs/ragstore/internal/core/ports/driven"
	"github.com/veritas-labs/ragstore/internal/logger"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is an in-memory implementation of driven.VectorStore.
type VectorStore struct {
	mu     sync.RWMutex
	chunks map[string]domain.Chunk // keyed by chunk ID
}

// NewVectorStore creates an empty in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{chunks: make(map[string]domain.Chunk)}
}

// Add upserts chunks. Chunks without an embedding are skipped with a
// warning.
func (s *VectorStore) Add(_ context.Context, chunks []*domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			logger.Warn("Skipping chunk %s: no embedding", chunk.ID)
			continue
		}
		s.chunks[chunk.ID] = *chunk
	}
	return nil
}

// Search scores every stored chunk against the query and returns the
// topK best, ordered by descending similarity with chunk ID tie-break.
func (s *VectorStore) Search(_ context.Context, query []float32, topK int, filter map[string]any) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []domain.SearchResult
	for _, chunk := range s.chunks {
		if !matchesFilter(chunk.Metadata, filter) {
			continue
		}
		result := domain.SearchResult{
			ChunkID:    chunk.ID,
			DocID:      chunk.DocID,
			Text:       chunk.Text,
			Similarity: cosineSimilarity(query, chunk.Embedding),
			Page:       chunk.Page,
			Position:   chunk.Position,
			Metadata:   chunk.Metadata,
		}
		if source, ok := chunk.Metadata["source"].(string); ok {
			result.SourceDoc = source
		}
		results = append(results, result)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].ChunkID < results[j].ChunkID
	})
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// DeleteByDoc removes every chunk belonging to docID.
func (s *VectorStore) DeleteByDoc(_ context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, chunk := range s.chunks {
		if chunk.DocID == docID {
			delete(s.chunks, id)
		}
	}
	return nil
}

// Clear removes all chunks.
func (s *VectorStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = make(map[string]domain.Chunk)
	return nil
}

// Count returns the number of stored chunks.
func (s *VectorStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks), nil
}

// Close is a no-op for the in-memory store.
func (s *VectorStore) Close() error { return nil }

func matchesFilter(metadata, filter map[string]any) bool {
	for key, want := range filter {
		got, ok := metadata[key]
		if !ok || got != want {
			return false
		}
	}
	return true
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return 1 - (1-cos)/2
}
