package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/veritas-labs/ragstore/internal/core/ports/driven"
	"github.com/veritas-labs/ragstore/internal/logger"
)

// EmbeddingService wraps an embedding backend with the contracts the
// pipeline relies on: empty text maps to the all-zero vector of the
// model's dimension, and batch output length always equals input length
// regardless of how many entries were empty. Empty entries never reach
// the backend.
type EmbeddingService struct {
	backend driven.Embedder
}

// NewEmbeddingService verifies the backend is reachable and returns the
// wrapper. A backend that cannot be reached is fatal at construction;
// there is no fallback embedding algorithm.
func NewEmbeddingService(ctx context.Context, backend driven.Embedder) (*EmbeddingService, error) {
	if err := backend.Ping(ctx); err != nil {
		return nil, fmt.Errorf("embedding backend %s unavailable: %w", backend.ModelName(), err)
	}
	logger.Info("Embedding backend ready: %s (%d dimensions)", backend.ModelName(), backend.Dimensions())
	return &EmbeddingService{backend: backend}, nil
}

// Dimensions returns the fixed vector dimension of the model.
func (s *EmbeddingService) Dimensions() int { return s.backend.Dimensions() }

// ModelName identifies the underlying model.
func (s *EmbeddingService) ModelName() string { return s.backend.ModelName() }

// Embed returns the vector for one text. Empty or whitespace-only text
// yields the all-zero vector without calling the backend.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return make([]float32, s.backend.Dimensions()), nil
	}

	vec, err := s.backend.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(vec) != s.backend.Dimensions() {
		return nil, fmt.Errorf("backend returned %d dimensions, expected %d", len(vec), s.backend.Dimensions())
	}
	return vec, nil
}

// EmbedBatch returns one vector per input text, in input order. Empty
// entries are filtered out before the backend call and their positions
// filled with zero vectors afterwards.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))

	nonEmpty := make([]string, 0, len(texts))
	positions := make([]int, 0, len(texts))
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			out[i] = make([]float32, s.backend.Dimensions())
			continue
		}
		nonEmpty = append(nonEmpty, text)
		positions = append(positions, i)
	}

	if len(nonEmpty) == 0 {
		return out, nil
	}

	vectors, err := s.backend.EmbedBatch(ctx, nonEmpty)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(nonEmpty) {
		return nil, fmt.Errorf("backend returned %d vectors for %d texts", len(vectors), len(nonEmpty))
	}

	for j, vec := range vectors {
		if len(vec) != s.backend.Dimensions() {
			return nil, fmt.Errorf("backend returned %d dimensions, expected %d", len(vec), s.backend.Dimensions())
		}
		out[positions[j]] = vec
	}

	logger.Debug("Embedded %d of %d texts (%d empty)", len(nonEmpty), len(texts), len(texts)-len(nonEmpty))
	return out, nil
}

// Close releases the backend.
func (s *EmbeddingService) Close() error { return s.backend.Close() }
