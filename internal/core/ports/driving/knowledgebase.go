package driving

import (
	"context"

	"github.com/veritas-labs/ragstore/internal/core/domain"
)

// Stats summarises the state of the knowledge base.
type Stats struct {
	// DocumentCount is the number of registered documents.
	DocumentCount int

	// ChunkCount is the number of stored chunks.
	ChunkCount int

	// EmbeddingDim is the configured embedding dimension.
	EmbeddingDim int

	// EmbeddingModel is the active model identifier.
	EmbeddingModel string

	// SimilarityThreshold is the default retrieval threshold.
	SimilarityThreshold float64
}

// KnowledgeBase is the top-level document ingestion and retrieval API.
type KnowledgeBase interface {
	// AddDocument runs the full ingestion pipeline for the file at path:
	// parse, chunk, embed, store, register. The docID must match
	// [A-Za-z0-9_-]{1,255} and must not already exist; a duplicate is
	// rejected with domain.ErrAlreadyExists.
	AddDocument(ctx context.Context, path, docID string, metadata map[string]any) (domain.Document, error)

	// Search embeds the query and returns chunks ranked by descending
	// similarity, filtered by the effective threshold. An empty query
	// returns no results without invoking the embedding model.
	Search(ctx context.Context, query domain.SearchQuery) ([]domain.SearchResult, error)

	// GetDocument returns the registry summary for a document.
	GetDocument(ctx context.Context, docID string) (domain.Document, error)

	// ListDocuments returns all registered documents.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// DeleteDocument removes a document and cascades to its chunks.
	DeleteDocument(ctx context.Context, docID string) error

	// ClearAll removes every document and chunk.
	ClearAll(ctx context.Context) error

	// Stats reports document/chunk counts and embedding configuration.
	Stats(ctx context.Context) (Stats, error)
}
