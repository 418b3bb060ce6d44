package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/veritas-labs/ragstore/internal/chunker"
	"github.com/veritas-labs/ragstore/internal/core/domain"
	"github.com/veritas-labs/ragstore/internal/core/ports/driven"
	"github.com/veritas-labs/ragstore/internal/core/ports/driving"
	"github.com/veritas-labs/ragstore/internal/logger"
	"github.com/veritas-labs/ragstore/internal/textclean"
)

// Ensure Manager implements the interface.
var _ driving.KnowledgeBase = (*Manager)(nil)

// Manager orchestrates the ingestion pipeline (extract, clean, chunk,
// embed, store, register) and delegates queries to the retriever. It is
// the only component that touches both the vector store and the
// document registry, and it keeps the two consistent.
type Manager struct {
	extractor driven.TextExtractor
	chunker   *chunker.Chunker
	embedder  *EmbeddingService
	store     driven.VectorStore
	registry  driven.DocumentRegistry
	retriever *Retriever

	// Per-document locks serialise add/delete for the same doc_id so
	// rollback never races a concurrent retry. Operations on different
	// documents proceed in parallel.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager wires the ingestion and search pipelines together.
func NewManager(
	extractor driven.TextExtractor,
	chk *chunker.Chunker,
	embedder *EmbeddingService,
	store driven.VectorStore,
	registry driven.DocumentRegistry,
	retriever *Retriever,
) *Manager {
	return &Manager{
		extractor: extractor,
		chunker:   chk,
		embedder:  embedder,
		store:     store,
		registry:  registry,
		retriever: retriever,
		locks:     make(map[string]*sync.Mutex),
	}
}

// lockDoc acquires the per-document mutex and returns its release func.
func (m *Manager) lockDoc(docID string) func() {
	m.mu.Lock()
	l, ok := m.locks[docID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[docID] = l
	}
	m.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// AddDocument ingests the file at path under the given doc_id. Adding
// a second document under an existing doc_id is rejected; delete the
// old document first to replace it. If storing succeeds but a later
// step fails, any chunks already written are deleted before the error
// is returned.
func (m *Manager) AddDocument(ctx context.Context, path, docID string, metadata map[string]any) (domain.Document, error) {
	logger.Section("Add Document")
	logger.Info("Ingesting %s as %q", filepath.Base(path), docID)

	if err := domain.ValidateDocID(docID); err != nil {
		return domain.Document{}, err
	}

	unlock := m.lockDoc(docID)
	defer unlock()

	if _, err := m.registry.Get(docID); err == nil {
		return domain.Document{}, fmt.Errorf("%w: document %q", domain.ErrAlreadyExists, docID)
	}

	info, err := os.Stat(path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
	}

	tempDir, err := os.MkdirTemp("", "ragstore_ingest_")
	if err != nil {
		return domain.Document{}, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	// parsing
	raw, err := m.extractor.ExtractText(ctx, path, tempDir)
	if err != nil {
		return domain.Document{}, err
	}

	cleaned := textclean.Clean(raw, false)
	if !textclean.IsUsable(cleaned, 0) {
		return domain.Document{}, fmt.Errorf("%w: %s contains no usable text", domain.ErrInvalidInput, filepath.Base(path))
	}

	// chunking; chunks carry the filename so search results can name
	// their source document
	chunkMeta := make(map[string]any, len(metadata)+1)
	for k, v := range metadata {
		chunkMeta[k] = v
	}
	chunkMeta["source"] = filepath.Base(path)
	chunks, err := m.chunker.Chunk(cleaned, docID, chunkMeta, nil)
	if err != nil {
		return domain.Document{}, err
	}
	if len(chunks) == 0 {
		return domain.Document{}, fmt.Errorf("%w: %s produced no chunks", domain.ErrInvalidInput, filepath.Base(path))
	}
	logger.Info("Chunked into %d pieces", len(chunks))

	// embedding
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := m.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return domain.Document{}, fmt.Errorf("%w: %v", domain.ErrEmbedding, err)
	}
	for i, c := range chunks {
		if err := c.AttachEmbedding(vectors[i], m.embedder.Dimensions()); err != nil {
			return domain.Document{}, err
		}
	}

	// storing
	if err := m.store.Add(ctx, chunks); err != nil {
		m.rollback(ctx, docID)
		return domain.Document{}, fmt.Errorf("%w: storing chunks: %v", domain.ErrStorage, err)
	}

	// registering
	doc := domain.NewDocument(docID, filepath.Base(path), info.Size(), len(chunks), metadata)
	if err := m.registry.Save(doc); err != nil {
		m.rollback(ctx, docID)
		return domain.Document{}, fmt.Errorf("%w: registering document: %v", domain.ErrStorage, err)
	}

	logger.Info("Ingested %q: %d chunks", docID, len(chunks))
	return doc, nil
}

// rollback removes any chunks written for docID after a failed add.
// Best effort: a rollback failure is logged, not returned, so the
// original error stays visible to the caller.
func (m *Manager) rollback(ctx context.Context, docID string) {
	logger.Warn("Rolling back chunks for %q", docID)
	if err := m.store.DeleteByDoc(ctx, docID); err != nil {
		logger.Error("Rollback for %q failed: %v", docID, err)
	}
}

// Search delegates to the retriever.
func (m *Manager) Search(ctx context.Context, query domain.SearchQuery) ([]domain.SearchResult, error) {
	return m.retriever.Retrieve(ctx, query)
}

// GetDocument returns the registry entry for docID.
func (m *Manager) GetDocument(ctx context.Context, docID string) (domain.Document, error) {
	if err := domain.ValidateDocID(docID); err != nil {
		return domain.Document{}, err
	}
	return m.registry.Get(docID)
}

// ListDocuments returns all registered documents in creation order.
func (m *Manager) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	return m.registry.List()
}

// DeleteDocument removes the document and all of its chunks.
func (m *Manager) DeleteDocument(ctx context.Context, docID string) error {
	if err := domain.ValidateDocID(docID); err != nil {
		return err
	}

	unlock := m.lockDoc(docID)
	defer unlock()

	if _, err := m.registry.Get(docID); err != nil {
		return err
	}
	if err := m.store.DeleteByDoc(ctx, docID); err != nil {
		return fmt.Errorf("%w: deleting chunks for %q: %v", domain.ErrStorage, docID, err)
	}
	if err := m.registry.Delete(docID); err != nil {
		return fmt.Errorf("%w: unregistering %q: %v", domain.ErrStorage, docID, err)
	}

	logger.Info("Deleted document %q", docID)
	return nil
}

// ClearAll removes every document and chunk.
func (m *Manager) ClearAll(ctx context.Context) error {
	if err := m.store.Clear(ctx); err != nil {
		return fmt.Errorf("%w: clearing store: %v", domain.ErrStorage, err)
	}
	if err := m.registry.Clear(); err != nil {
		return fmt.Errorf("%w: clearing registry: %v", domain.ErrStorage, err)
	}
	logger.Info("Cleared all documents")
	return nil
}

// Stats reports aggregate counts and the active embedding setup.
func (m *Manager) Stats(ctx context.Context) (driving.Stats, error) {
	docs, err := m.registry.List()
	if err != nil {
		return driving.Stats{}, err
	}
	chunkCount, err := m.store.Count(ctx)
	if err != nil {
		return driving.Stats{}, err
	}
	return driving.Stats{
		DocumentCount:       len(docs),
		ChunkCount:          chunkCount,
		EmbeddingDim:        m.embedder.Dimensions(),
		EmbeddingModel:      m.embedder.ModelName(),
		SimilarityThreshold: m.retriever.defaultThreshold,
	}, nil
}
