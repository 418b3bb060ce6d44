// Package file persists the document registry as a JSON file: a map of
// doc_id to document summary. The registry is the durable record of
// which documents exist; chunk content lives in the vector store.
package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/veritas-labs/ragstore/internal/core/domain"
	"github.com/veritas-labs/ragstore/internal/core/ports/driven"
	"github.com/veritas-labs/ragstore/internal/logger"
)

// Ensure Registry implements the interface.
var _ driven.DocumentRegistry = (*Registry)(nil)

// Registry is a JSON-file-backed document registry. All writes are
// flushed to disk before returning; the write is atomic (temp file plus
// rename) so a crash can never leave a half-written registry behind.
type Registry struct {
	path string

	mu   sync.RWMutex
	docs map[string]domain.Document
}

// NewRegistry loads the registry at path, creating parent directories
// as needed. A missing file starts an empty registry. A malformed file
// also starts empty but is reported loudly; it must not prevent
// startup.
func NewRegistry(path string) (*Registry, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating registry directory: %w", err)
	}

	r := &Registry{path: path, docs: make(map[string]domain.Document)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading registry: %w", err)
	}

	if err := json.Unmarshal(data, &r.docs); err != nil {
		logger.Error("Registry file %s is malformed (%v); starting with an empty registry. "+
			"The old file is preserved until the next write.", path, err)
		r.docs = make(map[string]domain.Document)
	}
	return r, nil
}

// Save stores or updates a document entry and flushes to disk.
func (r *Registry) Save(doc domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.docs[doc.ID] = doc
	return r.flush()
}

// Get retrieves a document by ID.
func (r *Registry) Get(docID string) (domain.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.docs[docID]
	if !ok {
		return domain.Document{}, fmt.Errorf("%w: document %q", domain.ErrNotFound, docID)
	}
	return doc, nil
}

// List returns all documents ordered by creation time, then ID.
func (r *Registry) List() ([]domain.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	docs := make([]domain.Document, 0, len(r.docs))
	for _, doc := range r.docs {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].CreatedAt.Before(docs[j].CreatedAt)
		}
		return docs[i].ID < docs[j].ID
	})
	return docs, nil
}

// Delete removes a document entry and flushes to disk.
func (r *Registry) Delete(docID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.docs[docID]; !ok {
		return fmt.Errorf("%w: document %q", domain.ErrNotFound, docID)
	}
	delete(r.docs, docID)
	return r.flush()
}

// Clear removes all entries and flushes to disk.
func (r *Registry) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.docs = make(map[string]domain.Document)
	return r.flush()
}

// flush writes the registry atomically. Callers hold the write lock.
func (r *Registry) flush() error {
	data, err := json.MarshalIndent(r.docs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling registry: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".registry-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp registry: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing registry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing registry: %w", err)
	}
	if err := os.Rename(tmpPath, r.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing registry: %w", err)
	}
	return nil
}
