package driven

import "github.com/veritas-labs/ragstore/internal/core/domain"

// DocumentRegistry is the durable index of which documents exist.
// It holds document-level summaries only; chunks live in the VectorStore.
// The two stay consistent: a registry entry implies stored chunks and
// vice versa, except during the narrow ingestion window.
//
// Implementations must serialise their own writes and survive process
// restart. Loading a malformed persisted registry must not fail startup;
// implementations fall back to an empty registry and log loudly.
type DocumentRegistry interface {
	// Save stores or replaces a document summary.
	Save(doc domain.Document) error

	// Get retrieves a document summary by ID.
	// Returns domain.ErrNotFound if absent.
	Get(docID string) (domain.Document, error)

	// List returns all document summaries, ordered by creation time.
	List() ([]domain.Document, error)

	// Delete removes a document summary.
	// Returns domain.ErrNotFound if absent.
	Delete(docID string) error

	// Clear removes all entries.
	Clear() error
}
