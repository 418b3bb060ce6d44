package domain

import (
	"fmt"
	"regexp"
	"time"
)

// docIDPattern constrains caller-supplied document identifiers.
var docIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,255}$`)

// ValidateDocID checks a caller-supplied document identifier.
func ValidateDocID(id string) error {
	if !docIDPattern.MatchString(id) {
		return fmt.Errorf("%w: doc ID must match [A-Za-z0-9_-]{1,255}, got %q", ErrInvalidInput, id)
	}
	return nil
}

// Document represents an ingested document as held in the registry.
// The registry owns document-level metadata only; chunk content and
// embeddings live in the vector store.
type Document struct {
	// ID is the caller-supplied unique identifier.
	ID string `json:"doc_id"`

	// Filename is the original file name, used as the display name
	// in search results.
	Filename string `json:"filename"`

	// FileSize is the original file size in bytes.
	FileSize int64 `json:"file_size"`

	// ChunkCount is the number of chunks stored for this document.
	ChunkCount int `json:"chunk_count"`

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time `json:"created_at"`

	// Metadata contains flat key-value pairs supplied at ingestion.
	// Values are restricted to primitives (string/int/float/bool/nil).
	Metadata map[string]any `json:"metadata,omitempty"`
}

// NewDocument builds a registry entry stamped with the current time.
func NewDocument(id, filename string, fileSize int64, chunkCount int, metadata map[string]any) Document {
	return Document{
		ID:         id,
		Filename:   filename,
		FileSize:   fileSize,
		ChunkCount: chunkCount,
		CreatedAt:  time.Now().UTC(),
		Metadata:   metadata,
	}
}

// Chunk represents a bounded slice of a document's text, the unit of
// embedding and retrieval. Chunks are immutable once embedded; they are
// only ever deleted together with their parent document.
type Chunk struct {
	// ID is deterministic: "{doc_id}_chunk_{position}".
	ID string

	// DocID links back to the parent document.
	DocID string

	// Text is the chunk content. Never empty.
	Text string

	// Position is the zero-based ordinal within the document.
	Position int

	// Page is the source page number, when the format has pages.
	Page *int

	// Embedding is the vector representation. Nil until the embedding
	// service has populated it; fixed-dimension thereafter.
	Embedding []float32

	// Metadata inherits the document metadata plus position/page.
	Metadata map[string]any
}

// ChunkID derives the deterministic chunk identifier.
func ChunkID(docID string, position int) string {
	return fmt.Sprintf("%s_chunk_%d", docID, position)
}

// NewChunk constructs a chunk without an embedding, enforcing the
// construction invariants: non-empty text and non-negative position.
func NewChunk(docID, text string, position int, page *int, metadata map[string]any) (*Chunk, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: chunk text cannot be empty", ErrInvalidInput)
	}
	if position < 0 {
		return nil, fmt.Errorf("%w: chunk position must be non-negative, got %d", ErrInvalidInput, position)
	}

	return &Chunk{
		ID:       ChunkID(docID, position),
		DocID:    docID,
		Text:     text,
		Position: position,
		Page:     page,
		Metadata: metadata,
	}, nil
}

// AttachEmbedding sets the chunk's vector, enforcing the service-wide
// dimension invariant.
func (c *Chunk) AttachEmbedding(vec []float32, dim int) error {
	if len(vec) != dim {
		return fmt.Errorf("%w: embedding must be %d-dimensional, got %d", ErrInvalidInput, dim, len(vec))
	}
	c.Embedding = vec
	return nil
}
