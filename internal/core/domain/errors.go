package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested file or document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a document with the same ID is already registered.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input
	// (bad doc ID, empty query, out-of-range threshold).
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFormat indicates a file extension outside the supported set.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrSecurityViolation indicates an archive failed safety validation
	// (zip bomb, path traversal, oversize). The archive is rejected whole;
	// no partial extraction is performed.
	ErrSecurityViolation = errors.New("security violation")

	// ErrConversion indicates an external format converter is missing,
	// timed out, or produced no output.
	ErrConversion = errors.New("conversion failed")

	// ErrEmbedding indicates the embedding backend failed to load or infer.
	// Fatal for the service instance; stored data is unaffected.
	ErrEmbedding = errors.New("embedding failed")

	// ErrStorage indicates a persistence layer failure.
	// Recoverable per-operation; triggers ingestion rollback.
	ErrStorage = errors.New("storage failed")
)
