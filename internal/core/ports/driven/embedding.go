package driven

import "context"

// Embedder is a raw embedding model client. It converts text into
// fixed-dimension dense vectors.
//
// Note: this is the bare model boundary. The empty-text zero-vector
// contract and batch scatter logic live in services.EmbeddingService,
// which wraps an Embedder. Adapters never see empty input.
//
// Implementations may include:
//   - Ollama (nomic-embed-text, all-minilm, paraphrase-multilingual)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
type Embedder interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	// Output length always equals input length.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g. 384, 768, 1536).
	// Fixed per model instance.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the backend is reachable with a lightweight request.
	// Used at startup; a failed ping is fatal for the service instance.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
