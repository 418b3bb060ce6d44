// Package file loads the TOML configuration. Every option has a
// default, so an absent file yields a fully working configuration.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/veritas-labs/ragstore/internal/core/domain"
)

// Default configuration values.
const (
	DefaultChunkSize         = 500
	DefaultChunkOverlap      = 50
	DefaultTopK              = 5
	DefaultThreshold         = 0.3
	DefaultMaxArchiveSize    = 100 * 1024 * 1024 // 100 MB
	DefaultMaxArchiveFiles   = 100
	DefaultMaxArchiveRatio   = 100.0
	DefaultEmbeddingProvider = "ollama"
)

// Config is the full configuration surface.
type Config struct {
	// BaseDir roots all persisted state (vector store, registry).
	// Empty selects ~/.ragstore.
	BaseDir string `toml:"base_dir"`

	Chunking  ChunkingConfig  `toml:"chunking"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Search    SearchConfig    `toml:"search"`
	Archive   ArchiveConfig   `toml:"archive"`
}

// ChunkingConfig controls the token windowing.
type ChunkingConfig struct {
	ChunkSize    int `toml:"chunk_size"`
	ChunkOverlap int `toml:"chunk_overlap"`
}

// EmbeddingConfig selects and tunes the embedding backend.
type EmbeddingConfig struct {
	// Provider is "ollama" or "openai".
	Provider string `toml:"provider"`

	// Model overrides the provider's default model.
	Model string `toml:"model"`

	// BaseURL overrides the provider's endpoint.
	BaseURL string `toml:"base_url"`

	// Dimensions overrides the model's vector size.
	Dimensions int `toml:"dimensions"`
}

// SearchConfig sets retrieval defaults.
type SearchConfig struct {
	TopK                int     `toml:"top_k"`
	SimilarityThreshold float64 `toml:"similarity_threshold"`
}

// ArchiveConfig bounds ZIP extraction.
type ArchiveConfig struct {
	MaxUncompressedSize int64   `toml:"max_uncompressed_size"`
	MaxFileCount        int     `toml:"max_file_count"`
	MaxCompressionRatio float64 `toml:"max_compression_ratio"`
}

// Default returns the configuration with every option at its default.
func Default() Config {
	return Config{
		Chunking: ChunkingConfig{
			ChunkSize:    DefaultChunkSize,
			ChunkOverlap: DefaultChunkOverlap,
		},
		Embedding: EmbeddingConfig{
			Provider: DefaultEmbeddingProvider,
		},
		Search: SearchConfig{
			TopK:                DefaultTopK,
			SimilarityThreshold: DefaultThreshold,
		},
		Archive: ArchiveConfig{
			MaxUncompressedSize: DefaultMaxArchiveSize,
			MaxFileCount:        DefaultMaxArchiveFiles,
			MaxCompressionRatio: DefaultMaxArchiveRatio,
		},
	}
}

// Load reads the configuration at path, filling unset options with
// defaults. A missing file returns the defaults. If path is empty,
// ~/.ragstore/config.toml is used.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".ragstore", "config.toml")
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: parsing %s: %v", domain.ErrInvalidInput, path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks option ranges.
func (c Config) Validate() error {
	if c.Chunking.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive", domain.ErrInvalidInput)
	}
	if c.Chunking.ChunkOverlap < 0 || c.Chunking.ChunkOverlap >= c.Chunking.ChunkSize {
		return fmt.Errorf("%w: chunk_overlap must be in [0, chunk_size)", domain.ErrInvalidInput)
	}
	if c.Search.TopK <= 0 || c.Search.TopK > domain.MaxTopK {
		return fmt.Errorf("%w: top_k must be in [1, %d]", domain.ErrInvalidInput, domain.MaxTopK)
	}
	if c.Search.SimilarityThreshold < 0 || c.Search.SimilarityThreshold > 1 {
		return fmt.Errorf("%w: similarity_threshold must be in [0, 1]", domain.ErrInvalidInput)
	}
	if c.Embedding.Provider != "ollama" && c.Embedding.Provider != "openai" {
		return fmt.Errorf("%w: embedding provider must be ollama or openai, got %q",
			domain.ErrInvalidInput, c.Embedding.Provider)
	}
	if c.Archive.MaxFileCount <= 0 || c.Archive.MaxUncompressedSize <= 0 || c.Archive.MaxCompressionRatio <= 0 {
		return fmt.Errorf("%w: archive limits must be positive", domain.ErrInvalidInput)
	}
	return nil
}

// DataDir resolves the directory for persisted state.
func (c Config) DataDir() (string, error) {
	base := c.BaseDir
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		base = filepath.Join(home, ".ragstore")
	}
	return filepath.Join(base, "data"), nil
}

// Save writes the configuration to path, creating directories as
// needed. Used to materialise a starter config for editing.
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
