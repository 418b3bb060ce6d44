package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/veritas-labs/ragstore/internal/adapters/driven/command"
	configfile "github.com/veritas-labs/ragstore/internal/adapters/driven/config/file"
	"github.com/veritas-labs/ragstore/internal/adapters/driven/convert"
	"github.com/veritas-labs/ragstore/internal/adapters/driven/embedding/ollama"
	"github.com/veritas-labs/ragstore/internal/adapters/driven/embedding/openai"
	regfile "github.com/veritas-labs/ragstore/internal/adapters/driven/registry/file"
	"github.com/veritas-labs/ragstore/internal/adapters/driven/storage/sqlite"
	"github.com/veritas-labs/ragstore/internal/adapters/driving/cli"
	"github.com/veritas-labs/ragstore/internal/chunker"
	"github.com/veritas-labs/ragstore/internal/converter"
	"github.com/veritas-labs/ragstore/internal/core/ports/driven"
	"github.com/veritas-labs/ragstore/internal/core/services"
	"github.com/veritas-labs/ragstore/internal/parsers/archive"
)

func main() {
	// Optional .env for API keys and overrides.
	_ = godotenv.Load()

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := configfile.Load(os.Getenv("RAGSTORE_CONFIG"))
	if err != nil {
		return err
	}

	dataDir, err := cfg.DataDir()
	if err != nil {
		return err
	}

	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return fmt.Errorf("opening vector store: %w", err)
	}
	defer store.Close()

	registry, err := regfile.NewRegistry(filepath.Join(dataDir, "registry.json"))
	if err != nil {
		return fmt.Errorf("opening document registry: %w", err)
	}

	backend, err := newEmbedder(cfg)
	if err != nil {
		return err
	}

	embedder, err := services.NewEmbeddingService(ctx, backend)
	if err != nil {
		return fmt.Errorf("embedding backend unavailable: %w", err)
	}

	chk, err := chunker.New(cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap)
	if err != nil {
		return err
	}

	runner := command.New(0)
	extractor := converter.New(runner, convert.NewLibreOffice(runner), archive.Limits{
		MaxFileCount:        cfg.Archive.MaxFileCount,
		MaxUncompressedSize: cfg.Archive.MaxUncompressedSize,
		MaxCompressionRatio: cfg.Archive.MaxCompressionRatio,
	})

	retriever := services.NewRetriever(embedder, store, cfg.Search.SimilarityThreshold)
	manager := services.NewManager(extractor, chk, embedder, store, registry, retriever)

	cli.SetKnowledgeBase(manager)
	return cli.Execute()
}

// newEmbedder builds the configured embedding backend.
func newEmbedder(cfg configfile.Config) (driven.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "openai":
		return openai.NewClient(openai.Config{
			APIKey:     os.Getenv("OPENAI_API_KEY"),
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
		})
	default:
		return ollama.NewClient(ollama.Config{
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
		}), nil
	}
}
