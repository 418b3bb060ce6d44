// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Embedder: Raw embedding model client (Ollama, OpenAI)
//   - VectorStore: Chunk + embedding persistence and similarity search
//   - DocumentRegistry: Durable document summary index
//
// # Boundary Interfaces
//
//   - OfficeConverter: External legacy-format conversion (.doc/.xls)
//   - CommandRunner: Subprocess execution seam, mockable in tests
package driven
