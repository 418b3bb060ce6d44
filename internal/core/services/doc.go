// Package services implements the driving port interfaces.
// Services contain the ingestion and retrieval logic and orchestrate
// calls to driven ports (adapters): the embedding backend, the vector
// store and the document registry.
package services
