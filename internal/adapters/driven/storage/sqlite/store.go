// Package sqlite persists chunks and their embedding vectors in a
// SQLite database. Similarity search is an exact brute-force scan over
// all stored vectors; at the scale this store targets that is both
// simple and fast enough.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/veritas-labs/ragstore/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/veritas-labs/ragstore/internal/core/domain"
	"github.com/veritas-labs/ragstore/internal/core/ports/driven"
	"github.com/veritas-labs/ragstore/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store is a SQLite-backed vector store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the vector database under dataDir.
// If dataDir is empty, defaults to ~/.ragstore/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".ragstore", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "vectors.db")

	// WAL mode lets reads proceed concurrently with writes.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// Add upserts chunks into the store. Chunks without an embedding are
// skipped with a warning, not an error, so a mixed batch does not fail
// wholesale.
func (s *Store) Add(ctx context.Context, chunks []*domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (chunk_id, doc_id, text, position, page, embedding, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(chunk_id) DO UPDATE SET
			doc_id = excluded.doc_id,
			text = excluded.text,
			position = excluded.position,
			page = excluded.page,
			embedding = excluded.embedding,
			metadata = excluded.metadata
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	stored := 0
	for _, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			logger.Warn("Skipping chunk %s: no embedding", chunk.ID)
			continue
		}

		metadataJSON, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling metadata for %s: %w", chunk.ID, err)
		}

		var page sql.NullInt64
		if chunk.Page != nil {
			page = sql.NullInt64{Int64: int64(*chunk.Page), Valid: true}
		}

		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.DocID, chunk.Text,
			chunk.Position, page, float32SliceToBytes(chunk.Embedding), string(metadataJSON)); err != nil {
			return fmt.Errorf("inserting chunk %s: %w", chunk.ID, err)
		}
		stored++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}

	logger.Debug("Stored %d of %d chunks", stored, len(chunks))
	return nil
}

// Search scans every stored vector, scores it against the query and
// returns the topK best matches ordered by descending similarity with
// chunk_id as the tie-break, so identical queries are deterministic.
// filter restricts candidates to rows whose metadata contains every
// given key/value pair.
func (s *Store) Search(ctx context.Context, query []float32, topK int, filter map[string]any) ([]domain.SearchResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT chunk_id, doc_id, text, position, page, embedding, metadata FROM chunks
	`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var results []domain.SearchResult
	for rows.Next() {
		var (
			chunkID, docID, text string
			position             int
			page                 sql.NullInt64
			embeddingBlob        []byte
			metadataJSON         string
		)
		if err := rows.Scan(&chunkID, &docID, &text, &position, &page, &embeddingBlob, &metadataJSON); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}

		var metadata map[string]any
		if err := json.Unmarshal([]byte(metadataJSON), &metadata); err != nil {
			return nil, fmt.Errorf("unmarshalling metadata for %s: %w", chunkID, err)
		}
		if !matchesFilter(metadata, filter) {
			continue
		}

		result := domain.SearchResult{
			ChunkID:    chunkID,
			DocID:      docID,
			Text:       text,
			Similarity: cosineSimilarity(query, bytesToFloat32Slice(embeddingBlob)),
			Position:   position,
			Metadata:   metadata,
		}
		if page.Valid {
			p := int(page.Int64)
			result.Page = &p
		}
		if source, ok := metadata["source"].(string); ok {
			result.SourceDoc = source
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].ChunkID < results[j].ChunkID
	})
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}

	return results, nil
}

// DeleteByDoc removes every chunk belonging to docID. Deleting a
// document with no chunks is a no-op.
func (s *Store) DeleteByDoc(ctx context.Context, docID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM chunks WHERE doc_id = ?", docID)
	if err != nil {
		return fmt.Errorf("deleting chunks for %s: %w", docID, err)
	}
	if n, err := res.RowsAffected(); err == nil {
		logger.Debug("Deleted %d chunks for %s", n, docID)
	}
	return nil
}

// Clear removes all chunks.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM chunks"); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}
	return nil
}

// Count returns the number of stored chunks.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return count, nil
}

// matchesFilter reports whether metadata contains every key/value pair
// in filter (AND semantics, equality only). Numeric values are compared
// as float64 since JSON round-trips all numbers through that type.
func matchesFilter(metadata, filter map[string]any) bool {
	for key, want := range filter {
		got, ok := metadata[key]
		if !ok {
			return false
		}
		if normalizeNumber(got) != normalizeNumber(want) {
			return false
		}
	}
	return true
}

func normalizeNumber(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	default:
		return v
	}
}

// cosineSimilarity scores two vectors on a [0,1] scale: the raw cosine
// distance d in [0,2] maps through 1 - d/2, so an identical vector
// scores 1 and an opposite vector 0. A zero-magnitude vector on either
// side scores 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	distance := 1 - cos
	return 1 - distance/2
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
