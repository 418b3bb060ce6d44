package cli

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritas-labs/ragstore/internal/core/domain"
	"github.com/veritas-labs/ragstore/internal/core/ports/driving"
)

// fakeKB records calls and returns canned data.
type fakeKB struct {
	docs      []domain.Document
	results   []domain.SearchResult
	stats     driving.Stats
	addErr    error
	deletedID string
	cleared   bool
	lastQuery domain.SearchQuery
}

func (f *fakeKB) AddDocument(_ context.Context, path, docID string, metadata map[string]any) (domain.Document, error) {
	if f.addErr != nil {
		return domain.Document{}, f.addErr
	}
	return domain.NewDocument(docID, path, 42, 3, metadata), nil
}

func (f *fakeKB) Search(_ context.Context, query domain.SearchQuery) ([]domain.SearchResult, error) {
	f.lastQuery = query
	return f.results, nil
}

func (f *fakeKB) GetDocument(_ context.Context, docID string) (domain.Document, error) {
	for _, doc := range f.docs {
		if doc.ID == docID {
			return doc, nil
		}
	}
	return domain.Document{}, fmt.Errorf("%w: document %q", domain.ErrNotFound, docID)
}

func (f *fakeKB) ListDocuments(_ context.Context) ([]domain.Document, error) {
	return f.docs, nil
}

func (f *fakeKB) DeleteDocument(_ context.Context, docID string) error {
	f.deletedID = docID
	return nil
}

func (f *fakeKB) ClearAll(_ context.Context) error {
	f.cleared = true
	return nil
}

func (f *fakeKB) Stats(_ context.Context) (driving.Stats, error) {
	return f.stats, nil
}

// execute runs the root command with args and returns its combined output.
func execute(t *testing.T, kb driving.KnowledgeBase, args ...string) (string, error) {
	t.Helper()
	SetKnowledgeBase(kb)
	t.Cleanup(func() { SetKnowledgeBase(nil) })

	// Flags persist between invocations in the same process.
	searchTopK = 0
	searchThreshold = -1
	searchFilter = nil
	searchJSON = false
	addDocID = ""
	addMetadata = nil
	listJSON = false
	clearForce = false

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestSearchCommand(t *testing.T) {
	page := 2
	kb := &fakeKB{results: []domain.SearchResult{
		{ChunkID: "rep_chunk_0", DocID: "rep", Text: "quarterly revenue grew",
			Similarity: 0.91, SourceDoc: "report.pdf", Page: &page, Position: 0},
	}}

	out, err := execute(t, kb, "search", "revenue growth", "--top-k", "3", "--threshold", "0.5")
	require.NoError(t, err)

	assert.Equal(t, "revenue growth", kb.lastQuery.Text)
	assert.Equal(t, 3, kb.lastQuery.TopK)
	assert.InDelta(t, 0.5, kb.lastQuery.Threshold, 1e-9)
	assert.Contains(t, out, "report.pdf")
	assert.Contains(t, out, "0.910")
	assert.Contains(t, out, "page=2")
}

func TestSearchCommand_Filter(t *testing.T) {
	kb := &fakeKB{}
	_, err := execute(t, kb, "search", "q", "--filter", "author=doe", "--filter", "year=2024")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"author": "doe", "year": "2024"}, kb.lastQuery.Filter)
}

func TestSearchCommand_DefaultThresholdPassesThrough(t *testing.T) {
	kb := &fakeKB{}
	_, err := execute(t, kb, "search", "q")
	require.NoError(t, err)
	// Negative means "retriever picks the configured default".
	assert.InDelta(t, -1, kb.lastQuery.Threshold, 1e-9)
}

func TestSearchCommand_NoResults(t *testing.T) {
	out, err := execute(t, &fakeKB{}, "search", "nothing matches")
	require.NoError(t, err)
	assert.Contains(t, out, "No results")
}

func TestSearchCommand_InvalidFilter(t *testing.T) {
	_, err := execute(t, &fakeKB{}, "search", "q", "--filter", "missing-equals")
	require.Error(t, err)
}

func TestListCommand(t *testing.T) {
	kb := &fakeKB{docs: []domain.Document{
		domain.NewDocument("alpha", "alpha.txt", 10, 1, nil),
		domain.NewDocument("beta", "beta.pdf", 20, 2, nil),
	}}

	out, err := execute(t, kb, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "2 document(s)")
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "beta.pdf")
}

func TestGetCommand_NotFound(t *testing.T) {
	_, err := execute(t, &fakeKB{}, "get", "ghost")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteCommand(t *testing.T) {
	kb := &fakeKB{}
	out, err := execute(t, kb, "delete", "alpha")
	require.NoError(t, err)
	assert.Equal(t, "alpha", kb.deletedID)
	assert.Contains(t, out, "Deleted")
}

func TestClearCommand_RequiresForceOrConfirmation(t *testing.T) {
	kb := &fakeKB{}
	rootCmd.SetIn(bytes.NewBufferString("no\n"))
	out, err := execute(t, kb, "clear")
	require.NoError(t, err)
	assert.False(t, kb.cleared)
	assert.Contains(t, out, "Aborted")

	_, err = execute(t, kb, "clear", "--force")
	require.NoError(t, err)
	assert.True(t, kb.cleared)
}

func TestStatsCommand(t *testing.T) {
	kb := &fakeKB{stats: driving.Stats{
		DocumentCount:       4,
		ChunkCount:          120,
		EmbeddingDim:        768,
		EmbeddingModel:      "ollama/nomic-embed-text",
		SimilarityThreshold: 0.3,
	}}

	out, err := execute(t, kb, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Documents:  4")
	assert.Contains(t, out, "Chunks:     120")
	assert.Contains(t, out, "ollama/nomic-embed-text")
}

func TestNoServiceConfigured(t *testing.T) {
	_, err := execute(t, nil, "search", "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestDefaultDocID(t *testing.T) {
	assert.Equal(t, "annual_report_2024", defaultDocID("/tmp/annual report (2024).pdf"))
	assert.Equal(t, "notes", defaultDocID("notes.txt"))
}
