package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

// mockEmbedder implements driven.Embedder for testing. It returns a
// fixed-dimension vector derived from the text length, so distinct
// texts get distinct non-zero vectors.
type mockEmbedder struct {
	dims      int
	pingErr   error
	embedErr  error
	batchErr  error
	gotTexts  []string // texts passed to EmbedBatch
	embedCalls  int      // number of Embed calls
	badLength bool     // return wrong-dimension vectors
}

func (m *mockEmbedder) vector(text string) []float32 {
	vec := make([]float32, m.dims)
	for i := range vec {
		vec[i] = float32(len(text) + i)
	}
	return vec
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.embedCalls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if m.badLength {
		return make([]float32, m.dims+1), nil
	}
	return m.vector(text), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.gotTexts = texts
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if m.badLength {
			out[i] = make([]float32, m.dims+1)
		} else {
			out[i] = m.vector(text)
		}
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int    { return m.dims }
func (m *mockEmbedder) ModelName() string  { return "mock-model" }
func (m *mockEmbedder) Ping(_ context.Context) error { return m.pingErr }
func (m *mockEmbedder) Close() error       { return nil }

func newTestEmbedding(t *testing.T, backend *mockEmbedder) *EmbeddingService {
	t.Helper()
	svc, err := NewEmbeddingService(context.Background(), backend)
	require.NoError(t, err)
	return svc
}

// --- Tests ---

func TestNewEmbeddingService_PingFailureIsFatal(t *testing.T) {
	backend := &mockEmbedder{dims: 4, pingErr: errors.New("connection refused")}

	_, err := NewEmbeddingService(context.Background(), backend)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mock-model")
}

func TestEmbed_EmptyTextReturnsZeroVector(t *testing.T) {
	backend := &mockEmbedder{dims: 4}
	svc := newTestEmbedding(t, backend)

	for _, text := range []string{"", "   ", "\n\t"} {
		vec, err := svc.Embed(context.Background(), text)
		require.NoError(t, err)
		assert.Equal(t, []float32{0, 0, 0, 0}, vec)
	}
	assert.Zero(t, backend.embedCalls, "backend must not be called for empty text")
}

func TestEmbed_NonEmptyText(t *testing.T) {
	svc := newTestEmbedding(t, &mockEmbedder{dims: 4})

	vec, err := svc.Embed(context.Background(), "hello")
	require.NoError(t, err)
	require.Len(t, vec, 4)
	assert.NotEqual(t, float32(0), vec[0])
}

func TestEmbed_DimensionMismatchIsAnError(t *testing.T) {
	svc := newTestEmbedding(t, &mockEmbedder{dims: 4, badLength: true})

	_, err := svc.Embed(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimensions")
}

func TestEmbedBatch_ScattersZeroVectors(t *testing.T) {
	backend := &mockEmbedder{dims: 3}
	svc := newTestEmbedding(t, backend)

	out, err := svc.EmbedBatch(context.Background(), []string{"a", "", "b"})
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.NotEqual(t, []float32{0, 0, 0}, out[0])
	assert.Equal(t, []float32{0, 0, 0}, out[1])
	assert.NotEqual(t, []float32{0, 0, 0}, out[2])

	// Only the non-empty entries reached the backend.
	assert.Equal(t, []string{"a", "b"}, backend.gotTexts)
}

func TestEmbedBatch_AllEmptySkipsBackend(t *testing.T) {
	backend := &mockEmbedder{dims: 2}
	svc := newTestEmbedding(t, backend)

	out, err := svc.EmbedBatch(context.Background(), []string{"", "  "})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, []float32{0, 0}, out[0])
	assert.Equal(t, []float32{0, 0}, out[1])
	assert.Nil(t, backend.gotTexts)
}

func TestEmbedBatch_BackendErrorPropagates(t *testing.T) {
	svc := newTestEmbedding(t, &mockEmbedder{dims: 2, batchErr: errors.New("model crashed")})

	_, err := svc.EmbedBatch(context.Background(), []string{"a"})
	assert.Error(t, err)
}
