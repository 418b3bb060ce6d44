package pdf

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritas-labs/ragstore/internal/core/domain"
)

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	output []byte
	err    error
}

func (m *mockRunner) Run(_ context.Context, _ string, _ ...string) ([]byte, error) {
	return m.output, m.err
}

func TestExtractText(t *testing.T) {
	p := New(&mockRunner{output: []byte("First page.\fSecond page.\f")})

	text, err := p.ExtractText(context.Background(), "/doc.pdf")
	require.NoError(t, err)
	assert.Contains(t, text, "First page.")
	assert.Contains(t, text, "Second page.")
}

func TestExtractText_ToolMissing(t *testing.T) {
	p := New(&mockRunner{err: exec.ErrNotFound})

	_, err := p.ExtractText(context.Background(), "/doc.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConversion)
	assert.Contains(t, err.Error(), "poppler")
}

func TestExtractText_ToolFails(t *testing.T) {
	p := New(&mockRunner{err: errors.New("exit status 1")})

	_, err := p.ExtractText(context.Background(), "/doc.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConversion)
}

func TestExtractPages(t *testing.T) {
	p := New(&mockRunner{output: []byte("page one\fpage two\fpage three\f")})

	pages, err := p.ExtractPages(context.Background(), "/doc.pdf")
	require.NoError(t, err)
	require.Len(t, pages, 3)
	assert.Equal(t, "page one", pages[0])
	assert.Equal(t, "page three", pages[2])
}

func TestInstallInstructions(t *testing.T) {
	instructions := InstallInstructions()
	assert.Contains(t, instructions, "brew install poppler")
	assert.Contains(t, instructions, "apt install poppler-utils")
}
