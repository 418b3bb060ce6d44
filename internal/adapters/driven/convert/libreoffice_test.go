package convert

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritas-labs/ragstore/internal/core/domain"
)

// mockRunner records the invocation and optionally creates the output
// file soffice would have written.
type mockRunner struct {
	gotName string
	gotArgs []string
	create  bool
	err     error
}

func (m *mockRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	m.gotName = name
	m.gotArgs = args
	if m.err != nil {
		return nil, m.err
	}
	if m.create {
		// --outdir is args[4], input path is args[5]
		outDir, input := args[4], args[5]
		stem := filepath.Base(input)
		stem = stem[:len(stem)-len(filepath.Ext(stem))]
		target := args[2]
		if err := os.WriteFile(filepath.Join(outDir, stem+"."+target), []byte("converted"), 0o600); err != nil {
			return nil, err
		}
	}
	return []byte("convert ok"), nil
}

func TestConvert_Success(t *testing.T) {
	runner := &mockRunner{create: true}
	outDir := t.TempDir()

	produced, err := NewLibreOffice(runner).Convert(context.Background(), "/docs/report.xls", outDir, "xlsx")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "report.xlsx"), produced)
	assert.Equal(t, "soffice", runner.gotName)
	assert.Equal(t, []string{"--headless", "--convert-to", "xlsx", "--outdir", outDir, "/docs/report.xls"}, runner.gotArgs)

	content, err := os.ReadFile(produced)
	require.NoError(t, err)
	assert.Equal(t, "converted", string(content))
}

func TestConvert_ToolNotInstalled(t *testing.T) {
	runner := &mockRunner{err: exec.ErrNotFound}

	_, err := NewLibreOffice(runner).Convert(context.Background(), "/docs/a.doc", t.TempDir(), "docx")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConversion)
	assert.Contains(t, err.Error(), "LibreOffice")
}

func TestConvert_NoOutputProduced(t *testing.T) {
	// Runner succeeds but never writes the converted file.
	runner := &mockRunner{create: false}

	_, err := NewLibreOffice(runner).Convert(context.Background(), "/docs/a.doc", t.TempDir(), "docx")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConversion)
	assert.Contains(t, err.Error(), "no output")
}
