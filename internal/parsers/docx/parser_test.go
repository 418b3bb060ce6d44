package docx

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritas-labs/ragstore/internal/core/domain"
)

// writeDocx builds a minimal .docx container on disk.
func writeDocx(t *testing.T, documentXML string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	entry, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = entry.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return path
}

const sampleDocument = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second </w:t></w:r><w:r><w:t>paragraph.</w:t></w:r></w:p>
  </w:body>
</w:document>`

func TestExtractText(t *testing.T) {
	path := writeDocx(t, sampleDocument)

	text, err := New().ExtractText(path)
	require.NoError(t, err)
	assert.Equal(t, "First paragraph.\nSecond paragraph.", text)
}

func TestExtractText_MissingFile(t *testing.T) {
	_, err := New().ExtractText("/nonexistent/file.docx")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExtractText_NotAZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.docx")
	require.NoError(t, os.WriteFile(path, []byte("plain text, not a zip"), 0o600))

	_, err := New().ExtractText(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestExtractText_NoDocumentPart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	w := zip.NewWriter(f)
	entry, err := w.Create("other.xml")
	require.NoError(t, err)
	_, err = entry.Write([]byte("<x/>"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	text, err := New().ExtractText(path)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestExtractText_MalformedXML(t *testing.T) {
	path := writeDocx(t, "<w:document><unclosed")

	_, err := New().ExtractText(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
