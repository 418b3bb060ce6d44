// Package converter routes a file path to the parser matching its
// extension and returns the extracted plain text. It owns the dispatch
// table for the supported formats and the recursion through archives;
// the actual format work lives in the parser packages.
package converter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/veritas-labs/ragstore/internal/core/domain"
	"github.com/veritas-labs/ragstore/internal/core/ports/driven"
	"github.com/veritas-labs/ragstore/internal/logger"
	"github.com/veritas-labs/ragstore/internal/parsers/archive"
	"github.com/veritas-labs/ragstore/internal/parsers/docx"
	"github.com/veritas-labs/ragstore/internal/parsers/pdf"
	"github.com/veritas-labs/ragstore/internal/parsers/spreadsheet"
)

// SupportedExtensions lists the file types the converter can handle,
// in the order shown to users.
var SupportedExtensions = []string{".pdf", ".docx", ".doc", ".txt", ".zip", ".xlsx", ".xls"}

// Converter dispatches files to format parsers by extension.
type Converter struct {
	pdf     *pdf.Parser
	docx    *docx.Parser
	sheets  *spreadsheet.Parser
	archive *archive.Handler
	office  driven.OfficeConverter
}

// New wires a converter from its parsers. office may be nil, in which
// case legacy .doc and .xls files fail with a conversion error.
func New(runner driven.CommandRunner, office driven.OfficeConverter, limits archive.Limits) *Converter {
	return &Converter{
		pdf:     pdf.New(runner),
		docx:    docx.New(),
		sheets:  spreadsheet.New(office),
		archive: archive.New(limits),
		office:  office,
	}
}

// IsSupported reports whether the file's extension is in the dispatch
// table.
func (c *Converter) IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, supported := range SupportedExtensions {
		if ext == supported {
			return true
		}
	}
	return false
}

// ExtractText extracts plain text from the file at path. tempDir is
// required for .doc and .zip inputs, which write intermediate files;
// it is the caller's to create and remove. Errors are logged with file
// context and returned, never swallowed.
func (c *Converter) ExtractText(ctx context.Context, path, tempDir string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrNotFound, path)
	}

	text, err := c.dispatch(ctx, path, tempDir)
	if err != nil {
		logger.Error("extracting %s: %v", filepath.Base(path), err)
		return "", err
	}
	return text, nil
}

func (c *Converter) dispatch(ctx context.Context, path, tempDir string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return c.pdf.ExtractText(ctx, path)

	case ".docx":
		return c.docx.ExtractText(path)

	case ".doc":
		return c.extractLegacyDoc(ctx, path, tempDir)

	case ".txt":
		return readTextFile(path)

	case ".xlsx", ".xls":
		return c.sheets.ExtractText(ctx, path)

	case ".zip":
		return c.extractArchive(ctx, path, tempDir)

	default:
		return "", fmt.Errorf("%w: %s (supported: %s)",
			domain.ErrUnsupportedFormat, filepath.Ext(path), strings.Join(SupportedExtensions, ", "))
	}
}

// extractLegacyDoc converts a .doc to .docx and parses the result.
func (c *Converter) extractLegacyDoc(ctx context.Context, path, tempDir string) (string, error) {
	if c.office == nil {
		return "", fmt.Errorf("%w: no converter available for .doc files; install LibreOffice (soffice)", domain.ErrConversion)
	}
	if tempDir == "" {
		return "", fmt.Errorf("%w: a temp directory is required for .doc conversion", domain.ErrInvalidInput)
	}

	outDir, err := os.MkdirTemp(tempDir, "doc2docx_")
	if err != nil {
		return "", fmt.Errorf("creating conversion dir: %w", err)
	}

	converted, err := c.office.Convert(ctx, path, outDir, "docx")
	if err != nil {
		return "", err
	}
	return c.docx.ExtractText(converted)
}

// extractArchive validates the zip, extracts its supported members and
// concatenates their extracted bodies under per-file delimiters. An
// archive with no supported members yields empty text, not an error.
// Members are routed back through the dispatch table, so nested
// archives resolve transitively.
func (c *Converter) extractArchive(ctx context.Context, path, tempDir string) (string, error) {
	if tempDir == "" {
		return "", fmt.Errorf("%w: a temp directory is required for archive extraction", domain.ErrInvalidInput)
	}

	memberDir, err := os.MkdirTemp(tempDir, "zip_")
	if err != nil {
		return "", fmt.Errorf("creating extraction dir: %w", err)
	}

	members, err := c.archive.ExtractSupported(path, memberDir, c.IsSupported)
	if err != nil {
		return "", err
	}
	if len(members) == 0 {
		logger.Info("archive %s has no supported members", filepath.Base(path))
		return "", nil
	}

	var parts []string
	for _, member := range members {
		text, err := c.ExtractText(ctx, member, tempDir)
		if err != nil {
			return "", fmt.Errorf("member %s: %w", filepath.Base(member), err)
		}
		parts = append(parts, fmt.Sprintf("=== File: %s ===\n%s", filepath.Base(member), text))
	}
	return strings.Join(parts, "\n\n"), nil
}

// readTextFile reads a plain-text file as UTF-8, falling back to a
// Latin-1 interpretation when the bytes are not valid UTF-8.
func readTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	if utf8.Valid(data) {
		return string(data), nil
	}

	logger.Warn("%s is not valid UTF-8, decoding as Latin-1", filepath.Base(path))
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes), nil
}
