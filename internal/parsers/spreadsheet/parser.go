package spreadsheet

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/veritas-labs/ragstore/internal/core/domain"
	"github.com/veritas-labs/ragstore/internal/core/ports/driven"
	"github.com/veritas-labs/ragstore/internal/logger"
)

// Parser extracts plain text from .xlsx and .xls spreadsheets.
// Legacy .xls files are converted to .xlsx by the office converter
// first, then read through the same OOXML path.
type Parser struct {
	converter driven.OfficeConverter
}

// New creates a spreadsheet parser. The converter may be nil, in which
// case .xls files fail with a conversion error naming the remedy.
func New(converter driven.OfficeConverter) *Parser {
	return &Parser{converter: converter}
}

// ExtractText reads the workbook and serialises it to text.
func (p *Parser) ExtractText(ctx context.Context, path string) (string, error) {
	wb, err := p.Read(ctx, path)
	if err != nil {
		return "", err
	}
	return wb.Text(), nil
}

// Read decodes the workbook at path, converting legacy formats first.
func (p *Parser) Read(ctx context.Context, path string) (*Workbook, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return ReadXLSX(path)

	case ".xls":
		return p.readLegacy(ctx, path)

	default:
		return nil, fmt.Errorf("%w: expected .xls or .xlsx, got %s", domain.ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// readLegacy converts a .xls file into a temporary .xlsx and reads that.
// The temporary directory is removed on every outcome.
func (p *Parser) readLegacy(ctx context.Context, path string) (*Workbook, error) {
	if p.converter == nil {
		return nil, fmt.Errorf("%w: no converter available for .xls files; install LibreOffice (soffice)", domain.ErrConversion)
	}

	tmpDir, err := os.MkdirTemp("", "xls2xlsx_"+uuid.NewString()[:8]+"_")
	if err != nil {
		return nil, fmt.Errorf("creating conversion dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	logger.Info("spreadsheet: converting %s via %s", filepath.Base(path), p.converter.Name())
	converted, err := p.converter.Convert(ctx, path, tmpDir, "xlsx")
	if err != nil {
		return nil, err
	}

	return ReadXLSX(converted)
}
