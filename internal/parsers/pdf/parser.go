// Package pdf extracts text from PDF documents by shelling out to
// pdftotext (poppler). The external binary is the only practical way to
// handle the breadth of real-world PDFs without a heavyweight library.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/veritas-labs/ragstore/internal/core/domain"
	"github.com/veritas-labs/ragstore/internal/core/ports/driven"
	"github.com/veritas-labs/ragstore/internal/logger"
)

// Parser extracts plain text from PDF files.
type Parser struct {
	runner driven.CommandRunner
}

// New creates a PDF parser using the given command runner.
func New(runner driven.CommandRunner) *Parser {
	return &Parser{runner: runner}
}

// ExtractText runs pdftotext over the file and returns its output.
// Page breaks (form feeds) are preserved so callers can attribute
// chunks to pages.
func (p *Parser) ExtractText(ctx context.Context, path string) (string, error) {
	// -layout keeps column structure readable; "-" writes to stdout.
	out, err := p.runner.Run(ctx, "pdftotext", "-layout", "-enc", "UTF-8", path, "-")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("%w: pdftotext not installed. %s", domain.ErrConversion, InstallInstructions())
		}
		return "", fmt.Errorf("%w: pdftotext failed for %s: %v", domain.ErrConversion, path, err)
	}

	text := string(out)
	logger.Debug("pdftotext extracted %d bytes from %s", len(text), path)
	return text, nil
}

// ExtractPages splits extracted text on form feeds into per-page text.
// Page numbers are 1-based.
func (p *Parser) ExtractPages(ctx context.Context, path string) ([]string, error) {
	text, err := p.ExtractText(ctx, path)
	if err != nil {
		return nil, err
	}
	pages := strings.Split(text, "\f")
	// pdftotext terminates the last page with a form feed too.
	if len(pages) > 0 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}
	return pages, nil
}

// InstallInstructions tells the user how to get pdftotext.
func InstallInstructions() string {
	return "Install poppler: 'brew install poppler' (macOS) or 'apt install poppler-utils' (Debian/Ubuntu)"
}
