// Package convert provides the LibreOffice-backed office converter used
// for legacy .doc and .xls inputs.
package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/veritas-labs/ragstore/internal/core/domain"
	"github.com/veritas-labs/ragstore/internal/core/ports/driven"
	"github.com/veritas-labs/ragstore/internal/logger"
)

var _ driven.OfficeConverter = (*LibreOffice)(nil)

// LibreOffice converts documents by invoking soffice headlessly.
type LibreOffice struct {
	runner driven.CommandRunner
}

// NewLibreOffice creates the converter around a command runner.
func NewLibreOffice(runner driven.CommandRunner) *LibreOffice {
	return &LibreOffice{runner: runner}
}

// Name identifies the backend in error messages.
func (l *LibreOffice) Name() string { return "libreoffice" }

// Convert runs soffice --convert-to and returns the path of the file it
// produced. soffice writes the output next to --outdir using the input
// file's stem, and exits zero even on some failures, so the produced
// file is verified on disk before returning.
func (l *LibreOffice) Convert(ctx context.Context, inputPath, outDir, targetFormat string) (string, error) {
	out, err := l.runner.Run(ctx, "soffice",
		"--headless", "--convert-to", targetFormat, "--outdir", outDir, inputPath)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("%w: soffice not installed. %s", domain.ErrConversion, InstallInstructions())
		}
		return "", fmt.Errorf("%w: soffice failed for %s: %v", domain.ErrConversion, inputPath, err)
	}
	logger.Debug("soffice: %s", strings.TrimSpace(string(out)))

	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	produced := filepath.Join(outDir, stem+"."+targetFormat)
	if _, statErr := os.Stat(produced); statErr != nil {
		return "", fmt.Errorf("%w: soffice produced no output for %s", domain.ErrConversion, inputPath)
	}

	return produced, nil
}

// InstallInstructions tells the user how to get a conversion backend.
func InstallInstructions() string {
	return "Install LibreOffice: 'brew install --cask libreoffice' (macOS) or 'apt install libreoffice' (Debian/Ubuntu)"
}
