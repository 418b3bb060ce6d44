package driven

import "context"

// OfficeConverter converts legacy office formats (.doc, .xls) into their
// OOXML equivalents using an external tool. The core depends only on this
// capability; which tool is installed is an adapter concern.
//
// Conversion is timeout-bounded. A timed-out or failed conversion is a
// normal recoverable failure surfaced as domain.ErrConversion.
type OfficeConverter interface {
	// Convert writes a converted copy of inputPath into outDir and
	// returns the path of the produced file.
	Convert(ctx context.Context, inputPath, outDir, targetFormat string) (string, error)

	// Name identifies the conversion backend for error reporting.
	Name() string
}

// CommandRunner executes an external command and returns its combined
// output. It exists so parsers and converters that shell out can be
// tested without the external tool installed.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}
