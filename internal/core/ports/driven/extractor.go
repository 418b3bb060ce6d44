package driven

import "context"

// TextExtractor turns a file of any supported format into plain text.
// tempDir is required for formats that write intermediate files
// (archives, legacy office conversions) and is owned by the caller.
type TextExtractor interface {
	ExtractText(ctx context.Context, path, tempDir string) (string, error)

	// IsSupported reports whether the file's extension can be handled.
	IsSupported(path string) bool
}
