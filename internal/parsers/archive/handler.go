// Package archive validates and safely extracts ZIP archives. Every
// archive is checked for path traversal, per-member compression ratio
// and total uncompressed size before a single byte is written; nested
// directory structure is discarded on extraction so member names can
// never escape the destination directory.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/veritas-labs/ragstore/internal/core/domain"
	"github.com/veritas-labs/ragstore/internal/logger"
)

// Default extraction limits.
const (
	DefaultMaxFileCount        = 100
	DefaultMaxUncompressedSize = 100 * 1024 * 1024 // 100 MB
	DefaultMaxCompressionRatio = 100.0
)

// Limits bounds what an archive is allowed to contain.
type Limits struct {
	MaxFileCount        int
	MaxUncompressedSize int64
	MaxCompressionRatio float64
}

// DefaultLimits returns the standard extraction limits.
func DefaultLimits() Limits {
	return Limits{
		MaxFileCount:        DefaultMaxFileCount,
		MaxUncompressedSize: DefaultMaxUncompressedSize,
		MaxCompressionRatio: DefaultMaxCompressionRatio,
	}
}

// Handler validates and extracts ZIP archives within configured limits.
type Handler struct {
	limits Limits
}

// New creates a Handler. Zero or negative limit fields fall back to the
// defaults.
func New(limits Limits) *Handler {
	if limits.MaxFileCount <= 0 {
		limits.MaxFileCount = DefaultMaxFileCount
	}
	if limits.MaxUncompressedSize <= 0 {
		limits.MaxUncompressedSize = DefaultMaxUncompressedSize
	}
	if limits.MaxCompressionRatio <= 0 {
		limits.MaxCompressionRatio = DefaultMaxCompressionRatio
	}
	return &Handler{limits: limits}
}

// Validate checks the archive at path against the handler's limits
// without extracting anything. A violation rejects the whole archive.
func (h *Handler) Validate(path string) error {
	reader, err := zip.OpenReader(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return fmt.Errorf("%w: %s is not a valid zip archive: %v", domain.ErrInvalidInput, path, err)
	}
	defer reader.Close()

	return h.validateMembers(reader.File)
}

// validateMembers walks the member list enforcing, in order: member
// count, per-member name safety, per-member compression ratio, and the
// running uncompressed total. The total check aborts mid-scan so a
// bomb near the front of a large archive is caught early.
func (h *Handler) validateMembers(members []*zip.File) error {
	if len(members) > h.limits.MaxFileCount {
		return fmt.Errorf("%w: archive has %d members, limit is %d",
			domain.ErrSecurityViolation, len(members), h.limits.MaxFileCount)
	}

	var totalUncompressed int64
	for _, m := range members {
		if err := validateMemberName(m.Name); err != nil {
			return err
		}

		uncompressed := int64(m.UncompressedSize64)
		compressed := int64(m.CompressedSize64)
		if compressed > 0 {
			ratio := float64(uncompressed) / float64(compressed)
			if ratio > h.limits.MaxCompressionRatio {
				return fmt.Errorf("%w: member %q has compression ratio %.0f:1, limit is %.0f:1",
					domain.ErrSecurityViolation, m.Name, ratio, h.limits.MaxCompressionRatio)
			}
		}

		totalUncompressed += uncompressed
		if totalUncompressed > h.limits.MaxUncompressedSize {
			return fmt.Errorf("%w: uncompressed size exceeds %d bytes",
				domain.ErrSecurityViolation, h.limits.MaxUncompressedSize)
		}
	}
	return nil
}

func validateMemberName(name string) error {
	if strings.Contains(name, "..") {
		return fmt.Errorf("%w: member %q contains a parent-directory reference", domain.ErrSecurityViolation, name)
	}
	if strings.HasPrefix(name, "/") || strings.HasPrefix(name, "\\") {
		return fmt.Errorf("%w: member %q has an absolute path", domain.ErrSecurityViolation, name)
	}
	return nil
}

// ExtractSupported validates the archive and writes every member whose
// name passes isSupported into destDir, flattened to its basename.
// Directory members are skipped. Returns the written paths in archive
// order. Nothing is written if validation fails.
func (h *Handler) ExtractSupported(path, destDir string, isSupported func(name string) bool) ([]string, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s is not a valid zip archive: %v", domain.ErrInvalidInput, path, err)
	}
	defer reader.Close()

	if err := h.validateMembers(reader.File); err != nil {
		return nil, err
	}

	var extracted []string
	for _, m := range reader.File {
		if m.FileInfo().IsDir() {
			continue
		}
		if !isSupported(m.Name) {
			logger.Debug("archive: skipping unsupported member %s", m.Name)
			continue
		}

		dest := filepath.Join(destDir, filepath.Base(m.Name))
		if err := extractMember(m, dest); err != nil {
			return nil, err
		}
		extracted = append(extracted, dest)
	}

	logger.Debug("archive: extracted %d of %d members from %s", len(extracted), len(reader.File), filepath.Base(path))
	return extracted, nil
}

// extractMember writes one member to dest. The copy is capped at the
// member's declared uncompressed size; a stream that keeps producing
// past its declaration is treated as a bomb.
func extractMember(m *zip.File, dest string) error {
	rc, err := m.Open()
	if err != nil {
		return fmt.Errorf("%w: member %q is corrupted: %v", domain.ErrInvalidInput, m.Name, err)
	}
	defer rc.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("%w: writing %s: %v", domain.ErrStorage, dest, err)
	}
	defer out.Close()

	declared := int64(m.UncompressedSize64)
	written, err := io.Copy(out, io.LimitReader(rc, declared+1))
	if err != nil {
		return fmt.Errorf("%w: extracting member %q: %v", domain.ErrInvalidInput, m.Name, err)
	}
	if written > declared {
		return fmt.Errorf("%w: member %q produced more bytes than declared", domain.ErrSecurityViolation, m.Name)
	}
	return nil
}
