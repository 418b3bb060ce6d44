// Package docx extracts text from OOXML word documents using only
// generic ZIP and XML facilities.
package docx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/veritas-labs/ragstore/internal/core/domain"
	"github.com/veritas-labs/ragstore/internal/logger"
)

// Parser extracts plain text from .docx files.
type Parser struct{}

// New creates a DOCX parser.
func New() *Parser {
	return &Parser{}
}

// ExtractText opens the document as a ZIP container and extracts the
// text content of word/document.xml, one line per paragraph.
func (p *Parser) ExtractText(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrNotFound, path)
	}

	reader, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s is not a valid docx container: %v", domain.ErrInvalidInput, path, err)
	}
	defer reader.Close()

	content, err := extractDocumentText(&reader.Reader)
	if err != nil {
		return "", err
	}

	logger.Debug("docx: extracted %d bytes from %s", len(content), path)
	return content, nil
}

// extractDocumentText extracts text from word/document.xml.
func extractDocumentText(reader *zip.Reader) (string, error) {
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("%w: opening word/document.xml: %v", domain.ErrInvalidInput, err)
		}

		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("%w: reading word/document.xml: %v", domain.ErrInvalidInput, err)
		}

		return parseDocumentXML(content)
	}
	// A container without a document part yields no text; valid but empty.
	return "", nil
}

// documentXML represents the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

// parseDocumentXML extracts text content from the document XML.
func parseDocumentXML(content []byte) (string, error) {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return "", fmt.Errorf("%w: malformed document XML: %v", domain.ErrInvalidInput, err)
	}

	var result strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			result.WriteString("\n")
		}
		for _, r := range para.Runs {
			for _, text := range r.Text {
				result.WriteString(text.Content)
			}
		}
	}

	return strings.TrimSpace(result.String()), nil
}
