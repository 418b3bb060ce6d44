// Package parsers groups the format-specific text extractors. Each
// subpackage converts one binary format into plain text:
//
//   - pdf: shells out to pdftotext
//   - docx: reads OOXML word documents (ZIP + XML, no office library)
//   - spreadsheet: reads OOXML workbooks the same way
//   - archive: validates and safely extracts ZIP archives
//
// Parsers are dispatched by the converter package based on file extension.
package parsers
