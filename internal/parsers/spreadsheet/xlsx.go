// Package spreadsheet reads OOXML workbooks (.xlsx) using only generic
// ZIP and XML facilities, and converts legacy .xls files via an external
// office converter before re-running the same reader.
//
// A workbook is decoded into ordered sheets of dense rows. Cell values
// keep their native types: string, int64, float64, bool, or nil for
// unreferenced cells.
package spreadsheet

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/veritas-labs/ragstore/internal/core/domain"
	"github.com/veritas-labs/ragstore/internal/logger"
)

// Sheet is one worksheet: an ordered list of dense rows.
type Sheet struct {
	Name string
	Rows [][]any
}

// Workbook is an ordered collection of sheets.
type Workbook struct {
	Sheets []Sheet
}

// cellRefPattern matches an A1-style cell reference.
var cellRefPattern = regexp.MustCompile(`^([A-Z]+)(\d+)$`)

// ReadXLSX decodes a workbook from an OOXML container.
func ReadXLSX(path string) (*Workbook, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s is not a valid xlsx container: %v", domain.ErrInvalidInput, path, err)
	}
	defer reader.Close()

	parts := make(map[string]*zip.File, len(reader.File))
	for _, f := range reader.File {
		parts[f.Name] = f
	}

	shared, err := readSharedStrings(parts)
	if err != nil {
		return nil, err
	}

	sheetRefs, err := readWorkbookSheets(parts)
	if err != nil {
		return nil, err
	}

	wb := &Workbook{Sheets: make([]Sheet, 0, len(sheetRefs))}
	for _, ref := range sheetRefs {
		part, ok := parts[ref.path]
		if !ok {
			logger.Warn("spreadsheet: sheet %q points at missing part %s, skipping", ref.name, ref.path)
			continue
		}
		rows, err := readSheet(part, shared)
		if err != nil {
			return nil, fmt.Errorf("reading sheet %q: %w", ref.name, err)
		}
		wb.Sheets = append(wb.Sheets, Sheet{Name: ref.name, Rows: rows})
		logger.Debug("spreadsheet: read sheet %q (%d rows)", ref.name, len(rows))
	}

	return wb, nil
}

// Text serialises the workbook: a header line per sheet followed by one
// tab-joined line per row. Nil cells become empty strings.
func (w *Workbook) Text() string {
	var b strings.Builder
	for i, sheet := range w.Sheets {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(fmt.Sprintf("=== Sheet: %s ===", sheet.Name))
		for _, row := range sheet.Rows {
			cells := make([]string, len(row))
			for j, cell := range row {
				cells[j] = cellString(cell)
			}
			b.WriteString("\n")
			b.WriteString(strings.Join(cells, "\t"))
		}
	}
	return b.String()
}

func cellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// ColumnIndex decodes column letters to a 1-based index via base-26
// arithmetic: A=1, Z=26, AA=27.
func ColumnIndex(letters string) int {
	n := 0
	for _, ch := range letters {
		n = n*26 + int(ch-'A'+1)
	}
	return n
}

// parseCellRef splits an A1-style reference into (row, column), both
// 1-based. Returns (0, 0) for malformed references.
func parseCellRef(ref string) (row, col int) {
	m := cellRefPattern.FindStringSubmatch(ref)
	if m == nil {
		return 0, 0
	}
	row, _ = strconv.Atoi(m[2])
	return row, ColumnIndex(m[1])
}

// ---- XML part structures ----

// inlineText covers both <t> runs and <r><t> run-lists; run text is
// concatenated per entry.
type inlineText struct {
	Texts []xmlText `xml:"t"`
	Runs  []struct {
		Text xmlText `xml:"t"`
	} `xml:"r"`
}

type xmlText struct {
	Value string `xml:",chardata"`
}

func (it *inlineText) join() string {
	if len(it.Texts) > 0 {
		var b strings.Builder
		for _, t := range it.Texts {
			b.WriteString(t.Value)
		}
		return b.String()
	}
	var b strings.Builder
	for _, r := range it.Runs {
		b.WriteString(r.Text.Value)
	}
	return b.String()
}

type sharedStringsXML struct {
	Items []inlineText `xml:"si"`
}

type workbookXML struct {
	Sheets struct {
		Sheet []struct {
			Name  string `xml:"name,attr"`
			RelID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
		} `xml:"sheet"`
	} `xml:"sheets"`
}

type relationshipsXML struct {
	Rels []struct {
		ID     string `xml:"Id,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

type worksheetXML struct {
	SheetData struct {
		Rows []struct {
			Cells []cellXML `xml:"c"`
		} `xml:"row"`
	} `xml:"sheetData"`
}

type cellXML struct {
	Ref    string      `xml:"r,attr"`
	Type   string      `xml:"t,attr"`
	Value  *string     `xml:"v"`
	Inline *inlineText `xml:"is"`
}

// ---- part readers ----

func decodePart(part *zip.File, out any) error {
	rc, err := part.Open()
	if err != nil {
		return fmt.Errorf("%w: opening %s: %v", domain.ErrInvalidInput, part.Name, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", domain.ErrInvalidInput, part.Name, err)
	}
	if err := xml.Unmarshal(content, out); err != nil {
		return fmt.Errorf("%w: malformed %s: %v", domain.ErrInvalidInput, part.Name, err)
	}
	return nil
}

// readSharedStrings parses xl/sharedStrings.xml into an ordered table.
// The part is optional; a workbook without shared strings is fine.
func readSharedStrings(parts map[string]*zip.File) ([]string, error) {
	part, ok := parts["xl/sharedStrings.xml"]
	if !ok {
		return nil, nil
	}

	var sst sharedStringsXML
	if err := decodePart(part, &sst); err != nil {
		return nil, err
	}

	table := make([]string, len(sst.Items))
	for i, item := range sst.Items {
		table[i] = item.join()
	}
	return table, nil
}

type sheetRef struct {
	name string
	path string
}

// readWorkbookSheets returns the ordered (sheet name, part path) list,
// resolving relationship IDs through xl/_rels/workbook.xml.rels. Sheets
// whose relationship cannot be resolved are skipped with a warning.
func readWorkbookSheets(parts map[string]*zip.File) ([]sheetRef, error) {
	part, ok := parts["xl/workbook.xml"]
	if !ok {
		return nil, fmt.Errorf("%w: container has no xl/workbook.xml", domain.ErrInvalidInput)
	}

	var wb workbookXML
	if err := decodePart(part, &wb); err != nil {
		return nil, err
	}

	rels := map[string]string{}
	if relsPart, ok := parts["xl/_rels/workbook.xml.rels"]; ok {
		var r relationshipsXML
		if err := decodePart(relsPart, &r); err != nil {
			return nil, err
		}
		for _, rel := range r.Rels {
			rels[rel.ID] = rel.Target
		}
	}

	refs := make([]sheetRef, 0, len(wb.Sheets.Sheet))
	for _, sheet := range wb.Sheets.Sheet {
		target, ok := rels[sheet.RelID]
		if !ok || target == "" {
			logger.Warn("spreadsheet: no relationship for sheet %q (%s), skipping", sheet.Name, sheet.RelID)
			continue
		}
		refs = append(refs, sheetRef{name: sheet.Name, path: normalizeSheetPath(target)})
	}
	return refs, nil
}

// normalizeSheetPath roots a relationship target at xl/.
func normalizeSheetPath(target string) string {
	target = strings.TrimPrefix(target, "/")
	if !strings.HasPrefix(target, "xl/") {
		target = "xl/" + target
	}
	return target
}

// readSheet decodes one worksheet part into dense rows: each row spans
// column 1 to the maximum referenced column, nil for unreferenced cells.
func readSheet(part *zip.File, shared []string) ([][]any, error) {
	var ws worksheetXML
	if err := decodePart(part, &ws); err != nil {
		return nil, err
	}

	rows := make([][]any, 0, len(ws.SheetData.Rows))
	for _, row := range ws.SheetData.Rows {
		cells := map[int]any{}
		maxCol := 0

		for _, c := range row.Cells {
			_, col := parseCellRef(c.Ref)
			if col == 0 {
				continue
			}
			cells[col] = decodeCellValue(c, shared)
			if col > maxCol {
				maxCol = col
			}
		}

		if maxCol == 0 {
			continue
		}
		dense := make([]any, maxCol)
		for col, val := range cells {
			dense[col-1] = val
		}
		rows = append(rows, dense)
	}
	return rows, nil
}

// decodeCellValue interprets a cell by its type attribute: "s" is a
// shared-string lookup, "inlineStr" an inline run-list, "b" a boolean,
// anything else numeric with a string fallback.
func decodeCellValue(c cellXML, shared []string) any {
	switch c.Type {
	case "s":
		if c.Value == nil {
			return nil
		}
		idx, err := strconv.Atoi(strings.TrimSpace(*c.Value))
		if err != nil || idx < 0 || idx >= len(shared) {
			return nil
		}
		return shared[idx]

	case "inlineStr":
		if c.Inline == nil {
			return nil
		}
		return c.Inline.join()

	case "b":
		if c.Value == nil {
			return nil
		}
		return *c.Value == "1"

	default:
		if c.Value == nil {
			return nil
		}
		return decodeNumeric(*c.Value)
	}
}

func decodeNumeric(text string) any {
	if strings.ContainsAny(text, ".eE") {
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return f
		}
		return text
	}
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return i
	}
	return text
}
