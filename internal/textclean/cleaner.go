// Package textclean normalises raw text extracted from binary documents.
// Extraction output is often littered with control characters, mangled
// encoding artefacts and garbage lines; cleaning happens before chunking
// so that only readable text reaches the embedding model.
package textclean

import (
	"regexp"
	"strings"
	"unicode"
)

// MinLineLength is the shortest line kept by garbage filtering.
const MinLineLength = 3

// DefaultMinUsableLength is the default threshold for IsUsable.
const DefaultMinUsableLength = 50

var (
	spaceRuns      = regexp.MustCompile(` +`)
	newlineRuns    = regexp.MustCompile(`\n\n+`)
	spaceBeforeNL  = regexp.MustCompile(` +\n`)
	spaceAfterNL   = regexp.MustCompile(`\n +`)
)

// Clean runs the full cleaning pipeline over raw extracted text:
// control-character stripping, corruption-marker replacement, whitespace
// normalisation and garbage-line removal. With aggressive set, lines that
// are mostly non-letters or mostly digits are dropped as well.
//
// Clean never fails; empty input yields an empty string. It is a pure
// function over its input.
func Clean(text string, aggressive bool) string {
	if text == "" {
		return ""
	}

	text = stripControlChars(text)
	text = replaceCorruptionMarkers(text)
	text = normalizeWhitespace(text)
	text = removeGarbageLines(text)
	if aggressive {
		text = aggressiveCleanup(text)
	}
	// Line filtering can leave fresh blank runs behind.
	text = normalizeWhitespace(text)

	return strings.TrimSpace(text)
}

// IsUsable reports whether cleaned text is worth ingesting: at least
// minLength characters after trimming and at least 10% letters. Pass
// minLength <= 0 for the default.
func IsUsable(text string, minLength int) bool {
	if minLength <= 0 {
		minLength = DefaultMinUsableLength
	}
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < minLength {
		return false
	}

	var letters, total int
	for _, r := range text {
		total++
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return total > 0 && float64(letters)/float64(total) >= 0.10
}

// Preview returns the first maxLines non-blank lines of text, with a
// trailing marker when more follow. Debug helper for the CLI.
func Preview(text string, maxLines int) string {
	lines := strings.Split(text, "\n")
	var kept []string
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		kept = append(kept, line)
		if len(kept) == maxLines {
			break
		}
	}
	preview := strings.Join(kept, "\n")
	if len(lines) > maxLines {
		preview += "\n..."
	}
	return preview
}

// stripControlChars drops code points below 32 (except tab/LF/CR), the
// C1 range 127-159, and anything outside the basic multilingual plane.
func stripControlChars(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r < 32 && r != '\t' && r != '\n' && r != '\r':
			continue
		case r >= 127 && r < 160:
			continue
		case r > 65535:
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// replaceCorruptionMarkers removes known encoding-error artefacts and
// normalises line endings to LF.
func replaceCorruptionMarkers(text string) string {
	replacer := strings.NewReplacer(
		"Ã", "", // stray mojibake marker from double-decoded UTF-8
		"\x00", "",
		"\r\n", "\n",
		"\r", "\n",
	)
	return replacer.Replace(text)
}

// normalizeWhitespace collapses space runs and excess blank lines while
// preserving paragraph breaks.
func normalizeWhitespace(text string) string {
	text = spaceRuns.ReplaceAllString(text, " ")
	text = newlineRuns.ReplaceAllString(text, "\n\n")
	text = spaceBeforeNL.ReplaceAllString(text, "\n")
	text = spaceAfterNL.ReplaceAllString(text, "\n")
	return text
}

// removeGarbageLines drops lines that carry no real content: too short,
// dominated by non-letters, or a single repeated character.
func removeGarbageLines(text string) string {
	lines := strings.Split(text, "\n")
	clean := make([]string, 0, len(lines))

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			clean = append(clean, "")
			continue
		}
		if len(trimmed) < MinLineLength {
			continue
		}

		var letters, total int
		for _, r := range line {
			total++
			if unicode.IsLetter(r) {
				letters++
			}
		}
		if letters > 0 && float64(total-letters)/float64(total) > 0.8 {
			continue
		}
		if isSingleRepeatedRune(trimmed) {
			continue
		}

		clean = append(clean, line)
	}

	return strings.Join(clean, "\n")
}

// aggressiveCleanup additionally drops lines with a letter ratio below
// 0.3 or a digit ratio above 0.5. May lose some valid data.
func aggressiveCleanup(text string) string {
	lines := strings.Split(text, "\n")
	clean := make([]string, 0, len(lines))

	for _, line := range lines {
		var letters, digits, total int
		for _, r := range line {
			total++
			if unicode.IsLetter(r) {
				letters++
			}
			if unicode.IsDigit(r) {
				digits++
			}
		}
		if total > 0 && float64(letters)/float64(total) < 0.3 {
			continue
		}
		if total > 0 && float64(digits)/float64(total) > 0.5 {
			continue
		}
		clean = append(clean, line)
	}

	return strings.Join(clean, "\n")
}

func isSingleRepeatedRune(s string) bool {
	var first rune
	for i, r := range s {
		if i == 0 {
			first = r
			continue
		}
		if r != first {
			return false
		}
	}
	return true
}
