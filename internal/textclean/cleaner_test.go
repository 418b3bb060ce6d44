package textclean

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean_EmptyInput(t *testing.T) {
	assert.Equal(t, "", Clean("", false))
	assert.Equal(t, "", Clean("", true))
}

func TestClean_StripsControlChars(t *testing.T) {
	in := "hello\x01\x02 world\x7f and more text here"
	out := Clean(in, false)
	assert.Equal(t, "hello world and more text here", out)
}

func TestClean_KeepsTabsAndNewlines(t *testing.T) {
	in := "first line of text\nsecond line\tof text"
	out := Clean(in, false)
	assert.Contains(t, out, "\n")
	assert.Contains(t, out, "\t")
}

func TestClean_NormalisesLineEndings(t *testing.T) {
	in := "line one goes here\r\nline two goes here\rline three goes here"
	out := Clean(in, false)
	assert.NotContains(t, out, "\r")
	assert.Equal(t, 3, len(strings.Split(out, "\n")))
}

func TestClean_CollapsesWhitespace(t *testing.T) {
	in := "too    many   spaces here\n\n\n\n\nand paragraphs"
	out := Clean(in, false)
	assert.Equal(t, "too many spaces here\n\nand paragraphs", out)
}

func TestClean_DropsGarbageLines(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{name: "too short", line: "ab"},
		{name: "mostly symbols", line: "a ###%%%@@@***!!!???^^^"},
		{name: "single repeated char", line: "-----------"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := "real sentence with words\n" + tc.line + "\nanother real sentence"
			out := Clean(in, false)
			assert.NotContains(t, out, tc.line)
			assert.Contains(t, out, "real sentence with words")
		})
	}
}

func TestClean_Aggressive(t *testing.T) {
	in := "plain readable sentence\n12345 678 90123 456789\n+++ a +++ b +++ c +++"
	out := Clean(in, true)
	assert.Equal(t, "plain readable sentence", out)
}

func TestClean_Deterministic(t *testing.T) {
	in := "some   text\x00 with \r\n artefacts\n\n\n\nhere"
	assert.Equal(t, Clean(in, false), Clean(in, false))
}

func TestIsUsable(t *testing.T) {
	long := strings.Repeat("meaningful words here ", 10)

	assert.True(t, IsUsable(long, 50))
	assert.False(t, IsUsable("", 50))
	assert.False(t, IsUsable("short", 50))
	// Long enough but nearly no letters.
	assert.False(t, IsUsable(strings.Repeat("1234567890 ", 20), 50))
	// Default threshold applies when minLength <= 0.
	assert.False(t, IsUsable("tiny", 0))
	assert.True(t, IsUsable(long, 0))
}

func TestPreview(t *testing.T) {
	in := "one\n\ntwo\nthree\nfour\nfive\nsix\nseven"
	out := Preview(in, 3)
	assert.Contains(t, out, "one")
	assert.Contains(t, out, "three")
	assert.NotContains(t, out, "seven")
	assert.True(t, strings.HasSuffix(out, "..."))
}
