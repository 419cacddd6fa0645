package token

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Span is a source location in the wikitext, resolved from a Range.
type Span struct {
	Offset int // Byte offset in the source
	Line   int // 1-based line number
	Column int // 1-based column number (in runes, not bytes)
	Length int // Length in bytes
}

// Locate resolves r against src. Offsets outside src are clamped.
func Locate(src string, r Range) Span {
	start := min(max(r.Start, 0), len(src))
	end := min(max(r.End, start), len(src))

	line := 1 + strings.Count(src[:start], "\n")
	lineStart := strings.LastIndexByte(src[:start], '\n') + 1
	return Span{
		Offset: start,
		Line:   line,
		Column: 1 + utf8.RuneCountInString(src[lineStart:start]),
		Length: end - start,
	}
}

// String returns the location as line:column.
func (s Span) String() string {
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// SourceLine returns the line of src that contains s, without its line terminator.
func (s Span) SourceLine(src string) string {
	off := min(s.Offset, len(src))
	start := strings.LastIndexByte(src[:off], '\n') + 1
	end := strings.IndexByte(src[off:], '\n')
	if end < 0 {
		return src[start:]
	}
	return strings.TrimSuffix(src[start:off+end], "\r")
}
