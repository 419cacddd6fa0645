package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocate(t *testing.T) {
	src := "== Title ==\n{|\n| café || <b>x</b>\n|}"

	tests := []struct {
		name     string
		r        Range
		want     Span
		wantLine string
	}{
		{name: "start", r: Range{0, 11}, want: Span{Offset: 0, Line: 1, Column: 1, Length: 11}, wantLine: "== Title =="},
		{name: "second line", r: Range{12, 14}, want: Span{Offset: 12, Line: 2, Column: 1, Length: 2}, wantLine: "{|"},
		{name: "columns count runes", r: Range{26, 29}, want: Span{Offset: 26, Line: 3, Column: 11, Length: 3}, wantLine: "| café || <b>x</b>"},
		{name: "last line", r: Range{len(src) - 2, len(src)}, want: Span{Offset: len(src) - 2, Line: 4, Column: 1, Length: 2}, wantLine: "|}"},
		{name: "clamped", r: Range{100, 200}, want: Span{Offset: len(src), Line: 4, Column: 3, Length: 0}, wantLine: "|}"},
		{name: "reversed", r: Range{5, 2}, want: Span{Offset: 5, Line: 1, Column: 6, Length: 0}, wantLine: "== Title =="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Locate(src, tt.r)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantLine, got.SourceLine(src))
		})
	}
}

func TestSpan_String(t *testing.T) {
	assert.Equal(t, "3:11", Span{Line: 3, Column: 11}.String())
}

func TestSpan_SourceLineCRLF(t *testing.T) {
	src := "a\r\nbc\r\n"
	sp := Locate(src, Range{3, 4})
	assert.Equal(t, 2, sp.Line)
	assert.Equal(t, "bc", sp.SourceLine(src))
}
