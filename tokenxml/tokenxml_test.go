package tokenxml

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpotapov/go-wikidom/token"
)

func TestDecode(t *testing.T) {
	src := `<?xml version="1.0"?>
<tokens>
  <tag name="p" tsr="0,3"><attr k="class" v="x"/></tag>
  <text> hi &amp; bye </text>
  <nl/>
  <endtag name="p" auto="true"/>
  <selfclose name="mw:empty-line"><tokens><nl/><comment> c </comment></tokens></selfclose>
  <eof/>
</tokens>`

	toks, err := Decode(strings.NewReader(src))
	require.NoError(t, err)

	want := []token.Token{
		&token.Tag{Name: "p", Attrs: token.Attrs{{Key: "class", Val: "x"}}, Meta: token.Meta{SourceRange: &token.Range{Start: 0, End: 3}}},
		&token.Text{Data: " hi & bye "},
		&token.Newline{},
		&token.EndTag{Name: "p", Meta: token.Meta{AutoInserted: true}},
		&token.SelfClosingTag{Name: "mw:empty-line", Meta: token.Meta{Tokens: []token.Token{&token.Newline{}, &token.Comment{Data: " c "}}}},
		&token.EOF{},
	}
	if diff := cmp.Diff(want, toks); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{name: "wrong root", src: `<stream/>`, wantErr: ErrNoTokens.Error()},
		{name: "unknown element", src: `<tokens><eof/><doctype/></tokens>`, wantErr: "token 1: unknown token type: <doctype>"},
		{name: "missing name", src: `<tokens><tag/></tokens>`, wantErr: "<tag> without name"},
		{name: "bad range", src: `<tokens><tag name="p" tsr="3"/></tokens>`, wantErr: "want start,end"},
		{name: "bad range number", src: `<tokens><tag name="p" tsr="a,3"/></tokens>`, wantErr: `tsr "a,3"`},
		{name: "bad auto", src: `<tokens><endtag name="p" auto="maybe"/></tokens>`, wantErr: "auto attribute"},
		{name: "bad nested", src: `<tokens><selfclose name="x"><tokens><x/></tokens></selfclose></tokens>`, wantErr: "token 0: token 0:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDecode_UnknownTypeIsSentinel(t *testing.T) {
	_, err := Decode(strings.NewReader(`<tokens><bogus/></tokens>`))
	assert.True(t, errors.Is(err, token.ErrUnknownType))
}

func TestEncode(t *testing.T) {
	tag := &token.Tag{Name: "td", Attrs: token.Attrs{{Key: "a", Val: `"<&>"`}}, Meta: token.Meta{SourceRange: &token.Range{Start: 4, End: 8}}}
	toks := []token.Token{
		tag,
		&token.Text{Data: "a < b\nc"},
		&token.Newline{},
		&token.EndTag{Name: "td", Meta: token.Meta{AutoInserted: true}},
		&token.SelfClosingTag{Name: "mw:empty-line", Meta: token.Meta{Tokens: []token.Token{&token.Text{Data: " "}, &token.Newline{}}}},
		&token.Comment{Data: " note "},
		&token.EOF{},
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, toks))

	got, err := Decode(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(toks, got); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_SkipsTmp(t *testing.T) {
	tag := &token.Tag{Name: "p"}
	tag.Meta.SetTmp(token.TmpTagID, 1)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, []token.Token{tag}))
	assert.Equal(t, "<tokens>\n<tag name=\"p\"/>\n</tokens>", buf.String())
}
