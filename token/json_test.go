package token

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshal(t *testing.T) {
	src := `[
		{"type":"tag","name":"p","attrs":[{"k":"class","v":"x"},{"k":"class","v":"y"}],"meta":{"tsr":[0,3]}},
		{"type":"text","data":"hi"},
		{"type":"nl"},
		{"type":"endtag","name":"p","meta":{"autoInsertedEnd":true}},
		{"type":"selfclose","name":"mw:empty-line","meta":{"tokens":[{"type":"nl"},{"type":"comment","data":" c "}]}},
		{"type":"eof"}
	]`

	toks, err := Unmarshal([]byte(src))
	require.NoError(t, err)

	want := []Token{
		&Tag{Name: "p", Attrs: Attrs{{"class", "x"}, {"class", "y"}}, Meta: Meta{SourceRange: &Range{0, 3}}},
		&Text{Data: "hi"},
		&Newline{},
		&EndTag{Name: "p", Meta: Meta{AutoInserted: true}},
		&SelfClosingTag{Name: "mw:empty-line", Meta: Meta{Tokens: []Token{&Newline{}, &Comment{Data: " c "}}}},
		&EOF{},
	}
	if diff := cmp.Diff(want, toks); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestUnmarshal_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{name: "not an array", src: `{"type":"eof"}`, wantErr: "cannot unmarshal"},
		{name: "unknown type", src: `[{"type":"eof"},{"type":"bogus"}]`, wantErr: `token 1: unknown token type: "bogus"`},
		{name: "bad range", src: `[{"type":"tag","name":"p","meta":{"tsr":"0-3"}}]`, wantErr: "source range"},
		{name: "bad nested token", src: `[{"type":"selfclose","name":"x","meta":{"tokens":[{"type":"?"}]}}]`, wantErr: "nested token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestUnmarshal_UnknownTypeIsSentinel(t *testing.T) {
	_, err := UnmarshalToken([]byte(`{"type":"doctype"}`))
	assert.True(t, errors.Is(err, ErrUnknownType))
}

func TestMarshal(t *testing.T) {
	tag := &Tag{Name: "td", Attrs: Attrs{{"rowspan", "2"}}, Meta: Meta{SourceRange: &Range{4, 8}}}
	tag.Meta.SetTmp(TmpTagID, 3)

	b, err := Marshal([]Token{tag, &Text{Data: "hi"}, &EndTag{Name: "td"}, &EOF{}})
	require.NoError(t, err)

	want := `[{"type":"tag","name":"td","attrs":[{"k":"rowspan","v":"2"}],"meta":{"tsr":[4,8],"tmp":{"tagId":3}}},` +
		`{"type":"text","data":"hi"},{"type":"endtag","name":"td"},{"type":"eof"}]`
	assert.Equal(t, want, string(b))
}

func TestMarshal_NestedTokens(t *testing.T) {
	el := &SelfClosingTag{Name: "mw:empty-line", Meta: Meta{Tokens: []Token{&Text{Data: " "}, &Newline{}}}}

	b, err := MarshalToken(el)
	require.NoError(t, err)

	got, err := UnmarshalToken(b)
	require.NoError(t, err)
	if diff := cmp.Diff(Token(el), got); diff != "" {
		t.Errorf("token mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode(t *testing.T) {
	toks, err := Decode(strings.NewReader(`[{"type":"text","data":"a"},{"type":"eof"}]`))
	require.NoError(t, err)
	assert.Equal(t, []Token{&Text{Data: "a"}, &EOF{}}, toks)

	_, err = Decode(strings.NewReader(`[`))
	assert.Error(t, err)
}

func TestMeta_TagID(t *testing.T) {
	var m Meta
	_, ok := m.TagID()
	assert.False(t, ok)

	m.SetTmp(TmpTagID, 7)
	id, ok := m.TagID()
	assert.True(t, ok)
	assert.Equal(t, 7, id)

	// Numbers read back from JSON are float64.
	toks, err := Unmarshal([]byte(`[{"type":"tag","name":"p","meta":{"tmp":{"tagId":12}}}]`))
	require.NoError(t, err)
	id, ok = MetaOf(toks[0]).TagID()
	assert.True(t, ok)
	assert.Equal(t, 12, id)
}

func TestKind(t *testing.T) {
	for _, k := range []Kind{KindText, KindNewline, KindTag, KindSelfClosingTag, KindEndTag, KindComment, KindEOF} {
		got, ok := ParseKind(k.String())
		assert.True(t, ok, k.String())
		assert.Equal(t, k, got)
	}
	_, ok := ParseKind("doctype")
	assert.False(t, ok)
	assert.Equal(t, "Kind(0)", Kind(0).String())
}

func TestAttrs(t *testing.T) {
	as := Attrs{{"typeof", "mw:Html"}, {"content", "x"}, {"typeof", "other"}}

	v, ok := as.Get("typeof")
	assert.True(t, ok)
	assert.Equal(t, "mw:Html", v)

	_, ok = as.Get("id")
	assert.False(t, ok)

	assert.Equal(t, Attrs{{"typeof", "mw:Html"}, {"typeof", "other"}}, as.Without("content"))
	assert.Len(t, as, 3, "Without must not modify the receiver")
	assert.Equal(t, ` typeof="mw:Html" content="x" typeof="other"`, as.String())
}

func TestTagName(t *testing.T) {
	assert.Equal(t, "table", TagName(&Tag{Name: "TABLE"}))
	assert.Equal(t, "br", TagName(&SelfClosingTag{Name: "Br"}))
	assert.Equal(t, "p", TagName(&EndTag{Name: "p"}))
	assert.Equal(t, "", TagName(&Text{Data: "p"}))
	assert.Nil(t, MetaOf(&EOF{}))
}
