package wikidom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpotapov/go-wikidom/token"
)

func metaAttrs(kv ...string) token.Attrs {
	var as token.Attrs
	for i := 0; i+1 < len(kv); i += 2 {
		as = append(as, token.Attr{Key: kv[i], Val: kv[i+1]})
	}
	return as
}

func TestDefaultMetaPolicy_Keep(t *testing.T) {
	tests := []struct {
		name  string
		attrs token.Attrs
		want  bool
	}{
		{name: "ref marker", attrs: metaAttrs("typeof", "mw:Extension/ref/Marker"), want: true},
		{name: "ref marker among others", attrs: metaAttrs("typeof", "mw:Foo mw:Extension/ref/Marker"), want: true},
		{name: "includeonly", attrs: metaAttrs("typeof", "mw:Includes/IncludeOnly"), want: true},
		{name: "includeonly end", attrs: metaAttrs("typeof", "mw:Includes/IncludeOnly/End"), want: true},
		{name: "noinclude", attrs: metaAttrs("typeof", "mw:Includes/NoInclude"), want: true},
		{name: "onlyinclude", attrs: metaAttrs("typeof", "mw:Includes/OnlyInclude"), want: true},
		{name: "page property", attrs: metaAttrs("property", "mw:PageProp/toc"), want: true},
		{name: "prefix is not a word prefix", attrs: metaAttrs("typeof", "mw:Includes/NoIncludeX"), want: false},
		{name: "other extension", attrs: metaAttrs("typeof", "mw:Extension/ref"), want: false},
		{name: "transclusion", attrs: metaAttrs("typeof", "mw:Transclusion"), want: false},
		{name: "property prefix on typeof", attrs: metaAttrs("typeof", "mw:PageProp/toc"), want: false},
		{name: "no attributes", attrs: nil, want: false},
	}

	p := DefaultMetaPolicy()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Keep(tt.attrs)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMetaPolicy_Rules(t *testing.T) {
	p, err := DefaultMetaPolicy().WithRules(
		`property == "mw:objectAttr"`,
		`attrs["about"] startsWith "#mwt"`,
	)
	require.NoError(t, err)
	require.Len(t, p.Rules, 2)
	assert.Empty(t, DefaultMetaPolicy().Rules, "WithRules must not modify the receiver")

	keep, err := p.Keep(metaAttrs("property", "mw:objectAttr"))
	require.NoError(t, err)
	assert.True(t, keep)

	keep, err = p.Keep(metaAttrs("typeof", "mw:Placeholder", "about", "#mwt3"))
	require.NoError(t, err)
	assert.True(t, keep)

	keep, err = p.Keep(metaAttrs("typeof", "mw:Placeholder"))
	require.NoError(t, err)
	assert.False(t, keep)
}

func TestCompileRule_Errors(t *testing.T) {
	_, err := CompileRule(`typeof +`)
	assert.Error(t, err)

	_, err = CompileRule(`typeof`)
	assert.Error(t, err, "rules must be boolean")

	_, err = DefaultMetaPolicy().WithRules(`true`, `nosuchvar == 1`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nosuchvar")
}

func TestMetaPolicy_CustomPrefixes(t *testing.T) {
	p := &MetaPolicy{TypeOfPrefixes: []string{"mw:Annotation/"}, PropertyPrefixes: []string{"dc:title"}}

	for _, tt := range []struct {
		attrs token.Attrs
		want  bool
	}{
		{metaAttrs("typeof", "mw:Annotation/translate"), true},
		{metaAttrs("typeof", "mw:Annotation"), false},
		{metaAttrs("property", "dc:title"), true},
		{metaAttrs("property", "dc:title/x"), true},
		{metaAttrs("property", "dc:titles"), false},
	} {
		got, err := p.Keep(tt.attrs)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.attrs.String())
	}
}
