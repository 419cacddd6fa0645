package wikidom

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dpotapov/go-wikidom/token"
)

// Marker types.
const (
	// TypeShadow marks the comment that follows every authored open or close tag.
	TypeShadow = "mw:shadow"

	// TypeFosterBox is the typeof of the marker element inserted in front of a table, so content
	// fostered out of the table can be told apart from content that preceded it.
	TypeFosterBox = "mw:FosterBox"

	// TypeTransclusionShadow is the typeof of the marker element that follows the first text of
	// a run inside a transcluded table.
	TypeTransclusionShadow = "mw:TransclusionShadow"

	TypeTransclusion    = "mw:Transclusion"
	TypeTransclusionEnd = "mw:Transclusion/End"

	// TypeNowiki marks a span rendering a nowiki section.
	TypeNowiki = "mw:Nowiki"

	// TypeHTML marks a self-closing pre token that carries raw HTML in its content attribute.
	TypeHTML = "mw:Html"
)

// Attribute names written by the adapter.
const (
	AttrDataParsoid = "data-parsoid"
	AttrStartTag    = "data-stag"
	AttrEndTag      = "data-etag"
	AttrTypeOf      = "typeof"
	AttrProperty    = "property"
	AttrContent     = "content"
)

// EmptyLineName is the name of the self-closing token that collapses a run of whitespace and
// comment tokens. The original tokens are kept in Meta.Tokens.
const EmptyLineName = "mw:empty-line"

// Shadow is the payload of a synthetic comment. It is serialized as JSON:
//
//	{"@type":"mw:shadow","attrs":[{"k":"data-stag","v":"p:1"},{"k":"data-parsoid","v":"{}"}]}
type Shadow struct {
	Type  string      `json:"@type"`
	Attrs token.Attrs `json:"attrs"`
}

// String returns the JSON encoding of s. HTML-significant characters are escaped, so the
// result can never terminate the comment it is embedded in.
func (s Shadow) String() string {
	if s.Attrs == nil {
		s.Attrs = token.Attrs{}
	}
	b, err := json.Marshal(s)
	if err != nil {
		// Attrs are plain strings, this cannot happen.
		panic(err)
	}
	return string(b)
}

// Get returns the value of the first shadow attribute named key.
func (s Shadow) Get(key string) (string, bool) {
	return s.Attrs.Get(key)
}

// ParseShadow decodes a comment payload written by the adapter.
func ParseShadow(data string) (Shadow, error) {
	var s Shadow
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return Shadow{}, fmt.Errorf("parse shadow: %w", err)
	}
	if s.Type == "" {
		return Shadow{}, fmt.Errorf("parse shadow: missing @type")
	}
	return s, nil
}

// hasType reports whether the space-separated typeof attribute of attrs contains typ.
func hasType(attrs token.Attrs, typ string) bool {
	v, ok := attrs.Get(AttrTypeOf)
	if !ok {
		return false
	}
	for _, f := range strings.Fields(v) {
		if f == typ {
			return true
		}
	}
	return false
}

// voidElements are never paired with an explicit close command.
var voidElements = map[string]bool{
	"area":     true,
	"base":     true,
	"basefont": true,
	"bgsound":  true,
	"br":       true,
	"col":      true,
	"command":  true,
	"embed":    true,
	"frame":    true,
	"hr":       true,
	"img":      true,
	"input":    true,
	"keygen":   true,
	"link":     true,
	"meta":     true,
	"param":    true,
	"source":   true,
	"track":    true,
	"wbr":      true,
}
