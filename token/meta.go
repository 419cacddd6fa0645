package token

import (
	"fmt"
	"strings"
)

// Scratch keys the adapter writes into Meta.Tmp.
const (
	TmpTagID          = "tagId"
	TmpInTransclusion = "inTransclusion"
)

type Attr struct {
	Key string `json:"k"`
	Val string `json:"v"`
}

// Attrs is an ordered attribute list. Keys are not guaranteed to be unique.
type Attrs []Attr

// Get returns the value of the first attribute named key.
func (as Attrs) Get(key string) (string, bool) {
	for _, a := range as {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Without returns a copy of as with every attribute named in keys removed.
func (as Attrs) Without(keys ...string) Attrs {
	out := make(Attrs, 0, len(as))
next:
	for _, a := range as {
		for _, k := range keys {
			if a.Key == k {
				continue next
			}
		}
		out = append(out, a)
	}
	return out
}

func (as Attrs) String() string {
	if len(as) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, a := range as {
		fmt.Fprintf(&sb, " %s=%q", a.Key, a.Val)
	}
	return sb.String()
}

// Range is a half-open [Start, End) range of source offsets.
type Range struct {
	Start, End int
}

func (r Range) Len() int { return r.End - r.Start }

// Meta is the source-metadata bag attached to tag and newline tokens. It is serialized as the
// data-parsoid attribute of emitted elements.
type Meta struct {
	// SourceRange is the token's position in the wikitext source, if known.
	SourceRange *Range

	// AutoInserted is set on close tags synthesized by the tokenizer rather than authored.
	AutoInserted bool

	// Tokens holds the original token sequence of a collapsed empty-line marker.
	Tokens []Token

	// Tmp is a scratch map the adapter populates in place (tag id, transclusion membership).
	Tmp map[string]any
}

// SetTmp stores v under key in the scratch map, allocating it on first use.
func (m *Meta) SetTmp(key string, v any) {
	if m.Tmp == nil {
		m.Tmp = make(map[string]any)
	}
	m.Tmp[key] = v
}

// TagID returns the id the adapter assigned to the token, if any.
func (m *Meta) TagID() (int, bool) {
	switch v := m.Tmp[TmpTagID].(type) {
	case int:
		return v, true
	case float64: // decoded from JSON
		return int(v), true
	}
	return 0, false
}
