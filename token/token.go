// Package token defines the lexical units produced by the wikitext tokenizer and consumed by
// the tree-construction adapter.
//
// A Token is one of seven concrete types: *Text, *Newline, *Tag, *SelfClosingTag, *EndTag,
// *Comment and *EOF. The set is closed: the marker method is unexported, so a type switch over
// these seven cases is exhaustive.
package token

import (
	"fmt"
	"strings"
)

// Kind identifies the concrete type of a Token.
type Kind uint8

const (
	KindText Kind = iota + 1
	KindNewline
	KindTag
	KindSelfClosingTag
	KindEndTag
	KindComment
	KindEOF
)

var kindNames = map[Kind]string{
	KindText:           "text",
	KindNewline:        "nl",
	KindTag:            "tag",
	KindSelfClosingTag: "selfclose",
	KindEndTag:         "endtag",
	KindComment:        "comment",
	KindEOF:            "eof",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ParseKind maps a wire name ("text", "tag", ...) back to a Kind.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

type Token interface {
	Kind() Kind
	isToken()
}

// Text is a run of character data.
type Text struct {
	Data string
}

// Newline is a forced line break. It stands for a single "\n".
type Newline struct {
	Meta Meta
}

// Tag is an open tag.
type Tag struct {
	Name  string
	Attrs Attrs
	Meta  Meta
}

// SelfClosingTag is a tag that was written (or synthesized) without content.
type SelfClosingTag struct {
	Name  string
	Attrs Attrs
	Meta  Meta
}

// EndTag is a close tag. Meta.AutoInserted reports whether the tokenizer synthesized it to
// balance an unclosed element.
type EndTag struct {
	Name  string
	Attrs Attrs
	Meta  Meta
}

type Comment struct {
	Data string
}

// EOF marks the end of the token stream.
type EOF struct{}

func (*Text) Kind() Kind           { return KindText }
func (*Newline) Kind() Kind        { return KindNewline }
func (*Tag) Kind() Kind            { return KindTag }
func (*SelfClosingTag) Kind() Kind { return KindSelfClosingTag }
func (*EndTag) Kind() Kind         { return KindEndTag }
func (*Comment) Kind() Kind        { return KindComment }
func (*EOF) Kind() Kind            { return KindEOF }

func (*Text) isToken()           {}
func (*Newline) isToken()        {}
func (*Tag) isToken()            {}
func (*SelfClosingTag) isToken() {}
func (*EndTag) isToken()         {}
func (*Comment) isToken()        {}
func (*EOF) isToken()            {}

func (t *Text) String() string    { return fmt.Sprintf("Text(%q)", t.Data) }
func (t *Newline) String() string { return "Newline" }
func (t *Tag) String() string     { return fmt.Sprintf("Tag(%s%s)", t.Name, t.Attrs) }
func (t *SelfClosingTag) String() string {
	return fmt.Sprintf("SelfClosingTag(%s%s)", t.Name, t.Attrs)
}
func (t *EndTag) String() string  { return fmt.Sprintf("EndTag(%s)", t.Name) }
func (t *Comment) String() string { return fmt.Sprintf("Comment(%q)", t.Data) }
func (t *EOF) String() string     { return "EOF" }

// TagName returns the lower-cased tag name of tag-like tokens and "" for everything else.
func TagName(t Token) string {
	switch t := t.(type) {
	case *Tag:
		return strings.ToLower(t.Name)
	case *SelfClosingTag:
		return strings.ToLower(t.Name)
	case *EndTag:
		return strings.ToLower(t.Name)
	}
	return ""
}

// MetaOf returns a pointer to the metadata bag of t, or nil if t does not carry one.
func MetaOf(t Token) *Meta {
	switch t := t.(type) {
	case *Newline:
		return &t.Meta
	case *Tag:
		return &t.Meta
	case *SelfClosingTag:
		return &t.Meta
	case *EndTag:
		return &t.Meta
	}
	return nil
}
