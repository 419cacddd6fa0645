// Package htmltree is an HTML5 tree builder driven by primitive commands instead of a tokenizer.
//
// It implements the tree construction stage of the HTML5 parsing algorithm (stack of open
// elements, active formatting elements, foster parenting and the table insertion modes) and
// produces a golang.org/x/net/html node tree. Callers feed it start tags, end tags, text,
// comments and an end-of-stream signal; the document always has html, head and body elements.
package htmltree

import (
	"strings"

	"golang.org/x/net/html"
	a "golang.org/x/net/html/atom"
)

// Builder accepts tree-mutation commands and builds a document. The zero value is not usable,
// call NewBuilder. A Builder is not safe for concurrent use.
type Builder struct {
	// KeepNewline reports whether a start tag that directly follows a <pre> or <listing> start
	// tag leaves the pending newline drop in place. The drop then survives that tag and one
	// comment after it. Nil keeps nothing.
	KeepNewline func(name string, attrs []html.Attribute) bool

	p    *parser
	done bool
}

func NewBuilder() *Builder {
	return &Builder{p: newParser()}
}

// Reset discards the current document and starts a new one.
func (b *Builder) Reset() {
	b.p = newParser()
	b.done = false
}

// StartTag opens an element.
func (b *Builder) StartTag(name string, attrs []html.Attribute) {
	b.push(html.StartTagToken, name, attrs)
}

// SelfClosingTag inserts an element that is closed immediately, such as a void element.
func (b *Builder) SelfClosingTag(name string, attrs []html.Attribute) {
	b.push(html.SelfClosingTagToken, name, attrs)
}

// EndTag closes the element name according to the current insertion mode.
func (b *Builder) EndTag(name string) {
	b.push(html.EndTagToken, name, nil)
}

// Text inserts character data.
func (b *Builder) Text(s string) {
	if b.done {
		return
	}
	b.p.tok = html.Token{Type: html.TextToken, Data: s}
	b.p.parseCurrentToken()
}

// Comment inserts a comment node.
func (b *Builder) Comment(s string) {
	if b.done {
		return
	}
	b.p.tok = html.Token{Type: html.CommentToken, Data: s}
	b.p.parseCurrentToken()
}

// EOF signals the end of the stream. Subsequent commands are ignored until Reset.
func (b *Builder) EOF() {
	if b.done {
		return
	}
	b.p.tok = html.Token{Type: html.ErrorToken}
	b.p.parseCurrentToken()
	b.done = true
}

// Document returns the document node. It may be called before EOF to inspect a partial tree.
func (b *Builder) Document() *html.Node {
	return b.p.doc
}

func (b *Builder) push(tt html.TokenType, name string, attrs []html.Attribute) {
	if b.done {
		return
	}
	name = strings.ToLower(name)
	b.p.keepNewline = b.KeepNewline
	b.p.tok = html.Token{
		Type:     tt,
		DataAtom: a.Lookup([]byte(name)),
		Data:     name,
		Attr:     attrs,
	}
	b.p.parseCurrentToken()
}
