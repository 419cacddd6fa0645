// Package treedump prints a document tree one node per line, in the format of the html5lib
// tree construction tests:
//
//	| <p>
//	|   data-parsoid="{}"
//	|   <!-- {"@type":"mw:shadow",...} -->
//	|   "hi"
package treedump

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"golang.org/x/net/html"

	"github.com/dpotapov/go-wikidom"
)

// Printer writes tree dumps. Element names, attributes, text and shadow comments are colored
// unless color output is disabled.
type Printer struct {
	// Shadows hides synthetic comments when false.
	Shadows bool

	elem   *color.Color
	attr   *color.Color
	text   *color.Color
	shadow *color.Color
}

// NewPrinter returns a Printer that shows shadow comments. noColor disables colors for this
// Printer only.
func NewPrinter(noColor bool) *Printer {
	p := &Printer{
		Shadows: true,
		elem:    color.New(color.Bold),
		attr:    color.New(color.FgCyan),
		text:    color.New(color.FgGreen),
		shadow:  color.New(color.Faint),
	}
	if noColor {
		for _, c := range []*color.Color{p.elem, p.attr, p.text, p.shadow} {
			c.DisableColor()
		}
	}
	return p
}

// Dump returns the uncolored dump of the children of n.
func Dump(n *html.Node) (string, error) {
	var b bytes.Buffer
	if err := NewPrinter(true).Fprint(&b, n); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Fprint writes the children of n to w.
func (p *Printer) Fprint(w io.Writer, n *html.Node) error {
	if n == nil {
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := p.dumpLevel(w, c, 0); err != nil {
			return err
		}
	}
	return nil
}

func dumpIndent(w io.Writer, level int) {
	_, _ = io.WriteString(w, "| ")
	for i := 0; i < level; i++ {
		_, _ = io.WriteString(w, "  ")
	}
}

func (p *Printer) dumpLevel(w io.Writer, n *html.Node, level int) error {
	if n.Type == html.CommentNode && !p.Shadows {
		if _, err := wikidom.ParseShadow(n.Data); err == nil {
			return nil
		}
	}

	dumpIndent(w, level)
	level++
	switch n.Type {
	case html.ErrorNode:
		return errors.New("unexpected ErrorNode")
	case html.DocumentNode:
		return errors.New("unexpected DocumentNode")
	case html.ElementNode:
		_, _ = p.elem.Fprintf(w, "<%s>", n.Data)
		attr := append([]html.Attribute(nil), n.Attr...)
		sort.SliceStable(attr, func(i, j int) bool { return attr[i].Key < attr[j].Key })
		for _, a := range attr {
			_, _ = io.WriteString(w, "\n")
			dumpIndent(w, level)
			_, _ = p.attr.Fprintf(w, `%s="%s"`, a.Key, a.Val)
		}
	case html.TextNode:
		_, _ = p.text.Fprintf(w, `"%s"`, n.Data)
	case html.CommentNode:
		c := p.shadow
		if _, err := wikidom.ParseShadow(n.Data); err != nil {
			c = p.text
		}
		_, _ = c.Fprintf(w, "<!-- %s -->", n.Data)
	case html.DoctypeNode:
		_, _ = fmt.Fprintf(w, "<!DOCTYPE %s>", n.Data)
	default:
		return errors.New("unknown node type")
	}
	_, _ = io.WriteString(w, "\n")
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := p.dumpLevel(w, c, level); err != nil {
			return err
		}
	}
	return nil
}
