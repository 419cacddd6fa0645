// Package tokenxml reads and writes token streams as XML documents. The format is meant for
// hand-written test fixtures:
//
//	<tokens>
//	  <tag name="p" tsr="0,3"><attr k="class" v="x"/></tag>
//	  <text>hi</text>
//	  <nl/>
//	  <endtag name="p" auto="true"/>
//	  <selfclose name="mw:empty-line"><tokens><nl/><comment> c </comment></tokens></selfclose>
//	  <eof/>
//	</tokens>
//
// Whitespace between elements is ignored. Text and comment content is taken verbatim.
package tokenxml

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/dpotapov/go-wikidom/token"
)

var ErrNoTokens = errors.New("missing <tokens> root element")

// Decode reads a token stream from r.
func Decode(r io.Reader) ([]token.Token, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("read XML: %w", err)
	}

	root := doc.Root()
	if root == nil || root.Tag != "tokens" {
		return nil, ErrNoTokens
	}
	return decodeList(root)
}

func decodeList(list *etree.Element) ([]token.Token, error) {
	var toks []token.Token
	for i, el := range list.ChildElements() {
		t, err := decodeToken(el)
		if err != nil {
			return nil, fmt.Errorf("token %d: %w", i, err)
		}
		toks = append(toks, t)
	}
	return toks, nil
}

func decodeToken(el *etree.Element) (token.Token, error) {
	k, ok := token.ParseKind(el.Tag)
	if !ok {
		return nil, fmt.Errorf("%w: <%s>", token.ErrUnknownType, el.Tag)
	}

	switch k {
	case token.KindText:
		return &token.Text{Data: el.Text()}, nil
	case token.KindComment:
		return &token.Comment{Data: el.Text()}, nil
	case token.KindEOF:
		return &token.EOF{}, nil
	}

	m, err := decodeMeta(el)
	if err != nil {
		return nil, err
	}
	if k == token.KindNewline {
		return &token.Newline{Meta: m}, nil
	}

	name := el.SelectAttrValue("name", "")
	if name == "" {
		return nil, fmt.Errorf("<%s> without name", el.Tag)
	}
	var attrs token.Attrs
	for _, a := range el.SelectElements("attr") {
		attrs = append(attrs, token.Attr{Key: a.SelectAttrValue("k", ""), Val: a.SelectAttrValue("v", "")})
	}

	switch k {
	case token.KindTag:
		return &token.Tag{Name: name, Attrs: attrs, Meta: m}, nil
	case token.KindSelfClosingTag:
		return &token.SelfClosingTag{Name: name, Attrs: attrs, Meta: m}, nil
	default:
		return &token.EndTag{Name: name, Attrs: attrs, Meta: m}, nil
	}
}

func decodeMeta(el *etree.Element) (token.Meta, error) {
	var m token.Meta

	if v := el.SelectAttrValue("tsr", ""); v != "" {
		r, err := parseRange(v)
		if err != nil {
			return m, err
		}
		m.SourceRange = r
	}

	if v := el.SelectAttrValue("auto", ""); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return m, fmt.Errorf("auto attribute: %w", err)
		}
		m.AutoInserted = b
	}

	if nested := el.SelectElement("tokens"); nested != nil {
		toks, err := decodeList(nested)
		if err != nil {
			return m, err
		}
		m.Tokens = toks
	}
	return m, nil
}

func parseRange(v string) (*token.Range, error) {
	s, e, ok := strings.Cut(v, ",")
	if !ok {
		return nil, fmt.Errorf("tsr %q: want start,end", v)
	}
	start, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("tsr %q: %w", v, err)
	}
	end, err := strconv.Atoi(strings.TrimSpace(e))
	if err != nil {
		return nil, fmt.Errorf("tsr %q: %w", v, err)
	}
	return &token.Range{Start: start, End: end}, nil
}

// Encode writes toks to w, one token per line. Meta.Tmp is not written.
func Encode(w io.Writer, toks []token.Token) error {
	doc := etree.NewDocument()
	root := doc.CreateElement("tokens")
	if err := encodeList(root, toks); err != nil {
		return err
	}
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("write XML: %w", err)
	}
	return nil
}

func encodeList(list *etree.Element, toks []token.Token) error {
	for _, t := range toks {
		list.AddChild(etree.NewText("\n"))
		if err := encodeToken(list, t); err != nil {
			return err
		}
	}
	list.AddChild(etree.NewText("\n"))
	return nil
}

func encodeToken(list *etree.Element, t token.Token) error {
	switch t := t.(type) {
	case *token.Text:
		list.CreateElement(token.KindText.String()).SetText(t.Data)
	case *token.Comment:
		list.CreateElement(token.KindComment.String()).SetText(t.Data)
	case *token.EOF:
		list.CreateElement(token.KindEOF.String())
	case *token.Newline:
		return encodeMeta(list.CreateElement(token.KindNewline.String()), t.Meta)
	case *token.Tag:
		return encodeTag(list, t, t.Name, t.Attrs, t.Meta)
	case *token.SelfClosingTag:
		return encodeTag(list, t, t.Name, t.Attrs, t.Meta)
	case *token.EndTag:
		return encodeTag(list, t, t.Name, t.Attrs, t.Meta)
	default:
		return fmt.Errorf("%w: %T", token.ErrUnknownType, t)
	}
	return nil
}

func encodeTag(list *etree.Element, t token.Token, name string, attrs token.Attrs, m token.Meta) error {
	el := list.CreateElement(t.Kind().String())
	el.CreateAttr("name", name)
	for _, a := range attrs {
		ae := el.CreateElement("attr")
		ae.CreateAttr("k", a.Key)
		ae.CreateAttr("v", a.Val)
	}
	return encodeMeta(el, m)
}

func encodeMeta(el *etree.Element, m token.Meta) error {
	if r := m.SourceRange; r != nil {
		el.CreateAttr("tsr", fmt.Sprintf("%d,%d", r.Start, r.End))
	}
	if m.AutoInserted {
		el.CreateAttr("auto", "true")
	}
	if len(m.Tokens) > 0 {
		return encodeList(el.CreateElement("tokens"), m.Tokens)
	}
	return nil
}
