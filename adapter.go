// Package wikidom turns a wikitext token stream into an HTML5 DOM.
//
// The Adapter feeds tokens into an HTML5 tree builder and inserts shadow markers (synthetic
// comments and meta elements) wherever tree construction would lose information that a
// serializer needs to reproduce the original wikitext: which tags were authored, which content
// was fostered out of a table and why, and which meta markers were suppressed.
package wikidom

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/net/html"

	"github.com/dpotapov/go-wikidom/htmltree"
	"github.com/dpotapov/go-wikidom/token"
)

// TreeBuilder is the HTML5 tree construction algorithm, reduced to its primitive commands.
// *htmltree.Builder implements it.
type TreeBuilder interface {
	// Reset discards the current document and prepares a new one.
	Reset()
	StartTag(name string, attrs []html.Attribute)
	EndTag(name string)
	// SelfClosingTag inserts a void element.
	SelfClosingTag(name string, attrs []html.Attribute)
	Text(s string)
	Comment(s string)
	EOF()
	Document() *html.Node
}

var _ TreeBuilder = (*htmltree.Builder)(nil)

// Meter is a resource-accounting hook, called once for every token passed to ProcessToken.
// Pipelines that fan a stream out to several adapters should give a Meter to one of them only.
type Meter interface {
	CountToken(k token.Kind)
}

type Options struct {
	// Logger receives warnings about malformed input. Defaults to a discarding logger.
	Logger *slog.Logger

	// Policy decides which meta markers stay elements. Defaults to DefaultMetaPolicy().
	Policy *MetaPolicy

	// Meter, if set, is told about every processed token.
	Meter Meter

	// Trace logs every tree command at debug level.
	Trace bool
}

// state is the bookkeeping of a single parse. Reset replaces it wholesale.
type state struct {
	page string

	nextTagID int

	// inTransclusion is set between the markers of an unnested top-level transclusion.
	inTransclusion bool

	// tableDepth counts unmatched table open tags. Excess close tags are absorbed.
	tableDepth int

	// haveTransclusionShadow is set once a transclusion shadow was emitted for the current run
	// of text and newline tokens.
	haveTransclusionShadow bool

	// precededByPre is set right after a pre open tag. The tree builder drops a newline at the
	// start of a pre, so a leading newline that follows must be doubled.
	precededByPre bool

	lastToken token.Token

	// truncated is set once Finish reported ErrTruncated.
	truncated bool

	errs []error
}

// Adapter converts tokens to tree builder commands. An Adapter handles one document at a
// time; Reset starts a new one. It is not safe for concurrent use.
type Adapter struct {
	tb     TreeBuilder
	policy *MetaPolicy
	meter  Meter
	logger *slog.Logger
	st     state
}

// NewAdapter returns an Adapter that drives tb. A nil tb selects htmltree.NewBuilder(). An
// *htmltree.Builder without a KeepNewline hook gets one that lets a nowiki span carry the
// pending pre newline drop, the way the adapter carries its doubling.
func NewAdapter(tb TreeBuilder, opts *Options) *Adapter {
	if opts == nil {
		opts = &Options{}
	}
	if tb == nil {
		tb = htmltree.NewBuilder()
	}
	if b, ok := tb.(*htmltree.Builder); ok && b.KeepNewline == nil {
		b.KeepNewline = isNowikiSpan
	}

	ad := &Adapter{
		tb:     tb,
		policy: opts.Policy,
		meter:  opts.Meter,
		logger: opts.Logger,
	}
	if ad.policy == nil {
		ad.policy = DefaultMetaPolicy()
	}
	if ad.logger == nil {
		ad.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Trace {
		ad.tb = &traceBuilder{tb: tb, logger: ad.logger}
	}

	ad.Reset()
	return ad
}

// Reset discards all state and the current document. The new parse gets a random page id.
func (ad *Adapter) Reset() {
	ad.ResetPage("")
}

// ResetPage is like Reset, but names the page in log records. An empty page gets a random id.
func (ad *Adapter) ResetPage(page string) {
	if page == "" {
		page = uuid.NewString()
	}
	ad.st = state{page: page, nextTagID: 1}
	if tr, ok := ad.tb.(*traceBuilder); ok {
		tr.page = page
	}
	ad.tb.Reset()
}

// Page returns the page id of the current parse.
func (ad *Adapter) Page() string {
	return ad.st.page
}

// ProcessToken consumes one token.
func (ad *Adapter) ProcessToken(tok token.Token) {
	if ad.meter != nil && tok != nil {
		ad.meter.CountToken(tok.Kind())
	}
	ad.process(tok)
}

// Finish returns the document built so far together with the non-fatal errors of the parse.
// A parse whose last token was not EOF is reported as ErrTruncated.
func (ad *Adapter) Finish() (*html.Node, error) {
	if _, ok := ad.st.lastToken.(*token.EOF); !ok && !ad.st.truncated {
		ad.st.truncated = true
		ad.logger.Warn("Token stream truncated", "page", ad.st.page, "last", fmt.Sprint(ad.st.lastToken))
		ad.st.errs = append(ad.st.errs, ErrTruncated)
	}
	return ad.tb.Document(), errors.Join(ad.st.errs...)
}

func (ad *Adapter) process(tok token.Token) {
	switch t := tok.(type) {
	case *token.Text:
		ad.text(t.Data)
	case *token.Newline:
		ad.text("\n")
	case *token.Tag:
		ad.startTag(t)
	case *token.SelfClosingTag:
		ad.selfClosingTag(t)
	case *token.EndTag:
		ad.endTag(t)
	case *token.Comment:
		ad.tb.Comment(t.Data)
	case *token.EOF:
		ad.tb.EOF()
	default:
		ad.logger.Error("Unrecognized token", "page", ad.st.page, "token", fmt.Sprintf("%#v", tok))
		ad.st.errs = append(ad.st.errs, &TokenError{Token: tok, Err: ErrUnknownToken})
	}

	switch tok.(type) {
	case *token.Text, *token.Newline:
	default:
		ad.st.haveTransclusionShadow = false
	}

	ad.trackPre(tok)
	ad.st.lastToken = tok
}

func (ad *Adapter) text(s string) {
	if ad.st.precededByPre && strings.HasPrefix(s, "\n") {
		s = "\n" + s
	}
	ad.tb.Text(s)

	if ad.st.inTransclusion && ad.st.tableDepth > 0 && !ad.st.haveTransclusionShadow {
		ad.tb.SelfClosingTag("meta", []html.Attribute{{Key: AttrTypeOf, Val: TypeTransclusionShadow}})
		ad.st.haveTransclusionShadow = true
	}
}

func (ad *Adapter) startTag(t *token.Tag) {
	name := token.TagName(t)

	if name == "table" {
		ad.st.tableDepth++
		// A transclusion boundary already tells where fostered content came from.
		if !ad.st.inTransclusion {
			ad.tb.SelfClosingTag("meta", []html.Attribute{{Key: AttrTypeOf, Val: TypeFosterBox}})
		}
	}

	id := ad.assignTagID(&t.Meta)
	dp := ad.dataParsoid(t, &t.Meta)
	ad.tb.StartTag(t.Name, withDataParsoid(t.Attrs, dp))
	ad.tb.Comment(Shadow{
		Type: TypeShadow,
		Attrs: token.Attrs{
			{Key: AttrStartTag, Val: name + ":" + strconv.Itoa(id)},
			{Key: AttrDataParsoid, Val: dp},
		},
	}.String())
}

func (ad *Adapter) selfClosingTag(t *token.SelfClosingTag) {
	name := token.TagName(t)

	switch {
	case name == EmptyLineName:
		for _, c := range t.Meta.Tokens {
			ad.process(c)
		}
		return
	case name == "pre" && hasType(t.Attrs, TypeHTML):
		if ad.unpackHTMLPre(t) {
			return
		}
	case name == "meta":
		if ad.shadowMeta(t) {
			return
		}
	}

	ad.assignTagID(&t.Meta)
	attrs := withDataParsoid(t.Attrs, ad.dataParsoid(t, &t.Meta))
	if voidElements[name] {
		ad.tb.SelfClosingTag(t.Name, attrs)
		return
	}
	ad.tb.StartTag(t.Name, attrs)
	ad.tb.EndTag(t.Name)
}

// unpackHTMLPre replaces a self-closing pre that carries raw HTML with an explicit open tag,
// text and close tag. It reports false if t lacks its content attribute.
func (ad *Adapter) unpackHTMLPre(t *token.SelfClosingTag) bool {
	content, ok := t.Attrs.Get(AttrContent)
	if !ok {
		err := fmt.Errorf("%w: pre without %s attribute", ErrMalformedToken, AttrContent)
		ad.logger.Warn("Skip raw HTML unpacking", "page", ad.st.page, "token", t.String(), "error", err)
		ad.st.errs = append(ad.st.errs, &TokenError{Token: t, Err: err})
		return false
	}

	open := &token.Tag{Name: t.Name, Attrs: t.Attrs.Without(AttrContent)}
	end := &token.EndTag{Name: t.Name}
	if r := t.Meta.SourceRange; r != nil {
		// "<pre>" and "</pre>" bracket the source range.
		open.Meta.SourceRange = &token.Range{Start: r.Start, End: min(r.Start+5, r.End)}
		end.Meta.SourceRange = &token.Range{Start: max(r.End-6, r.Start), End: r.End}
	}

	ad.process(open)
	ad.process(&token.Text{Data: content})
	ad.process(end)
	return true
}

// shadowMeta turns a meta marker into a comment unless the policy keeps it as an element. It
// reports whether the token was consumed.
func (ad *Adapter) shadowMeta(t *token.SelfClosingTag) bool {
	typeOf, hasTypeOf := t.Attrs.Get(AttrTypeOf)
	property, hasProperty := t.Attrs.Get(AttrProperty)
	if !hasTypeOf && !hasProperty {
		return false
	}

	keep, err := ad.policy.Keep(t.Attrs)
	if err != nil {
		ad.logger.Warn("Evaluate meta policy", "page", ad.st.page, "error", err)
	}
	if keep {
		return false
	}

	switch typeOf {
	case TypeTransclusion:
		ad.st.inTransclusion = true
	case TypeTransclusionEnd:
		ad.st.inTransclusion = false
	}

	ad.assignTagID(&t.Meta)
	markerType := typeOf
	if !hasTypeOf {
		markerType = property
	}
	ad.tb.Comment(Shadow{
		Type:  markerType,
		Attrs: withShadowAttr(t.Attrs, AttrDataParsoid, ad.dataParsoid(t, &t.Meta)),
	}.String())
	return true
}

func (ad *Adapter) endTag(t *token.EndTag) {
	name := token.TagName(t)

	if name == "table" && ad.st.tableDepth > 0 {
		ad.st.tableDepth--
	}

	ad.tb.EndTag(t.Name)
	if t.Meta.AutoInserted {
		return
	}
	ad.tb.Comment(Shadow{
		Type: TypeShadow,
		Attrs: token.Attrs{
			{Key: AttrEndTag, Val: name},
			{Key: AttrDataParsoid, Val: ad.dataParsoid(t, &t.Meta)},
		},
	}.String())
}

// trackPre updates precededByPre after tok was processed. A nowiki span right after a pre
// leaves the flag alone.
func (ad *Adapter) trackPre(tok token.Token) {
	if t, ok := tok.(*token.Tag); ok {
		switch token.TagName(t) {
		case "pre":
			ad.st.precededByPre = true
			return
		case "span":
			if hasType(t.Attrs, TypeNowiki) {
				return
			}
		}
	}
	ad.st.precededByPre = false
}

// isNowikiSpan is the htmltree.Builder counterpart of the nowiki span rule in trackPre.
func isNowikiSpan(name string, attrs []html.Attribute) bool {
	if name != "span" {
		return false
	}
	for _, a := range attrs {
		if a.Key != AttrTypeOf {
			continue
		}
		for _, f := range strings.Fields(a.Val) {
			if f == TypeNowiki {
				return true
			}
		}
	}
	return false
}

func (ad *Adapter) assignTagID(m *token.Meta) int {
	id := ad.st.nextTagID
	ad.st.nextTagID++
	m.SetTmp(token.TmpTagID, id)
	if ad.st.inTransclusion {
		m.SetTmp(token.TmpInTransclusion, true)
	}
	return id
}

// dataParsoid serializes the metadata bag of tok.
func (ad *Adapter) dataParsoid(tok token.Token, m *token.Meta) string {
	b, err := json.Marshal(m)
	if err != nil {
		ad.logger.Error("Serialize token metadata", "page", ad.st.page, "token", fmt.Sprint(tok), "error", err)
		ad.st.errs = append(ad.st.errs, &TokenError{Token: tok, Err: err})
		return "{}"
	}
	return string(b)
}

func withDataParsoid(attrs token.Attrs, dp string) []html.Attribute {
	out := make([]html.Attribute, 0, len(attrs)+1)
	for _, a := range attrs {
		out = append(out, html.Attribute{Key: a.Key, Val: a.Val})
	}
	return append(out, html.Attribute{Key: AttrDataParsoid, Val: dp})
}

func withShadowAttr(attrs token.Attrs, key, val string) token.Attrs {
	out := make(token.Attrs, 0, len(attrs)+1)
	out = append(out, attrs...)
	return append(out, token.Attr{Key: key, Val: val})
}
