package wikidom

import (
	"context"
	"log/slog"

	"golang.org/x/net/html"
)

// traceBuilder logs every command before passing it on to tb.
type traceBuilder struct {
	tb     TreeBuilder
	logger *slog.Logger
	page   string
}

func (t *traceBuilder) log(cmd string, args ...any) {
	if !t.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	t.logger.Debug(cmd, append([]any{"page", t.page}, args...)...)
}

func (t *traceBuilder) Reset() {
	t.log("reset")
	t.tb.Reset()
}

func (t *traceBuilder) StartTag(name string, attrs []html.Attribute) {
	t.log("open", "name", name, "attrs", len(attrs))
	t.tb.StartTag(name, attrs)
}

func (t *traceBuilder) EndTag(name string) {
	t.log("close", "name", name)
	t.tb.EndTag(name)
}

func (t *traceBuilder) SelfClosingTag(name string, attrs []html.Attribute) {
	t.log("selfclose", "name", name, "attrs", len(attrs))
	t.tb.SelfClosingTag(name, attrs)
}

func (t *traceBuilder) Text(s string) {
	t.log("text", "data", s)
	t.tb.Text(s)
}

func (t *traceBuilder) Comment(s string) {
	t.log("comment", "data", s)
	t.tb.Comment(s)
}

func (t *traceBuilder) EOF() {
	t.log("eof")
	t.tb.EOF()
}

func (t *traceBuilder) Document() *html.Node {
	return t.tb.Document()
}
