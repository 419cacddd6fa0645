package wikidom

import (
	"golang.org/x/net/html"

	"github.com/dpotapov/go-wikidom/token"
)

// Sink receives the results of a Stream.
type Sink interface {
	// DocumentReady delivers the finished document and the non-fatal errors of the parse. The
	// document must not be modified.
	DocumentReady(doc *html.Node, err error)

	// StreamComplete is called once, after DocumentReady.
	StreamComplete()
}

// SinkFunc adapts a function to the Sink interface. StreamComplete is a no-op.
type SinkFunc func(doc *html.Node, err error)

func (f SinkFunc) DocumentReady(doc *html.Node, err error) { f(doc, err) }

func (f SinkFunc) StreamComplete() {}

// Stream pushes ordered token batches through an Adapter. Batches must be delivered from a
// single goroutine in the order they were produced.
type Stream struct {
	ad        *Adapter
	sink      Sink
	delivered bool
	ended     bool
}

// NewStream resets ad, keeping its page id, and returns a Stream that feeds it.
func NewStream(ad *Adapter, sink Sink) *Stream {
	ad.ResetPage(ad.Page())
	return &Stream{ad: ad, sink: sink}
}

// OnChunk processes a batch of tokens. The document is delivered as soon as an EOF token was
// processed; tokens following it are dropped.
func (s *Stream) OnChunk(toks []token.Token) {
	for i, tok := range toks {
		if s.delivered || s.ended {
			s.ad.logger.Warn("Drop tokens after end of stream", "page", s.ad.Page(), "count", len(toks)-i)
			return
		}
		s.ad.ProcessToken(tok)
		if _, ok := tok.(*token.EOF); ok {
			s.deliver()
		}
	}
}

// OnEnd signals that no more batches follow. If no EOF token was seen, the partial document
// is delivered with ErrTruncated.
func (s *Stream) OnEnd() {
	if s.ended {
		return
	}
	if !s.delivered {
		s.deliver()
	}
	s.ended = true
	s.sink.StreamComplete()
}

// Drain reads batches from ch until it is closed, then calls OnEnd.
func (s *Stream) Drain(ch <-chan []token.Token) {
	for toks := range ch {
		s.OnChunk(toks)
	}
	s.OnEnd()
}

func (s *Stream) deliver() {
	doc, err := s.ad.Finish()
	s.delivered = true
	s.sink.DocumentReady(doc, err)
}

// Build runs toks through a fresh Adapter and returns the document.
func Build(toks []token.Token, opts *Options) (*html.Node, error) {
	var (
		doc *html.Node
		err error
	)
	s := NewStream(NewAdapter(nil, opts), SinkFunc(func(d *html.Node, e error) {
		doc, err = d, e
	}))
	s.OnChunk(toks)
	s.OnEnd()
	return doc, err
}
