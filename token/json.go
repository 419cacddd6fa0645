package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var ErrUnknownType = errors.New("unknown token type")

// wireToken is the JSON shape of a single token:
//
//	{"type":"tag","name":"p","attrs":[{"k":"class","v":"x"}],"meta":{"tsr":[0,3]}}
type wireToken struct {
	Type  string `json:"type"`
	Data  string `json:"data,omitempty"`
	Name  string `json:"name,omitempty"`
	Attrs Attrs  `json:"attrs,omitempty"`
	Meta  *Meta  `json:"meta,omitempty"`
}

type wireMeta struct {
	SourceRange  *Range            `json:"tsr,omitempty"`
	AutoInserted bool              `json:"autoInsertedEnd,omitempty"`
	Tokens       []json.RawMessage `json:"tokens,omitempty"`
	Tmp          map[string]any    `json:"tmp,omitempty"`
}

func (r Range) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{r.Start, r.End})
}

func (r *Range) UnmarshalJSON(b []byte) error {
	var v [2]int
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("source range: %w", err)
	}
	r.Start, r.End = v[0], v[1]
	return nil
}

func (m Meta) isZero() bool {
	return m.SourceRange == nil && !m.AutoInserted && len(m.Tokens) == 0 && len(m.Tmp) == 0
}

func (m Meta) MarshalJSON() ([]byte, error) {
	w := wireMeta{
		SourceRange:  m.SourceRange,
		AutoInserted: m.AutoInserted,
		Tmp:          m.Tmp,
	}
	for _, t := range m.Tokens {
		b, err := MarshalToken(t)
		if err != nil {
			return nil, err
		}
		w.Tokens = append(w.Tokens, b)
	}
	return json.Marshal(w)
}

func (m *Meta) UnmarshalJSON(b []byte) error {
	var w wireMeta
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	m.SourceRange = w.SourceRange
	m.AutoInserted = w.AutoInserted
	m.Tmp = w.Tmp
	m.Tokens = nil
	for _, raw := range w.Tokens {
		t, err := UnmarshalToken(raw)
		if err != nil {
			return fmt.Errorf("nested token: %w", err)
		}
		m.Tokens = append(m.Tokens, t)
	}
	return nil
}

func metaPtr(m Meta) *Meta {
	if m.isZero() {
		return nil
	}
	return &m
}

// MarshalToken encodes t in the JSON wire format.
func MarshalToken(t Token) ([]byte, error) {
	w := wireToken{Type: t.Kind().String()}
	switch t := t.(type) {
	case *Text:
		w.Data = t.Data
	case *Newline:
		w.Meta = metaPtr(t.Meta)
	case *Tag:
		w.Name, w.Attrs, w.Meta = t.Name, t.Attrs, metaPtr(t.Meta)
	case *SelfClosingTag:
		w.Name, w.Attrs, w.Meta = t.Name, t.Attrs, metaPtr(t.Meta)
	case *EndTag:
		w.Name, w.Attrs, w.Meta = t.Name, t.Attrs, metaPtr(t.Meta)
	case *Comment:
		w.Data = t.Data
	case *EOF:
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownType, t)
	}
	return json.Marshal(w)
}

// UnmarshalToken decodes a single token from its JSON wire format.
func UnmarshalToken(b []byte) (Token, error) {
	var w wireToken
	if err := json.Unmarshal(b, &w); err != nil {
		return nil, err
	}
	return w.token()
}

func (w *wireToken) token() (Token, error) {
	var m Meta
	if w.Meta != nil {
		m = *w.Meta
	}
	k, ok := ParseKind(w.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, w.Type)
	}
	switch k {
	case KindText:
		return &Text{Data: w.Data}, nil
	case KindNewline:
		return &Newline{Meta: m}, nil
	case KindTag:
		return &Tag{Name: w.Name, Attrs: w.Attrs, Meta: m}, nil
	case KindSelfClosingTag:
		return &SelfClosingTag{Name: w.Name, Attrs: w.Attrs, Meta: m}, nil
	case KindEndTag:
		return &EndTag{Name: w.Name, Attrs: w.Attrs, Meta: m}, nil
	case KindComment:
		return &Comment{Data: w.Data}, nil
	default:
		return &EOF{}, nil
	}
}

// Marshal encodes a token stream as a JSON array.
func Marshal(toks []Token) ([]byte, error) {
	raws := make([]json.RawMessage, 0, len(toks))
	for _, t := range toks {
		b, err := MarshalToken(t)
		if err != nil {
			return nil, err
		}
		raws = append(raws, b)
	}
	return json.Marshal(raws)
}

// Unmarshal decodes a JSON array of tokens.
func Unmarshal(b []byte) ([]Token, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(b, &raws); err != nil {
		return nil, err
	}
	return unmarshalAll(raws)
}

// Decode reads a JSON array of tokens from r.
func Decode(r io.Reader) ([]Token, error) {
	var raws []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raws); err != nil {
		return nil, err
	}
	return unmarshalAll(raws)
}

func unmarshalAll(raws []json.RawMessage) ([]Token, error) {
	toks := make([]Token, 0, len(raws))
	for i, raw := range raws {
		t, err := UnmarshalToken(raw)
		if err != nil {
			return nil, fmt.Errorf("token %d: %w", i, err)
		}
		toks = append(toks, t)
	}
	return toks, nil
}
