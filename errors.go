package wikidom

import (
	"errors"
	"fmt"

	"github.com/dpotapov/go-wikidom/token"
)

// All errors reported by the Adapter are non-fatal: the document is always delivered.
var (
	// ErrUnknownToken is reported for a token of a kind the adapter does not handle.
	ErrUnknownToken = errors.New("unrecognized token kind")

	// ErrTruncated is reported when the stream ends before an EOF token was processed.
	ErrTruncated = errors.New("token stream ended without EOF")

	// ErrMalformedToken is reported for tokens that violate the tokenizer contract, such as an
	// embedded raw HTML <pre> without its content attribute.
	ErrMalformedToken = errors.New("malformed token")
)

// TokenError ties an error to the token that caused it.
type TokenError struct {
	Token token.Token
	Err   error
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("%v: %v", e.Token, e.Err)
}

func (e *TokenError) Unwrap() error {
	return e.Err
}

// Errors flattens the joined error returned by Finish into its individual errors.
func Errors(err error) []error {
	if err == nil {
		return nil
	}
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range j.Unwrap() {
			out = append(out, Errors(e)...)
		}
		return out
	}
	return []error{err}
}
