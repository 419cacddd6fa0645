package wikidom

import (
	"sync/atomic"

	"github.com/dpotapov/go-wikidom/token"
)

// Counter is a Meter that counts tokens per kind. It is safe for concurrent use.
type Counter struct {
	counts [token.KindEOF + 1]atomic.Int64
}

func (c *Counter) CountToken(k token.Kind) {
	if int(k) < len(c.counts) {
		c.counts[k].Add(1)
	}
}

// Counts returns a snapshot of the non-zero counters.
func (c *Counter) Counts() map[token.Kind]int64 {
	m := make(map[token.Kind]int64)
	for k := range c.counts {
		if n := c.counts[k].Load(); n > 0 {
			m[token.Kind(k)] = n
		}
	}
	return m
}

// Total returns the number of counted tokens.
func (c *Counter) Total() int64 {
	var n int64
	for k := range c.counts {
		n += c.counts[k].Load()
	}
	return n
}
