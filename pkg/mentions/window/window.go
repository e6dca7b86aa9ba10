// Package window builds the classifier input for each mentioned entity: the
// tokens around every mention, concatenated in mention order.
package window

import (
	"github.com/cognicore/mentions/pkg/mentions/dict"
	"github.com/cognicore/mentions/pkg/mentions/substitute"
	"github.com/cognicore/mentions/pkg/mentions/token"
)

// DefaultRadius is the half-window used when scoring a batch.
const DefaultRadius = 4

// Context is the concatenated window for one entity.
type Context struct {
	Entity dict.EntityID
	Tokens []token.Token
}

// Stems returns the stems of the window, the form handed to a scorer.
func (c Context) Stems() []string {
	return token.Stems(c.Tokens)
}

// Extract returns one Context per mentioned entity, in first-mention order.
// For a mention at position p the window is stream[p-r : p+r+1], clipped to
// the stream. Overlapping windows are neither merged nor deduplicated.
func Extract(stream []token.Token, m *substitute.Mentions, radius int) []Context {
	if m == nil || m.Len() == 0 {
		return nil
	}
	if radius < 0 {
		radius = 0
	}

	out := make([]Context, 0, m.Len())
	for _, id := range m.Entities() {
		var toks []token.Token
		for _, p := range m.Positions(id) {
			toks = append(toks, Around(stream, p, radius)...)
		}
		out = append(out, Context{Entity: id, Tokens: toks})
	}
	return out
}

// Around returns the clipped window of radius r centred on p.
func Around(stream []token.Token, p, r int) []token.Token {
	lo := max(0, p-r)
	hi := min(len(stream), p+r+1)
	if lo >= hi {
		return nil
	}
	return stream[lo:hi]
}
