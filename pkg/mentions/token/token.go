// Package token holds the per-message token model shared by the segmentation
// passes.
//
// A message produces two index spaces: the display words (every word and
// punctuation mark, lower-cased) and the filtered stems (words of two or more
// runes, stemmed). Each Token carries the display index it came from, so code
// that walks stems never has to re-derive where a stem sits in the text.
package token

import "strings"

// Token is a single stem in the filtered index space.
type Token struct {
	Raw  int    // index into Sequence.Display
	Stem string // normalized root form
}

// Sequence is the normalized form of one message. It is immutable once built.
type Sequence struct {
	Display []string
	Tokens  []Token
}

// FromStems builds a Sequence where every stem is also its own display word.
// Useful when the caller already holds stemmed text.
func FromStems(stems ...string) Sequence {
	seq := Sequence{
		Display: make([]string, len(stems)),
		Tokens:  make([]Token, len(stems)),
	}
	for i, s := range stems {
		seq.Display[i] = s
		seq.Tokens[i] = Token{Raw: i, Stem: s}
	}
	return seq
}

// Len returns the number of filtered tokens.
func (s Sequence) Len() int { return len(s.Tokens) }

// Empty reports whether the sequence has no stems.
func (s Sequence) Empty() bool { return len(s.Tokens) == 0 }

// Stems returns the stem strings in filtered order.
func (s Sequence) Stems() []string {
	return Stems(s.Tokens)
}

// Key joins the stems in the half-open range [start, end) into a dictionary key.
func (s Sequence) Key(start, end int) string {
	return Key(s.Tokens[start:end])
}

// DisplayAt returns the display word at raw index i, or "" when i is out of range.
func (s Sequence) DisplayAt(i int) string {
	if i < 0 || i >= len(s.Display) {
		return ""
	}
	return s.Display[i]
}

// Stems extracts the stem strings from toks.
func Stems(toks []Token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Stem
	}
	return out
}

// Key joins the stems of toks with single spaces.
func Key(toks []Token) string {
	switch len(toks) {
	case 0:
		return ""
	case 1:
		return toks[0].Stem
	}
	var b strings.Builder
	for i, t := range toks {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(t.Stem)
	}
	return b.String()
}
