package segment

import "github.com/cognicore/mentions/pkg/mentions/token"

// Exclusion vetoes a candidate window [start, end) of filtered indices even
// though its stems form a dictionary key.
type Exclusion interface {
	Excluded(seq token.Sequence, start, end int) bool
}

// ExclusionFunc adapts a plain function to Exclusion.
type ExclusionFunc func(seq token.Sequence, start, end int) bool

// Excluded calls f.
func (f ExclusionFunc) Excluded(seq token.Sequence, start, end int) bool {
	return f(seq, start, end)
}

// Exclusions vetoes a window when any member rule does.
type Exclusions []Exclusion

// Excluded implements Exclusion.
func (es Exclusions) Excluded(seq token.Sequence, start, end int) bool {
	for _, e := range es {
		if e != nil && e.Excluded(seq, start, end) {
			return true
		}
	}
	return false
}

// TickerAnnotation suppresses single-word matches wrapped like "( moex :".
// Quote and exchange annotations reuse company names without mentioning the
// company. Neighbours are read from the display words, since one-rune
// punctuation never reaches the stem space.
type TickerAnnotation struct {
	Open  string
	Close string
}

// DefaultTickerAnnotation matches "( TOKEN :".
func DefaultTickerAnnotation() TickerAnnotation {
	return TickerAnnotation{Open: "(", Close: ":"}
}

// Excluded implements Exclusion.
func (a TickerAnnotation) Excluded(seq token.Sequence, start, end int) bool {
	if end-start != 1 {
		return false
	}
	raw := seq.Tokens[start].Raw
	return seq.DisplayAt(raw-1) == a.Open && seq.DisplayAt(raw+1) == a.Close
}
