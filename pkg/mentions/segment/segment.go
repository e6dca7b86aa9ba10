// Package segment selects dictionary phrases in a stem sequence.
//
// Segmenter computes, with dynamic programming, the set of non-overlapping
// phrase matches that covers the most stems. Reconstruct turns the
// per-index choices back into ordered groups.
package segment

import (
	"github.com/cognicore/mentions/pkg/mentions/dict"
	"github.com/cognicore/mentions/pkg/mentions/token"
)

// None marks an index where no phrase ends.
const None = 0

// Choices holds, for every filtered index, the size of the winning phrase
// ending there, or None.
type Choices []int

// Lookuper is the subset of *dict.Dictionary the segmenter needs.
type Lookuper interface {
	Lookup(phrase string) (dict.Match, bool)
	MaxWords() int
}

// Segmenter is safe for concurrent use; it holds no per-call state.
type Segmenter struct {
	dict      Lookuper
	maxWindow int
	exclusion Exclusion
}

// Option configures a Segmenter.
type Option func(*Segmenter)

// WithMaxWindow overrides the dictionary's maximum phrase length.
func WithMaxWindow(w int) Option {
	return func(s *Segmenter) {
		if w > 0 {
			s.maxWindow = w
		}
	}
}

// WithExclusion sets the rule that vetoes candidate windows. Pass nil to
// disable exclusions entirely.
func WithExclusion(e Exclusion) Option {
	return func(s *Segmenter) { s.exclusion = e }
}

// New creates a segmenter. By default the window is the dictionary's
// MaxWords and ticker annotations like "( moex :" are excluded.
func New(d Lookuper, opts ...Option) *Segmenter {
	s := &Segmenter{
		dict:      d,
		maxWindow: d.MaxWords(),
		exclusion: DefaultTickerAnnotation(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.maxWindow <= 0 {
		s.maxWindow = dict.DefaultMaxWords
	}
	return s
}

// MaxWindow returns the longest window considered.
func (s *Segmenter) MaxWindow() int { return s.maxWindow }

// Segment computes the maximum-coverage choice table for seq.
//
// best[i] is the largest number of stems in tokens[0..i] covered by
// non-overlapping dictionary phrases. Each index starts from "no phrase ends
// here" (best[i-1]) and windows are tried from size 1 upwards; a window wins
// only if it strictly improves the incumbent.
func (s *Segmenter) Segment(seq token.Sequence) Choices {
	n := seq.Len()
	choices := make(Choices, n)
	if n == 0 {
		return choices
	}

	best := make([]int, n)
	at := func(i int) int {
		if i < 0 {
			return 0
		}
		return best[i]
	}

	for i := 0; i < n; i++ {
		best[i] = at(i - 1)
		choices[i] = None

		var key string
		limit := min(s.maxWindow, i+1)
		for size := 1; size <= limit; size++ {
			start := i - size + 1
			if size == 1 {
				key = seq.Tokens[i].Stem
			} else {
				key = seq.Tokens[start].Stem + " " + key
			}
			m, ok := s.dict.Lookup(key)
			if !ok {
				continue
			}
			if s.exclusion != nil && s.exclusion.Excluded(seq, start, i+1) {
				continue
			}
			if cand := at(start-1) + m.Words; cand > best[i] {
				best[i] = cand
				choices[i] = size
			}
		}
	}

	return choices
}
