// Package substitute rewrites a stem stream around matched phrases and
// records where each entity was mentioned.
//
// Matched phrases are cut out of the stream. A mention is recorded as the
// index of the last stream token written before the cut, so a phrase at the
// very start of a message is recorded at -1. Positions always refer to the
// rewritten stream returned alongside them.
package substitute

import (
	"go.uber.org/zap"

	"github.com/cognicore/mentions/pkg/mentions/dict"
	"github.com/cognicore/mentions/pkg/mentions/internalerr"
	"github.com/cognicore/mentions/pkg/mentions/segment"
	"github.com/cognicore/mentions/pkg/mentions/token"
)

// DefaultMaxMentionID is the highest entity id treated as an actionable
// mention. Ids above it are dictionary hits that are left in the stream.
const DefaultMaxMentionID dict.EntityID = 274

// Resolver looks up a canonical phrase key.
type Resolver interface {
	Lookup(phrase string) (dict.Match, bool)
}

// Options configures a Substitutor.
type Options struct {
	// MaxMentionID is the inclusive upper bound on recorded entity ids.
	MaxMentionID dict.EntityID
	Logger       *zap.Logger
	// OnSkip is called for every group that could not be resolved. err is
	// internalerr.ErrInconsistentSegmentation for a phrase missing from the
	// dictionary and internalerr.ErrInvalidInput for out-of-order bounds.
	OnSkip func(g segment.Group, key string, err error)
}

// DefaultOptions returns the production bound with logging disabled.
func DefaultOptions() Options {
	return Options{MaxMentionID: DefaultMaxMentionID}
}

// Result is the outcome of one substitution pass.
type Result struct {
	Stream   []token.Token
	Mentions *Mentions
	// Skipped lists groups whose phrase was missing from the dictionary or
	// whose bounds were invalid.
	Skipped []segment.Group
}

// Substitutor is safe for concurrent use.
type Substitutor struct {
	dict   Resolver
	maxID  dict.EntityID
	logger *zap.Logger
	onSkip func(segment.Group, string, error)
}

// New creates a Substitutor over d.
func New(d Resolver, opts Options) *Substitutor {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Substitutor{
		dict:   d,
		maxID:  opts.MaxMentionID,
		logger: logger,
		onSkip: opts.OnSkip,
	}
}

// MaxMentionID returns the inclusive bound on recorded ids.
func (s *Substitutor) MaxMentionID() dict.EntityID { return s.maxID }

// Apply walks groups left to right, cuts resolved phrases out of the stream
// and records their positions. Groups that fail to resolve are skipped; the
// pass never fails as a whole.
func (s *Substitutor) Apply(seq token.Sequence, groups []segment.Group) Result {
	res := Result{
		Stream:   make([]token.Token, 0, seq.Len()),
		Mentions: NewMentions(),
	}

	cut := 0
	for _, g := range groups {
		if g.Start < cut || g.End > seq.Len() || g.Len() <= 0 {
			s.skip(&res, g, "", internalerr.ErrInvalidInput)
			continue
		}

		key := seq.Key(g.Start, g.End)
		m, ok := s.dict.Lookup(key)
		if !ok {
			s.skip(&res, g, key, internalerr.ErrInconsistentSegmentation)
			continue
		}
		if m.ID > s.maxID {
			continue
		}

		res.Stream = append(res.Stream, seq.Tokens[cut:g.Start]...)
		res.Mentions.Add(m.ID, len(res.Stream)-1)
		cut = g.End
	}

	res.Stream = append(res.Stream, seq.Tokens[cut:]...)
	return res
}

func (s *Substitutor) skip(res *Result, g segment.Group, key string, err error) {
	res.Skipped = append(res.Skipped, g)
	s.logger.Warn("skip segmented group",
		zap.Int("start", g.Start),
		zap.Int("end", g.End),
		zap.String("phrase", key),
		zap.Error(err),
	)
	if s.onSkip != nil {
		s.onSkip(g, key, err)
	}
}
