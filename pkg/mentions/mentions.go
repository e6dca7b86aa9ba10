// Package mentions detects dictionary phrases in free text, cuts a context
// window around every mention and scores each window per entity.
//
// The pipeline for one message is normalize → segment → reconstruct →
// substitute → extract → score. The Engine wires the stages together and
// runs batches with bounded parallelism.
package mentions

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/cognicore/mentions/internal/logging"
	"github.com/cognicore/mentions/internal/metrics"
	"github.com/cognicore/mentions/pkg/mentions/dict"
	"github.com/cognicore/mentions/pkg/mentions/internalerr"
	"github.com/cognicore/mentions/pkg/mentions/normalize"
	"github.com/cognicore/mentions/pkg/mentions/score"
	"github.com/cognicore/mentions/pkg/mentions/segment"
	"github.com/cognicore/mentions/pkg/mentions/store"
	"github.com/cognicore/mentions/pkg/mentions/substitute"
	"github.com/cognicore/mentions/pkg/mentions/window"
)

// DefaultWorkers bounds the number of messages scored concurrently.
const DefaultWorkers = 8

// Engine is the mention scoring facade. It is safe for concurrent use once
// built; all per-message state lives inside a single call.
type Engine struct {
	dict       *dict.Dictionary
	normalizer normalize.Normalizer
	scorer     score.Scorer
	store      store.Store
	segmenter  *segment.Segmenter
	subst      *substitute.Substitutor
	radius     int
	workers    int
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// Options configures an Engine.
type Options struct {
	Dictionary *dict.Dictionary
	Normalizer normalize.Normalizer
	Scorer     score.Scorer
	// Store receives scored results. Optional; closed by Engine.Close.
	Store   store.Store
	Logger  *zap.Logger
	Metrics *metrics.Metrics

	// MaxWindow overrides the dictionary's MaxWords when positive.
	MaxWindow int
	// MaxMentionID defaults to substitute.DefaultMaxMentionID when nil.
	MaxMentionID *dict.EntityID
	// Radius defaults to window.DefaultRadius when nil.
	Radius  *int
	Workers int
	// Exclusion replaces the default ticker rule. DisableExclusion turns
	// exclusions off altogether.
	Exclusion        segment.Exclusion
	DisableExclusion bool
}

// New creates an Engine.
func New(opts Options) (*Engine, error) {
	if opts.Dictionary == nil {
		return nil, fmt.Errorf("%w: dictionary is required", internalerr.ErrInvalidConfig)
	}
	if opts.Normalizer == nil {
		return nil, fmt.Errorf("%w: normalizer is required", internalerr.ErrInvalidConfig)
	}
	if opts.Scorer == nil {
		return nil, fmt.Errorf("%w: scorer is required", internalerr.ErrInvalidConfig)
	}

	logger := logging.OrNop(opts.Logger)

	segOpts := []segment.Option{segment.WithMaxWindow(opts.MaxWindow)}
	switch {
	case opts.DisableExclusion:
		segOpts = append(segOpts, segment.WithExclusion(nil))
	case opts.Exclusion != nil:
		segOpts = append(segOpts, segment.WithExclusion(opts.Exclusion))
	}

	maxID := substitute.DefaultMaxMentionID
	if opts.MaxMentionID != nil {
		maxID = *opts.MaxMentionID
	}
	radius := window.DefaultRadius
	if opts.Radius != nil {
		radius = max(0, *opts.Radius)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	return &Engine{
		dict:       opts.Dictionary,
		normalizer: opts.Normalizer,
		scorer:     opts.Scorer,
		store:      opts.Store,
		segmenter:  segment.New(opts.Dictionary, segOpts...),
		subst:      substitute.New(opts.Dictionary, substitute.Options{MaxMentionID: maxID, Logger: logger}),
		radius:     radius,
		workers:    workers,
		logger:     logger,
		metrics:    opts.Metrics,
	}, nil
}

// Close releases the store, if any.
func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// Dictionary returns the phrase table in use.
func (e *Engine) Dictionary() *dict.Dictionary { return e.dict }

// Message is the unscored analysis of one text.
type Message struct {
	Groups   []segment.Group
	Mentions *substitute.Mentions
	Contexts []window.Context
	// Skipped lists segmented groups that did not resolve to a phrase.
	Skipped []segment.Group
}

// Process runs the detection stages on text. It does no I/O. The error is
// non-nil only when text cannot be normalized.
func (e *Engine) Process(text string) (Message, error) {
	seq, err := e.normalizer.Normalize(text)
	if err != nil {
		return Message{Mentions: substitute.NewMentions()}, err
	}

	groups := segment.Reconstruct(e.segmenter.Segment(seq))
	res := e.subst.Apply(seq, groups)

	return Message{
		Groups:   groups,
		Mentions: res.Mentions,
		Contexts: window.Extract(res.Stream, res.Mentions, e.radius),
		Skipped:  res.Skipped,
	}, nil
}

// EntityScore is the classifier value for one mentioned entity.
type EntityScore struct {
	Entity dict.EntityID `json:"entity"`
	Score  float64       `json:"score"`
}

// Batch is the outcome of scoring a list of messages.
type Batch struct {
	ID string
	// Results has one entry per input message, in input order. An entry is
	// empty (never nil) for a message with no mentions.
	Results [][]EntityScore
}

// ScoreMessages scores every message and returns one result list per input,
// in input order.
func (e *Engine) ScoreMessages(ctx context.Context, messages []string) ([][]EntityScore, error) {
	b, err := e.ScoreBatch(ctx, messages)
	return b.Results, err
}

// ScoreBatch is ScoreMessages with a batch id attached to logs and stored
// results. Up to the configured number of workers run at once.
//
// Empty and malformed messages yield an empty entry. A scorer failure drops
// that entity only. The returned error is the context error when ctx ends
// before every message has been dispatched, in which case undispatched
// entries are nil, or a store error when results could not be persisted.
func (e *Engine) ScoreBatch(ctx context.Context, messages []string) (Batch, error) {
	b := Batch{
		ID:      ulid.MustNew(ulid.Now(), rand.Reader).String(),
		Results: make([][]EntityScore, len(messages)),
	}
	log := e.logger.With(zap.String("batch_id", b.ID))
	e.metrics.ObserveBatch(len(messages))

	sem := semaphore.NewWeighted(int64(e.workers))
	var dispatchErr error
	for i, text := range messages {
		if err := sem.Acquire(ctx, 1); err != nil {
			dispatchErr = err
			break
		}
		go func(i int, text string) {
			defer sem.Release(1)
			b.Results[i] = e.scoreOne(ctx, log.With(zap.Int("message", i)), text)
		}(i, text)
	}
	// Wait for in-flight messages; never cancelled so no goroutine outlives
	// the call.
	_ = sem.Acquire(context.Background(), int64(e.workers))

	if dispatchErr != nil {
		log.Warn("batch cancelled", zap.Error(dispatchErr))
		return b, dispatchErr
	}

	if err := e.persist(ctx, b); err != nil {
		log.Error("persist results", zap.Error(err))
		return b, err
	}
	log.Debug("batch scored", zap.Int("messages", len(messages)))
	return b, nil
}

func (e *Engine) scoreOne(ctx context.Context, log *zap.Logger, text string) []EntityScore {
	start := time.Now()
	out := []EntityScore{}

	msg, err := e.Process(text)
	if err != nil {
		log.Warn("skip malformed message", zap.Error(err))
		e.metrics.ObserveMessage(metrics.OutcomeMalformed, 0, 0, time.Since(start))
		return out
	}

	for _, c := range msg.Contexts {
		v, err := e.scorer.Score(ctx, c.Stems())
		if err != nil {
			log.Warn("scorer failed",
				zap.Int("entity", int(c.Entity)),
				zap.Error(score.Error(err)),
			)
			e.metrics.ScorerFailed()
			continue
		}
		out = append(out, EntityScore{Entity: c.Entity, Score: v})
	}

	outcome := metrics.OutcomeMentions
	if msg.Mentions.Len() == 0 {
		outcome = metrics.OutcomeEmpty
	}
	e.metrics.ObserveMessage(outcome, msg.Mentions.Total(), len(msg.Skipped), time.Since(start))
	return out
}

func (e *Engine) persist(ctx context.Context, b Batch) error {
	if e.store == nil {
		return nil
	}
	now := time.Now().UTC()
	var rows []store.Result
	for i, scores := range b.Results {
		for _, s := range scores {
			rows = append(rows, store.Result{
				BatchID:   b.ID,
				Message:   i,
				Entity:    int(s.Entity),
				Score:     s.Score,
				CreatedAt: now,
			})
		}
	}
	if len(rows) == 0 {
		return nil
	}
	if err := e.store.SaveResults(ctx, rows); err != nil {
		return errors.Join(internalerr.ErrStoreUnavailable, err)
	}
	return nil
}
