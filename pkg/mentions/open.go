package mentions

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/cognicore/mentions/internal/metrics"
	"github.com/cognicore/mentions/pkg/mentions/config"
	"github.com/cognicore/mentions/pkg/mentions/dict"
)

// Open loads every component named by cfg and builds an Engine that owns
// them. Close the Engine to release the store.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) (*Engine, error) {
	comp, err := (&config.Loader{Config: cfg}).Load(ctx)
	if err != nil {
		return nil, err
	}

	var maxID *dict.EntityID
	if cfg.Segment.MaxMentionID != nil {
		id := dict.EntityID(*cfg.Segment.MaxMentionID)
		maxID = &id
	}

	e, err := New(Options{
		Dictionary:       comp.Dictionary,
		Normalizer:       comp.Normalizer,
		Scorer:           comp.Scorer,
		Store:            comp.Store,
		Logger:           logger,
		Metrics:          m,
		MaxWindow:        cfg.Segment.MaxWindow,
		MaxMentionID:     maxID,
		Radius:           cfg.Segment.Radius,
		Workers:          cfg.Batch.Workers,
		DisableExclusion: cfg.Segment.DisableTickerExclusion,
	})
	if err != nil {
		return nil, errors.Join(err, comp.Close())
	}

	if logger != nil {
		logger.Info("engine ready",
			zap.Int("phrases", comp.Dictionary.Len()),
			zap.Int("max_words", comp.Dictionary.MaxWords()),
			zap.Int("workers", e.workers),
			zap.Bool("store", comp.Store != nil),
		)
	}
	return e, nil
}
