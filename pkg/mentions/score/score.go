// Package score defines the classifier contract applied to context windows
// with two implementations: a TF-IDF linear model and a client for a model
// served over HTTP.
package score

import (
	"context"
	"errors"
	"fmt"

	"github.com/cognicore/mentions/pkg/mentions/internalerr"
)

// Scorer assigns a value to one context window. Implementations must be safe
// for concurrent use.
type Scorer interface {
	Score(ctx context.Context, tokens []string) (float64, error)
}

// Func adapts a function to Scorer.
type Func func(ctx context.Context, tokens []string) (float64, error)

// Score calls f.
func (f Func) Score(ctx context.Context, tokens []string) (float64, error) {
	return f(ctx, tokens)
}

// Constant always returns the same value. Useful when only mention detection
// is wanted.
type Constant float64

// Score implements Scorer.
func (c Constant) Score(context.Context, []string) (float64, error) {
	return float64(c), nil
}

// Error wraps a failure from a scorer so callers can match internalerr.ErrScorer.
func Error(err error) error {
	if err == nil || errors.Is(err, internalerr.ErrScorer) {
		return err
	}
	return fmt.Errorf("%w: %w", internalerr.ErrScorer, err)
}
