package score

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/mentions/pkg/mentions/internalerr"
)

// Term is the model entry for one vocabulary stem.
type Term struct {
	IDF    float64 `yaml:"idf"`
	Weight float64 `yaml:"weight"`
}

// Label maps a raw model value to a class: the label with the highest Min not
// above the raw value wins.
type Label struct {
	Min   float64 `yaml:"min"`
	Value float64 `yaml:"value"`
}

// LinearModel is the serialized form of a Linear scorer.
type LinearModel struct {
	Intercept  float64         `yaml:"intercept"`
	Normalize  bool            `yaml:"normalize"`
	Vocabulary map[string]Term `yaml:"vocabulary"`
	Labels     []Label         `yaml:"labels"`
}

// Linear scores a window as intercept + Σ tfidf(t)·weight(t). With Normalize
// set the TF-IDF vector is L2-normalised first. Stems outside the vocabulary
// are ignored. A Linear is read-only after construction.
type Linear struct {
	model LinearModel
}

// NewLinear validates m and builds a scorer.
func NewLinear(m LinearModel) (*Linear, error) {
	for term, t := range m.Vocabulary {
		if t.IDF < 0 || math.IsNaN(t.IDF) || math.IsNaN(t.Weight) {
			return nil, fmt.Errorf("%w: term %q has invalid idf/weight", internalerr.ErrInvalidConfig, term)
		}
	}
	labels := append([]Label(nil), m.Labels...)
	sort.SliceStable(labels, func(i, j int) bool { return labels[i].Min < labels[j].Min })
	m.Labels = labels
	return &Linear{model: m}, nil
}

// LoadLinear reads a model from a YAML file.
//
// Expected format:
//
//	intercept: 3.0
//	normalize: true
//	vocabulary:
//	  рост: {idf: 1.7, weight: 0.9}
//	  убыт: {idf: 2.1, weight: -1.4}
//	labels:
//	  - {min: -1e9, value: 1}
//	  - {min: 2.5, value: 3}
//	  - {min: 3.5, value: 5}
func LoadLinear(path string) (*Linear, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m LinearModel
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidConfig, path, err)
	}
	return NewLinear(m)
}

// Score implements Scorer.
func (l *Linear) Score(ctx context.Context, tokens []string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, Error(err)
	}
	return l.label(l.Raw(tokens)), nil
}

// Raw returns the linear value before labels are applied.
func (l *Linear) Raw(tokens []string) float64 {
	counts := make(map[string]float64, len(tokens))
	for _, tok := range tokens {
		if _, ok := l.model.Vocabulary[tok]; ok {
			counts[tok]++
		}
	}

	var norm float64
	if l.model.Normalize {
		for tok, c := range counts {
			v := c * l.model.Vocabulary[tok].IDF
			norm += v * v
		}
		norm = math.Sqrt(norm)
	}

	sum := l.model.Intercept
	for tok, c := range counts {
		term := l.model.Vocabulary[tok]
		v := c * term.IDF
		if norm > 0 {
			v /= norm
		}
		sum += v * term.Weight
	}
	return sum
}

func (l *Linear) label(raw float64) float64 {
	labels := l.model.Labels
	if len(labels) == 0 {
		return raw
	}
	out := labels[0].Value
	for _, lb := range labels {
		if raw < lb.Min {
			break
		}
		out = lb.Value
	}
	return out
}
