package store

import (
	"context"
	"time"
)

// Store persists the phrase dictionary and scored batch results.
type Store interface {
	Close() error

	DictionaryStore
	ResultStore
}

// DictionaryStore holds the phrase table the dictionary is built from.
type DictionaryStore interface {
	// ReplacePhrases swaps the whole phrase table in one transaction.
	ReplacePhrases(ctx context.Context, phrases []Phrase) error
	UpsertPhrase(ctx context.Context, p Phrase) error
	Phrases(ctx context.Context) ([]Phrase, error)
}

// ResultStore records the output of scoring batches.
type ResultStore interface {
	SaveResults(ctx context.Context, results []Result) error
	Results(ctx context.Context, batchID string) ([]Result, error)
}

// Phrase is one stored dictionary row.
type Phrase struct {
	Key    string // space-joined stems
	Entity int
}

// Result is one scored entity in one message of a batch.
type Result struct {
	BatchID   string
	Message   int // index of the message in its batch
	Entity    int
	Score     float64
	CreatedAt time.Time
}
