package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cognicore/mentions/pkg/mentions/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu      sync.RWMutex
	phrases map[string]int
	results map[string][]store.Result
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		phrases: make(map[string]int),
		results: make(map[string][]store.Result),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// ReplacePhrases implements store.DictionaryStore.
func (s *Store) ReplacePhrases(ctx context.Context, phrases []store.Phrase) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.phrases = make(map[string]int, len(phrases))
	for _, p := range phrases {
		s.phrases[p.Key] = p.Entity
	}
	return nil
}

// UpsertPhrase implements store.DictionaryStore.
func (s *Store) UpsertPhrase(ctx context.Context, p store.Phrase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phrases[p.Key] = p.Entity
	return nil
}

// Phrases returns the stored rows sorted by phrase.
func (s *Store) Phrases(ctx context.Context) ([]store.Phrase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.Phrase, 0, len(s.phrases))
	for k, id := range s.phrases {
		out = append(out, store.Phrase{Key: k, Entity: id})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// SaveResults implements store.ResultStore. Rows with the same
// (batch, message, entity) replace earlier ones.
func (s *Store) SaveResults(ctx context.Context, results []store.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range results {
		if r.CreatedAt.IsZero() {
			r.CreatedAt = time.Now()
		}
		rows := s.results[r.BatchID]
		replaced := false
		for i := range rows {
			if rows[i].Message == r.Message && rows[i].Entity == r.Entity {
				rows[i] = r
				replaced = true
				break
			}
		}
		if !replaced {
			rows = append(rows, r)
		}
		s.results[r.BatchID] = rows
	}
	return nil
}

// Results implements store.ResultStore.
func (s *Store) Results(ctx context.Context, batchID string) ([]store.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := append([]store.Result(nil), s.results[batchID]...)
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Message != rows[j].Message {
			return rows[i].Message < rows[j].Message
		}
		return rows[i].Entity < rows[j].Entity
	})
	return rows, nil
}
