// Package dict implements the phrase dictionary: an immutable table mapping a
// space-joined stem sequence to the entity it names.
//
// A Dictionary is built once and never mutated afterwards, so any number of
// goroutines may call Lookup concurrently without synchronisation.
package dict

import (
	"fmt"
	"sort"
	"strings"
)

// Defaults observed in the production dictionary.
const (
	DefaultMaxWords    = 5
	DefaultNumEntities = 276
)

// EntityID identifies a recognised entity.
type EntityID int

// Match is the result of a successful lookup.
type Match struct {
	ID    EntityID
	Words int // number of stems in the phrase
}

// Entry is one dictionary row, used for export and iteration.
type Entry struct {
	Key   string
	ID    EntityID
	Words int
}

// Options bounds what a dictionary may contain.
type Options struct {
	// MaxWords is the longest phrase, in stems, the dictionary accepts.
	MaxWords int
	// NumEntities is the exclusive upper bound on entity ids.
	NumEntities int
}

// DefaultOptions returns the production bounds.
func DefaultOptions() Options {
	return Options{MaxWords: DefaultMaxWords, NumEntities: DefaultNumEntities}
}

func (o Options) withDefaults() Options {
	if o.MaxWords <= 0 {
		o.MaxWords = DefaultMaxWords
	}
	if o.NumEntities <= 0 {
		o.NumEntities = DefaultNumEntities
	}
	return o
}

// Dictionary is a read-only phrase → entity table.
type Dictionary struct {
	entries     map[string]Match
	maxWords    int
	numEntities int
}

// New validates entries and builds a dictionary. Keys are canonicalised with
// CanonicalKey; two keys that collapse to the same canonical key must agree on
// the entity. Errors are returned as *LoadError.
func New(entries map[string]EntityID, opts Options) (*Dictionary, error) {
	opts = opts.withDefaults()
	d := &Dictionary{
		entries:     make(map[string]Match, len(entries)),
		maxWords:    opts.MaxWords,
		numEntities: opts.NumEntities,
	}

	// Sorted iteration keeps error messages deterministic.
	raw := make([]string, 0, len(entries))
	for k := range entries {
		raw = append(raw, k)
	}
	sort.Strings(raw)

	for _, k := range raw {
		id := entries[k]
		key := CanonicalKey(k)
		if key == "" {
			return nil, &LoadError{Err: fmt.Errorf("empty phrase key %q", k)}
		}
		words := phraseLen(key)
		if words > d.maxWords {
			return nil, &LoadError{Err: fmt.Errorf("phrase %q has %d words, max is %d", key, words, d.maxWords)}
		}
		if id < 0 || int(id) >= d.numEntities {
			return nil, &LoadError{Err: fmt.Errorf("phrase %q: entity id %d outside [0, %d)", key, id, d.numEntities)}
		}
		if prev, ok := d.entries[key]; ok && prev.ID != id {
			return nil, &LoadError{Err: fmt.Errorf("phrase %q maps to both %d and %d", key, prev.ID, id)}
		}
		d.entries[key] = Match{ID: id, Words: words}
	}

	return d, nil
}

// Lookup resolves an exact canonical key.
func (d *Dictionary) Lookup(phrase string) (Match, bool) {
	m, ok := d.entries[phrase]
	return m, ok
}

// MaxWords returns the configured maximum phrase length W.
func (d *Dictionary) MaxWords() int { return d.maxWords }

// NumEntities returns the exclusive upper bound on entity ids.
func (d *Dictionary) NumEntities() int { return d.numEntities }

// Len returns the number of phrases.
func (d *Dictionary) Len() int { return len(d.entries) }

// Entries returns a copy of all rows sorted by key.
func (d *Dictionary) Entries() []Entry {
	out := make([]Entry, 0, len(d.entries))
	for k, m := range d.entries {
		out = append(out, Entry{Key: k, ID: m.ID, Words: m.Words})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// CanonicalKey lower-cases a phrase and collapses runs of whitespace to one
// space.
func CanonicalKey(phrase string) string {
	return strings.Join(strings.Fields(strings.ToLower(phrase)), " ")
}

func phraseLen(phrase string) int {
	return len(strings.Fields(phrase))
}
