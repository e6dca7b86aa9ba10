package dict

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/mentions/pkg/mentions/internalerr"
	"github.com/cognicore/mentions/pkg/mentions/store"
)

// LoadError reports a missing or malformed dictionary table. It matches
// internalerr.ErrDictionaryLoad under errors.Is.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("dictionary: %v", e.Err)
	}
	return fmt.Sprintf("dictionary %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() []error {
	return []error{internalerr.ErrDictionaryLoad, e.Err}
}

// LoadJSON reads a flat JSON object of phrase → entity id, e.g.
//
//	{"сбербанк": 3, "банк росс": 7}
func LoadJSON(path string, opts Options) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	var raw map[string]EntityID
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	d, err := New(raw, opts)
	return d, annotate(err, path)
}

// LoadYAML reads a dictionary from a YAML file.
//
// Expected format:
//
//	entries:
//	  - phrase: сбербанк
//	    id: 3
//	  - phrase: банк росс
//	    id: 7
func LoadYAML(path string, opts Options) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	var doc struct {
		Entries []struct {
			Phrase string   `yaml:"phrase"`
			ID     EntityID `yaml:"id"`
		} `yaml:"entries"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	raw := make(map[string]EntityID, len(doc.Entries))
	for _, e := range doc.Entries {
		if prev, ok := raw[e.Phrase]; ok && prev != e.ID {
			return nil, &LoadError{Path: path, Err: fmt.Errorf("phrase %q listed with ids %d and %d", e.Phrase, prev, e.ID)}
		}
		raw[e.Phrase] = e.ID
	}

	d, err := New(raw, opts)
	return d, annotate(err, path)
}

// FromStore builds a dictionary from a persisted phrase table.
func FromStore(ctx context.Context, st store.DictionaryStore, opts Options) (*Dictionary, error) {
	phrases, err := st.Phrases(ctx)
	if err != nil {
		return nil, &LoadError{Path: "store", Err: err}
	}
	if len(phrases) == 0 {
		return nil, &LoadError{Path: "store", Err: internalerr.ErrNotFound}
	}

	raw := make(map[string]EntityID, len(phrases))
	for _, p := range phrases {
		raw[p.Key] = EntityID(p.Entity)
	}
	d, err := New(raw, opts)
	return d, annotate(err, "store")
}

// ToPhrases converts the dictionary into store rows.
func (d *Dictionary) ToPhrases() []store.Phrase {
	entries := d.Entries()
	out := make([]store.Phrase, len(entries))
	for i, e := range entries {
		out[i] = store.Phrase{Key: e.Key, Entity: int(e.ID)}
	}
	return out
}

// annotate fills in the source of a validation error raised by New.
func annotate(err error, path string) error {
	if le, ok := err.(*LoadError); ok && le.Path == "" {
		le.Path = path
	}
	return err
}
