package lexicon

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Lexicon rewrites word aliases to a canonical spelling before stemming, so
// that nicknames and transliterations ("сбер", "sber") reach the dictionary
// under the stem of the canonical word ("сбербанк").
//
// Only single words are accepted: rewriting must not change how many words a
// message has, or display indices would drift. A Lexicon is read-only after
// loading and safe for concurrent Normalize calls.
type Lexicon struct {
	// canonical -> all aliases (including canonical itself)
	aliases map[string][]string

	// alias -> canonical
	reverseIndex map[string]string
}

// New creates an empty lexicon.
func New() *Lexicon {
	return &Lexicon{
		aliases:      make(map[string][]string),
		reverseIndex: make(map[string]string),
	}
}

// LoadFromYAML loads alias groups from a YAML file.
//
// Expected format:
//
//	aliases:
//	  - canonical: сбербанк
//	    variants: [сбер, sber, sberbank]
//	  - canonical: газпром
//	    variants: [gazprom]
func LoadFromYAML(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config struct {
		Aliases []struct {
			Canonical string   `yaml:"canonical"`
			Variants  []string `yaml:"variants"`
		} `yaml:"aliases"`
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	lex := New()
	for _, entry := range config.Aliases {
		if err := lex.AddAliasGroup(entry.Canonical, entry.Variants); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	return lex, nil
}

// AddAliasGroup registers aliases for a canonical word. If the group already
// exists, its old reverse index entries are dropped first.
func (l *Lexicon) AddAliasGroup(canonical string, variants []string) error {
	canonical = strings.ToLower(strings.TrimSpace(canonical))
	if canonical == "" || strings.ContainsAny(canonical, " \t\n") {
		return fmt.Errorf("canonical %q must be a single word", canonical)
	}

	if oldVariants, exists := l.aliases[canonical]; exists {
		for _, oldV := range oldVariants {
			delete(l.reverseIndex, oldV)
		}
	}

	normalized := []string{canonical}
	seen := map[string]bool{canonical: true}
	for _, v := range variants {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" || seen[v] {
			continue
		}
		if strings.ContainsAny(v, " \t\n") {
			return fmt.Errorf("alias %q of %q must be a single word", v, canonical)
		}
		normalized = append(normalized, v)
		seen[v] = true
	}

	l.aliases[canonical] = normalized
	for _, v := range normalized {
		l.reverseIndex[v] = canonical
	}
	return nil
}

// Normalize returns the canonical form of a lower-cased word, or the word
// itself when it is not an alias.
func (l *Lexicon) Normalize(word string) string {
	if canonical, ok := l.reverseIndex[word]; ok {
		return canonical
	}
	return word
}

// Variants returns every spelling in the word's group, canonical first.
// Unknown words return a slice containing only themselves.
func (l *Lexicon) Variants(word string) []string {
	word = strings.ToLower(word)
	if canonical, ok := l.reverseIndex[word]; ok {
		return append([]string(nil), l.aliases[canonical]...)
	}
	return []string{word}
}

// Len returns the number of alias groups.
func (l *Lexicon) Len() int { return len(l.aliases) }
