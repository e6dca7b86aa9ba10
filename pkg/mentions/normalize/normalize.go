// Package normalize turns raw message text into a token.Sequence: lower-cased
// display words plus the stems of every word longer than one rune.
package normalize

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kljensen/snowball"
	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/cognicore/mentions/pkg/mentions/internalerr"
	"github.com/cognicore/mentions/pkg/mentions/lexicon"
	"github.com/cognicore/mentions/pkg/mentions/token"
)

// Normalizer produces the token sequence of one message.
type Normalizer interface {
	Normalize(text string) (token.Sequence, error)
}

// Stemmer reduces a lower-cased word to its stem.
type Stemmer interface {
	Stem(word string) string
}

// SnowballStemmer stems with the Snowball algorithm for one language.
type SnowballStemmer struct {
	Language string
}

// NewSnowballStemmer checks that language is supported by the snowball
// package (english, french, hungarian, norwegian, russian, spanish, swedish).
func NewSnowballStemmer(lang string) (SnowballStemmer, error) {
	if _, err := snowball.Stem("probe", lang, true); err != nil {
		return SnowballStemmer{}, fmt.Errorf("%w: stemmer language %q: %v", internalerr.ErrInvalidConfig, lang, err)
	}
	return SnowballStemmer{Language: lang}, nil
}

// Stem implements Stemmer. Stop words are stemmed too.
func (s SnowballStemmer) Stem(word string) string {
	stemmed, err := snowball.Stem(word, s.Language, true)
	if err != nil {
		return word
	}
	return stemmed
}

// Options configures a Snowball normalizer.
type Options struct {
	// Language is both the stemmer language and the lower-casing locale.
	Language string
	// StripHTML extracts text nodes when the message looks like markup.
	StripHTML bool
	// Lexicon rewrites aliases before stemming. Optional.
	Lexicon *lexicon.Lexicon
	// MinRunes is the shortest word that reaches the stem space.
	MinRunes int
}

// DefaultOptions returns the settings used for Russian news text.
func DefaultOptions() Options {
	return Options{Language: "russian", StripHTML: true, MinRunes: 2}
}

// Snowball is the default Normalizer. It is safe for concurrent use.
type Snowball struct {
	stemmer   Stemmer
	lang      language.Tag
	stripHTML bool
	lexicon   *lexicon.Lexicon
	minRunes  int
}

// NewSnowball builds a normalizer with a Snowball stemmer for opts.Language.
func NewSnowball(opts Options) (*Snowball, error) {
	if opts.Language == "" {
		opts.Language = "russian"
	}
	stemmer, err := NewSnowballStemmer(opts.Language)
	if err != nil {
		return nil, err
	}
	return NewWithStemmer(stemmer, opts), nil
}

// NewWithStemmer builds a normalizer around any stemmer.
func NewWithStemmer(stemmer Stemmer, opts Options) *Snowball {
	if opts.MinRunes <= 0 {
		opts.MinRunes = 2
	}
	tag, err := language.Parse(langTag(opts.Language))
	if err != nil {
		tag = language.Und
	}
	return &Snowball{
		stemmer:   stemmer,
		lang:      tag,
		stripHTML: opts.StripHTML,
		lexicon:   opts.Lexicon,
		minRunes:  opts.MinRunes,
	}
}

// Normalize implements Normalizer. Text that is not valid UTF-8 yields an
// error matching internalerr.ErrMalformedText.
func (n *Snowball) Normalize(text string) (token.Sequence, error) {
	if !utf8.ValidString(text) {
		return token.Sequence{}, fmt.Errorf("%w: invalid UTF-8", internalerr.ErrMalformedText)
	}

	if n.stripHTML && strings.ContainsRune(text, '<') {
		text = stripHTML(text)
	}
	// A Caser is stateful and must not be shared between goroutines.
	text = cases.Lower(n.lang).String(norm.NFC.String(text))

	words := Split(text)
	seq := token.Sequence{
		Display: words,
		Tokens:  make([]token.Token, 0, len(words)),
	}
	for i, w := range words {
		if utf8.RuneCountInString(w) < n.minRunes {
			continue
		}
		if n.lexicon != nil {
			w = n.lexicon.Normalize(w)
		}
		stem := n.stemmer.Stem(w)
		if stem == "" {
			continue
		}
		seq.Tokens = append(seq.Tokens, token.Token{Raw: i, Stem: stem})
	}
	return seq, nil
}

func stripHTML(s string) string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		// Fallback to string if parsing fails
		return s
	}

	var buf strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			buf.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extractText(c)
		}
	}
	extractText(doc)

	return strings.TrimSpace(buf.String())
}

func langTag(lang string) string {
	switch strings.ToLower(lang) {
	case "russian":
		return "ru"
	case "english":
		return "en"
	case "french":
		return "fr"
	case "spanish":
		return "es"
	case "swedish":
		return "sv"
	case "norwegian":
		return "no"
	case "hungarian":
		return "hu"
	}
	return lang
}
