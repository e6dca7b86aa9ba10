package normalize

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/cognicore/mentions/pkg/mentions/internalerr"
	"github.com/cognicore/mentions/pkg/mentions/lexicon"
	"github.com/cognicore/mentions/pkg/mentions/token"
)

// trimStemmer drops a trailing "а" so tests can tell stems from words.
type trimStemmer struct{}

func (trimStemmer) Stem(w string) string { return strings.TrimSuffix(w, "а") }

func TestSplit(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"Сбербанк (MOEX: SBER) вырос", []string{"Сбербанк", "(", "MOEX", ":", "SBER", ")", "вырос"}},
		{"Северсталь-Авто и X5.ru", []string{"Северсталь-Авто", "и", "X5.ru"}},
		{"рост на 1.5% за год.", []string{"рост", "на", "1.5", "%", "за", "год", "."}},
		{"  -- ", []string{"-", "-"}},
		{"", nil},
	}

	for _, tt := range tests {
		if got := Split(tt.text); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Split(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestNormalizeKeepsRawIndices(t *testing.T) {
	n := NewWithStemmer(trimStemmer{}, DefaultOptions())

	seq, err := n.Normalize("В Сбербанка (MOEX: SBER) рост")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	wantDisplay := []string{"в", "сбербанка", "(", "moex", ":", "sber", ")", "рост"}
	if !reflect.DeepEqual(seq.Display, wantDisplay) {
		t.Errorf("Display = %q, want %q", seq.Display, wantDisplay)
	}

	wantTokens := []token.Token{
		{Raw: 1, Stem: "сбербанк"},
		{Raw: 3, Stem: "moex"},
		{Raw: 5, Stem: "sber"},
		{Raw: 7, Stem: "рост"},
	}
	if !reflect.DeepEqual(seq.Tokens, wantTokens) {
		t.Errorf("Tokens = %v, want %v", seq.Tokens, wantTokens)
	}
}

func TestNormalizeMalformed(t *testing.T) {
	n := NewWithStemmer(trimStemmer{}, DefaultOptions())
	_, err := n.Normalize("bad \xff\xfe text")
	if !errors.Is(err, internalerr.ErrMalformedText) {
		t.Errorf("Expected ErrMalformedText, got %v", err)
	}
}

func TestNormalizeEmpty(t *testing.T) {
	n := NewWithStemmer(trimStemmer{}, DefaultOptions())
	seq, err := n.Normalize("   ")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !seq.Empty() {
		t.Errorf("Expected empty sequence, got %v", seq)
	}
}

func TestNormalizeStripsHTML(t *testing.T) {
	n := NewWithStemmer(trimStemmer{}, DefaultOptions())
	seq, err := n.Normalize("<p>Акции <b>Газпром</b></p><script>var x</script>")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !reflect.DeepEqual(seq.Stems(), []string{"акции", "газпром"}) {
		t.Errorf("Unexpected stems %v", seq.Stems())
	}

	opts := DefaultOptions()
	opts.StripHTML = false
	raw := NewWithStemmer(trimStemmer{}, opts)
	seq, _ = raw.Normalize("<b>Газпром</b>")
	if len(seq.Display) <= 1 {
		t.Errorf("Markup should be tokenized when stripping is off, got %v", seq.Display)
	}
}

func TestNormalizeLexicon(t *testing.T) {
	lex := lexicon.New()
	lex.AddAliasGroup("сбербанк", []string{"сбер"})

	opts := DefaultOptions()
	opts.Lexicon = lex
	n := NewWithStemmer(trimStemmer{}, opts)

	seq, _ := n.Normalize("Сбер отчитался")
	if seq.Tokens[0].Stem != "сбербанк" {
		t.Errorf("Alias should be rewritten before stemming, got %v", seq.Tokens[0])
	}
	if seq.Display[0] != "сбер" {
		t.Errorf("Display form should be untouched, got %q", seq.Display[0])
	}
}

func TestSnowballStemmerRussian(t *testing.T) {
	s, err := NewSnowballStemmer("russian")
	if err != nil {
		t.Fatalf("NewSnowballStemmer: %v", err)
	}
	if a, b := s.Stem("сбербанка"), s.Stem("сбербанку"); a != b {
		t.Errorf("Inflections should share a stem, got %q and %q", a, b)
	}

	if _, err := NewSnowballStemmer("klingon"); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("Unknown language should be a config error, got %v", err)
	}
}

func TestNewSnowballConcurrent(t *testing.T) {
	n, err := NewSnowball(DefaultOptions())
	if err != nil {
		t.Fatalf("NewSnowball: %v", err)
	}

	want, _ := n.Normalize("Банк России снизил ключевую ставку")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := n.Normalize("Банк России снизил ключевую ставку")
			if err != nil || !reflect.DeepEqual(got, want) {
				t.Errorf("Concurrent normalize diverged: %v %v", got, err)
			}
		}()
	}
	wg.Wait()
}
