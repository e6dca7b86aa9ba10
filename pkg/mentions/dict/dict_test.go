package dict

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/cognicore/mentions/pkg/mentions/internalerr"
	"github.com/cognicore/mentions/pkg/mentions/store"
	"github.com/cognicore/mentions/pkg/mentions/store/memstore"
)

func TestNewAndLookup(t *testing.T) {
	d, err := New(map[string]EntityID{
		"сбербанк":    3,
		"банк россии": 7,
	}, DefaultOptions())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	m, ok := d.Lookup("банк россии")
	if !ok || m.ID != 7 || m.Words != 2 {
		t.Errorf("Expected (7, 2 words), got %+v ok=%v", m, ok)
	}
	if _, ok := d.Lookup("банк"); ok {
		t.Error("Partial phrase should not match")
	}
	if d.MaxWords() != DefaultMaxWords || d.NumEntities() != DefaultNumEntities {
		t.Errorf("Unexpected bounds %d/%d", d.MaxWords(), d.NumEntities())
	}
	if d.Len() != 2 {
		t.Errorf("Expected 2 entries, got %d", d.Len())
	}
}

func TestNewCanonicalisesKeys(t *testing.T) {
	d, err := New(map[string]EntityID{"  Банк   России ": 7}, DefaultOptions())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := d.Lookup("банк россии"); !ok {
		t.Error("Key should be lower-cased and whitespace-collapsed")
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		entries map[string]EntityID
		opts    Options
	}{
		{"empty key", map[string]EntityID{"   ": 1}, DefaultOptions()},
		{"too long", map[string]EntityID{"a b c": 1}, Options{MaxWords: 2, NumEntities: 10}},
		{"negative id", map[string]EntityID{"a": -1}, DefaultOptions()},
		{"id out of range", map[string]EntityID{"a": 10}, Options{MaxWords: 5, NumEntities: 10}},
		{"conflicting canonical keys", map[string]EntityID{"Банк": 1, "банк": 2}, DefaultOptions()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.entries, tt.opts)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !errors.Is(err, internalerr.ErrDictionaryLoad) {
				t.Errorf("Error should match ErrDictionaryLoad, got %v", err)
			}
		})
	}
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dict.json")
	os.WriteFile(path, []byte(`{"сбербанк": 3, "банк росс": 7, "мосбирж": 275}`), 0644)

	d, err := LoadJSON(path, DefaultOptions())
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if m, ok := d.Lookup("мосбирж"); !ok || m.ID != 275 {
		t.Errorf("Expected id 275, got %+v", m)
	}
}

func TestLoadJSONErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadJSON(filepath.Join(dir, "missing.json"), DefaultOptions())
	if !errors.Is(err, internalerr.ErrDictionaryLoad) {
		t.Errorf("Missing file should be a load error, got %v", err)
	}

	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte(`{"сбербанк": "three"}`), 0644)
	_, err = LoadJSON(bad, DefaultOptions())
	var le *LoadError
	if !errors.As(err, &le) || le.Path != bad {
		t.Errorf("Malformed file should report its path, got %v", err)
	}

	outOfRange := filepath.Join(dir, "range.json")
	os.WriteFile(outOfRange, []byte(`{"сбербанк": 276}`), 0644)
	_, err = LoadJSON(outOfRange, DefaultOptions())
	if !errors.As(err, &le) || le.Path != outOfRange {
		t.Errorf("Validation error should carry the path, got %v", err)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dict.yaml")
	os.WriteFile(path, []byte("entries:\n  - phrase: сбербанк\n    id: 3\n  - phrase: банк росс\n    id: 7\n"), 0644)

	d, err := LoadYAML(path, DefaultOptions())
	if err != nil {
		t.Fatalf("LoadYAML: %v", err)
	}
	if d.Len() != 2 {
		t.Errorf("Expected 2 entries, got %d", d.Len())
	}

	dup := filepath.Join(t.TempDir(), "dup.yaml")
	os.WriteFile(dup, []byte("entries:\n  - phrase: втб\n    id: 1\n  - phrase: втб\n    id: 2\n"), 0644)
	if _, err := LoadYAML(dup, DefaultOptions()); err == nil {
		t.Error("Conflicting duplicate phrases should fail")
	}
}

func TestFromStore(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()

	if _, err := FromStore(ctx, st, DefaultOptions()); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("Empty store should be a not-found load error, got %v", err)
	}

	st.ReplacePhrases(ctx, []store.Phrase{{Key: "сбербанк", Entity: 3}})
	d, err := FromStore(ctx, st, DefaultOptions())
	if err != nil {
		t.Fatalf("FromStore: %v", err)
	}
	if m, ok := d.Lookup("сбербанк"); !ok || m.ID != 3 {
		t.Errorf("Unexpected lookup %+v", m)
	}

	phrases := d.ToPhrases()
	if len(phrases) != 1 || phrases[0].Entity != 3 {
		t.Errorf("Unexpected export %v", phrases)
	}
}

func TestConcurrentLookup(t *testing.T) {
	d, _ := New(map[string]EntityID{"сбербанк": 3}, DefaultOptions())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				if _, ok := d.Lookup("сбербанк"); !ok {
					t.Error("lookup failed")
					return
				}
			}
		}()
	}
	wg.Wait()
}
