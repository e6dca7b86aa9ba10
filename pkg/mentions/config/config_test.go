package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/mentions/pkg/mentions/internalerr"
	"github.com/cognicore/mentions/pkg/mentions/score"
	"github.com/cognicore/mentions/pkg/mentions/store"
	"github.com/cognicore/mentions/pkg/mentions/store/sqlite"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, FormatJSON, cfg.Dictionary.Format)
	assert.Equal(t, DefaultMaxWords, cfg.Dictionary.MaxWords)
	assert.Equal(t, DefaultNumEntities, cfg.Dictionary.NumEntities)
	assert.Equal(t, Int(DefaultMaxMentionID), cfg.Segment.MaxMentionID)
	assert.Equal(t, Int(DefaultRadius), cfg.Segment.Radius)
	assert.Equal(t, DefaultLanguage, cfg.Normalize.Language)
	assert.Equal(t, DefaultWorkers, cfg.Batch.Workers)
	assert.Equal(t, DefaultConstant, cfg.Scorer.Constant)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{Dictionary: DictionaryConfig{Path: "dict.json"}}
		ApplyDefaults(cfg)
		return cfg
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing dictionary path", func(c *Config) { c.Dictionary.Path = "" }},
		{"unknown format", func(c *Config) { c.Dictionary.Format = "csv" }},
		{"sqlite without store", func(c *Config) { c.Dictionary.Format = FormatSQLite }},
		{"negative radius", func(c *Config) { c.Segment.Radius = Int(-1) }},
		{"negative mention bound", func(c *Config) { c.Segment.MaxMentionID = Int(-1) }},
		{"mention bound at entity count", func(c *Config) { c.Segment.MaxMentionID = Int(DefaultNumEntities) }},
		{"mention bound above shrunk entity count", func(c *Config) { c.Dictionary.NumEntities = 10 }},
		{"unset radius", func(c *Config) { c.Segment.Radius = nil }},
		{"negative window", func(c *Config) { c.Segment.MaxWindow = -2 }},
		{"no workers", func(c *Config) { c.Batch.Workers = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), internalerr.ErrInvalidConfig)
		})
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "mentions.yaml", `
dictionary:
  path: /data/dict.json
segment:
  radius: 6
batch:
  workers: 2
log:
  level: debug
`)
	t.Setenv("MENTIONS_BATCH_WORKERS", "16")
	t.Setenv("MENTIONS_SEGMENT_MAX_MENTION_ID", "100")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/dict.json", cfg.Dictionary.Path)
	assert.Equal(t, 6, *cfg.Segment.Radius)
	assert.Equal(t, 16, cfg.Batch.Workers)
	assert.Equal(t, 100, *cfg.Segment.MaxMentionID)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, DefaultMaxWords, cfg.Dictionary.MaxWords)
}

func TestZeroBoundsSurviveDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "zero.yaml", `
dictionary:
  path: /data/dict.json
segment:
  radius: 0
  max_mention_id: 0
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0, *cfg.Segment.Radius)
	assert.Equal(t, 0, *cfg.Segment.MaxMentionID)

	unset := &Config{}
	ApplyDefaults(unset)
	assert.Equal(t, DefaultRadius, *unset.Segment.Radius)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := writeFile(t, t.TempDir(), "bad.yaml", "dictionary:\n  format: csv\n")
	_, err = Load(path)
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MENTIONS_DICTIONARY_PATH", "/env/dict.json")
	t.Setenv("MENTIONS_NORMALIZE_KEEP_HTML", "true")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "/env/dict.json", cfg.Dictionary.Path)
	assert.True(t, cfg.Normalize.KeepHTML)
}

func TestLoaderJSONDictionary(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{
		Dictionary: DictionaryConfig{Path: writeFile(t, dir, "dict.json", `{"сбербанк": 3, "банк росс": 7}`)},
		Normalize:  NormalizeConfig{LexiconPath: writeFile(t, dir, "lexicon.yaml", "aliases:\n  - canonical: сбербанк\n    variants: [сбер]\n")},
		Scorer:     ScorerConfig{ModelPath: writeFile(t, dir, "model.yaml", "intercept: 2.5\n")},
	}
	ApplyDefaults(cfg)
	require.NoError(t, cfg.Validate())

	comp, err := (&Loader{Config: cfg}).Load(context.Background())
	require.NoError(t, err)
	defer comp.Close()

	assert.Equal(t, 2, comp.Dictionary.Len())
	assert.Nil(t, comp.Store)
	assert.IsType(t, &score.Linear{}, comp.Scorer)

	seq, err := comp.Normalizer.Normalize("Сбер")
	require.NoError(t, err)
	require.Len(t, seq.Tokens, 1)
	m, ok := comp.Dictionary.Lookup(seq.Tokens[0].Stem)
	assert.True(t, ok, "alias should reach the dictionary stem, got %q", seq.Tokens[0].Stem)
	assert.EqualValues(t, 3, m.ID)
}

func TestLoaderConstantScorer(t *testing.T) {
	cfg := &Config{Dictionary: DictionaryConfig{Path: writeFile(t, t.TempDir(), "dict.json", `{"втб": 1}`)}}
	ApplyDefaults(cfg)

	comp, err := (&Loader{Config: cfg}).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, score.Constant(DefaultConstant), comp.Scorer)
}

func TestLoaderRemoteScorer(t *testing.T) {
	cfg := &Config{
		Dictionary: DictionaryConfig{Path: writeFile(t, t.TempDir(), "dict.json", `{"втб": 1}`)},
		Scorer:     ScorerConfig{Endpoint: "http://model:9000/score", APIKey: "k"},
	}
	ApplyDefaults(cfg)
	assert.Zero(t, cfg.Scorer.Constant)

	comp, err := (&Loader{Config: cfg}).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &score.Remote{URL: "http://model:9000/score", APIKey: "k"}, comp.Scorer)
}

func TestLoaderSQLiteDictionary(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "mentions.db")

	st, err := sqlite.OpenSQLite(ctx, dbPath)
	require.NoError(t, err)
	require.NoError(t, st.ReplacePhrases(ctx, []store.Phrase{{Key: "газпром", Entity: 12}}))
	require.NoError(t, st.Close())

	cfg := &Config{
		Dictionary: DictionaryConfig{Format: FormatSQLite},
		Store:      StoreConfig{Path: dbPath},
	}
	ApplyDefaults(cfg)
	require.NoError(t, cfg.Validate())

	comp, err := (&Loader{Config: cfg}).Load(ctx)
	require.NoError(t, err)
	defer comp.Close()

	m, ok := comp.Dictionary.Lookup("газпром")
	require.True(t, ok)
	assert.EqualValues(t, 12, m.ID)
	assert.NotNil(t, comp.Store)
}

func TestLoaderFailures(t *testing.T) {
	ctx := context.Background()

	_, err := (&Loader{}).Load(ctx)
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)

	cfg := &Config{Dictionary: DictionaryConfig{Path: filepath.Join(t.TempDir(), "missing.json")}}
	ApplyDefaults(cfg)
	_, err = (&Loader{Config: cfg}).Load(ctx)
	assert.ErrorIs(t, err, internalerr.ErrDictionaryLoad)

	empty := &Config{
		Dictionary: DictionaryConfig{Format: FormatSQLite},
		Store:      StoreConfig{Path: filepath.Join(t.TempDir(), "empty.db")},
	}
	ApplyDefaults(empty)
	_, err = (&Loader{Config: empty}).Load(ctx)
	assert.ErrorIs(t, err, internalerr.ErrNotFound)

	badLang := &Config{Dictionary: DictionaryConfig{Path: writeFile(t, t.TempDir(), "dict.json", `{"втб": 1}`)}}
	ApplyDefaults(badLang)
	badLang.Normalize.Language = "klingon"
	_, err = (&Loader{Config: badLang}).Load(ctx)
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)
}
