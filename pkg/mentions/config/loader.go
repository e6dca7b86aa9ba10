package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/cognicore/mentions/pkg/mentions/dict"
	"github.com/cognicore/mentions/pkg/mentions/internalerr"
	"github.com/cognicore/mentions/pkg/mentions/lexicon"
	"github.com/cognicore/mentions/pkg/mentions/normalize"
	"github.com/cognicore/mentions/pkg/mentions/score"
	"github.com/cognicore/mentions/pkg/mentions/store"
	"github.com/cognicore/mentions/pkg/mentions/store/sqlite"
)

const envPrefix = "MENTIONS"

// keys registered with viper so that MENTIONS_* variables are picked up
// even when the file does not mention them.
var envKeys = []string{
	"dictionary.path", "dictionary.format", "dictionary.max_words", "dictionary.num_entities",
	"segment.max_window", "segment.max_mention_id", "segment.radius", "segment.disable_ticker_exclusion",
	"normalize.language", "normalize.keep_html", "normalize.min_runes", "normalize.lexicon_path",
	"scorer.model_path", "scorer.endpoint", "scorer.api_key", "scorer.constant",
	"batch.workers",
	"store.path",
	"log.level", "log.format",
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, k := range envKeys {
		_ = v.BindEnv(k)
	}
	return v
}

// Load reads the YAML file at path, applies MENTIONS_* overrides (for
// example MENTIONS_BATCH_WORKERS) and defaults, and validates the result.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}
	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from MENTIONS_* variables only.
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	ApplyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Components holds everything built from a Config.
type Components struct {
	Dictionary *dict.Dictionary
	Normalizer normalize.Normalizer
	Scorer     score.Scorer
	// Store is nil when no store path is configured.
	Store store.Store
}

// Close releases the store, if any.
func (c *Components) Close() error {
	if c == nil || c.Store == nil {
		return nil
	}
	return c.Store.Close()
}

// Loader constructs components from a validated Config.
type Loader struct {
	Config *Config
}

// Load opens the store, reads the dictionary, lexicon and scoring model. On
// error anything already opened is released.
func (l *Loader) Load(ctx context.Context) (*Components, error) {
	if l.Config == nil {
		return nil, fmt.Errorf("%w: loader has no configuration", internalerr.ErrInvalidConfig)
	}
	comp := &Components{}
	if err := l.load(ctx, comp); err != nil {
		return nil, errors.Join(err, comp.Close())
	}
	return comp, nil
}

func (l *Loader) load(ctx context.Context, comp *Components) error {
	cfg := l.Config

	if cfg.Store.Path != "" {
		st, err := sqlite.OpenSQLite(ctx, cfg.Store.Path)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		comp.Store = st
	}

	dopts := dict.Options{MaxWords: cfg.Dictionary.MaxWords, NumEntities: cfg.Dictionary.NumEntities}
	var err error
	switch cfg.Dictionary.Format {
	case FormatJSON:
		comp.Dictionary, err = dict.LoadJSON(cfg.Dictionary.Path, dopts)
	case FormatYAML:
		comp.Dictionary, err = dict.LoadYAML(cfg.Dictionary.Path, dopts)
	case FormatSQLite:
		comp.Dictionary, err = dict.FromStore(ctx, comp.Store, dopts)
	default:
		err = fmt.Errorf("unknown dictionary format %q", cfg.Dictionary.Format)
	}
	if err != nil {
		return fmt.Errorf("load dictionary: %w", err)
	}

	nopts := normalize.Options{
		Language:  cfg.Normalize.Language,
		StripHTML: !cfg.Normalize.KeepHTML,
		MinRunes:  cfg.Normalize.MinRunes,
	}
	if cfg.Normalize.LexiconPath != "" {
		lex, err := lexicon.LoadFromYAML(cfg.Normalize.LexiconPath)
		if err != nil {
			return fmt.Errorf("load lexicon: %w", err)
		}
		nopts.Lexicon = lex
	}
	comp.Normalizer, err = normalize.NewSnowball(nopts)
	if err != nil {
		return fmt.Errorf("build normalizer: %w", err)
	}

	switch {
	case cfg.Scorer.ModelPath != "":
		lin, err := score.LoadLinear(cfg.Scorer.ModelPath)
		if err != nil {
			return fmt.Errorf("load scorer model: %w", err)
		}
		comp.Scorer = lin
	case cfg.Scorer.Endpoint != "":
		comp.Scorer = &score.Remote{URL: cfg.Scorer.Endpoint, APIKey: cfg.Scorer.APIKey}
	default:
		comp.Scorer = score.Constant(cfg.Scorer.Constant)
	}

	return nil
}
