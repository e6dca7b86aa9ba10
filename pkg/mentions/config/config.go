// Package config holds the runtime settings of the mention scorer: where the
// dictionary and scoring model live, the segmentation bounds and the batch
// parallelism.
package config

import (
	"fmt"
	"strings"

	"github.com/cognicore/mentions/internal/logging"
	"github.com/cognicore/mentions/pkg/mentions/internalerr"
)

// Dictionary formats.
const (
	FormatJSON   = "json"
	FormatYAML   = "yaml"
	FormatSQLite = "sqlite"
)

// Config is the root configuration.
type Config struct {
	Dictionary DictionaryConfig `mapstructure:"dictionary"`
	Segment    SegmentConfig    `mapstructure:"segment"`
	Normalize  NormalizeConfig  `mapstructure:"normalize"`
	Scorer     ScorerConfig     `mapstructure:"scorer"`
	Batch      BatchConfig      `mapstructure:"batch"`
	Store      StoreConfig      `mapstructure:"store"`
	Log        logging.Config   `mapstructure:"log"`
}

// DictionaryConfig locates the phrase table.
type DictionaryConfig struct {
	// Path of a json or yaml dictionary file. Ignored for the sqlite format,
	// which reads the phrases table of Store.Path.
	Path        string `mapstructure:"path"`
	Format      string `mapstructure:"format"`
	MaxWords    int    `mapstructure:"max_words"`
	NumEntities int    `mapstructure:"num_entities"`
}

// SegmentConfig bounds segmentation and substitution.
type SegmentConfig struct {
	// MaxWindow overrides the dictionary's MaxWords when positive.
	MaxWindow    int `mapstructure:"max_window"`
	// MaxMentionID and Radius are pointers so that an explicit 0 survives
	// ApplyDefaults.
	MaxMentionID *int `mapstructure:"max_mention_id"`
	Radius       *int `mapstructure:"radius"`
	// DisableTickerExclusion turns off the "( TICKER :" suppression rule.
	DisableTickerExclusion bool `mapstructure:"disable_ticker_exclusion"`
}

// NormalizeConfig configures the Snowball normalizer.
type NormalizeConfig struct {
	Language    string `mapstructure:"language"`
	KeepHTML    bool   `mapstructure:"keep_html"`
	MinRunes    int    `mapstructure:"min_runes"`
	LexiconPath string `mapstructure:"lexicon_path"`
}

// ScorerConfig selects the window classifier: a local linear model, else a
// remote model endpoint, else the constant score for every mention.
type ScorerConfig struct {
	ModelPath string  `mapstructure:"model_path"`
	Endpoint  string  `mapstructure:"endpoint"`
	APIKey    string  `mapstructure:"api_key"`
	Constant  float64 `mapstructure:"constant"`
}

// BatchConfig bounds batch parallelism.
type BatchConfig struct {
	Workers int `mapstructure:"workers"`
}

// StoreConfig points at the sqlite database. Empty disables persistence.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// Defaults.
const (
	DefaultFormat       = FormatJSON
	DefaultMaxWords     = 5
	DefaultNumEntities  = 276
	DefaultMaxMentionID = 274
	DefaultRadius       = 4
	DefaultLanguage     = "russian"
	DefaultMinRunes     = 2
	DefaultWorkers      = 8
	DefaultConstant     = 1.0
)

// Int returns a pointer to v, for the optional integer settings.
func Int(v int) *int { return &v }

// ApplyDefaults fills unset values.
func ApplyDefaults(cfg *Config) {
	if cfg.Dictionary.Format == "" {
		cfg.Dictionary.Format = DefaultFormat
	}
	cfg.Dictionary.Format = strings.ToLower(cfg.Dictionary.Format)
	if cfg.Dictionary.MaxWords == 0 {
		cfg.Dictionary.MaxWords = DefaultMaxWords
	}
	if cfg.Dictionary.NumEntities == 0 {
		cfg.Dictionary.NumEntities = DefaultNumEntities
	}
	if cfg.Segment.MaxMentionID == nil {
		cfg.Segment.MaxMentionID = Int(DefaultMaxMentionID)
	}
	if cfg.Segment.Radius == nil {
		cfg.Segment.Radius = Int(DefaultRadius)
	}
	if cfg.Normalize.Language == "" {
		cfg.Normalize.Language = DefaultLanguage
	}
	if cfg.Normalize.MinRunes == 0 {
		cfg.Normalize.MinRunes = DefaultMinRunes
	}
	if cfg.Scorer.ModelPath == "" && cfg.Scorer.Endpoint == "" && cfg.Scorer.Constant == 0 {
		cfg.Scorer.Constant = DefaultConstant
	}
	if cfg.Batch.Workers == 0 {
		cfg.Batch.Workers = DefaultWorkers
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
}

// Validate checks cross-field constraints. Errors wrap
// internalerr.ErrInvalidConfig.
func (c *Config) Validate() error {
	var problems []string

	switch c.Dictionary.Format {
	case FormatJSON, FormatYAML:
		if c.Dictionary.Path == "" {
			problems = append(problems, "dictionary.path is required")
		}
	case FormatSQLite:
		if c.Store.Path == "" {
			problems = append(problems, "store.path is required for the sqlite dictionary format")
		}
	default:
		problems = append(problems, fmt.Sprintf("dictionary.format %q is not one of json, yaml, sqlite", c.Dictionary.Format))
	}
	if c.Dictionary.MaxWords < 1 {
		problems = append(problems, "dictionary.max_words must be positive")
	}
	if c.Dictionary.NumEntities < 1 {
		problems = append(problems, "dictionary.num_entities must be positive")
	}
	if c.Segment.MaxWindow < 0 {
		problems = append(problems, "segment.max_window must not be negative")
	}
	switch id := c.Segment.MaxMentionID; {
	case id == nil:
		problems = append(problems, "segment.max_mention_id is not set")
	case *id < 0:
		problems = append(problems, "segment.max_mention_id must not be negative")
	case *id >= c.Dictionary.NumEntities:
		problems = append(problems, fmt.Sprintf("segment.max_mention_id %d must be below dictionary.num_entities %d", *id, c.Dictionary.NumEntities))
	}
	if c.Segment.Radius == nil {
		problems = append(problems, "segment.radius is not set")
	} else if *c.Segment.Radius < 0 {
		problems = append(problems, "segment.radius must not be negative")
	}
	if c.Normalize.MinRunes < 1 {
		problems = append(problems, "normalize.min_runes must be positive")
	}
	if c.Batch.Workers < 1 {
		problems = append(problems, "batch.workers must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", internalerr.ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
