package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cognicore/mentions/internal/logging"
	"github.com/cognicore/mentions/pkg/mentions/config"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "mentions",
		Short: "Detect and score company mentions in text",
		Long: `Detect company mentions by matching stemmed phrases against a dictionary,
cut a context window around each mention and score it with a classifier.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to the YAML configuration (MENTIONS_* variables override it)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log.level")

	cmd.AddCommand(newScoreCmd(opts))
	cmd.AddCommand(newImportDictCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	return cmd
}

// load reads the configuration file, or the environment alone when no file
// was given, and builds the logger.
func (o *rootOptions) load() (*config.Config, *zap.Logger, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.Load(o.configPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return nil, nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
