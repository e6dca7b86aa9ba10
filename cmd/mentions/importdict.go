package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cognicore/mentions/internal/logging"
	"github.com/cognicore/mentions/pkg/mentions/dict"
	"github.com/cognicore/mentions/pkg/mentions/store"
	"github.com/cognicore/mentions/pkg/mentions/store/sqlite"
)

func newImportDictCmd(root *rootOptions) *cobra.Command {
	var (
		dictPath    string
		dbPath      string
		maxWords    int
		numEntities int
		merge       bool
	)

	cmd := &cobra.Command{
		Use:   "import-dict",
		Short: "Validate a dictionary file and store it in sqlite",
		Long: `Load a JSON ({"phrase": id}) or YAML (entries: [{phrase, id}]) dictionary,
validate it and replace the phrase table of the sqlite database with it.
With --merge the phrases are upserted into the existing table instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(logging.Config{Level: root.logLevel})
			if err != nil {
				return err
			}
			defer logger.Sync()

			opts := dict.Options{MaxWords: maxWords, NumEntities: numEntities}
			var d *dict.Dictionary
			switch strings.ToLower(filepath.Ext(dictPath)) {
			case ".yaml", ".yml":
				d, err = dict.LoadYAML(dictPath, opts)
			default:
				d, err = dict.LoadJSON(dictPath, opts)
			}
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			st, err := sqlite.OpenSQLite(ctx, dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			if merge {
				err = mergePhrases(ctx, st, d, opts)
			} else {
				err = st.ReplacePhrases(ctx, d.ToPhrases())
			}
			if err != nil {
				return fmt.Errorf("store phrases: %w", err)
			}
			logger.Info("dictionary imported",
				zap.String("dict", dictPath),
				zap.String("db", dbPath),
				zap.Int("phrases", d.Len()),
				zap.Bool("merge", merge),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d phrases into %s\n", d.Len(), dbPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&dictPath, "dict", "", "dictionary file (.json or .yaml)")
	cmd.Flags().StringVar(&dbPath, "db", "mentions.db", "sqlite database")
	cmd.Flags().IntVar(&maxWords, "max-words", dict.DefaultMaxWords, "longest phrase in words")
	cmd.Flags().IntVar(&numEntities, "num-entities", dict.DefaultNumEntities, "entity ids are in [0, num-entities)")
	cmd.Flags().BoolVar(&merge, "merge", false, "upsert into the existing phrase table instead of replacing it")
	_ = cmd.MarkFlagRequired("dict")
	return cmd
}

// mergePhrases upserts d into st after checking that the merged table still
// forms a valid dictionary, so a merge cannot leave an unloadable table.
func mergePhrases(ctx context.Context, st store.Store, d *dict.Dictionary, opts dict.Options) error {
	existing, err := st.Phrases(ctx)
	if err != nil {
		return err
	}
	merged := make(map[string]dict.EntityID, len(existing)+d.Len())
	for _, p := range existing {
		merged[p.Key] = dict.EntityID(p.Entity)
	}
	for _, e := range d.Entries() {
		merged[e.Key] = e.ID
	}
	if _, err := dict.New(merged, opts); err != nil {
		return err
	}

	for _, p := range d.ToPhrases() {
		if err := st.UpsertPhrase(ctx, p); err != nil {
			return err
		}
	}
	return nil
}
