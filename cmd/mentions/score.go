package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cognicore/mentions/internal/feed"
	"github.com/cognicore/mentions/pkg/mentions"
)

func newScoreCmd(root *rootOptions) *cobra.Command {
	var input, output string

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a file of messages",
		Long: `Read messages, one per line, and print a JSON array with one entry per
message: the [entity, score] pairs of every entity it mentions.

A line that is a JSON object with a "text" field is read as that text;
any other line is taken verbatim.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := root.load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			var items []feed.Item
			if input == "" || input == "-" {
				items, err = feed.Read(cmd.InOrStdin(), logger)
			} else {
				items, err = feed.ReadFile(input, logger)
			}
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			engine, err := mentions.Open(ctx, cfg, logger, nil)
			if err != nil {
				return err
			}
			defer engine.Close()

			results, err := engine.ScoreMessages(ctx, feed.Texts(items))
			if err != nil {
				return err
			}

			out, closeOut, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			defer closeOut()
			return writeResults(out, results)
		},
	}
	cmd.Flags().StringVar(&input, "input", "-", "messages file, - for stdin")
	cmd.Flags().StringVar(&output, "output", "-", "results file, - for stdout")
	return cmd
}

func openOutput(cmd *cobra.Command, path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

// writeResults prints [[[id, score], ...], ...].
func writeResults(w io.Writer, results [][]mentions.EntityScore) error {
	out := make([][][2]float64, len(results))
	for i, res := range results {
		out[i] = make([][2]float64, len(res))
		for j, s := range res {
			out[i][j] = [2]float64{float64(s.Entity), s.Score}
		}
	}
	enc := json.NewEncoder(w)
	return enc.Encode(out)
}
