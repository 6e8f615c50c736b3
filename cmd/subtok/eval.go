package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/example/go-subtok/internal/quality"
	"github.com/spf13/cobra"
)

func newEvalCmd() *cobra.Command {
	var corpus string

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate tokenizer quality metrics over a held-out corpus",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			if corpus == "" {
				corpus = cfg.Paths.CorpusPath
			}
			if corpus == "" {
				return fmt.Errorf("no corpus given: set --corpus or paths.corpus_path (use - for stdin)")
			}

			segments, err := readCorpusSegments(corpus)
			if err != nil {
				return err
			}

			tok, err := loadTokenizer(cfg)
			if err != nil {
				return err
			}

			report := quality.Evaluate(tok, segments)

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}

	cmd.Flags().StringVar(&corpus, "corpus", "", "Evaluation corpus file (overrides config; - reads stdin)")

	return cmd
}
