package main

import (
	"fmt"
	"os"
	"time"

	"github.com/example/go-subtok/internal/config"
	"github.com/example/go-subtok/internal/model"
	"github.com/example/go-subtok/internal/text"
	"github.com/example/go-subtok/internal/tokenizer"
	"github.com/spf13/cobra"
)

func newTrainCmd() *cobra.Command {
	var (
		corpus string
		output string
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Learn a subword vocabulary from a text corpus",
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
			if output == "" {
				output = cfg.Paths.ModelPath
			}

			algorithm, err := config.NormalizeAlgorithm(cfg.Train.Algorithm)
			if err != nil {
				return err
			}
			variant, err := tokenizer.ParseVariant(algorithm)
			if err != nil {
				return err
			}

			segments, err := readCorpusSegments(corpus)
			if err != nil {
				return err
			}

			pre, err := newPreprocessor(cfg.Train)
			if err != nil {
				return err
			}

			table, err := text.CountWords(segments, pre)
			if err != nil {
				return err
			}

			start := time.Now()
			tok, err := tokenizer.Train(table, variant, tokenizer.TrainOptions{
				TargetVocabSize: cfg.Train.VocabSize,
				MinFrequency:    cfg.Train.MinFrequency,
			})
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			vocab := tok.Vocab()
			if err := model.Save(output, vocab); err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout, "trained %s vocabulary in %s\n", variant, elapsed.Round(time.Millisecond))
			fmt.Fprintf(os.Stdout, "  distinct words: %d (total %d)\n", table.Len(), table.TotalWords())
			fmt.Fprintf(os.Stdout, "  vocabulary:     %d tokens\n", vocab.Len())
			fmt.Fprintf(os.Stdout, "  merge rules:    %d\n", len(vocab.Rules()))
			fmt.Fprintf(os.Stdout, "  model:          %s\n", output)

			rules := vocab.Rules()
			if len(rules) > 0 {
				n := min(len(rules), 5)
				fmt.Fprintln(os.Stdout, "  first merges:")
				for _, r := range rules[:n] {
					fmt.Fprintf(os.Stdout, "    %4d: %s + %s -> %s\n", r.Rank, r.Left, r.Right, r.Result)
				}
			}

			if top := vocab.MostFrequent(5); len(top) > 0 {
				fmt.Fprintln(os.Stdout, "  top tokens:")
				for _, tf := range top {
					fmt.Fprintf(os.Stdout, "    %6d  %s\n", tf.Freq, tf.Token)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&corpus, "corpus", "", "Corpus text file (overrides config; - reads stdin)")
	cmd.Flags().StringVar(&output, "output", "", "Model output path (overrides config)")

	return cmd
}
