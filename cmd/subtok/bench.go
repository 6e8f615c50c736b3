package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/example/go-subtok/internal/bench"
	"github.com/spf13/cobra"
)

func newBenchCmd() *cobra.Command {
	var (
		text   string
		corpus string
		runs   int
		format string
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark encode throughput of the trained model",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			if runs < 1 {
				return fmt.Errorf("--runs must be at least 1")
			}
			if format != "table" && format != "json" {
				return fmt.Errorf("--format must be 'table' or 'json'")
			}

			var segments []string
			switch {
			case corpus != "":
				segments, err = readCorpusSegments(corpus)
				if err != nil {
					return err
				}
			case strings.TrimSpace(text) != "":
				segments = []string{text}
			default:
				return fmt.Errorf("either --text or --corpus is required for bench")
			}

			tok, err := loadTokenizer(cfg)
			if err != nil {
				return err
			}

			results := bench.Run(tok, segments, runs)
			stats := bench.ComputeStats(bench.Durations(results))

			switch format {
			case "json":
				bench.FormatJSON(results, stats, os.Stdout)
			default:
				bench.FormatTable(results, stats, os.Stdout)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Text to encode for each run")
	cmd.Flags().StringVar(&corpus, "corpus", "", "Corpus file to encode for each run (overrides --text)")
	cmd.Flags().IntVar(&runs, "runs", 5, "Number of encode runs")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table|json")

	return cmd
}
