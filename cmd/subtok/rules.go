package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRulesCmd() *cobra.Command {
	var (
		limit  int
		format string
	)

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the trained merge rules in rank order",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			if format != "table" && format != "json" {
				return fmt.Errorf("--format must be 'table' or 'json'")
			}

			tok, err := loadTokenizer(cfg)
			if err != nil {
				return err
			}

			rules := tok.Vocab().Rules()
			if limit > 0 && limit < len(rules) {
				rules = rules[:limit]
			}

			if format == "json" {
				type jsonRule struct {
					Rank   int    `json:"rank"`
					Left   string `json:"left"`
					Right  string `json:"right"`
					Result string `json:"result"`
				}
				out := make([]jsonRule, len(rules))
				for i, r := range rules {
					out[i] = jsonRule{Rank: r.Rank, Left: r.Left, Right: r.Right, Result: r.Result}
				}
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			for _, r := range rules {
				fmt.Fprintf(os.Stdout, "%4d: %s + %s -> %s\n", r.Rank, r.Left, r.Right, r.Result)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Print at most this many rules (0 = all)")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table|json")

	return cmd
}
