package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newEncodeCmd() *cobra.Command {
	var (
		text    string
		showIDs bool
	)

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode text into subword tokens using the trained model",
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			if text == "" && len(args) > 0 {
				text = strings.Join(args, " ")
			}
			if strings.TrimSpace(text) == "" {
				return fmt.Errorf("--text is required for encode")
			}

			tok, err := loadTokenizer(cfg)
			if err != nil {
				return err
			}

			if showIDs {
				ids := tok.Encode(text)
				parts := make([]string, len(ids))
				for i, id := range ids {
					parts[i] = strconv.Itoa(id)
				}
				fmt.Fprintln(os.Stdout, strings.Join(parts, " "))
				return nil
			}

			fmt.Fprintln(os.Stdout, strings.Join(tok.EncodeTokens(text), " "))
			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Text to encode (or pass as arguments)")
	cmd.Flags().BoolVar(&showIDs, "ids", false, "Print token ids instead of token strings")

	return cmd
}
