package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newDecodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode [id...]",
		Short: "Decode token ids back into text using the trained model",
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			if len(args) == 0 {
				return fmt.Errorf("at least one token id is required")
			}

			ids := make([]int, 0, len(args))
			for _, arg := range args {
				for _, field := range strings.Fields(strings.ReplaceAll(arg, ",", " ")) {
					id, err := strconv.Atoi(field)
					if err != nil {
						return fmt.Errorf("invalid token id %q: %w", field, err)
					}
					ids = append(ids, id)
				}
			}

			tok, err := loadTokenizer(cfg)
			if err != nil {
				return err
			}

			fmt.Fprintln(os.Stdout, tok.Decode(ids))
			return nil
		},
	}

	return cmd
}
