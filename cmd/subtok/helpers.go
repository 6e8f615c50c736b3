package main

import (
	"fmt"
	"io"
	"os"

	"github.com/example/go-subtok/internal/config"
	"github.com/example/go-subtok/internal/model"
	"github.com/example/go-subtok/internal/text"
	"github.com/example/go-subtok/internal/tokenizer"
)

// newPreprocessor builds the word-stream preprocessor from the training
// section of the config.
func newPreprocessor(cfg config.TrainConfig) (*text.Preprocessor, error) {
	return text.NewPreprocessor(text.PreprocessOptions{
		Lowercase:        cfg.Lowercase,
		SplitPunctuation: cfg.SplitPunctuation,
		SplitPattern:     cfg.SplitPattern,
	})
}

// readCorpusSegments reads the corpus at path ("-" means stdin), normalizes
// it and splits it into per-line segments.
func readCorpusSegments(path string) ([]string, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
	} else {
		raw, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read corpus %q: %w", path, err)
		}
	}

	normalized, err := text.Normalize(string(raw))
	if err != nil {
		return nil, err
	}

	return text.SplitSegments(normalized), nil
}

// loadTokenizer restores the tokenizer from the configured model file and
// attaches the configured preprocessor so encode-time word splitting matches
// training.
func loadTokenizer(cfg config.Config) (tokenizer.Tokenizer, error) {
	vocab, err := model.Load(cfg.Paths.ModelPath)
	if err != nil {
		return nil, err
	}

	tok, err := tokenizer.New(vocab)
	if err != nil {
		return nil, err
	}

	pre, err := newPreprocessor(cfg.Train)
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case *tokenizer.BPE:
		t.SetPreprocessor(pre)
	case *tokenizer.WordPiece:
		t.SetPreprocessor(pre)
	}

	return tok, nil
}
