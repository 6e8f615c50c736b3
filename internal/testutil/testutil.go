// Package testutil provides shared corpus and training helpers for tests.
//
// The toy corpus mirrors the classic subword-tokenization teaching example
// ({low, lower, newest, widest}); its merge order is small enough to verify
// by hand, which makes it a convenient fixture across packages.
//
// Typical usage:
//
//	func TestMyFeature(t *testing.T) {
//	    tok := testutil.TrainToyBPE(t)
//	    ...
//	}
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/go-subtok/internal/text"
	"github.com/example/go-subtok/internal/tokenizer"
)

// ToyFrequencies returns the standard toy corpus frequency table:
// low×5, lower×2, newest×6, widest×3.
func ToyFrequencies() *text.Frequencies {
	f := text.NewFrequencies()
	f.Add("low", 5)
	f.Add("lower", 2)
	f.Add("newest", 6)
	f.Add("widest", 3)
	return f
}

// WriteCorpusFile writes lines to a temporary corpus file and returns its
// path. The file lives in a per-test temp dir and is cleaned up automatically.
func WriteCorpusFile(tb testing.TB, lines ...string) string {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "corpus.txt")
	content := strings.Join(lines, "\n") + "\n"

	err := os.WriteFile(path, []byte(content), 0o644)
	if err != nil {
		tb.Fatalf("write corpus file: %v", err)
	}
	return path
}

// TrainToyBPE trains a small BPE tokenizer over the toy corpus.
func TrainToyBPE(tb testing.TB) *tokenizer.BPE {
	tb.Helper()

	tok, err := tokenizer.TrainBPE(ToyFrequencies(), tokenizer.TrainOptions{
		TargetVocabSize: 25,
		MinFrequency:    1,
	})
	if err != nil {
		tb.Fatalf("TrainBPE: %v", err)
	}
	return tok
}

// TrainToyWordPiece trains a small WordPiece tokenizer over the toy corpus.
func TrainToyWordPiece(tb testing.TB) *tokenizer.WordPiece {
	tb.Helper()

	tok, err := tokenizer.TrainWordPiece(ToyFrequencies(), tokenizer.TrainOptions{
		TargetVocabSize: 25,
		MinFrequency:    1,
	})
	if err != nil {
		tb.Fatalf("TrainWordPiece: %v", err)
	}
	return tok
}
