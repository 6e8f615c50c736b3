// Package quality computes corpus-level metrics over tokenized output:
// fertility (tokens per word), compression, and out-of-vocabulary rate.
// It consumes the tokenizer's public surface only.
package quality

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/example/go-subtok/internal/text"
	"github.com/example/go-subtok/internal/tokenizer"
)

// Report aggregates tokenization metrics over one corpus.
type Report struct {
	Segments      int `json:"segments"`
	Words         int `json:"words"`
	Characters    int `json:"characters"`
	Tokens        int `json:"tokens"`
	UnknownTokens int `json:"unknown_tokens"`

	// TokensPerWord is the fertility: lower means coarser subwords.
	TokensPerWord float64 `json:"tokens_per_word"`
	// CompressionRatio is characters per emitted token.
	CompressionRatio float64 `json:"compression_ratio"`
	// OOVRate is the share of emitted tokens that are the unknown token.
	OOVRate float64 `json:"oov_rate"`
}

// Evaluate encodes every segment and aggregates the metrics. Encoding of
// independent segments is read-only against the vocabulary, so the segments
// are processed in parallel shards and the counts summed.
func Evaluate(tok tokenizer.Tokenizer, segments []string) Report {
	unk := tok.Vocab().Specials().Unknown
	pre := text.MustDefaultPreprocessor()

	n := len(segments)
	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}

	partials := make([]Report, workers)
	var g errgroup.Group

	chunk := (n + workers - 1) / workers
	for w := 0; w < workers; w++ {
		w := w
		lo := w * chunk
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		if lo >= hi {
			continue
		}

		g.Go(func() error {
			var r Report
			for _, segment := range segments[lo:hi] {
				words := pre.Words(segment)
				if len(words) == 0 {
					continue
				}

				r.Segments++
				r.Words += len(words)
				for _, word := range words {
					r.Characters += len([]rune(word))
				}

				for _, t := range tok.EncodeTokens(segment) {
					r.Tokens++
					if t == unk {
						r.UnknownTokens++
					}
				}
			}
			partials[w] = r
			return nil
		})
	}
	_ = g.Wait() // shard workers never fail

	var total Report
	for _, r := range partials {
		total.Segments += r.Segments
		total.Words += r.Words
		total.Characters += r.Characters
		total.Tokens += r.Tokens
		total.UnknownTokens += r.UnknownTokens
	}

	if total.Words > 0 {
		total.TokensPerWord = float64(total.Tokens) / float64(total.Words)
	}
	if total.Tokens > 0 {
		total.CompressionRatio = float64(total.Characters) / float64(total.Tokens)
		total.OOVRate = float64(total.UnknownTokens) / float64(total.Tokens)
	}

	return total
}
