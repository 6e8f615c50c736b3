package tokenizer

import (
	"fmt"
	"strings"

	"github.com/example/go-subtok/internal/text"
)

// WordPiece encodes text against a WordPiece-trained vocabulary using greedy
// longest-match segmentation.
type WordPiece struct {
	vocab *Vocabulary
	pre   *text.Preprocessor
}

// TrainWordPiece learns a WordPiece vocabulary from the corpus frequency table.
func TrainWordPiece(table *text.Frequencies, opts TrainOptions) (*WordPiece, error) {
	v, err := train(table, VariantWordPiece, opts, scoreByLikelihood)
	if err != nil {
		return nil, err
	}
	return NewWordPiece(v)
}

// NewWordPiece builds the encoder for an existing WordPiece vocabulary.
func NewWordPiece(v *Vocabulary) (*WordPiece, error) {
	if v.Variant() != VariantWordPiece {
		return nil, fmt.Errorf("vocabulary variant is %q, want %q", v.Variant(), VariantWordPiece)
	}

	return &WordPiece{
		vocab: v,
		pre:   text.MustDefaultPreprocessor(),
	}, nil
}

// SetPreprocessor overrides the word splitter used before encoding. It must
// match the preprocessing the training corpus went through.
func (w *WordPiece) SetPreprocessor(p *text.Preprocessor) { w.pre = p }

// Vocab returns the underlying vocabulary.
func (w *WordPiece) Vocab() *Vocabulary { return w.vocab }

// Encode splits text into subword units and returns their token ids.
func (w *WordPiece) Encode(s string) []int {
	return w.vocab.idsOf(w.EncodeTokens(s))
}

// EncodeTokens splits text into subword token strings.
func (w *WordPiece) EncodeTokens(s string) []string {
	var out []string
	for _, word := range w.pre.Words(s) {
		out = append(out, w.encodeWord(word)...)
	}
	return out
}

// encodeWord performs greedy longest-match segmentation: at each position it
// emits the longest vocabulary token (continuation-prefixed when not at word
// start) that prefixes the remaining suffix. A word with no valid
// segmentation collapses to a single unknown token; unlike BPE there is no
// per-character degrade.
func (w *WordPiece) encodeWord(word string) []string {
	sp := w.vocab.specials

	runes := []rune(word)
	if len(runes) == 0 {
		return nil
	}

	subwords := make([]string, 0, len(runes))
	start := 0

	for start < len(runes) {
		end := len(runes)
		found := false

		for start < end {
			sub := string(runes[start:end])
			if start > 0 {
				sub = sp.Continuation + sub
			}
			if w.vocab.Contains(sub) {
				subwords = append(subwords, sub)
				start = end
				found = true
				break
			}
			end--
		}

		if !found {
			// Whole-word fallback: the entire word becomes one unknown token.
			return []string{sp.Unknown}
		}
	}

	return subwords
}

// Decode reconstructs text from ids: continuation-prefixed tokens attach to
// the current word, any other token starts a new one. Special tokens,
// including the unknown token, are dropped.
func (w *WordPiece) Decode(ids []int) string {
	sp := w.vocab.specials

	var words []string
	var current strings.Builder

	for _, id := range ids {
		tok, ok := w.vocab.Token(id)
		if !ok {
			continue
		}
		if tok == sp.Pad || tok == sp.BOS || tok == sp.EOS || tok == sp.Unknown {
			continue
		}

		if rest, isCont := strings.CutPrefix(tok, sp.Continuation); isCont && sp.Continuation != "" {
			current.WriteString(rest)
			continue
		}

		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
		current.WriteString(tok)
	}

	if current.Len() > 0 {
		words = append(words, current.String())
	}

	return strings.Join(words, " ")
}
