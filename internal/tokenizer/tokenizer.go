// Package tokenizer learns fixed-size subword vocabularies from a corpus
// frequency table and encodes text against them. Two variants are provided:
// BPE (frequency-driven merges, end-of-word marker, rule-replay encoding) and
// WordPiece (likelihood-driven merges, continuation prefix, greedy
// longest-match encoding). Training is deterministic: equal-scoring pairs are
// broken by the lexicographic order of their token strings.
package tokenizer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/example/go-subtok/internal/text"
)

// ErrInvalidConfig is returned when training options are nonsensical, e.g.
// a target vocabulary size not exceeding the seeded alphabet or a negative
// minimum frequency.
var ErrInvalidConfig = errors.New("invalid training configuration")

// Variant selects the vocabulary-learning algorithm.
type Variant string

const (
	VariantBPE       Variant = "bpe"
	VariantWordPiece Variant = "wordpiece"
)

// ParseVariant converts a case-insensitive variant name to a Variant.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bpe":
		return VariantBPE, nil
	case "wordpiece", "wp":
		return VariantWordPiece, nil
	default:
		return "", fmt.Errorf("unknown tokenizer variant %q (want bpe|wordpiece)", s)
	}
}

// Tokenizer encodes text against a trained Vocabulary and decodes token ids
// back to text. Implementations are safe for concurrent use: encoding is
// read-only against the immutable Vocabulary.
type Tokenizer interface {
	// Encode splits text into subword units and returns their token ids.
	// It never fails: content outside the vocabulary degrades to the
	// unknown token per the variant's fallback policy.
	Encode(text string) []int

	// EncodeTokens is Encode returning token strings instead of ids.
	EncodeTokens(text string) []string

	// Decode reconstructs text from token ids, inverse of Encode modulo
	// whitespace normalization.
	Decode(ids []int) string

	// Vocab returns the underlying vocabulary.
	Vocab() *Vocabulary
}

// TrainOptions configures a training run.
type TrainOptions struct {
	// TargetVocabSize is the stopping bound on |vocabulary|. It must exceed
	// the size of the seeded vocabulary (special tokens plus base alphabet).
	TargetVocabSize int
	// MinFrequency is the merge-eligibility floor: pairs whose corpus-weighted
	// frequency is below it are never merged. Must be non-negative.
	MinFrequency int
}

// Train learns a vocabulary from the corpus frequency table and returns the
// variant's tokenizer over it.
func Train(table *text.Frequencies, variant Variant, opts TrainOptions) (Tokenizer, error) {
	switch variant {
	case VariantBPE:
		return TrainBPE(table, opts)
	case VariantWordPiece:
		return TrainWordPiece(table, opts)
	default:
		return nil, fmt.Errorf("unknown tokenizer variant %q", variant)
	}
}

// New returns the tokenizer for an existing (e.g. restored) vocabulary.
func New(v *Vocabulary) (Tokenizer, error) {
	switch v.Variant() {
	case VariantBPE:
		return NewBPE(v)
	case VariantWordPiece:
		return NewWordPiece(v)
	default:
		return nil, fmt.Errorf("vocabulary has unknown variant %q", v.Variant())
	}
}
