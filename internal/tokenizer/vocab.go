package tokenizer

import (
	"fmt"
	"sort"
	"strings"
)

// Specials holds the reserved token strings for one vocabulary.
// EndOfWord is set for BPE only; Continuation for WordPiece only.
type Specials struct {
	Pad          string
	Unknown      string
	BOS          string
	EOS          string
	EndOfWord    string
	Continuation string
}

// DefaultSpecials returns the reserved token strings for variant.
func DefaultSpecials(variant Variant) Specials {
	sp := Specials{
		Pad:     "<PAD>",
		Unknown: "<UNK>",
		BOS:     "<BOS>",
		EOS:     "<EOS>",
	}
	switch variant {
	case VariantBPE:
		sp.EndOfWord = "</w>"
	case VariantWordPiece:
		sp.Unknown = "[UNK]"
		sp.Continuation = "##"
	}
	return sp
}

// MergeRule is one learned merge: replace the adjacent pair (Left, Right)
// with Result. Rank is the iteration the rule was learned on; ranks are
// strictly increasing with no gaps.
type MergeRule struct {
	Left   string
	Right  string
	Result string
	Rank   int
}

// TokenFreq pairs a token with its training-time frequency.
type TokenFreq struct {
	Token string
	Freq  int
}

// Vocabulary is the trained token inventory: every token mapped to a stable
// id in first-seen order, plus the ordered merge rule list. It is immutable
// once training completes and is the only state the encoder needs.
type Vocabulary struct {
	variant  Variant
	specials Specials
	tokens   []string
	ids      map[string]int
	rules    []MergeRule

	// freqs holds training-time token frequencies for stats output.
	// It is nil on vocabularies restored from disk.
	freqs map[string]int
}

func newVocabulary(variant Variant, sp Specials) *Vocabulary {
	v := &Vocabulary{
		variant:  variant,
		specials: sp,
		ids:      make(map[string]int),
		freqs:    make(map[string]int),
	}
	for _, tok := range []string{sp.Pad, sp.Unknown, sp.BOS, sp.EOS} {
		v.add(tok)
	}
	return v
}

// add inserts tok if absent and returns its id.
func (v *Vocabulary) add(tok string) int {
	if id, ok := v.ids[tok]; ok {
		return id
	}
	id := len(v.tokens)
	v.tokens = append(v.tokens, tok)
	v.ids[tok] = id
	return id
}

func (v *Vocabulary) addRule(left, right string, freq int) MergeRule {
	rule := MergeRule{
		Left:   left,
		Right:  right,
		Result: mergedToken(v.variant, v.specials, left, right),
		Rank:   len(v.rules),
	}
	v.rules = append(v.rules, rule)
	v.add(rule.Result)
	if v.freqs != nil {
		v.freqs[rule.Result] = freq
	}
	return rule
}

// mergedToken concatenates a pair per the variant's marking convention:
// WordPiece strips the continuation prefix from the right operand so the
// result carries the left operand's word-position marking.
func mergedToken(variant Variant, sp Specials, left, right string) string {
	if variant == VariantWordPiece && sp.Continuation != "" {
		return left + strings.TrimPrefix(right, sp.Continuation)
	}
	return left + right
}

// Variant returns the algorithm that produced this vocabulary.
func (v *Vocabulary) Variant() Variant { return v.variant }

// Specials returns the reserved token strings.
func (v *Vocabulary) Specials() Specials { return v.specials }

// Len returns the number of tokens.
func (v *Vocabulary) Len() int { return len(v.tokens) }

// ID returns the id for tok.
func (v *Vocabulary) ID(tok string) (int, bool) {
	id, ok := v.ids[tok]
	return id, ok
}

// Contains reports whether tok is in the vocabulary.
func (v *Vocabulary) Contains(tok string) bool {
	_, ok := v.ids[tok]
	return ok
}

// Token returns the token string for id.
func (v *Vocabulary) Token(id int) (string, bool) {
	if id < 0 || id >= len(v.tokens) {
		return "", false
	}
	return v.tokens[id], true
}

// Tokens returns all tokens in id order. The result is a copy.
func (v *Vocabulary) Tokens() []string {
	return append([]string(nil), v.tokens...)
}

// Rules returns the ordered merge rule list. The result is a copy; rule
// ranks are 0..len-1 in learning order.
func (v *Vocabulary) Rules() []MergeRule {
	return append([]MergeRule(nil), v.rules...)
}

// Frequency returns the training-time frequency recorded for tok, or 0 when
// unknown or when the vocabulary was restored from disk.
func (v *Vocabulary) Frequency(tok string) int {
	if v.freqs == nil {
		return 0
	}
	return v.freqs[tok]
}

// MostFrequent returns up to k tokens ordered by descending training-time
// frequency, ties broken by token string. Empty for restored vocabularies.
func (v *Vocabulary) MostFrequent(k int) []TokenFreq {
	if v.freqs == nil || k <= 0 {
		return nil
	}

	out := make([]TokenFreq, 0, len(v.freqs))
	for tok, f := range v.freqs {
		out = append(out, TokenFreq{Token: tok, Freq: f})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Freq != out[j].Freq {
			return out[i].Freq > out[j].Freq
		}
		return out[i].Token < out[j].Token
	})

	if len(out) > k {
		out = out[:k]
	}
	return out
}

// Reconstruct rebuilds a Vocabulary from its persisted parts: tokens in id
// order and merge pairs in rank order. The result is equivalent to the
// originally trained vocabulary except for training-time frequencies.
func Reconstruct(variant Variant, tokensByID []string, merges [][2]string, sp Specials) (*Vocabulary, error) {
	if variant != VariantBPE && variant != VariantWordPiece {
		return nil, fmt.Errorf("unknown tokenizer variant %q", variant)
	}

	v := &Vocabulary{
		variant:  variant,
		specials: sp,
		tokens:   append([]string(nil), tokensByID...),
		ids:      make(map[string]int, len(tokensByID)),
	}

	for id, tok := range v.tokens {
		if tok == "" {
			return nil, fmt.Errorf("empty token at id %d", id)
		}
		if prev, dup := v.ids[tok]; dup {
			return nil, fmt.Errorf("duplicate token %q at ids %d and %d", tok, prev, id)
		}
		v.ids[tok] = id
	}

	if _, ok := v.ids[sp.Unknown]; !ok {
		return nil, fmt.Errorf("unknown token %q missing from vocabulary", sp.Unknown)
	}

	v.rules = make([]MergeRule, 0, len(merges))
	for rank, m := range merges {
		rule := MergeRule{
			Left:   m[0],
			Right:  m[1],
			Result: mergedToken(variant, sp, m[0], m[1]),
			Rank:   rank,
		}
		if !v.Contains(rule.Result) {
			return nil, fmt.Errorf("merge %d result %q missing from vocabulary", rank, rule.Result)
		}
		v.rules = append(v.rules, rule)
	}

	return v, nil
}
