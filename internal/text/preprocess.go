package text

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/dlclark/regexp2"
)

// PreprocessOptions controls how raw text is reduced to a word stream.
type PreprocessOptions struct {
	// Lowercase folds every rune to lower case.
	Lowercase bool
	// SplitPunctuation surrounds .!?;,:() with spaces so punctuation
	// becomes standalone words.
	SplitPunctuation bool
	// SplitPattern is an optional pre-tokenizer pattern. When set, words are
	// the pattern's matches instead of whitespace-delimited fields.
	SplitPattern string
}

// DefaultPreprocessOptions matches the reference training pipeline:
// lowercase, punctuation split out, whitespace-delimited words.
func DefaultPreprocessOptions() PreprocessOptions {
	return PreprocessOptions{
		Lowercase:        true,
		SplitPunctuation: true,
	}
}

// Preprocessor reduces raw text to the word stream consumed by training
// and encoding. The same Preprocessor must be used for both so that
// encoded words line up with the trained vocabulary.
type Preprocessor struct {
	lowercase  bool
	splitPunct bool
	pattern    *regexp2.Regexp
}

// NewPreprocessor builds a Preprocessor from opts.
func NewPreprocessor(opts PreprocessOptions) (*Preprocessor, error) {
	p := &Preprocessor{
		lowercase:  opts.Lowercase,
		splitPunct: opts.SplitPunctuation,
	}

	if opts.SplitPattern != "" {
		re, err := regexp2.Compile(opts.SplitPattern, regexp2.RE2)
		if err != nil {
			return nil, fmt.Errorf("compile split pattern %q: %w", opts.SplitPattern, err)
		}
		p.pattern = re
	}

	return p, nil
}

// MustDefaultPreprocessor returns a Preprocessor with default options.
// The default options never fail to compile.
func MustDefaultPreprocessor() *Preprocessor {
	p, err := NewPreprocessor(DefaultPreprocessOptions())
	if err != nil {
		panic(err)
	}
	return p
}

// Words splits s into the word stream used for training and encoding.
func (p *Preprocessor) Words(s string) []string {
	s = p.rewrite(s)

	if p.pattern == nil {
		return strings.Fields(s)
	}

	return p.match(s)
}

func isSplitPunct(r rune) bool {
	switch r {
	case '.', '!', '?', ';', ',', ':', '(', ')':
		return true
	default:
		return false
	}
}

// rewrite applies the per-rune normalization steps (punctuation spacing,
// lower-casing) before the word split.
func (p *Preprocessor) rewrite(s string) string {
	if !p.lowercase && !p.splitPunct {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))

	for _, r := range s {
		if p.splitPunct && isSplitPunct(r) {
			sb.WriteByte(' ')
			sb.WriteRune(r)
			sb.WriteByte(' ')
			continue
		}
		if p.lowercase {
			r = unicode.ToLower(r)
		}
		sb.WriteRune(r)
	}

	return sb.String()
}

// match collects every match of the pre-tokenizer pattern, in order.
func (p *Preprocessor) match(s string) []string {
	r := []rune(s)

	var words []string
	for m, _ := p.pattern.FindRunesMatch(r); m != nil; m, _ = p.pattern.FindNextMatch(m) {
		w := strings.TrimSpace(m.String())
		if w != "" {
			words = append(words, w)
		}
	}

	return words
}
