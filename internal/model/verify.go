package model

import (
	"fmt"
)

// Validate checks a model record's structural invariants before
// reconstruction: a readable schema version, a known variant, a dense id
// space starting at 0, and a non-empty unknown token.
func Validate(f File) error {
	if f.Version != FormatVersion {
		return fmt.Errorf("%w: got %d, want %d", ErrUnsupportedVersion, f.Version, FormatVersion)
	}

	if len(f.Vocab) == 0 {
		return fmt.Errorf("model file has an empty vocabulary")
	}

	// Ids must be dense 0..n-1: the vocabulary is stored as a map, so a
	// gap or duplicate would silently corrupt id assignment on reload.
	seen := make([]bool, len(f.Vocab))
	for tok, id := range f.Vocab {
		if id < 0 || id >= len(f.Vocab) {
			return fmt.Errorf("token %q has out-of-range id %d (vocab size %d)", tok, id, len(f.Vocab))
		}
		if seen[id] {
			return fmt.Errorf("duplicate token id %d", id)
		}
		seen[id] = true
	}

	if f.Specials.Unknown == "" {
		return fmt.Errorf("model file does not declare an unknown token")
	}
	if _, ok := f.Vocab[f.Specials.Unknown]; !ok {
		return fmt.Errorf("unknown token %q missing from vocabulary", f.Specials.Unknown)
	}

	for rank, m := range f.Merges {
		if _, ok := f.Vocab[m[0]]; !ok {
			return fmt.Errorf("merge %d left operand %q missing from vocabulary", rank, m[0])
		}
		if _, ok := f.Vocab[m[1]]; !ok {
			return fmt.Errorf("merge %d right operand %q missing from vocabulary", rank, m[1])
		}
	}

	return nil
}
