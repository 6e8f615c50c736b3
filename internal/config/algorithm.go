package config

import (
	"fmt"
	"strings"
)

const (
	AlgorithmBPE       = "bpe"
	AlgorithmWordPiece = "wordpiece"
)

// NormalizeAlgorithm canonicalizes a user-supplied algorithm name.
// An empty string falls back to BPE.
func NormalizeAlgorithm(raw string) (string, error) {
	algorithm := strings.ToLower(strings.TrimSpace(raw))
	if algorithm == "" {
		algorithm = AlgorithmBPE
	}
	switch algorithm {
	case AlgorithmBPE, AlgorithmWordPiece:
		return algorithm, nil
	case "wp":
		return AlgorithmWordPiece, nil
	default:
		return "", fmt.Errorf(
			"invalid algorithm %q (expected %s|%s|wp)",
			raw,
			AlgorithmBPE,
			AlgorithmWordPiece,
		)
	}
}
