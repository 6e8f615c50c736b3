// Package model persists trained vocabularies as versioned JSON files and
// reconstructs equivalent vocabularies from them. The file carries everything
// the encoder needs: the token→id mapping, the ordered merge pairs, the
// variant identifier, and the reserved special-token strings.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/go-subtok/internal/tokenizer"
)

// FormatVersion is the current model file schema version.
const FormatVersion = 1

// ErrUnsupportedVersion is returned when a model file declares a schema
// version this build cannot read.
var ErrUnsupportedVersion = errors.New("unsupported model format version")

// SpecialTokens mirrors tokenizer.Specials in the file schema.
type SpecialTokens struct {
	Pad          string `json:"pad"`
	Unknown      string `json:"unknown"`
	BOS          string `json:"bos"`
	EOS          string `json:"eos"`
	EndOfWord    string `json:"end_of_word,omitempty"`
	Continuation string `json:"continuation,omitempty"`
}

// File is the on-disk model record.
type File struct {
	Version  int            `json:"version"`
	Variant  string         `json:"variant"`
	Vocab    map[string]int `json:"vocab"`
	Merges   [][2]string    `json:"merges"`
	Specials SpecialTokens  `json:"special_tokens"`
}

// Export converts a trained vocabulary into its file record.
func Export(v *tokenizer.Vocabulary) File {
	sp := v.Specials()

	vocab := make(map[string]int, v.Len())
	for id, tok := range v.Tokens() {
		vocab[tok] = id
	}

	rules := v.Rules()
	merges := make([][2]string, 0, len(rules))
	for _, r := range rules {
		merges = append(merges, [2]string{r.Left, r.Right})
	}

	return File{
		Version: FormatVersion,
		Variant: string(v.Variant()),
		Vocab:   vocab,
		Merges:  merges,
		Specials: SpecialTokens{
			Pad:          sp.Pad,
			Unknown:      sp.Unknown,
			BOS:          sp.BOS,
			EOS:          sp.EOS,
			EndOfWord:    sp.EndOfWord,
			Continuation: sp.Continuation,
		},
	}
}

// Save writes the vocabulary's file record to path, creating parent
// directories as needed.
func Save(path string, v *tokenizer.Vocabulary) error {
	record := Export(v)

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encode model file: %w", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create model directory %q: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write model file %q: %w", path, err)
	}
	return nil
}

// Load reads and validates the model file at path and reconstructs an
// equivalent vocabulary from it.
func Load(path string) (*tokenizer.Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model file %q: %w", path, err)
	}

	return Parse(data)
}

// Parse reconstructs a vocabulary from raw model file bytes.
func Parse(data []byte) (*tokenizer.Vocabulary, error) {
	var record File
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode model file: %w", err)
	}

	if err := Validate(record); err != nil {
		return nil, err
	}

	tokensByID := make([]string, len(record.Vocab))
	for tok, id := range record.Vocab {
		tokensByID[id] = tok
	}

	variant, err := tokenizer.ParseVariant(record.Variant)
	if err != nil {
		return nil, err
	}

	sp := tokenizer.Specials{
		Pad:          record.Specials.Pad,
		Unknown:      record.Specials.Unknown,
		BOS:          record.Specials.BOS,
		EOS:          record.Specials.EOS,
		EndOfWord:    record.Specials.EndOfWord,
		Continuation: record.Specials.Continuation,
	}

	v, err := tokenizer.Reconstruct(variant, tokensByID, record.Merges, sp)
	if err != nil {
		return nil, fmt.Errorf("reconstruct vocabulary: %w", err)
	}
	return v, nil
}
