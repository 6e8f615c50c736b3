package model

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/example/go-subtok/internal/text"
	"github.com/example/go-subtok/internal/tokenizer"
)

func trainToy(t *testing.T, variant tokenizer.Variant) tokenizer.Tokenizer {
	t.Helper()

	f := text.NewFrequencies()
	f.Add("low", 5)
	f.Add("lower", 2)
	f.Add("newest", 6)
	f.Add("widest", 3)

	tok, err := tokenizer.Train(f, variant, tokenizer.TrainOptions{TargetVocabSize: 25, MinFrequency: 1})
	if err != nil {
		t.Fatalf("Train(%s): %v", variant, err)
	}
	return tok
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for _, variant := range []tokenizer.Variant{tokenizer.VariantBPE, tokenizer.VariantWordPiece} {
		t.Run(string(variant), func(t *testing.T) {
			trained := trainToy(t, variant)
			path := filepath.Join(t.TempDir(), "models", "subtok.json")

			if err := Save(path, trained.Vocab()); err != nil {
				t.Fatalf("Save: %v", err)
			}

			restored, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}

			if restored.Variant() != variant {
				t.Errorf("restored variant = %q, want %q", restored.Variant(), variant)
			}
			if !reflect.DeepEqual(restored.Tokens(), trained.Vocab().Tokens()) {
				t.Error("restored token ids differ")
			}
			if !reflect.DeepEqual(restored.Rules(), trained.Vocab().Rules()) {
				t.Error("restored merge rules differ")
			}

			rtok, err := tokenizer.New(restored)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			for _, input := range []string{"low", "newest widest", "lowest zq"} {
				if !reflect.DeepEqual(rtok.Encode(input), trained.Encode(input)) {
					t.Errorf("restored tokenizer encodes %q differently", input)
				}
			}
		})
	}
}

func TestExport_Schema(t *testing.T) {
	trained := trainToy(t, tokenizer.VariantBPE)
	record := Export(trained.Vocab())

	if record.Version != FormatVersion {
		t.Errorf("Version = %d, want %d", record.Version, FormatVersion)
	}
	if record.Variant != "bpe" {
		t.Errorf("Variant = %q, want bpe", record.Variant)
	}
	if record.Specials.Unknown != "<UNK>" || record.Specials.EndOfWord != "</w>" {
		t.Errorf("unexpected specials: %+v", record.Specials)
	}
	if len(record.Vocab) != trained.Vocab().Len() {
		t.Errorf("vocab entries = %d, want %d", len(record.Vocab), trained.Vocab().Len())
	}
	if len(record.Merges) != len(trained.Vocab().Rules()) {
		t.Errorf("merges = %d, want %d", len(record.Merges), len(trained.Vocab().Rules()))
	}
}

func TestLoad_FileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParse_InvalidJSON(t *testing.T) {
	_, err := Parse([]byte("{not json"))
	if err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestValidate(t *testing.T) {
	valid := File{
		Version: FormatVersion,
		Variant: "bpe",
		Vocab:   map[string]int{"<PAD>": 0, "<UNK>": 1, "<BOS>": 2, "<EOS>": 3, "a": 4},
		Merges:  nil,
		Specials: SpecialTokens{
			Pad: "<PAD>", Unknown: "<UNK>", BOS: "<BOS>", EOS: "<EOS>", EndOfWord: "</w>",
		},
	}

	if err := Validate(valid); err != nil {
		t.Fatalf("Validate(valid) = %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*File)
		wantErr error
	}{
		{
			name:    "future version",
			mutate:  func(f *File) { f.Version = FormatVersion + 1 },
			wantErr: ErrUnsupportedVersion,
		},
		{
			name:   "empty vocab",
			mutate: func(f *File) { f.Vocab = nil },
		},
		{
			name: "id gap",
			mutate: func(f *File) {
				f.Vocab = map[string]int{"<UNK>": 0, "a": 2}
			},
		},
		{
			name: "duplicate id",
			mutate: func(f *File) {
				f.Vocab = map[string]int{"<UNK>": 0, "a": 1, "b": 1}
			},
		},
		{
			name:   "missing unknown declaration",
			mutate: func(f *File) { f.Specials.Unknown = "" },
		},
		{
			name:   "unknown token not in vocab",
			mutate: func(f *File) { f.Specials.Unknown = "[UNK]" },
		},
		{
			name:   "merge operand not in vocab",
			mutate: func(f *File) { f.Merges = [][2]string{{"a", "zz"}} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid
			f.Vocab = map[string]int{}
			for k, v := range valid.Vocab {
				f.Vocab[k] = v
			}
			tt.mutate(&f)

			err := Validate(f)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSave_FileIsStableJSON(t *testing.T) {
	trained := trainToy(t, tokenizer.VariantWordPiece)
	path := filepath.Join(t.TempDir(), "wp.json")

	if err := Save(path, trained.Vocab()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	var record File
	if err := json.Unmarshal(data, &record); err != nil {
		t.Fatalf("saved file is not valid JSON: %v", err)
	}
	if record.Variant != "wordpiece" {
		t.Errorf("Variant = %q, want wordpiece", record.Variant)
	}
	if record.Specials.Continuation != "##" {
		t.Errorf("Continuation = %q, want ##", record.Specials.Continuation)
	}
}
