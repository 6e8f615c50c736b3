package tokenizer

import (
	"reflect"
	"testing"
)

func TestVocabulary_IDsAreFirstSeenOrder(t *testing.T) {
	tok, err := TrainBPE(toyFrequencies(), TrainOptions{TargetVocabSize: 18, MinFrequency: 2})
	if err != nil {
		t.Fatalf("TrainBPE: %v", err)
	}
	v := tok.Vocab()

	// Specials occupy ids 0..3, then base symbols in corpus scan order.
	want := []string{"<PAD>", "<UNK>", "<BOS>", "<EOS>", "l", "o", "w", "</w>", "e", "r", "n", "s", "t", "i", "d", "es", "est", "est</w>"}
	if !reflect.DeepEqual(v.Tokens(), want) {
		t.Errorf("Tokens() = %v\nwant %v", v.Tokens(), want)
	}

	for id, tok := range want {
		gotID, ok := v.ID(tok)
		if !ok || gotID != id {
			t.Errorf("ID(%q) = (%d, %v), want (%d, true)", tok, gotID, ok, id)
		}
	}

	if _, ok := v.Token(len(want)); ok {
		t.Error("Token accepted an out-of-range id")
	}
	if _, ok := v.Token(-1); ok {
		t.Error("Token accepted a negative id")
	}
}

func TestVocabulary_MostFrequent(t *testing.T) {
	tok, err := TrainBPE(toyFrequencies(), TrainOptions{TargetVocabSize: 18, MinFrequency: 2})
	if err != nil {
		t.Fatalf("TrainBPE: %v", err)
	}
	v := tok.Vocab()

	top := v.MostFrequent(3)
	if len(top) != 3 {
		t.Fatalf("MostFrequent(3) returned %d entries", len(top))
	}
	for i := 1; i < len(top); i++ {
		if top[i].Freq > top[i-1].Freq {
			t.Errorf("MostFrequent not sorted: %+v", top)
		}
	}

	// "</w>" appears once per word occurrence: 5+2+6+3.
	if got := v.Frequency("</w>"); got != 16 {
		t.Errorf("Frequency(</w>) = %d, want 16", got)
	}
}

func TestReconstruct_Equivalence(t *testing.T) {
	trained, err := TrainBPE(toyFrequencies(), TrainOptions{TargetVocabSize: 24, MinFrequency: 1})
	if err != nil {
		t.Fatalf("TrainBPE: %v", err)
	}
	v := trained.Vocab()

	merges := make([][2]string, 0, len(v.Rules()))
	for _, r := range v.Rules() {
		merges = append(merges, [2]string{r.Left, r.Right})
	}

	restored, err := Reconstruct(v.Variant(), v.Tokens(), merges, v.Specials())
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}

	if !reflect.DeepEqual(restored.Rules(), v.Rules()) {
		t.Error("restored rules differ from trained rules")
	}
	if !reflect.DeepEqual(restored.Tokens(), v.Tokens()) {
		t.Error("restored tokens differ from trained tokens")
	}

	rtok, err := New(restored)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, input := range []string{"low", "newest widest", "lowest"} {
		if !reflect.DeepEqual(rtok.Encode(input), trained.Encode(input)) {
			t.Errorf("restored tokenizer encodes %q differently", input)
		}
	}
}

func TestReconstruct_Errors(t *testing.T) {
	sp := DefaultSpecials(VariantBPE)

	tests := []struct {
		name   string
		tokens []string
		merges [][2]string
	}{
		{
			name:   "duplicate token",
			tokens: []string{"<PAD>", "<UNK>", "<BOS>", "<EOS>", "a", "a"},
		},
		{
			name:   "empty token",
			tokens: []string{"<PAD>", "<UNK>", "<BOS>", "<EOS>", ""},
		},
		{
			name:   "missing unknown token",
			tokens: []string{"<PAD>", "<BOS>", "<EOS>", "a"},
		},
		{
			name:   "merge result not in vocabulary",
			tokens: []string{"<PAD>", "<UNK>", "<BOS>", "<EOS>", "a", "b"},
			merges: [][2]string{{"a", "b"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Reconstruct(VariantBPE, tt.tokens, tt.merges, sp); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestDefaultSpecials(t *testing.T) {
	bpe := DefaultSpecials(VariantBPE)
	if bpe.Unknown != "<UNK>" || bpe.EndOfWord != "</w>" || bpe.Continuation != "" {
		t.Errorf("unexpected BPE specials: %+v", bpe)
	}

	wp := DefaultSpecials(VariantWordPiece)
	if wp.Unknown != "[UNK]" || wp.Continuation != "##" || wp.EndOfWord != "" {
		t.Errorf("unexpected WordPiece specials: %+v", wp)
	}
}

// Restored vocabularies drop training-time frequencies; stats degrade to empty.
func TestReconstruct_NoFrequencies(t *testing.T) {
	trained, err := TrainBPE(toyFrequencies(), TrainOptions{TargetVocabSize: 18, MinFrequency: 2})
	if err != nil {
		t.Fatalf("TrainBPE: %v", err)
	}
	v := trained.Vocab()

	restored, err := Reconstruct(v.Variant(), v.Tokens(), nil, v.Specials())
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}

	if got := restored.MostFrequent(5); got != nil {
		t.Errorf("MostFrequent on restored vocab = %v, want nil", got)
	}
	if got := restored.Frequency("</w>"); got != 0 {
		t.Errorf("Frequency on restored vocab = %d, want 0", got)
	}
}
