package text

import (
	"errors"
	"reflect"
	"testing"
)

func TestCountWords(t *testing.T) {
	p := MustDefaultPreprocessor()

	freqs, err := CountWords([]string{"low low lower", "Low newest"}, p)
	if err != nil {
		t.Fatalf("CountWords: %v", err)
	}

	if got := freqs.Count("low"); got != 3 {
		t.Errorf("Count(low) = %d, want 3", got)
	}
	if got := freqs.Count("lower"); got != 1 {
		t.Errorf("Count(lower) = %d, want 1", got)
	}
	if got := freqs.Count("missing"); got != 0 {
		t.Errorf("Count(missing) = %d, want 0", got)
	}
	if got := freqs.Len(); got != 3 {
		t.Errorf("Len = %d, want 3", got)
	}
	if got := freqs.TotalWords(); got != 5 {
		t.Errorf("TotalWords = %d, want 5", got)
	}

	// First-seen order is part of the contract: trainer iteration depends on it.
	want := []string{"low", "lower", "newest"}
	if !reflect.DeepEqual(freqs.Words(), want) {
		t.Errorf("Words = %v, want %v", freqs.Words(), want)
	}
}

func TestCountWords_EmptyCorpus(t *testing.T) {
	p := MustDefaultPreprocessor()

	tests := []struct {
		name     string
		segments []string
	}{
		{name: "no segments", segments: nil},
		{name: "whitespace-only segments", segments: []string{"   ", "\t"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CountWords(tt.segments, p)
			if !errors.Is(err, ErrEmptyCorpus) {
				t.Fatalf("CountWords error = %v, want ErrEmptyCorpus", err)
			}
		})
	}
}

func TestFrequenciesAdd_IgnoresNonPositive(t *testing.T) {
	f := NewFrequencies()
	f.Add("word", 0)
	f.Add("word", -1)

	if f.Len() != 0 {
		t.Errorf("Len = %d, want 0", f.Len())
	}
}
