package text

import "errors"

// ErrEmptyCorpus is returned when no words can be extracted from a corpus.
var ErrEmptyCorpus = errors.New("corpus contains no words")

// Frequencies is the corpus frequency table: each distinct word mapped to its
// occurrence count. First-seen word order is preserved so that every
// downstream iteration over the table is deterministic.
type Frequencies struct {
	words  []string
	counts map[string]int
}

// NewFrequencies returns an empty frequency table.
func NewFrequencies() *Frequencies {
	return &Frequencies{counts: make(map[string]int)}
}

// Add records n additional occurrences of word.
func (f *Frequencies) Add(word string, n int) {
	if n <= 0 {
		return
	}
	if _, seen := f.counts[word]; !seen {
		f.words = append(f.words, word)
	}
	f.counts[word] += n
}

// Words returns the distinct words in first-seen order.
// The returned slice must not be modified.
func (f *Frequencies) Words() []string {
	return f.words
}

// Count returns the occurrence count for word, or 0 if absent.
func (f *Frequencies) Count(word string) int {
	return f.counts[word]
}

// Len returns the number of distinct words.
func (f *Frequencies) Len() int {
	return len(f.words)
}

// TotalWords returns the summed occurrence count over all words.
func (f *Frequencies) TotalWords() int {
	total := 0
	for _, c := range f.counts {
		total += c
	}
	return total
}

// CountWords builds the corpus frequency table from segments using p.
// It fails with ErrEmptyCorpus when the segments yield no words.
func CountWords(segments []string, p *Preprocessor) (*Frequencies, error) {
	freqs := NewFrequencies()

	for _, segment := range segments {
		for _, w := range p.Words(segment) {
			freqs.Add(w, 1)
		}
	}

	if freqs.Len() == 0 {
		return nil, ErrEmptyCorpus
	}

	return freqs, nil
}
