package tokenizer

import (
	"fmt"
	"log/slog"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/example/go-subtok/internal/text"
)

// symbolSeq is one corpus word's current segmentation: an ordered list of
// symbols that starts as base characters and shrinks as merges apply,
// weighted by the word's corpus frequency.
type symbolSeq struct {
	symbols []string
	freq    int
}

type pairKey struct {
	left  string
	right string
}

// lessPair is the shared deterministic tie-break: lexicographic by left
// token string, then right. Every equal-score decision routes through it so
// parallel and sequential statistics aggregation select identical merges.
func lessPair(a, b pairKey) bool {
	if a.left != b.left {
		return a.left < b.left
	}
	return a.right < b.right
}

// trainer runs the shared greedy merge loop. Pair statistics are kept
// incrementally: pairCounts holds corpus-weighted non-overlapping adjacent
// occurrence counts, symCounts per-symbol self frequencies, and pairSeqs a
// reverse index from pair to the sequences containing it, so each merge only
// re-scores the sequences it touched.
type trainer struct {
	variant Variant
	vocab   *Vocabulary
	score   scoreFunc

	seqs       []*symbolSeq
	pairCounts map[pairKey]int
	pairSeqs   map[pairKey]map[int]struct{}
	symCounts  map[string]int
}

// train is the shared training entry point, parameterized by the variant's
// pair scorer. It validates options, seeds the vocabulary with the base
// alphabet, then merges greedily until the target size is reached or no
// eligible pair remains.
func train(table *text.Frequencies, variant Variant, opts TrainOptions, score scoreFunc) (*Vocabulary, error) {
	if table == nil || table.Len() == 0 {
		return nil, fmt.Errorf("train %s: %w", variant, text.ErrEmptyCorpus)
	}
	if opts.MinFrequency < 0 {
		return nil, fmt.Errorf("%w: min frequency %d is negative", ErrInvalidConfig, opts.MinFrequency)
	}

	t := newTrainer(table, variant, score)

	if opts.TargetVocabSize <= t.vocab.Len() {
		return nil, fmt.Errorf("%w: target vocab size %d does not exceed seeded vocabulary size %d",
			ErrInvalidConfig, opts.TargetVocabSize, t.vocab.Len())
	}

	t.buildStats()

	for t.vocab.Len() < opts.TargetVocabSize {
		best, ok := t.selectPair(opts.MinFrequency)
		if !ok {
			slog.Debug("training exhausted: no pair meets the frequency floor",
				slog.String("variant", string(variant)),
				slog.Int("vocab_size", t.vocab.Len()),
				slog.Int("min_frequency", opts.MinFrequency),
			)
			break
		}

		rule := t.vocab.addRule(best.left, best.right, t.pairCounts[best])
		t.applyMerge(best, rule.Result)
	}

	if t.vocab.Len() == opts.TargetVocabSize {
		slog.Debug("training reached target vocabulary size",
			slog.String("variant", string(variant)),
			slog.Int("vocab_size", t.vocab.Len()),
			slog.Int("rules", len(t.vocab.rules)),
		)
	}

	// Training state is discarded here; only the vocabulary survives.
	return t.vocab, nil
}

// newTrainer builds the per-word symbol sequences and seeds the vocabulary
// with the special tokens and every base symbol in first-seen order.
func newTrainer(table *text.Frequencies, variant Variant, score scoreFunc) *trainer {
	sp := DefaultSpecials(variant)
	t := &trainer{
		variant:    variant,
		vocab:      newVocabulary(variant, sp),
		score:      score,
		pairCounts: make(map[pairKey]int),
		pairSeqs:   make(map[pairKey]map[int]struct{}),
		symCounts:  make(map[string]int),
	}

	for _, word := range table.Words() {
		freq := table.Count(word)
		seq := &symbolSeq{
			symbols: initialSymbols(variant, sp, word),
			freq:    freq,
		}
		t.seqs = append(t.seqs, seq)

		for _, sym := range seq.symbols {
			t.vocab.add(sym)
			if t.vocab.freqs != nil {
				t.vocab.freqs[sym] += freq
			}
		}
	}

	return t
}

// initialSymbols splits a word into base symbols per the variant convention:
// BPE appends the end-of-word marker, WordPiece prefixes every non-initial
// character with the continuation marker.
func initialSymbols(variant Variant, sp Specials, word string) []string {
	runes := []rune(word)
	symbols := make([]string, 0, len(runes)+1)

	for i, r := range runes {
		sym := string(r)
		if variant == VariantWordPiece && i > 0 {
			sym = sp.Continuation + sym
		}
		symbols = append(symbols, sym)
	}

	if variant == VariantBPE {
		symbols = append(symbols, sp.EndOfWord)
	}

	return symbols
}

// forEachPair visits the non-overlapping adjacent pair occurrences of
// symbols, left to right. Overlapping repeats ("a a a" for pair (a,a))
// count once, matching how merge application replaces them.
func forEachPair(symbols []string, fn func(pairKey)) {
	var lastEnd map[pairKey]int

	for j := 0; j+1 < len(symbols); j++ {
		k := pairKey{left: symbols[j], right: symbols[j+1]}

		if k.left == k.right {
			if lastEnd == nil {
				lastEnd = make(map[pairKey]int)
			}
			if end, ok := lastEnd[k]; ok && end > j {
				continue
			}
			lastEnd[k] = j + 2
		}

		fn(k)
	}
}

// shardStats is one goroutine's partial aggregate during the initial
// read-only statistics pass.
type shardStats struct {
	pairCounts map[pairKey]int
	pairSeqIdx map[pairKey][]int
	symCounts  map[string]int
}

// buildStats aggregates the initial pair and symbol statistics over all
// sequences. The map step runs in parallel over disjoint sequence shards;
// the reduce step is a commutative sum, so the result is identical to a
// sequential pass.
func (t *trainer) buildStats() {
	n := len(t.seqs)
	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}

	// Shards are disjoint, so the map step needs no locking; the reduce
	// below runs after Wait.
	shards := make([]shardStats, workers)
	var g errgroup.Group

	chunk := (n + workers - 1) / workers
	for w := 0; w < workers; w++ {
		w := w
		lo := w * chunk
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		if lo >= hi {
			continue
		}

		g.Go(func() error {
			st := shardStats{
				pairCounts: make(map[pairKey]int),
				pairSeqIdx: make(map[pairKey][]int),
				symCounts:  make(map[string]int),
			}
			for i := lo; i < hi; i++ {
				seq := t.seqs[i]
				for _, sym := range seq.symbols {
					st.symCounts[sym] += seq.freq
				}
				forEachPair(seq.symbols, func(k pairKey) {
					st.pairCounts[k] += seq.freq
					if idx := st.pairSeqIdx[k]; len(idx) == 0 || idx[len(idx)-1] != i {
						st.pairSeqIdx[k] = append(idx, i)
					}
				})
			}
			shards[w] = st
			return nil
		})
	}
	_ = g.Wait() // shard workers never fail

	for _, st := range shards {
		for k, c := range st.pairCounts {
			t.pairCounts[k] += c
		}
		for sym, c := range st.symCounts {
			t.symCounts[sym] += c
		}
		for k, idxs := range st.pairSeqIdx {
			set := t.pairSeqs[k]
			if set == nil {
				set = make(map[int]struct{})
				t.pairSeqs[k] = set
			}
			for _, i := range idxs {
				set[i] = struct{}{}
			}
		}
	}
}

// selectPair returns the highest-scoring pair whose frequency meets the
// floor, breaking score ties with lessPair. The max over a total order is
// independent of map iteration order, so selection is deterministic.
func (t *trainer) selectPair(minFrequency int) (pairKey, bool) {
	var best pairKey
	var bestScore float64
	found := false

	for k, freq := range t.pairCounts {
		if freq < minFrequency {
			continue
		}

		s := t.score(k, freq, t.symCounts)
		if !found || s > bestScore || (s == bestScore && lessPair(k, best)) {
			best = k
			bestScore = s
			found = true
		}
	}

	return best, found
}

// applyMerge replaces all non-overlapping occurrences of pair with merged in
// every sequence the reverse index lists, restating only those sequences'
// statistics.
func (t *trainer) applyMerge(pair pairKey, merged string) {
	set := t.pairSeqs[pair]

	touched := make([]int, 0, len(set))
	for i := range set {
		touched = append(touched, i)
	}
	sort.Ints(touched)

	for _, i := range touched {
		t.removeSeq(i)
		t.seqs[i].symbols = mergeAdjacent(t.seqs[i].symbols, pair, merged)
		t.addSeq(i)
	}
}

func (t *trainer) addSeq(i int) {
	seq := t.seqs[i]

	for _, sym := range seq.symbols {
		t.symCounts[sym] += seq.freq
	}

	forEachPair(seq.symbols, func(k pairKey) {
		t.pairCounts[k] += seq.freq
		set := t.pairSeqs[k]
		if set == nil {
			set = make(map[int]struct{})
			t.pairSeqs[k] = set
		}
		set[i] = struct{}{}
	})
}

func (t *trainer) removeSeq(i int) {
	seq := t.seqs[i]

	for _, sym := range seq.symbols {
		t.symCounts[sym] -= seq.freq
		if t.symCounts[sym] <= 0 {
			delete(t.symCounts, sym)
		}
	}

	forEachPair(seq.symbols, func(k pairKey) {
		t.pairCounts[k] -= seq.freq
		if t.pairCounts[k] <= 0 {
			delete(t.pairCounts, k)
		}
		if set := t.pairSeqs[k]; set != nil {
			delete(set, i)
			if len(set) == 0 {
				delete(t.pairSeqs, k)
			}
		}
	})
}

// mergeAdjacent replaces non-overlapping left-to-right occurrences of pair
// with merged in a single pass.
func mergeAdjacent(symbols []string, pair pairKey, merged string) []string {
	out := make([]string, 0, len(symbols))

	for j := 0; j < len(symbols); {
		if j+1 < len(symbols) && symbols[j] == pair.left && symbols[j+1] == pair.right {
			out = append(out, merged)
			j += 2
			continue
		}
		out = append(out, symbols[j])
		j++
	}

	return out
}
