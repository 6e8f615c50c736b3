package tokenizer

import "math"

// scoreFunc is the per-variant scoring seam of the shared merge loop: given
// a candidate pair, its corpus-weighted frequency, and the current per-symbol
// self frequencies, it returns the pair's merge priority. Higher wins; ties
// fall back to lessPair.
type scoreFunc func(k pairKey, pairFreq int, symbolFreq map[string]int) float64

// scoreByFrequency is the BPE objective: raw corpus-weighted pair frequency,
// no normalization.
func scoreByFrequency(_ pairKey, pairFreq int, _ map[string]int) float64 {
	return float64(pairFreq)
}

// scoreByLikelihood is the WordPiece objective:
//
//	freq(pair) / (freq(left) × freq(right))
//
// the unsmoothed unigram likelihood-gain ratio. A pair scores high when it
// co-occurs far more often than its marginals predict.
func scoreByLikelihood(k pairKey, pairFreq int, symbolFreq map[string]int) float64 {
	lf := symbolFreq[k.left]
	rf := symbolFreq[k.right]
	if lf == 0 || rf == 0 {
		return math.Inf(-1)
	}
	return float64(pairFreq) / (float64(lf) * float64(rf))
}
