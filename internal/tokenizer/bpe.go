package tokenizer

import (
	"cmp"
	"fmt"
	"strings"

	heap "github.com/emirpasic/gods/v2/trees/binaryheap"

	"github.com/example/go-subtok/internal/text"
)

// BPE encodes text against a BPE-trained vocabulary by replaying its merge
// rules in ascending rank order.
type BPE struct {
	vocab *Vocabulary
	pre   *text.Preprocessor

	ranks  map[pairKey]int
	merges map[pairKey]string
}

// TrainBPE learns a BPE vocabulary from the corpus frequency table.
func TrainBPE(table *text.Frequencies, opts TrainOptions) (*BPE, error) {
	v, err := train(table, VariantBPE, opts, scoreByFrequency)
	if err != nil {
		return nil, err
	}
	return NewBPE(v)
}

// NewBPE builds the encoder for an existing BPE vocabulary.
func NewBPE(v *Vocabulary) (*BPE, error) {
	if v.Variant() != VariantBPE {
		return nil, fmt.Errorf("vocabulary variant is %q, want %q", v.Variant(), VariantBPE)
	}

	b := &BPE{
		vocab:  v,
		pre:    text.MustDefaultPreprocessor(),
		ranks:  make(map[pairKey]int, len(v.rules)),
		merges: make(map[pairKey]string, len(v.rules)),
	}
	for _, rule := range v.rules {
		k := pairKey{left: rule.Left, right: rule.Right}
		if _, dup := b.ranks[k]; dup {
			continue
		}
		b.ranks[k] = rule.Rank
		b.merges[k] = rule.Result
	}

	return b, nil
}

// SetPreprocessor overrides the word splitter used before encoding. It must
// match the preprocessing the training corpus went through.
func (b *BPE) SetPreprocessor(p *text.Preprocessor) { b.pre = p }

// Vocab returns the underlying vocabulary.
func (b *BPE) Vocab() *Vocabulary { return b.vocab }

// Encode splits text into subword units and returns their token ids.
func (b *BPE) Encode(s string) []int {
	return b.vocab.idsOf(b.EncodeTokens(s))
}

// EncodeTokens splits text into subword token strings. Characters never seen
// during training become the unknown token individually; the rest of the
// word still merges normally.
func (b *BPE) EncodeTokens(s string) []string {
	var out []string
	for _, word := range b.pre.Words(s) {
		out = append(out, b.encodeWord(word)...)
	}
	return out
}

// mergeCand is one adjacent-pair merge candidate inside a word: slot indexes
// into the word's segment list plus the pair's rule rank at push time.
type mergeCand struct {
	a, b  int
	rank  int
	value pairKey
}

// mergeSlot is one position in the doubly linked segment list. A merged-away
// slot has an empty sym.
type mergeSlot struct {
	sym  string
	p, n int
}

// encodeWord seeds the word's base-symbol sequence (end-of-word marker
// appended, unseen characters mapped to the unknown token) and replays merge
// rules in ascending rank order, leftmost occurrence first, via a rank-ordered
// heap over adjacent pairs. Stale heap entries are detected by re-checking
// the slot contents against the candidate's pair.
func (b *BPE) encodeWord(word string) []string {
	sp := b.vocab.specials

	runes := []rune(word)
	slots := make([]mergeSlot, 0, len(runes)+1)
	for _, r := range runes {
		sym := string(r)
		if !b.vocab.Contains(sym) {
			sym = sp.Unknown
		}
		slots = append(slots, mergeSlot{sym: sym})
	}
	slots = append(slots, mergeSlot{sym: sp.EndOfWord})

	for i := range slots {
		slots[i].p = i - 1
		slots[i].n = i + 1
	}

	pairwise := func(a, c int) (mergeCand, bool) {
		if a < 0 || c >= len(slots) {
			return mergeCand{}, false
		}
		k := pairKey{left: slots[a].sym, right: slots[c].sym}
		if k.left == "" || k.right == "" {
			return mergeCand{}, false
		}
		rank, ok := b.ranks[k]
		if !ok {
			return mergeCand{}, false
		}
		return mergeCand{a: a, b: c, rank: rank, value: k}, true
	}

	cands := heap.NewWith(func(i, j mergeCand) int {
		if c := cmp.Compare(i.rank, j.rank); c != 0 {
			return c
		}
		return cmp.Compare(i.a, j.a)
	})

	for i := 0; i+1 < len(slots); i++ {
		if c, ok := pairwise(i, i+1); ok {
			cands.Push(c)
		}
	}

	for !cands.Empty() {
		c, _ := cands.Pop()

		left, right := slots[c.a], slots[c.b]
		if left.sym == "" || right.sym == "" {
			continue // one side was already merged away
		}
		if (pairKey{left: left.sym, right: right.sym}) != c.value {
			continue // stale candidate
		}

		slots[c.a].sym = b.merges[c.value]
		slots[c.b].sym = ""
		slots[c.a].n = right.n
		if right.n < len(slots) {
			slots[right.n].p = c.a
		}

		if nc, ok := pairwise(slots[c.a].p, c.a); ok {
			cands.Push(nc)
		}
		if nc, ok := pairwise(c.a, slots[c.a].n); ok {
			cands.Push(nc)
		}
	}

	out := make([]string, 0, len(slots))
	for _, slot := range slots {
		if slot.sym != "" {
			out = append(out, slot.sym)
		}
	}
	return out
}

// Decode reconstructs text from ids: tokens are concatenated and each
// end-of-word marker becomes a word boundary. Padding and sentence markers
// are dropped; unknown tokens are kept verbatim.
func (b *BPE) Decode(ids []int) string {
	sp := b.vocab.specials

	var sb strings.Builder
	for _, id := range ids {
		tok, ok := b.vocab.Token(id)
		if !ok {
			tok = sp.Unknown
		}
		if tok == sp.Pad || tok == sp.BOS || tok == sp.EOS {
			continue
		}
		sb.WriteString(tok)
	}

	out := strings.ReplaceAll(sb.String(), sp.EndOfWord, " ")
	return strings.TrimSpace(out)
}

// idsOf maps token strings to ids, falling back to the unknown id.
func (v *Vocabulary) idsOf(tokens []string) []int {
	unk := v.ids[v.specials.Unknown]

	ids := make([]int, len(tokens))
	for i, tok := range tokens {
		if id, ok := v.ids[tok]; ok {
			ids[i] = id
		} else {
			ids[i] = unk
		}
	}
	return ids
}
