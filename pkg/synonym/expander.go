// Package synonym expands lexicon keywords into related words.
//
// Expansion combines a small emotion-tagged thesaurus with a curated table
// of domain associations. The emotion passed as hint selects which senses
// of a polysemous keyword apply.
package synonym

import (
	"sort"
	"strings"

	"github.com/qubicDB/emocore/pkg/core"
)

// Decay factors applied to the source keyword's weight.
const (
	DirectFactor      = 0.8
	AssociationFactor = 0.7
	SecondOrderFactor = 0.5
)

// Synset groups interchangeable words. Emotion is empty for senses that
// apply under any hint.
type Synset struct {
	Emotion core.Emotion
	Words   []string
}

// Expansion is one related word and the factor its weight decays by.
type Expansion struct {
	Word   string
	Factor float64
}

// Expander answers synonym queries. It is immutable after construction and
// safe for concurrent use.
type Expander struct {
	synsets      []Synset
	byWord       map[string][]int
	associations map[core.Emotion]map[string][]string
}

// New returns an expander over the built-in tables.
func New() *Expander {
	return NewWithTables(builtinSynsets, builtinAssociations)
}

// NewWithTables builds an expander over caller-supplied tables.
func NewWithTables(synsets []Synset, associations map[core.Emotion]map[string][]string) *Expander {
	x := &Expander{
		synsets:      make([]Synset, 0, len(synsets)),
		byWord:       make(map[string][]int),
		associations: make(map[core.Emotion]map[string][]string, len(associations)),
	}

	for _, ss := range synsets {
		words := make([]string, 0, len(ss.Words))
		for _, w := range ss.Words {
			if w = normalizeWord(w); w != "" {
				words = append(words, w)
			}
		}
		idx := len(x.synsets)
		x.synsets = append(x.synsets, Synset{Emotion: ss.Emotion, Words: words})
		for _, w := range words {
			x.byWord[w] = append(x.byWord[w], idx)
		}
	}

	for e, table := range associations {
		m := make(map[string][]string, len(table))
		for k, related := range table {
			k = normalizeWord(k)
			for _, r := range related {
				if r = normalizeWord(r); r != "" {
					m[k] = append(m[k], r)
				}
			}
		}
		x.associations[e] = m
	}

	return x
}

// Expand returns words related to keyword under the emotion hint, sorted by
// word. The keyword itself is never returned; each word appears once with
// its strongest factor.
func (x *Expander) Expand(keyword string, hint core.Emotion) []Expansion {
	keyword = normalizeWord(keyword)
	if x == nil || keyword == "" {
		return nil
	}

	factors := make(map[string]float64)
	put := func(w string, f float64) {
		if w == keyword {
			return
		}
		if f > factors[w] {
			factors[w] = f
		}
	}

	direct := x.synonyms(keyword, hint)
	for _, w := range direct {
		put(w, DirectFactor)
	}
	for _, w := range x.associations[hint][keyword] {
		put(w, AssociationFactor)
	}
	for _, d := range direct {
		for _, w := range x.synonyms(d, hint) {
			put(w, SecondOrderFactor)
		}
	}

	out := make([]Expansion, 0, len(factors))
	for w, f := range factors {
		out = append(out, Expansion{Word: w, Factor: f})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Word < out[j].Word })
	return out
}

func (x *Expander) synonyms(word string, hint core.Emotion) []string {
	var out []string
	seen := map[string]bool{word: true}
	for _, idx := range x.byWord[word] {
		ss := x.synsets[idx]
		if ss.Emotion != "" && ss.Emotion != hint {
			continue
		}
		for _, w := range ss.Words {
			if !seen[w] {
				seen[w] = true
				out = append(out, w)
			}
		}
	}
	return out
}

func normalizeWord(w string) string {
	return strings.ToLower(strings.TrimSpace(w))
}
