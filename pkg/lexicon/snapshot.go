package lexicon

import (
	"sort"
	"strings"
	"time"

	"github.com/qubicDB/emocore/pkg/core"
	"github.com/qubicDB/emocore/pkg/synonym"
)

// Weight bounds for lexicon entries.
const (
	MinWeight = 0.0 // exclusive
	MaxWeight = 2.0
)

// Match is one emotion a token contributes to.
type Match struct {
	Emotion core.Emotion
	Weight  float64
	Synonym bool
}

// PhraseEntry is a phrase bound to its emotion.
type PhraseEntry struct {
	Emotion core.Emotion
	Phrase  core.Phrase
	text    string
}

// Text returns the space-joined phrase.
func (p PhraseEntry) Text() string { return p.text }

// Snapshot is an immutable lexicon version. All lookups are safe for
// concurrent use; nothing mutates a snapshot after NewSnapshot returns.
type Snapshot struct {
	version   uint64
	updatedAt time.Time
	keywords  map[core.Emotion]map[string]float64
	phrases   []PhraseEntry
	lookup    map[string][]Match
}

// NewSnapshot builds a snapshot from doc, expanding every keyword through x
// (nil disables synonym matching). Entries with unknown emotions, blank
// keywords or non-positive weights are dropped; weights above MaxWeight are
// clamped.
func NewSnapshot(doc core.LexiconDocument, x *synonym.Expander) *Snapshot {
	s := &Snapshot{
		version:   doc.Version,
		updatedAt: doc.UpdatedAt,
		keywords:  make(map[core.Emotion]map[string]float64, core.EmotionCount),
		lookup:    make(map[string][]Match),
	}

	for _, e := range core.Emotions {
		kws := make(map[string]float64, len(doc.Keywords[e]))
		for k, w := range doc.Keywords[e] {
			k = strings.ToLower(strings.TrimSpace(k))
			if k == "" || w <= MinWeight {
				continue
			}
			kws[k] = ClampWeight(w)
		}
		s.keywords[e] = kws

		for _, p := range doc.Phrases[e] {
			words := make([]string, 0, len(p.Words))
			for _, w := range p.Words {
				if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
					words = append(words, w)
				}
			}
			if len(words) == 0 || p.Weight <= MinWeight {
				continue
			}
			ph := core.Phrase{Words: words, Weight: ClampWeight(p.Weight)}
			s.phrases = append(s.phrases, PhraseEntry{Emotion: e, Phrase: ph, text: ph.Text()})
		}
	}

	s.buildLookup(x)
	return s
}

// buildLookup indexes direct keywords and their synonym expansions. A
// direct entry always wins over a synonym for the same emotion; among
// synonyms the strongest weight wins.
func (s *Snapshot) buildLookup(x *synonym.Expander) {
	type key struct {
		token   string
		emotion core.Emotion
	}
	best := make(map[key]Match)

	for _, e := range core.Emotions {
		for k, w := range s.keywords[e] {
			best[key{k, e}] = Match{Emotion: e, Weight: w}
		}
	}
	if x != nil {
		for _, e := range core.Emotions {
			for k, w := range s.keywords[e] {
				for _, exp := range x.Expand(k, e) {
					if _, direct := s.keywords[e][exp.Word]; direct {
						continue
					}
					m := Match{Emotion: e, Weight: w * exp.Factor, Synonym: true}
					kk := key{exp.Word, e}
					if cur, ok := best[kk]; !ok || m.Weight > cur.Weight {
						best[kk] = m
					}
				}
			}
		}
	}

	for k, m := range best {
		s.lookup[k.token] = append(s.lookup[k.token], m)
	}
	for tok := range s.lookup {
		ms := s.lookup[tok]
		sort.Slice(ms, func(i, j int) bool { return ms[i].Emotion.Index() < ms[j].Emotion.Index() })
	}
}

// Lookup returns the matches for token in label order. The returned slice
// must not be modified.
func (s *Snapshot) Lookup(token string) []Match {
	return s.lookup[token]
}

// Phrases returns every phrase in label order. The returned slice must not
// be modified.
func (s *Snapshot) Phrases() []PhraseEntry {
	return s.phrases
}

// Version returns the snapshot version. Defaults are version 0.
func (s *Snapshot) Version() uint64 { return s.version }

// UpdatedAt returns when the snapshot was produced.
func (s *Snapshot) UpdatedAt() time.Time { return s.updatedAt }

// KeywordCount returns the number of keywords for e.
func (s *Snapshot) KeywordCount(e core.Emotion) int {
	return len(s.keywords[e])
}

// PhraseCount returns the number of phrases for e.
func (s *Snapshot) PhraseCount(e core.Emotion) int {
	n := 0
	for _, p := range s.phrases {
		if p.Emotion == e {
			n++
		}
	}
	return n
}

// Weight returns the direct weight of keyword under e.
func (s *Snapshot) Weight(e core.Emotion, keyword string) (float64, bool) {
	w, ok := s.keywords[e][keyword]
	return w, ok
}

// Document returns a deep copy suitable for persistence or merging.
func (s *Snapshot) Document() core.LexiconDocument {
	doc := core.LexiconDocument{
		Version:   s.version,
		UpdatedAt: s.updatedAt,
		Keywords:  make(map[core.Emotion]map[string]float64, len(s.keywords)),
		Phrases:   make(map[core.Emotion][]core.Phrase),
	}
	for e, kws := range s.keywords {
		m := make(map[string]float64, len(kws))
		for k, w := range kws {
			m[k] = w
		}
		doc.Keywords[e] = m
	}
	for _, p := range s.phrases {
		doc.Phrases[p.Emotion] = append(doc.Phrases[p.Emotion], core.Phrase{
			Words:  append([]string(nil), p.Phrase.Words...),
			Weight: p.Phrase.Weight,
		})
	}
	return doc
}

// ClampWeight bounds w to MaxWeight.
func ClampWeight(w float64) float64 {
	if w > MaxWeight {
		return MaxWeight
	}
	return w
}
