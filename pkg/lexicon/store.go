package lexicon

import (
	"errors"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/qubicDB/emocore/pkg/core"
	"github.com/qubicDB/emocore/pkg/synonym"
)

// Loader reads a persisted lexicon document.
type Loader interface {
	LoadLexicon() (*core.LexiconDocument, error)
}

// Store publishes the current snapshot. Readers call Current once per
// request; writers build a new snapshot and Swap it in.
type Store struct {
	current  atomic.Pointer[Snapshot]
	expander *synonym.Expander
}

// NewStore returns a store holding the built-in defaults.
func NewStore(x *synonym.Expander) *Store {
	s := &Store{expander: x}
	s.current.Store(NewSnapshot(DefaultDocument(), x))
	return s
}

// Current returns the published snapshot.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Build creates a snapshot from doc with this store's expander without
// publishing it.
func (s *Store) Build(doc core.LexiconDocument) *Snapshot {
	return NewSnapshot(doc, s.expander)
}

// Swap publishes next and returns the previous snapshot.
func (s *Store) Swap(next *Snapshot) *Snapshot {
	return s.current.Swap(next)
}

// Restore loads the persisted lexicon through l and publishes it, merged
// over the defaults so no emotion falls below its built-in keyword set. A
// missing or unreadable snapshot leaves the defaults in place.
func (s *Store) Restore(l Loader, log zerolog.Logger) *Snapshot {
	doc, err := l.LoadLexicon()
	switch {
	case errors.Is(err, core.ErrSnapshotNotFound):
		log.Info().Msg("no lexicon snapshot found, using built-in defaults")
		return s.Current()
	case err != nil:
		log.Warn().Err(err).Msg("lexicon snapshot unreadable, using built-in defaults")
		return s.Current()
	case doc == nil:
		return s.Current()
	}

	merged := WithDefaults(*doc)
	snap := s.Build(merged)
	s.Swap(snap)
	log.Info().Uint64("version", snap.Version()).Msg("lexicon snapshot restored")
	return snap
}

// WithDefaults returns doc with every missing built-in keyword and phrase
// added back. Existing entries keep their weights.
func WithDefaults(doc core.LexiconDocument) core.LexiconDocument {
	def := DefaultDocument()
	out := core.LexiconDocument{
		Version:   doc.Version,
		UpdatedAt: doc.UpdatedAt,
		Keywords:  make(map[core.Emotion]map[string]float64, core.EmotionCount),
		Phrases:   make(map[core.Emotion][]core.Phrase, core.EmotionCount),
	}
	for _, e := range core.Emotions {
		m := make(map[string]float64, len(def.Keywords[e])+len(doc.Keywords[e]))
		for k, w := range def.Keywords[e] {
			m[k] = w
		}
		for k, w := range doc.Keywords[e] {
			if w > MinWeight {
				m[k] = w
			}
		}
		out.Keywords[e] = m

		phrases := clonePhrases(doc.Phrases[e])
		have := make(map[string]bool, len(phrases))
		for _, p := range phrases {
			have[p.Text()] = true
		}
		for _, p := range def.Phrases[e] {
			if !have[p.Text()] {
				phrases = append(phrases, p)
			}
		}
		out.Phrases[e] = phrases
	}
	return out
}
