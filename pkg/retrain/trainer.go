// Package retrain recomputes lexicon keyword and phrase weights from the
// interaction log and publishes the result as a new lexicon snapshot.
package retrain

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/qubicDB/emocore/pkg/core"
	"github.com/qubicDB/emocore/pkg/lexicon"
	"github.com/qubicDB/emocore/pkg/textnorm"
)

// Source supplies labeled interactions.
type Source interface {
	ReadInteractions() ([]core.InteractionRecord, error)
}

// Persister stores a published lexicon.
type Persister interface {
	SaveLexicon(doc *core.LexiconDocument) error
}

// Trainer runs retraining passes. At most one pass runs at a time.
type Trainer struct {
	cfg       core.RetrainConfig
	source    Source
	store     *lexicon.Store
	persister Persister
	logger    zerolog.Logger
	now       func() time.Time

	// OnPersistError observes swallowed snapshot write failures.
	OnPersistError func(error)

	mu sync.Mutex
}

// New creates a trainer. persister may be nil.
func New(cfg core.RetrainConfig, source Source, store *lexicon.Store, persister Persister, logger zerolog.Logger) *Trainer {
	return &Trainer{
		cfg:       cfg,
		source:    source,
		store:     store,
		persister: persister,
		logger:    logger.With().Str("component", "retrain").Logger(),
		now:       time.Now,
	}
}

// SetClock overrides the time source. Intended for tests.
func (t *Trainer) SetClock(now func() time.Time) { t.now = now }

// Run performs one retraining pass. A pass already in flight makes Run
// return core.ErrRetrainInProgress with an error status.
func (t *Trainer) Run(ctx context.Context) (core.RetrainResult, error) {
	if !t.mu.TryLock() {
		return core.RetrainResult{Status: core.RetrainError, Message: core.ErrRetrainInProgress.Error()},
			core.ErrRetrainInProgress
	}
	defer t.mu.Unlock()

	records, err := t.source.ReadInteractions()
	if err != nil {
		err = fmt.Errorf("read interactions: %w", err)
		return core.RetrainResult{Status: core.RetrainError, Message: err.Error()}, err
	}

	samples := usable(records)
	if len(samples) < t.cfg.MinSamples {
		t.logger.Info().Int("samples", len(samples)).Int("required", t.cfg.MinSamples).Msg("retrain skipped")
		return core.RetrainResult{
			Status:      core.RetrainSkipped,
			SamplesUsed: len(samples),
			Message:     fmt.Sprintf("%s: have %d, need %d", core.ErrInsufficientData, len(samples), t.cfg.MinSamples),
		}, nil
	}

	if err := ctx.Err(); err != nil {
		return core.RetrainResult{Status: core.RetrainError, Message: err.Error()}, err
	}

	current := t.store.Current()
	doc := current.Document()

	keywordStats, phraseStats := collect(samples)
	learned := t.score(keywordStats)
	keywordsUpdated := t.mergeKeywords(&doc, learned)
	phrasesUpdated := t.mergePhrases(&doc, t.score(phraseStats))

	doc.Version = current.Version() + 1
	doc.UpdatedAt = t.now().UTC()

	next := t.store.Build(doc)
	t.store.Swap(next)

	if t.persister != nil {
		persisted := next.Document()
		if err := t.persister.SaveLexicon(&persisted); err != nil {
			t.logger.Error().Err(err).Msg("failed to persist retrained lexicon")
			if t.OnPersistError != nil {
				t.OnPersistError(err)
			}
		}
	}

	t.logger.Info().
		Int("samples", len(samples)).
		Int("keywords_updated", keywordsUpdated).
		Int("phrases_updated", phrasesUpdated).
		Uint64("version", next.Version()).
		Msg("lexicon retrained")

	return core.RetrainResult{
		Status:          core.RetrainSuccess,
		SamplesUsed:     len(samples),
		KeywordsUpdated: keywordsUpdated,
		PhrasesUpdated:  phrasesUpdated,
	}, nil
}

// usable keeps rows with text and a valid label.
func usable(records []core.InteractionRecord) []core.InteractionRecord {
	out := make([]core.InteractionRecord, 0, len(records))
	for _, r := range records {
		if strings.TrimSpace(r.Text) == "" || !r.Emotion.Valid() {
			continue
		}
		out = append(out, r)
	}
	return out
}

// termStats maps emotion -> term -> observed intensities.
type termStats map[core.Emotion]map[string][]float64

func (s termStats) add(e core.Emotion, term string, intensity float64) {
	m := s[e]
	if m == nil {
		m = make(map[string][]float64)
		s[e] = m
	}
	m[term] = append(m[term], intensity)
}

func collect(samples []core.InteractionRecord) (keywords, phrases termStats) {
	keywords = make(termStats)
	phrases = make(termStats)

	for _, r := range samples {
		for _, tok := range textnorm.Words(r.Text) {
			if !IsStopWord(tok) {
				keywords.add(r.Emotion, tok, r.Intensity)
			}
		}
		for _, sentence := range textnorm.Sentences(r.Text) {
			toks := textnorm.Words(sentence)
			for n := 2; n <= 3; n++ {
				for i := 0; i+n <= len(toks); i++ {
					gram := toks[i : i+n]
					if IsStopWord(gram[0]) || IsStopWord(gram[n-1]) {
						continue
					}
					phrases.add(r.Emotion, textnorm.Join(gram), r.Intensity)
				}
			}
		}
	}
	return keywords, phrases
}

type weighted struct {
	term   string
	weight float64
}

// score turns term observations into weights per emotion:
// mean(intensity) * decay^k, where k counts the other emotions the term
// was seen under. Terms below MinOccurrences and non-positive weights are
// dropped.
func (t *Trainer) score(stats termStats) map[core.Emotion][]weighted {
	spread := make(map[string]int)
	for _, terms := range stats {
		for term := range terms {
			spread[term]++
		}
	}

	out := make(map[core.Emotion][]weighted, len(stats))
	for e, terms := range stats {
		list := make([]weighted, 0, len(terms))
		for term, intensities := range terms {
			if len(intensities) < t.cfg.MinOccurrences {
				continue
			}
			others := spread[term] - 1
			w := stat.Mean(intensities, nil) * math.Pow(t.cfg.ExclusivityDecay, float64(others))
			if w <= lexicon.MinWeight || math.IsNaN(w) {
				continue
			}
			list = append(list, weighted{term: term, weight: lexicon.ClampWeight(w)})
		}
		sortWeighted(list)
		out[e] = list
	}
	return out
}

func sortWeighted(list []weighted) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].weight != list[j].weight {
			return list[i].weight > list[j].weight
		}
		return list[i].term < list[j].term
	})
}

// mergeKeywords folds the top learned keywords into doc, new weights
// winning, then caps each emotion. The cap never drops below the count the
// emotion already had. It returns the number of added or changed entries.
func (t *Trainer) mergeKeywords(doc *core.LexiconDocument, learned map[core.Emotion][]weighted) int {
	updated := 0
	for _, e := range core.Emotions {
		top := learned[e]
		if len(top) > t.cfg.TopKeywords {
			top = top[:t.cfg.TopKeywords]
		}
		if len(top) == 0 {
			continue
		}

		existing := doc.Keywords[e]
		merged := make(map[string]float64, len(existing)+len(top))
		for k, w := range existing {
			merged[k] = w
		}
		for _, kw := range top {
			if old, ok := merged[kw.term]; !ok || old != kw.weight {
				updated++
			}
			merged[kw.term] = kw.weight
		}

		limit := t.cfg.MaxKeywords
		if len(existing) > limit {
			limit = len(existing)
		}
		if len(merged) > limit {
			list := make([]weighted, 0, len(merged))
			for k, w := range merged {
				list = append(list, weighted{term: k, weight: w})
			}
			sortWeighted(list)
			merged = make(map[string]float64, limit)
			for _, kw := range list[:limit] {
				merged[kw.term] = kw.weight
			}
		}
		doc.Keywords[e] = merged
	}
	return updated
}

// mergePhrases adds the top learned phrases that doc lacks. Existing
// phrases keep their weights.
func (t *Trainer) mergePhrases(doc *core.LexiconDocument, learned map[core.Emotion][]weighted) int {
	added := 0
	for _, e := range core.Emotions {
		top := learned[e]
		if len(top) > t.cfg.TopPhrases {
			top = top[:t.cfg.TopPhrases]
		}
		have := make(map[string]bool, len(doc.Phrases[e]))
		for _, p := range doc.Phrases[e] {
			have[p.Text()] = true
		}
		for _, ph := range top {
			if have[ph.term] {
				continue
			}
			doc.Phrases[e] = append(doc.Phrases[e], core.Phrase{
				Words:  strings.Fields(ph.term),
				Weight: ph.weight,
			})
			have[ph.term] = true
			added++
		}
	}
	return added
}
