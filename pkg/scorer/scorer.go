// Package scorer turns normalized text into a raw emotion score vector
// using a lexicon snapshot.
package scorer

import (
	"math"

	"github.com/qubicDB/emocore/pkg/core"
	"github.com/qubicDB/emocore/pkg/lexicon"
	"github.com/qubicDB/emocore/pkg/sentiment"
	"github.com/qubicDB/emocore/pkg/textnorm"
)

// Contribution kinds.
const (
	KindKeyword   = "keyword"
	KindSynonym   = "synonym"
	KindPhrase    = "phrase"
	KindOpposite  = "opposite"
	KindSentiment = "sentiment"
)

// Contribution records one change to the raw vector.
type Contribution struct {
	Kind       string
	Token      string
	Emotion    core.Emotion
	Delta      float64
	Multiplier float64
	Negated    bool
}

// Result is the scorer output for one text.
type Result struct {
	Normalized    string
	Tokens        []string
	Raw           core.ScoreVector
	Polarity      float64
	Contributions []Contribution
}

// Options tunes the scorer.
type Options struct {
	// PhraseMultiplier scales phrase weights per occurrence.
	PhraseMultiplier float64

	// Polarizer supplies the sentiment polarity. Nil disables the bonus.
	Polarizer sentiment.Polarizer

	// SentimentThreshold is the |polarity| above which the bonus applies.
	SentimentThreshold float64

	// SentimentBonus scales |polarity| into the happy/sad bonus.
	SentimentBonus float64
}

// DefaultOptions returns the standard tuning with the shared VADER analyzer.
func DefaultOptions() Options {
	return Options{
		PhraseMultiplier:   1.5,
		Polarizer:          sentiment.Default(),
		SentimentThreshold: 0.3,
		SentimentBonus:     0.5,
	}
}

// Scorer is stateless apart from its options and safe for concurrent use.
type Scorer struct {
	opts Options
}

// New creates a scorer.
func New(opts Options) *Scorer {
	if opts.PhraseMultiplier <= 0 {
		opts.PhraseMultiplier = 1.5
	}
	return &Scorer{opts: opts}
}

// Score normalizes raw text and scores it against snap.
func (s *Scorer) Score(snap *lexicon.Snapshot, raw string) Result {
	normalized := textnorm.Normalize(raw)
	return s.ScoreNormalized(snap, normalized)
}

// ScoreNormalized scores text that has already been through
// textnorm.Normalize.
func (s *Scorer) ScoreNormalized(snap *lexicon.Snapshot, normalized string) Result {
	res := Result{Normalized: normalized, Tokens: textnorm.Tokenize(normalized)}
	if len(res.Tokens) == 0 || snap == nil {
		return res
	}

	s.scorePhrases(snap, &res)
	s.scoreTokens(snap, &res)
	s.applySentiment(&res)
	return res
}

// scorePhrases adds multiplier × weight for every non-overlapping
// occurrence of each phrase.
func (s *Scorer) scorePhrases(snap *lexicon.Snapshot, res *Result) {
	for _, p := range snap.Phrases() {
		n := countSequence(res.Tokens, p.Phrase.Words)
		if n == 0 {
			continue
		}
		delta := s.opts.PhraseMultiplier * p.Phrase.Weight * float64(n)
		res.Raw.Add(p.Emotion, delta)
		res.Contributions = append(res.Contributions, Contribution{
			Kind:       KindPhrase,
			Token:      p.Text(),
			Emotion:    p.Emotion,
			Delta:      delta,
			Multiplier: 1,
		})
	}
}

// scoreTokens walks the tokens with single-token negation and intensity
// lookahead. Both states reset after every token that is neither a
// negation nor a modifier, matched or not.
func (s *Scorer) scoreTokens(snap *lexicon.Snapshot, res *Result) {
	negated := false
	multiplier := 1.0

	for _, tok := range res.Tokens {
		if lexicon.IsNegation(tok) {
			negated = true
			continue
		}
		if f, ok := lexicon.Intensifier(tok); ok {
			multiplier = f
			continue
		}

		for _, m := range snap.Lookup(tok) {
			c := m.Weight * multiplier
			kind := KindKeyword
			if m.Synonym {
				kind = KindSynonym
			}
			if negated {
				res.Raw.Add(m.Emotion, -c)
				res.Contributions = append(res.Contributions, Contribution{
					Kind: kind, Token: tok, Emotion: m.Emotion, Delta: -c, Multiplier: multiplier, Negated: true,
				})
				for _, opp := range lexicon.Opposites(m.Emotion) {
					credit := lexicon.OppositeShare * c
					res.Raw.Add(opp, credit)
					res.Contributions = append(res.Contributions, Contribution{
						Kind: KindOpposite, Token: tok, Emotion: opp, Delta: credit, Multiplier: multiplier, Negated: true,
					})
				}
				continue
			}
			res.Raw.Add(m.Emotion, c)
			res.Contributions = append(res.Contributions, Contribution{
				Kind: kind, Token: tok, Emotion: m.Emotion, Delta: c, Multiplier: multiplier,
			})
		}

		negated = false
		multiplier = 1.0
	}
}

func (s *Scorer) applySentiment(res *Result) {
	if s.opts.Polarizer == nil {
		return
	}
	p := s.opts.Polarizer.Polarity(res.Normalized, res.Tokens)
	if p > 1 {
		p = 1
	} else if p < -1 {
		p = -1
	}
	res.Polarity = p
	if math.Abs(p) <= s.opts.SentimentThreshold {
		return
	}

	target := core.Happy
	if p < 0 {
		target = core.Sad
	}
	bonus := s.opts.SentimentBonus * math.Abs(p)
	res.Raw.Add(target, bonus)
	res.Contributions = append(res.Contributions, Contribution{
		Kind: KindSentiment, Emotion: target, Delta: bonus, Multiplier: 1,
	})
}

// countSequence counts non-overlapping occurrences of seq in tokens.
func countSequence(tokens, seq []string) int {
	if len(seq) == 0 || len(seq) > len(tokens) {
		return 0
	}
	n := 0
	for i := 0; i+len(seq) <= len(tokens); {
		if matchAt(tokens, seq, i) {
			n++
			i += len(seq)
			continue
		}
		i++
	}
	return n
}

func matchAt(tokens, seq []string, i int) bool {
	for j, w := range seq {
		if tokens[i+j] != w {
			return false
		}
	}
	return true
}
