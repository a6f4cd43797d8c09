// Package sentiment produces a bounded polarity score for a text.
//
// The primary source is VADER (govader). Indicator is a lightweight
// fallback that counts positive and negative indicator words.
package sentiment

import (
	"sync"

	"github.com/jonreiter/govader"
)

// Valence is the coarse direction of a polarity score.
type Valence string

const (
	ValencePositive Valence = "positive"
	ValenceNegative Valence = "negative"
	ValenceNeutral  Valence = "neutral"
)

// Polarizer scores text polarity in [-1, 1]. Implementations receive both
// the normalized text and its tokens and may use either.
type Polarizer interface {
	Polarity(normalized string, tokens []string) float64
}

// Result holds the VADER breakdown for a piece of text.
type Result struct {
	Valence  Valence
	Compound float64 // [-1, 1]
	Positive float64 // [0, 1]
	Negative float64 // [0, 1]
	Neutral  float64 // [0, 1]
}

// Analyzer wraps govader's SentimentIntensityAnalyzer. It is safe for
// concurrent use.
type Analyzer struct {
	sia *govader.SentimentIntensityAnalyzer
	mu  sync.Mutex
}

var (
	defaultAnalyzer *Analyzer
	once            sync.Once
)

// Default returns the package-level singleton Analyzer (lazy-initialized).
func Default() *Analyzer {
	once.Do(func() {
		defaultAnalyzer = New()
	})
	return defaultAnalyzer
}

// New creates a new Analyzer. Prefer Default() for shared use.
func New() *Analyzer {
	return &Analyzer{
		sia: govader.NewSentimentIntensityAnalyzer(),
	}
}

// Analyze returns the VADER result for text.
func (a *Analyzer) Analyze(text string) Result {
	a.mu.Lock()
	scores := a.sia.PolarityScores(text)
	a.mu.Unlock()

	return Result{
		Valence:  ValenceOf(scores.Compound),
		Compound: clampUnit(scores.Compound),
		Positive: scores.Positive,
		Negative: scores.Negative,
		Neutral:  scores.Neutral,
	}
}

// Polarity implements Polarizer using the VADER compound score.
func (a *Analyzer) Polarity(normalized string, _ []string) float64 {
	if normalized == "" {
		return 0
	}
	return a.Analyze(normalized).Compound
}

// ValenceOf maps a polarity to a valence using VADER's ±0.05 convention.
func ValenceOf(polarity float64) Valence {
	switch {
	case polarity >= 0.05:
		return ValencePositive
	case polarity <= -0.05:
		return ValenceNegative
	default:
		return ValenceNeutral
	}
}

func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
