package scorer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qubicDB/emocore/pkg/core"
	"github.com/qubicDB/emocore/pkg/lexicon"
	"github.com/qubicDB/emocore/pkg/sentiment"
	"github.com/qubicDB/emocore/pkg/synonym"
)

type fixedPolarity float64

func (f fixedPolarity) Polarity(string, []string) float64 { return float64(f) }

func plainScorer() *Scorer {
	return New(Options{PhraseMultiplier: 1.5})
}

func defaultSnapshot() *lexicon.Snapshot {
	return lexicon.NewSnapshot(lexicon.DefaultDocument(), synonym.New())
}

func TestScore_KeywordMatch(t *testing.T) {
	res := plainScorer().Score(defaultSnapshot(), "I am so tired")
	// "so" is an intensifier for the next token
	assert.InDelta(t, 1.0*1.3, res.Raw.Get(core.Tired), 1e-9)
}

func TestScore_NegationSubtractsAndCreditsOpposite(t *testing.T) {
	res := plainScorer().Score(defaultSnapshot(), "I am not happy at all")

	assert.InDelta(t, -1.0, res.Raw.Get(core.Happy), 1e-9)
	assert.InDelta(t, 0.3, res.Raw.Get(core.Sad), 1e-9)
}

func TestScore_NegationThenIntensifier(t *testing.T) {
	res := plainScorer().Score(defaultSnapshot(), "not very happy")
	assert.InDelta(t, -1.5, res.Raw.Get(core.Happy), 1e-9)
	assert.InDelta(t, 0.3*1.5, res.Raw.Get(core.Sad), 1e-9)
}

func TestScore_StateResetsAfterUnmatchedToken(t *testing.T) {
	res := plainScorer().Score(defaultSnapshot(), "not the happy one")
	assert.InDelta(t, 1.0, res.Raw.Get(core.Happy), 1e-9, "negation must not survive an intervening token")

	res = plainScorer().Score(defaultSnapshot(), "extremely quiet and happy")
	// "quiet" is a calm synonym and consumes the modifier
	assert.InDelta(t, 1.0, res.Raw.Get(core.Happy), 1e-9)
}

func TestScore_NegationInvariantAcrossLexicon(t *testing.T) {
	snap := lexicon.NewSnapshot(lexicon.DefaultDocument(), nil)
	s := plainScorer()

	for _, e := range core.Emotions {
		doc := snap.Document()
		for kw := range doc.Keywords[e] {
			t.Run(fmt.Sprintf("%s/%s", e, kw), func(t *testing.T) {
				res := s.Score(snap, "never "+kw)
				for _, c := range res.Contributions {
					if c.Token == kw && c.Emotion == e && c.Kind == KindKeyword {
						assert.LessOrEqual(t, c.Delta, 0.0)
						assert.True(t, c.Negated)
					}
				}
			})
		}
	}
}

func TestScore_PhraseWeighted(t *testing.T) {
	res := plainScorer().Score(defaultSnapshot(), "That was infuriating to deal with")

	var phrase, keyword float64
	for _, c := range res.Contributions {
		switch c.Kind {
		case KindPhrase:
			phrase += c.Delta
		case KindKeyword:
			if c.Emotion == core.Angry {
				keyword += c.Delta
			}
		}
	}
	assert.InDelta(t, 1.5*1.2, phrase, 1e-9)
	assert.Greater(t, phrase, keyword)
	e, _ := res.Raw.Argmax()
	assert.Equal(t, core.Angry, e)
}

func TestScore_PhraseCountsNonOverlapping(t *testing.T) {
	doc := core.LexiconDocument{Phrases: map[core.Emotion][]core.Phrase{
		core.Bored: {{Words: []string{"la", "la"}, Weight: 1}},
	}}
	snap := lexicon.NewSnapshot(doc, nil)

	res := plainScorer().Score(snap, "la la la la la")
	assert.InDelta(t, 2*1.5, res.Raw.Get(core.Bored), 1e-9)
}

func TestScore_PhraseNeedsWholeWords(t *testing.T) {
	doc := core.LexiconDocument{Phrases: map[core.Emotion][]core.Phrase{
		core.Calm: {{Words: []string{"at", "peace"}, Weight: 1}},
	}}
	snap := lexicon.NewSnapshot(doc, nil)

	res := plainScorer().Score(snap, "that peacekeeper")
	assert.Equal(t, 0.0, res.Raw.Get(core.Calm))
}

func TestScore_SynonymMatch(t *testing.T) {
	res := plainScorer().Score(defaultSnapshot(), "I am absolutely ecstatic about the results")

	assert.InDelta(t, 1.0*synonym.DirectFactor*1.8, res.Raw.Get(core.Happy), 1e-9)
	e, _ := res.Raw.Argmax()
	assert.Equal(t, core.Happy, e)
}

func TestScore_SentimentBonus(t *testing.T) {
	snap := lexicon.NewSnapshot(core.LexiconDocument{}, nil)

	pos := New(Options{Polarizer: fixedPolarity(0.8), SentimentThreshold: 0.3, SentimentBonus: 0.5}).Score(snap, "whatever text")
	assert.InDelta(t, 0.4, pos.Raw.Get(core.Happy), 1e-9)

	neg := New(Options{Polarizer: fixedPolarity(-0.6), SentimentThreshold: 0.3, SentimentBonus: 0.5}).Score(snap, "whatever text")
	assert.InDelta(t, 0.3, neg.Raw.Get(core.Sad), 1e-9)

	weak := New(Options{Polarizer: fixedPolarity(0.3), SentimentThreshold: 0.3, SentimentBonus: 0.5}).Score(snap, "whatever text")
	assert.False(t, weak.Raw.NonZero())
}

func TestScore_IndicatorFallback(t *testing.T) {
	s := New(Options{
		Polarizer:          sentiment.Indicator{IsNegation: lexicon.IsNegation},
		SentimentThreshold: 0.3,
		SentimentBonus:     0.5,
	})
	res := s.Score(lexicon.NewSnapshot(core.LexiconDocument{}, nil), "a terrible awful day")
	assert.InDelta(t, -1.0, res.Polarity, 1e-9)
	assert.InDelta(t, 0.5, res.Raw.Get(core.Sad), 1e-9)
}

func TestScore_EmptyAndMarkupOnly(t *testing.T) {
	s := New(DefaultOptions())
	for _, in := range []string{"", "   ", "<p></p>", "😀😀"} {
		res := s.Score(defaultSnapshot(), in)
		assert.Empty(t, res.Tokens, in)
		assert.False(t, res.Raw.NonZero(), in)
	}
}

func TestScore_Deterministic(t *testing.T) {
	s := New(DefaultOptions())
	snap := defaultSnapshot()
	text := "I'm not sure, but I'm really worried and a little excited about tomorrow"

	first := s.Score(snap, text)
	for i := 0; i < 20; i++ {
		again := s.Score(snap, text)
		require.Equal(t, first.Raw, again.Raw)
		require.Equal(t, first.Contributions, again.Contributions)
	}
}
