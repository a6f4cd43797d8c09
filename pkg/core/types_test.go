package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmotions_FixedOrder(t *testing.T) {
	require.Len(t, Emotions, EmotionCount)
	assert.Equal(t, Happy, Emotions[0])
	assert.Equal(t, Neutral, Emotions[EmotionCount-1])

	seen := make(map[Emotion]bool)
	for i, e := range Emotions {
		assert.False(t, seen[e], "duplicate label %s", e)
		seen[e] = true
		assert.Equal(t, i, e.Index())
	}
}

func TestParseEmotion(t *testing.T) {
	e, err := ParseEmotion("  Grateful ")
	require.NoError(t, err)
	assert.Equal(t, Grateful, e)

	_, err = ParseEmotion("mixed")
	assert.True(t, errors.Is(err, ErrInvalidEmotion))
}

func TestScoreVector_NormalizedClampsAndSumsToOne(t *testing.T) {
	var v ScoreVector
	v.Add(Happy, 2)
	v.Add(Sad, -1)
	v.Add(Calm, 2)

	n := v.Normalized()
	assert.InDelta(t, 1.0, n.Sum(), 1e-9)
	assert.Equal(t, 0.0, n.Get(Sad))
	assert.InDelta(t, 0.5, n.Get(Happy), 1e-9)

	// receiver is untouched
	assert.Equal(t, -1.0, v.Get(Sad))
}

func TestScoreVector_ZeroStaysZero(t *testing.T) {
	var v ScoreVector
	v.Add(Angry, -3)
	n := v.Normalized()
	assert.False(t, n.NonZero())
	assert.Equal(t, 0.0, n.Sum())
}

func TestScoreVector_ArgmaxTieBreaksByLabelOrder(t *testing.T) {
	var v ScoreVector
	v.Set(Proud, 0.4)
	v.Set(Sad, 0.4)
	v.Set(Neutral, 0.2)

	e, s := v.Argmax()
	assert.Equal(t, Sad, e)
	assert.Equal(t, 0.4, s)
}

func TestScoreVector_Top(t *testing.T) {
	var v ScoreVector
	v.Set(Tired, 0.1)
	v.Set(Bored, 0.5)
	v.Set(Lonely, 0.5)
	v.Set(Hopeful, 0.3)

	top := v.Top(3)
	require.Len(t, top, 3)
	assert.Equal(t, Bored, top[0].Emotion)
	assert.Equal(t, Lonely, top[1].Emotion)
	assert.Equal(t, Hopeful, top[2].Emotion)
}

func TestTopTwoMargin(t *testing.T) {
	r := AnalysisResult{Emotions: map[Emotion]float64{Happy: 0.55, Excited: 0.45}}
	assert.InDelta(t, 0.10, TopTwoMargin(r), 1e-9)

	assert.Equal(t, 1.0, TopTwoMargin(NeutralResult(0)))
}

func TestParseTrendWindow(t *testing.T) {
	for name, days := range map[string]int{"day": 1, "WEEK": 7, "month": 30} {
		w, err := ParseTrendWindow(name)
		require.NoError(t, err)
		assert.Equal(t, days, w.Days())
	}
	_, err := ParseTrendWindow("year")
	assert.ErrorIs(t, err, ErrInvalidWindow)
}
