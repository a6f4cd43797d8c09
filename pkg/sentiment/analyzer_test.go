package sentiment

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzer_Valence(t *testing.T) {
	a := Default()

	pos := a.Analyze("I love this, it is wonderful!")
	assert.Equal(t, ValencePositive, pos.Valence)
	assert.Greater(t, pos.Compound, 0.3)

	neg := a.Analyze("This is terrible and I hate it")
	assert.Equal(t, ValenceNegative, neg.Valence)
	assert.Less(t, neg.Compound, -0.3)

	assert.Equal(t, 0.0, a.Polarity("", nil))
}

func TestAnalyzer_NegationFlipsPolarity(t *testing.T) {
	a := New()
	assert.Less(t, a.Polarity("i am not happy at all", nil), 0.0)
}

func TestAnalyzer_ConcurrentUse(t *testing.T) {
	a := New()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := a.Analyze("what a great day")
			assert.GreaterOrEqual(t, r.Compound, -1.0)
			assert.LessOrEqual(t, r.Compound, 1.0)
		}()
	}
	wg.Wait()
}

func TestIndicator_Polarity(t *testing.T) {
	neg := func(tok string) bool { return tok == "not" }
	ind := Indicator{IsNegation: neg}

	tests := []struct {
		name   string
		tokens []string
		want   float64
	}{
		{"no indicators", []string{"the", "table"}, 0},
		{"positive", []string{"a", "great", "day"}, 1},
		{"negative", []string{"awful", "weather"}, -1},
		{"mixed", []string{"good", "but", "bad", "and", "worse"}, -1.0 / 3.0},
		{"negated positive", []string{"not", "good"}, -1},
		{"negated negative", []string{"not", "bad"}, 1},
		{"negation resets", []string{"not", "the", "good"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ind.Polarity("", tt.tokens), 1e-9)
		})
	}
}

func TestValenceOf(t *testing.T) {
	assert.Equal(t, ValencePositive, ValenceOf(0.5))
	assert.Equal(t, ValenceNegative, ValenceOf(-0.5))
	assert.Equal(t, ValenceNeutral, ValenceOf(0.01))
}
