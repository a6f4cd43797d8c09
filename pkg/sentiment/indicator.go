package sentiment

var positiveIndicators = map[string]struct{}{
	"good": {}, "great": {}, "love": {}, "nice": {}, "wonderful": {}, "awesome": {},
	"excellent": {}, "glad": {}, "fantastic": {}, "amazing": {}, "happy": {}, "enjoy": {},
	"enjoyed": {}, "best": {}, "better": {}, "beautiful": {}, "perfect": {}, "fun": {},
	"thanks": {}, "thank": {}, "grateful": {}, "proud": {}, "calm": {}, "hope": {},
}

var negativeIndicators = map[string]struct{}{
	"bad": {}, "terrible": {}, "awful": {}, "hate": {}, "horrible": {}, "worse": {},
	"worst": {}, "sad": {}, "angry": {}, "upset": {}, "poor": {}, "miserable": {},
	"annoyed": {}, "afraid": {}, "scared": {}, "lonely": {}, "tired": {}, "bored": {},
	"disgusting": {}, "hurt": {}, "pain": {}, "cry": {}, "fail": {}, "failed": {},
}

// Indicator is a Polarizer that counts indicator words. A negation word
// flips the next indicator.
type Indicator struct {
	IsNegation func(token string) bool
}

// Polarity returns (pos - neg) / (pos + neg), or 0 with no indicators.
func (ind Indicator) Polarity(_ string, tokens []string) float64 {
	pos, neg := 0, 0
	negated := false
	for _, tok := range tokens {
		if ind.IsNegation != nil && ind.IsNegation(tok) {
			negated = true
			continue
		}
		_, isPos := positiveIndicators[tok]
		_, isNeg := negativeIndicators[tok]
		switch {
		case isPos && !negated, isNeg && negated:
			pos++
		case isNeg, isPos:
			neg++
		}
		negated = false
	}
	if pos+neg == 0 {
		return 0
	}
	return float64(pos-neg) / float64(pos+neg)
}
