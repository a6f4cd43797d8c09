package engine

import (
	"math"

	"github.com/qubicDB/emocore/pkg/core"
)

// IntensityScale maps the top normalized score onto intensity.
const IntensityScale = 1.5

// Normalize turns a modulated score vector into a result. Negative entries
// are dropped; a vector with no positive mass yields the neutral fallback.
func Normalize(v core.ScoreVector, contextLength int, patternStrength float64) core.AnalysisResult {
	dist := v.Normalized()
	if !dist.NonZero() {
		return core.NeutralResult(contextLength)
	}

	primary, top := dist.Argmax()
	return core.AnalysisResult{
		PrimaryEmotion: primary,
		Emotions:       dist.Map(),
		Intensity:      math.Min(1.0, top*IntensityScale),
		Metadata: core.AnalysisMetadata{
			Source:          core.SourceRuleBased,
			Confidence:      top,
			ContextLength:   contextLength,
			PatternStrength: patternStrength,
		},
	}
}
