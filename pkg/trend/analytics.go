package trend

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/qubicDB/emocore/pkg/core"
)

// Pattern thresholds.
const (
	ConsistentShare     = 0.7
	AlternatingMinDays  = 4
	AlternatingStrength = 0.8
	TrendingMinDays     = 3
	TrendingMinSlope    = 0.2
	VariableStrength    = 0.1

	// SignificantShare is the aggregate share an emotion needs to count
	// towards diversity.
	SignificantShare = 0.1
	diversityTarget  = 5.0

	// NeutralWellbeing is reported when the window holds no data.
	NeutralWellbeing = 5.5
)

// Trend directions.
const (
	DirectionIncreasing = "increasing"
	DirectionDecreasing = "decreasing"
)

var positiveEmotions = map[core.Emotion]bool{
	core.Happy: true, core.Excited: true, core.Calm: true, core.Grateful: true,
	core.Hopeful: true, core.Proud: true, core.Interested: true,
}

var negativeEmotions = map[core.Emotion]bool{
	core.Sad: true, core.Angry: true, core.Fearful: true, core.Disgusted: true,
	core.Anxious: true, core.Lonely: true, core.Embarrassed: true, core.Bored: true,
	core.Tired: true,
}

// daySeries is one day with data inside a report window.
type daySeries struct {
	key          string
	distribution core.ScoreVector
	primary      core.Emotion
	share        float64
}

// Report analyzes the window ending on now's day. It only reads the store.
func (s *Store) Report(window core.TrendWindow, now time.Time) core.TrendReport {
	report := core.TrendReport{
		Window:           window,
		DominantEmotions: []core.EmotionScore{},
		DailyPrimary:     []core.DailyPrimary{},
		Distribution:     map[core.Emotion]float64{},
	}

	series := s.series(window.Days(), now)
	report.DaysAnalyzed = len(series)
	if len(series) == 0 {
		report.Pattern = core.Pattern{Type: core.PatternVariable, Strength: VariableStrength}
		report.WellbeingScore = NeutralWellbeing
		return report
	}

	var aggregate core.ScoreVector
	for _, d := range series {
		for i, v := range d.distribution {
			aggregate[i] += v
		}
		report.DailyPrimary = append(report.DailyPrimary, core.DailyPrimary{
			Day:     d.key,
			Emotion: d.primary,
			Share:   d.share,
		})
	}
	aggregate = aggregate.Normalized()

	report.Distribution = aggregate.Map()
	report.DominantEmotions = aggregate.Top(TopEmotions)
	report.Pattern = detectPattern(series)
	report.WellbeingScore = Wellbeing(aggregate, report.Pattern)
	return report
}

// series builds the per-day distributions for the days of the window that
// hold entries, oldest first.
func (s *Store) series(days int, now time.Time) []daySeries {
	out := make([]daySeries, 0, days)
	for back := days - 1; back >= 0; back-- {
		key := DayKey(now.AddDate(0, 0, -back))
		entries := s.Entries(key)
		if len(entries) == 0 {
			continue
		}
		var sum core.ScoreVector
		for _, entry := range entries {
			for _, es := range entry.Emotions {
				sum.Add(es.Emotion, es.Score)
			}
		}
		dist := sum.Normalized()
		if !dist.NonZero() {
			continue
		}
		primary, share := dist.Argmax()
		out = append(out, daySeries{key: key, distribution: dist, primary: primary, share: share})
	}
	return out
}

// detectPattern returns the first matching pattern in priority order.
func detectPattern(series []daySeries) core.Pattern {
	if p, ok := consistentPattern(series); ok {
		return p
	}
	if p, ok := alternatingPattern(series); ok {
		return p
	}
	if p, ok := trendingPattern(series); ok {
		return p
	}
	return core.Pattern{Type: core.PatternVariable, Strength: VariableStrength}
}

func consistentPattern(series []daySeries) (core.Pattern, bool) {
	var counts core.ScoreVector
	for _, d := range series {
		counts.Add(d.primary, 1)
	}
	e, n := counts.Argmax()
	fraction := n / float64(len(series))
	if fraction < ConsistentShare {
		return core.Pattern{}, false
	}
	return core.Pattern{Type: core.PatternConsistent, Emotion: e, Strength: fraction}, true
}

func alternatingPattern(series []daySeries) (core.Pattern, bool) {
	if len(series) < AlternatingMinDays {
		return core.Pattern{}, false
	}
	var distinct []core.Emotion
	for i, d := range series {
		if i > 0 && series[i-1].primary == d.primary {
			return core.Pattern{}, false
		}
		found := false
		for _, e := range distinct {
			if e == d.primary {
				found = true
				break
			}
		}
		if !found {
			distinct = append(distinct, d.primary)
		}
	}
	if len(distinct) != 2 {
		return core.Pattern{}, false
	}
	if distinct[0].Index() > distinct[1].Index() {
		distinct[0], distinct[1] = distinct[1], distinct[0]
	}
	return core.Pattern{Type: core.PatternAlternating, Emotions: distinct, Strength: AlternatingStrength}, true
}

func trendingPattern(series []daySeries) (core.Pattern, bool) {
	n := len(series)
	if n < TrendingMinDays {
		return core.Pattern{}, false
	}
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i) / float64(n-1)
	}

	var (
		best      core.Emotion
		bestSlope float64
	)
	ys := make([]float64, n)
	for idx, e := range core.Emotions {
		lo, hi := math.Inf(1), math.Inf(-1)
		for i, d := range series {
			ys[i] = d.distribution[idx]
			lo = math.Min(lo, ys[i])
			hi = math.Max(hi, ys[i])
		}
		span := hi - lo
		if span <= 1e-9 {
			continue
		}
		_, slope := stat.LinearRegression(xs, ys, nil, false)
		normalized := slope / span
		if math.Abs(normalized) > math.Abs(bestSlope) {
			best, bestSlope = e, normalized
		}
	}
	if math.Abs(bestSlope) <= TrendingMinSlope {
		return core.Pattern{}, false
	}

	direction := DirectionIncreasing
	if bestSlope < 0 {
		direction = DirectionDecreasing
	}
	return core.Pattern{
		Type:      core.PatternTrending,
		Emotion:   best,
		Direction: direction,
		Strength:  math.Min(1, math.Abs(bestSlope)),
	}, true
}

// Wellbeing scores a normalized aggregate distribution on a 1-10 scale.
func Wellbeing(aggregate core.ScoreVector, pattern core.Pattern) float64 {
	var pos, neg float64
	significant := 0
	for i, share := range aggregate {
		e := core.Emotions[i]
		switch {
		case positiveEmotions[e]:
			pos += share
		case negativeEmotions[e]:
			neg += share
		}
		if share >= SignificantShare {
			significant++
		}
	}

	ratio := 0.5
	if pos+neg > 0 {
		ratio = pos / (pos + neg)
	}
	base := 1 + 9*ratio
	diversity := math.Min(1, float64(significant)/diversityTarget)
	score := base * (0.85 + 0.15*diversity) * directionFactor(pattern)

	score = math.Max(1, math.Min(10, score))
	return math.Round(score*10) / 10
}

func directionFactor(p core.Pattern) float64 {
	switch p.Type {
	case core.PatternTrending:
		switch {
		case positiveEmotions[p.Emotion] && p.Direction == DirectionIncreasing:
			return 1.15
		case negativeEmotions[p.Emotion] && p.Direction == DirectionDecreasing:
			return 1.1
		case negativeEmotions[p.Emotion] && p.Direction == DirectionIncreasing:
			return 0.85
		case positiveEmotions[p.Emotion] && p.Direction == DirectionDecreasing:
			return 0.9
		}
	case core.PatternConsistent:
		switch {
		case positiveEmotions[p.Emotion]:
			return 1.1
		case negativeEmotions[p.Emotion]:
			return 0.9
		}
	}
	return 1
}
