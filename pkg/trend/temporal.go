package trend

import (
	"time"

	"github.com/qubicDB/emocore/pkg/core"
)

// Modulation weights for the temporal multiplier.
const (
	DefaultTodayWeight     = 0.5
	DefaultYesterdayWeight = 0.2
)

// Multipliers returns the per-emotion temporal multiplier for now:
//
//	m[e] = 1 + todayFreq[e]/todayTotal*todayWeight
//	         + yesterdayFreq[e]/yesterdayTotal*yesterdayWeight
//
// where freq counts entries whose top emotions include e. Days without
// entries contribute nothing, so an empty store yields all ones.
func (s *Store) Multipliers(now time.Time, todayWeight, yesterdayWeight float64) core.ScoreVector {
	var m core.ScoreVector
	for i := range m {
		m[i] = 1
	}
	s.addFrequency(&m, DayKey(now), todayWeight)
	s.addFrequency(&m, DayKey(now.AddDate(0, 0, -1)), yesterdayWeight)
	return m
}

func (s *Store) addFrequency(m *core.ScoreVector, day string, weight float64) {
	entries := s.Entries(day)
	if len(entries) == 0 || weight == 0 {
		return
	}
	var freq core.ScoreVector
	for _, entry := range entries {
		seen := make(map[core.Emotion]bool, len(entry.Emotions))
		for _, es := range entry.Emotions {
			if !seen[es.Emotion] {
				seen[es.Emotion] = true
				freq.Add(es.Emotion, 1)
			}
		}
	}
	total := float64(len(entries))
	for i := range m {
		m[i] += freq[i] / total * weight
	}
}
