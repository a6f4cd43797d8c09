package engine

import (
	"strings"

	"github.com/qubicDB/emocore/pkg/core"
)

// recentHistory returns at most n trailing non-blank messages, oldest first.
func recentHistory(history []string, n int) []string {
	if n <= 0 || len(history) == 0 {
		return nil
	}
	out := make([]string, 0, n)
	for i := len(history) - 1; i >= 0 && len(out) < n; i-- {
		if strings.TrimSpace(history[i]) == "" {
			continue
		}
		out = append(out, history[i])
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Blend adds weight × context to current. context is expected to be
// normalized already; current may still hold negative entries.
func Blend(current, context core.ScoreVector, weight float64) core.ScoreVector {
	if weight == 0 {
		return current
	}
	for i := range current {
		current[i] += weight * context[i]
	}
	return current
}

// Modulate scales v by the temporal multipliers m and reports the pattern
// strength: the mean multiplier over labels that scored positive before
// modulation, or 1 when none did.
func Modulate(v, m core.ScoreVector) (core.ScoreVector, float64) {
	total, n := 0.0, 0
	for i := range v {
		if v[i] > 0 {
			total += m[i]
			n++
		}
		v[i] *= m[i]
	}
	if n == 0 {
		return v, 1.0
	}
	return v, total / float64(n)
}
