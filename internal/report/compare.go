package report

import (
	"log/slog"
	"math"
	"time"

	"routecast/internal/types"
)

// DeltaThresholds holds the per-metric minimum change that makes a fresh
// dynamic report worth sending. A zero entry disables that metric.
type DeltaThresholds struct {
	RainAmountMM       float64
	RainProbabilityPct float64
	WindSpeedKmh       float64
	ThunderProbPct     float64
}

// DefaultDeltaThresholds returns the deltas used when none are configured.
func DefaultDeltaThresholds() DeltaThresholds {
	return DeltaThresholds{
		RainAmountMM:       1.0,
		RainProbabilityPct: 30,
		WindSpeedKmh:       10,
		ThunderProbPct:     20,
	}
}

// Comparator decides whether a freshly computed record diverges enough from
// the last one sent to justify another dynamic report. Gusts share the wind
// delta.
type Comparator struct {
	deltas DeltaThresholds
	logger *slog.Logger
}

// NewComparator creates a Comparator.
func NewComparator(deltas DeltaThresholds, logger *slog.Logger) *Comparator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Comparator{deltas: deltas, logger: logger}
}

// Diverged reports whether curr moved materially away from prev, and names
// the fields that did. A field diverges when its maximum changed by at least
// the delta, or when its crossing hour or maximum hour shifted by an hour or
// more. Values missing on either side are not compared.
func (c *Comparator) Diverged(prev, curr types.ReportRecord) (bool, []string) {
	checks := []struct {
		name  string
		prev  types.ThresholdFact
		curr  types.ThresholdFact
		delta float64
	}{
		{"rain_amount", prev.RainAmount, curr.RainAmount, c.deltas.RainAmountMM},
		{"rain_probability", prev.RainProb, curr.RainProb, c.deltas.RainProbabilityPct},
		{"wind_speed", prev.WindSpeed, curr.WindSpeed, c.deltas.WindSpeedKmh},
		{"wind_gust", prev.WindGust, curr.WindGust, c.deltas.WindSpeedKmh},
		{"thunder", prev.Thunder, curr.Thunder, c.deltas.ThunderProbPct},
	}

	var changed []string
	for _, ch := range checks {
		if factDiverged(ch.prev, ch.curr, ch.delta) {
			changed = append(changed, ch.name)
		}
	}
	if len(changed) == 0 {
		return false, nil
	}
	c.logger.Debug("dynamic report diverged", "fields", changed)
	return true, changed
}

func factDiverged(prev, curr types.ThresholdFact, delta float64) bool {
	if delta <= 0 {
		return false
	}
	if prev.MaxValue != nil && curr.MaxValue != nil &&
		math.Abs(*curr.MaxValue-*prev.MaxValue) >= delta {
		return true
	}
	if hourShifted(prev.ThresholdTime, curr.ThresholdTime) {
		return true
	}
	return hourShifted(prev.MaxTime, curr.MaxTime)
}

func hourShifted(prev, curr *time.Time) bool {
	if prev == nil || curr == nil {
		return false
	}
	diff := curr.Hour() - prev.Hour()
	if diff < 0 {
		diff = -diff
	}
	return diff >= 1
}
