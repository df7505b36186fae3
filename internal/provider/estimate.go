package provider

import (
	"strings"

	"routecast/internal/types"
)

// Estimator derives rain and thunderstorm probabilities from a textual
// weather condition when the provider does not report them as numbers. The
// primary provider frequently omits probability fields and only ships a
// French condition string, so the mapping below keys on those terms.
//
// It is an interface so the heuristics can be swapped without touching the
// clients.
type Estimator interface {
	RainProbability(condition string, amountMM *float64) *float64
	ThunderProbability(condition string) *float64
}

// ConditionEstimator is the default Estimator implementation.
type ConditionEstimator struct{}

// RainProbability estimates a rain probability percentage from the condition
// text and, when present, the hourly precipitation amount. Returns nil when
// the condition does not indicate rain at all.
func (ConditionEstimator) RainProbability(condition string, amountMM *float64) *float64 {
	c := strings.ToLower(condition)
	if !containsAny(c, "averse", "pluie", "rain", "orage", "thunder", "storm") {
		return nil
	}

	if amountMM != nil && *amountMM > 0 {
		switch {
		case *amountMM >= 2.0:
			return types.Float(80)
		case *amountMM >= 1.0:
			return types.Float(60)
		case *amountMM >= 0.5:
			return types.Float(40)
		default:
			return types.Float(30)
		}
	}

	switch {
	case strings.Contains(c, "averse orageuse"), strings.Contains(c, "averses orageuses"):
		return types.Float(70)
	case strings.Contains(c, "orage"):
		return types.Float(80)
	case strings.Contains(c, "averse"):
		return types.Float(60)
	case strings.Contains(c, "pluie"):
		return types.Float(50)
	default:
		return types.Float(30)
	}
}

// ThunderProbability estimates a thunderstorm probability percentage from
// the condition text. Returns nil when the condition carries no thunderstorm
// indicator.
func (ConditionEstimator) ThunderProbability(condition string) *float64 {
	c := strings.ToLower(condition)
	if !containsAny(c, "orage", "thunderstorm", "thunder", "storm") {
		return nil
	}

	switch {
	case strings.Contains(c, "averse orageuse"), strings.Contains(c, "averses orageuses"):
		return types.Float(60)
	case strings.Contains(c, "orage"):
		return types.Float(80)
	case strings.Contains(c, "risque"):
		return types.Float(40)
	default:
		return types.Float(70)
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
