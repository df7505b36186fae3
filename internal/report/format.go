package report

import (
	"fmt"
	"math"
	"strings"
	"time"

	"routecast/internal/types"
)

// Formatter renders a ReportRecord as a single compact line under a hard
// character budget.
//
// Field order on the line: stage prefix, night low (N), day high (D), rain
// amount (R), rain probability (PR), wind (W), gust (G), thunderstorm (TH),
// next-day thunderstorm (TH+1). Crossings render as value@hour with the
// maximum in parentheses when it differs. A fact with no crossing but a
// known maximum renders the maximum in the crossing's shape; only fully
// absent facts render as a dash token. When the line would exceed the
// budget, whole fields are dropped
// from the low-priority end (outlook first, temperatures last) until it
// fits; tokens are never cut mid-field.
type Formatter struct {
	budget int
}

// NewFormatter creates a Formatter with the given character budget.
func NewFormatter(budget int) *Formatter {
	return &Formatter{budget: budget}
}

// Budget returns the configured character budget.
func (f *Formatter) Budget() int { return f.budget }

// field pairs a rendered token with its drop priority; higher keep values
// survive longer when the budget forces drops.
type field struct {
	token string
	keep  int
}

// Format renders the record. The result is deterministic for a given record,
// so formatting twice yields the same string.
func (f *Formatter) Format(rec types.ReportRecord) string {
	prefix := f.prefix(rec)

	fields := []field{
		{formatTemp("N", rec.NightMinC), 8},
		{formatTemp("D", rec.DayMaxC), 7},
		{formatRainAmount(rec.RainAmount), 6},
		{formatRainProb(rec.RainProb), 5},
		{formatWind("W", rec.WindSpeed), 4},
		{formatWind("G", rec.WindGust), 3},
		{formatThunder("TH", rec.Thunder), 2},
		{formatThunder("TH+1", rec.ThunderOutlook), 1},
	}

	for minKeep := 0; minKeep <= 9; minKeep++ {
		line := assemble(prefix, fields, minKeep)
		if len(line) <= f.budget {
			return line
		}
	}

	// Even the bare prefix is over budget; cutting it is the only move left.
	if len(prefix) > f.budget {
		return prefix[:f.budget]
	}
	return prefix
}

func (f *Formatter) prefix(rec types.ReportRecord) string {
	name := rec.StageToday
	if rec.Type == types.ReportEvening && rec.StageTomorrow != "" {
		name = rec.StageTomorrow
	}
	if name == "" {
		return ""
	}
	return name + ":"
}

func assemble(prefix string, fields []field, minKeep int) string {
	parts := make([]string, 0, len(fields)+1)
	if prefix != "" {
		parts = append(parts, prefix)
	}
	for _, fl := range fields {
		if fl.keep >= minKeep {
			parts = append(parts, fl.token)
		}
	}
	return strings.Join(parts, " ")
}

func formatTemp(letter string, v *float64) string {
	if v == nil {
		return letter + "-"
	}
	return fmt.Sprintf("%s%d", letter, int(math.Round(*v)))
}

func formatRainAmount(fact types.ThresholdFact) string {
	if fact.Absent() {
		return "R-"
	}
	if !fact.Crossed() {
		return fmt.Sprintf("R%.1f@%s", *fact.MaxValue, hourToken(fact.MaxTime))
	}
	token := fmt.Sprintf("R%.1f@%s", *fact.ThresholdValue, hourToken(fact.ThresholdTime))
	if showMax(fact) {
		token += fmt.Sprintf("(%.1f@%s)", *fact.MaxValue, hourToken(fact.MaxTime))
	}
	return token
}

func formatRainProb(fact types.ThresholdFact) string {
	if fact.Absent() {
		return "PR-"
	}
	if !fact.Crossed() {
		return fmt.Sprintf("PR%.0f%%@%s", *fact.MaxValue, hourToken(fact.MaxTime))
	}
	token := fmt.Sprintf("PR%.0f%%@%s", *fact.ThresholdValue, hourToken(fact.ThresholdTime))
	if showMax(fact) {
		token += fmt.Sprintf("(%.0f%%@%s)", *fact.MaxValue, hourToken(fact.MaxTime))
	}
	return token
}

func formatWind(letter string, fact types.ThresholdFact) string {
	if fact.Absent() {
		return letter + "-"
	}
	if !fact.Crossed() {
		return fmt.Sprintf("%s%.0f@%s", letter, *fact.MaxValue, hourToken(fact.MaxTime))
	}
	token := fmt.Sprintf("%s%.0f@%s", letter, *fact.ThresholdValue, hourToken(fact.ThresholdTime))
	if showMax(fact) {
		token += fmt.Sprintf("(%.0f@%s)", *fact.MaxValue, hourToken(fact.MaxTime))
	}
	return token
}

func formatThunder(label string, fact types.ThresholdFact) string {
	if fact.Absent() {
		if label == "TH" {
			return "TH-"
		}
		return label + ":-"
	}
	if !fact.Crossed() {
		return fmt.Sprintf("%s:%s@%s", label, thunderLevel(*fact.MaxValue), hourToken(fact.MaxTime))
	}
	token := fmt.Sprintf("%s:%s@%s", label, thunderLevel(*fact.ThresholdValue), hourToken(fact.ThresholdTime))
	if showMax(fact) {
		token += fmt.Sprintf("(%s@%s)", thunderLevel(*fact.MaxValue), hourToken(fact.MaxTime))
	}
	return token
}

// showMax reports whether the maximum deserves its own parenthetical: it
// must exist and differ from the crossing in either value or hour.
func showMax(fact types.ThresholdFact) bool {
	if fact.MaxValue == nil || fact.MaxTime == nil {
		return false
	}
	if fact.ThresholdValue != nil && *fact.MaxValue == *fact.ThresholdValue &&
		fact.ThresholdTime != nil && fact.MaxTime.Equal(*fact.ThresholdTime) {
		return false
	}
	return true
}

// thunderLevel buckets a probability into L / M / H.
func thunderLevel(pct float64) string {
	switch {
	case pct >= 70:
		return "H"
	case pct >= 30:
		return "M"
	default:
		return "L"
	}
}

// hourToken renders an hour without a leading zero, dash when unknown.
func hourToken(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return fmt.Sprintf("%d", t.Hour())
}
