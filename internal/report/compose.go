// Package report turns stage-level threshold facts into the delivered
// artifacts: the compact single-line text and the verbose debug transcript.
package report

import (
	"time"

	"routecast/internal/types"
)

// ComposeInputs carries everything the composer needs for one report. Today
// holds the facts of the report's main day window (for evening reports that
// is tomorrow's hiking day). Outlook is the thunderstorm fact of the day
// after the main day.
type ComposeInputs struct {
	Type       types.ReportType
	TargetDate time.Time

	Today   types.StageFacts
	Night   types.TemperatureExtrema
	Outlook types.ThresholdFact

	StageToday     string
	StageTomorrow  string
	StageAfterNext string
}

// Compose assembles the report-type-specific record. Morning reports carry
// the full day's facts plus tomorrow's thunderstorm outlook; evening reports
// carry tonight's low, tomorrow's facts, the day-after outlook, and the next
// two stage names; dynamic reports are a stripped intraday update with only
// rain and thunderstorm crossings plus temperature and wind maxima. Missing
// continuity names stay empty rather than failing composition.
func Compose(in ComposeInputs) types.ReportRecord {
	rec := types.ReportRecord{
		Type:       in.Type,
		TargetDate: in.TargetDate,
		StageToday: in.StageToday,
	}

	switch in.Type {
	case types.ReportEvening:
		rec.StageTomorrow = in.StageTomorrow
		rec.StageAfterNext = in.StageAfterNext
		fallthrough
	case types.ReportMorning:
		rec.NightMinC = in.Night.MinValue
		rec.DayMaxC = in.Today.Temperature.MaxValue
		rec.RainAmount = in.Today.Fact(types.MetricRainAmount)
		rec.RainProb = in.Today.Fact(types.MetricRainProbability)
		rec.WindSpeed = in.Today.Fact(types.MetricWindSpeed)
		rec.WindGust = in.Today.Fact(types.MetricWindGust)
		rec.Thunder = in.Today.Fact(types.MetricThunderProbability)
		rec.ThunderOutlook = in.Outlook

	case types.ReportDynamic:
		// Intraday update: crossings for rain and thunder, maxima for
		// temperature and wind, nothing else.
		rec.DayMaxC = in.Today.Temperature.MaxValue
		rec.RainAmount = in.Today.Fact(types.MetricRainAmount)
		rec.RainProb = in.Today.Fact(types.MetricRainProbability)
		rec.Thunder = in.Today.Fact(types.MetricThunderProbability)

		wind := in.Today.Fact(types.MetricWindSpeed)
		rec.WindSpeed = types.ThresholdFact{MaxTime: wind.MaxTime, MaxValue: wind.MaxValue}
	}

	return rec
}
