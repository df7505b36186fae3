package types

import "time"

// Float returns a pointer to v. Optional metric values are represented as
// *float64 throughout: nil means the provider did not supply the metric,
// which is distinct from a measured zero and must stay distinct through
// aggregation and formatting.
func Float(v float64) *float64 { return &v }

// TimeSeriesPoint is a single normalized sample. Providers with different raw
// shapes are mapped into this structure before anything downstream sees them,
// so aggregation never branches on provenance.
type TimeSeriesPoint struct {
	Time time.Time `json:"time"`

	TemperatureC       *float64 `json:"temperature_c,omitempty"`
	RainProbabilityPct *float64 `json:"rain_probability_pct,omitempty"`
	RainAmountMM       *float64 `json:"rain_amount_mm,omitempty"`
	WindSpeedKmh       *float64 `json:"wind_speed_kmh,omitempty"`
	WindGustKmh        *float64 `json:"wind_gust_kmh,omitempty"`
	ThunderProbPct     *float64 `json:"thunder_prob_pct,omitempty"`

	// Condition is the provider's free-text weather description, kept for
	// the probability estimation strategy and debug output.
	Condition string `json:"condition,omitempty"`
}

// Value returns the sample's value for the given metric, or nil when the
// provider did not supply it.
func (p *TimeSeriesPoint) Value(m Metric) *float64 {
	switch m {
	case MetricTemperature:
		return p.TemperatureC
	case MetricRainProbability:
		return p.RainProbabilityPct
	case MetricRainAmount:
		return p.RainAmountMM
	case MetricWindSpeed:
		return p.WindSpeedKmh
	case MetricWindGust:
		return p.WindGustKmh
	case MetricThunderProbability:
		return p.ThunderProbPct
	}
	return nil
}

// SetValue stores v for the given metric. Unknown metrics are ignored.
func (p *TimeSeriesPoint) SetValue(m Metric, v *float64) {
	switch m {
	case MetricTemperature:
		p.TemperatureC = v
	case MetricRainProbability:
		p.RainProbabilityPct = v
	case MetricRainAmount:
		p.RainAmountMM = v
	case MetricWindSpeed:
		p.WindSpeedKmh = v
	case MetricWindGust:
		p.WindGustKmh = v
	case MetricThunderProbability:
		p.ThunderProbPct = v
	}
}

// AllMetrics is the full set of metrics a sample can carry.
var AllMetrics = []Metric{
	MetricTemperature,
	MetricRainProbability,
	MetricRainAmount,
	MetricWindSpeed,
	MetricWindGust,
	MetricThunderProbability,
}

// TimeSeries is an ordered-by-time list of samples from a single source.
// Samples for one point are never merged across providers: the whole series
// carries exactly one provenance.
type TimeSeries struct {
	Points     []TimeSeriesPoint `json:"points"`
	Provenance Provenance        `json:"provenance"`
}

// Empty reports whether the series carries no samples.
func (s TimeSeries) Empty() bool { return len(s.Points) == 0 }

// GeoPoint is a geographic sample location with its 1-based ordinal within
// the stage, used for tie-breaking and to label debug output.
type GeoPoint struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Ordinal int     `json:"ordinal"`
}

// PointSeries pairs a stage point with its fetched, merged series.
type PointSeries struct {
	Point  GeoPoint   `json:"point"`
	Series TimeSeries `json:"series"`
}

// StageSeries is the per-report ownership unit: one stage, its ordered
// points, and one merged series per point. It is created fresh per report
// generation, never mutated after construction, and may be read concurrently.
type StageSeries struct {
	StageName string        `json:"stage_name"`
	Points    []PointSeries `json:"points"`
}

// FetchWindow is a closed time window; both bounds are inclusive.
type FetchWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t lies inside the window.
func (w FetchWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// HourWindow is a time-of-day filter with inclusive bounds, e.g. 4–19 for a
// daytime report. Samples outside the window are ignored entirely, not
// treated as zero.
type HourWindow struct {
	StartHour int `json:"start_hour"`
	EndHour   int `json:"end_hour"`
}

// Contains reports whether the given hour-of-day lies inside the window.
// Windows wrapping midnight (e.g. 22–5) are supported.
func (w HourWindow) Contains(hour int) bool {
	if w.StartHour <= w.EndHour {
		return hour >= w.StartHour && hour <= w.EndHour
	}
	return hour >= w.StartHour || hour <= w.EndHour
}

// ThresholdFact is the per-metric, per-stage aggregation result. All fields
// are optional: a metric wholly absent from every sample yields a fact with
// nothing set, which is distinguishable from "present but below threshold"
// (max set, threshold fields nil).
type ThresholdFact struct {
	ThresholdTime  *time.Time `json:"threshold_time,omitempty"`
	ThresholdValue *float64   `json:"threshold_value,omitempty"`
	MaxTime        *time.Time `json:"max_time,omitempty"`
	MaxValue       *float64   `json:"max_value,omitempty"`
}

// Absent reports whether the fact carries no data at all.
func (f ThresholdFact) Absent() bool {
	return f.MaxValue == nil && f.ThresholdValue == nil
}

// Crossed reports whether the configured threshold was ever met.
func (f ThresholdFact) Crossed() bool { return f.ThresholdValue != nil }

// TemperatureExtrema holds the scalar min/max temperature for a window.
// Unlike the threshold metrics these have no crossing, only extrema.
type TemperatureExtrema struct {
	MinValue *float64   `json:"min_value,omitempty"`
	MinTime  *time.Time `json:"min_time,omitempty"`
	MaxValue *float64   `json:"max_value,omitempty"`
	MaxTime  *time.Time `json:"max_time,omitempty"`
}

// StageFacts is the full aggregation result for one stage and window.
type StageFacts struct {
	StageName   string                   `json:"stage_name"`
	Facts       map[Metric]ThresholdFact `json:"facts"`
	Temperature TemperatureExtrema       `json:"temperature"`
}

// Fact returns the fact for m, or a zero fact when the metric never appeared.
func (s StageFacts) Fact(m Metric) ThresholdFact {
	if s.Facts == nil {
		return ThresholdFact{}
	}
	return s.Facts[m]
}

// ReportRecord is the report-type-specific structured output consumed by the
// compact formatter and the debug exporter. Immutable once built.
type ReportRecord struct {
	Type       ReportType `json:"type"`
	TargetDate time.Time  `json:"target_date"`

	// Stage names for narrative continuity. Tomorrow and AfterNext are only
	// set for evening reports and degrade to "" when the route ends.
	StageToday     string `json:"stage_today"`
	StageTomorrow  string `json:"stage_tomorrow,omitempty"`
	StageAfterNext string `json:"stage_after_next,omitempty"`

	// NightMinC is tonight's low at the stage destination (evening only).
	NightMinC *float64 `json:"night_min_c,omitempty"`
	// DayMaxC is the daytime high over the stage's points.
	DayMaxC *float64 `json:"day_max_c,omitempty"`

	RainAmount  ThresholdFact `json:"rain_amount"`
	RainProb    ThresholdFact `json:"rain_prob"`
	WindSpeed   ThresholdFact `json:"wind_speed"`
	WindGust    ThresholdFact `json:"wind_gust"`
	Thunder     ThresholdFact `json:"thunder"`
	// ThunderOutlook is the next-day (morning/dynamic) or day-after-tomorrow
	// (evening) thunderstorm fact, reported as an outlook figure.
	ThunderOutlook ThresholdFact `json:"thunder_outlook"`
}
