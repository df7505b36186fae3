package types

// ReportType identifies which report variant is being generated. Each variant
// selects a different subset of facts and time windows.
type ReportType string

const (
	ReportMorning ReportType = "morning"
	ReportEvening ReportType = "evening"
	ReportDynamic ReportType = "dynamic"
)

// Valid reports whether the value is one of the known report types.
func (t ReportType) Valid() bool {
	switch t {
	case ReportMorning, ReportEvening, ReportDynamic:
		return true
	}
	return false
}

// Provenance records which data source produced a time series.
type Provenance string

const (
	ProvenancePrimary     Provenance = "primary"
	ProvenanceSecondary   Provenance = "secondary"
	ProvenanceUnavailable Provenance = "unavailable"
)

// Granularity identifies the kind of series requested from a provider.
// A single point may need all three: hourly values, daily aggregates, and the
// longer-horizon probability windows some providers publish separately.
type Granularity string

const (
	GranularityHourly      Granularity = "hourly"
	GranularityDaily       Granularity = "daily"
	GranularityProbability Granularity = "probability_window"
)

// Metric identifies a tracked weather variable.
type Metric string

const (
	MetricRainProbability    Metric = "rain_probability"
	MetricRainAmount         Metric = "rain_amount"
	MetricWindSpeed          Metric = "wind_speed"
	MetricWindGust           Metric = "wind_gust"
	MetricThunderProbability Metric = "thunder_probability"
	MetricTemperature        Metric = "temperature"
)

// ThresholdMetrics lists the metrics that have a configured crossing
// threshold, in the fixed order used by formatting and debug output.
// Temperature is excluded: it only carries min/max extrema.
var ThresholdMetrics = []Metric{
	MetricRainAmount,
	MetricRainProbability,
	MetricWindSpeed,
	MetricWindGust,
	MetricThunderProbability,
}

// Unit returns the display unit for a metric, used by the debug transcript.
func (m Metric) Unit() string {
	switch m {
	case MetricRainAmount:
		return "mm"
	case MetricRainProbability, MetricThunderProbability:
		return "%"
	case MetricWindSpeed, MetricWindGust:
		return "km/h"
	case MetricTemperature:
		return "°C"
	}
	return ""
}
