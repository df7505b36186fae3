// Package config defines the configuration for the routecast report core.
// Configuration is loaded once at process initialization and is immutable
// thereafter. Values come from the OS environment, optionally seeded from a
// dotenv file; any missing required value or invalid format fails startup.
package config

import (
	"time"

	"routecast/internal/types"
)

// Config is the top-level configuration struct. It is populated once during
// process initialization and never modified. Sub-components receive only the
// specific subsets they require.
type Config struct {
	Environment string `envconfig:"APP_ENV" default:"local" validate:"required,oneof=local dev staging prod"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	Route     RouteConfig
	Provider  ProviderConfig
	Report    ReportConfig
	Store     StoreConfig
	Schedule  ScheduleConfig
	Server    ServerConfig
	Threshold ThresholdConfig
	Delta     DeltaConfig
}

// RouteConfig locates the route definition and anchors stage-for-date math.
type RouteConfig struct {
	// StagesFile is the JSON file holding the ordered stage list.
	StagesFile string `envconfig:"ROUTE_STAGES_FILE" default:"stages.json"`
	// StartDate is the date the first stage is walked, YYYY-MM-DD.
	StartDate string `envconfig:"ROUTE_START_DATE" validate:"required,datetime=2006-01-02"`
	// Timezone is the route's local time zone; all report hours are local.
	Timezone string `envconfig:"ROUTE_TIMEZONE" default:"Europe/Paris"`
}

// ProviderConfig holds the weather provider endpoints and the per-fetch
// timeout owned by the provider clients.
type ProviderConfig struct {
	PrimaryBaseURL   string        `envconfig:"PROVIDER_PRIMARY_URL" default:"https://webservice.meteofrance.com"`
	SecondaryBaseURL string        `envconfig:"PROVIDER_SECONDARY_URL" default:"https://api.open-meteo.com"`
	FetchTimeout     time.Duration `envconfig:"PROVIDER_FETCH_TIMEOUT" default:"10s"`
	MaxRetries       int           `envconfig:"PROVIDER_MAX_RETRIES" default:"2"`
	UserAgent        string        `envconfig:"PROVIDER_USER_AGENT" default:"routecast/1.0"`
}

// ReportConfig holds report shaping parameters: the hard character budget and
// the time-of-day windows facts are computed over.
type ReportConfig struct {
	CharBudget     int `envconfig:"REPORT_CHAR_BUDGET" default:"160" validate:"min=40"`
	DayStartHour   int `envconfig:"REPORT_DAY_START_HOUR" default:"4" validate:"min=0,max=23"`
	DayEndHour     int `envconfig:"REPORT_DAY_END_HOUR" default:"19" validate:"min=0,max=23"`
	NightStartHour int `envconfig:"REPORT_NIGHT_START_HOUR" default:"22" validate:"min=0,max=23"`
	NightEndHour   int `envconfig:"REPORT_NIGHT_END_HOUR" default:"5" validate:"min=0,max=23"`
}

// DayWindow returns the daytime hour filter.
func (c ReportConfig) DayWindow() types.HourWindow {
	return types.HourWindow{StartHour: c.DayStartHour, EndHour: c.DayEndHour}
}

// NightWindow returns the overnight hour filter (wraps midnight).
func (c ReportConfig) NightWindow() types.HourWindow {
	return types.HourWindow{StartHour: c.NightStartHour, EndHour: c.NightEndHour}
}

// StoreConfig holds the persistence root for generated report documents.
type StoreConfig struct {
	BaseDir string `envconfig:"STORE_BASE_DIR" default:".data/reports"`
}

// ScheduleConfig holds the local wall-clock times for scheduled reports and
// the interval for dynamic update checks.
type ScheduleConfig struct {
	MorningAt string `envconfig:"SCHEDULE_MORNING_AT" default:"04:30"`
	EveningAt string `envconfig:"SCHEDULE_EVENING_AT" default:"19:00"`
	// DynamicEvery is how often the dynamic update check reruns the
	// forecast; zero disables dynamic reports.
	DynamicEvery time.Duration `envconfig:"SCHEDULE_DYNAMIC_EVERY" default:"2h"`
}

// ServerConfig holds the HTTP surface settings.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8080"`
}

// ThresholdConfig holds the per-metric crossing thresholds. A report cannot
// be generated without a threshold for every tracked metric, so zero values
// are rejected at load time rather than silently treated as "always crossed".
type ThresholdConfig struct {
	RainProbabilityPct float64 `envconfig:"THRESHOLD_RAIN_PROBABILITY" default:"25" validate:"gt=0"`
	RainAmountMM       float64 `envconfig:"THRESHOLD_RAIN_AMOUNT" default:"0.2" validate:"gt=0"`
	WindSpeedKmh       float64 `envconfig:"THRESHOLD_WIND_SPEED" default:"20" validate:"gt=0"`
	WindGustKmh        float64 `envconfig:"THRESHOLD_WIND_GUST" default:"20" validate:"gt=0"`
	ThunderProbPct     float64 `envconfig:"THRESHOLD_THUNDER_PROBABILITY" default:"20" validate:"gt=0"`
	TemperatureC       float64 `envconfig:"THRESHOLD_TEMPERATURE" default:"32" validate:"gt=0"`
}

// ForMetric returns the configured threshold for m. The second return is
// false for metrics without a crossing threshold (temperature) or unknown
// metrics; callers treat that as a configuration error for threshold metrics.
func (c ThresholdConfig) ForMetric(m types.Metric) (float64, bool) {
	switch m {
	case types.MetricRainProbability:
		return c.RainProbabilityPct, true
	case types.MetricRainAmount:
		return c.RainAmountMM, true
	case types.MetricWindSpeed:
		return c.WindSpeedKmh, true
	case types.MetricWindGust:
		return c.WindGustKmh, true
	case types.MetricThunderProbability:
		return c.ThunderProbPct, true
	}
	return 0, false
}

// Thresholds returns the crossing thresholds as a metric map, the shape the
// aggregator consumes.
func (c ThresholdConfig) Thresholds() map[types.Metric]float64 {
	out := make(map[types.Metric]float64, len(types.ThresholdMetrics))
	for _, m := range types.ThresholdMetrics {
		v, _ := c.ForMetric(m)
		out[m] = v
	}
	return out
}

// DeltaConfig holds the per-metric minimum forecast change that makes an
// already-sent dynamic report worth resending. Gusts reuse the wind speed
// delta. A zero value disables that metric's divergence check.
type DeltaConfig struct {
	RainAmountMM       float64 `envconfig:"DELTA_RAIN_AMOUNT" default:"1.0" validate:"min=0"`
	RainProbabilityPct float64 `envconfig:"DELTA_RAIN_PROBABILITY" default:"30" validate:"min=0"`
	WindSpeedKmh       float64 `envconfig:"DELTA_WIND_SPEED" default:"10" validate:"min=0"`
	ThunderProbPct     float64 `envconfig:"DELTA_THUNDER_PROBABILITY" default:"20" validate:"min=0"`
}

// ConfigErrorType categorizes configuration loading failures to aid debugging.
type ConfigErrorType string

const (
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates a failure when parsing environment variable values
	// into their target types.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
	// ErrTimezone indicates the configured route timezone could not be loaded.
	ErrTimezone ConfigErrorType = "TIMEZONE_INVALID"
)
