package provider

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"routecast/internal/types"
)

// openMeteoResponse mirrors the hourly and daily blocks of the Open-Meteo
// forecast endpoint: parallel arrays indexed by timestamp.
type openMeteoResponse struct {
	Hourly struct {
		Time                     []string   `json:"time"`
		Temperature2m            []*float64 `json:"temperature_2m"`
		PrecipitationProbability []*float64 `json:"precipitation_probability"`
		Precipitation            []*float64 `json:"precipitation"`
		WindSpeed10m             []*float64 `json:"wind_speed_10m"`
		WindGusts10m             []*float64 `json:"wind_gusts_10m"`
		WeatherCode              []*int     `json:"weather_code"`
	} `json:"hourly"`
	Daily struct {
		Time             []string   `json:"time"`
		Temperature2mMin []*float64 `json:"temperature_2m_min"`
		Temperature2mMax []*float64 `json:"temperature_2m_max"`
	} `json:"daily"`
}

// Open-Meteo weather codes 95..99 indicate thunderstorms.
func isThunderCode(code int) bool {
	return code >= 95 && code <= 99
}

// conditionForCode maps an Open-Meteo weather code to a condition string in
// the same vocabulary the estimator understands.
func conditionForCode(code int) string {
	switch {
	case isThunderCode(code):
		return "thunderstorm"
	case code >= 80 && code <= 82:
		return "rain showers"
	case code >= 61 && code <= 67:
		return "rain"
	case code >= 51 && code <= 57:
		return "drizzle"
	case code >= 71 && code <= 77 || code == 85 || code == 86:
		return "snow"
	case code == 45 || code == 48:
		return "fog"
	case code == 0:
		return "clear"
	default:
		return "cloudy"
	}
}

// OpenMeteoClient is the secondary forecast provider, used when the primary
// fails or returns nothing usable.
type OpenMeteoClient struct {
	base    *BaseClient
	baseURL string
	logger  *slog.Logger
	loc     *time.Location
}

// NewOpenMeteoClient builds the secondary provider client.
func NewOpenMeteoClient(base *BaseClient, baseURL string, loc *time.Location, logger *slog.Logger) *OpenMeteoClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenMeteoClient{base: base, baseURL: baseURL, logger: logger, loc: loc}
}

// Name identifies the provider in logs and provenance.
func (c *OpenMeteoClient) Name() string { return "openmeteo" }

// Fetch retrieves the forecast for the point and normalizes the block
// matching the granularity into a TimeSeries restricted to the window.
// Open-Meteo has no thunderstorm probability; hours whose weather code is a
// thunderstorm code get a fixed 80, every other hour stays nil. The
// probability-window granularity reuses the hourly precipitation
// probabilities, which is the closest series this provider has.
func (c *OpenMeteoClient) Fetch(ctx context.Context, pt types.GeoPoint, window types.FetchWindow, gran types.Granularity) (types.TimeSeries, error) {
	if err := validatePoint(pt); err != nil {
		return types.TimeSeries{}, err
	}

	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%.4f", pt.Lat))
	q.Set("longitude", fmt.Sprintf("%.4f", pt.Lon))
	q.Set("timezone", c.loc.String())
	q.Set("forecast_days", "3")
	if gran == types.GranularityDaily {
		q.Set("daily", "temperature_2m_min,temperature_2m_max")
	} else {
		q.Set("hourly", "temperature_2m,precipitation_probability,precipitation,wind_speed_10m,wind_gusts_10m,weather_code")
	}
	reqURL := fmt.Sprintf("%s/v1/forecast?%s", c.baseURL, q.Encode())

	var raw openMeteoResponse
	if err := c.base.GetJSON(ctx, reqURL, &raw); err != nil {
		return types.TimeSeries{}, err
	}

	var series types.TimeSeries
	var err error
	switch gran {
	case types.GranularityDaily:
		series, err = c.dailySeries(raw, window)
	case types.GranularityProbability:
		series, err = c.hourlySeries(raw, window, true)
	default:
		series, err = c.hourlySeries(raw, window, false)
	}
	if err != nil {
		return types.TimeSeries{}, err
	}

	c.logger.Debug("secondary forecast fetched",
		"lat", pt.Lat, "lon", pt.Lon, "granularity", string(gran), "points", len(series.Points))
	return series, nil
}

func (c *OpenMeteoClient) hourlySeries(raw openMeteoResponse, window types.FetchWindow, probabilityOnly bool) (types.TimeSeries, error) {
	if len(raw.Hourly.Time) == 0 {
		return types.TimeSeries{}, types.NewAppError(types.ErrCodeUpstreamMalformed,
			"empty hourly block from secondary provider", nil)
	}

	series := types.TimeSeries{Provenance: types.ProvenanceSecondary}
	for i, tstr := range raw.Hourly.Time {
		ts, err := time.ParseInLocation("2006-01-02T15:04", tstr, c.loc)
		if err != nil {
			return types.TimeSeries{}, types.NewAppError(types.ErrCodeUpstreamMalformed,
				fmt.Sprintf("unparseable hourly timestamp %q", tstr), err)
		}
		if !window.Contains(ts) {
			continue
		}

		p := types.TimeSeriesPoint{Time: ts}
		if probabilityOnly {
			p.RainProbabilityPct = at(raw.Hourly.PrecipitationProbability, i)
			if p.RainProbabilityPct == nil {
				continue
			}
		} else {
			p.TemperatureC = at(raw.Hourly.Temperature2m, i)
			p.RainProbabilityPct = at(raw.Hourly.PrecipitationProbability, i)
			p.RainAmountMM = at(raw.Hourly.Precipitation, i)
			p.WindSpeedKmh = at(raw.Hourly.WindSpeed10m, i)
			p.WindGustKmh = at(raw.Hourly.WindGusts10m, i)
			if code := atInt(raw.Hourly.WeatherCode, i); code != nil {
				p.Condition = conditionForCode(*code)
				if isThunderCode(*code) {
					p.ThunderProbPct = types.Float(80)
				}
			}
		}

		series.Points = append(series.Points, p)
	}
	return series, nil
}

// dailySeries exposes per-day extrema the same way the primary does, minimum
// at 05:00 and maximum at 14:00, so the merge treats both providers alike.
func (c *OpenMeteoClient) dailySeries(raw openMeteoResponse, window types.FetchWindow) (types.TimeSeries, error) {
	series := types.TimeSeries{Provenance: types.ProvenanceSecondary}
	for i, dstr := range raw.Daily.Time {
		d, err := time.ParseInLocation("2006-01-02", dstr, c.loc)
		if err != nil {
			return types.TimeSeries{}, types.NewAppError(types.ErrCodeUpstreamMalformed,
				fmt.Sprintf("unparseable daily timestamp %q", dstr), err)
		}
		minAt := time.Date(d.Year(), d.Month(), d.Day(), 5, 0, 0, 0, c.loc)
		maxAt := time.Date(d.Year(), d.Month(), d.Day(), 14, 0, 0, 0, c.loc)
		if v := at(raw.Daily.Temperature2mMin, i); v != nil && window.Contains(minAt) {
			series.Points = append(series.Points, types.TimeSeriesPoint{Time: minAt, TemperatureC: v})
		}
		if v := at(raw.Daily.Temperature2mMax, i); v != nil && window.Contains(maxAt) {
			series.Points = append(series.Points, types.TimeSeriesPoint{Time: maxAt, TemperatureC: v})
		}
	}
	return series, nil
}

func at(vals []*float64, i int) *float64 {
	if i >= len(vals) {
		return nil
	}
	return vals[i]
}

func atInt(vals []*int, i int) *int {
	if i >= len(vals) {
		return nil
	}
	return vals[i]
}
