package provider

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"time"

	"routecast/internal/types"
)

// meteoFranceResponse mirrors the fields we read from the Météo-France
// forecast endpoint. Hourly entries carry unix timestamps, nested value
// objects, and a textual condition; daily aggregates and the 3-hourly
// probability series come as separate blocks of the same payload.
type meteoFranceResponse struct {
	Forecast []struct {
		Dt int64 `json:"dt"`
		T  struct {
			Value *float64 `json:"value"`
		} `json:"T"`
		Wind struct {
			Speed *float64 `json:"speed"`
			Gust  *float64 `json:"gust"`
		} `json:"wind"`
		Rain    map[string]*float64 `json:"rain"`
		Weather struct {
			Desc string `json:"desc"`
		} `json:"weather"`
		PrecipitationProbability *float64 `json:"precipitation_probability"`
	} `json:"forecast"`
	DailyForecast []struct {
		Dt int64 `json:"dt"`
		T  struct {
			Min *float64 `json:"min"`
			Max *float64 `json:"max"`
		} `json:"T"`
	} `json:"daily_forecast"`
	ProbabilityForecast []struct {
		Dt     int64    `json:"dt"`
		Rain3h *float64 `json:"rain_3h"`
		Storm  *float64 `json:"storm_3h"`
	} `json:"probability_forecast"`
}

// MeteoFranceClient is the primary forecast provider.
type MeteoFranceClient struct {
	base      *BaseClient
	baseURL   string
	estimator Estimator
	logger    *slog.Logger
	loc       *time.Location
}

// NewMeteoFranceClient builds the primary provider client. loc is the route's
// local time zone; all returned series timestamps are in that zone.
func NewMeteoFranceClient(base *BaseClient, baseURL string, est Estimator, loc *time.Location, logger *slog.Logger) *MeteoFranceClient {
	if logger == nil {
		logger = slog.Default()
	}
	if est == nil {
		est = ConditionEstimator{}
	}
	return &MeteoFranceClient{base: base, baseURL: baseURL, estimator: est, logger: logger, loc: loc}
}

// Name identifies the provider in logs and provenance.
func (c *MeteoFranceClient) Name() string { return "meteofrance" }

// Fetch retrieves the forecast block matching the granularity and normalizes
// it into a TimeSeries restricted to the window. Probability fields missing
// from hourly entries are estimated from the condition text; metrics the
// provider did not supply stay nil.
func (c *MeteoFranceClient) Fetch(ctx context.Context, pt types.GeoPoint, window types.FetchWindow, gran types.Granularity) (types.TimeSeries, error) {
	if err := validatePoint(pt); err != nil {
		return types.TimeSeries{}, err
	}

	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%.4f", pt.Lat))
	q.Set("lon", fmt.Sprintf("%.4f", pt.Lon))
	reqURL := fmt.Sprintf("%s/forecast?%s", c.baseURL, q.Encode())

	var raw meteoFranceResponse
	if err := c.base.GetJSON(ctx, reqURL, &raw); err != nil {
		return types.TimeSeries{}, err
	}

	var series types.TimeSeries
	switch gran {
	case types.GranularityDaily:
		series = c.dailySeries(raw, window)
	case types.GranularityProbability:
		series = c.probabilitySeries(raw, window)
	default:
		if len(raw.Forecast) == 0 {
			return types.TimeSeries{}, types.NewAppError(types.ErrCodeUpstreamMalformed,
				"empty forecast block from primary provider", nil)
		}
		series = c.hourlySeries(raw, window)
	}

	sort.Slice(series.Points, func(i, j int) bool {
		return series.Points[i].Time.Before(series.Points[j].Time)
	})

	c.logger.Debug("primary forecast fetched",
		"lat", pt.Lat, "lon", pt.Lon, "granularity", string(gran), "points", len(series.Points))
	return series, nil
}

func (c *MeteoFranceClient) hourlySeries(raw meteoFranceResponse, window types.FetchWindow) types.TimeSeries {
	series := types.TimeSeries{Provenance: types.ProvenancePrimary}
	for _, entry := range raw.Forecast {
		ts := time.Unix(entry.Dt, 0).In(c.loc)
		if !window.Contains(ts) {
			continue
		}

		amount := firstRainValue(entry.Rain)
		p := types.TimeSeriesPoint{
			Time:         ts,
			TemperatureC: entry.T.Value,
			RainAmountMM: amount,
			WindSpeedKmh: entry.Wind.Speed,
			WindGustKmh:  entry.Wind.Gust,
			Condition:    entry.Weather.Desc,
		}

		rainProb := entry.PrecipitationProbability
		if rainProb == nil {
			rainProb = c.estimator.RainProbability(entry.Weather.Desc, amount)
		}
		p.RainProbabilityPct = rainProb
		p.ThunderProbPct = c.estimator.ThunderProbability(entry.Weather.Desc)

		series.Points = append(series.Points, p)
	}
	return series
}

// dailySeries exposes the per-day temperature extrema as two synthetic
// samples, the minimum at 05:00 and the maximum at 14:00. During the merge
// hourly values win, so these only fill hours the hourly block misses.
func (c *MeteoFranceClient) dailySeries(raw meteoFranceResponse, window types.FetchWindow) types.TimeSeries {
	series := types.TimeSeries{Provenance: types.ProvenancePrimary}
	for _, day := range raw.DailyForecast {
		d := time.Unix(day.Dt, 0).In(c.loc)
		minAt := time.Date(d.Year(), d.Month(), d.Day(), 5, 0, 0, 0, c.loc)
		maxAt := time.Date(d.Year(), d.Month(), d.Day(), 14, 0, 0, 0, c.loc)
		if day.T.Min != nil && window.Contains(minAt) {
			series.Points = append(series.Points, types.TimeSeriesPoint{Time: minAt, TemperatureC: day.T.Min})
		}
		if day.T.Max != nil && window.Contains(maxAt) {
			series.Points = append(series.Points, types.TimeSeriesPoint{Time: maxAt, TemperatureC: day.T.Max})
		}
	}
	return series
}

func (c *MeteoFranceClient) probabilitySeries(raw meteoFranceResponse, window types.FetchWindow) types.TimeSeries {
	series := types.TimeSeries{Provenance: types.ProvenancePrimary}
	for _, p := range raw.ProbabilityForecast {
		ts := time.Unix(p.Dt, 0).In(c.loc)
		if !window.Contains(ts) {
			continue
		}
		if p.Rain3h == nil && p.Storm == nil {
			continue
		}
		series.Points = append(series.Points, types.TimeSeriesPoint{
			Time:               ts,
			RainProbabilityPct: p.Rain3h,
			ThunderProbPct:     p.Storm,
		})
	}
	return series
}

// firstRainValue picks the finest-grained precipitation bucket present.
func firstRainValue(rain map[string]*float64) *float64 {
	for _, k := range []string{"1h", "3h", "6h", "value"} {
		if v, ok := rain[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func validatePoint(pt types.GeoPoint) error {
	if pt.Lat < -90 || pt.Lat > 90 {
		return types.NewAppError(types.ErrCodeValidationInvalidLat,
			fmt.Sprintf("latitude %v out of range", pt.Lat), nil)
	}
	if pt.Lon < -180 || pt.Lon > 180 {
		return types.NewAppError(types.ErrCodeValidationInvalidLon,
			fmt.Sprintf("longitude %v out of range", pt.Lon), nil)
	}
	return nil
}
