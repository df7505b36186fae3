package provider

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"routecast/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var mfDay = time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)

func mfWindow() types.FetchWindow {
	return types.FetchWindow{Start: mfDay, End: mfDay.Add(23 * time.Hour)}
}

func newMeteoFranceTestClient(t *testing.T, payload string) (*MeteoFranceClient, *int) {
	t.Helper()
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/forecast", r.URL.Path)
		w.Write([]byte(payload))
	}))
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	base := NewBaseClient(&http.Client{}, "mf-test", testRetryPolicy(), "", types.ErrCodeUpstreamPrimary,
		WithSleepFunc(func(time.Duration) {}))
	return NewMeteoFranceClient(base, srv.URL, nil, time.UTC, logger), &calls
}

func TestMeteoFrance_HourlyFetch(t *testing.T) {
	payload := fmt.Sprintf(`{
		"forecast": [
			{"dt": %d, "T": {"value": 18.5}, "wind": {"speed": 12, "gust": 25},
			 "rain": {"1h": 0.4}, "weather": {"desc": "Averses"}},
			{"dt": %d, "T": {"value": 21.0}, "wind": {"speed": 15},
			 "rain": {}, "weather": {"desc": "Eclaircies"}, "precipitation_probability": 55},
			{"dt": %d, "T": {"value": 10.0}, "wind": {}, "rain": {}, "weather": {"desc": ""}}
		]
	}`,
		mfDay.Add(8*time.Hour).Unix(),
		mfDay.Add(6*time.Hour).Unix(),
		mfDay.Add(30*time.Hour).Unix())

	client, _ := newMeteoFranceTestClient(t, payload)
	series, err := client.Fetch(context.Background(), types.GeoPoint{Lat: 42.4, Lon: 8.9, Ordinal: 1},
		mfWindow(), types.GranularityHourly)
	require.NoError(t, err)

	require.Len(t, series.Points, 2, "samples outside the window are dropped")
	assert.Equal(t, types.ProvenancePrimary, series.Provenance)

	// Sorted by time: the 06:00 entry comes first.
	first := series.Points[0]
	assert.Equal(t, 6, first.Time.Hour())
	assert.Equal(t, 55.0, *first.RainProbabilityPct, "a supplied probability is never re-estimated")
	assert.Nil(t, first.RainAmountMM)

	second := series.Points[1]
	assert.Equal(t, 18.5, *second.TemperatureC)
	assert.Equal(t, 0.4, *second.RainAmountMM)
	assert.Equal(t, 25.0, *second.WindGustKmh)
	require.NotNil(t, second.RainProbabilityPct, "missing probability is estimated from the condition")
	assert.Equal(t, 30.0, *second.RainProbabilityPct)
	assert.Nil(t, second.ThunderProbPct, "no thunderstorm signal in the condition")
	assert.Equal(t, "Averses", second.Condition)
}

func TestMeteoFrance_DailyFetch(t *testing.T) {
	payload := fmt.Sprintf(`{
		"daily_forecast": [
			{"dt": %d, "T": {"min": 8.2, "max": 24.4}}
		]
	}`, mfDay.Add(12*time.Hour).Unix())

	client, _ := newMeteoFranceTestClient(t, payload)
	series, err := client.Fetch(context.Background(), types.GeoPoint{Lat: 42.4, Lon: 8.9},
		mfWindow(), types.GranularityDaily)
	require.NoError(t, err)

	require.Len(t, series.Points, 2)
	assert.Equal(t, 5, series.Points[0].Time.Hour())
	assert.Equal(t, 8.2, *series.Points[0].TemperatureC)
	assert.Equal(t, 14, series.Points[1].Time.Hour())
	assert.Equal(t, 24.4, *series.Points[1].TemperatureC)
}

func TestMeteoFrance_ProbabilityFetch(t *testing.T) {
	payload := fmt.Sprintf(`{
		"probability_forecast": [
			{"dt": %d, "rain_3h": 60, "storm_3h": 40},
			{"dt": %d}
		]
	}`, mfDay.Add(9*time.Hour).Unix(), mfDay.Add(12*time.Hour).Unix())

	client, _ := newMeteoFranceTestClient(t, payload)
	series, err := client.Fetch(context.Background(), types.GeoPoint{Lat: 42.4, Lon: 8.9},
		mfWindow(), types.GranularityProbability)
	require.NoError(t, err)

	require.Len(t, series.Points, 1, "entries with no values at all are skipped")
	assert.Equal(t, 60.0, *series.Points[0].RainProbabilityPct)
	assert.Equal(t, 40.0, *series.Points[0].ThunderProbPct)
}

func TestMeteoFrance_EmptyHourlyBlockIsMalformed(t *testing.T) {
	client, _ := newMeteoFranceTestClient(t, `{"forecast": []}`)

	_, err := client.Fetch(context.Background(), types.GeoPoint{Lat: 42.4, Lon: 8.9},
		mfWindow(), types.GranularityHourly)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeUpstreamMalformed, appErr.Code)
}

func TestMeteoFrance_InvalidPointSkipsHTTP(t *testing.T) {
	client, calls := newMeteoFranceTestClient(t, `{}`)

	_, err := client.Fetch(context.Background(), types.GeoPoint{Lat: 95, Lon: 8.9},
		mfWindow(), types.GranularityHourly)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeValidationInvalidLat, appErr.Code)
	assert.Zero(t, *calls)
}

func TestFirstRainValue_PrefersFinestBucket(t *testing.T) {
	assert.Equal(t, 0.4, *firstRainValue(map[string]*float64{"1h": types.Float(0.4), "3h": types.Float(1.2)}))
	assert.Equal(t, 1.2, *firstRainValue(map[string]*float64{"1h": nil, "3h": types.Float(1.2)}))
	assert.Equal(t, 2.0, *firstRainValue(map[string]*float64{"value": types.Float(2.0)}))
	assert.Nil(t, firstRainValue(map[string]*float64{}))
	assert.Nil(t, firstRainValue(nil))
}
