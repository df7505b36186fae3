package provider

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"routecast/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOpenMeteoTestClient(t *testing.T, payload string) (*OpenMeteoClient, *url.Values) {
	t.Helper()
	var query url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		assert.Equal(t, "/v1/forecast", r.URL.Path)
		w.Write([]byte(payload))
	}))
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	base := NewBaseClient(&http.Client{}, "om-test", testRetryPolicy(), "", types.ErrCodeUpstreamSecondary,
		WithSleepFunc(func(time.Duration) {}))
	return NewOpenMeteoClient(base, srv.URL, time.UTC, logger), &query
}

func omWindow() types.FetchWindow {
	day := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	return types.FetchWindow{Start: day, End: day.Add(23 * time.Hour)}
}

func TestOpenMeteo_HourlyFetch(t *testing.T) {
	payload := `{
		"hourly": {
			"time": ["2026-07-10T08:00", "2026-07-10T09:00", "2026-07-11T08:00"],
			"temperature_2m": [17.1, 18.3, 20.0],
			"precipitation_probability": [40, null, 10],
			"precipitation": [0.2, 0.0, 0.0],
			"wind_speed_10m": [14, 16, 12],
			"wind_gusts_10m": [22, 28, 18],
			"weather_code": [61, 95, 0]
		}
	}`

	client, query := newOpenMeteoTestClient(t, payload)
	series, err := client.Fetch(context.Background(), types.GeoPoint{Lat: 42.4, Lon: 8.9},
		omWindow(), types.GranularityHourly)
	require.NoError(t, err)

	assert.Contains(t, (*query).Get("hourly"), "weather_code")
	assert.Equal(t, "UTC", (*query).Get("timezone"))

	require.Len(t, series.Points, 2, "next-day samples fall outside the window")
	assert.Equal(t, types.ProvenanceSecondary, series.Provenance)

	first := series.Points[0]
	assert.Equal(t, 17.1, *first.TemperatureC)
	assert.Equal(t, 40.0, *first.RainProbabilityPct)
	assert.Equal(t, "rain", first.Condition)
	assert.Nil(t, first.ThunderProbPct)

	second := series.Points[1]
	assert.Nil(t, second.RainProbabilityPct, "a null slot stays nil, never zero")
	assert.Equal(t, "thunderstorm", second.Condition)
	require.NotNil(t, second.ThunderProbPct)
	assert.Equal(t, 80.0, *second.ThunderProbPct)
}

func TestOpenMeteo_ProbabilityGranularity(t *testing.T) {
	payload := `{
		"hourly": {
			"time": ["2026-07-10T08:00", "2026-07-10T09:00"],
			"temperature_2m": [17.1, 18.3],
			"precipitation_probability": [40, null]
		}
	}`

	client, _ := newOpenMeteoTestClient(t, payload)
	series, err := client.Fetch(context.Background(), types.GeoPoint{Lat: 42.4, Lon: 8.9},
		omWindow(), types.GranularityProbability)
	require.NoError(t, err)

	require.Len(t, series.Points, 1, "hours without a probability contribute nothing")
	assert.Equal(t, 40.0, *series.Points[0].RainProbabilityPct)
	assert.Nil(t, series.Points[0].TemperatureC, "the probability series carries only probabilities")
}

func TestOpenMeteo_DailyFetch(t *testing.T) {
	payload := `{
		"daily": {
			"time": ["2026-07-10"],
			"temperature_2m_min": [9.1],
			"temperature_2m_max": [23.7]
		}
	}`

	client, query := newOpenMeteoTestClient(t, payload)
	series, err := client.Fetch(context.Background(), types.GeoPoint{Lat: 42.4, Lon: 8.9},
		omWindow(), types.GranularityDaily)
	require.NoError(t, err)

	assert.Equal(t, "temperature_2m_min,temperature_2m_max", (*query).Get("daily"))
	assert.Empty(t, (*query).Get("hourly"))

	require.Len(t, series.Points, 2)
	assert.Equal(t, 5, series.Points[0].Time.Hour())
	assert.Equal(t, 9.1, *series.Points[0].TemperatureC)
	assert.Equal(t, 14, series.Points[1].Time.Hour())
	assert.Equal(t, 23.7, *series.Points[1].TemperatureC)
}

func TestOpenMeteo_EmptyHourlyIsMalformed(t *testing.T) {
	client, _ := newOpenMeteoTestClient(t, `{"hourly": {"time": []}}`)

	_, err := client.Fetch(context.Background(), types.GeoPoint{Lat: 42.4, Lon: 8.9},
		omWindow(), types.GranularityHourly)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeUpstreamMalformed, appErr.Code)
}

func TestOpenMeteo_UnparseableTimestampIsMalformed(t *testing.T) {
	client, _ := newOpenMeteoTestClient(t, `{"hourly": {"time": ["not-a-time"]}}`)

	_, err := client.Fetch(context.Background(), types.GeoPoint{Lat: 42.4, Lon: 8.9},
		omWindow(), types.GranularityHourly)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeUpstreamMalformed, appErr.Code)
}

func TestConditionForCode(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{95, "thunderstorm"},
		{99, "thunderstorm"},
		{80, "rain showers"},
		{63, "rain"},
		{53, "drizzle"},
		{71, "snow"},
		{45, "fog"},
		{0, "clear"},
		{3, "cloudy"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, conditionForCode(tc.code), "code %d", tc.code)
	}
}
