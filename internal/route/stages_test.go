package route

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"routecast/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStages() []Stage {
	return []Stage{
		{Name: "Ortu", Points: []StagePoint{{Lat: 42.46, Lon: 8.90}, {Lat: 42.43, Lon: 8.93}}},
		{Name: "Carozzu", Points: []StagePoint{{Lat: 42.41, Lon: 8.95}}},
		{Name: "Ascu Stagnu", Points: []StagePoint{{Lat: 42.40, Lon: 8.97}}},
	}
}

func newTestPlanner() *Planner {
	start := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	return NewPlanner(testStages(), start, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestStageFor_MapsDateToStage(t *testing.T) {
	p := newTestPlanner()

	tests := []struct {
		day  int
		want string
	}{
		{0, "Ortu"},
		{1, "Carozzu"},
		{2, "Ascu Stagnu"},
	}
	for _, tc := range tests {
		date := time.Date(2026, 7, 10+tc.day, 15, 30, 0, 0, time.UTC)
		st, err := p.StageFor(date)
		require.NoError(t, err)
		require.NotNil(t, st)
		assert.Equal(t, tc.want, st.Name, "day %d", tc.day)
	}
}

func TestStageFor_BeforeStartIsError(t *testing.T) {
	p := newTestPlanner()

	_, err := p.StageFor(time.Date(2026, 7, 9, 12, 0, 0, 0, time.UTC))

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeRouteBeforeStart, appErr.Code)
}

func TestStageFor_PastEndIsNilNotError(t *testing.T) {
	p := newTestPlanner()

	st, err := p.StageFor(time.Date(2026, 7, 13, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestNextAndAfterNext(t *testing.T) {
	p := newTestPlanner()
	day0 := time.Date(2026, 7, 10, 8, 0, 0, 0, time.UTC)

	next, err := p.NextStage(day0)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "Carozzu", next.Name)

	after, err := p.StageAfterNext(day0)
	require.NoError(t, err)
	require.NotNil(t, after)
	assert.Equal(t, "Ascu Stagnu", after.Name)

	// On the last stage both lookahead calls degrade to nil.
	last := time.Date(2026, 7, 12, 8, 0, 0, 0, time.UTC)
	next, err = p.NextStage(last)
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestStageByName(t *testing.T) {
	p := newTestPlanner()

	st, err := p.StageByName("Carozzu")
	require.NoError(t, err)
	assert.Equal(t, "Carozzu", st.Name)

	_, err = p.StageByName("Vizzavona")
	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeRouteStageNotFound, appErr.Code)
}

func TestGeoPoints_OrdinalsAreOneBased(t *testing.T) {
	st := testStages()[0]
	pts := st.GeoPoints()

	require.Len(t, pts, 2)
	assert.Equal(t, 1, pts[0].Ordinal)
	assert.Equal(t, 2, pts[1].Ordinal)
	assert.Equal(t, 42.46, pts[0].Lat)
}

func TestLoadPlanner(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stages.json")
	data := `[
		{"name": "Ortu", "points": [{"lat": 42.46, "lon": 8.90}]},
		{"name": "Carozzu", "points": [{"lat": 42.41, "lon": 8.95}]}
	]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	start := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	p, err := LoadPlanner(path, start, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	assert.Equal(t, 2, p.StageCount())
}

func TestLoadPlanner_Invalid(t *testing.T) {
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	start := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		data string
		code types.ErrorCode
	}{
		{"malformed json", `{not json`, types.ErrCodeConfigInvalidRoute},
		{"missing name", `[{"name": "", "points": []}]`, types.ErrCodeConfigInvalidRoute},
		{"bad latitude", `[{"name": "X", "points": [{"lat": 95, "lon": 0}]}]`, types.ErrCodeValidationInvalidLat},
		{"bad longitude", `[{"name": "X", "points": [{"lat": 0, "lon": 181}]}]`, types.ErrCodeValidationInvalidLon},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.name+".json")
			require.NoError(t, os.WriteFile(path, []byte(tc.data), 0o644))

			_, err := LoadPlanner(path, start, logger)
			var appErr *types.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tc.code, appErr.Code)
		})
	}

	_, err := LoadPlanner(filepath.Join(dir, "missing.json"), start, logger)
	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeConfigInvalidRoute, appErr.Code)
}
