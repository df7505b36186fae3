// Package route resolves which stage of the hiking route is walked on a given
// date. Stages are loaded once from a JSON file and the stage for a date is
// the day offset from the configured start date.
package route

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"routecast/internal/types"
)

// StagePoint is one sample coordinate within a stage, as stored on disk.
type StagePoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Stage is one day's segment of the route with its ordered sample points.
type Stage struct {
	Name   string       `json:"name"`
	Points []StagePoint `json:"points"`
}

// GeoPoints returns the stage's coordinates as domain points with 1-based
// ordinals.
func (s *Stage) GeoPoints() []types.GeoPoint {
	pts := make([]types.GeoPoint, len(s.Points))
	for i, p := range s.Points {
		pts[i] = types.GeoPoint{Lat: p.Lat, Lon: p.Lon, Ordinal: i + 1}
	}
	return pts
}

// Planner maps dates to stages. It holds the full ordered stage list and the
// route start date; stage N is walked on startDate+N days.
type Planner struct {
	stages    []Stage
	startDate time.Time
	logger    *slog.Logger
}

// NewPlanner creates a Planner over the given stages. startDate must be
// truncated to midnight in the route's local time zone.
func NewPlanner(stages []Stage, startDate time.Time, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{stages: stages, startDate: startDate, logger: logger}
}

// LoadPlanner reads the stage list from a JSON file and builds a Planner.
func LoadPlanner(path string, startDate time.Time, logger *slog.Logger) (*Planner, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeConfigInvalidRoute,
			fmt.Sprintf("reading route stages file %s", path), err)
	}

	var stages []Stage
	if err := json.Unmarshal(data, &stages); err != nil {
		return nil, types.NewAppError(types.ErrCodeConfigInvalidRoute,
			fmt.Sprintf("parsing route stages file %s", path), err)
	}

	for i, st := range stages {
		if st.Name == "" {
			return nil, types.NewAppError(types.ErrCodeConfigInvalidRoute,
				fmt.Sprintf("stage %d has no name", i), nil)
		}
		for j, p := range st.Points {
			if p.Lat < -90 || p.Lat > 90 {
				return nil, types.NewAppError(types.ErrCodeValidationInvalidLat,
					fmt.Sprintf("stage %q point %d latitude %v", st.Name, j+1, p.Lat), nil)
			}
			if p.Lon < -180 || p.Lon > 180 {
				return nil, types.NewAppError(types.ErrCodeValidationInvalidLon,
					fmt.Sprintf("stage %q point %d longitude %v", st.Name, j+1, p.Lon), nil)
			}
		}
	}

	return NewPlanner(stages, startDate, logger), nil
}

// StageCount returns the number of stages on the route.
func (p *Planner) StageCount() int { return len(p.stages) }

// StageFor returns the stage walked on the given date. It returns an error
// for dates before the route start; dates past the end return nil with no
// error, the "route ended" signal callers degrade on.
func (p *Planner) StageFor(date time.Time) (*Stage, error) {
	idx := p.indexFor(date)
	if idx < 0 {
		return nil, types.NewAppError(types.ErrCodeRouteBeforeStart,
			fmt.Sprintf("date %s is before route start %s",
				date.Format("2006-01-02"), p.startDate.Format("2006-01-02")), nil)
	}
	if idx >= len(p.stages) {
		p.logger.Debug("no stage for date", "date", date.Format("2006-01-02"), "index", idx)
		return nil, nil
	}
	st := p.stages[idx]
	return &st, nil
}

// NextStage returns the stage walked the day after date, or nil when the
// route ends.
func (p *Planner) NextStage(date time.Time) (*Stage, error) {
	return p.StageFor(date.AddDate(0, 0, 1))
}

// StageAfterNext returns the stage walked two days after date, or nil when
// the route ends.
func (p *Planner) StageAfterNext(date time.Time) (*Stage, error) {
	return p.StageFor(date.AddDate(0, 0, 2))
}

// StageByName returns the named stage, used when a caller addresses a stage
// directly instead of by date.
func (p *Planner) StageByName(name string) (*Stage, error) {
	for _, st := range p.stages {
		if st.Name == name {
			stage := st
			return &stage, nil
		}
	}
	return nil, types.NewAppError(types.ErrCodeRouteStageNotFound,
		fmt.Sprintf("stage %q not in route", name), nil)
}

func (p *Planner) indexFor(date time.Time) int {
	loc := date.Location()
	start := time.Date(p.startDate.Year(), p.startDate.Month(), p.startDate.Day(), 0, 0, 0, 0, loc)
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	// Round absorbs the 23/25 hour days around DST transitions.
	return int(math.Round(day.Sub(start).Hours() / 24))
}
