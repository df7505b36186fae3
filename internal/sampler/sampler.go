// Package sampler fans out forecast fetches over a stage's sample points and
// merges the per-granularity series into one series per point.
package sampler

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"routecast/internal/types"

	"golang.org/x/sync/errgroup"
)

// SeriesResolver yields a provenance-tagged series for one point and
// granularity. Failures are absorbed below this interface; an unavailable
// result is an empty series.
type SeriesResolver interface {
	Resolve(ctx context.Context, pt types.GeoPoint, window types.FetchWindow, gran types.Granularity) types.TimeSeries
}

// granularities fetched for every point, in merge precedence order. The
// hourly series is the backbone; the others only fill what it lacks.
var granularities = []types.Granularity{
	types.GranularityHourly,
	types.GranularityDaily,
	types.GranularityProbability,
}

// Sampler builds a StageSeries by sampling every point of a stage.
type Sampler struct {
	resolver    SeriesResolver
	logger      *slog.Logger
	maxParallel int
}

// New creates a Sampler. maxParallel bounds concurrent fetches; values < 1
// fall back to 4.
func New(resolver SeriesResolver, maxParallel int, logger *slog.Logger) *Sampler {
	if logger == nil {
		logger = slog.Default()
	}
	if maxParallel < 1 {
		maxParallel = 4
	}
	return &Sampler{resolver: resolver, logger: logger, maxParallel: maxParallel}
}

// Sample fetches all granularities for every point concurrently and merges
// them per point. A point whose fetches all come back unavailable
// contributes an empty series; it never blocks the other points or fails
// the stage.
func (s *Sampler) Sample(ctx context.Context, stageName string, points []types.GeoPoint, window types.FetchWindow) types.StageSeries {
	fetched := make([][]types.TimeSeries, len(points))
	for i := range fetched {
		fetched[i] = make([]types.TimeSeries, len(granularities))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxParallel)
	for pi, pt := range points {
		for gi, gran := range granularities {
			pi, pt, gi, gran := pi, pt, gi, gran
			g.Go(func() error {
				fetched[pi][gi] = s.resolver.Resolve(gctx, pt, window, gran)
				return nil
			})
		}
	}
	// Resolve never errors, so Wait only synchronizes the fan-out.
	_ = g.Wait()

	stage := types.StageSeries{StageName: stageName}
	for pi, pt := range points {
		merged := mergePointSeries(fetched[pi])
		if merged.Provenance == types.ProvenanceUnavailable {
			s.logger.Warn("no forecast data for stage point",
				"stage", stageName, "point", pt.Ordinal)
		}
		stage.Points = append(stage.Points, types.PointSeries{Point: pt, Series: merged})
	}
	return stage
}

// mergePointSeries folds a point's per-granularity series into one, keyed by
// timestamp. The hourly series is taken whole; coarser series only
// contribute metrics absent at a timestamp, and only when they carry the
// same provenance, so a single point's series never mixes providers. The
// base provenance is the first non-unavailable one in precedence order.
func mergePointSeries(series []types.TimeSeries) types.TimeSeries {
	base := types.ProvenanceUnavailable
	for _, sr := range series {
		if sr.Provenance != types.ProvenanceUnavailable && len(sr.Points) > 0 {
			base = sr.Provenance
			break
		}
	}
	if base == types.ProvenanceUnavailable {
		return types.TimeSeries{Provenance: types.ProvenanceUnavailable}
	}

	byTime := map[time.Time]*types.TimeSeriesPoint{}
	order := []time.Time{}
	for _, sr := range series {
		if sr.Provenance != base {
			continue
		}
		for _, p := range sr.Points {
			existing, ok := byTime[p.Time]
			if !ok {
				cp := p
				byTime[p.Time] = &cp
				order = append(order, p.Time)
				continue
			}
			// Earlier granularities win; fill only absent metrics.
			for _, m := range types.AllMetrics {
				if existing.Value(m) == nil {
					existing.SetValue(m, p.Value(m))
				}
			}
			if existing.Condition == "" {
				existing.Condition = p.Condition
			}
		}
	}

	sort.Slice(order, func(i, j int) bool { return order[i].Before(order[j]) })
	out := types.TimeSeries{Provenance: base}
	for _, t := range order {
		out.Points = append(out.Points, *byTime[t])
	}
	return out
}
