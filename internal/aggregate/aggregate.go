// Package aggregate computes threshold-crossing and maximum facts from a
// stage's per-point forecast series.
//
// Per metric and point the scan finds the first sample meeting the
// configured threshold and the earliest occurrence of the series maximum.
// Across points the stage-level crossing is the earliest one (ties broken by
// lower point ordinal) and the stage-level maximum is the greatest one (ties
// broken by earlier hour, then lower ordinal). A metric no provider ever
// supplied stays absent; absence is never read as zero.
package aggregate

import (
	"log/slog"

	"routecast/internal/types"
)

// PointFacts is the per-point aggregation result, kept for debug export.
type PointFacts struct {
	Ordinal     int
	Provenance  types.Provenance
	Facts       map[types.Metric]types.ThresholdFact
	Temperature types.TemperatureExtrema
}

// Result pairs the stage-level facts with the per-point facts they were
// reduced from.
type Result struct {
	Stage    types.StageFacts
	PerPoint []PointFacts
}

// Aggregator scans stage series against configured thresholds.
type Aggregator struct {
	thresholds map[types.Metric]float64
	logger     *slog.Logger
}

// New creates an Aggregator with one threshold per tracked metric.
func New(thresholds map[types.Metric]float64, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{thresholds: thresholds, logger: logger}
}

// Aggregate reduces the stage's series to threshold facts, considering only
// samples whose hour lies inside the window. Samples outside the window are
// ignored entirely, not treated as zero.
func (a *Aggregator) Aggregate(stage types.StageSeries, window types.HourWindow) Result {
	res := Result{
		Stage: types.StageFacts{
			StageName: stage.StageName,
			Facts:     map[types.Metric]types.ThresholdFact{},
		},
	}

	for _, ps := range stage.Points {
		pf := PointFacts{
			Ordinal:    ps.Point.Ordinal,
			Provenance: ps.Series.Provenance,
			Facts:      map[types.Metric]types.ThresholdFact{},
		}
		for _, m := range types.ThresholdMetrics {
			pf.Facts[m] = scanMetric(ps.Series, m, a.thresholds[m], window)
		}
		pf.Temperature = scanTemperature(ps.Series, window)
		res.PerPoint = append(res.PerPoint, pf)
	}

	for _, m := range types.ThresholdMetrics {
		res.Stage.Facts[m] = reduceMetric(res.PerPoint, m)
	}
	res.Stage.Temperature = reduceTemperature(res.PerPoint)

	a.logger.Debug("stage aggregated",
		"stage", stage.StageName, "points", len(stage.Points))
	return res
}

// scanMetric computes one point's fact for one metric: first sample at or
// above the threshold, and the earliest occurrence of the maximum.
func scanMetric(series types.TimeSeries, m types.Metric, threshold float64, window types.HourWindow) types.ThresholdFact {
	var fact types.ThresholdFact
	for i := range series.Points {
		p := &series.Points[i]
		if !window.Contains(p.Time.Hour()) {
			continue
		}
		v := p.Value(m)
		if v == nil {
			continue
		}
		if fact.ThresholdValue == nil && *v >= threshold {
			t := p.Time
			fact.ThresholdTime = &t
			fact.ThresholdValue = v
		}
		// Strict > keeps the earliest hour on ties.
		if fact.MaxValue == nil || *v > *fact.MaxValue {
			t := p.Time
			fact.MaxTime = &t
			fact.MaxValue = v
		}
	}
	return fact
}

// scanTemperature computes one point's min/max temperature over the window.
// Ties keep the earliest hour, same as the metric maxima.
func scanTemperature(series types.TimeSeries, window types.HourWindow) types.TemperatureExtrema {
	var ex types.TemperatureExtrema
	for i := range series.Points {
		p := &series.Points[i]
		if !window.Contains(p.Time.Hour()) {
			continue
		}
		v := p.TemperatureC
		if v == nil {
			continue
		}
		if ex.MinValue == nil || *v < *ex.MinValue {
			t := p.Time
			ex.MinTime = &t
			ex.MinValue = v
		}
		if ex.MaxValue == nil || *v > *ex.MaxValue {
			t := p.Time
			ex.MaxTime = &t
			ex.MaxValue = v
		}
	}
	return ex
}

// reduceMetric folds the per-point facts for one metric into the stage-level
// fact. PerPoint is ordered by ordinal, so iteration order provides the
// ordinal tie-break for free.
func reduceMetric(points []PointFacts, m types.Metric) types.ThresholdFact {
	var stage types.ThresholdFact
	for _, pf := range points {
		f := pf.Facts[m]

		// Earliest crossing wins; on equal time the earlier ordinal was
		// visited first and is kept.
		if f.ThresholdValue != nil {
			if stage.ThresholdValue == nil || f.ThresholdTime.Before(*stage.ThresholdTime) {
				stage.ThresholdTime = f.ThresholdTime
				stage.ThresholdValue = f.ThresholdValue
			}
		}

		// Greatest maximum wins; ties by earlier hour, then by the ordinal
		// order of iteration.
		if f.MaxValue != nil {
			switch {
			case stage.MaxValue == nil,
				*f.MaxValue > *stage.MaxValue,
				*f.MaxValue == *stage.MaxValue && f.MaxTime.Before(*stage.MaxTime):
				stage.MaxTime = f.MaxTime
				stage.MaxValue = f.MaxValue
			}
		}
	}
	return stage
}

func reduceTemperature(points []PointFacts) types.TemperatureExtrema {
	var stage types.TemperatureExtrema
	for _, pf := range points {
		ex := pf.Temperature
		if ex.MinValue != nil {
			if stage.MinValue == nil || *ex.MinValue < *stage.MinValue ||
				(*ex.MinValue == *stage.MinValue && ex.MinTime.Before(*stage.MinTime)) {
				stage.MinTime = ex.MinTime
				stage.MinValue = ex.MinValue
			}
		}
		if ex.MaxValue != nil {
			if stage.MaxValue == nil || *ex.MaxValue > *stage.MaxValue ||
				(*ex.MaxValue == *stage.MaxValue && ex.MaxTime.Before(*stage.MaxTime)) {
				stage.MaxTime = ex.MaxTime
				stage.MaxValue = ex.MaxValue
			}
		}
	}
	return stage
}
