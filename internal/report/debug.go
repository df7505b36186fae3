package report

import (
	"fmt"
	"strings"
	"time"

	"routecast/internal/aggregate"
	"routecast/internal/types"
)

// DebugMarker is the fixed first line of every debug export. Consumers split
// a delivered message into short report and diagnostics on this line.
const DebugMarker = "# DEBUG DATENEXPORT"

// ExportDebug renders the full audit transcript for one generated report:
// the raw hour-by-hour values of every sample point with its provenance,
// the per-point threshold and maximum facts, and the stage-level reduction.
// Missing values render as dashes, matching the compact formatter. It never
// fails; missing data only produces more dashes.
func ExportDebug(stage types.StageSeries, res aggregate.Result, rec types.ReportRecord) string {
	var b strings.Builder
	b.WriteString(DebugMarker + "\n")

	fmt.Fprintf(&b, "Report: %s  Date: %s  Stage: %s\n",
		rec.Type, rec.TargetDate.Format("2006-01-02"), stage.StageName)
	if rec.StageTomorrow != "" || rec.StageAfterNext != "" {
		fmt.Fprintf(&b, "Continuity: tomorrow=%s after_next=%s\n",
			dashIfEmpty(rec.StageTomorrow), dashIfEmpty(rec.StageAfterNext))
	}
	b.WriteString("\n")

	total := len(stage.Points)
	for i, ps := range stage.Points {
		fmt.Fprintf(&b, "Point %d of %d (%.4f, %.4f) provenance=%s\n",
			ps.Point.Ordinal, total, ps.Point.Lat, ps.Point.Lon, ps.Series.Provenance)
		writeSeriesTable(&b, ps.Series)
		if i < len(res.PerPoint) {
			writeFacts(&b, "point", res.PerPoint[i].Facts, res.PerPoint[i].Temperature)
		}
		b.WriteString("\n")
	}

	b.WriteString("Stage-level facts\n")
	writeFacts(&b, "stage", res.Stage.Facts, res.Stage.Temperature)

	return b.String()
}

func writeSeriesTable(b *strings.Builder, series types.TimeSeries) {
	if series.Empty() {
		b.WriteString("  (no samples)\n")
		return
	}
	b.WriteString("  time   temp  rain%  rainmm  wind  gust  thun%  condition\n")
	for i := range series.Points {
		p := &series.Points[i]
		fmt.Fprintf(b, "  %02d:%02d  %-5s %-6s %-7s %-5s %-5s %-6s %s\n",
			p.Time.Hour(), p.Time.Minute(),
			cell(p.TemperatureC, "%.1f"),
			cell(p.RainProbabilityPct, "%.0f"),
			cell(p.RainAmountMM, "%.2f"),
			cell(p.WindSpeedKmh, "%.0f"),
			cell(p.WindGustKmh, "%.0f"),
			cell(p.ThunderProbPct, "%.0f"),
			dashIfEmpty(p.Condition))
	}
}

func writeFacts(b *strings.Builder, level string, facts map[types.Metric]types.ThresholdFact, temp types.TemperatureExtrema) {
	for _, m := range types.ThresholdMetrics {
		f := facts[m]
		fmt.Fprintf(b, "  %s %-20s [%s] threshold=%s max=%s\n",
			level, string(m), m.Unit(), factSide(f.ThresholdValue, f.ThresholdTime), factSide(f.MaxValue, f.MaxTime))
	}
	fmt.Fprintf(b, "  %s %-20s [%s] min=%s max=%s\n",
		level, string(types.MetricTemperature), types.MetricTemperature.Unit(),
		factSide(temp.MinValue, temp.MinTime), factSide(temp.MaxValue, temp.MaxTime))
}

// factSide renders "value@hour" or a dash when the fact side is absent.
func factSide(v *float64, t *time.Time) string {
	if v == nil {
		return "-"
	}
	if t == nil {
		return fmt.Sprintf("%.2f@-", *v)
	}
	return fmt.Sprintf("%.2f@%d", *v, t.Hour())
}

// cell formats an optional value for the hourly table, dash when absent.
func cell(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
