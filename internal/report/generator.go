package report

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"routecast/internal/aggregate"
	"routecast/internal/route"
	"routecast/internal/sampler"
	"routecast/internal/types"
)

// RecordWriter persists a generated report. The generator never reads back
// what it wrote.
type RecordWriter interface {
	Save(ctx context.Context, rec types.ReportRecord, shortText, debugText string) error
}

// GeneratorConfig carries the windows and thresholds the pipeline runs with.
// A zero Deltas falls back to DefaultDeltaThresholds.
type GeneratorConfig struct {
	Thresholds  map[types.Metric]float64
	DayWindow   types.HourWindow
	NightWindow types.HourWindow
	CharBudget  int
	Location    *time.Location
	Deltas      DeltaThresholds
}

// Generator is the single entry point of report production: it samples the
// stage's points, aggregates threshold facts, composes the record, and
// renders both the compact line and the debug transcript.
type Generator struct {
	planner    *route.Planner
	sampler    *sampler.Sampler
	agg        *aggregate.Aggregator
	formatter  *Formatter
	comparator *Comparator
	store      RecordWriter
	cfg        GeneratorConfig
	logger     *slog.Logger

	mu          sync.Mutex
	lastDynamic map[string]types.ReportRecord
}

// NewGenerator builds a Generator. store may be nil to skip persistence.
// A missing threshold for any tracked metric is a configuration error and
// fails construction; it is the one hard failure in this pipeline.
func NewGenerator(planner *route.Planner, smp *sampler.Sampler, store RecordWriter, cfg GeneratorConfig, logger *slog.Logger) (*Generator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	for _, m := range types.ThresholdMetrics {
		if _, ok := cfg.Thresholds[m]; !ok {
			return nil, types.NewAppError(types.ErrCodeConfigMissingThreshold,
				fmt.Sprintf("no threshold configured for metric %s", m), nil)
		}
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Deltas == (DeltaThresholds{}) {
		cfg.Deltas = DefaultDeltaThresholds()
	}
	return &Generator{
		planner:     planner,
		sampler:     smp,
		agg:         aggregate.New(cfg.Thresholds, logger),
		formatter:   NewFormatter(cfg.CharBudget),
		comparator:  NewComparator(cfg.Deltas, logger),
		store:       store,
		cfg:         cfg,
		logger:      logger,
		lastDynamic: make(map[string]types.ReportRecord),
	}, nil
}

// Generate produces the compact report text and the debug transcript for the
// stage and date. stageName may be empty to let the route planner pick the
// stage walked on targetDate. shortText is always within the character
// budget and debugText always starts with DebugMarker. Data-quality problems
// degrade into dash fields; only invalid input or a persistence failure
// surfaces as an error.
func (g *Generator) Generate(ctx context.Context, stageName string, rtype types.ReportType, targetDate time.Time) (string, string, error) {
	rec, shortText, debugText, err := g.build(ctx, stageName, rtype, targetDate)
	if err != nil {
		return "", "", err
	}
	if g.store != nil {
		if err := g.store.Save(ctx, rec, shortText, debugText); err != nil {
			return shortText, debugText, err
		}
	}
	return shortText, debugText, nil
}

// GenerateDynamicIfChanged produces a dynamic report for the stage walked on
// targetDate, but only delivers it when the forecast moved materially since
// the last dynamic report for that stage. The first dynamic report of a stage
// always delivers. The boolean result reports whether texts were produced;
// when it is false the forecast was unchanged and nothing was persisted.
func (g *Generator) GenerateDynamicIfChanged(ctx context.Context, targetDate time.Time) (string, string, bool, error) {
	rec, shortText, debugText, err := g.build(ctx, "", types.ReportDynamic, targetDate)
	if err != nil {
		return "", "", false, err
	}

	g.mu.Lock()
	prev, seen := g.lastDynamic[rec.StageToday]
	g.mu.Unlock()

	if seen {
		changed, fields := g.comparator.Diverged(prev, rec)
		if !changed {
			g.logger.Info("dynamic report unchanged, skipping",
				"stage", rec.StageToday, "date", rec.TargetDate.Format("2006-01-02"))
			return "", "", false, nil
		}
		g.logger.Info("dynamic report diverged",
			"stage", rec.StageToday, "fields", fields)
	}

	if g.store != nil {
		if err := g.store.Save(ctx, rec, shortText, debugText); err != nil {
			return shortText, debugText, true, err
		}
	}

	g.mu.Lock()
	g.lastDynamic[rec.StageToday] = rec
	g.mu.Unlock()
	return shortText, debugText, true, nil
}

func (g *Generator) build(ctx context.Context, stageName string, rtype types.ReportType, targetDate time.Time) (types.ReportRecord, string, string, error) {
	var none types.ReportRecord
	if !rtype.Valid() {
		return none, "", "", types.NewAppError(types.ErrCodeValidationInvalidReportType,
			fmt.Sprintf("unknown report type %q", rtype), nil)
	}
	if targetDate.IsZero() {
		return none, "", "", types.NewAppError(types.ErrCodeValidationInvalidDate,
			"target date is required", nil)
	}
	targetDate = targetDate.In(g.cfg.Location)

	today, err := g.resolveStage(stageName, targetDate)
	if err != nil {
		return none, "", "", err
	}

	in := ComposeInputs{
		Type:       rtype,
		TargetDate: targetDate,
		StageToday: today.Name,
	}

	// The main day is the hiking day the report describes: today for morning
	// and dynamic reports, tomorrow for evening reports.
	mainStage := today
	mainDate := targetDate
	outlookStage := today
	var outlookDate time.Time

	switch rtype {
	case types.ReportMorning:
		outlookDate = targetDate.AddDate(0, 0, 1)
		if next, _ := g.planner.NextStage(targetDate); next != nil {
			outlookStage = next
		}
	case types.ReportEvening:
		mainDate = targetDate.AddDate(0, 0, 1)
		outlookDate = targetDate.AddDate(0, 0, 2)
		if next, _ := g.planner.NextStage(targetDate); next != nil {
			mainStage = next
			outlookStage = next
			in.StageTomorrow = next.Name
		}
		if after, _ := g.planner.StageAfterNext(targetDate); after != nil {
			outlookStage = after
			in.StageAfterNext = after.Name
		}
	}

	mainSeries := g.sampler.Sample(ctx, mainStage.Name, mainStage.GeoPoints(), dayFetchWindow(mainDate, g.cfg.Location))
	mainResult := g.agg.Aggregate(mainSeries, g.cfg.DayWindow)
	in.Today = mainResult.Stage

	if rtype != types.ReportDynamic {
		in.Night = g.nightExtrema(ctx, rtype, mainStage, targetDate)
		outlookSeries := g.sampler.Sample(ctx, outlookStage.Name, outlookStage.GeoPoints(), dayFetchWindow(outlookDate, g.cfg.Location))
		in.Outlook = g.agg.Aggregate(outlookSeries, g.cfg.DayWindow).Stage.Fact(types.MetricThunderProbability)
	}

	rec := Compose(in)
	shortText := g.formatter.Format(rec)
	debugText := ExportDebug(mainSeries, mainResult, rec)

	g.logger.Info("report generated",
		"type", string(rtype), "stage", mainStage.Name,
		"date", mainDate.Format("2006-01-02"), "chars", len(shortText))

	return rec, shortText, debugText, nil
}

// resolveStage picks the stage by name when given, otherwise by date. A date
// past the end of the route has no stage and cannot be reported on.
func (g *Generator) resolveStage(stageName string, date time.Time) (*route.Stage, error) {
	if stageName != "" {
		return g.planner.StageByName(stageName)
	}
	st, err := g.planner.StageFor(date)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, types.NewAppError(types.ErrCodeRouteStageNotFound,
			fmt.Sprintf("route has no stage on %s", date.Format("2006-01-02")), nil)
	}
	return st, nil
}

// nightExtrema samples the night around the report and reduces it to
// temperature extrema. Morning reports look at the night just past, evening
// reports at the night ahead.
func (g *Generator) nightExtrema(ctx context.Context, rtype types.ReportType, stage *route.Stage, targetDate time.Time) types.TemperatureExtrema {
	nightStart := targetDate
	if rtype == types.ReportMorning {
		nightStart = targetDate.AddDate(0, 0, -1)
	}
	window := types.FetchWindow{
		Start: time.Date(nightStart.Year(), nightStart.Month(), nightStart.Day(), g.cfg.NightWindow.StartHour, 0, 0, 0, g.cfg.Location),
		End:   time.Date(nightStart.Year(), nightStart.Month(), nightStart.Day(), g.cfg.NightWindow.EndHour, 0, 0, 0, g.cfg.Location).AddDate(0, 0, 1),
	}
	series := g.sampler.Sample(ctx, stage.Name, stage.GeoPoints(), window)
	return g.agg.Aggregate(series, g.cfg.NightWindow).Stage.Temperature
}

// dayFetchWindow is the closed fetch window covering one calendar day.
func dayFetchWindow(d time.Time, loc *time.Location) types.FetchWindow {
	return types.FetchWindow{
		Start: time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc),
		End:   time.Date(d.Year(), d.Month(), d.Day(), 23, 0, 0, 0, loc),
	}
}
