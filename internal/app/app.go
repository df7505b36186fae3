// Package app wires the configured pipeline: providers, resolver, sampler,
// aggregation, and the report generator. Both binaries build from here.
package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"routecast/internal/config"
	"routecast/internal/provider"
	"routecast/internal/report"
	"routecast/internal/route"
	"routecast/internal/sampler"
	"routecast/internal/source"
	"routecast/internal/store"
	"routecast/internal/types"
)

// App bundles the wired components a binary needs.
type App struct {
	Config    *config.Config
	Planner   *route.Planner
	Generator *report.Generator
	Location  *time.Location
}

// Build loads the route and assembles the full report pipeline.
func Build(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	loc := cfg.Location()

	planner, err := route.LoadPlanner(cfg.Route.StagesFile, cfg.StartDate(), logger)
	if err != nil {
		return nil, fmt.Errorf("loading route: %w", err)
	}

	httpClient := &http.Client{Timeout: cfg.Provider.FetchTimeout}
	retry := provider.DefaultRetryPolicy()
	retry.MaxRetries = cfg.Provider.MaxRetries

	primary := provider.NewMeteoFranceClient(
		provider.NewBaseClient(httpClient, "meteofrance", retry, cfg.Provider.UserAgent, types.ErrCodeUpstreamPrimary),
		cfg.Provider.PrimaryBaseURL, provider.ConditionEstimator{}, loc, logger)
	secondary := provider.NewOpenMeteoClient(
		provider.NewBaseClient(httpClient, "openmeteo", retry, cfg.Provider.UserAgent, types.ErrCodeUpstreamSecondary),
		cfg.Provider.SecondaryBaseURL, loc, logger)

	resolver := source.NewResolver(primary, secondary, logger)
	smp := sampler.New(resolver, 8, logger)
	writer := store.New(cfg.Store.BaseDir, logger)

	gen, err := report.NewGenerator(planner, smp, writer, report.GeneratorConfig{
		Thresholds:  cfg.Threshold.Thresholds(),
		DayWindow:   cfg.Report.DayWindow(),
		NightWindow: cfg.Report.NightWindow(),
		CharBudget:  cfg.Report.CharBudget,
		Location:    loc,
		Deltas: report.DeltaThresholds{
			RainAmountMM:       cfg.Delta.RainAmountMM,
			RainProbabilityPct: cfg.Delta.RainProbabilityPct,
			WindSpeedKmh:       cfg.Delta.WindSpeedKmh,
			ThunderProbPct:     cfg.Delta.ThunderProbPct,
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("building report generator: %w", err)
	}

	return &App{Config: cfg, Planner: planner, Generator: gen, Location: loc}, nil
}

// NewLogger creates the process-wide structured logger at the given level.
func NewLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
