// Package source decides which forecast provider a sample series comes from.
// The resolver tries the primary provider first and falls back to the
// secondary when the primary errors or returns nothing usable; every series
// it hands out is tagged with its provenance.
package source

import (
	"context"
	"log/slog"

	"routecast/internal/types"
)

// ForecastClient is the contract a weather provider client fulfills. The
// returned series must already be normalized to the route's time zone and
// restricted to the window.
type ForecastClient interface {
	Name() string
	Fetch(ctx context.Context, pt types.GeoPoint, window types.FetchWindow, gran types.Granularity) (types.TimeSeries, error)
}

// Resolver performs primary-then-secondary provider resolution.
type Resolver struct {
	primary   ForecastClient
	secondary ForecastClient
	logger    *slog.Logger
}

// NewResolver creates a Resolver. secondary may be nil, in which case a
// primary failure resolves straight to unavailable.
func NewResolver(primary, secondary ForecastClient, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{primary: primary, secondary: secondary, logger: logger}
}

// Resolve fetches a series for the point and window at the given
// granularity. The primary result is accepted when it contains at least one
// sample inside the window; otherwise the secondary is consulted and its
// result accepted as-is, empty included. An empty series is valid data, not
// an error. Only when both providers fail outright does Resolve return an
// empty series tagged unavailable. It never returns an error; provider
// failures are logged and absorbed here.
func (r *Resolver) Resolve(ctx context.Context, pt types.GeoPoint, window types.FetchWindow, gran types.Granularity) types.TimeSeries {
	series, err := r.primary.Fetch(ctx, pt, window, gran)
	if err == nil && r.usable(series, window) {
		series.Provenance = types.ProvenancePrimary
		return series
	}
	if err != nil {
		r.logger.Warn("primary provider failed, falling back",
			"provider", r.primary.Name(), "granularity", string(gran),
			"lat", pt.Lat, "lon", pt.Lon, "error", err)
	} else {
		r.logger.Info("primary provider returned no usable samples, falling back",
			"provider", r.primary.Name(), "granularity", string(gran),
			"lat", pt.Lat, "lon", pt.Lon)
	}

	if r.secondary == nil {
		return types.TimeSeries{Provenance: types.ProvenanceUnavailable}
	}

	series, err = r.secondary.Fetch(ctx, pt, window, gran)
	if err != nil {
		r.logger.Error("secondary provider failed, no data for point",
			"provider", r.secondary.Name(), "granularity", string(gran),
			"lat", pt.Lat, "lon", pt.Lon, "error", err)
		return types.TimeSeries{Provenance: types.ProvenanceUnavailable}
	}

	// An empty secondary series is still a valid "no data" answer.
	series.Provenance = types.ProvenanceSecondary
	return series
}

// usable reports whether the series has at least one sample inside the
// window.
func (r *Resolver) usable(series types.TimeSeries, window types.FetchWindow) bool {
	for _, p := range series.Points {
		if window.Contains(p.Time) {
			return true
		}
	}
	return false
}
