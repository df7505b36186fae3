// Package main is the entry point for the routecast server. It loads
// configuration, wires the report pipeline, starts the daily report
// scheduler, and serves the HTTP API until interrupted.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"routecast/internal/api"
	"routecast/internal/app"
	"routecast/internal/config"
	"routecast/internal/scheduler"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so main can cleanly exit on error.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := app.NewLogger(cfg.LogLevel)
	logger.Info("routecast server starting",
		"environment", cfg.Environment,
		"port", cfg.Server.Port,
		"timezone", cfg.Route.Timezone,
	)

	a, err := app.Build(cfg, logger)
	if err != nil {
		return err
	}

	sched := scheduler.New(a.Generator, cfg.Schedule.MorningAt, cfg.Schedule.EveningAt, cfg.Schedule.DynamicEvery, a.Location, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	handler := api.NewReportHandler(a.Generator, a.Location, logger)
	srv := api.NewServer(cfg.Server.Port, handler, logger)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-stop:
		logger.Info("shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}

	logger.Info("routecast server stopped")
	return nil
}
