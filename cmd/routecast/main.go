// Package main is the one-shot report CLI. It generates a single report for
// a date and prints the compact line, optionally followed by the debug
// transcript, then exits.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"routecast/internal/app"
	"routecast/internal/config"
	"routecast/internal/types"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		typeFlag  = flag.String("type", "morning", "report type: morning, evening, or dynamic")
		dateFlag  = flag.String("date", "", "target date YYYY-MM-DD (default today)")
		stageFlag = flag.String("stage", "", "stage name override (default: stage for the date)")
		debugFlag = flag.Bool("debug", false, "print the debug transcript after the report")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := app.NewLogger(cfg.LogLevel)
	a, err := app.Build(cfg, logger)
	if err != nil {
		return err
	}

	date := time.Now().In(a.Location)
	if *dateFlag != "" {
		date, err = time.ParseInLocation("2006-01-02", *dateFlag, a.Location)
		if err != nil {
			return fmt.Errorf("invalid -date %q: %w", *dateFlag, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	short, debug, err := a.Generator.Generate(ctx, *stageFlag, types.ReportType(*typeFlag), date)
	if err != nil {
		return err
	}

	fmt.Println(short)
	if *debugFlag {
		fmt.Println()
		fmt.Println(debug)
	}
	return nil
}
