// Package scheduler runs the daily morning and evening report jobs and the
// periodic dynamic update check.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"routecast/internal/types"

	"github.com/go-co-op/gocron"
)

// ReportRunner is the slice of the report generator the scheduler needs.
type ReportRunner interface {
	Generate(ctx context.Context, stageName string, rtype types.ReportType, targetDate time.Time) (string, string, error)
	GenerateDynamicIfChanged(ctx context.Context, targetDate time.Time) (string, string, bool, error)
}

// Scheduler fires the morning report at its configured local time, the
// evening report at its own, and the dynamic update check on a fixed
// interval in between.
type Scheduler struct {
	scheduler    *gocron.Scheduler
	runner       ReportRunner
	morningAt    string
	eveningAt    string
	dynamicEvery time.Duration
	jobTimeout   time.Duration
	loc          *time.Location
	logger       *slog.Logger
}

// New creates a Scheduler. morningAt and eveningAt are local wall-clock
// times in "HH:MM" form. dynamicEvery is the interval between dynamic
// update checks; zero disables them.
func New(runner ReportRunner, morningAt, eveningAt string, dynamicEvery time.Duration, loc *time.Location, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		scheduler:    gocron.NewScheduler(loc),
		runner:       runner,
		morningAt:    morningAt,
		eveningAt:    eveningAt,
		dynamicEvery: dynamicEvery,
		jobTimeout:   5 * time.Minute,
		loc:          loc,
		logger:       logger,
	}
}

// Start registers both daily jobs and starts the underlying scheduler
// asynchronously.
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(1).Day().At(s.morningAt).Do(func() {
		s.run(types.ReportMorning)
	}); err != nil {
		return err
	}
	if _, err := s.scheduler.Every(1).Day().At(s.eveningAt).Do(func() {
		s.run(types.ReportEvening)
	}); err != nil {
		return err
	}
	if s.dynamicEvery > 0 {
		if _, err := s.scheduler.Every(s.dynamicEvery).Do(s.runDynamic); err != nil {
			return err
		}
	}

	s.scheduler.StartAsync()
	s.logger.Info("report scheduler started",
		"morning_at", s.morningAt, "evening_at", s.eveningAt,
		"dynamic_every", s.dynamicEvery.String(), "timezone", s.loc.String())
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *Scheduler) run(rtype types.ReportType) {
	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
	defer cancel()

	date := time.Now().In(s.loc)
	short, _, err := s.runner.Generate(ctx, "", rtype, date)
	if err != nil {
		s.logger.Error("scheduled report failed",
			"type", string(rtype), "date", date.Format("2006-01-02"), "error", err)
		return
	}
	s.logger.Info("scheduled report completed",
		"type", string(rtype), "date", date.Format("2006-01-02"), "chars", len(short))
}

func (s *Scheduler) runDynamic() {
	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
	defer cancel()

	date := time.Now().In(s.loc)
	short, _, sent, err := s.runner.GenerateDynamicIfChanged(ctx, date)
	if err != nil {
		s.logger.Error("dynamic update check failed",
			"date", date.Format("2006-01-02"), "error", err)
		return
	}
	if !sent {
		s.logger.Debug("dynamic update check found no material change",
			"date", date.Format("2006-01-02"))
		return
	}
	s.logger.Info("dynamic report sent",
		"date", date.Format("2006-01-02"), "chars", len(short))
}
