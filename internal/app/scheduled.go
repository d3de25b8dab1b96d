package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/hisworks-api/internal/domain"
)

type runner interface {
	Run(ctx context.Context, now time.Time) (*domain.RunResult, error)
}

type alerter interface {
	RunFailed(ctx context.Context, res *domain.RunResult, runErr error) error
}

// ScheduledRun handles the EventBridge schedule that fires the reminder run twice a day.
type ScheduledRun struct {
	runner  runner
	alerter alerter
	log     *slog.Logger
	now     func() time.Time
}

// NewScheduledRun accepts a nil alerter; failures are then only logged.
func NewScheduledRun(r runner, a alerter, log *slog.Logger) *ScheduledRun {
	if log == nil {
		log = slog.Default()
	}
	return &ScheduledRun{runner: r, alerter: a, log: log, now: time.Now}
}

// Handle runs the lifecycle at the event's scheduled time so a late start still lands in the
// intended morning or evening window. A failed run is alerted and reported in the result; it is
// never returned as an error so the runtime does not retry it.
func (s *ScheduledRun) Handle(ctx context.Context, evt events.CloudWatchEvent) (*domain.RunResult, error) {
	now := evt.Time
	if now.IsZero() {
		now = s.now()
	}
	res, err := s.runner.Run(ctx, now.UTC())
	if err == nil {
		return res, nil
	}
	s.log.Error("reminder run failed", "event_id", evt.ID, "error", err)
	if s.alerter != nil {
		if aerr := s.alerter.RunFailed(ctx, res, err); aerr != nil {
			s.log.Error("publish run failure alert", "error", aerr)
		}
	}
	return res, nil
}
