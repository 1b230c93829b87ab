package worker

import (
	"context"
	"time"

	"agencyops/services"

	"github.com/sirupsen/logrus"
)

// OverdueWorker periodically flags open tasks whose due date has passed.
type OverdueWorker struct {
	Tasks    *services.TaskService
	Interval time.Duration
	Logger   *logrus.Entry
	now      func() time.Time
}

func NewOverdueWorker(tasks *services.TaskService, interval time.Duration, logger *logrus.Entry) *OverdueWorker {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &OverdueWorker{Tasks: tasks, Interval: interval, Logger: logger, now: time.Now}
}

func (ow *OverdueWorker) Start(ctx context.Context) {
	ow.Logger.WithField("interval", ow.Interval.String()).Info("Overdue worker started")
	ticker := time.NewTicker(ow.Interval)
	defer ticker.Stop()

	ow.Sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			ow.Logger.Info("Overdue worker shutting down...")
			return
		case <-ticker.C:
			ow.Sweep(ctx)
		}
	}
}

// Sweep runs one pass and returns how many tasks became overdue.
func (ow *OverdueWorker) Sweep(ctx context.Context) int64 {
	n, err := ow.Tasks.MarkOverdue(ctx, ow.now())
	if err != nil {
		ow.Logger.WithError(err).Error("Error marking overdue tasks")
		return 0
	}
	if n > 0 {
		ow.Logger.WithField("count", n).Info("Tasks marked overdue")
	}
	return n
}
