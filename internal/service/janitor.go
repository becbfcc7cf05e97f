package service

import (
	"context"
	"log/slog"
	"time"
)

// SweepTask removes expired rows or entries and reports how many went.
type SweepTask struct {
	Name string
	Run  func(ctx context.Context) (int64, error)
}

// Janitor runs its tasks on a fixed interval until ctx is cancelled.
type Janitor struct {
	tasks    []SweepTask
	logger   *slog.Logger
	interval time.Duration
}

func NewJanitor(logger *slog.Logger, interval time.Duration, tasks ...SweepTask) *Janitor {
	return &Janitor{tasks: tasks, logger: logger, interval: interval}
}

func (j *Janitor) Start(ctx context.Context) {
	j.logger.Info("janitor started", "interval", j.interval, "tasks", len(j.tasks))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("janitor stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	for _, task := range j.tasks {
		n, err := task.Run(ctx)
		if err != nil {
			j.logger.Error("sweep failed", "task", task.Name, "error", err)
			continue
		}
		if n > 0 {
			j.logger.Info("sweep removed entries", "task", task.Name, "removed", n)
		}
	}
}
