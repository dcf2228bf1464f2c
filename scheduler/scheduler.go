package scheduler

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler reloads the forecast on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	reload  func()
	logger  *zap.Logger
	enabled bool
}

// NewScheduler creates a Scheduler for a six-field (seconds first) cron expression.
// reload is called on every tick. An empty expression yields a scheduler that never fires.
func NewScheduler(expr string, reload func(), logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		reload: reload,
		logger: logger.Named("scheduler"),
	}
	if expr == "" {
		return s, nil
	}
	if _, err := s.cron.AddFunc(expr, s.refreshTask); err != nil {
		return nil, fmt.Errorf("register refresh task: %w", err)
	}
	s.enabled = true
	return s, nil
}

// Enabled reports whether a refresh task is registered
func (s *Scheduler) Enabled() bool {
	return s.enabled
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	if !s.enabled {
		return
	}
	s.cron.Start()
	s.logger.Info("scheduler started")
}

// Stop stops the scheduler and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	if !s.enabled {
		return
	}
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// RunNow runs the refresh task immediately.
func (s *Scheduler) RunNow() {
	s.refreshTask()
}

func (s *Scheduler) refreshTask() {
	s.logger.Info("refreshing forecast")
	s.reload()
}
