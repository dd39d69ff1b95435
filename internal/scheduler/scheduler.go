// Package scheduler runs reconciliation on a cron schedule, for
// deployments that refresh the source workbook periodically rather
// than invoking a run by hand.
package scheduler

import (
	"context"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/netviva/fleetrec"
	"github.com/netviva/fleetrec/pkg/constants"
	"github.com/netviva/fleetrec/pkg/errors"
	"github.com/netviva/fleetrec/pkg/logging"
)

// Scheduler triggers reconciliation runs on a cron expression.
type Scheduler struct {
	cron  *cron.Cron
	fleet fleetrec.Fleetrec

	mu   sync.Mutex
	runs int
}

// New creates a scheduler over a configured Fleetrec instance.
func New(f fleetrec.Fleetrec) *Scheduler {
	return &Scheduler{
		cron:  cron.New(),
		fleet: f,
	}
}

// Start schedules runs with a standard five-field cron expression
// and starts the clock. Overlapping runs are prevented by the run
// mutex: a tick that lands mid-run reconciles right after.
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return errors.NewConfigError("schedule", "invalid cron expression", err)
	}
	s.cron.Start()
	logging.Info().Str("schedule", spec).Msg("reconciliation scheduler started")
	return nil
}

// Stop stops the clock and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.mu.Lock()
	defer s.mu.Unlock()
	logging.Info().Int("runs", s.runs).Msg("reconciliation scheduler stopped")
}

// Runs returns how many scheduled runs completed, failures included.
func (s *Scheduler) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

func (s *Scheduler) run() {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), constants.RunTimeout)
	defer cancel()

	if _, err := s.fleet.Reconcile(ctx); err != nil {
		logging.Error().Err(err).Msg("scheduled reconciliation failed")
	} else {
		logging.Info().Msg("scheduled reconciliation complete")
	}
	s.runs++
}
