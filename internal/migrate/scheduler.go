package migrate

import (
	"context"
	"log/slog"
)

// HostState is the host environment's activity signal driving idle
// scheduling.
type HostState int

// Host activity states.
const (
	HostIdle HostState = iota
	HostActive
	HostLocked
)

// Scheduler starts the migration when the host reports an idle period and
// stops it again when the host becomes active or locked. Explicit Start
// calls on the Manager are independent of the scheduler.
type Scheduler struct {
	mgr         *Manager
	states      <-chan HostState
	concurrency int
	logger      *slog.Logger
}

// NewScheduler creates a Scheduler consuming host states from states.
func NewScheduler(mgr *Manager, states <-chan HostState, concurrency int, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		mgr:         mgr,
		states:      states,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Run consumes host states until ctx is cancelled or the states channel
// closes. Outcomes of the background runs are logged, not returned: a
// stalled or interrupted run just waits for the next idle period.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			s.mgr.Stop()
			return ctx.Err()
		case state, ok := <-s.states:
			if !ok {
				s.mgr.Stop()
				return nil
			}
			s.handle(ctx, state)
		}
	}
}

func (s *Scheduler) handle(ctx context.Context, state HostState) {
	switch state {
	case HostIdle:
		if s.mgr.IsRunning() {
			return
		}
		go func() {
			outcome, err := s.mgr.Start(ctx, s.concurrency)
			if err != nil {
				s.logger.Error("idle migration run failed", slog.Any("error", err))
				return
			}
			s.logger.Info("idle migration run ended", slog.String("outcome", string(outcome)))
		}()
	case HostActive, HostLocked:
		s.mgr.Stop()
	}
}
