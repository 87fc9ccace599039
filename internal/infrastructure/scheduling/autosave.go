// Package scheduling runs periodic background jobs.
package scheduling

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/observability/logging"
)

// Saver persists whatever has changed since the last call and reports how
// many documents were written.
type Saver interface {
	SaveDirty(ctx context.Context) (int, error)
}

// AutosaveScheduler flushes dirty editor sessions on a cron schedule. A run
// that overlaps the previous one is skipped.
type AutosaveScheduler struct {
	cron     *cron.Cron
	saver    Saver
	logger   *logging.ChanneledLogger
	schedule string
	timeout  time.Duration

	mu      sync.Mutex
	running bool
	runs    int
}

// NewAutosaveScheduler validates schedule (standard cron or @every
// descriptors) and registers the job. The scheduler is idle until Start.
func NewAutosaveScheduler(schedule string, saver Saver, logger *logging.ChanneledLogger) (*AutosaveScheduler, error) {
	s := &AutosaveScheduler{
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		saver:    saver,
		logger:   logger,
		schedule: schedule,
		timeout:  time.Minute,
	}
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("invalid autosave schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *AutosaveScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.cron.Start()
	s.logger.Storage().Info("Autosave scheduler started", "schedule", s.schedule)
}

// Stop halts scheduling, waits for an in-flight run and performs a final flush.
func (s *AutosaveScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	wasRunning := s.running
	s.running = false
	s.mu.Unlock()

	if wasRunning {
		select {
		case <-s.cron.Stop().Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	_, err := s.RunNow(ctx)
	return err
}

// RunNow flushes immediately.
func (s *AutosaveScheduler) RunNow(ctx context.Context) (int, error) {
	start := time.Now()
	saved, err := s.saver.SaveDirty(ctx)
	if err != nil {
		s.logger.Storage().Error("Autosave failed", "error", err.Error(), "saved", saved)
		return saved, err
	}

	s.mu.Lock()
	s.runs++
	s.mu.Unlock()
	if saved > 0 {
		s.logger.Storage().Info("Autosave completed", "saved", saved, "duration", time.Since(start))
	} else {
		s.logger.Storage().Debug("Autosave found nothing to save")
	}
	return saved, nil
}

// Runs reports completed flushes.
func (s *AutosaveScheduler) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

func (s *AutosaveScheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	_, _ = s.RunNow(ctx)
}
