package recurring

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"Wanderfund/internal/domain/shared"
	"Wanderfund/internal/logger"
)

// Runner calls RunDuePeriod on a fixed interval until stopped. A tick that
// fires while the previous run is still active is skipped.
type Runner struct {
	service  *Service
	interval time.Duration
	clock    shared.Clock
	running  atomic.Bool

	stop chan struct{}
	wg   sync.WaitGroup
}

func NewRunner(service *Service, interval time.Duration, clock shared.Clock) *Runner {
	return &Runner{
		service:  service,
		interval: interval,
		clock:    clock,
		stop:     make(chan struct{}),
	}
}

func (r *Runner) Start() {
	log := logger.WithComponent("scheduler")
	log.Info().Dur("interval", r.interval).Msg("recurring scheduler started")

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-r.stop:
				return
			case <-ticker.C:
				r.Tick(context.Background())
			}
		}
	}()
}

// Tick performs one pass unless another pass is in flight.
func (r *Runner) Tick(ctx context.Context) *RunReport {
	if !r.running.CompareAndSwap(false, true) {
		logger.Warn().Str("component", "scheduler").Msg("previous recurring pass still running, tick skipped")
		return nil
	}
	defer r.running.Store(false)

	report, err := r.service.RunDuePeriod(ctx, r.clock.Now())
	if err != nil {
		logger.Error().Err(err).Str("component", "scheduler").Msg("recurring pass aborted")
	}
	return report
}

func (r *Runner) Stop(ctx context.Context) error {
	close(r.stop)
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
