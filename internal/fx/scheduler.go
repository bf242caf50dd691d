package fx

import (
	"context"

	"Wanderfund/config"
	"Wanderfund/internal/domain/recurring"
	"Wanderfund/internal/domain/shared"
	"Wanderfund/internal/logger"

	"go.uber.org/fx"
)

// SchedulerModule runs the recurring pass in-process when enabled.
var SchedulerModule = fx.Module("scheduler",
	fx.Provide(
		newRunner,
	),
	fx.Invoke(
		startRunner,
	),
)

func newRunner(cfg *config.Config, svc *recurring.Service, clock shared.Clock) *recurring.Runner {
	return recurring.NewRunner(svc, cfg.Scheduler.Interval, clock)
}

func startRunner(lc fx.Lifecycle, cfg *config.Config, runner *recurring.Runner) {
	if !cfg.Scheduler.Enabled {
		logger.Info().Str("component", "scheduler").Msg("in-process scheduler disabled")
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			runner.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return runner.Stop(ctx)
		},
	})
}
