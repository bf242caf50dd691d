package fx

import (
	"context"
	"time"

	"Wanderfund/config"
	"Wanderfund/internal/domain/payment"
	"Wanderfund/internal/domain/recurring"
	"Wanderfund/internal/domain/savings"
	"Wanderfund/internal/domain/shared"
	"Wanderfund/internal/infrastructure"
	"Wanderfund/internal/middleware"
	"Wanderfund/internal/routes"

	"go.uber.org/fx"
)

// RateLimiters groups the limiters so fx can tell them apart.
type RateLimiters struct {
	API     *middleware.RateLimiter
	Webhook *middleware.RateLimiter
}

// RoutesModule provides the handler and rate limiters.
var RoutesModule = fx.Module("routes",
	fx.Provide(
		newHandler,
		newRateLimiters,
	),
)

func newHandler(
	savingsSvc *savings.Service,
	paymentSvc *payment.Service,
	recurringSvc *recurring.Service,
	notifications *infrastructure.NotificationRepository,
	clock shared.Clock,
) *routes.Handler {
	return &routes.Handler{
		SavingsService:   savingsSvc,
		PaymentService:   paymentSvc,
		SchedulerService: recurringSvc,
		Notifications:    notifications,
		Clock:            clock,
	}
}

func newRateLimiters(lc fx.Lifecycle, cfg *config.Config) *RateLimiters {
	limiters := &RateLimiters{
		API:     middleware.NewRateLimiter(100, time.Minute),
		Webhook: middleware.NewRateLimiter(cfg.Webhooks.RateLimit, cfg.Webhooks.RateLimitWindow),
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			limiters.API.Stop()
			limiters.Webhook.Stop()
			return nil
		},
	})
	return limiters
}
