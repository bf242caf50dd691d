package fx

import (
	"context"
	"time"

	"Wanderfund/config"
	"Wanderfund/internal/domain/notification"
	"Wanderfund/internal/domain/payment"
	"Wanderfund/internal/domain/recurring"
	"Wanderfund/internal/domain/savings"
	"Wanderfund/internal/domain/shared"
	"Wanderfund/internal/infrastructure"
	"Wanderfund/internal/logger"

	"go.uber.org/fx"
)

// DomainModule provides the ledger, reconciliation and scheduling services.
var DomainModule = fx.Module("domain",
	fx.Provide(
		newClock,
		newDispatcher,
		newSavingsService,
		newWebhookVerifier,
		newPaymentService,
		newRecurringService,
	),
	fx.Invoke(
		startDispatcher,
	),
)

func newClock() shared.Clock {
	return func() time.Time { return time.Now().UTC() }
}

func newDispatcher(cfg *config.Config, repo *infrastructure.NotificationRepository) *notification.Dispatcher {
	return notification.NewDispatcher(repo, cfg.Notifications.Workers, cfg.Notifications.Buffer)
}

func newSavingsService(
	cfg *config.Config,
	repo *infrastructure.SavingsRepository,
	tx shared.Transactor,
	dispatcher *notification.Dispatcher,
	clock shared.Clock,
) *savings.Service {
	return &savings.Service{
		Repository: repo,
		Tx:         tx,
		Notifier:   dispatcher,
		Clock:      clock,
		Timeout:    cfg.Ledger.Timeout,
	}
}

// newWebhookVerifier maps configured secrets onto providers. The generic
// provider shares the internal API token. Production rejects deliveries for
// providers without a secret.
func newWebhookVerifier(cfg *config.Config, clock shared.Clock) *payment.Verifier {
	verifier := &payment.Verifier{
		Secrets: payment.WebhookSecrets{
			Generic:         cfg.Internal.Token,
			Mpesa:           cfg.Webhooks.MpesaSecret,
			Stripe:          cfg.Webhooks.StripeSecret,
			Flutterwave:     cfg.Webhooks.FlutterwaveHash,
			Bank:            cfg.Webhooks.BankAPIKey,
			StripeTolerance: cfg.Webhooks.StripeTolerance,
		},
		RequireSecrets: cfg.IsProduction(),
		Clock:          clock,
	}
	for _, provider := range verifier.Missing() {
		event := logger.Warn()
		if verifier.RequireSecrets {
			event = logger.Error()
		}
		event.
			Str("provider", string(provider)).
			Bool("required", verifier.RequireSecrets).
			Msg("webhook secret not configured")
	}
	return verifier
}

func newPaymentService(
	cfg *config.Config,
	repo *infrastructure.PaymentRepository,
	webhooks *infrastructure.WebhookDeliveryRepository,
	bookings *infrastructure.BookingRepository,
	goals *infrastructure.SavingsRepository,
	ledger *savings.Service,
	tx shared.Transactor,
	verifier *payment.Verifier,
	clock shared.Clock,
) *payment.Service {
	return &payment.Service{
		Repository: repo,
		Webhooks:   webhooks,
		Bookings:   bookings,
		Goals:      goals,
		Ledger:     ledger,
		Tx:         tx,
		Verifier:   verifier,
		Clock:      clock,
		Timeout:    cfg.Ledger.Timeout,
	}
}

func newRecurringService(
	cfg *config.Config,
	goals *infrastructure.SavingsRepository,
	engine *savings.Service,
) *recurring.Service {
	return &recurring.Service{
		Goals:    goals,
		Engine:   engine,
		PageSize: cfg.Scheduler.PageSize,
	}
}

func startDispatcher(lc fx.Lifecycle, dispatcher *notification.Dispatcher) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			dispatcher.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Str("component", "notification").Msg("draining notification queue")
			return dispatcher.Stop(ctx)
		},
	})
}
