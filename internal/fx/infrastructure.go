package fx

import (
	"Wanderfund/config"
	"Wanderfund/internal/domain/shared"
	"Wanderfund/internal/infrastructure"

	"go.uber.org/fx"
	"gorm.io/gorm"
)

var InfrastructureModule = fx.Module("infrastructure",
	fx.Provide(
		newDatabase,
		newTxManager,
		newSavingsRepository,
		newPaymentRepository,
		newWebhookDeliveryRepository,
		newBookingRepository,
		newNotificationRepository,
	),
)

func newDatabase(cfg *config.Config) (*gorm.DB, error) {
	return infrastructure.NewDb(cfg)
}

func newTxManager(db *gorm.DB) shared.Transactor {
	return &infrastructure.TxManager{DB: db}
}

func newSavingsRepository(db *gorm.DB) *infrastructure.SavingsRepository {
	return &infrastructure.SavingsRepository{DB: db}
}

func newPaymentRepository(db *gorm.DB) *infrastructure.PaymentRepository {
	return &infrastructure.PaymentRepository{DB: db}
}

func newWebhookDeliveryRepository(db *gorm.DB) *infrastructure.WebhookDeliveryRepository {
	return &infrastructure.WebhookDeliveryRepository{DB: db}
}

func newBookingRepository(db *gorm.DB) *infrastructure.BookingRepository {
	return &infrastructure.BookingRepository{DB: db}
}

func newNotificationRepository(db *gorm.DB) *infrastructure.NotificationRepository {
	return &infrastructure.NotificationRepository{DB: db}
}
