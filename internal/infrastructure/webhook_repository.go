package infrastructure

import (
	"context"
	"time"

	"Wanderfund/internal/domain/payment"
	appErrors "Wanderfund/internal/errors"

	"gorm.io/gorm"
)

type WebhookDeliveryRepository struct {
	DB *gorm.DB
}

var _ payment.WebhookLog = (*WebhookDeliveryRepository)(nil)

type webhookDeliveryDB struct {
	Id              string    `gorm:"type:varchar(26);primaryKey"`
	Provider        string    `gorm:"type:varchar(30);not null;index"`
	EventType       string    `gorm:"type:varchar(80)"`
	TransactionId   string    `gorm:"type:varchar(26);index"`
	Reference       string    `gorm:"type:varchar(120)"`
	Status          string    `gorm:"type:varchar(20)"`
	Payload         string    `gorm:"type:text;not null"`
	Outcome         string    `gorm:"type:varchar(20);not null;index"`
	ProcessingError string    `gorm:"type:text"`
	ReceivedAt      time.Time `gorm:"not null;index"`
	ProcessedAt     *time.Time
}

func (webhookDeliveryDB) TableName() string {
	return "webhook_deliveries"
}

func (r *WebhookDeliveryRepository) Record(ctx context.Context, d *payment.WebhookDelivery) error {
	row := &webhookDeliveryDB{
		Id:              d.Id.String(),
		Provider:        string(d.Provider),
		EventType:       d.EventType,
		TransactionId:   d.TransactionId,
		Reference:       d.Reference,
		Status:          d.Status,
		Payload:         d.Payload,
		Outcome:         d.Outcome,
		ProcessingError: d.ProcessingError,
		ReceivedAt:      d.ReceivedAt,
		ProcessedAt:     d.ProcessedAt,
	}
	if err := r.DB.WithContext(ctx).Create(row).Error; err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}
