package infrastructure

import (
	"context"
	"errors"
	"time"

	"Wanderfund/internal/domain/payment"
	appErrors "Wanderfund/internal/errors"
	"Wanderfund/internal/pkg"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const transactionsTable = "transactions"

type PaymentRepository struct {
	DB *gorm.DB
}

var _ payment.Repository = (*PaymentRepository)(nil)

type transactionDB struct {
	Id           string          `gorm:"type:varchar(26);primaryKey"`
	UserId       string          `gorm:"type:varchar(26);index;not null"`
	Amount       decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Type         string          `gorm:"type:varchar(30);not null"`
	Category     string          `gorm:"type:varchar(60)"`
	Provider     string          `gorm:"type:varchar(30);not null"`
	Reference    string          `gorm:"type:varchar(120);index"`
	Status       string          `gorm:"type:varchar(20);not null;index"`
	SavingId     *string         `gorm:"type:varchar(26);index"`
	BookingId    *string         `gorm:"type:varchar(26);index"`
	Notes        string          `gorm:"type:text"`
	ReconciledAt *time.Time
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (transactionDB) TableName() string {
	return transactionsTable
}

func toDomainTransaction(row *transactionDB) (*payment.Transaction, error) {
	id, err := pkg.ParseULID(row.Id)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	uid, err := pkg.ParseULID(row.UserId)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	savingID, err := pkg.ParseULIDPtr(row.SavingId)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	bookingID, err := pkg.ParseULIDPtr(row.BookingId)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	return &payment.Transaction{
		Id:           id,
		UserId:       uid,
		Amount:       row.Amount,
		Type:         payment.Type(row.Type),
		Category:     row.Category,
		Provider:     payment.Provider(row.Provider),
		Reference:    row.Reference,
		Status:       payment.Status(row.Status),
		SavingId:     savingID,
		BookingId:    bookingID,
		Notes:        row.Notes,
		ReconciledAt: utcPtr(row.ReconciledAt),
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
	}, nil
}

func toDBTransaction(t *payment.Transaction) *transactionDB {
	return &transactionDB{
		Id:           t.Id.String(),
		UserId:       t.UserId.String(),
		Amount:       t.Amount,
		Type:         string(t.Type),
		Category:     t.Category,
		Provider:     string(t.Provider),
		Reference:    t.Reference,
		Status:       string(t.Status),
		SavingId:     pkg.ULIDPtrToString(t.SavingId),
		BookingId:    pkg.ULIDPtrToString(t.BookingId),
		Notes:        t.Notes,
		ReconciledAt: t.ReconciledAt,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func (r *PaymentRepository) table(ctx context.Context) *gorm.DB {
	return dbFrom(ctx, r.DB).Table(transactionsTable)
}

func (r *PaymentRepository) Create(ctx context.Context, t *payment.Transaction) error {
	if err := r.table(ctx).Create(toDBTransaction(t)).Error; err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

func (r *PaymentRepository) first(query *gorm.DB) (*payment.Transaction, error) {
	var row transactionDB
	if err := query.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrTransactionNotFound.WithError(err)
		}
		return nil, appErrors.NewDatabaseError(err)
	}
	return toDomainTransaction(&row)
}

func (r *PaymentRepository) GetByID(ctx context.Context, id ulid.ULID) (*payment.Transaction, error) {
	return r.first(r.table(ctx).Where("id = ?", id.String()))
}

func (r *PaymentRepository) GetByIDAndUser(ctx context.Context, id, userID ulid.ULID) (*payment.Transaction, error) {
	return r.first(r.table(ctx).Where("id = ? AND user_id = ?", id.String(), userID.String()))
}

func (r *PaymentRepository) GetByUserID(ctx context.Context, userID ulid.ULID, pagination *pkg.PaginationParams) ([]*payment.Transaction, int64, error) {
	query := r.table(ctx).Where("user_id = ?", userID.String())
	out, total, err := pkg.Paginate(query, pagination, "created_at DESC", toDomainTransaction)
	if err != nil {
		return nil, 0, appErrors.NewDatabaseError(err)
	}
	return out, total, nil
}

func (r *PaymentRepository) ClaimPending(ctx context.Context, id ulid.ULID, status payment.Status, reference string, at time.Time) (bool, error) {
	fields := map[string]interface{}{
		"status":        string(status),
		"reconciled_at": at,
		"updated_at":    at,
	}
	if reference != "" {
		fields["reference"] = reference
	}

	result := r.table(ctx).
		Where("id = ? AND status = ?", id.String(), string(payment.StatusPending)).
		Updates(fields)
	if result.Error != nil {
		return false, appErrors.NewDatabaseError(result.Error)
	}
	return result.RowsAffected == 1, nil
}

type transactionTally struct {
	Status string
	Type   string
	Count  int64
	Total  decimal.NullDecimal
}

func (r *PaymentRepository) StatsByUser(ctx context.Context, userID ulid.ULID) (*payment.Stats, error) {
	var rows []transactionTally
	err := r.table(ctx).
		Select("status, type, COUNT(*) AS count, SUM(amount) AS total").
		Where("user_id = ?", userID.String()).
		Group("status, type").
		Scan(&rows).Error
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}

	stats := &payment.Stats{TotalAmount: decimal.Zero}
	for _, row := range rows {
		stats.Add(payment.Status(row.Status), payment.Type(row.Type), row.Count, row.Total.Decimal)
	}
	return stats, nil
}
