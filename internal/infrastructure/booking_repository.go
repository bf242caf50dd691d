package infrastructure

import (
	"context"
	"errors"
	"time"

	"Wanderfund/internal/domain/booking"
	appErrors "Wanderfund/internal/errors"
	"Wanderfund/internal/pkg"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

const bookingsTable = "bookings"

type BookingRepository struct {
	DB *gorm.DB
}

var _ booking.Repository = (*BookingRepository)(nil)

type bookingDB struct {
	Id        string    `gorm:"type:varchar(26);primaryKey"`
	UserId    string    `gorm:"type:varchar(26);index;not null"`
	TripId    string    `gorm:"type:varchar(26);index;not null"`
	Status    string    `gorm:"type:varchar(20);not null"`
	IsPaid    bool      `gorm:"not null;default:false"`
	PaidAt    *time.Time
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (bookingDB) TableName() string {
	return bookingsTable
}

func toDomainBooking(row *bookingDB) (*booking.Booking, error) {
	id, err := pkg.ParseULID(row.Id)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	uid, err := pkg.ParseULID(row.UserId)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	tid, err := pkg.ParseULID(row.TripId)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	return &booking.Booking{
		Id:        id,
		UserId:    uid,
		TripId:    tid,
		Status:    booking.Status(row.Status),
		IsPaid:    row.IsPaid,
		PaidAt:    utcPtr(row.PaidAt),
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}, nil
}

// Create is used by seeding and tests. Bookings are otherwise owned by the
// trip service.
func (r *BookingRepository) Create(ctx context.Context, b *booking.Booking) error {
	row := &bookingDB{
		Id:        b.Id.String(),
		UserId:    b.UserId.String(),
		TripId:    b.TripId.String(),
		Status:    string(b.Status),
		IsPaid:    b.IsPaid,
		PaidAt:    b.PaidAt,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
	if err := dbFrom(ctx, r.DB).Table(bookingsTable).Create(row).Error; err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

func (r *BookingRepository) GetByIDAndUser(ctx context.Context, id, userID ulid.ULID) (*booking.Booking, error) {
	var row bookingDB
	err := dbFrom(ctx, r.DB).Table(bookingsTable).
		Where("id = ? AND user_id = ?", id.String(), userID.String()).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrBookingNotFound.WithError(err)
		}
		return nil, appErrors.NewDatabaseError(err)
	}
	return toDomainBooking(&row)
}

func (r *BookingRepository) MarkPaid(ctx context.Context, id ulid.ULID, at time.Time) error {
	db := dbFrom(ctx, r.DB).Table(bookingsTable)
	result := db.Where("id = ? AND is_paid = ?", id.String(), false).Updates(map[string]interface{}{
		"is_paid":    true,
		"status":     string(booking.StatusConfirmed),
		"paid_at":    at,
		"updated_at": at,
	})
	if result.Error != nil {
		return appErrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := dbFrom(ctx, r.DB).Table(bookingsTable).Where("id = ?", id.String()).Count(&count).Error; err != nil {
		return appErrors.NewDatabaseError(err)
	}
	if count == 0 {
		return appErrors.ErrBookingNotFound
	}
	return nil
}
