package booking

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Booking is the slice of a trip booking that payment reconciliation touches.
type Booking struct {
	Id        ulid.ULID  `json:"id"`
	UserId    ulid.ULID  `json:"userId"`
	TripId    ulid.ULID  `json:"tripId"`
	Status    Status     `json:"status"`
	IsPaid    bool       `json:"isPaid"`
	PaidAt    *time.Time `json:"paidAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type Repository interface {
	GetByIDAndUser(ctx context.Context, id, userID ulid.ULID) (*Booking, error)
	// MarkPaid sets the booking paid and confirmed. Repeating it is a no-op.
	MarkPaid(ctx context.Context, id ulid.ULID, at time.Time) error
}
