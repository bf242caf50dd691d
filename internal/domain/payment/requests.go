package payment

import (
	appErrors "Wanderfund/internal/errors"
	"Wanderfund/internal/pkg"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

type InitiatePaymentRequest struct {
	UserId    ulid.ULID
	Amount    decimal.Decimal
	Type      Type
	Provider  Provider
	Category  string
	Notes     string
	SavingId  *ulid.ULID
	BookingId *ulid.ULID
}

func ValidateInitiatePayment(req *InitiatePaymentRequest) error {
	if req == nil {
		return appErrors.ErrBadRequest
	}
	if !pkg.IsMoney(req.Amount) {
		return appErrors.ErrInvalidAmount
	}
	if !req.Type.IsValid() {
		return appErrors.NewValidationError("type", "must be one of savings_contribution, booking_payment, refund")
	}
	if !req.Provider.CanInitiate() {
		return appErrors.NewValidationError("provider", "must be one of mpesa, card, bank, stripe, flutterwave")
	}
	switch req.Type {
	case TypeSavingsContribution:
		if req.SavingId == nil {
			return appErrors.NewValidationError("savingId", "is required for savings contributions")
		}
		if req.BookingId != nil {
			return appErrors.NewValidationError("bookingId", "must be empty for savings contributions")
		}
	case TypeBookingPayment:
		if req.BookingId == nil {
			return appErrors.NewValidationError("bookingId", "is required for booking payments")
		}
		if req.SavingId != nil {
			return appErrors.NewValidationError("savingId", "must be empty for booking payments")
		}
	case TypeRefund:
		if req.SavingId != nil || req.BookingId != nil {
			return appErrors.NewValidationError("type", "refunds cannot be linked to a goal or booking")
		}
	}
	return nil
}
