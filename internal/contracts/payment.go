package contracts

import (
	"Wanderfund/internal/domain/payment"

	"github.com/shopspring/decimal"
)

type PaymentCreateRequest struct {
	Amount    *decimal.Decimal `json:"amount" binding:"required"`
	Type      string           `json:"type" binding:"required,oneof=savings_contribution booking_payment refund"`
	Provider  string           `json:"provider" binding:"required,oneof=mpesa card bank stripe flutterwave"`
	Category  string           `json:"category" binding:"omitempty,max=60"`
	Notes     string           `json:"notes" binding:"omitempty,max=500"`
	SavingId  *string          `json:"savingId" binding:"omitempty"`
	BookingId *string          `json:"bookingId" binding:"omitempty"`
}

type PaymentResponse struct {
	Transaction *payment.Transaction `json:"transaction"`
}

type PaymentCreateResponse struct {
	Message     string               `json:"message"`
	Transaction *payment.Transaction `json:"transaction"`
}

type PaymentStatsResponse struct {
	Stats *payment.Stats `json:"stats"`
}

type WebhookAckResponse struct {
	Received            bool   `json:"received"`
	Outcome             string `json:"outcome"`
	TransactionId       string `json:"transactionId,omitempty"`
	Status              string `json:"status,omitempty"`
	ContributionSkipped bool   `json:"contributionSkipped,omitempty"`
}

// MpesaAckResponse is the body Safaricom expects from a callback URL.
type MpesaAckResponse struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}
