package payment

import (
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeSavingsContribution Type = "savings_contribution"
	TypeBookingPayment      Type = "booking_payment"
	TypeRefund              Type = "refund"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeSavingsContribution, TypeBookingPayment, TypeRefund:
		return true
	}
	return false
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// IsTerminal reports whether the status can no longer change.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

type Provider string

const (
	ProviderGeneric     Provider = "generic"
	ProviderMpesa       Provider = "mpesa"
	ProviderStripe      Provider = "stripe"
	ProviderFlutterwave Provider = "flutterwave"
	ProviderBank        Provider = "bank"
	ProviderCard        Provider = "card"
)

// CanInitiate reports whether payments may be started with this provider.
func (p Provider) CanInitiate() bool {
	switch p {
	case ProviderMpesa, ProviderStripe, ProviderFlutterwave, ProviderBank, ProviderCard:
		return true
	}
	return false
}

// AcceptsWebhooks reports whether a webhook endpoint exists for the provider.
func (p Provider) AcceptsWebhooks() bool {
	switch p {
	case ProviderGeneric, ProviderMpesa, ProviderStripe, ProviderFlutterwave, ProviderBank:
		return true
	}
	return false
}

type Transaction struct {
	Id           ulid.ULID       `json:"id"`
	UserId       ulid.ULID       `json:"userId"`
	Amount       decimal.Decimal `json:"amount"`
	Type         Type            `json:"type"`
	Category     string          `json:"category,omitempty"`
	Provider     Provider        `json:"provider"`
	Reference    string          `json:"reference,omitempty"`
	Status       Status          `json:"status"`
	SavingId     *ulid.ULID      `json:"savingId,omitempty"`
	BookingId    *ulid.ULID      `json:"bookingId,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	ReconciledAt *time.Time      `json:"reconciledAt,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// Outcome is a provider's verdict on a transaction.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
	OutcomePending Outcome = "pending"
)

func (o Outcome) status() Status {
	switch o {
	case OutcomeSuccess:
		return StatusCompleted
	case OutcomeFailed:
		return StatusFailed
	}
	return StatusPending
}

// WebhookDelivery is the audit record of one inbound provider callback.
type WebhookDelivery struct {
	Id              ulid.ULID  `json:"id"`
	Provider        Provider   `json:"provider"`
	EventType       string     `json:"eventType,omitempty"`
	TransactionId   string     `json:"transactionId,omitempty"`
	Reference       string     `json:"reference,omitempty"`
	Status          string     `json:"status,omitempty"`
	Payload         string     `json:"payload"`
	Outcome         string     `json:"outcome"`
	ProcessingError string     `json:"processingError,omitempty"`
	ReceivedAt      time.Time  `json:"receivedAt"`
	ProcessedAt     *time.Time `json:"processedAt,omitempty"`
}
