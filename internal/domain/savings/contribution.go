package savings

import (
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

type ContributionStatus string

const (
	ContributionPending   ContributionStatus = "pending"
	ContributionCompleted ContributionStatus = "completed"
	ContributionFailed    ContributionStatus = "failed"
)

type Contribution struct {
	Id            ulid.ULID          `json:"id"`
	SavingId      ulid.ULID          `json:"savingId"`
	Amount        decimal.Decimal    `json:"amount"`
	Method        string             `json:"method"`
	Status        ContributionStatus `json:"status"`
	Date          time.Time          `json:"date"`
	TransactionId *ulid.ULID         `json:"transactionId,omitempty"`
	EventKey      *string            `json:"-"`
	CreatedAt     time.Time          `json:"createdAt"`
}

type TriggerKind int

const (
	TriggerManual TriggerKind = iota
	TriggerAutoDebit
	TriggerProvider
)

const (
	MethodManual    = "manual"
	MethodAutoDebit = "auto-debit"
)

// Trigger identifies what caused a contribution. Build one with ManualTrigger,
// AutoDebitTrigger or ProviderTrigger.
type Trigger struct {
	kind     TriggerKind
	provider string
}

func ManualTrigger() Trigger {
	return Trigger{kind: TriggerManual}
}

func AutoDebitTrigger() Trigger {
	return Trigger{kind: TriggerAutoDebit}
}

func ProviderTrigger(provider string) Trigger {
	return Trigger{kind: TriggerProvider, provider: provider}
}

func (t Trigger) Kind() TriggerKind {
	return t.kind
}

// Method is the value stored on the contribution row.
func (t Trigger) Method() string {
	switch t.kind {
	case TriggerAutoDebit:
		return MethodAutoDebit
	case TriggerProvider:
		return t.provider
	default:
		return MethodManual
	}
}

func (t Trigger) String() string {
	return t.Method()
}

// Event keys make a triggering event idempotent per goal.

func TransactionEventKey(transactionID ulid.ULID) string {
	return "txn:" + transactionID.String()
}

func AutoDebitEventKey(frequency Frequency, periodKey string) string {
	return fmt.Sprintf("auto:%s:%s", frequency, periodKey)
}

func ManualEventKey(idempotencyKey string) string {
	return "manual:" + idempotencyKey
}
