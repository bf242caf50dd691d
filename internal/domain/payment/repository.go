package payment

import (
	"context"
	"time"

	"Wanderfund/internal/domain/savings"
	"Wanderfund/internal/pkg"

	"github.com/oklog/ulid/v2"
)

type Repository interface {
	Create(ctx context.Context, tx *Transaction) error
	GetByID(ctx context.Context, id ulid.ULID) (*Transaction, error)
	GetByIDAndUser(ctx context.Context, id, userID ulid.ULID) (*Transaction, error)
	GetByUserID(ctx context.Context, userID ulid.ULID, pagination *pkg.PaginationParams) ([]*Transaction, int64, error)
	// ClaimPending moves a pending transaction to status in one conditional
	// update. It reports false when the row was no longer pending.
	ClaimPending(ctx context.Context, id ulid.ULID, status Status, reference string, at time.Time) (bool, error)
	StatsByUser(ctx context.Context, userID ulid.ULID) (*Stats, error)
}

type WebhookLog interface {
	Record(ctx context.Context, delivery *WebhookDelivery) error
}

// Ledger is the contribution engine as seen from reconciliation.
type Ledger interface {
	ContributeInTx(ctx context.Context, req savings.ContributionRequest) (*savings.ContributionResult, error)
	Publish(ctx context.Context, result *savings.ContributionResult)
}

// GoalReader checks goal ownership when a payment is initiated.
type GoalReader interface {
	GetByIDAndUser(ctx context.Context, id, userID ulid.ULID) (*savings.Goal, error)
}
