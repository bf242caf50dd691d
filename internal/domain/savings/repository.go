package savings

import (
	"context"
	"time"

	"Wanderfund/internal/pkg"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

type GoalFilters struct {
	IsCompleted *bool
	TripId      *ulid.ULID
}

type Repository interface {
	Create(ctx context.Context, goal *Goal) error
	GetByID(ctx context.Context, id ulid.ULID) (*Goal, error)
	GetByIDAndUser(ctx context.Context, id, userID ulid.ULID) (*Goal, error)
	// GetByIDForUpdate reads the goal and holds a row lock until the
	// surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id ulid.ULID) (*Goal, error)
	GetByUserID(ctx context.Context, userID ulid.ULID, filters *GoalFilters, pagination *pkg.PaginationParams) ([]*Goal, int64, error)
	GetAllByUserID(ctx context.Context, userID ulid.ULID) ([]*Goal, error)
	ListOpenByFrequency(ctx context.Context, frequencies []Frequency, pagination *pkg.PaginationParams) ([]*Goal, int64, error)
	UpdateLedgerFields(ctx context.Context, goal *Goal) error
	// UpdateGoal saves the editable plan fields and the derived progress.
	UpdateGoal(ctx context.Context, goal *Goal) error

	CreateContribution(ctx context.Context, contribution *Contribution) error
	GetContributionByEventKey(ctx context.Context, goalID ulid.ULID, eventKey string) (*Contribution, error)
	GetContributionsByGoalID(ctx context.Context, goalID ulid.ULID, pagination *pkg.PaginationParams) ([]*Contribution, int64, error)
	GetRecentContributionsByUser(ctx context.Context, userID ulid.ULID, limit int) ([]*Contribution, error)
	GetContributionsSince(ctx context.Context, userID ulid.ULID, since time.Time) ([]*Contribution, error)
	CountCompletedContributions(ctx context.Context, goalID ulid.ULID) (int64, error)
	CountContributionsByUser(ctx context.Context, userID ulid.ULID) (int64, error)
	SumCompletedContributions(ctx context.Context, goalID ulid.ULID) (decimal.Decimal, error)
}
