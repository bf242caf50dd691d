package recurring

import (
	"context"

	"Wanderfund/internal/domain/savings"
	"Wanderfund/internal/pkg"
)

// GoalSource lists goals still eligible for auto-debit.
type GoalSource interface {
	ListOpenByFrequency(ctx context.Context, frequencies []savings.Frequency, pagination *pkg.PaginationParams) ([]*savings.Goal, int64, error)
}

// ContributionEngine applies one contribution atomically.
type ContributionEngine interface {
	Contribute(ctx context.Context, req savings.ContributionRequest) (*savings.ContributionResult, error)
}
