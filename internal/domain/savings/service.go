package savings

import (
	"context"
	"strings"
	"time"

	"Wanderfund/internal/domain/achievement"
	"Wanderfund/internal/domain/shared"
	appErrors "Wanderfund/internal/errors"
	"Wanderfund/internal/logger"
	"Wanderfund/internal/metrics"
	"Wanderfund/internal/pkg"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// Notifier receives achievements after the ledger commit. Implementations must
// not block.
type Notifier interface {
	Notify(ctx context.Context, userID, goalID ulid.ULID, items []achievement.Achievement)
}

type Service struct {
	Repository Repository
	Tx         shared.Transactor
	Notifier   Notifier
	Clock      shared.Clock
	// Timeout bounds one contribution transaction. Zero disables it.
	Timeout time.Duration
}

type ContributionRequest struct {
	GoalID ulid.ULID
	// OwnerID scopes the goal lookup to a user. Nil for system triggers.
	OwnerID       *ulid.ULID
	Amount        decimal.Decimal
	Trigger       Trigger
	TransactionID *ulid.ULID
	EventKey      string
	// At dates the contribution. Zero means the service clock.
	At time.Time
	// Guard runs under the goal row lock before anything is written.
	Guard func(goal *Goal) error
}

type ContributionResult struct {
	Goal           *Goal                     `json:"goal"`
	Contribution   *Contribution             `json:"contribution"`
	Achievements   []achievement.Achievement `json:"achievements"`
	ProgressBefore decimal.Decimal           `json:"progressBefore"`
	Replayed       bool                      `json:"replayed"`
}

func (s *Service) Contribute(ctx context.Context, req ContributionRequest) (*ContributionResult, error) {
	if err := validateAmount(req.Amount); err != nil {
		metrics.ContributionsRejected.WithLabelValues(appErrors.ErrInvalidAmount.Code).Inc()
		return nil, err
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	timer := metrics.NewTimer()
	var result *ContributionResult
	err := s.Tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		result, err = s.ContributeInTx(txCtx, req)
		return err
	})
	timer.ObserveDuration(metrics.ContributionDuration)
	if err != nil {
		metrics.ContributionsRejected.WithLabelValues(appErrors.FromError(err).Code).Inc()
		return nil, err
	}

	s.Publish(ctx, result)
	return result, nil
}

// ContributeInTx applies one contribution inside the transaction carried by
// ctx. The caller commits and then calls Publish.
func (s *Service) ContributeInTx(ctx context.Context, req ContributionRequest) (*ContributionResult, error) {
	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}

	goal, err := s.Repository.GetByIDForUpdate(ctx, req.GoalID)
	if err != nil {
		return nil, err
	}
	if req.OwnerID != nil && goal.UserId != *req.OwnerID {
		return nil, appErrors.ErrGoalNotFound
	}

	if req.EventKey != "" {
		existing, err := s.Repository.GetContributionByEventKey(ctx, goal.Id, req.EventKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return &ContributionResult{
				Goal:           goal,
				Contribution:   existing,
				Achievements:   []achievement.Achievement{},
				ProgressBefore: goal.Progress,
				Replayed:       true,
			}, nil
		}
	}

	if goal.IsCompleted {
		return nil, appErrors.ErrGoalAlreadyCompleted.WithDetails(map[string]interface{}{
			"goalId": goal.Id.String(),
		})
	}

	if req.Guard != nil {
		if err := req.Guard(goal); err != nil {
			return nil, err
		}
	}

	if !goal.CurrentAmount.Add(req.Amount).LessThan(pkg.MoneyLimit) {
		return nil, appErrors.ErrInvalidAmount.WithDetails(map[string]interface{}{
			"goalId": goal.Id.String(),
		})
	}

	now := req.At.UTC()
	if req.At.IsZero() {
		now = s.Clock.Now()
	}
	contribution := &Contribution{
		Id:            pkg.GenerateULIDObject(),
		SavingId:      goal.Id,
		Amount:        req.Amount,
		Method:        req.Trigger.Method(),
		Status:        ContributionCompleted,
		Date:          now,
		TransactionId: req.TransactionID,
		CreatedAt:     now,
	}
	if req.EventKey != "" {
		key := req.EventKey
		contribution.EventKey = &key
	}

	if err := s.Repository.CreateContribution(ctx, contribution); err != nil {
		return nil, err
	}

	before := goal.credit(req.Amount, now)
	if err := s.Repository.UpdateLedgerFields(ctx, goal); err != nil {
		return nil, err
	}

	count, err := s.Repository.CountCompletedContributions(ctx, goal.Id)
	if err != nil {
		return nil, err
	}

	earned := achievement.Evaluate(before, goal.Progress, count)
	return &ContributionResult{
		Goal:           goal,
		Contribution:   contribution,
		Achievements:   achievement.Personalize(earned, goal.Title, goal.TargetAmount, count),
		ProgressBefore: before,
	}, nil
}

// Publish records metrics and hands achievements to the notifier. It must only
// be called after the contribution transaction committed.
func (s *Service) Publish(ctx context.Context, result *ContributionResult) {
	if result == nil || result.Replayed {
		return
	}

	metrics.ContributionsApplied.WithLabelValues(result.Contribution.Method).Inc()
	if result.Goal.IsCompleted && result.ProgressBefore.LessThan(decimal.NewFromInt(100)) {
		metrics.GoalsCompleted.Inc()
	}

	logger.Info().
		Str("goal_id", result.Goal.Id.String()).
		Str("contribution_id", result.Contribution.Id.String()).
		Str("method", result.Contribution.Method).
		Str("amount", result.Contribution.Amount.StringFixed(2)).
		Str("progress", result.Goal.Progress.String()).
		Bool("completed", result.Goal.IsCompleted).
		Msg("contribution applied")

	if len(result.Achievements) == 0 {
		return
	}
	for _, a := range result.Achievements {
		metrics.AchievementsAwarded.WithLabelValues(string(a.Code)).Inc()
	}
	if s.Notifier != nil {
		s.Notifier.Notify(context.WithoutCancel(ctx), result.Goal.UserId, result.Goal.Id, result.Achievements)
	}
}

func (s *Service) CreateGoal(ctx context.Context, req *CreateGoalRequest) (*Goal, error) {
	if err := ValidateCreateGoal(req, s.Clock.Now()); err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	startDate := now
	if req.StartDate != nil {
		startDate = req.StartDate.UTC()
	}

	goal := &Goal{
		Id:                 pkg.GenerateULIDObject(),
		UserId:             req.UserId,
		TripId:             req.TripId,
		Title:              strings.TrimSpace(req.Title),
		Description:        strings.TrimSpace(req.Description),
		TargetAmount:       req.TargetAmount,
		CurrentAmount:      decimal.Zero,
		Progress:           decimal.Zero,
		IsCompleted:        false,
		Frequency:          req.Frequency,
		AmountPerFrequency: req.AmountPerFrequency,
		StartDate:          startDate,
		TargetDate:         req.TargetDate,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.Repository.Create(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

// UpdateGoal edits an open goal's plan under its row lock. A target at or
// below the saved amount completes the goal.
func (s *Service) UpdateGoal(ctx context.Context, req *UpdateGoalRequest) (*Goal, error) {
	if req == nil {
		return nil, appErrors.ErrBadRequest
	}

	var goal *Goal
	err := s.Tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		goal, err = s.Repository.GetByIDForUpdate(txCtx, req.GoalId)
		if err != nil {
			return err
		}
		if goal.UserId != req.UserId {
			return appErrors.ErrGoalNotFound
		}
		if goal.IsCompleted {
			return appErrors.ErrGoalAlreadyCompleted.WithDetails(map[string]interface{}{
				"goalId": goal.Id.String(),
			})
		}

		req.apply(goal)
		if err := ValidateGoal(goal); err != nil {
			return err
		}

		now := s.Clock.Now()
		goal.Progress = pkg.Percentage(goal.CurrentAmount, goal.TargetAmount)
		if goal.CurrentAmount.GreaterThanOrEqual(goal.TargetAmount) {
			goal.IsCompleted = true
			completedAt := now
			goal.CompletedAt = &completedAt
		}
		goal.UpdatedAt = now
		return s.Repository.UpdateGoal(txCtx, goal)
	})
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("goal_id", goal.Id.String()).
		Str("target", goal.TargetAmount.StringFixed(2)).
		Str("progress", goal.Progress.String()).
		Bool("completed", goal.IsCompleted).
		Msg("savings goal updated")
	return goal, nil
}

func (s *Service) GetGoal(ctx context.Context, goalID, userID ulid.ULID) (*Goal, error) {
	return s.Repository.GetByIDAndUser(ctx, goalID, userID)
}

func (s *Service) ListGoals(ctx context.Context, userID ulid.ULID, filters *GoalFilters, pagination *pkg.PaginationParams) ([]*Goal, int64, error) {
	return s.Repository.GetByUserID(ctx, userID, filters, pagination)
}

func (s *Service) ListContributions(ctx context.Context, goalID, userID ulid.ULID, pagination *pkg.PaginationParams) ([]*Contribution, int64, error) {
	if _, err := s.Repository.GetByIDAndUser(ctx, goalID, userID); err != nil {
		return nil, 0, err
	}
	return s.Repository.GetContributionsByGoalID(ctx, goalID, pagination)
}

func (s *Service) GetProgress(ctx context.Context, goalID, userID ulid.ULID) (*GoalProgress, error) {
	goal, err := s.Repository.GetByIDAndUser(ctx, goalID, userID)
	if err != nil {
		return nil, err
	}

	count, err := s.Repository.CountCompletedContributions(ctx, goalID)
	if err != nil {
		return nil, err
	}

	return &GoalProgress{
		GoalId:           goal.Id,
		Title:            goal.Title,
		TargetAmount:     goal.TargetAmount,
		CurrentAmount:    goal.CurrentAmount,
		Remaining:        goal.Remaining(),
		Progress:         goal.Progress,
		IsCompleted:      goal.IsCompleted,
		Contributions:    count,
		LastContribution: goal.LastContribution,
	}, nil
}

func validateAmount(amount decimal.Decimal) error {
	if !pkg.IsMoney(amount) {
		return appErrors.ErrInvalidAmount
	}
	return nil
}
