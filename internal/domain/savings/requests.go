package savings

import (
	"strings"
	"time"

	appErrors "Wanderfund/internal/errors"
	"Wanderfund/internal/pkg"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

type CreateGoalRequest struct {
	UserId             ulid.ULID
	TripId             *ulid.ULID
	Title              string
	Description        string
	TargetAmount       decimal.Decimal
	Frequency          Frequency
	AmountPerFrequency decimal.Decimal
	StartDate          *time.Time
	TargetDate         *time.Time
}

func ValidateCreateGoal(req *CreateGoalRequest, now time.Time) error {
	if req == nil {
		return appErrors.ErrBadRequest
	}
	if strings.TrimSpace(req.Title) == "" {
		return appErrors.NewValidationError("title", "is required")
	}
	if err := validatePlan(req.TargetAmount, req.Frequency, req.AmountPerFrequency); err != nil {
		return err
	}
	if req.TargetDate != nil {
		start := now
		if req.StartDate != nil {
			start = *req.StartDate
		}
		if !req.TargetDate.After(start) {
			return appErrors.NewValidationError("targetDate", "must be after the start date")
		}
	}
	return nil
}

// UpdateGoalRequest carries a partial edit. Nil fields keep their value.
type UpdateGoalRequest struct {
	GoalId             ulid.ULID
	UserId             ulid.ULID
	Title              *string
	Description        *string
	TargetAmount       *decimal.Decimal
	Frequency          *Frequency
	AmountPerFrequency *decimal.Decimal
	TargetDate         *time.Time
}

func (req *UpdateGoalRequest) apply(goal *Goal) {
	if req.Title != nil {
		goal.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		goal.Description = strings.TrimSpace(*req.Description)
	}
	if req.TargetAmount != nil {
		goal.TargetAmount = *req.TargetAmount
	}
	if req.Frequency != nil {
		goal.Frequency = *req.Frequency
	}
	if req.AmountPerFrequency != nil {
		goal.AmountPerFrequency = *req.AmountPerFrequency
	}
	if req.TargetDate != nil {
		targetDate := req.TargetDate.UTC()
		goal.TargetDate = &targetDate
	}
}

// ValidateGoal checks an edited goal before it is saved.
func ValidateGoal(goal *Goal) error {
	if goal.Title == "" {
		return appErrors.NewValidationError("title", "is required")
	}
	if err := validatePlan(goal.TargetAmount, goal.Frequency, goal.AmountPerFrequency); err != nil {
		return err
	}
	if goal.TargetDate != nil && !goal.TargetDate.After(goal.StartDate) {
		return appErrors.NewValidationError("targetDate", "must be after the start date")
	}
	return nil
}

func validatePlan(target decimal.Decimal, frequency Frequency, perPeriod decimal.Decimal) error {
	if !pkg.IsMoney(target) {
		return appErrors.NewValidationError("targetAmount", "must be a positive whole-cent amount within the ledger limit")
	}
	if !frequency.IsValid() {
		return appErrors.NewValidationError("frequency", "must be one of daily, weekly, monthly, custom")
	}
	if perPeriod.IsNegative() {
		return appErrors.NewValidationError("amountPerFrequency", "must not be negative")
	}
	if frequency.IsRecurring() && !perPeriod.IsPositive() {
		return appErrors.NewValidationError("amountPerFrequency", "must be greater than zero for recurring goals")
	}
	if perPeriod.IsPositive() && !pkg.IsMoney(perPeriod) {
		return appErrors.NewValidationError("amountPerFrequency", "must be a whole-cent amount within the ledger limit")
	}
	return nil
}
