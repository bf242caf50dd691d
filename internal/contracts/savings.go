package contracts

import (
	"time"

	"Wanderfund/internal/domain/achievement"
	"Wanderfund/internal/domain/savings"

	"github.com/shopspring/decimal"
)

type SavingsGoalCreateRequest struct {
	Title              string           `json:"title" binding:"required,max=120"`
	Description        string           `json:"description" binding:"omitempty,max=1000"`
	TargetAmount       *decimal.Decimal `json:"targetAmount" binding:"required"`
	Frequency          string           `json:"frequency" binding:"required,oneof=daily weekly monthly custom"`
	AmountPerFrequency *decimal.Decimal `json:"amountPerFrequency" binding:"omitempty"`
	TripId             *string          `json:"tripId" binding:"omitempty"`
	StartDate          *time.Time       `json:"startDate" binding:"omitempty"`
	TargetDate         *time.Time       `json:"targetDate" binding:"omitempty"`
}

type SavingsGoalUpdateRequest struct {
	Title              *string          `json:"title" binding:"omitempty,max=120"`
	Description        *string          `json:"description" binding:"omitempty,max=1000"`
	TargetAmount       *decimal.Decimal `json:"targetAmount" binding:"omitempty"`
	Frequency          *string          `json:"frequency" binding:"omitempty,oneof=daily weekly monthly custom"`
	AmountPerFrequency *decimal.Decimal `json:"amountPerFrequency" binding:"omitempty"`
	TargetDate         *time.Time       `json:"targetDate" binding:"omitempty"`
}

type ContributionCreateRequest struct {
	Amount *decimal.Decimal `json:"amount" binding:"required"`
	// Method names the channel the money came through. Defaults to manual.
	Method string `json:"method" binding:"omitempty,oneof=manual mpesa card bank"`
}

type SavingsGoalResponse struct {
	Goal *savings.Goal `json:"goal"`
}

type SavingsGoalCreateResponse struct {
	Message string        `json:"message"`
	Goal    *savings.Goal `json:"goal"`
}

type ContributionResponse struct {
	Goal         *savings.Goal             `json:"goal"`
	Contribution *savings.Contribution     `json:"contribution"`
	Achievements []achievement.Achievement `json:"achievements"`
	Replayed     bool                      `json:"replayed"`
}

type SavingsProgressResponse struct {
	Progress *savings.GoalProgress `json:"progress"`
}

type SavingsStatsResponse struct {
	Stats *savings.Stats `json:"stats"`
}

type SavingsPlanResponse struct {
	Plan *savings.Plan `json:"plan"`
}
