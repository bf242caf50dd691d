package savings

import (
	"time"

	"Wanderfund/internal/pkg"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyCustom  Frequency = "custom"
)

func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyCustom:
		return true
	}
	return false
}

// IsRecurring reports whether the scheduler auto-debits goals with this cadence.
func (f Frequency) IsRecurring() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

func RecurringFrequencies() []Frequency {
	return []Frequency{FrequencyDaily, FrequencyWeekly, FrequencyMonthly}
}

type Goal struct {
	Id                 ulid.ULID       `json:"id"`
	UserId             ulid.ULID       `json:"userId"`
	TripId             *ulid.ULID      `json:"tripId,omitempty"`
	Title              string          `json:"title"`
	Description        string          `json:"description,omitempty"`
	TargetAmount       decimal.Decimal `json:"targetAmount"`
	CurrentAmount      decimal.Decimal `json:"currentAmount"`
	Progress           decimal.Decimal `json:"progress"`
	IsCompleted        bool            `json:"isCompleted"`
	Frequency          Frequency       `json:"frequency"`
	AmountPerFrequency decimal.Decimal `json:"amountPerFrequency"`
	StartDate          time.Time       `json:"startDate"`
	TargetDate         *time.Time      `json:"targetDate,omitempty"`
	LastContribution   *time.Time      `json:"lastContribution,omitempty"`
	CompletedAt        *time.Time      `json:"completedAt,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

func (g *Goal) Remaining() decimal.Decimal {
	remaining := g.TargetAmount.Sub(g.CurrentAmount)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// credit adds amount to the running total and recomputes the derived fields.
// Completion is one-way. It returns the progress before the credit.
func (g *Goal) credit(amount decimal.Decimal, at time.Time) decimal.Decimal {
	before := pkg.Percentage(g.CurrentAmount, g.TargetAmount)

	g.CurrentAmount = g.CurrentAmount.Add(amount)
	g.Progress = pkg.Percentage(g.CurrentAmount, g.TargetAmount)
	if !g.IsCompleted && g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount) {
		g.IsCompleted = true
		completedAt := at
		g.CompletedAt = &completedAt
	}
	if g.LastContribution == nil || at.After(*g.LastContribution) {
		last := at
		g.LastContribution = &last
	}
	g.UpdatedAt = at

	return before
}

type GoalProgress struct {
	GoalId           ulid.ULID       `json:"goalId"`
	Title            string          `json:"title"`
	TargetAmount     decimal.Decimal `json:"targetAmount"`
	CurrentAmount    decimal.Decimal `json:"currentAmount"`
	Remaining        decimal.Decimal `json:"remaining"`
	Progress         decimal.Decimal `json:"progress"`
	IsCompleted      bool            `json:"isCompleted"`
	Contributions    int64           `json:"contributions"`
	LastContribution *time.Time      `json:"lastContribution,omitempty"`
}
