package savings

import (
	"math"
	"time"

	appErrors "Wanderfund/internal/errors"
	"Wanderfund/internal/pkg"

	"github.com/shopspring/decimal"
)

type Plan struct {
	Frequency           Frequency       `json:"frequency"`
	AmountPerPeriod     decimal.Decimal `json:"amountPerPeriod"`
	TotalPeriods        int64           `json:"totalPeriods"`
	EstimatedCompletion time.Time       `json:"estimatedCompletion"`
}

// CalculatePlan splits target evenly across the remaining periods up to
// targetDate, rounding each installment up to the cent.
func CalculatePlan(target decimal.Decimal, frequency Frequency, targetDate, now time.Time) (*Plan, error) {
	if !target.IsPositive() {
		return nil, appErrors.NewValidationError("targetAmount", "must be greater than zero")
	}
	if !frequency.IsValid() {
		return nil, appErrors.NewValidationError("frequency", "must be one of daily, weekly, monthly, custom")
	}
	now = now.UTC()
	targetDate = targetDate.UTC()
	if !targetDate.After(now) {
		return nil, appErrors.NewValidationError("targetDate", "must be in the future")
	}

	days := int64(math.Ceil(targetDate.Sub(now).Hours() / 24))
	weeks := int64(math.Ceil(float64(days) / 7))
	months := int64((targetDate.Year()-now.Year())*12 + int(targetDate.Month()) - int(now.Month()))
	if months < 1 {
		months = 1
	}

	var periods int64
	switch frequency {
	case FrequencyDaily:
		periods = days
	case FrequencyWeekly:
		periods = weeks
	case FrequencyMonthly:
		periods = months
	default:
		periods = 1
	}

	return &Plan{
		Frequency:           frequency,
		AmountPerPeriod:     pkg.CeilMoney(target.Div(decimal.NewFromInt(periods))),
		TotalPeriods:        periods,
		EstimatedCompletion: targetDate,
	}, nil
}
