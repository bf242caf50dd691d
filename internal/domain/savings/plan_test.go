package savings_test

import (
	"testing"
	"time"

	"Wanderfund/internal/domain/savings"
)

func TestCalculatePlan(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	target := now.AddDate(0, 0, 30)

	tests := []struct {
		name      string
		frequency savings.Frequency
		periods   int64
		amount    string
	}{
		{name: "daily", frequency: savings.FrequencyDaily, periods: 30, amount: "33.34"},
		{name: "weekly", frequency: savings.FrequencyWeekly, periods: 5, amount: "200"},
		{name: "monthly", frequency: savings.FrequencyMonthly, periods: 1, amount: "1000"},
		{name: "custom", frequency: savings.FrequencyCustom, periods: 1, amount: "1000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := savings.CalculatePlan(dec("1000"), tt.frequency, target, now)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if plan.TotalPeriods != tt.periods {
				t.Fatalf("expected %d periods, got %d", tt.periods, plan.TotalPeriods)
			}
			if !plan.AmountPerPeriod.Equal(dec(tt.amount)) {
				t.Fatalf("expected %s per period, got %s", tt.amount, plan.AmountPerPeriod)
			}
		})
	}
}

func TestCalculatePlanRejectsPastDate(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	if _, err := savings.CalculatePlan(dec("1000"), savings.FrequencyDaily, now.AddDate(0, 0, -1), now); err == nil {
		t.Fatalf("expected error for a target date in the past")
	}
}
